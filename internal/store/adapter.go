// Package store implements the durable translation store: the two-table
// model (source_strings, translations) over database/sql via sqlx, with the
// platform-specific upsert strategies isolated behind an Adapter.
package store

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// Adapter provides database-platform-specific behavior: schema DDL, native
// upsert statements, duplicate-key detection for the fallback insert/update
// sequence, and post-open tuning.
type Adapter interface {
	// Name identifies the platform for logs and errors.
	Name() string

	// DriverName is the database/sql driver to open connections with.
	DriverName() string

	// Schema returns the DDL for both tables and their indexes.
	Schema() string

	// NativeUpsert reports whether the platform supports a usable conflict
	// target (ON CONFLICT ... DO UPDATE / DO NOTHING). Platforms without
	// one fall back to an explicit insert-then-update sequence.
	NativeUpsert() bool

	// UpsertSourceQuery is the atomic insert-or-update for source_strings,
	// written with ? placeholders.
	UpsertSourceQuery() string

	// EnsureStubQuery inserts a stub translation row if absent and must
	// never overwrite an existing row.
	EnsureStubQuery() string

	// UpsertTextQuery is the atomic insert-or-update for a translation
	// cell's text, status and meta.
	UpsertTextQuery() string

	// IsDuplicate reports whether err is a unique-constraint violation,
	// used by the fallback sequence to turn an insert conflict into an
	// update.
	IsDuplicate(err error) bool

	// PostOpen applies platform settings to a fresh connection.
	PostOpen(db *sqlx.DB) error
}

// The native upsert statements are shared by the SQLite and PostgreSQL
// adapters; both platforms accept the same ON CONFLICT syntax.
const (
	upsertSourceSQL = `
		INSERT INTO source_strings (hash, original, source_locale, context, meta, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (hash) DO UPDATE SET
			original = excluded.original,
			source_locale = excluded.source_locale,
			context = excluded.context,
			meta = excluded.meta,
			updated_at = excluded.updated_at`

	ensureStubSQL = `
		INSERT INTO translations (source_hash, target_locale, engine, text, status, meta, created_at, updated_at)
		VALUES (?, ?, ?, NULL, NULL, NULL, ?, ?)
		ON CONFLICT (source_hash, target_locale, engine) DO NOTHING`

	upsertTextSQL = `
		INSERT INTO translations (source_hash, target_locale, engine, text, status, meta, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_hash, target_locale, engine) DO UPDATE SET
			text = excluded.text,
			status = excluded.status,
			meta = excluded.meta,
			updated_at = excluded.updated_at`
)

// isDuplicateMessage is the conservative duplicate-key check shared by the
// adapters: every supported platform names the violated constraint kind in
// the error text.
func isDuplicateMessage(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
