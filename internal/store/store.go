package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/quillworks/traduit/pkg/types"
)

// Plain-SQL statements for the fallback insert-then-update sequence. These
// avoid any conflict clause so they run on platforms without one; safety
// under concurrent writers comes from retrying the insert conflict as an
// update.
const (
	insertSourcePlainSQL = `
		INSERT INTO source_strings (hash, original, source_locale, context, meta, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	updateSourcePlainSQL = `
		UPDATE source_strings
		SET original = ?, source_locale = ?, context = ?, meta = ?, updated_at = ?
		WHERE hash = ?`

	insertStubPlainSQL = `
		INSERT INTO translations (source_hash, target_locale, engine, text, status, meta, created_at, updated_at)
		VALUES (?, ?, ?, NULL, NULL, NULL, ?, ?)`

	insertTextPlainSQL = `
		INSERT INTO translations (source_hash, target_locale, engine, text, status, meta, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	updateTextPlainSQL = `
		UPDATE translations
		SET text = ?, status = ?, meta = ?, updated_at = ?
		WHERE source_hash = ? AND target_locale = ? AND engine = ?`
)

// ops carries the row-level operations over either the base connection or a
// transaction; both satisfy sqlx.ExtContext.
type ops struct {
	ext     sqlx.ExtContext
	adapter Adapter
}

// Store is the sqlx-backed translation store. It satisfies types.Store.
type Store struct {
	ops
	db *sqlx.DB
}

// adapterFor maps a configured driver to its platform adapter.
func adapterFor(driver string) (Adapter, error) {
	switch driver {
	case types.DriverSQLite:
		return SQLiteAdapter{}, nil
	case types.DriverPostgres:
		return PostgresAdapter{}, nil
	default:
		return nil, fmt.Errorf("store: no adapter for driver %q: %w", driver, types.ErrDriverUnknown)
	}
}

// Open connects to the configured database, applies platform settings and
// ensures the schema exists.
func Open(cfg types.DatabaseConfig) (*Store, error) {
	adapter, err := adapterFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(adapter.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", adapter.Name(), err)
	}
	return NewWithAdapter(db, adapter)
}

// NewWithAdapter builds a Store over an existing connection with an explicit
// adapter. Used by Open and by tests that force the fallback path.
func NewWithAdapter(db *sqlx.DB, adapter Adapter) (*Store, error) {
	if err := adapter.PostOpen(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: configure %s: %w", adapter.Name(), err)
	}
	if _, err := db.Exec(adapter.Schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema on %s: %w", adapter.Name(), err)
	}
	return &Store{ops: ops{ext: db, adapter: adapter}, db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn against transaction-bound operations. Any error from fn
// rolls the whole transaction back; nothing is partially committed.
func (s *Store) WithinTx(ctx context.Context, fn func(types.StoreOps) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}

	txOps := &ops{ext: tx, adapter: s.adapter}
	if err := fn(txOps); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}

// UpsertSource inserts or overwrites the source string row for its hash.
func (o *ops) UpsertSource(ctx context.Context, s types.SourceString) error {
	if err := s.Validate(); err != nil {
		return err
	}
	meta, err := metaToDB(s.Meta)
	if err != nil {
		return fmt.Errorf("store: encode meta for %s: %w", s.Hash, err)
	}
	now := timestamp()

	if o.adapter.NativeUpsert() {
		query := o.ext.Rebind(o.adapter.UpsertSourceQuery())
		args := []any{s.Hash, s.Original, s.SourceLocale, nullable(s.Context), meta, now, now}
		if _, err := o.ext.ExecContext(ctx, query, args...); err != nil {
			return sqlError("upsert source", query, args, err)
		}
		return nil
	}

	// Fallback: insert, treat a duplicate key as "row exists", then update.
	insQuery := o.ext.Rebind(insertSourcePlainSQL)
	insArgs := []any{s.Hash, s.Original, s.SourceLocale, nullable(s.Context), meta, now, now}
	if _, err := o.ext.ExecContext(ctx, insQuery, insArgs...); err != nil {
		if !o.adapter.IsDuplicate(err) {
			return sqlError("insert source", insQuery, insArgs, err)
		}
		updQuery := o.ext.Rebind(updateSourcePlainSQL)
		updArgs := []any{s.Original, s.SourceLocale, nullable(s.Context), meta, now, s.Hash}
		if _, err := o.ext.ExecContext(ctx, updQuery, updArgs...); err != nil {
			return sqlError("update source", updQuery, updArgs, err)
		}
	}
	return nil
}

// EnsureStub inserts a stub translation cell if absent, never touching an
// existing row.
func (o *ops) EnsureStub(ctx context.Context, key types.TranslationKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	engine := key.Engine
	if engine == "" {
		engine = types.EngineNone
	}
	now := timestamp()

	if o.adapter.NativeUpsert() {
		query := o.ext.Rebind(o.adapter.EnsureStubQuery())
		args := []any{key.Hash, key.TargetLocale, engine, now, now}
		if _, err := o.ext.ExecContext(ctx, query, args...); err != nil {
			return sqlError("ensure stub", query, args, err)
		}
		return nil
	}

	insQuery := o.ext.Rebind(insertStubPlainSQL)
	insArgs := []any{key.Hash, key.TargetLocale, engine, now, now}
	if _, err := o.ext.ExecContext(ctx, insQuery, insArgs...); err != nil {
		if !o.adapter.IsDuplicate(err) {
			return sqlError("insert stub", insQuery, insArgs, err)
		}
		// Row exists; a stub must never overwrite it.
	}
	return nil
}

// UpsertText sets the translated text for a cell, overwriting prior text.
func (o *ops) UpsertText(ctx context.Context, key types.TranslationKey, text, status string, meta types.Meta) error {
	if err := key.Validate(); err != nil {
		return err
	}
	engine := key.Engine
	if engine == "" {
		engine = types.EngineNone
	}
	metaVal, err := metaToDB(meta)
	if err != nil {
		return fmt.Errorf("store: encode meta for %s: %w", key.Hash, err)
	}
	now := timestamp()

	if o.adapter.NativeUpsert() {
		query := o.ext.Rebind(o.adapter.UpsertTextQuery())
		args := []any{key.Hash, key.TargetLocale, engine, text, nullable(status), metaVal, now, now}
		if _, err := o.ext.ExecContext(ctx, query, args...); err != nil {
			return sqlError("upsert translation", query, args, err)
		}
		return nil
	}

	insQuery := o.ext.Rebind(insertTextPlainSQL)
	insArgs := []any{key.Hash, key.TargetLocale, engine, text, nullable(status), metaVal, now, now}
	if _, err := o.ext.ExecContext(ctx, insQuery, insArgs...); err != nil {
		if !o.adapter.IsDuplicate(err) {
			return sqlError("insert translation", insQuery, insArgs, err)
		}
		updQuery := o.ext.Rebind(updateTextPlainSQL)
		updArgs := []any{text, nullable(status), metaVal, now, key.Hash, key.TargetLocale, engine}
		if _, err := o.ext.ExecContext(ctx, updQuery, updArgs...); err != nil {
			return sqlError("update translation", updQuery, updArgs, err)
		}
	}
	return nil
}

// Lookup returns the non-empty translated text for (hash, locale) from any
// engine. Stub rows and absent rows both report ok=false.
func (o *ops) Lookup(ctx context.Context, hash, locale string) (string, bool, error) {
	if hash == "" {
		return "", false, types.ErrEmptyHash
	}
	if locale == "" {
		return "", false, types.ErrEmptyLocale
	}

	query := o.ext.Rebind(`
		SELECT text FROM translations
		WHERE source_hash = ? AND target_locale = ? AND text IS NOT NULL AND text <> ''
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`)
	var text string
	err := o.ext.QueryRowxContext(ctx, query, hash, locale).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: lookup %s/%s: %w", hash, locale, err)
	}
	return text, true, nil
}

// LookupAll resolves many hashes for one locale in a single query. The
// result holds only hashes with usable text, so read amplification is one
// round-trip per record load regardless of field count.
func (o *ops) LookupAll(ctx context.Context, hashes []string, locale string) (map[string]string, error) {
	out := make(map[string]string, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}
	if locale == "" {
		return nil, types.ErrEmptyLocale
	}

	query, args, err := sq.Select("source_hash", "text").
		From("translations").
		Where(sq.Eq{"source_hash": hashes, "target_locale": locale}).
		Where(sq.NotEq{"text": nil}).
		Where(sq.NotEq{"text": ""}).
		OrderBy("updated_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build lookup query: %w", err)
	}

	rows, err := o.ext.QueryxContext(ctx, o.ext.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: lookup %d hashes for %s: %w", len(hashes), locale, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash, text string
		if err := rows.Scan(&hash, &text); err != nil {
			return nil, fmt.Errorf("store: scan lookup row: %w", err)
		}
		// Later rows win, matching Lookup's newest-first preference.
		out[hash] = text
	}
	return out, rows.Err()
}

// GetSource returns the source string row for hash.
func (s *Store) GetSource(ctx context.Context, hash string) (types.SourceString, error) {
	if hash == "" {
		return types.SourceString{}, types.ErrEmptyHash
	}

	query := s.db.Rebind(`
		SELECT hash, original, source_locale, context, meta, created_at, updated_at
		FROM source_strings WHERE hash = ?`)
	row := s.db.QueryRowxContext(ctx, query, hash)
	src, err := scanSource(row)
	if err == sql.ErrNoRows {
		return types.SourceString{}, fmt.Errorf("store: source %s: %w", hash, types.ErrNotFound)
	}
	return src, err
}

// IterateMissing streams source strings lacking a non-empty translation for
// locale. Rows whose own source locale is the requested locale are skipped:
// the source is never a target for itself.
func (s *Store) IterateMissing(ctx context.Context, locale, sourceFilter string, limit int, fn func(types.SourceString) error) error {
	if locale == "" {
		return types.ErrEmptyLocale
	}

	builder := sq.Select("s.hash", "s.original", "s.source_locale", "s.context", "s.meta", "s.created_at", "s.updated_at").
		From("source_strings s").
		Where(sq.NotEq{"s.source_locale": locale}).
		Where(sq.Expr(`NOT EXISTS (
			SELECT 1 FROM translations t
			WHERE t.source_hash = s.hash AND t.target_locale = ? AND t.text IS NOT NULL AND t.text <> ''
		)`, locale)).
		OrderBy("s.created_at", "s.hash")
	if sourceFilter != "" {
		builder = builder.Where(sq.Eq{"s.source_locale": sourceFilter})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("store: build missing query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("store: iterate missing for %s: %w", locale, err)
	}
	defer rows.Close()

	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return fmt.Errorf("store: scan missing row: %w", err)
		}
		if err := fn(src); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Coverage reports total source strings targeting locale and how many have
// usable text.
func (s *Store) Coverage(ctx context.Context, locale string) (types.Coverage, error) {
	if locale == "" {
		return types.Coverage{}, types.ErrEmptyLocale
	}

	cov := types.Coverage{Locale: locale}
	err := s.db.QueryRowxContext(ctx,
		s.db.Rebind(`SELECT COUNT(*) FROM source_strings WHERE source_locale <> ?`), locale).
		Scan(&cov.Total)
	if err != nil {
		return cov, fmt.Errorf("store: count sources for %s: %w", locale, err)
	}

	err = s.db.QueryRowxContext(ctx,
		s.db.Rebind(`
			SELECT COUNT(DISTINCT source_hash) FROM translations
			WHERE target_locale = ? AND text IS NOT NULL AND text <> ''`), locale).
		Scan(&cov.Translated)
	if err != nil {
		return cov, fmt.Errorf("store: count translated for %s: %w", locale, err)
	}
	return cov, nil
}

// rowScanner covers *sqlx.Row and *sqlx.Rows for scanSource.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSource reads one source_strings row with its nullable columns and
// RFC3339 timestamps.
func scanSource(row rowScanner) (types.SourceString, error) {
	var src types.SourceString
	var context, meta sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&src.Hash, &src.Original, &src.SourceLocale, &context, &meta, &createdAt, &updatedAt); err != nil {
		return src, err
	}
	if context.Valid {
		src.Context = context.String
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &src.Meta); err != nil {
			return src, fmt.Errorf("store: decode meta for %s: %w", src.Hash, err)
		}
	}
	src.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	src.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return src, nil
}

// timestamp formats the current UTC time the way both schemas store it.
func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// metaToDB encodes meta as a JSON text column value, NULL when empty.
func metaToDB(m types.Meta) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// sqlError wraps a failed statement with the SQL and parameters so the
// committer can log the failing phase verbatim.
func sqlError(op, query string, args []any, err error) error {
	return fmt.Errorf("store: %s: %w (sql: %s; args: %v)", op, err, compactSQL(query), args)
}

// compactSQL collapses statement whitespace for single-line logging.
func compactSQL(query string) string {
	fields := make([]byte, 0, len(query))
	space := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\n' || c == '\t' || c == ' ' {
			space = true
			continue
		}
		if space && len(fields) > 0 {
			fields = append(fields, ' ')
		}
		space = false
		fields = append(fields, c)
	}
	return string(fields)
}
