package types

import "context"

// Coverage summarizes translation progress for one target locale.
type Coverage struct {
	Locale     string `json:"locale"`
	Total      int    `json:"total"`
	Translated int    `json:"translated"`
}

// Percent returns translated/total as a percentage, 100 for an empty table.
func (c Coverage) Percent() float64 {
	if c.Total == 0 {
		return 100
	}
	return float64(c.Translated) / float64(c.Total) * 100
}

// StoreOps are the row-level operations of the translation store. They are
// transaction-agnostic: the same operations run against the base connection
// or inside a transaction opened by WithinTx.
type StoreOps interface {
	// UpsertSource inserts or overwrites the source string row for its hash.
	// The upsert is atomic; concurrent writers producing the same hash
	// converge to one row.
	UpsertSource(ctx context.Context, s SourceString) error

	// EnsureStub inserts a stub translation row if the cell is absent. It
	// never overwrites an existing row's text.
	EnsureStub(ctx context.Context, key TranslationKey) error

	// UpsertText sets the translated text (and status/meta) for a cell,
	// overwriting any prior text. This is the only operation a translation
	// job should call.
	UpsertText(ctx context.Context, key TranslationKey, text, status string, meta Meta) error

	// Lookup returns the non-empty translated text for (hash, locale) from
	// any engine, or ok=false when no usable translation exists.
	Lookup(ctx context.Context, hash, locale string) (text string, ok bool, err error)

	// LookupAll resolves many hashes for one locale in a single query and
	// returns a map holding only the hashes with non-empty text.
	LookupAll(ctx context.Context, hashes []string, locale string) (map[string]string, error)
}

// Store is the durable two-table translation store. Implementations own the
// SQL platform specifics; callers own transaction boundaries via WithinTx.
type Store interface {
	StoreOps

	// WithinTx runs fn against transaction-bound operations and commits,
	// rolling back the whole transaction if fn returns an error.
	WithinTx(ctx context.Context, fn func(StoreOps) error) error

	// IterateMissing streams source strings lacking a non-empty translation
	// for locale, optionally filtered by source locale, stopping after
	// limit rows when limit is positive. fn returning an error stops the
	// iteration and propagates.
	IterateMissing(ctx context.Context, locale, sourceFilter string, limit int, fn func(SourceString) error) error

	// Coverage reports total and translated counts for locale.
	Coverage(ctx context.Context, locale string) (Coverage, error)

	// GetSource returns the source string row for hash, or ErrNotFound.
	GetSource(ctx context.Context, hash string) (SourceString, error)

	// Close releases the underlying database handle.
	Close() error
}
