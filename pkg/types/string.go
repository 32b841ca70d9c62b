package types

import "time"

// Meta holds engine-specific annotations attached to a source string or a
// translation. It is stored as a JSON object and never interpreted by the
// store itself.
type Meta map[string]string

// SourceString is one deduplicated source text. The hash is a pure function
// of (source locale, context, original text), so two records carrying the
// same triple collapse to the same row.
type SourceString struct {
	Hash         string    `db:"hash" json:"hash"`
	Original     string    `db:"original" json:"original"`
	SourceLocale string    `db:"source_locale" json:"source_locale"`
	Context      string    `db:"context" json:"context,omitempty"`
	Meta         Meta      `db:"-" json:"meta,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the fields the store requires before an upsert.
func (s SourceString) Validate() error {
	if s.Hash == "" {
		return ErrEmptyHash
	}
	if s.SourceLocale == "" {
		return ErrEmptyLocale
	}
	return nil
}
