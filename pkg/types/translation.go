package types

import "time"

// Translation statuses. Status is a coarse progress marker independent of
// text emptiness, so an engine may intentionally store an empty translation
// and still mark the cell handled.
const (
	StatusQueued     = "queued"
	StatusTranslated = "translated"
	StatusIdentical  = "identical"
)

// EngineNone is the engine column value for stub rows created by the write
// path before any translation engine has run.
const EngineNone = "none"

// TranslationKey identifies one translation cell. The store enforces a
// unique constraint over the full key.
type TranslationKey struct {
	Hash         string `db:"source_hash" json:"hash"`
	TargetLocale string `db:"target_locale" json:"target_locale"`
	Engine       string `db:"engine" json:"engine"`
}

// Validate checks the fields the store requires to address a cell.
func (k TranslationKey) Validate() error {
	if k.Hash == "" {
		return ErrEmptyHash
	}
	if k.TargetLocale == "" {
		return ErrEmptyLocale
	}
	return nil
}

// Translation is one (source string, target locale, engine) cell. An empty
// Text with no status is a stub: the row exists so missing translations can
// be enumerated by query rather than by scanning records.
type Translation struct {
	TranslationKey
	Text      string    `db:"text" json:"text"`
	Status    string    `db:"status" json:"status,omitempty"`
	Meta      Meta      `db:"-" json:"meta,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsStub reports whether the cell holds no translated text yet.
func (t Translation) IsStub() bool {
	return t.Text == ""
}
