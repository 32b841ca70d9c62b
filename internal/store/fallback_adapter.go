package store

import "github.com/jmoiron/sqlx"

// FallbackAdapter wraps a platform adapter and disables its native upsert,
// forcing the store onto the explicit insert-then-update sequence. It serves
// platforms whose conflict clause is unusable, and lets tests exercise the
// fallback path against SQLite.
type FallbackAdapter struct {
	Base Adapter
}

func (f FallbackAdapter) Name() string       { return f.Base.Name() + "-fallback" }
func (f FallbackAdapter) DriverName() string { return f.Base.DriverName() }
func (f FallbackAdapter) Schema() string     { return f.Base.Schema() }

func (FallbackAdapter) NativeUpsert() bool { return false }

// The native upsert statements are never used on the fallback path.
func (FallbackAdapter) UpsertSourceQuery() string { return "" }
func (FallbackAdapter) EnsureStubQuery() string   { return "" }
func (FallbackAdapter) UpsertTextQuery() string   { return "" }

func (f FallbackAdapter) IsDuplicate(err error) bool { return f.Base.IsDuplicate(err) }

func (f FallbackAdapter) PostOpen(db *sqlx.DB) error { return f.Base.PostOpen(db) }
