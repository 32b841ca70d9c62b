package store

import (
	_ "embed"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteAdapter supports SQLite via the pure-Go modernc driver.
type SQLiteAdapter struct{}

func (SQLiteAdapter) Name() string       { return "sqlite" }
func (SQLiteAdapter) DriverName() string { return "sqlite" }
func (SQLiteAdapter) Schema() string     { return sqliteSchema }

// NativeUpsert is true: SQLite has supported ON CONFLICT targets since 3.24.
func (SQLiteAdapter) NativeUpsert() bool { return true }

func (SQLiteAdapter) UpsertSourceQuery() string { return upsertSourceSQL }
func (SQLiteAdapter) EnsureStubQuery() string   { return ensureStubSQL }
func (SQLiteAdapter) UpsertTextQuery() string   { return upsertTextSQL }

func (SQLiteAdapter) IsDuplicate(err error) bool { return isDuplicateMessage(err) }

// PostOpen pins the pool to one connection so the pragmas below apply to
// every statement, then enables foreign keys and WAL. A single connection
// also serializes concurrent units of work instead of surfacing SQLITE_BUSY.
func (SQLiteAdapter) PostOpen(db *sqlx.DB) error {
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
