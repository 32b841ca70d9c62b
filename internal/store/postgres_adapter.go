package store

import (
	_ "embed"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema_postgres.sql
var postgresSchema string

// uniqueViolation is the PostgreSQL error code for a unique-constraint
// violation.
const uniqueViolation = "23505"

// PostgresAdapter supports PostgreSQL via lib/pq.
type PostgresAdapter struct{}

func (PostgresAdapter) Name() string       { return "postgres" }
func (PostgresAdapter) DriverName() string { return "postgres" }
func (PostgresAdapter) Schema() string     { return postgresSchema }

func (PostgresAdapter) NativeUpsert() bool { return true }

func (PostgresAdapter) UpsertSourceQuery() string { return upsertSourceSQL }
func (PostgresAdapter) EnsureStubQuery() string   { return ensureStubSQL }
func (PostgresAdapter) UpsertTextQuery() string   { return upsertTextSQL }

func (PostgresAdapter) IsDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return isDuplicateMessage(err)
}

func (PostgresAdapter) PostOpen(db *sqlx.DB) error { return nil }
