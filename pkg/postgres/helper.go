package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const sqlStateUndefinedTable = "42P01"

// IsUndefinedTable reports whether err is PostgreSQL's "relation does not exist"
// (SQLSTATE 42P01). Works through wrapped errors.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == sqlStateUndefinedTable
	}

	return false
}
