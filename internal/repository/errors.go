// internal/repository/errors.go
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a duplicate-key violation
// (Postgres SQLSTATE 23505, or gorm's portable sentinel on other drivers).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isUndefinedTable reports whether err means the backing table does not exist
// yet (Postgres SQLSTATE 42P01, sqlite "no such table"). This is the expected
// first-use state the XP stores translate to model.ErrSchemaMissing.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return true
	}
	return strings.Contains(err.Error(), "no such table")
}
