// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStaleStatus is returned by conditional status updates when the post's
// status no longer matches the expected prior status. Callers treat it as
// an invalid-state condition; it is how the loser of a concurrent
// transition race finds out.
var ErrStaleStatus = errors.New("post status changed concurrently")

// isUniqueViolation reports whether err is a unique-constraint violation.
// Checks the PostgreSQL error code and falls back to the sqlite message
// used by the in-memory test database.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
