package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/links"
)

// isUniqueViolation matches the extended result codes SQLite raises for a
// duplicate primary key (1555) or unique index entry (2067).
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errx.E(op, errx.NotFound, links.ErrNotFound)
	case isUniqueViolation(err):
		return errx.E(op, errx.Conflict, fmt.Errorf("%w: %v", links.ErrUniqueViolation, err))
	default:
		return errx.E(op, errx.Unavailable, err)
	}
}
