package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/links"
)

const (
	uniqueViolationCode = "23505"

	constraintCode = "links_pkey"
	constraintURL  = "links_url_key"
)

// isUniqueViolation reports a 23505 raised by the code primary key or the
// url unique index. Violations of any other constraint are not ours to
// recover from.
func isUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return "", false
	}
	switch pgErr.ConstraintName {
	case constraintCode, constraintURL:
		return pgErr.ConstraintName, true
	default:
		return "", false
	}
}

func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errx.E(op, errx.NotFound, links.ErrNotFound)
	}
	if constraint, ok := isUniqueViolation(err); ok {
		return errx.E(op, errx.Conflict, fmt.Errorf("%w on %s", links.ErrUniqueViolation, constraint))
	}
	return errx.E(op, errx.Unavailable, err)
}
