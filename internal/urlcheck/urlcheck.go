// Package urlcheck decides whether a string can be stored as a link target.
package urlcheck

import (
	"errors"
	"net/url"

	"github.com/sundayezeilo/shortlink/internal/errx"
)

const MaxURLLength = 2048

var (
	ErrEmpty       = errors.New("url cannot be empty")
	ErrTooLong     = errors.New("url too long (max 2048 characters)")
	ErrMalformed   = errors.New("invalid url format")
	ErrNotAbsolute = errors.New("url must be absolute")
	ErrNoHost      = errors.New("url must include a host")
)

// Validate accepts an absolute URL that carries a non-empty host. It performs
// no I/O. Rejections are errx.Invalid and wrap one of the Err values above.
func Validate(raw string) error {
	const op = "urlcheck.Validate"

	if raw == "" {
		return errx.E(op, errx.Invalid, ErrEmpty)
	}
	if len(raw) > MaxURLLength {
		return errx.E(op, errx.Invalid, ErrTooLong)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errx.E(op, errx.Invalid, ErrMalformed)
	}
	if !u.IsAbs() {
		return errx.E(op, errx.Invalid, ErrNotAbsolute)
	}
	if u.Host == "" {
		return errx.E(op, errx.Invalid, ErrNoHost)
	}
	return nil
}
