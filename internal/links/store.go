package links

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that no row matched. Absence is not a fault.
	ErrNotFound = errors.New("link not found")

	// ErrUniqueViolation is the engine-neutral signal for an insert rejected
	// by the code primary key or the url unique index.
	ErrUniqueViolation = errors.New("unique violation")
)

// Store is the persistence capability the Registry is written against.
// Each relational engine provides one implementation. Implementations must
// be safe for concurrent use and wrap their errors with errx so that
// errors.Is(err, ErrNotFound) and errors.Is(err, ErrUniqueViolation) hold
// for the two expected outcomes.
type Store interface {
	// EnsureSchema creates the links table and its indexes if absent.
	EnsureSchema(ctx context.Context) error
	// FindCodeByURL returns the link stored for url.
	FindCodeByURL(ctx context.Context, url string) (Link, error)
	Insert(ctx context.Context, link Link) error
	FindURLByCode(ctx context.Context, code string) (Link, error)
	// DeleteByCode reports rows affected. Zero is not an error.
	DeleteByCode(ctx context.Context, code string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
