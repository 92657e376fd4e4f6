package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sundayezeilo/shortlink/internal/clock"
	"github.com/sundayezeilo/shortlink/internal/codegen"
	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/urlcheck"
)

const (
	DefaultCodeSize    = 6
	MinCodeSize        = 4
	MaxCodeSize        = 32
	DefaultMaxAttempts = 3
)

var errCreate = errors.New("could not create link")

// Registry creates, resolves and deletes links.
type Registry interface {
	Create(ctx context.Context, url string) (Link, error)
	Lookup(ctx context.Context, code string) (Link, error)
	Delete(ctx context.Context, code string) error
}

type registry struct {
	store       Store
	generator   codegen.Generator
	clock       clock.Clock
	codeSize    int
	maxAttempts int
	logger      *slog.Logger
}

// RegistryConfig holds optional collaborators and tuning. Zero values fall
// back to defaults.
type RegistryConfig struct {
	Generator   codegen.Generator
	Clock       clock.Clock
	CodeSize    int
	MaxAttempts int // total insert attempts when generated codes collide
	Logger      *slog.Logger
}

// NewRegistry returns a Registry backed by store. The registry keeps no
// state of its own between calls.
func NewRegistry(store Store, config *RegistryConfig) Registry {
	if config == nil {
		config = &RegistryConfig{}
	}

	gen := config.Generator
	if gen == nil {
		gen = codegen.NewBase62()
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.System{}
	}

	size := config.CodeSize
	if size < MinCodeSize || size > MaxCodeSize {
		size = DefaultCodeSize
	}

	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &registry{
		store:       store,
		generator:   gen,
		clock:       clk,
		codeSize:    size,
		maxAttempts: attempts,
		logger:      logger,
	}
}

// Create returns the link for url, inserting one if none exists.
//
// Concurrent callers racing on the same url converge on a single code: the
// losers' inserts fail on the url unique index and they re-read the winner's
// row. When the re-read finds nothing, the candidate code collided with an
// unrelated link and a fresh code is tried, up to maxAttempts inserts.
func (r *registry) Create(ctx context.Context, url string) (Link, error) {
	const op = "links.registry.Create"

	if err := urlcheck.Validate(url); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	existing, err := r.store.FindCodeByURL(ctx, url)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return Link{}, errx.E(op, errx.Unavailable, fmt.Errorf("%w: %w", errCreate, err))
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		code, err := r.generator.Generate(r.codeSize)
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, fmt.Errorf("%w: %w", errCreate, err))
		}

		link := Link{Code: code, URL: url, CreatedAt: r.clock.Now().Unix()}
		err = r.store.Insert(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, ErrUniqueViolation) {
			return Link{}, errx.E(op, errx.Unavailable, fmt.Errorf("%w: %w", errCreate, err))
		}

		winner, err := r.store.FindCodeByURL(ctx, url)
		switch {
		case err == nil:
			return winner, nil
		case !errors.Is(err, ErrNotFound):
			return Link{}, errx.E(op, errx.Internal, fmt.Errorf("%w: recovering from conflict: %w", errCreate, err))
		}

		// Nobody owns url, so the violation was on the code.
		occupied, err := r.codeTaken(ctx, code)
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, fmt.Errorf("%w: recovering from conflict: %w", errCreate, err))
		}
		r.logger.WarnContext(ctx, "generated code collided",
			"code", code,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"code_still_present", occupied,
		)
	}

	return Link{}, errx.Errorf(op, errx.Internal, "%w: no free code after %d attempts", errCreate, r.maxAttempts)
}

func (r *registry) codeTaken(ctx context.Context, code string) (bool, error) {
	_, err := r.store.FindURLByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (r *registry) Lookup(ctx context.Context, code string) (Link, error) {
	const op = "links.registry.Lookup"

	link, err := r.store.FindURLByCode(ctx, code)
	if err != nil {
		return Link{}, errx.E(op, storeKind(err), err)
	}
	return link, nil
}

func (r *registry) Delete(ctx context.Context, code string) error {
	const op = "links.registry.Delete"

	n, err := r.store.DeleteByCode(ctx, code)
	if err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	if n == 0 {
		return errx.E(op, errx.NotFound, ErrNotFound)
	}
	return nil
}

// storeKind classifies a store error. Anything other than absence is a
// storage fault.
func storeKind(err error) errx.Kind {
	if errors.Is(err, ErrNotFound) {
		return errx.NotFound
	}
	return errx.Unavailable
}
