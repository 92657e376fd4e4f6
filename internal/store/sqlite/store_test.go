package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/links"
)

func newTestStore(t *testing.T, maxConns int) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := Open(ctx, filepath.Join(t.TempDir(), "links.db"), maxConns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t, 1)
	ctx := context.Background()
	link := links.Link{Code: "Ab12Cd", URL: "https://example.com/a", CreatedAt: 1700000000}

	require.NoError(t, store.Insert(ctx, link))

	byURL, err := store.FindCodeByURL(ctx, link.URL)
	require.NoError(t, err)
	assert.Equal(t, link, byURL)

	byCode, err := store.FindURLByCode(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, link, byCode)
}

func TestStore_EnsureSchemaIsIdempotent(t *testing.T) {
	store := newTestStore(t, 1)
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.EnsureSchema(context.Background()))
}

func TestStore_UniqueViolation(t *testing.T) {
	store := newTestStore(t, 1)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, links.Link{Code: "Ab12Cd", URL: "https://example.com/a", CreatedAt: 1}))

	tests := []struct {
		name string
		link links.Link
	}{
		{name: "same code", link: links.Link{Code: "Ab12Cd", URL: "https://example.com/b", CreatedAt: 2}},
		{name: "same url", link: links.Link{Code: "Zz99Yy", URL: "https://example.com/a", CreatedAt: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Insert(ctx, tt.link)
			require.Error(t, err)
			assert.ErrorIs(t, err, links.ErrUniqueViolation)
			assert.Equal(t, errx.Conflict, errx.KindOf(err))
			assert.Equal(t, "sqlite.store.Insert", errx.OpOf(err))
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t, 1)
	ctx := context.Background()

	_, err := store.FindURLByCode(ctx, "nope00")
	assert.ErrorIs(t, err, links.ErrNotFound)
	assert.Equal(t, errx.NotFound, errx.KindOf(err))

	_, err = store.FindCodeByURL(ctx, "https://nowhere.example")
	assert.ErrorIs(t, err, links.ErrNotFound)
}

func TestStore_DeleteByCode(t *testing.T) {
	store := newTestStore(t, 1)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, links.Link{Code: "Ab12Cd", URL: "https://example.com/a", CreatedAt: 1}))

	n, err := store.DeleteByCode(ctx, "Ab12Cd")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.DeleteByCode(ctx, "Ab12Cd")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "deleting twice is not an error")

	_, err = store.FindURLByCode(ctx, "Ab12Cd")
	assert.ErrorIs(t, err, links.ErrNotFound)
}

func TestStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	store := newTestStore(t, 1)
	require.NoError(t, store.Close())

	err := store.Insert(context.Background(), links.Link{Code: "Ab12Cd", URL: "https://example.com/a"})
	assert.Equal(t, errx.Unavailable, errx.KindOf(err))
	assert.False(t, errors.Is(err, links.ErrUniqueViolation))
	assert.Error(t, store.Ping(context.Background()))
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:", 8)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Insert(ctx, links.Link{Code: "Ab12Cd", URL: "https://example.com/a", CreatedAt: 1}))
	_, err = store.FindURLByCode(ctx, "Ab12Cd")
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentCreateOnSQLite(t *testing.T) {
	store := newTestStore(t, 4)
	reg := links.NewRegistry(store, nil)

	const callers = 12
	codes := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link, err := reg.Create(context.Background(), "https://example.com/race")
			if assert.NoError(t, err) {
				codes[i] = link.Code
			}
		}()
	}
	wg.Wait()

	for i, c := range codes {
		assert.Equal(t, codes[0], c, fmt.Sprintf("caller %d saw a different code", i))
	}
}
