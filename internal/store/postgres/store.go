// Package postgres implements links.Store on a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/links"
)

//go:embed schema.sql
var schema string

const (
	queryFindByURL  = `SELECT code, url, created_at FROM links WHERE url = $1 LIMIT 1`
	queryFindByCode = `SELECT code, url, created_at FROM links WHERE code = $1`
	queryInsert     = `INSERT INTO links (code, url, created_at) VALUES ($1, $2, $3)`
	queryDelete     = `DELETE FROM links WHERE code = $1`
)

// dbtx is the subset of *pgxpool.Pool the store uses.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	db dbtx
}

var _ links.Store = (*Store)(nil)

// New returns a Store that owns pool. Close releases it.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Connect opens a pool from a pgx connection string and verifies it.
func Connect(ctx context.Context, connString string, maxConns, minConns int32) (*Store, error) {
	const op = "postgres.Connect"

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errx.E(op, errx.Invalid, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errx.E(op, errx.Unavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errx.E(op, errx.Unavailable, err)
	}
	return New(pool), nil
}

// EnsureSchema runs the embedded DDL. Without arguments pgx uses the simple
// protocol, so the multi-statement script runs in one round trip.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "postgres.store.EnsureSchema"

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

func (s *Store) FindCodeByURL(ctx context.Context, url string) (links.Link, error) {
	const op = "postgres.store.FindCodeByURL"
	return s.findOne(ctx, op, queryFindByURL, url)
}

func (s *Store) FindURLByCode(ctx context.Context, code string) (links.Link, error) {
	const op = "postgres.store.FindURLByCode"
	return s.findOne(ctx, op, queryFindByCode, code)
}

func (s *Store) findOne(ctx context.Context, op, query, arg string) (links.Link, error) {
	var l links.Link
	if err := s.db.QueryRow(ctx, query, arg).Scan(&l.Code, &l.URL, &l.CreatedAt); err != nil {
		return links.Link{}, mapError(op, err)
	}
	return l, nil
}

func (s *Store) Insert(ctx context.Context, link links.Link) error {
	const op = "postgres.store.Insert"

	if _, err := s.db.Exec(ctx, queryInsert, link.Code, link.URL, link.CreatedAt); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (s *Store) DeleteByCode(ctx context.Context, code string) (int64, error) {
	const op = "postgres.store.DeleteByCode"

	tag, err := s.db.Exec(ctx, queryDelete, code)
	if err != nil {
		return 0, mapError(op, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	const op = "postgres.store.Ping"
	return errx.E(op, errx.Unavailable, s.db.Ping(ctx))
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}
