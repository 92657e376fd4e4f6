// Package sqlite implements links.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"net/url"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/links"
)

//go:embed schema.sql
var schema string

const (
	driverName  = "sqlite"
	memoryDB    = ":memory:"
	busyTimeout = "5000"
)

const (
	queryFindByURL  = `SELECT code, url, created_at FROM links WHERE url = ? LIMIT 1`
	queryFindByCode = `SELECT code, url, created_at FROM links WHERE code = ?`
	queryInsert     = `INSERT INTO links (code, url, created_at) VALUES (?, ?, ?)`
	queryDelete     = `DELETE FROM links WHERE code = ?`
)

type Store struct {
	db *sql.DB
}

var _ links.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path. Writers wait
// up to five seconds for the file lock. An in-memory database is limited
// to a single connection, since every connection would otherwise see its
// own empty database.
func Open(ctx context.Context, path string, maxConns int) (*Store, error) {
	const op = "sqlite.Open"

	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, errx.E(op, errx.Invalid, err)
	}

	if path == memoryDB || maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errx.E(op, errx.Unavailable, err)
	}
	return &Store{db: db}, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout("+busyTimeout+")")
	if path != memoryDB {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + q.Encode()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "sqlite.store.EnsureSchema"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

func (s *Store) FindCodeByURL(ctx context.Context, rawURL string) (links.Link, error) {
	const op = "sqlite.store.FindCodeByURL"
	return s.findOne(ctx, op, queryFindByURL, rawURL)
}

func (s *Store) FindURLByCode(ctx context.Context, code string) (links.Link, error) {
	const op = "sqlite.store.FindURLByCode"
	return s.findOne(ctx, op, queryFindByCode, code)
}

func (s *Store) findOne(ctx context.Context, op, query, arg string) (links.Link, error) {
	var l links.Link
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&l.Code, &l.URL, &l.CreatedAt); err != nil {
		return links.Link{}, mapError(op, err)
	}
	return l, nil
}

func (s *Store) Insert(ctx context.Context, link links.Link) error {
	const op = "sqlite.store.Insert"

	if _, err := s.db.ExecContext(ctx, queryInsert, link.Code, link.URL, link.CreatedAt); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (s *Store) DeleteByCode(ctx context.Context, code string) (int64, error) {
	const op = "sqlite.store.DeleteByCode"

	res, err := s.db.ExecContext(ctx, queryDelete, code)
	if err != nil {
		return 0, mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errx.E(op, errx.Unavailable, err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	const op = "sqlite.store.Ping"
	return errx.E(op, errx.Unavailable, s.db.PingContext(ctx))
}

func (s *Store) Close() error {
	return s.db.Close()
}
