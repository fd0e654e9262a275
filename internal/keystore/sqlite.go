package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS entries (
	name        TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	fingerprint BLOB NOT NULL,
	data        BLOB NOT NULL,
	created_at  INTEGER NOT NULL
)`

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, e *Entry) error {
	if err := e.check(); err != nil {
		return err
	}

	query := `INSERT OR REPLACE INTO entries (name, kind, fingerprint, data, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, e.Name, string(e.Kind), e.Fingerprint, e.Data, e.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (*Entry, error) {
	query := `SELECT kind, fingerprint, data, created_at FROM entries WHERE name = ?`

	var kind string
	var created int64
	e := &Entry{Name: name}
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&kind, &e.Fingerprint, &e.Data, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	e.Kind = Kind(kind)
	e.CreatedAt = time.Unix(0, created).UTC()

	return e, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return nil
}

func (s *SQLiteStore) List(ctx context.Context) (names []string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM entries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return names, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
