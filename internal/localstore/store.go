// Package localstore keeps client state that never leaves this machine:
// the session token and the monthly budget.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const (
	keyToken  = "session.token"
	keyBudget = "budget.monthly"
)

type Store struct {
	db *sql.DB
}

// Open creates the database file and its directory if needed and brings the
// schema up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite allows one writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadToken(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, keyToken)
	return v, err
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.put(ctx, keyToken, token)
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.del(ctx, keyToken)
}

func (s *Store) LoadBudget(ctx context.Context) (decimal.Decimal, bool, error) {
	v, ok, err := s.get(ctx, keyBudget)
	if err != nil || !ok {
		return decimal.Zero, false, err
	}
	amount, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("stored budget %q: %w", v, err)
	}
	return amount, true, nil
}

func (s *Store) SaveBudget(ctx context.Context, amount decimal.Decimal) error {
	return s.put(ctx, keyBudget, amount.String())
}

func (s *Store) ClearBudget(ctx context.Context) error {
	return s.del(ctx, keyBudget)
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
