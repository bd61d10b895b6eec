// Package postgres implements the cart slot on a single key-value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
)

type Slot struct {
	db *sql.DB
}

// New returns a Postgres-backed slot. The caller must ensure the cart_slots
// table exists; see EnsureSchema.
func New(db *sql.DB) *Slot {
	return &Slot{db: db}
}

// EnsureSchema creates the backing table when missing.
func (s *Slot) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS cart_slots (key TEXT PRIMARY KEY, value BYTEA NOT NULL)")
	return err
}

func (s *Slot) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM cart_slots WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Slot) Write(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cart_slots (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		key, value)
	return err
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_slots WHERE key = $1", key)
	return err
}
