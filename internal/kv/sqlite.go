package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// sqliteStore keeps values in the kv_store table. Updates are serialized in-process as
// well as by the transaction, since SQLite allows a single writer anyway.
type sqliteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func newSQLiteStore(db *sql.DB) *sqliteStore {
	return &sqliteStore{db: db}
}

const upsertQuery = `INSERT INTO kv_store (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (s *sqliteStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE namespace = ? AND key = ?", namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *sqliteStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, upsertQuery, namespace, key, string(value), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE namespace = ? AND key = ?", namespace, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Update(ctx context.Context, namespace, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	exists := true
	err = tx.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE namespace = ? AND key = ?", namespace, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("failed to read key %q: %w", key, err)
	}

	var currentBytes []byte
	if exists {
		currentBytes = []byte(current)
	}
	next, err := fn(currentBytes, exists)
	if err != nil {
		return err
	}

	if next == nil {
		_, err = tx.ExecContext(ctx, "DELETE FROM kv_store WHERE namespace = ? AND key = ?", namespace, key)
	} else {
		_, err = tx.ExecContext(ctx, upsertQuery, namespace, key, string(next), time.Now().UTC().Format(time.RFC3339Nano))
	}
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close is a no-op; the database is owned by the caller.
func (s *sqliteStore) Close() error {
	return nil
}
