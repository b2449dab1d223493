/*
Package sqlite provides a SQLite-backed cart.Store.

PURPOSE:
  Durable cart persistence for single-host deployments. The contract is
  deliberately key-value: one row per session holding the full serialized
  ledger. A mutation replaces the whole row in a single statement, so a
  crash mid-write never leaves a ledger torn across rows.

SCHEMA:
  cart_ledgers(session_id PRIMARY KEY, items_json, updated_at)

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Readers don't block the single writer
  - Better crash recovery

CONCURRENCY:
  sync.RWMutex guards the connection; the engine itself is a single logical
  thread of control, so contention here is only cross-session.

USAGE:
  st, err := sqlite.New("./data/storefront.db")
  if err != nil { ... }
  defer st.Close()
  ledger, err := cart.NewLedger(ctx, sessionID, st, pricing.DefaultTiers, log)

SEE ALSO:
  - cart/types.go: Store interface
  - cart/store/memory.go: in-memory implementation for testing
  - store/redis: Redis implementation for multi-host deployments
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/juice/storefront-engine/cart"
)

// Store implements cart.Store over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cart_ledgers (
			session_id TEXT PRIMARY KEY,
			items_json TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// cart.Store IMPLEMENTATION
// =============================================================================

func (s *Store) Load(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT items_json FROM cart_ledgers WHERE session_id = ?`, sessionID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart %q: %w", sessionID, err)
	}
	return items, nil
}

func (s *Store) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart %q: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cart_ledgers (session_id, items_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			items_json = excluded.items_json,
			updated_at = excluded.updated_at
	`, sessionID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_ledgers WHERE session_id = ?`, sessionID,
	); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
