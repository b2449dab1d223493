/*
Package redis provides a Redis-backed cart.Store.

PURPOSE:
  Cart persistence for multi-host deployments where sessions move between
  processes. The persisted contract is the same as the SQLite store: one key
  per session holding the full serialized ledger, replaced atomically on
  every write.

KEYS:
  cart:{sessionID} -> JSON array of line items

TTL:
  Carts expire after the configured TTL (default 7 days) so abandoned
  sessions don't accumulate. Every write refreshes the clock.

SEE ALSO:
  - cart/types.go: Store interface
  - store/sqlite: single-host implementation
*/
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/juice/storefront-engine/cart"
)

const defaultTTL = 7 * 24 * time.Hour

// Store implements cart.Store over Redis.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
}

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // zero means the 7-day default
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func key(sessionID string) string {
	return "cart:" + sessionID
}

// =============================================================================
// cart.Store IMPLEMENTATION
// =============================================================================

func (s *Store) Load(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, goredis.Nil) {
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
	if err := s.client.Set(ctx, key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
