// Package store provides an in-memory cart.Store for tests and development.
package store

import (
	"context"
	"sync"

	"github.com/juice/storefront-engine/cart"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	ledgers map[string][]cart.LineItem
}

func NewMemory() *Memory {
	return &Memory{ledgers: make(map[string][]cart.LineItem)}
}

func (m *Memory) Load(_ context.Context, sessionID string) ([]cart.LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items, ok := m.ledgers[sessionID]
	if !ok {
		return nil, nil
	}
	result := make([]cart.LineItem, len(items))
	copy(result, items)
	return result, nil
}

func (m *Memory) Save(_ context.Context, sessionID string, items []cart.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]cart.LineItem, len(items))
	copy(stored, items)
	m.ledgers[sessionID] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledgers, sessionID)
	return nil
}
