/*
Package cart provides the storefront's authoritative line-item ledger.

PURPOSE:
  The Ledger is the single source of truth for what the customer has
  selected: individual bottles and multi-bottle cleanse bundles. Totals are
  ALWAYS derived by recomputation - there is no cached subtotal that can go
  stale when a mutation shifts the shared price tier for every other line.

KEY CONCEPTS IN THIS FILE (types.go):
  - LineItem: one cart entry; quantity counts bottles, not packages
  - Totals: the single authoritative totals computation result
  - Store: persistence contract (one serialized ledger per session key)

DESIGN PRINCIPLES:
  1. One entry per productId; adds to an existing line sum quantities
  2. Quantity > 0 always; a line driven to zero or below is removed
  3. Bundle unit prices are frozen at add time; single-bottle prices are
     recomputed live from the tier table
  4. Every mutation persists the full ledger before returning

SEE ALSO:
  - ledger.go: mutation operations and totals
  - errors.go: sentinel and structured errors
  - store/memory.go, store/sqlite, store/redis: Store implementations
*/
package cart

import (
	"context"

	"github.com/juice/storefront-engine/money"
)

// =============================================================================
// LINE ITEM
// =============================================================================

// LineItem is a single ledger entry.
//
// Quantity is the bottle count this line represents: a 5-day cleanse bundle
// is one line with Quantity 5, not "1 bundle". For bundle lines UnitPrice is
// authoritative and frozen at add time (bundle total / bottle count). For
// single-bottle lines UnitPrice is only the display hint captured at add
// time; the charge price is the shared tier price at totals time.
type LineItem struct {
	ProductID   string      `json:"productId"`
	DisplayName string      `json:"name"`
	UnitPrice   money.Money `json:"price"`
	Quantity    int         `json:"quantity"`
	IsBundle    bool        `json:"isCleanse,omitempty"`
}

// =============================================================================
// TOTALS
// =============================================================================

// LineTotal is one priced line in a Totals result.
type LineTotal struct {
	ProductID   string
	DisplayName string
	Quantity    int
	UnitPrice   money.Money
	LineTotal   money.Money
	IsBundle    bool
}

// Totals is the authoritative priced view of the ledger.
type Totals struct {
	Lines             []LineTotal
	Subtotal          money.Money
	TotalBottleCount  int // all lines, bundles included (minimum-order gate)
	SingleBottleCount int // non-bundle lines only (tier threshold)
	SharedUnitPrice   money.Money
}

// =============================================================================
// STORE - Persistence contract
// =============================================================================

// Store persists the serialized ledger under a session key. The full line
// slice is the unit of persistence: a write replaces the whole value, so a
// crash never leaves a half-updated ledger split across keys.
type Store interface {
	// Load returns the persisted lines for the session, or (nil, nil) when
	// nothing has been stored yet.
	Load(ctx context.Context, sessionID string) ([]LineItem, error)

	// Save replaces the persisted lines for the session.
	Save(ctx context.Context, sessionID string, items []LineItem) error

	// Delete removes the persisted state. Deleting an absent key is a no-op.
	Delete(ctx context.Context, sessionID string) error
}
