/*
ledger.go - Cart ledger operations and totals computation

PURPOSE:
  Implements the mutation operations (add unit, add bundle, adjust, remove,
  clear) and the single authoritative totals computation over the line-item
  collection.

MUTATION CONTRACT:
  Every mutation validates first (no mutation on failure), applies in memory,
  then persists the FULL serialized ledger before returning. If the persist
  fails the in-memory change is rolled back, so the ledger always matches
  either its prior or its post-mutation persisted form.

TOTALS CONTRACT:
  Totals() recomputes from scratch on every call:
    1. Sum non-bundle quantities -> singleBottleCount
    2. sharedUnitPrice = tiers.UnitPrice(singleBottleCount)
    3. line total = frozen unit price for bundles, shared price otherwise
    4. subtotal and total bottle count across all lines
  A cached subtotal would go stale the moment one mutation shifts the shared
  tier applied to every other single-bottle line.

BUNDLE PRICE FREEZE:
  Re-adding an existing bundle SKU sums quantities but never recomputes the
  frozen unit price, even if the caller passes a different total/count ratio.
  This matches long-standing storefront behavior (promotional price lock-in);
  see the re-add test before changing it.

SEE ALSO:
  - types.go: LineItem, Totals, Store
  - pricing: the tier table consulted by Totals
*/
package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/juice/storefront-engine/money"
	"github.com/juice/storefront-engine/pricing"
)

// Ledger is one customer session's cart. It owns the in-memory line items
// and writes through to the Store after every mutation.
type Ledger struct {
	mu        sync.Mutex
	sessionID string
	items     []LineItem
	store     Store
	tiers     pricing.TierTable
	log       *zap.Logger
}

// NewLedger restores the session's ledger from the store, or starts empty
// when nothing is persisted yet.
func NewLedger(ctx context.Context, sessionID string, store Store, tiers pricing.TierTable, log *zap.Logger) (*Ledger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	items, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("restore cart %q: %w", sessionID, err)
	}
	return &Ledger{
		sessionID: sessionID,
		items:     items,
		store:     store,
		tiers:     tiers,
		log:       log.With(zap.String("session", sessionID)),
	}, nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AddUnit adds quantity bottles of a single-bottle product. The unit price
// hint is captured for display; the charge price is always the shared tier
// price at totals time. Adding to an existing non-bundle line sums
// quantities; otherwise the line is appended preserving insertion order.
func (l *Ledger) AddUnit(ctx context.Context, productID, displayName string, unitPriceHint money.Money, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	mutate := func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == productID && !items[i].IsBundle {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, LineItem{
			ProductID:   productID,
			DisplayName: displayName,
			UnitPrice:   unitPriceHint,
			Quantity:    quantity,
		})
	}
	if err := l.applyLocked(ctx, mutate); err != nil {
		return err
	}

	l.log.Info("unit added", zap.String("product", productID), zap.Int("quantity", quantity))
	return nil
}

// AddBundle adds a cleanse bundle line. BundleID is the full SKU
// (cleanse-type + flavor), so each flavor variant is its own line. The unit
// price is bundleTotal / bottleCount, frozen at first add: a later add of
// the same SKU increases quantity but keeps the first add's price.
func (l *Ledger) AddBundle(ctx context.Context, bundleID, displayName string, bottleCount int, bundleTotal money.Money) error {
	if bottleCount <= 0 {
		return &InvalidBundleError{BundleID: bundleID, BottleCount: bottleCount}
	}

	unitPrice := bundleTotal.DivInt(bottleCount)

	l.mu.Lock()
	defer l.mu.Unlock()

	mutate := func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == bundleID && items[i].IsBundle {
				// Quantity only. First-add unit price persists.
				items[i].Quantity += bottleCount
				return items
			}
		}
		return append(items, LineItem{
			ProductID:   bundleID,
			DisplayName: displayName,
			UnitPrice:   unitPrice,
			Quantity:    bottleCount,
			IsBundle:    true,
		})
	}
	if err := l.applyLocked(ctx, mutate); err != nil {
		return err
	}

	l.log.Info("bundle added",
		zap.String("bundle", bundleID),
		zap.Int("bottles", bottleCount),
		zap.String("unit_price", unitPrice.String()))
	return nil
}

// AdjustQuantity applies a delta to an existing line. A resulting quantity
// of zero or below removes the line entirely. Adjusting an absent line is a
// no-op.
func (l *Ledger) AdjustQuantity(ctx context.Context, productID string, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mutate := func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID != productID {
				continue
			}
			items[i].Quantity += delta
			if items[i].Quantity <= 0 {
				return append(items[:i], items[i+1:]...)
			}
			return items
		}
		return items
	}
	return l.applyLocked(ctx, mutate)
}

// Remove deletes a line. Idempotent: removing an absent id is a no-op.
func (l *Ledger) Remove(ctx context.Context, productID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mutate := func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == productID {
				return append(items[:i], items[i+1:]...)
			}
		}
		return items
	}
	return l.applyLocked(ctx, mutate)
}

// Clear empties the ledger and the persisted state.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.items
	l.items = nil
	if err := l.store.Delete(ctx, l.sessionID); err != nil {
		l.items = prev
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	l.log.Info("cart cleared")
	return nil
}

// applyLocked runs a mutation over a copy of the lines, persists the result,
// and commits in memory only if the persist succeeds. Callers hold l.mu.
func (l *Ledger) applyLocked(ctx context.Context, mutate func([]LineItem) []LineItem) error {
	next := mutate(append([]LineItem(nil), l.items...))
	if err := l.store.Save(ctx, l.sessionID, next); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	l.items = next
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Len returns the number of lines.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Line returns the line for a productID, if present.
func (l *Ledger) Line(productID string) (LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LineItem(nil), l.items...)
}

// Totals recomputes the priced view of the ledger. Called on every read;
// never cached.
func (l *Ledger) Totals() Totals {
	l.mu.Lock()
	defer l.mu.Unlock()

	singleBottles := 0
	for _, item := range l.items {
		if !item.IsBundle {
			singleBottles += item.Quantity
		}
	}
	shared := l.tiers.UnitPrice(singleBottles)

	totals := Totals{
		Lines:             make([]LineTotal, 0, len(l.items)),
		Subtotal:          money.Zero(),
		SingleBottleCount: singleBottles,
		SharedUnitPrice:   shared,
	}
	for _, item := range l.items {
		unit := shared
		if item.IsBundle {
			unit = item.UnitPrice
		}
		lineTotal := unit.MulInt(item.Quantity)
		totals.Lines = append(totals.Lines, LineTotal{
			ProductID:   item.ProductID,
			DisplayName: item.DisplayName,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			LineTotal:   lineTotal,
			IsBundle:    item.IsBundle,
		})
		totals.Subtotal = totals.Subtotal.Add(lineTotal)
		totals.TotalBottleCount += item.Quantity
	}
	return totals
}
