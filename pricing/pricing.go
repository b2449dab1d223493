/*
Package pricing implements volume-tiered bottle pricing.

PURPOSE:
  A single shared per-bottle price applies to EVERY individual-bottle line in
  the cart at once, chosen by the combined single-bottle count. This is a
  whole-cart volume discount, not a per-line one: adding a sixth bottle of
  any flavor reprices the other five.

KEY CONCEPTS:
  - Tier: an inclusive upper bottle-count bound mapped to a unit price.
    The last tier is unbounded.
  - Shared unit price: UnitPrice(totalSingleBottles), recomputed on every
    cart read. Never cached across mutations.
  - Cleanse bundles are OUTSIDE this table: they keep the per-bottle price
    frozen at add time and their bottles do not count toward the tier
    threshold (they do count toward the minimum-order check, which lives in
    checkout).

INVARIANT:
  Tiers partition the non-negative integers with no gaps and no overlaps;
  exactly one tier matches any count. Validate() enforces this for
  non-default tables.

SEE ALSO:
  - cart: calls UnitPrice from Totals()
  - checkout: applies the shared price when building payment line items
*/
package pricing

import (
	"fmt"
	"math"

	"github.com/juice/storefront-engine/money"
)

// =============================================================================
// TIER TABLE
// =============================================================================

// Tier maps bottle counts up to and including MaxBottles to a unit price.
type Tier struct {
	MaxBottles int
	Price      money.Money
}

// NoUpperBound marks the final, open-ended tier.
const NoUpperBound = math.MaxInt

// TierTable is ordered ascending by MaxBottles; first match wins.
type TierTable []Tier

// DefaultTiers is the production tier table.
//
//	count <= 5   -> $7.99
//	6..11        -> $7.75
//	count >= 12  -> $7.50
var DefaultTiers = TierTable{
	{MaxBottles: 5, Price: money.MustParse("7.99")},
	{MaxBottles: 11, Price: money.MustParse("7.75")},
	{MaxBottles: NoUpperBound, Price: money.MustParse("7.50")},
}

// UnitPrice returns the shared per-bottle price for the given combined
// single-bottle count. Pure: depends only on the input count.
func (t TierTable) UnitPrice(totalSingleBottles int) money.Money {
	for _, tier := range t {
		if totalSingleBottles <= tier.MaxBottles {
			return tier.Price
		}
	}
	// Unreachable with a valid table; mirror a valid table's first tier so a
	// misconfigured deployment fails loud in Validate, not silently here.
	return t[0].Price
}

// Validate checks the partition invariant: strictly ascending bounds and an
// unbounded final tier.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	prev := -1
	for i, tier := range t {
		if tier.MaxBottles <= prev {
			return fmt.Errorf("tier %d: bound %d not ascending", i, tier.MaxBottles)
		}
		if tier.Price.IsNegative() {
			return fmt.Errorf("tier %d: negative price", i)
		}
		prev = tier.MaxBottles
	}
	if t[len(t)-1].MaxBottles != NoUpperBound {
		return fmt.Errorf("last tier must be unbounded")
	}
	return nil
}

// =============================================================================
// CATALOG
// =============================================================================

// Product is a single-bottle catalog entry. BasePrice is the undiscounted
// tier-one price, used for display hints only; the authoritative charge price
// is always the shared tier price at totals time.
type Product struct {
	ID        string
	Name      string
	BasePrice money.Money
}

// DefaultCatalog lists the individual juice products.
var DefaultCatalog = map[string]Product{
	"refresher":   {ID: "refresher", Name: "Refresher", BasePrice: money.MustParse("7.99")},
	"reboot":      {ID: "reboot", Name: "Reboot", BasePrice: money.MustParse("7.99")},
	"island-zing": {ID: "island-zing", Name: "Island Zing", BasePrice: money.MustParse("7.99")},
}
