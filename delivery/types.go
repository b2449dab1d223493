/*
Package delivery resolves a customer address to a delivery fee.

PURPOSE:
  Turning an address into a go/no-go delivery decision plus a fee. Two
  interchangeable strategies satisfy the same Resolver contract:

  - Geocode strategy: geocode the address, ask the provider for driving
    distance, fall back to great-circle distance when the routing call
    fails. Fee from an ordered distance-tier table.
  - ZIP-bucket strategy: no provider configured; accept only ZIP codes in
    the service region and estimate distance from the numeric gap to the
    store's ZIP. Flat fee.

  Deployment picks exactly one strategy. The superseded heuristics from the
  earlier storefront variants are NOT merged into either.

KEY INVARIANT:
  A Resolution with Validated == false always carries a zero fee. A failed
  or not-yet-attempted resolution must never contribute to order totals.

SEE ALSO:
  - geocode.go, zipbucket.go: the two strategies
  - checkout: stores the Resolution and invalidates it on address edits
*/
package delivery

import (
	"context"

	"github.com/juice/storefront-engine/money"
)

// Address is the customer-supplied delivery destination.
type Address struct {
	Street string
	City   string
	ZIP    string
}

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Resolution is the outcome of validating a delivery address.
// FailureReason is set only when Validated is false; Fee is zero whenever
// Validated is false.
type Resolution struct {
	Validated     bool
	Fee           money.Money
	DistanceMiles float64
	FailureReason string
}

// Unvalidated is the reset state: not validated, zero fee.
func Unvalidated() Resolution {
	return Resolution{Fee: money.Zero()}
}

func failed(distance float64, reason string) Resolution {
	return Resolution{Fee: money.Zero(), DistanceMiles: distance, FailureReason: reason}
}

// Resolver maps an address to a Resolution. Implementations discard any
// prior state before resolving; each call stands alone.
type Resolver interface {
	Resolve(ctx context.Context, addr Address) (Resolution, error)
}
