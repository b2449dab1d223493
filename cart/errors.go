/*
errors.go - Centralized error types for the cart ledger

PURPOSE:
  All cart error values in one place. Callers branch with errors.Is; the
  structured types carry the context the API layer surfaces to the user.

ERROR CATEGORIES:
  1. Validation errors - bad quantities, rejected before any mutation
  2. Bundle errors - invalid bundle specs, rejected before any mutation
  3. Store errors - persistence failures, wrapped with operation context

SEE ALSO:
  - ledger.go: returns these errors
  - api/handlers.go: maps them to HTTP statuses
*/
package cart

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidQuantity is returned when an add or adjust is attempted with
	// a non-positive quantity. The ledger is not mutated.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")

	// ErrInvalidBundleSpec is returned when a bundle add carries a zero or
	// negative bottle count. The ledger is not mutated.
	ErrInvalidBundleSpec = errors.New("invalid bundle spec")

	// ErrStoreFailed is returned when the persistent store rejects a write.
	ErrStoreFailed = errors.New("cart store write failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidBundleError reports a rejected bundle add.
type InvalidBundleError struct {
	BundleID    string
	BottleCount int
}

func (e *InvalidBundleError) Error() string {
	return fmt.Sprintf("invalid bottle count %d for bundle %q", e.BottleCount, e.BundleID)
}

func (e *InvalidBundleError) Unwrap() error { return ErrInvalidBundleSpec }

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) || errors.Is(err, ErrInvalidBundleSpec)
}
