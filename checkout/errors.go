/*
errors.go - Centralized error types for checkout

ERROR CATEGORIES:
  1. Precondition errors - a readiness gate failed; carries WHICH gate so
     the user sees the specific unmet requirement
  2. In-flight conflict - a duplicate submission while one is outstanding
  3. Payment errors - the external processor rejected the session request

All are recoverable: the ledger and delivery state stay queryable after any
of them.
*/
package checkout

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPreconditionFailed is returned when checkout is attempted before
	// every readiness gate passes.
	ErrPreconditionFailed = errors.New("checkout precondition failed")

	// ErrInFlight is returned when a submission is attempted while another
	// is outstanding. The duplicate is rejected, never queued.
	ErrInFlight = errors.New("checkout already in progress")

	// ErrPaymentRejected is returned when the payment endpoint answers with
	// an error instead of a session id.
	ErrPaymentRejected = errors.New("payment session rejected")
)

// =============================================================================
// GATES
// =============================================================================

// Gate names a checkout readiness requirement. Gates are evaluated in order
// and the first failure wins.
type Gate string

const (
	GateCartNonEmpty      Gate = "cart_non_empty"
	GateMinimumOrder      Gate = "minimum_order"
	GateCustomerFields    Gate = "customer_fields"
	GateDeliveryValidated Gate = "delivery_validated"
)

// PreconditionError reports the first unmet gate with a user-facing reason.
type PreconditionError struct {
	Gate   Gate
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Gate, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionFailed }
