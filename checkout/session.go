/*
session.go - Checkout session: readiness gates, delivery state, submission

PURPOSE:
  One Session per customer session owns the checkout-side state: the cart
  ledger, the customer form, the current delivery resolution, and the
  in-flight submission latch. It is the only path to the payment processor.

READINESS GATES (evaluated fresh on every attempt, first failure wins):
  1. Cart non-empty
  2. Total bottle count >= 4 (bundle bottles count)
  3. Customer fields present and well-formed
  4. Delivery resolution validated

  There is no cached "ready" flag: any cart or address edit can invalidate a
  prior Ready, so Validate recomputes from live state each time.

DELIVERY STATE:
  The stored Resolution is replaced wholesale by ValidateDelivery and reset
  to unvalidated whenever a delivery-relevant field (street/city/ZIP) is
  edited. A resolution in a failed state never carries a fee.

SUBMISSION:
  Submit is guarded by a boolean latch: a second call while one is in
  flight returns ErrInFlight without issuing a request. On success the
  ledger and form are cleared; on failure all state stays queryable so the
  customer can retry.

SEE ALSO:
  - builder.go: the line-item payload construction
  - payment.go: the external processor client
*/
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juice/storefront-engine/cart"
	"github.com/juice/storefront-engine/delivery"
)

// MinimumOrderBottles is the global order floor, counting bundle bottles.
const MinimumOrderBottles = 4

// Session owns one customer's checkout state.
type Session struct {
	ID string

	mu         sync.Mutex
	ledger     *cart.Ledger
	resolver   delivery.Resolver
	payments   PaymentClient
	log        *zap.Logger
	customer   Customer
	resolution delivery.Resolution

	// Latch around the payment call; CAS so the duplicate is rejected, not
	// queued behind the mutex.
	inFlight atomic.Bool
}

// NewSession builds a session over its collaborators. The id also serves as
// the ledger's persistence key upstream.
func NewSession(id string, ledger *cart.Ledger, resolver delivery.Resolver, payments PaymentClient, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		ID:         id,
		ledger:     ledger,
		resolver:   resolver,
		payments:   payments,
		log:        log.With(zap.String("session", id)),
		resolution: delivery.Unvalidated(),
	}
}

// Ledger exposes the session's cart for mutation operations.
func (s *Session) Ledger() *cart.Ledger { return s.ledger }

// =============================================================================
// CUSTOMER / DELIVERY STATE
// =============================================================================

// SetCustomer replaces the checkout form fields. Editing street, city, or
// ZIP after a resolution exists resets it to unvalidated; the resolver must
// be re-run explicitly before checkout can pass the delivery gate.
func (s *Session) SetCustomer(c Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolution.Validated && c.addressChanged(s.customer) {
		s.resolution = delivery.Unvalidated()
		s.log.Info("address edited, delivery resolution invalidated")
	}
	s.customer = c
}

// Customer returns the current form fields.
func (s *Session) Customer() Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// ValidateDelivery runs the resolver against the current address fields and
// stores the outcome, replacing any prior resolution. The returned error is
// the resolver's (out-of-area, provider failure, bad fields); the stored
// Resolution is consistent either way.
func (s *Session) ValidateDelivery(ctx context.Context) (delivery.Resolution, error) {
	s.mu.Lock()
	addr := delivery.Address{Street: s.customer.Street, City: s.customer.City, ZIP: s.customer.ZIP}
	// Discard the prior resolution before the network call so a concurrent
	// reader never sees stale validated state mid-resolve.
	s.resolution = delivery.Unvalidated()
	s.mu.Unlock()

	res, err := s.resolver.Resolve(ctx, addr)

	s.mu.Lock()
	s.resolution = res
	s.mu.Unlock()
	return res, err
}

// Delivery returns the current resolution.
func (s *Session) Delivery() delivery.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

// =============================================================================
// READINESS GATES
// =============================================================================

// Validate evaluates the readiness gates in order against live state and
// returns a PreconditionError naming the first unmet gate, or nil when the
// order is ready to submit.
func (s *Session) Validate() error {
	totals := s.ledger.Totals()

	s.mu.Lock()
	customer := s.customer
	resolution := s.resolution
	s.mu.Unlock()

	if len(totals.Lines) == 0 {
		return &PreconditionError{Gate: GateCartNonEmpty, Reason: "your cart is empty"}
	}
	if totals.TotalBottleCount < MinimumOrderBottles {
		return &PreconditionError{
			Gate:   GateMinimumOrder,
			Reason: fmt.Sprintf("minimum order is %d bottles", MinimumOrderBottles),
		}
	}
	if reason := customer.validate(); reason != "" {
		return &PreconditionError{Gate: GateCustomerFields, Reason: reason}
	}
	if !resolution.Validated {
		return &PreconditionError{
			Gate:   GateDeliveryValidated,
			Reason: "please validate your delivery address",
		}
	}
	return nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit validates, builds the line-item payload, and creates the payment
// session. Exactly one submission may be outstanding; duplicates get
// ErrInFlight. A successful submission clears the ledger and form.
func (s *Session) Submit(ctx context.Context) (string, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return "", ErrInFlight
	}
	defer s.inFlight.Store(false)

	if err := s.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	email := s.customer.Email
	fee := s.resolution.Fee
	s.mu.Unlock()

	items := BuildLineItems(s.ledger.Totals(), fee)
	req := PaymentRequest{
		Items:         items,
		DeliveryFee:   fee.Cents(),
		CustomerEmail: email,
		Metadata: map[string]string{
			"site":       "JuicE Drinks",
			"attempt_id": uuid.NewString(),
		},
	}

	sessionID, err := s.payments.CreateSession(ctx, req)
	if err != nil {
		s.log.Warn("payment session creation failed", zap.Error(err))
		return "", err
	}

	// Post-payment cleanup is best effort: the order is already placed, so a
	// store hiccup here must not surface as a checkout failure.
	if err := s.ledger.Clear(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("cart clear after submission failed", zap.Error(err))
	}
	s.mu.Lock()
	s.customer = Customer{}
	s.resolution = delivery.Unvalidated()
	s.mu.Unlock()

	s.log.Info("checkout submitted", zap.String("payment_session", sessionID))
	return sessionID, nil
}
