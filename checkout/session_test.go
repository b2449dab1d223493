package checkout_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juice/storefront-engine/cart"
	"github.com/juice/storefront-engine/cart/store"
	"github.com/juice/storefront-engine/checkout"
	"github.com/juice/storefront-engine/delivery"
	"github.com/juice/storefront-engine/money"
	"github.com/juice/storefront-engine/pricing"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// stubResolver validates any complete address at a fixed fee.
type stubResolver struct {
	fee   money.Money
	miles float64
	err   error
}

func (s *stubResolver) Resolve(_ context.Context, addr delivery.Address) (delivery.Resolution, error) {
	if err := delivery.ValidateAddress(addr); err != nil {
		return delivery.Unvalidated(), err
	}
	if s.err != nil {
		return delivery.Unvalidated(), s.err
	}
	return delivery.Resolution{Validated: true, Fee: s.fee, DistanceMiles: s.miles}, nil
}

// stubPayments records requests; optionally blocks until released and
// signals entry so tests can synchronize on the in-flight window.
type stubPayments struct {
	requests []checkout.PaymentRequest
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (s *stubPayments) CreateSession(_ context.Context, req checkout.PaymentRequest) (string, error) {
	if s.entered != nil {
		close(s.entered)
		s.entered = nil
	}
	if s.block != nil {
		<-s.block
	}
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return "cs_test_123", nil
}

func newTestSession(t *testing.T, payments checkout.PaymentClient) *checkout.Session {
	ledger, err := cart.NewLedger(context.Background(), "sess-1", store.NewMemory(), pricing.DefaultTiers, nil)
	require.NoError(t, err)
	resolver := &stubResolver{fee: money.MustParse("7.00"), miles: 10}
	return checkout.NewSession("sess-1", ledger, resolver, payments, nil)
}

func validCustomer() checkout.Customer {
	return checkout.Customer{
		Name:   "Ada Jones",
		Phone:  "4045551234",
		Email:  "ada@example.com",
		Street: "123 Main St",
		City:   "Stone Mountain",
		ZIP:    "30083",
	}
}

func fillCart(t *testing.T, s *checkout.Session, bottles int) {
	require.NoError(t, s.Ledger().AddUnit(context.Background(), "refresher", "Refresher", money.MustParse("7.99"), bottles))
}

func makeReady(t *testing.T, s *checkout.Session, bottles int) {
	fillCart(t, s, bottles)
	s.SetCustomer(validCustomer())
	_, err := s.ValidateDelivery(context.Background())
	require.NoError(t, err)
}

// =============================================================================
// GATE SEQUENCE
// =============================================================================

func TestValidate_GatesFailInOrder(t *testing.T) {
	// Each gate produces its own reason, and the first failure wins.
	s := newTestSession(t, &stubPayments{})
	ctx := context.Background()

	var pre *checkout.PreconditionError

	// Gate 1: empty cart
	require.ErrorAs(t, s.Validate(), &pre)
	assert.Equal(t, checkout.GateCartNonEmpty, pre.Gate)

	// Gate 2: below minimum order
	fillCart(t, s, 3)
	require.ErrorAs(t, s.Validate(), &pre)
	assert.Equal(t, checkout.GateMinimumOrder, pre.Gate)

	// Gate 3: missing customer fields
	require.NoError(t, s.Ledger().AddUnit(ctx, "refresher", "Refresher", money.MustParse("7.99"), 1))
	require.ErrorAs(t, s.Validate(), &pre)
	assert.Equal(t, checkout.GateCustomerFields, pre.Gate)

	// Gate 4: delivery not validated
	s.SetCustomer(validCustomer())
	require.ErrorAs(t, s.Validate(), &pre)
	assert.Equal(t, checkout.GateDeliveryValidated, pre.Gate)

	// All gates pass
	_, err := s.ValidateDelivery(ctx)
	require.NoError(t, err)
	assert.NoError(t, s.Validate())
}

func TestValidate_BundleBottlesCountTowardMinimum(t *testing.T) {
	// A 5-bottle bundle alone satisfies the 4-bottle floor even though it
	// contributes nothing to the pricing tier count.
	s := newTestSession(t, &stubPayments{})
	ctx := context.Background()

	require.NoError(t, s.Ledger().AddBundle(ctx, "5-day-refresher", "5-Day Cleanse", 5, money.MustParse("35.00")))
	s.SetCustomer(validCustomer())
	_, err := s.ValidateDelivery(ctx)
	require.NoError(t, err)

	assert.NoError(t, s.Validate())
}

func TestValidate_FieldFormatsEnforced(t *testing.T) {
	s := newTestSession(t, &stubPayments{})
	fillCart(t, s, 4)
	_, err := s.ValidateDelivery(context.Background())
	// Address fields empty at this point; resolver rejects, which is fine -
	// the cases below each fail the customer-fields gate first anyway.
	_ = err

	cases := []struct {
		name   string
		mutate func(*checkout.Customer)
	}{
		{"short phone", func(c *checkout.Customer) { c.Phone = "404555" }},
		{"email without domain", func(c *checkout.Customer) { c.Email = "ada@" }},
		{"email without tld", func(c *checkout.Customer) { c.Email = "ada@example" }},
		{"four digit zip", func(c *checkout.Customer) { c.ZIP = "3008" }},
		{"blank name", func(c *checkout.Customer) { c.Name = "  " }},
		{"blank city", func(c *checkout.Customer) { c.City = "" }},
	}

	var pre *checkout.PreconditionError
	for _, tc := range cases {
		c := validCustomer()
		tc.mutate(&c)
		s.SetCustomer(c)
		err := s.Validate()
		require.ErrorAs(t, err, &pre, tc.name)
		assert.Equal(t, checkout.GateCustomerFields, pre.Gate, tc.name)
	}

	// Phone punctuation is stripped before matching.
	c := validCustomer()
	c.Phone = "(404) 555-1234"
	s.SetCustomer(c)
	_, err = s.ValidateDelivery(context.Background())
	require.NoError(t, err)
	assert.NoError(t, s.Validate())
}

// =============================================================================
// DELIVERY STATE
// =============================================================================

func TestSetCustomer_AddressEditInvalidatesResolution(t *testing.T) {
	// GIVEN: a validated delivery resolution
	// WHEN: the street is edited without re-validating
	// THEN: the next checkout attempt fails the delivery gate

	s := newTestSession(t, &stubPayments{})
	makeReady(t, s, 4)
	require.NoError(t, s.Validate())

	edited := validCustomer()
	edited.Street = "456 Oak Ave"
	s.SetCustomer(edited)

	assert.False(t, s.Delivery().Validated)
	assert.True(t, s.Delivery().Fee.IsZero(), "invalidated resolution must drop its fee")

	var pre *checkout.PreconditionError
	require.ErrorAs(t, s.Validate(), &pre)
	assert.Equal(t, checkout.GateDeliveryValidated, pre.Gate)
}

func TestSetCustomer_ContactEditKeepsResolution(t *testing.T) {
	s := newTestSession(t, &stubPayments{})
	makeReady(t, s, 4)

	edited := validCustomer()
	edited.Phone = "6785559999"
	s.SetCustomer(edited)

	assert.True(t, s.Delivery().Validated, "contact-only edits keep the resolution")
}

func TestValidateDelivery_FailureLeavesZeroFee(t *testing.T) {
	ledger, err := cart.NewLedger(context.Background(), "sess-1", store.NewMemory(), pricing.DefaultTiers, nil)
	require.NoError(t, err)
	resolver := &stubResolver{err: delivery.ErrOutOfServiceArea}
	s := checkout.NewSession("sess-1", ledger, resolver, &stubPayments{}, nil)

	s.SetCustomer(validCustomer())
	res, err := s.ValidateDelivery(context.Background())
	assert.ErrorIs(t, err, delivery.ErrOutOfServiceArea)
	assert.False(t, res.Validated)
	assert.True(t, s.Delivery().Fee.IsZero())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_MinimumOrderThenSuccess(t *testing.T) {
	// GIVEN: 3 bottles and otherwise valid state
	// WHEN: submitting, then adding a fourth bottle and submitting again
	// THEN: the first attempt fails the minimum-order gate, the second succeeds

	payments := &stubPayments{}
	s := newTestSession(t, payments)
	ctx := context.Background()

	fillCart(t, s, 3)
	s.SetCustomer(validCustomer())
	_, err := s.ValidateDelivery(ctx)
	require.NoError(t, err)

	var pre *checkout.PreconditionError
	_, err = s.Submit(ctx)
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, checkout.GateMinimumOrder, pre.Gate)
	assert.Empty(t, payments.requests, "no request issued on gate failure")

	require.NoError(t, s.Ledger().AddUnit(ctx, "refresher", "Refresher", money.MustParse("7.99"), 1))
	id, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", id)
	require.Len(t, payments.requests, 1)
}

func TestSubmit_SuccessClearsCartAndForm(t *testing.T) {
	payments := &stubPayments{}
	s := newTestSession(t, payments)
	makeReady(t, s, 4)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Ledger().Len())
	assert.Equal(t, checkout.Customer{}, s.Customer())
	assert.False(t, s.Delivery().Validated)
}

func TestSubmit_RequestBodyCarriesCentsAndEmail(t *testing.T) {
	payments := &stubPayments{}
	s := newTestSession(t, payments)
	makeReady(t, s, 4)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	req := payments.requests[0]
	assert.Equal(t, "ada@example.com", req.CustomerEmail)
	assert.Equal(t, int64(700), req.DeliveryFee)
	require.Len(t, req.Items, 2) // 4 bottles + delivery line
	assert.Equal(t, int64(799), req.Items[0].UnitAmountCents)
	assert.Equal(t, 4, req.Items[0].Quantity)
	assert.Equal(t, checkout.DeliveryLineName, req.Items[1].Name)
	assert.NotEmpty(t, req.Metadata["attempt_id"])
}

func TestSubmit_PaymentFailureKeepsStateQueryable(t *testing.T) {
	payments := &stubPayments{err: fmt.Errorf("%w: card declined", checkout.ErrPaymentRejected)}
	s := newTestSession(t, payments)
	makeReady(t, s, 4)

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, checkout.ErrPaymentRejected)

	// Cart, form, and resolution survive for a retry.
	assert.Equal(t, 1, s.Ledger().Len())
	assert.True(t, s.Delivery().Validated)
	assert.NoError(t, s.Validate())
}

func TestSubmit_DuplicateWhileInFlightRejected(t *testing.T) {
	// GIVEN: a submission blocked inside the payment call
	// WHEN: a second Submit arrives
	// THEN: it is rejected with ErrInFlight, not queued

	payments := &stubPayments{block: make(chan struct{}), entered: make(chan struct{})}
	s := newTestSession(t, payments)
	makeReady(t, s, 4)
	entered := payments.entered

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	// Wait until the first submission is blocked inside the payment client.
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the payment client")
	}

	_, dupErr := s.Submit(context.Background())
	assert.ErrorIs(t, dupErr, checkout.ErrInFlight)

	close(payments.block)
	require.NoError(t, <-done)
	assert.Len(t, payments.requests, 1, "only the first submission reached the processor")
}
