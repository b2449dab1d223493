/*
builder.go - Payment line-item construction

PURPOSE:
  Converts the validated cart plus the resolved delivery fee into the
  ordered line-item list handed to the payment processor. This is the ONLY
  place amounts become integer minor units: bundle unit prices like
  $35.00/3 stay exact decimals through every recomputation and round exactly
  once here.

SHAPE:
  One line per ledger line, in ledger order - bundle lines at their frozen
  unit price, single-bottle lines at the shared tier price - plus a trailing
  synthetic "Delivery Fee" line when the fee is positive.
*/
package checkout

import (
	"github.com/juice/storefront-engine/cart"
	"github.com/juice/storefront-engine/money"
)

// LineItem is one payment-processor line.
type LineItem struct {
	Name           string `json:"name"`
	UnitAmountCents int64 `json:"price"`
	Quantity       int    `json:"quantity"`
}

// DeliveryLineName labels the synthetic fee line.
const DeliveryLineName = "Delivery Fee"

// BuildLineItems maps computed totals to payment lines. Callers gate on
// Session.Validate first; the builder itself is a pure conversion.
func BuildLineItems(totals cart.Totals, deliveryFee money.Money) []LineItem {
	items := make([]LineItem, 0, len(totals.Lines)+1)
	for _, line := range totals.Lines {
		items = append(items, LineItem{
			Name:           line.DisplayName,
			UnitAmountCents: line.UnitPrice.Cents(),
			Quantity:       line.Quantity,
		})
	}
	if deliveryFee.IsPositive() {
		items = append(items, LineItem{
			Name:           DeliveryLineName,
			UnitAmountCents: deliveryFee.Cents(),
			Quantity:       1,
		})
	}
	return items
}
