package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juice/storefront-engine/cart"
	"github.com/juice/storefront-engine/cart/store"
	"github.com/juice/storefront-engine/checkout"
	"github.com/juice/storefront-engine/money"
	"github.com/juice/storefront-engine/pricing"
)

func buildTotals(t *testing.T, fill func(ctx context.Context, l *cart.Ledger)) cart.Totals {
	ledger, err := cart.NewLedger(context.Background(), "sess-1", store.NewMemory(), pricing.DefaultTiers, nil)
	require.NoError(t, err)
	fill(context.Background(), ledger)
	return ledger.Totals()
}

func TestBuildLineItems_LedgerOrderWithTrailingDeliveryLine(t *testing.T) {
	totals := buildTotals(t, func(ctx context.Context, l *cart.Ledger) {
		require.NoError(t, l.AddUnit(ctx, "reboot", "Reboot", money.MustParse("7.99"), 2))
		require.NoError(t, l.AddBundle(ctx, "5-day-refresher", "5-Day Cleanse – Refresher", 5, money.MustParse("35.00")))
		require.NoError(t, l.AddUnit(ctx, "refresher", "Refresher", money.MustParse("7.99"), 2))
	})

	items := checkout.BuildLineItems(totals, money.MustParse("7.00"))
	require.Len(t, items, 4)

	assert.Equal(t, "Reboot", items[0].Name)
	assert.Equal(t, int64(799), items[0].UnitAmountCents) // 4 single bottles: tier one
	assert.Equal(t, 2, items[0].Quantity)

	assert.Equal(t, int64(700), items[1].UnitAmountCents) // frozen bundle price
	assert.Equal(t, 5, items[1].Quantity)

	assert.Equal(t, checkout.DeliveryLineName, items[3].Name)
	assert.Equal(t, int64(700), items[3].UnitAmountCents)
	assert.Equal(t, 1, items[3].Quantity)
}

func TestBuildLineItems_ZeroFeeOmitsDeliveryLine(t *testing.T) {
	totals := buildTotals(t, func(ctx context.Context, l *cart.Ledger) {
		require.NoError(t, l.AddUnit(ctx, "refresher", "Refresher", money.MustParse("7.99"), 4))
	})

	items := checkout.BuildLineItems(totals, money.Zero())
	require.Len(t, items, 1)
	assert.Equal(t, "Refresher", items[0].Name)
}

func TestBuildLineItems_RoundsFractionalBundlePriceOnce(t *testing.T) {
	// $25.00 / 3 bottles = $8.333... per bottle; the cents conversion is the
	// single rounding point.
	totals := buildTotals(t, func(ctx context.Context, l *cart.Ledger) {
		require.NoError(t, l.AddBundle(ctx, "3-day-reboot", "3-Day Cleanse – Reboot", 3, money.MustParse("25.00")))
	})

	items := checkout.BuildLineItems(totals, money.Zero())
	require.Len(t, items, 1)
	assert.Equal(t, int64(833), items[0].UnitAmountCents)
}

func TestBuildLineItems_SharedTierPriceAppliedToSingles(t *testing.T) {
	totals := buildTotals(t, func(ctx context.Context, l *cart.Ledger) {
		require.NoError(t, l.AddUnit(ctx, "refresher", "Refresher", money.MustParse("7.99"), 6))
		require.NoError(t, l.AddUnit(ctx, "reboot", "Reboot", money.MustParse("7.99"), 6))
	})

	// 12 single bottles: $7.50 tier on every line.
	items := checkout.BuildLineItems(totals, money.Zero())
	require.Len(t, items, 2)
	assert.Equal(t, int64(750), items[0].UnitAmountCents)
	assert.Equal(t, int64(750), items[1].UnitAmountCents)
}
