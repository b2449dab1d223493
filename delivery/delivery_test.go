package delivery_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juice/storefront-engine/delivery"
	"github.com/juice/storefront-engine/money"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fakeProvider returns canned coordinates/distances or errors.
type fakeProvider struct {
	coords      delivery.Coordinates
	geocodeErr  error
	miles       float64
	distanceErr error
}

func (f *fakeProvider) Geocode(context.Context, string) (delivery.Coordinates, error) {
	if f.geocodeErr != nil {
		return delivery.Coordinates{}, f.geocodeErr
	}
	return f.coords, nil
}

func (f *fakeProvider) DrivingDistance(context.Context, delivery.Coordinates, delivery.Coordinates) (float64, error) {
	if f.distanceErr != nil {
		return 0, f.distanceErr
	}
	return f.miles, nil
}

func goodAddress() delivery.Address {
	return delivery.Address{Street: "123 Main St", City: "Stone Mountain", ZIP: "30083"}
}

// =============================================================================
// GEOCODE STRATEGY
// =============================================================================

func TestGeocodeResolver_InAreaAddressValidatesWithFee(t *testing.T) {
	// GIVEN: an address 10 driving miles away under the {35mi, $7} table
	// WHEN: resolving
	// THEN: validated with fee $7 and the reported distance

	r := delivery.NewGeocodeResolver(&fakeProvider{miles: 10}, nil)

	res, err := r.Resolve(context.Background(), goodAddress())
	require.NoError(t, err)
	assert.True(t, res.Validated)
	assert.True(t, res.Fee.Equal(money.MustParse("7.00")))
	assert.Equal(t, 10.0, res.DistanceMiles)
	assert.Empty(t, res.FailureReason)
}

func TestGeocodeResolver_BeyondEveryTierIsOutOfArea(t *testing.T) {
	// GIVEN: an address 40 miles away
	// WHEN: resolving
	// THEN: not validated, out-of-area error, fee forced to zero

	r := delivery.NewGeocodeResolver(&fakeProvider{miles: 40}, nil)

	res, err := r.Resolve(context.Background(), goodAddress())
	assert.ErrorIs(t, err, delivery.ErrOutOfServiceArea)
	assert.False(t, res.Validated)
	assert.True(t, res.Fee.IsZero(), "failed resolution must carry zero fee")
	assert.NotEmpty(t, res.FailureReason)
}

func TestGeocodeResolver_RoutingFailureFallsBackToHaversine(t *testing.T) {
	// GIVEN: routing fails but geocoding returned coordinates ~14mi away
	// WHEN: resolving
	// THEN: the straight-line distance keeps the resolution alive

	dest := delivery.Coordinates{Lat: 33.9836, Lng: -84.0979} // ~13.8 mi north
	r := delivery.NewGeocodeResolver(&fakeProvider{
		coords:      dest,
		distanceErr: fmt.Errorf("no route found"),
	}, nil)

	res, err := r.Resolve(context.Background(), goodAddress())
	require.NoError(t, err)
	assert.True(t, res.Validated)
	assert.True(t, res.Fee.Equal(money.MustParse("7.00")))
	assert.InDelta(t, delivery.HaversineMiles(delivery.StoreCoordinates, dest), res.DistanceMiles, 0.001)
}

func TestGeocodeResolver_GeocodeFailureIsProviderUnavailable(t *testing.T) {
	r := delivery.NewGeocodeResolver(&fakeProvider{geocodeErr: fmt.Errorf("service unreachable")}, nil)

	res, err := r.Resolve(context.Background(), goodAddress())
	assert.ErrorIs(t, err, delivery.ErrProviderUnavailable)
	assert.False(t, res.Validated)
	assert.True(t, res.Fee.IsZero())
}

func TestGeocodeResolver_IncompleteAddressRejectedBeforeNetwork(t *testing.T) {
	// The provider would explode if called; field validation must short-circuit.
	r := delivery.NewGeocodeResolver(&fakeProvider{geocodeErr: errors.New("must not be called")}, nil)

	_, err := r.Resolve(context.Background(), delivery.Address{Street: "123 Main St"})
	assert.ErrorIs(t, err, delivery.ErrIncompleteAddress)

	_, err = r.Resolve(context.Background(), delivery.Address{Street: "123 Main St", City: "Decatur", ZIP: "3008"})
	assert.ErrorIs(t, err, delivery.ErrInvalidZIP)
}

func TestHaversineMiles_KnownDistance(t *testing.T) {
	// Store to downtown Atlanta (33.7490, -84.3880) is roughly 17 miles.
	atlanta := delivery.Coordinates{Lat: 33.7490, Lng: -84.3880}
	miles := delivery.HaversineMiles(delivery.StoreCoordinates, atlanta)
	assert.InDelta(t, 16.9, miles, 1.0)

	// Zero distance to itself.
	assert.Equal(t, 0.0, delivery.HaversineMiles(atlanta, atlanta))
}

// =============================================================================
// ZIP-BUCKET STRATEGY
// =============================================================================

func TestZIPBucketResolver_InRangeZIPValidatesWithFlatFee(t *testing.T) {
	r := delivery.NewZIPBucketResolver(nil)

	res, err := r.Resolve(context.Background(), delivery.Address{
		Street: "456 Oak Ave", City: "Decatur", ZIP: "30030",
	})
	require.NoError(t, err)
	assert.True(t, res.Validated)
	assert.True(t, res.Fee.Equal(money.MustParse("7.00")))
	assert.Greater(t, res.DistanceMiles, 0.0)
	assert.LessOrEqual(t, res.DistanceMiles, 35.0)
}

func TestZIPBucketResolver_OutOfRangeZIPRejected(t *testing.T) {
	r := delivery.NewZIPBucketResolver(nil)

	res, err := r.Resolve(context.Background(), delivery.Address{
		Street: "1 Peach St", City: "Macon", ZIP: "31201",
	})
	assert.ErrorIs(t, err, delivery.ErrOutOfServiceArea)
	assert.False(t, res.Validated)
	assert.True(t, res.Fee.IsZero())
}

func TestZIPBucketResolver_PlusFourBucketsByFirstFive(t *testing.T) {
	r := delivery.NewZIPBucketResolver(nil)

	res, err := r.Resolve(context.Background(), delivery.Address{
		Street: "456 Oak Ave", City: "Decatur", ZIP: "30030-1234",
	})
	require.NoError(t, err)
	assert.True(t, res.Validated)
}

func TestZIPBucketResolver_DistanceEstimateCappedAtMax(t *testing.T) {
	r := delivery.NewZIPBucketResolver(nil)

	// The far edge of the accepted range still reports at most the cap.
	res, err := r.Resolve(context.Background(), delivery.Address{
		Street: "9 Far Rd", City: "Atlanta", ZIP: "30360",
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.DistanceMiles, 35.0)

	// Store's own ZIP estimates zero miles.
	res, err = r.Resolve(context.Background(), delivery.Address{
		Street: "1 Store Way", City: "Stone Mountain", ZIP: "30083",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.DistanceMiles)
}

// =============================================================================
// FEE TABLE
// =============================================================================

func TestFeeTable_FirstMatchWins(t *testing.T) {
	table := delivery.FeeTable{
		{MaxMiles: 10, Fee: money.MustParse("5.00")},
		{MaxMiles: 35, Fee: money.MustParse("7.00")},
	}

	fee, ok := table.FeeFor(10)
	require.True(t, ok)
	assert.True(t, fee.Equal(money.MustParse("5.00")))

	fee, ok = table.FeeFor(10.1)
	require.True(t, ok)
	assert.True(t, fee.Equal(money.MustParse("7.00")))

	_, ok = table.FeeFor(math.Nextafter(35, 36))
	assert.False(t, ok)
}
