/*
zipbucket.go - ZIP-code-bucket resolver (no geocoding provider)

PURPOSE:
  Deployments without a geocoding provider estimate deliverability from the
  ZIP code alone: accept only ZIP codes inside a fixed numeric range around
  the store, estimate distance as a piecewise-linear function of the gap to
  the store's ZIP, and charge a flat fee.

DISTANCE HEURISTIC:
  gap = |zip - storeZIP|
  gap <= 20:  0.5 miles per unit
  gap  > 20:  10 miles + 1.5 miles per unit beyond 20
  capped at the maximum deliverable distance.

  The heuristic is informational: the accept/reject decision is the range
  check; the estimate only feeds the distance display.
*/
package delivery

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/juice/storefront-engine/money"
)

// ZIPBucketResolver resolves addresses by ZIP-code range.
type ZIPBucketResolver struct {
	StoreZIP int
	MinZIP   int
	MaxZIP   int
	MaxMiles float64
	Fee      money.Money
	Log      *zap.Logger
}

// NewZIPBucketResolver builds the production configuration: metro service
// region around the store, 35-mile cap, flat $7 fee.
func NewZIPBucketResolver(log *zap.Logger) *ZIPBucketResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZIPBucketResolver{
		StoreZIP: StoreZIP,
		MinZIP:   30002,
		MaxZIP:   30360,
		MaxMiles: 35,
		Fee:      money.MustParse("7.00"),
		Log:      log,
	}
}

// Resolve validates the address, checks the ZIP range, and estimates the
// distance. The returned Resolution replaces any prior state.
func (r *ZIPBucketResolver) Resolve(_ context.Context, addr Address) (Resolution, error) {
	if err := ValidateAddress(addr); err != nil {
		return failed(0, err.Error()), err
	}

	// 5+4 ZIPs bucket by their first five digits.
	zip5 := strings.TrimSpace(addr.ZIP)
	if i := strings.IndexByte(zip5, '-'); i >= 0 {
		zip5 = zip5[:i]
	}
	zip, err := strconv.Atoi(zip5)
	if err != nil {
		return failed(0, ErrInvalidZIP.Error()), ErrInvalidZIP
	}

	if zip < r.MinZIP || zip > r.MaxZIP {
		areaErr := &OutOfAreaError{DistanceMiles: r.MaxMiles, MaxMiles: r.MaxMiles}
		return failed(0, "ZIP code "+zip5+" is outside the delivery area"), areaErr
	}

	miles := r.estimateMiles(zip)
	r.Log.Info("delivery resolved by ZIP bucket",
		zap.Int("zip", zip), zap.Float64("miles", miles), zap.String("fee", r.Fee.String()))
	return Resolution{Validated: true, Fee: r.Fee, DistanceMiles: miles}, nil
}

func (r *ZIPBucketResolver) estimateMiles(zip int) float64 {
	gap := math.Abs(float64(zip - r.StoreZIP))

	var miles float64
	if gap <= 20 {
		miles = 0.5 * gap
	} else {
		miles = 10 + 1.5*(gap-20)
	}
	return math.Min(miles, r.MaxMiles)
}
