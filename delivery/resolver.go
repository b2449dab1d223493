/*
resolver.go - Fee tiers and shared address validation

PURPOSE:
  The fee table shared by resolver strategies, plus the address field checks
  every strategy runs before touching the network.

FEE LOOKUP:
  Ordered by ascending MaxMiles, first match wins. A distance beyond every
  tier is an out-of-area rejection, never a zero fee.
*/
package delivery

import (
	"regexp"
	"strings"

	"github.com/juice/storefront-engine/money"
)

// =============================================================================
// STORE LOCATION
// =============================================================================

// StoreCoordinates is the fulfillment location (Stone Mountain, GA).
var StoreCoordinates = Coordinates{Lat: 33.7836, Lng: -84.0979}

// StoreZIP is the fulfillment location's ZIP code.
const StoreZIP = 30083

// =============================================================================
// FEE TIERS
// =============================================================================

// FeeTier maps driving distances up to MaxMiles to a delivery fee.
type FeeTier struct {
	MaxMiles float64
	Fee      money.Money
}

// FeeTable is ordered ascending by MaxMiles; first match wins.
type FeeTable []FeeTier

// DefaultFees is the production table: flat $7 within a 35-mile radius.
var DefaultFees = FeeTable{
	{MaxMiles: 35, Fee: money.MustParse("7.00")},
}

// FeeFor returns the fee for a distance, or false when the distance exceeds
// every tier.
func (t FeeTable) FeeFor(miles float64) (money.Money, bool) {
	for _, tier := range t {
		if miles <= tier.MaxMiles {
			return tier.Fee, true
		}
	}
	return money.Zero(), false
}

// MaxMiles returns the outermost deliverable distance.
func (t FeeTable) MaxMiles() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].MaxMiles
}

// =============================================================================
// ADDRESS VALIDATION
// =============================================================================

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidateAddress checks the fields every strategy requires: street, city,
// and ZIP present, ZIP in 5-digit or 5+4 format.
func ValidateAddress(addr Address) error {
	if strings.TrimSpace(addr.Street) == "" ||
		strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.ZIP) == "" {
		return ErrIncompleteAddress
	}
	if !zipPattern.MatchString(strings.TrimSpace(addr.ZIP)) {
		return ErrInvalidZIP
	}
	return nil
}

// fullAddress joins the fields into the provider query string.
func fullAddress(addr Address) string {
	return strings.TrimSpace(addr.Street) + ", " + strings.TrimSpace(addr.City) + ", " + strings.TrimSpace(addr.ZIP)
}
