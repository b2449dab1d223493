/*
errors.go - Centralized error types for delivery resolution

ERROR CATEGORIES:
  1. Input errors - incomplete or malformed address fields
  2. Out-of-area - no fee tier or ZIP bucket matches; recoverable, resets
     delivery state with a zero fee
  3. Provider errors - geocoding/routing failures; recovered locally via the
     haversine fallback where possible, surfaced only when no fallback exists
*/
package delivery

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIncompleteAddress is returned when street, city, or ZIP is missing.
	ErrIncompleteAddress = errors.New("please complete all address fields")

	// ErrInvalidZIP is returned when the ZIP is not 5-digit or 5+4 format.
	ErrInvalidZIP = errors.New("invalid ZIP code format")

	// ErrOutOfServiceArea is returned when the destination exceeds every fee
	// tier or falls outside the ZIP service region.
	ErrOutOfServiceArea = errors.New("address is outside the delivery area")

	// ErrProviderUnavailable is returned when the geocoding provider cannot
	// resolve the address and no fallback is possible.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OutOfAreaError reports how far outside the service area the address is.
type OutOfAreaError struct {
	DistanceMiles float64
	MaxMiles      float64
}

func (e *OutOfAreaError) Error() string {
	return fmt.Sprintf("destination is %.1f miles away; delivery reaches %.0f miles", e.DistanceMiles, e.MaxMiles)
}

func (e *OutOfAreaError) Unwrap() error { return ErrOutOfServiceArea }

// IsClientError reports whether the error is due to invalid caller input
// rather than an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrIncompleteAddress) ||
		errors.Is(err, ErrInvalidZIP) ||
		errors.Is(err, ErrOutOfServiceArea)
}
