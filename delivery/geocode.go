/*
geocode.go - Geocode+routing resolver with great-circle fallback

PURPOSE:
  The primary resolution strategy: geocode the address through an external
  provider, then ask the same provider for driving distance. When the
  routing call fails (no route found, service unreachable), distance falls
  back to the great-circle (haversine) distance from the store - the
  resolution carries on rather than aborting.

  A geocode failure has nothing to fall back on (no destination
  coordinates), so it fails the resolution with ErrProviderUnavailable.

PIPELINE:
  validate fields -> geocode -> driving distance (fallback: haversine)
  -> fee tier lookup -> Resolution

SEE ALSO:
  - zipbucket.go: the provider-less strategy
  - resolver.go: fee tiers and field validation
*/
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Provider is the external geocoding/routing capability.
type Provider interface {
	// Geocode resolves a free-form address to coordinates.
	Geocode(ctx context.Context, address string) (Coordinates, error)

	// DrivingDistance returns the driving distance in miles between two
	// points.
	DrivingDistance(ctx context.Context, origin, dest Coordinates) (float64, error)
}

// GeocodeResolver resolves addresses through a Provider.
type GeocodeResolver struct {
	Provider Provider
	Origin   Coordinates
	Fees     FeeTable
	Log      *zap.Logger
}

// NewGeocodeResolver builds a resolver over the production store location
// and fee table.
func NewGeocodeResolver(provider Provider, log *zap.Logger) *GeocodeResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeocodeResolver{
		Provider: provider,
		Origin:   StoreCoordinates,
		Fees:     DefaultFees,
		Log:      log,
	}
}

// Resolve validates the address and runs the geocode -> distance -> fee
// pipeline. Any prior resolution is implicitly discarded: the returned
// Resolution is built from scratch and is the caller's new state.
func (r *GeocodeResolver) Resolve(ctx context.Context, addr Address) (Resolution, error) {
	if err := ValidateAddress(addr); err != nil {
		return failed(0, err.Error()), err
	}

	dest, err := r.Provider.Geocode(ctx, fullAddress(addr))
	if err != nil {
		r.Log.Warn("geocode failed", zap.String("city", addr.City), zap.Error(err))
		wrapped := fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		return failed(0, "unable to find that address"), wrapped
	}

	miles, err := r.Provider.DrivingDistance(ctx, r.Origin, dest)
	if err != nil {
		// Routing failure is recoverable: straight-line distance instead.
		miles = HaversineMiles(r.Origin, dest)
		r.Log.Info("routing unavailable, using straight-line distance",
			zap.Float64("miles", miles), zap.Error(err))
	}

	fee, ok := r.Fees.FeeFor(miles)
	if !ok {
		areaErr := &OutOfAreaError{DistanceMiles: miles, MaxMiles: r.Fees.MaxMiles()}
		return failed(miles, areaErr.Error()), areaErr
	}

	r.Log.Info("delivery resolved",
		zap.Float64("miles", miles), zap.String("fee", fee.String()))
	return Resolution{Validated: true, Fee: fee, DistanceMiles: miles}, nil
}

// =============================================================================
// HAVERSINE FALLBACK
// =============================================================================

const earthRadiusMiles = 3958.8

// HaversineMiles computes the great-circle distance between two points.
func HaversineMiles(a, b Coordinates) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// =============================================================================
// HTTP PROVIDER
// =============================================================================

// HTTPProvider talks to a Nominatim/OSRM-style JSON endpoint:
//
//	GET {base}/geocode?q={address}        -> {"lat": .., "lng": ..}
//	GET {base}/route?from={lat,lng}&to={lat,lng} -> {"miles": ..}
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Geocode(ctx context.Context, address string) (Coordinates, error) {
	var out Coordinates
	q := url.Values{"q": {address}}
	if err := p.getJSON(ctx, "/geocode?"+q.Encode(), &out); err != nil {
		return Coordinates{}, err
	}
	return out, nil
}

func (p *HTTPProvider) DrivingDistance(ctx context.Context, origin, dest Coordinates) (float64, error) {
	var out struct {
		Miles float64 `json:"miles"`
	}
	q := url.Values{
		"from": {fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		"to":   {fmt.Sprintf("%f,%f", dest.Lat, dest.Lng)},
	}
	if err := p.getJSON(ctx, "/route?"+q.Encode(), &out); err != nil {
		return 0, err
	}
	if out.Miles <= 0 {
		return 0, fmt.Errorf("no route found")
	}
	return out.Miles, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
