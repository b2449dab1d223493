/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the storefront edge. These decouple the internal
  domain model from the external contract; money crosses this boundary as
  fixed two-decimal strings for display plus integer cents where a client
  needs to do arithmetic.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Handlers validate; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AddUnitRequest adds single bottles of a catalog product.
type AddUnitRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
}

// AddBundleRequest adds a cleanse bundle. BundleID is the full SKU
// (cleanse-type + flavor).
type AddBundleRequest struct {
	BundleID    string  `json:"bundle_id"`
	Name        string  `json:"name"`
	BottleCount int     `json:"bottle_count"`
	BundlePrice float64 `json:"bundle_price"`
}

// AdjustQuantityRequest applies a delta to a line.
type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// CustomerRequest replaces the checkout form fields.
type CustomerRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Street string `json:"street"`
	City   string `json:"city"`
	ZIP    string `json:"zip"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LineDTO is one priced cart line.
type LineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	IsBundle  bool   `json:"is_bundle"`
}

// CartDTO is the priced cart view returned by every cart operation.
type CartDTO struct {
	Lines            []LineDTO `json:"lines"`
	Subtotal         string    `json:"subtotal"`
	SharedUnitPrice  string    `json:"shared_unit_price"`
	TotalBottleCount int       `json:"total_bottle_count"`
	DeliveryFee      string    `json:"delivery_fee,omitempty"`
	Total            string    `json:"total"`
	MeetsMinimum     bool      `json:"meets_minimum_order"`
}

// DeliveryDTO reports a delivery resolution.
type DeliveryDTO struct {
	Validated     bool    `json:"validated"`
	Fee           string  `json:"fee"`
	DistanceMiles float64 `json:"distance_miles"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// CheckoutResponse carries the payment processor's session id.
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
}

// ErrorResponse is the single error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
