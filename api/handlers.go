/*
handlers.go - HTTP API handlers for the storefront engine

PURPOSE:
  Exposes the cart/checkout engine via REST. Handles HTTP request/response
  and JSON serialization, delegates every decision to the domain packages.

ENDPOINTS:
  Cart:
    GET    /api/cart                 Priced cart view
    POST   /api/cart/items           Add single bottles
    POST   /api/cart/bundles         Add a cleanse bundle
    PATCH  /api/cart/items/{id}      Adjust quantity by delta
    DELETE /api/cart/items/{id}      Remove a line
    DELETE /api/cart                 Clear the cart

  Checkout:
    PUT    /api/checkout/customer    Replace form fields
    POST   /api/checkout/delivery    Explicit delivery validation trigger
    POST   /api/checkout             Submit the order

ERROR HANDLING:
  Errors map to JSON {error} with:
  - 400: invalid input (quantities, bundle specs, malformed JSON)
  - 409: duplicate in-flight submission
  - 422: out-of-area, unmet checkout gates
  - 502: provider/payment upstream failures
  - 500: internal errors

SEE ALSO:
  - dto.go: request/response structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juice/storefront-engine/cart"
	"github.com/juice/storefront-engine/checkout"
	"github.com/juice/storefront-engine/delivery"
	"github.com/juice/storefront-engine/money"
	"github.com/juice/storefront-engine/pricing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Session *checkout.Session
	Catalog map[string]pricing.Product
	Log     *zap.Logger
}

// NewHandler creates a handler over a checkout session.
func NewHandler(session *checkout.Session, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Session: session,
		Catalog: pricing.DefaultCatalog,
		Log:     log,
	}
}

// =============================================================================
// CART HANDLERS
// =============================================================================

// GetCart returns the priced cart view.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartDTO())
}

// AddUnit adds single bottles of a product.
func (h *Handler) AddUnit(w http.ResponseWriter, r *http.Request) {
	var req AddUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := req.Name
	hint := money.Zero()
	if product, ok := h.Catalog[req.ProductID]; ok {
		if name == "" {
			name = product.Name
		}
		hint = product.BasePrice
	}
	if name == "" {
		name = req.ProductID
	}

	if err := h.Session.Ledger().AddUnit(r.Context(), req.ProductID, name, hint, req.Quantity); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartDTO())
}

// AddBundle adds a cleanse bundle.
func (h *Handler) AddBundle(w http.ResponseWriter, r *http.Request) {
	var req AddBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Session.Ledger().AddBundle(
		r.Context(), req.BundleID, req.Name, req.BottleCount, money.FromFloat(req.BundlePrice))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartDTO())
}

// AdjustQuantity applies a delta to a line; a result of zero removes it.
func (h *Handler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var req AdjustQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Session.Ledger().AdjustQuantity(r.Context(), productID, req.Delta); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartDTO())
}

// RemoveItem removes a line; removing an absent id is a success.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Ledger().Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartDTO())
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Ledger().Clear(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartDTO())
}

// =============================================================================
// CHECKOUT HANDLERS
// =============================================================================

// SetCustomer replaces the checkout form fields. Address edits invalidate
// any prior delivery resolution.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.Session.SetCustomer(checkout.Customer{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Street: req.Street,
		City:   req.City,
		ZIP:    req.ZIP,
	})
	writeJSON(w, http.StatusOK, toDeliveryDTO(h.Session.Delivery()))
}

// ValidateDelivery is the explicit resolution trigger.
func (h *Handler) ValidateDelivery(w http.ResponseWriter, r *http.Request) {
	res, err := h.Session.ValidateDelivery(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if delivery.IsClientError(err) {
			status = http.StatusUnprocessableEntity
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(toDeliveryDTO(res))
		return
	}
	writeJSON(w, http.StatusOK, toDeliveryDTO(res))
}

// SubmitCheckout runs the readiness gates and creates the payment session.
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.Session.Submit(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{SessionID: sessionID})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) cartDTO() CartDTO {
	totals := h.Session.Ledger().Totals()
	resolution := h.Session.Delivery()

	dto := CartDTO{
		Lines:            make([]LineDTO, 0, len(totals.Lines)),
		Subtotal:         totals.Subtotal.String(),
		SharedUnitPrice:  totals.SharedUnitPrice.String(),
		TotalBottleCount: totals.TotalBottleCount,
		MeetsMinimum:     totals.TotalBottleCount >= checkout.MinimumOrderBottles,
	}
	for _, line := range totals.Lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ProductID: line.ProductID,
			Name:      line.DisplayName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.String(),
			LineTotal: line.LineTotal.String(),
			IsBundle:  line.IsBundle,
		})
	}

	total := totals.Subtotal
	if resolution.Validated && resolution.Fee.IsPositive() {
		dto.DeliveryFee = resolution.Fee.String()
		total = total.Add(resolution.Fee)
	}
	dto.Total = total.String()
	return dto
}

func toDeliveryDTO(res delivery.Resolution) DeliveryDTO {
	return DeliveryDTO{
		Validated:     res.Validated,
		Fee:           res.Fee.String(),
		DistanceMiles: res.DistanceMiles,
		FailureReason: res.FailureReason,
	}
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case cart.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrPreconditionFailed), delivery.IsClientError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, checkout.ErrPaymentRejected), errors.Is(err, delivery.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.Log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
