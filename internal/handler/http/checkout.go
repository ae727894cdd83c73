package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/httputil"
	"github.com/giovannicg/INMEDT/pkg/middleware"
	"github.com/giovannicg/INMEDT/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// QuoteRequest is the JSON request body for pricing the current cart.
type QuoteRequest struct {
	Sector string `json:"sector" validate:"required,min=1,max=100"`
}

// CheckoutRequest is the JSON request body for placing an order from the cart.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=1,max=300"`
	ContactPhone    string `json:"contact_phone" validate:"omitempty,max=20"`
	City            string `json:"city" validate:"required,min=1,max=100"`
	Sector          string `json:"sector" validate:"required,min=1,max=100"`
	Notes           string `json:"notes" validate:"omitempty,max=500"`
}

// --- Handlers ---

// Quote handles POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	quote, err := h.service.Quote(r.Context(), userID, req.Sector)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quote})
}

// Checkout handles POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.Checkout(r.Context(), userID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		ContactPhone:    req.ContactPhone,
		City:            req.City,
		Sector:          req.Sector,
		Notes:           req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}
