package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/httputil"
	"github.com/giovannicg/INMEDT/pkg/middleware"
	"github.com/giovannicg/INMEDT/pkg/validator"
)

// AddressHandler handles HTTP requests for address endpoints.
type AddressHandler struct {
	service *service.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateAddressRequest is the JSON request body for creating an address.
type CreateAddressRequest struct {
	Label       string `json:"label" validate:"omitempty,max=50"`
	AddressLine string `json:"address_line" validate:"required,min=1,max=300"`
	City        string `json:"city" validate:"required,min=1,max=100"`
	Sector      string `json:"sector" validate:"required,min=1,max=100"`
	Phone       string `json:"phone" validate:"required,min=7,max=20"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
	IsDefault   bool   `json:"is_default"`
}

// UpdateAddressRequest is the JSON request body for updating an address.
// Absent fields are left unchanged.
type UpdateAddressRequest struct {
	Label       *string `json:"label" validate:"omitempty,max=50"`
	AddressLine *string `json:"address_line" validate:"omitempty,min=1,max=300"`
	City        *string `json:"city" validate:"omitempty,min=1,max=100"`
	Sector      *string `json:"sector" validate:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,min=7,max=20"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// --- Handlers ---

// List handles GET /api/v1/users/me/addresses
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	addresses, err := h.service.ListAddresses(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: addresses})
}

// Create handles POST /api/v1/users/me/addresses
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateAddressRequest
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

	address, err := h.service.CreateAddress(r.Context(), userID, service.CreateAddressInput{
		Label:       req.Label,
		AddressLine: req.AddressLine,
		City:        req.City,
		Sector:      req.Sector,
		Phone:       req.Phone,
		Notes:       req.Notes,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: address})
}

// Get handles GET /api/v1/users/me/addresses/{id}
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	address, err := h.service.GetAddress(r.Context(), userID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: address})
}

// Update handles PUT /api/v1/users/me/addresses/{id}
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateAddressRequest
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

	address, err := h.service.UpdateAddress(r.Context(), userID, id.String(), service.UpdateAddressInput{
		Label:       req.Label,
		AddressLine: req.AddressLine,
		City:        req.City,
		Sector:      req.Sector,
		Phone:       req.Phone,
		Notes:       req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: address})
}

// Delete handles DELETE /api/v1/users/me/addresses/{id}
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteAddress(r.Context(), userID, id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// SetDefault handles POST /api/v1/users/me/addresses/{id}/default
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.SetDefaultAddress(r.Context(), userID, id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "default"}})
}
