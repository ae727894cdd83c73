package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/httputil"
	"github.com/giovannicg/INMEDT/pkg/middleware"
)

// FavoriteHandler handles HTTP requests for favorite endpoints.
type FavoriteHandler struct {
	service *service.FavoriteService
	logger  *slog.Logger
}

// NewFavoriteHandler creates a new favorite HTTP handler.
func NewFavoriteHandler(svc *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/users/me/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	favorites, err := h.service.ListFavorites(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: favorites})
}

// Add handles POST /api/v1/users/me/favorites/{productId}
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	if err := h.service.AddFavorite(r.Context(), userID, productID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"product_id": productID.String(), "status": "saved"},
	})
}

// Remove handles DELETE /api/v1/users/me/favorites/{productId}
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), userID, productID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"product_id": productID.String(), "status": "removed"},
	})
}

// Exists handles GET /api/v1/users/me/favorites/{productId}
func (h *FavoriteHandler) Exists(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	saved, err := h.service.IsFavorite(r.Context(), userID, productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{"product_id": productID.String(), "is_favorite": saved},
	})
}
