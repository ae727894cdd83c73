package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/httputil"
	"github.com/giovannicg/INMEDT/pkg/validator"
)

// AdminCatalogHandler handles HTTP requests for admin catalog endpoints.
type AdminCatalogHandler struct {
	service *service.AdminCatalogService
	logger  *slog.Logger
}

// NewAdminCatalogHandler creates a new admin catalog HTTP handler.
func NewAdminCatalogHandler(svc *service.AdminCatalogService, logger *slog.Logger) *AdminCatalogHandler {
	return &AdminCatalogHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CategoryRequest is the JSON request body for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Brand       string `json:"brand" validate:"omitempty,max=100"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Brand       *string `json:"brand" validate:"omitempty,max=100"`
}

// VariantRequest is the JSON request body for creating or updating a variant.
type VariantRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CreateSaleUnitRequest is the JSON request body for creating a sale unit.
// An empty SKU gets one generated from the product and variant names.
type CreateSaleUnitRequest struct {
	SKU         string          `json:"sku" validate:"omitempty,max=50"`
	Description string          `json:"description" validate:"required,min=1,max=200"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// UpdateSaleUnitRequest is the JSON request body for updating a sale unit.
// Absent fields are left unchanged.
type UpdateSaleUnitRequest struct {
	Description *string          `json:"description" validate:"omitempty,min=1,max=200"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
}

// --- Category handlers ---

// ListCategories handles GET /api/v1/admin/categories
func (h *AdminCatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/v1/admin/categories/{id}
func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id.String(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{id}
func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// --- Product handlers ---

// ListProducts handles GET /api/v1/admin/products
func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	search := r.URL.Query().Get("search")

	var categoryID *string
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, ok := httputil.ParseUUID(w, v)
		if !ok {
			return
		}
		s := id.String()
		categoryID = &s
	}

	products, total, err := h.service.ListProducts(r.Context(), search, categoryID, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, page, perPage))
}

// CreateProduct handles POST /api/v1/admin/products
func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), service.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// GetProduct handles GET /api/v1/admin/products/{id}
func (h *AdminCatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), service.UpdateProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}
func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// --- Variant handlers ---

// CreateVariant handles POST /api/v1/admin/products/{id}/variants
func (h *AdminCatalogHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req VariantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	variant, err := h.service.CreateVariant(r.Context(), productID.String(), service.VariantInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: variant})
}

// UpdateVariant handles PUT /api/v1/admin/variants/{id}
func (h *AdminCatalogHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req VariantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	variant, err := h.service.UpdateVariant(r.Context(), id.String(), service.VariantInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: variant})
}

// DeleteVariant handles DELETE /api/v1/admin/variants/{id}
func (h *AdminCatalogHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteVariant(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// --- Sale unit handlers ---

// CreateSaleUnit handles POST /api/v1/admin/variants/{id}/sale-units
func (h *AdminCatalogHandler) CreateSaleUnit(w http.ResponseWriter, r *http.Request) {
	variantID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CreateSaleUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	unit, err := h.service.CreateSaleUnit(r.Context(), variantID.String(), service.SaleUnitInput{
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: unit})
}

// UpdateSaleUnit handles PUT /api/v1/admin/sale-units/{id}
func (h *AdminCatalogHandler) UpdateSaleUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateSaleUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	unit, err := h.service.UpdateSaleUnit(r.Context(), id.String(), service.UpdateSaleUnitInput{
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: unit})
}

// DeleteSaleUnit handles DELETE /api/v1/admin/sale-units/{id}
func (h *AdminCatalogHandler) DeleteSaleUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteSaleUnit(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// decodeBody decodes and validates a JSON request body, writing the error
// response on failure. It returns false when the caller should stop.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}

	return true
}
