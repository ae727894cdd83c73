package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/service"
	"github.com/giovannicg/INMEDT/pkg/middleware"
)

const testSaleUnitID = "550e8400-e29b-41d4-a716-446655440005"

func setupCartRouter(cartRepo *mockCartRepo, saleUnitRepo *mockSaleUnitRepo) *chi.Mux {
	svc := service.NewCartService(cartRepo, saleUnitRepo, handlerTestLogger())
	handler := NewCartHandler(svc, handlerTestLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(fakeTokenValidator(testUserID, "customer")))
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/items", handler.AddItem)
		r.Put("/items/{id}", handler.UpdateItem)
		r.Delete("/items/{id}", handler.RemoveItem)
	})
	return r
}

func testCart() *domain.Cart {
	return &domain.Cart{
		ID:     "cart-1",
		UserID: testUserID,
		Items:  []domain.CartItem{},
	}
}

func testSaleUnit(stock int) *domain.SaleUnit {
	return &domain.SaleUnit{
		ID:       testSaleUnitID,
		SKU:      "COL-3LI-001",
		Price:    decimal.RequireFromString("2.50"),
		Stock:    stock,
		IsActive: true,
	}
}

func TestGetCartEndpoint(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	cartRepo.On("GetOrCreate", mock.Anything, testUserID).Return(testCart(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	cartRepo.AssertExpectations(t)
}

func TestAddCartItemEndpoint_Success(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	cartRepo.On("GetOrCreate", mock.Anything, testUserID).Return(testCart(), nil)
	saleUnitRepo.On("GetByID", mock.Anything, testSaleUnitID).Return(testSaleUnit(10), nil)
	cartRepo.On("AddItem", mock.Anything, "cart-1", mock.Anything).Return(nil)

	body := fmt.Sprintf(`{"sale_unit_id":%q,"quantity":3}`, testSaleUnitID)
	rec := postJSON(t, router, "/api/v1/cart/items", body, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	cartRepo.AssertExpectations(t)
}

func TestAddCartItemEndpoint_QuantityOutOfRange(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	body := fmt.Sprintf(`{"sale_unit_id":%q,"quantity":100}`, testSaleUnitID)
	rec := postJSON(t, router, "/api/v1/cart/items", body, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	cartRepo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddCartItemEndpoint_InsufficientStock(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	cartRepo.On("GetOrCreate", mock.Anything, testUserID).Return(testCart(), nil)
	saleUnitRepo.On("GetByID", mock.Anything, testSaleUnitID).Return(testSaleUnit(2), nil)

	body := fmt.Sprintf(`{"sale_unit_id":%q,"quantity":5}`, testSaleUnitID)
	rec := postJSON(t, router, "/api/v1/cart/items", body, true)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.NotNil(t, resp.Error)
	cartRepo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCartItemEndpoint_ZeroRemovesLine(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	cart := testCart()
	cart.Items = []domain.CartItem{{
		ID:         testItemID,
		CartID:     "cart-1",
		SaleUnitID: testSaleUnitID,
		SKU:        "COL-3LI-001",
		Quantity:   2,
		UnitPrice:  decimal.RequireFromString("2.50"),
		Subtotal:   decimal.RequireFromString("5.00"),
	}}
	cartRepo.On("GetOrCreate", mock.Anything, testUserID).Return(cart, nil)
	cartRepo.On("RemoveItem", mock.Anything, "cart-1", testItemID).Return(nil)

	rec := sendJSON(t, router, http.MethodPut, "/api/v1/cart/items/"+testItemID, `{"quantity":0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	cartRepo.AssertExpectations(t)
	cartRepo.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveCartItemEndpoint_InvalidID(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestClearCartEndpoint(t *testing.T) {
	cartRepo := new(mockCartRepo)
	saleUnitRepo := new(mockSaleUnitRepo)
	router := setupCartRouter(cartRepo, saleUnitRepo)

	cartRepo.On("GetOrCreate", mock.Anything, testUserID).Return(testCart(), nil)
	cartRepo.On("Clear", mock.Anything, "cart-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cartRepo.AssertExpectations(t)
}
