package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalmart/storefront/internal/domain"
	"github.com/petalmart/storefront/internal/repository"
)

type cartServiceMock struct {
	items []domain.CartItem
	err   error

	gotProductID int64
	gotQuantity  int
}

func (m *cartServiceMock) GetCart(context.Context, int64) ([]domain.CartItem, error) {
	return m.items, m.err
}

func (m *cartServiceMock) AddItem(_ context.Context, _ int64, productID int64, quantity int) error {
	m.gotProductID = productID
	m.gotQuantity = quantity
	return m.err
}

func (m *cartServiceMock) SetQuantity(_ context.Context, _ int64, productID int64, quantity int) error {
	m.gotProductID = productID
	m.gotQuantity = quantity
	return m.err
}

func (m *cartServiceMock) RemoveItem(_ context.Context, _ int64, productID int64) error {
	m.gotProductID = productID
	return m.err
}

func (m *cartServiceMock) ClearCart(context.Context, int64) error {
	return m.err
}

func cartRouter(mock *cartServiceMock) http.Handler {
	h := NewCartHandler(mock, 5*time.Second)
	r := chi.NewRouter()
	r.Get("/cart", h.GetCart)
	r.Post("/cart", h.AddItem)
	r.Delete("/cart", h.ClearCart)
	r.Put("/cart/{product_id}", h.UpdateQuantity)
	r.Delete("/cart/{product_id}", h.RemoveItem)
	return r
}

func authed(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

func TestGetCart_ReturnsItems(t *testing.T) {
	mock := &cartServiceMock{
		items: []domain.CartItem{
			{ID: 11, ProductID: 1, Quantity: 5, ProductName: "Rose Bouquet", Price: decimal.RequireFromString("10.00")},
		},
	}

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("GET", "/cart", nil), 123)
	cartRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.CartItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Rose Bouquet", items[0].ProductName)
}

func TestGetCart_Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cart", nil)
	cartRouter(&cartServiceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddItem_Success(t *testing.T) {
	mock := &cartServiceMock{}

	body := bytes.NewBufferString(`{"product_id": 1, "quantity": 2}`)
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("POST", "/cart", body), 123)
	cartRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), mock.gotProductID)
	assert.Equal(t, 2, mock.gotQuantity)
}

func TestAddItem_NonPositiveQuantity(t *testing.T) {
	body := bytes.NewBufferString(`{"product_id": 1, "quantity": 0}`)
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("POST", "/cart", body), 123)
	cartRouter(&cartServiceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_InvalidJSON(t *testing.T) {
	body := bytes.NewBufferString(`{`)
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("POST", "/cart", body), 123)
	cartRouter(&cartServiceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity_CartNotFound(t *testing.T) {
	mock := &cartServiceMock{err: repository.ErrCartNotFound}

	body := bytes.NewBufferString(`{"quantity": 5}`)
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("PUT", "/cart/1", body), 123)
	cartRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_found", resp.Code)
}

func TestUpdateQuantity_BadProductIDParam(t *testing.T) {
	body := bytes.NewBufferString(`{"quantity": 5}`)
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("PUT", "/cart/zero", body), 123)
	cartRouter(&cartServiceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItem_Success(t *testing.T) {
	mock := &cartServiceMock{}

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("DELETE", "/cart/3", nil), 123)
	cartRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), mock.gotProductID)
}

func TestClearCart_CartNotFound(t *testing.T) {
	mock := &cartServiceMock{err: repository.ErrCartNotFound}

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("DELETE", "/cart", nil), 123)
	cartRouter(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCart_StorageErrorIsGeneric500(t *testing.T) {
	mock := &cartServiceMock{err: assert.AnError}

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("DELETE", "/cart", nil), 123)
	cartRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal server error", resp.Error, "internal detail must not leak")
}
