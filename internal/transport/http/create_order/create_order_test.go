package createorder

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

type stubService struct {
	got     order.Order
	created *order.Order
	err     error
}

func (s *stubService) CreateOrder(_ context.Context, o order.Order) (*order.Order, error) {
	s.got = o

	return s.created, s.err
}

const validBody = `{
	"items": [{"productId": 1, "quantity": 2}],
	"customerEmail": "jane@example.com",
	"shippingAddress": "1 Main St",
	"shippingCity": "Springfield",
	"shippingZipCode": "12345",
	"shippingCountry": "US"
}`

func TestCreateOrder(t *testing.T) {
	stub := &stubService{created: &order.Order{
		ID:          7,
		Status:      order.StatusPending,
		TotalAmount: decimal.RequireFromString("39.98"),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
	req.Header.Set("X-User-Email", "jane@example.com")
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, stub)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@example.com", stub.got.UserEmail)
	require.Len(t, stub.got.Items, 1)
	assert.Equal(t, int64(1), stub.got.Items[0].ProductID)
	assert.Equal(t, 2, stub.got.Items[0].Quantity)
	assert.Contains(t, rec.Body.String(), `"id":7`)
	assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)
}

func TestCreateOrderValidation(t *testing.T) {
	bodies := map[string]string{
		"no items":      `{"items": [], "customerEmail": "jane@example.com", "shippingAddress": "a", "shippingCity": "b", "shippingZipCode": "c", "shippingCountry": "d"}`,
		"bad email":     `{"items": [{"productId": 1, "quantity": 1}], "customerEmail": "not-an-email", "shippingAddress": "a", "shippingCity": "b", "shippingZipCode": "c", "shippingCountry": "d"}`,
		"zero quantity": `{"items": [{"productId": 1, "quantity": 0}], "customerEmail": "jane@example.com", "shippingAddress": "a", "shippingCity": "b", "shippingZipCode": "c", "shippingCountry": "d"}`,
		"no address":    `{"items": [{"productId": 1, "quantity": 1}], "customerEmail": "jane@example.com"}`,
		"not json":      `nope`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			stub := &stubService{}
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
			rec := httptest.NewRecorder()

			CreateOrder(rec, req, stub)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, stub.got.Items, "service must not be called")
		})
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	stub := &stubService{err: fmt.Errorf("%w: Book", product.ErrInsufficientStock)}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, stub)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")
}
