package updatestatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/service/models/order"
)

type stubService struct {
	gotID     int64
	gotStatus order.Status
	updated   *order.Order
	err       error
}

func (s *stubService) UpdateStatus(_ context.Context, id int64, status order.Status) (*order.Order, error) {
	s.gotID = id
	s.gotStatus = status

	return s.updated, s.err
}

func newRequest(id, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/"+id+"/status", strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateStatus(t *testing.T) {
	stub := &stubService{updated: &order.Order{ID: 7, Status: order.StatusShipped}}

	rec := httptest.NewRecorder()
	UpdateStatus(rec, newRequest("7", `{"status": "shipped"}`), stub)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), stub.gotID)
	assert.Equal(t, order.StatusShipped, stub.gotStatus)
	assert.Contains(t, rec.Body.String(), `"status":"SHIPPED"`)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	stub := &stubService{}

	rec := httptest.NewRecorder()
	UpdateStatus(rec, newRequest("7", `{"status": "ARCHIVED"}`), stub)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.gotID, "service must not be called")
}

func TestUpdateStatusInvalidID(t *testing.T) {
	rec := httptest.NewRecorder()
	UpdateStatus(rec, newRequest("seven", `{"status": "PAID"}`), &stubService{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	stub := &stubService{err: order.ErrOrderNotFound}

	rec := httptest.NewRecorder()
	UpdateStatus(rec, newRequest("42", `{"status": "PAID"}`), stub)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
