package httperr_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webstore-labs/checkout/internal/dal/uow"
	"github.com/webstore-labs/checkout/internal/gateway"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
	"github.com/webstore-labs/checkout/internal/service/models/product"
	"github.com/webstore-labs/checkout/internal/transport/http/httperr"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{order.ErrOrderNotFound, http.StatusNotFound},
		{payment.ErrPaymentNotFound, http.StatusNotFound},
		{product.ErrProductNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: Book", product.ErrInsufficientStock), http.StatusConflict},
		{payment.ErrAlreadyPaid, http.StatusConflict},
		{fmt.Errorf("%w: timeout", gateway.ErrProcessorUnavailable), http.StatusBadGateway},
		{order.ErrNoItems, http.StatusBadRequest},
		{order.ErrInvalidStatus, http.StatusBadRequest},
		{product.ErrProductInactive, http.StatusBadRequest},
		{uow.ErrInconsistentState, http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		httperr.Write(rec, tt.err)

		assert.Equal(t, tt.want, rec.Code, "error %v", tt.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), tt.err.Error())
	}
}
