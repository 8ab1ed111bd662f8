package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/webstore-labs/checkout/internal/dal/uow"
	"github.com/webstore-labs/checkout/internal/gateway"
	"github.com/webstore-labs/checkout/internal/service/models/currency"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

// Write maps a service error to an HTTP status and writes a JSON error body.
// Every error in the service taxonomy surfaces as a distinct, user-visible
// failure.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, product.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, payment.ErrAlreadyPaid):
		status = http.StatusConflict
	case errors.Is(err, gateway.ErrProcessorUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, payment.ErrInvalidStatus),
		errors.Is(err, currency.ErrInvalidCurrency),
		errors.Is(err, product.ErrProductInactive):
		status = http.StatusBadRequest
	case errors.Is(err, uow.ErrInconsistentState):
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
