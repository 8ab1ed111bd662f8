package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/webstore-labs/checkout/internal/service/services/paymentsvc"
	"github.com/webstore-labs/checkout/internal/transport/http/httperr"
)

type service interface {
	CreateIntent(ctx context.Context, orderID int64) (*paymentsvc.IntentResult, error)
	ConfirmPayment(ctx context.Context, intentID string) error
	FailPayment(ctx context.Context, intentID string) error
}

type createIntentRequest struct {
	OrderID int64 `json:"orderId" validate:"gt=0"`
}

// CreateIntent handles the payment intent creation request.
func CreateIntent(w http.ResponseWriter, r *http.Request, service service) {
	req := createIntentRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create intent", "error", err)

		return
	}

	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	result, err := service.CreateIntent(r.Context(), req.OrderID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating payment intent", "order_id", req.OrderID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for create intent", "error", err)
	}
}

type reconcileRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

// Confirm handles the processor's success notification for an intent.
func Confirm(w http.ResponseWriter, r *http.Request, service service) {
	reconcile(w, r, service.ConfirmPayment)
}

// Fail handles the processor's failure notification for an intent.
func Fail(w http.ResponseWriter, r *http.Request, service service) {
	reconcile(w, r, service.FailPayment)
}

func reconcile(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, intentID string) error) {
	req := reconcileRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding reconciliation request body", "error", err)

		return
	}

	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := apply(r.Context(), req.PaymentIntentID); err != nil {
		httperr.Write(w, err)
		slog.Error("Error reconciling payment", "intent_id", req.PaymentIntentID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "success"}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending reconciliation response", "error", err)
	}
}
