package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/transport/http/httperr"
)

type service interface {
	ListOrdersByCustomer(ctx context.Context, email string) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)
}

type myOrdersRequest struct {
	Email string `schema:"email,required"`
}

// ListMyOrders handles a customer's order history request, newest first.
func ListMyOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &myOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.ListOrdersByCustomer(r.Context(), query.Email)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing orders", "email", query.Email, "error", err)

		return
	}

	writeOrders(w, orders)
}

// ListAllOrders handles the administrative full order listing, newest first.
func ListAllOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.ListAllOrders(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing all orders", "error", err)

		return
	}

	writeOrders(w, orders)
}

func writeOrders(w http.ResponseWriter, orders []order.Order) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for list orders", "error", err)
	}
}
