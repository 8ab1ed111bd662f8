package updatestatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/transport/http/httperr"
)

type service interface {
	UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles the administrative order status update. The status
// value is parsed against the closed status set; unrecognized values are
// rejected.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update status", "error", err)

		return
	}

	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	status, err := order.ParseStatus(strings.ToUpper(req.Status))
	if err != nil {
		httperr.Write(w, err)

		return
	}

	updated, err := service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating order status", "order_id", id, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for update status", "error", err)
	}
}
