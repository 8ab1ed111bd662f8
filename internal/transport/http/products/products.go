package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/webstore-labs/checkout/internal/service/models/product"
	"github.com/webstore-labs/checkout/internal/transport/http/httperr"
)

type service interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	ListActiveProducts(ctx context.Context) ([]product.Product, error)
	ListAllProducts(ctx context.Context) ([]product.Product, error)
}

// GetProduct handles fetching a single product by id.
func GetProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)

		return
	}

	p, err := service.GetProduct(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting product", "product_id", id, "error", err)

		return
	}

	writeJSON(w, p)
}

// ListProducts handles the customer-facing catalog listing (active only).
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	products, err := service.ListActiveProducts(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing products", "error", err)

		return
	}

	writeJSON(w, products)
}

// ListAllProducts handles the administrative catalog listing.
func ListAllProducts(w http.ResponseWriter, r *http.Request, service service) {
	products, err := service.ListAllProducts(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing all products", "error", err)

		return
	}

	writeJSON(w, products)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for products", "error", err)
	}
}
