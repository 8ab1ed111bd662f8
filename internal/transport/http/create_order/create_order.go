package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
	"github.com/webstore-labs/checkout/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, o order.Order) (*order.Order, error)
}

// itemInCreateOrderRequest represents a line item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Items           []itemInCreateOrderRequest `json:"items"           validate:"required,min=1,dive"`
	CustomerEmail   string                     `json:"customerEmail"   validate:"required,email"`
	CustomerPhone   string                     `json:"customerPhone"`
	ShippingAddress string                     `json:"shippingAddress" validate:"required"`
	ShippingCity    string                     `json:"shippingCity"    validate:"required"`
	ShippingZipCode string                     `json:"shippingZipCode" validate:"required"`
	ShippingCountry string                     `json:"shippingCountry" validate:"required"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to order.Order.
func (r *createOrderRequest) toModel(userEmail string) order.Order {
	items := make([]orderitem.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = orderitem.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return order.Order{
		UserEmail:       userEmail,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		ShippingCity:    r.ShippingCity,
		ShippingZipCode: r.ShippingZipCode,
		ShippingCountry: r.ShippingCountry,
		Items:           items,
	}
}

// CreateOrder handles the create order request. The optional authenticated
// identity arrives in the X-User-Email header, set by the auth layer in
// front of this service.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), req.toModel(r.Header.Get("X-User-Email")))
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(created); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for create order", "error", err)
	}
}
