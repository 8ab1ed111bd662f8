package order

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webstore-labs/checkout/internal/service/models/currency"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrNoItems       = errors.New("order must contain at least one item")
)

// Status is the closed set of order lifecycle states:
// PENDING -> PAID -> SHIPPED -> DELIVERED, with CANCELLED reachable from
// PENDING or PAID.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus parses external input into a Status, rejecting values outside
// the closed set.
func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String():
		return StatusPending, nil
	case StatusPaid.String():
		return StatusPaid, nil
	case StatusShipped.String():
		return StatusShipped, nil
	case StatusDelivered.String():
		return StatusDelivered, nil
	case StatusCancelled.String():
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Order represents a customer's purchase request with frozen pricing.
// UserEmail is a weak reference to an account; guest orders leave it empty.
type Order struct {
	ID              int64                 `json:"id"`
	UserEmail       string                `json:"userEmail,omitempty"`
	CustomerEmail   string                `json:"customerEmail"`
	CustomerPhone   string                `json:"customerPhone,omitempty"`
	ShippingAddress string                `json:"shippingAddress"`
	ShippingCity    string                `json:"shippingCity"`
	ShippingZipCode string                `json:"shippingZipCode"`
	ShippingCountry string                `json:"shippingCountry"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	Currency        currency.Currency     `json:"currency"`
	Status          Status                `json:"status"`
	Items           []orderitem.OrderItem `json:"items"`
	Payment         *payment.Payment      `json:"payment,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}
