package payment

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webstore-labs/checkout/internal/service/models/currency"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyPaid     = errors.New("order has already been paid")
	ErrInvalidStatus   = errors.New("invalid payment status")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String():
		return StatusPending, nil
	case StatusSucceeded.String():
		return StatusSucceeded, nil
	case StatusFailed.String():
		return StatusFailed, nil
	case StatusCancelled.String():
		return StatusCancelled, nil
	case StatusRefunded.String():
		return StatusRefunded, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Payment is the one-to-one payment record for an order. IntentID is the
// processor-assigned intent identifier and is unique across payments.
// Amount always equals the order's total at the time the intent was created.
type Payment struct {
	ID          int64             `json:"id"`
	OrderID     int64             `json:"orderId"`
	IntentID    string            `json:"intentId"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    currency.Currency `json:"currency"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}
