package ipaymentrepo

import (
	"context"
	"time"

	"github.com/webstore-labs/checkout/internal/service/models/payment"
)

type IPaymentRepository interface {
	Insert(ctx context.Context, p payment.Payment) (*payment.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*payment.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) (*payment.Payment, error)
	UpdateStatus(ctx context.Context, intentID string, status payment.Status, completedAt *time.Time) error
}
