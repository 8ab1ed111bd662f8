package iorderrepo

import (
	"context"

	"github.com/webstore-labs/checkout/internal/service/models/order"
)

type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (*order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
}
