package iorderitemrepo

import (
	"context"

	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
)

type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	QueryByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error)
}
