package iproductrepo

import (
	"context"

	"github.com/webstore-labs/checkout/internal/service/models/product"
)

type IProductRepository interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	Query(ctx context.Context, activeOnly bool) ([]product.Product, error)

	// DecrementStock atomically reduces stock by quantity, failing with
	// product.ErrInsufficientStock when the remaining stock is smaller than
	// the requested quantity.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}
