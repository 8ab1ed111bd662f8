package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not active")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product represents a catalog product. Stock quantity is the only field
// mutated by this service, via the conditional decrement during order
// creation.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
