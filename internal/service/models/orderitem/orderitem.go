package orderitem

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one product-quantity pair within an order. PriceAtPurchase is
// snapshotted at order creation and never recomputed from the catalog.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"orderId"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Subtotal returns price-at-purchase times quantity, exact.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
