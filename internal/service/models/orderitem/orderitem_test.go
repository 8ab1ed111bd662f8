package orderitem_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
)

func TestSubtotal(t *testing.T) {
	tests := []struct {
		price    string
		quantity int
		want     string
	}{
		{"19.99", 3, "59.97"},
		{"0.10", 3, "0.30"}, // binary floats would give 0.30000000000000004
		{"123.45", 1, "123.45"},
		{"5.00", 0, "0.00"},
	}

	for _, tt := range tests {
		item := orderitem.OrderItem{
			PriceAtPurchase: decimal.RequireFromString(tt.price),
			Quantity:        tt.quantity,
		}
		assert.True(t, item.Subtotal().Equal(decimal.RequireFromString(tt.want)),
			"%s x %d = %s, want %s", tt.price, tt.quantity, item.Subtotal(), tt.want)
	}
}
