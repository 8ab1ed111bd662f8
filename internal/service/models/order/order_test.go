package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/service/models/order"
)

func TestParseStatus(t *testing.T) {
	for _, want := range []order.Status{
		order.StatusPending,
		order.StatusPaid,
		order.StatusShipped,
		order.StatusDelivered,
		order.StatusCancelled,
	} {
		got, err := order.ParseStatus(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "pending", "PAID ", "REFUNDED", "ARCHIVED"} {
		_, err := order.ParseStatus(input)
		assert.ErrorIs(t, err, order.ErrInvalidStatus, "input %q", input)
	}
}
