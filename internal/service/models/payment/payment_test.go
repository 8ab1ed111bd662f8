package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/service/models/payment"
)

func TestParseStatus(t *testing.T) {
	for _, want := range []payment.Status{
		payment.StatusPending,
		payment.StatusSucceeded,
		payment.StatusFailed,
		payment.StatusCancelled,
		payment.StatusRefunded,
	} {
		got, err := payment.ParseStatus(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "succeeded", "PAID", "DECLINED"} {
		_, err := payment.ParseStatus(input)
		assert.ErrorIs(t, err, payment.ErrInvalidStatus, "input %q", input)
	}
}
