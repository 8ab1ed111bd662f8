package currency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/service/models/currency"
)

func TestParseCurrency(t *testing.T) {
	got, err := currency.ParseCurrency("USD")
	require.NoError(t, err)
	assert.Equal(t, currency.CurrencyUSD, got)

	for _, input := range []string{"", "usd", "EUR"} {
		_, err := currency.ParseCurrency(input)
		assert.ErrorIs(t, err, currency.ErrInvalidCurrency, "input %q", input)
	}
}
