package simulator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/gateway"
	"github.com/webstore-labs/checkout/internal/gateway/simulator"
)

func TestCreateIntent(t *testing.T) {
	gtw := simulator.NewGateway(0)

	intent, err := gtw.CreateIntent(context.Background(), 1999, "USD", 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(intent.ID, "pi_"))
	assert.Contains(t, intent.ClientSecret, "_secret_")

	amount, ok := gtw.IntentAmount(intent.ID)
	require.True(t, ok)
	assert.Equal(t, int64(1999), amount)
}

func TestCreateIntentAlwaysFails(t *testing.T) {
	gtw := simulator.NewGateway(100)

	for i := 0; i < 10; i++ {
		_, err := gtw.CreateIntent(context.Background(), 1999, "USD", 1)
		assert.ErrorIs(t, err, gateway.ErrProcessorUnavailable)
	}
}

func TestCreateIntentCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simulator.NewGateway(0).CreateIntent(ctx, 1999, "USD", 1)
	assert.ErrorIs(t, err, gateway.ErrProcessorUnavailable)
}
