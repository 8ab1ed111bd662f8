package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/webstore-labs/checkout/internal/gateway"
)

// Gateway is an in-memory payment processor for local runs and tests. It
// issues Stripe-shaped intent ids and can be configured to fail a share of
// requests.
type Gateway struct {
	mu          sync.Mutex
	failureRate int // percent of requests that fail
	intents     map[string]int64
}

func NewGateway(failureRate int) *Gateway {
	return &Gateway{
		failureRate: failureRate,
		intents:     make(map[string]int64),
	}
}

func (g *Gateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, orderID int64) (*gateway.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrProcessorUnavailable, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failureRate > 0 && rand.IntN(100) < g.failureRate {
		return nil, fmt.Errorf("%w: simulated processor failure", gateway.ErrProcessorUnavailable)
	}

	id := "pi_" + uuid.NewString()
	g.intents[id] = amountMinorUnits

	return &gateway.Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString(),
	}, nil
}

// IntentAmount reports the amount an intent was created with. Used by tests
// to assert minor-unit conversion.
func (g *Gateway) IntentAmount(id string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	amount, ok := g.intents[id]

	return amount, ok
}
