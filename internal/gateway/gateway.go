package gateway

import (
	"context"
	"errors"
)

// ErrProcessorUnavailable wraps every failure of the external payment
// processor: network errors, timeouts and non-2xx responses.
var ErrProcessorUnavailable = errors.New("payment processor unavailable")

// Intent is the processor-side handle for an authorized-but-not-settled
// charge. ClientSecret is opaque and passed through to the client untouched.
type Intent struct {
	ID           string
	ClientSecret string
}

// PaymentGateway creates payment intents against the external processor.
// Amounts are integer minor units (cents); conversion from the decimal order
// total happens before this boundary.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, orderID int64) (*Intent, error)
}
