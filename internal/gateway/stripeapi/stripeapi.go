package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/webstore-labs/checkout/internal/gateway"
)

// Gateway talks to a Stripe-compatible payment intents API.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGateway creates a gateway from config. The API key comes from the
// environment via viper's automatic env binding.
func NewGateway() *Gateway {
	return &Gateway{
		baseURL: viper.GetString("payment.api_url"),
		apiKey:  viper.GetString("payment.api_key"),
		client:  &http.Client{},
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent creates a payment intent for the given amount in minor units.
// The caller controls the timeout through ctx; on failure nothing has been
// persisted on our side, so retrying is safe.
func (g *Gateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, orderID int64) (*gateway.Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinorUnits, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("metadata[orderId]", strconv.FormatInt(orderID, 10))
	form.Set("automatic_payment_methods[enabled]", "true")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/v1/payment_intents",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrProcessorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", gateway.ErrProcessorUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s", gateway.ErrProcessorUnavailable, errResp.Error.Message)
		}

		return nil, fmt.Errorf("%w: status %d", gateway.ErrProcessorUnavailable, resp.StatusCode)
	}

	var intent intentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", gateway.ErrProcessorUnavailable, err)
	}

	return &gateway.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}
