package paymentsvc

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/dal/uow"
	"github.com/webstore-labs/checkout/internal/dal/uow/uowtest"
	"github.com/webstore-labs/checkout/internal/gateway"
	"github.com/webstore-labs/checkout/internal/gateway/simulator"
	"github.com/webstore-labs/checkout/internal/service/models/currency"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/outbox"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
)

func newTestService(store *uowtest.Store, gtw gateway.PaymentGateway) *PaymentService {
	return MustNewPaymentService(
		WithGateway(gtw),
		WithUnitOfWorkFactory(func() unitOfWork {
			return store.NewUOW()
		}),
	)
}

func seedOrder(t *testing.T, store *uowtest.Store, total string) *order.Order {
	t.Helper()

	now := time.Now()
	o, err := store.NewUOW().OrderRepository().Insert(context.Background(), order.Order{
		CustomerEmail:   "jane@example.com",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingZipCode: "12345",
		ShippingCountry: "US",
		TotalAmount:     decimal.RequireFromString(total),
		Currency:        currency.CurrencyUSD,
		Status:          order.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)

	return o
}

func orderStatus(t *testing.T, store *uowtest.Store, id int64) order.Status {
	t.Helper()

	o, err := store.NewUOW().OrderRepository().GetByID(context.Background(), id)
	require.NoError(t, err)

	return o.Status
}

func paymentByOrder(t *testing.T, store *uowtest.Store, orderID int64) *payment.Payment {
	t.Helper()

	p, err := store.NewUOW().PaymentRepository().GetByOrderID(context.Background(), orderID)
	require.NoError(t, err)

	return p
}

func TestCreateIntent(t *testing.T) {
	store := uowtest.NewStore()
	o := seedOrder(t, store, "19.99")

	gtw := simulator.NewGateway(0)
	svc := newTestService(store, gtw)

	result, err := svc.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1999), result.AmountMinorUnits)
	assert.Equal(t, "USD", result.Currency)
	assert.NotEmpty(t, result.IntentID)
	assert.NotEmpty(t, result.ClientSecret)

	amount, ok := gtw.IntentAmount(result.IntentID)
	require.True(t, ok)
	assert.Equal(t, int64(1999), amount)

	p := paymentByOrder(t, store, o.ID)
	assert.Equal(t, result.IntentID, p.IntentID)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.True(t, p.Amount.Equal(o.TotalAmount))
	assert.Nil(t, p.CompletedAt)
}

func TestCreateIntentOrderNotFound(t *testing.T) {
	svc := newTestService(uowtest.NewStore(), simulator.NewGateway(0))

	_, err := svc.CreateIntent(context.Background(), 42)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestCreateIntentAlreadyPaid(t *testing.T) {
	store := uowtest.NewStore()
	o := seedOrder(t, store, "19.99")

	svc := newTestService(store, simulator.NewGateway(0))

	result, err := svc.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPayment(context.Background(), result.IntentID))

	_, err = svc.CreateIntent(context.Background(), o.ID)
	assert.ErrorIs(t, err, payment.ErrAlreadyPaid)
}

func TestCreateIntentRetryAfterFailure(t *testing.T) {
	store := uowtest.NewStore()
	o := seedOrder(t, store, "19.99")

	svc := newTestService(store, simulator.NewGateway(0))

	first, err := svc.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)
	require.NoError(t, svc.FailPayment(context.Background(), first.IntentID))

	second, err := svc.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.IntentID, second.IntentID)

	// The single payment row for the order now carries the fresh intent.
	p := paymentByOrder(t, store, o.ID)
	assert.Equal(t, second.IntentID, p.IntentID)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Nil(t, p.CompletedAt)
}

func TestCreateIntentProcessorError(t *testing.T) {
	store := uowtest.NewStore()
	o := seedOrder(t, store, "19.99")

	svc := newTestService(store, simulator.NewGateway(100))

	_, err := svc.CreateIntent(context.Background(), o.ID)
	require.ErrorIs(t, err, gateway.ErrProcessorUnavailable)

	// Nothing persisted; the order can be retried cleanly.
	_, err = store.NewUOW().PaymentRepository().GetByOrderID(context.Background(), o.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestConfirmPayment(t *testing.T) {
	store := uowtest.NewStore()
	o := seedOrder(t, store, "19.99")

	svc := newTestService(store, simulator.NewGateway(0))

	result, err := svc.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPayment(context.Background(), result.IntentID))

	p := paymentByOrder(t, store, o.ID)
	assert.Equal(t, payment.StatusSucceeded, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, order.StatusPaid, orderStatus(t, store, o.ID))
	assert.Equal(t, []string{outbox.EventPaymentSucceeded}, store.Events())

	// Confirming again is a no-op and stages no duplicate event.
	require.NoError(t, svc.ConfirmPayment(context.Background(), result.IntentID))
	assert.Equal(t, []string{outbox.EventPaymentSucceeded}, store.Events())
}

func TestConfirmPaymentUnknownIntent(t *testing.T) {
	svc := newTestService(uowtest.NewStore(), simulator.NewGateway(0))

	err := svc.ConfirmPayment(context.Background(), "pi_unknown")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestConfirmPaymentMissingOrder(t *testing.T) {
	store := uowtest.NewStore()

	_, err := store.NewUOW().PaymentRepository().Insert(context.Background(), payment.Payment{
		OrderID:   404,
		IntentID:  "pi_orphan",
		Amount:    decimal.RequireFromString("19.99"),
		Currency:  currency.CurrencyUSD,
		Status:    payment.StatusPending,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	svc := newTestService(store, simulator.NewGateway(0))

	err = svc.ConfirmPayment(context.Background(), "pi_orphan")
	assert.ErrorIs(t, err, uow.ErrInconsistentState)

	// The payment must not be left half reconciled.
	p := paymentByOrder(t, store, 404)
	assert.Equal(t, payment.StatusPending, p.Status)
}

func TestFailPayment(t *testing.T) {
	store := uowtest.NewStore()
	o := seedOrder(t, store, "19.99")

	svc := newTestService(store, simulator.NewGateway(0))

	result, err := svc.CreateIntent(context.Background(), o.ID)
	require.NoError(t, err)

	require.NoError(t, svc.FailPayment(context.Background(), result.IntentID))

	p := paymentByOrder(t, store, o.ID)
	assert.Equal(t, payment.StatusFailed, p.Status)
	assert.Nil(t, p.CompletedAt)

	// The order stays pending and eligible for another attempt.
	assert.Equal(t, order.StatusPending, orderStatus(t, store, o.ID))
	assert.Equal(t, []string{outbox.EventPaymentFailed}, store.Events())

	require.NoError(t, svc.FailPayment(context.Background(), result.IntentID))
	assert.Equal(t, []string{outbox.EventPaymentFailed}, store.Events())
}

func TestFailPaymentUnknownIntent(t *testing.T) {
	svc := newTestService(uowtest.NewStore(), simulator.NewGateway(0))

	err := svc.FailPayment(context.Background(), "pi_unknown")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}
