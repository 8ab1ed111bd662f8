package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ipaymentrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iproductrepo"
	"github.com/webstore-labs/checkout/internal/dal/postgres"
	"github.com/webstore-labs/checkout/internal/dal/uow"
	"github.com/webstore-labs/checkout/internal/gateway"
	"github.com/webstore-labs/checkout/internal/metrics"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/outbox"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
)

const defaultProcessorTimeout = 15 * time.Second

var minorUnitFactor = decimal.NewFromInt(100)

// PaymentService coordinates payment intents against the external processor
// and reconciles processor outcomes back onto payments and orders.
type PaymentService struct {
	pgClient   *postgres.Client
	gateway    gateway.PaymentGateway
	timeout    time.Duration
	uowFactory func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.IProductRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	PaymentRepository() ipaymentrepo.IPaymentRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

func (s *PaymentService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the PaymentService.
type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService.
func MustNewPaymentService(opts ...option) *PaymentService {
	s := &PaymentService{
		timeout: defaultProcessorTimeout,
	}

	if t := viper.GetDuration("payment.processor_timeout"); t > 0 {
		s.timeout = t
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.gateway == nil {
		panic("paymentsvc: payment gateway is required")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the PaymentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *PaymentService) {
		s.pgClient = pgClient
	}
}

// WithGateway sets the payment gateway for the PaymentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gtw gateway.PaymentGateway) option {
	return func(s *PaymentService) {
		s.gateway = gtw
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *PaymentService) {
		s.uowFactory = factory
	}
}

// IntentResult is the client-facing handle returned by CreateIntent.
type IntentResult struct {
	IntentID         string `json:"paymentIntentId"`
	ClientSecret     string `json:"clientSecret"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
}

// CreateIntent creates a payment intent for the order's total. If the order
// already carries a SUCCEEDED payment it fails with payment.ErrAlreadyPaid.
// The payment row is persisted only after the processor call succeeds, so a
// failed call leaves no state behind and the operation is safe to retry.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID int64) (*IntentResult, error) {
	slog.InfoContext(ctx, "Creating payment intent", "order_id", orderID)

	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	existing, err := work.PaymentRepository().GetByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == payment.StatusSucceeded {
		slog.WarnContext(ctx, "Attempted to pay for already paid order", "order_id", orderID)

		return nil, payment.ErrAlreadyPaid
	}

	// The processor works in integer minor units; sub-cent remainders are
	// truncated, matching standard currency conversion.
	amountMinorUnits := o.TotalAmount.Mul(minorUnitFactor).IntPart()

	gtwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	intent, err := s.gateway.CreateIntent(gtwCtx, amountMinorUnits, o.Currency.String(), orderID)
	metrics.ProcessorRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		slog.ErrorContext(ctx, "Payment processor call failed", "order_id", orderID, "error", err)

		return nil, err
	}

	p := payment.Payment{
		OrderID:   orderID,
		IntentID:  intent.ID,
		Amount:    o.TotalAmount,
		Currency:  o.Currency,
		Status:    payment.StatusPending,
		CreatedAt: time.Now(),
	}

	if _, err := work.PaymentRepository().Insert(ctx, p); err != nil {
		return nil, err
	}

	metrics.PaymentIntentsCreated.Inc()
	slog.InfoContext(ctx, "Payment intent created",
		"intent_id", intent.ID,
		"order_id", orderID,
		"amount", o.TotalAmount.String(),
	)

	return &IntentResult{
		IntentID:         intent.ID,
		ClientSecret:     intent.ClientSecret,
		AmountMinorUnits: amountMinorUnits,
		Currency:         o.Currency.String(),
	}, nil
}

// ConfirmPayment applies a successful processor outcome: the payment becomes
// SUCCEEDED and its order becomes PAID, in one transaction. Re-invoking on an
// already succeeded payment is a no-op.
func (s *PaymentService) ConfirmPayment(ctx context.Context, intentID string) error {
	slog.InfoContext(ctx, "Confirming payment", "intent_id", intentID)

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer work.Rollback(ctx) //nolint:errcheck

	p, err := work.PaymentRepository().GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			// A callback for an intent this service never created.
			slog.ErrorContext(ctx, "Payment confirmation for unknown intent", "intent_id", intentID)
		}

		return err
	}

	if p.Status == payment.StatusSucceeded {
		slog.InfoContext(ctx, "Payment already confirmed", "intent_id", intentID, "order_id", p.OrderID)

		return nil
	}

	completedAt := time.Now()
	if err := work.PaymentRepository().UpdateStatus(ctx, intentID, payment.StatusSucceeded, &completedAt); err != nil {
		return err
	}

	if err := work.OrderRepository().UpdateStatus(ctx, p.OrderID, order.StatusPaid); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return fmt.Errorf("%w: payment %s references missing order %d", uow.ErrInconsistentState, intentID, p.OrderID)
		}

		return err
	}

	if err := s.stageEvent(ctx, work.OutboxRepository(), outbox.EventPaymentSucceeded, p); err != nil {
		return err
	}

	if err := work.Commit(ctx); err != nil {
		return err
	}

	metrics.PaymentsReconciled.WithLabelValues(payment.StatusSucceeded.String()).Inc()
	slog.InfoContext(ctx, "Payment confirmed", "intent_id", intentID, "order_id", p.OrderID)

	return nil
}

// FailPayment applies a failed processor outcome. The order is left PENDING
// and remains eligible for a new intent; stock reserved at order creation is
// not restored. Re-invoking on an already failed payment is a no-op.
func (s *PaymentService) FailPayment(ctx context.Context, intentID string) error {
	slog.WarnContext(ctx, "Failing payment", "intent_id", intentID)

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer work.Rollback(ctx) //nolint:errcheck

	p, err := work.PaymentRepository().GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			slog.ErrorContext(ctx, "Payment failure report for unknown intent", "intent_id", intentID)
		}

		return err
	}

	if p.Status == payment.StatusFailed {
		return nil
	}

	if err := work.PaymentRepository().UpdateStatus(ctx, intentID, payment.StatusFailed, nil); err != nil {
		return err
	}

	if err := s.stageEvent(ctx, work.OutboxRepository(), outbox.EventPaymentFailed, p); err != nil {
		return err
	}

	if err := work.Commit(ctx); err != nil {
		return err
	}

	metrics.PaymentsReconciled.WithLabelValues(payment.StatusFailed.String()).Inc()
	slog.WarnContext(ctx, "Payment failed", "intent_id", intentID, "order_id", p.OrderID)

	return nil
}

func (s *PaymentService) stageEvent(ctx context.Context, repo ioutboxrepo.IOutboxRepository, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	return repo.Insert(ctx, outbox.NewMessage(eventType, body))
}
