package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/webstore-labs/checkout/internal/dal/postgres"
	"github.com/webstore-labs/checkout/internal/service/models/currency"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
)

// PaymentDal represents payment data access layer model.
type PaymentDal struct {
	Id          int64      `db:"id"`
	OrderId     int64      `db:"order_id"`
	IntentId    string     `db:"intent_id"`
	Amount      string     `db:"amount"`
	Currency    string     `db:"currency"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

// ToModel converts PaymentDal to service layer Payment model.
func (p *PaymentDal) ToModel() (*payment.Payment, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment amount: %w", err)
	}
	cur, err := currency.ParseCurrency(p.Currency)
	if err != nil {
		return nil, err
	}
	status, err := payment.ParseStatus(p.Status)
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		ID:          p.Id,
		OrderID:     p.OrderId,
		IntentID:    p.IntentId,
		Amount:      amount,
		Currency:    cur,
		Status:      status,
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}, nil
}

// PostgresPaymentRepository represents a Postgres payment repository.
type PostgresPaymentRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresPaymentRepository creates a new Postgres payment repository.
func NewPostgresPaymentRepository(conn postgres.Conn) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var paymentColumns = []string{
	"id",
	"order_id",
	"intent_id",
	"amount::text",
	"currency",
	"status",
	"created_at",
	"completed_at",
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var dal PaymentDal
	err := row.Scan(
		&dal.Id,
		&dal.OrderId,
		&dal.IntentId,
		&dal.Amount,
		&dal.Currency,
		&dal.Status,
		&dal.CreatedAt,
		&dal.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// Insert persists a new payment. The table carries unique constraints on both
// intent_id and order_id, enforcing at most one payment per order.
func (r *PostgresPaymentRepository) Insert(ctx context.Context, p payment.Payment) (*payment.Payment, error) {
	query, args, err := r.sb.Insert("payments").
		Columns(
			"order_id",
			"intent_id",
			"amount",
			"currency",
			"status",
			"created_at",
		).
		Values(
			p.OrderID,
			p.IntentID,
			p.Amount.StringFixed(2),
			p.Currency.String(),
			p.Status.String(),
			p.CreatedAt,
		).
		Suffix(`
			ON CONFLICT (order_id) DO UPDATE SET
				intent_id = EXCLUDED.intent_id,
				amount = EXCLUDED.amount,
				currency = EXCLUDED.currency,
				status = EXCLUDED.status,
				created_at = EXCLUDED.created_at,
				completed_at = NULL
			RETURNING id, order_id, intent_id, amount::text, currency, status, created_at, completed_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanPayment(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	return inserted, nil
}

// GetByIntentID retrieves a payment by the processor-assigned intent id.
func (r *PostgresPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*payment.Payment, error) {
	return r.getBy(ctx, sq.Eq{"intent_id": intentID})
}

// GetByOrderID retrieves the payment attached to an order, if any.
func (r *PostgresPaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*payment.Payment, error) {
	return r.getBy(ctx, sq.Eq{"order_id": orderID})
}

func (r *PostgresPaymentRepository) getBy(ctx context.Context, where sq.Eq) (*payment.Payment, error) {
	query, args, err := r.sb.Select(paymentColumns...).
		From("payments").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	p, err := scanPayment(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// UpdateStatus marks a payment with a terminal or intermediate status.
func (r *PostgresPaymentRepository) UpdateStatus(ctx context.Context, intentID string, status payment.Status, completedAt *time.Time) error {
	query, args, err := r.sb.Update("payments").
		Set("status", status.String()).
		Set("completed_at", completedAt).
		Where(sq.Eq{"intent_id": intentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}
