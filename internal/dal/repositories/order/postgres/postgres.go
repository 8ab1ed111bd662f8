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
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id              int64     `db:"id"`
	UserEmail       *string   `db:"user_email"`
	CustomerEmail   string    `db:"customer_email"`
	CustomerPhone   string    `db:"customer_phone"`
	ShippingAddress string    `db:"shipping_address"`
	ShippingCity    string    `db:"shipping_city"`
	ShippingZipCode string    `db:"shipping_zip_code"`
	ShippingCountry string    `db:"shipping_country"`
	TotalAmount     string    `db:"total_amount"`
	Currency        string    `db:"currency"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	total, err := decimal.NewFromString(o.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order total: %w", err)
	}
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	userEmail := ""
	if o.UserEmail != nil {
		userEmail = *o.UserEmail
	}

	return &order.Order{
		ID:              o.Id,
		UserEmail:       userEmail,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		ShippingZipCode: o.ShippingZipCode,
		ShippingCountry: o.ShippingCountry,
		TotalAmount:     total,
		Currency:        cur,
		Status:          status,
		Items:           []orderitem.OrderItem{}, // Will be populated separately
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"id",
	"user_email",
	"customer_email",
	"customer_phone",
	"shipping_address",
	"shipping_city",
	"shipping_zip_code",
	"shipping_country",
	"total_amount::text",
	"currency",
	"status",
	"created_at",
	"updated_at",
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.UserEmail,
		&dal.CustomerEmail,
		&dal.CustomerPhone,
		&dal.ShippingAddress,
		&dal.ShippingCity,
		&dal.ShippingZipCode,
		&dal.ShippingCountry,
		&dal.TotalAmount,
		&dal.Currency,
		&dal.Status,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// Insert persists a new order and returns it with the assigned id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	var userEmail *string
	if o.UserEmail != "" {
		userEmail = &o.UserEmail
	}

	query, args, err := r.sb.Insert("orders").
		Columns(
			"user_email",
			"customer_email",
			"customer_phone",
			"shipping_address",
			"shipping_city",
			"shipping_zip_code",
			"shipping_country",
			"total_amount",
			"currency",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			userEmail,
			o.CustomerEmail,
			o.CustomerPhone,
			o.ShippingAddress,
			o.ShippingCity,
			o.ShippingZipCode,
			o.ShippingCountry,
			o.TotalAmount.StringFixed(2),
			o.Currency.String(),
			o.Status.String(),
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING " + returningOrderColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	inserted.Items = append(inserted.Items, o.Items...)

	return inserted, nil
}

func returningOrderColumns() string {
	cols := ""
	for i, c := range orderColumns {
		if i > 0 {
			cols += ", "
		}
		cols += c
	}

	return cols
}

// GetByID retrieves a single order by id.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := r.sb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if filter.CustomerEmail != "" {
		builder = builder.Where(sq.Eq{"customer_email": filter.CustomerEmail})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateStatus overwrites the order status. No transition-table enforcement
// happens at this layer.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	query, args, err := r.sb.Update("orders").
		Set("status", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}
