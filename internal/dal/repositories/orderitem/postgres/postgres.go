package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/webstore-labs/checkout/internal/dal/postgres"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id              int64     `db:"id"`
	OrderId         int64     `db:"order_id"`
	ProductId       int64     `db:"product_id"`
	ProductName     string    `db:"product_name"`
	Quantity        int       `db:"quantity"`
	PriceAtPurchase string    `db:"price_at_purchase"`
	CreatedAt       time.Time `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	price, err := decimal.NewFromString(oi.PriceAtPurchase)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item price: %w", err)
	}

	return &orderitem.OrderItem{
		ID:              oi.Id,
		OrderID:         oi.OrderId,
		ProductID:       oi.ProductId,
		ProductName:     oi.ProductName,
		Quantity:        oi.Quantity,
		PriceAtPurchase: price,
		CreatedAt:       oi.CreatedAt,
	}, nil
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.Conn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts multiple order items and returns them with assigned ids.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if len(items) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	sql := `
		INSERT INTO order_items (
			order_id,
			product_id,
			product_name,
			quantity,
			price_at_purchase,
			created_at
		)
		SELECT
			order_id,
			product_id,
			product_name,
			quantity,
			price_at_purchase::numeric,
			created_at
		FROM unnest($1::bigint[], $2::bigint[], $3::text[], $4::int[], $5::text[], $6::timestamptz[])
		AS t(order_id, product_id, product_name, quantity, price_at_purchase, created_at)
		RETURNING
			id,
			order_id,
			product_id,
			product_name,
			quantity,
			price_at_purchase::text,
			created_at
	`

	orderIds := make([]int64, len(items))
	productIds := make([]int64, len(items))
	productNames := make([]string, len(items))
	quantities := make([]int32, len(items))
	prices := make([]string, len(items))
	createdAts := make([]time.Time, len(items))

	for i, item := range items {
		orderIds[i] = item.OrderID
		productIds[i] = item.ProductID
		productNames[i] = item.ProductName
		quantities[i] = int32(item.Quantity)
		prices[i] = item.PriceAtPurchase.StringFixed(2)
		createdAts[i] = item.CreatedAt
	}

	rows, err := r.conn.Query(ctx, sql,
		orderIds,
		productIds,
		productNames,
		quantities,
		prices,
		createdAts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductName,
			&dal.Quantity,
			&dal.PriceAtPurchase,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// QueryByOrderIDs retrieves all items belonging to the given orders.
func (r *PostgresOrderItemRepository) QueryByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query, args, err := r.sb.Select(
		"id",
		"order_id",
		"product_id",
		"product_name",
		"quantity",
		"price_at_purchase::text",
		"created_at",
	).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductName,
			&dal.Quantity,
			&dal.PriceAtPurchase,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
