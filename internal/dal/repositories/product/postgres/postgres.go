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
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id            int64     `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	Price         string    `db:"price"`
	StockQuantity int       `db:"stock_quantity"`
	Active        bool      `db:"active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}

	return &product.Product{
		ID:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		StockQuantity: p.StockQuantity,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.Conn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var productColumns = []string{
	"id",
	"name",
	"description",
	"price::text",
	"stock_quantity",
	"active",
	"created_at",
	"updated_at",
}

// GetByID retrieves a single product by id.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	query, args, err := r.sb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal ProductDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.Name,
		&dal.Description,
		&dal.Price,
		&dal.StockQuantity,
		&dal.Active,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return dal.ToModel()
}

// Query retrieves products, optionally restricted to active ones.
func (r *PostgresProductRepository) Query(ctx context.Context, activeOnly bool) ([]product.Product, error) {
	builder := r.sb.Select(productColumns...).
		From("products").
		OrderBy("id")

	if activeOnly {
		builder = builder.Where(sq.Eq{"active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.Description,
			&dal.Price,
			&dal.StockQuantity,
			&dal.Active,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DecrementStock atomically reduces stock by quantity. The condition is part
// of the UPDATE itself so two concurrent orders cannot both pass a stale
// stock check.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	query, args, err := r.sb.Update("products").
		Set("stock_quantity", sq.Expr("stock_quantity - ?", quantity)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Where(sq.GtOrEq{"stock_quantity": quantity}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing product from insufficient stock.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}

		return product.ErrInsufficientStock
	}

	return nil
}
