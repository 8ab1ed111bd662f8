package productsvc

import (
	"context"

	"github.com/webstore-labs/checkout/internal/dal/interfaces/iproductrepo"
	"github.com/webstore-labs/checkout/internal/dal/postgres"
	productrepo "github.com/webstore-labs/checkout/internal/dal/repositories/product/postgres"
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

// ProductService exposes the catalog's read side. Stock mutation lives in
// ordersvc, where it shares a transaction with order persistence.
type ProductService struct {
	repo iproductrepo.IProductRepository
}

// option is a function that configures the ProductService.
type option func(*ProductService)

// MustNewProductService creates a new ProductService.
func MustNewProductService(opts ...option) *ProductService {
	s := &ProductService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the ProductService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ProductService) {
		s.repo = productrepo.NewPostgresProductRepository(pgClient.Pool())
	}
}

// WithRepository sets the product repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo iproductrepo.IProductRepository) option {
	return func(s *ProductService) {
		s.repo = repo
	}
}

// GetProduct retrieves a single product by id.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListActiveProducts retrieves products visible to customers.
func (s *ProductService) ListActiveProducts(ctx context.Context) ([]product.Product, error) {
	return s.repo.Query(ctx, true)
}

// ListAllProducts retrieves every product, including inactive ones.
// Administrative.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]product.Product, error) {
	return s.repo.Query(ctx, false)
}
