package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ipaymentrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iproductrepo"
	"github.com/webstore-labs/checkout/internal/dal/postgres"
	orderrepo "github.com/webstore-labs/checkout/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/webstore-labs/checkout/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/webstore-labs/checkout/internal/dal/repositories/outbox/postgres"
	paymentrepo "github.com/webstore-labs/checkout/internal/dal/repositories/payment/postgres"
	productrepo "github.com/webstore-labs/checkout/internal/dal/repositories/product/postgres"
)

// ErrInconsistentState marks a ledger-detected violation, for example a
// payment pointing at an order that no longer exists.
var ErrInconsistentState = errors.New("inconsistent ledger state")

type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	productRepo   iproductrepo.IProductRepository
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	paymentRepo   ipaymentrepo.IPaymentRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:          pool,
		productRepo:   productrepo.NewPostgresProductRepository(pool),
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		paymentRepo:   paymentrepo.NewPostgresPaymentRepository(pool),
		outboxRepo:    outboxrepo.NewOutboxRepository(pool),
	}
}

func (u *unitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) PaymentRepository() ipaymentrepo.IPaymentRepository {
	return u.paymentRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// Begin opens a transaction and rebinds every repository to it, so all writes
// issued until Commit land in one atomic unit.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.paymentRepo = paymentrepo.NewPostgresPaymentRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is a no-op after Commit, so it is safe to defer unconditionally.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
