package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ipaymentrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iproductrepo"
	"github.com/webstore-labs/checkout/internal/dal/postgres"
	"github.com/webstore-labs/checkout/internal/dal/uow"
	"github.com/webstore-labs/checkout/internal/metrics"
	"github.com/webstore-labs/checkout/internal/service/models/currency"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
	"github.com/webstore-labs/checkout/internal/service/models/outbox"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

// OrderService is a service for managing orders.
type OrderService struct {
	pgClient   *postgres.Client
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

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// CreateOrder reserves stock for every requested line item, snapshots prices,
// computes the exact total, and persists the order with its items. Stock
// decrements and order persistence happen in one transaction: either all of
// it commits or none of it does.
//
// Items in the argument carry only ProductID and Quantity; everything else is
// resolved here.
func (s *OrderService) CreateOrder(ctx context.Context, o order.Order) (*order.Order, error) {
	if len(o.Items) == 0 {
		return nil, order.ErrNoItems
	}

	slog.InfoContext(ctx, "Creating order", "customer", o.CustomerEmail, "items", len(o.Items))

	now := time.Now()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer work.Rollback(ctx) //nolint:errcheck

	total := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]

		p, err := work.ProductRepository().GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: %s", product.ErrProductInactive, p.Name)
		}

		if err := work.ProductRepository().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, product.ErrInsufficientStock) {
				metrics.StockRejections.Inc()
				slog.ErrorContext(ctx, "Insufficient stock",
					"product", p.Name,
					"requested", item.Quantity,
					"available", p.StockQuantity,
				)

				return nil, fmt.Errorf("%w: %s", product.ErrInsufficientStock, p.Name)
			}

			return nil, err
		}

		item.ProductName = p.Name
		item.PriceAtPurchase = p.Price
		item.CreatedAt = now

		total = total.Add(item.Subtotal())
	}

	o.TotalAmount = total
	o.Currency = currency.CurrencyUSD
	o.Status = order.StatusPending
	o.CreatedAt = now
	o.UpdatedAt = now

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	for i := range o.Items {
		o.Items[i].OrderID = inserted.ID
	}

	items, err := work.OrderItemRepository().BulkInsert(ctx, o.Items)
	if err != nil {
		return nil, err
	}
	inserted.Items = items

	if err := s.stageEvent(ctx, work.OutboxRepository(), outbox.EventOrderCreated, inserted); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	slog.InfoContext(ctx, "Order created", "order_id", inserted.ID, "total", inserted.TotalAmount.String())

	return inserted, nil
}

// GetOrder retrieves an order with its items and payment, if any.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items

	p, err := work.PaymentRepository().GetByOrderID(ctx, o.ID)
	if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, err
	}
	o.Payment = p

	return o, nil
}

// ListOrdersByCustomer retrieves a customer's orders, newest first.
func (s *OrderService) ListOrdersByCustomer(ctx context.Context, email string) ([]order.Order, error) {
	return s.list(ctx, &order.QueryOrdersModel{CustomerEmail: email})
}

// ListAllOrders retrieves every order, newest first. Administrative.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	return s.list(ctx, &order.QueryOrdersModel{})
}

func (s *OrderService) list(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[int64][]orderitem.OrderItem, len(orders))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]

		p, err := work.PaymentRepository().GetByOrderID(ctx, orders[i].ID)
		if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, err
		}
		orders[i].Payment = p
	}

	return orders, nil
}

// UpdateStatus overwrites an order's status. The status value itself is
// strictly parsed at the transport boundary, but transitions are not
// validated against the lifecycle table here.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	slog.InfoContext(ctx, "Updating order status", "order_id", id, "status", status)

	work := s.newUOW()

	if err := work.OrderRepository().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, id)
}

func (s *OrderService) stageEvent(ctx context.Context, repo ioutboxrepo.IOutboxRepository, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	return repo.Insert(ctx, outbox.NewMessage(eventType, body))
}
