// Package uowtest provides an in-memory unit of work backed by a Store,
// mirroring the Postgres schema semantics closely enough for service tests:
// serialized transactions, rollback on failure, conditional stock decrement
// and the one-payment-per-order upsert.
package uowtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/ipaymentrepo"
	"github.com/webstore-labs/checkout/internal/dal/interfaces/iproductrepo"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
	"github.com/webstore-labs/checkout/internal/service/models/outbox"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

// Store holds the in-memory tables shared by every unit of work created
// from it.
type Store struct {
	mu sync.Mutex

	products map[int64]product.Product
	orders   map[int64]order.Order
	items    []orderitem.OrderItem
	payments map[int64]payment.Payment
	outbox   []outbox.OutboxMessage

	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
	nextPaymentID int64
	nextOutboxID  int64
}

func NewStore() *Store {
	return &Store{
		products: make(map[int64]product.Product),
		orders:   make(map[int64]order.Order),
		payments: make(map[int64]payment.Payment),
	}
}

// AddProduct seeds a product, assigning an id when none is set.
func (s *Store) AddProduct(p product.Product) product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		s.nextProductID++
		p.ID = s.nextProductID
	} else if p.ID > s.nextProductID {
		s.nextProductID = p.ID
	}
	s.products[p.ID] = p

	return p
}

// StockQuantity reports a product's current stock.
func (s *Store) StockQuantity(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.products[id].StockQuantity
}

// Events lists the routing keys of every staged outbox message, in insertion
// order.
func (s *Store) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, len(s.outbox))
	for i, msg := range s.outbox {
		keys[i] = msg.RoutingKey
	}

	return keys
}

type snapshot struct {
	products map[int64]product.Product
	orders   map[int64]order.Order
	items    []orderitem.OrderItem
	payments map[int64]payment.Payment
	outbox   []outbox.OutboxMessage

	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
	nextPaymentID int64
	nextOutboxID  int64
}

func (s *Store) snapshot() *snapshot {
	snap := &snapshot{
		products:      make(map[int64]product.Product, len(s.products)),
		orders:        make(map[int64]order.Order, len(s.orders)),
		items:         append([]orderitem.OrderItem(nil), s.items...),
		payments:      make(map[int64]payment.Payment, len(s.payments)),
		outbox:        append([]outbox.OutboxMessage(nil), s.outbox...),
		nextProductID: s.nextProductID,
		nextOrderID:   s.nextOrderID,
		nextItemID:    s.nextItemID,
		nextPaymentID: s.nextPaymentID,
		nextOutboxID:  s.nextOutboxID,
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	for id, o := range s.orders {
		snap.orders[id] = o
	}
	for id, p := range s.payments {
		snap.payments[id] = p
	}

	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.products = snap.products
	s.orders = snap.orders
	s.items = snap.items
	s.payments = snap.payments
	s.outbox = snap.outbox
	s.nextProductID = snap.nextProductID
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
	s.nextPaymentID = snap.nextPaymentID
	s.nextOutboxID = snap.nextOutboxID
}

// UOW is one unit of work over a Store. A transaction holds the store lock
// from Begin until Commit or Rollback, so concurrent transactions serialize.
// Repository calls outside a transaction lock per call.
type UOW struct {
	store *Store
	inTx  bool
	snap  *snapshot
}

func (s *Store) NewUOW() *UOW {
	return &UOW{store: s}
}

func (u *UOW) Begin(_ context.Context) error {
	u.store.mu.Lock()
	u.inTx = true
	u.snap = u.store.snapshot()

	return nil
}

func (u *UOW) Commit(_ context.Context) error {
	if !u.inTx {
		return nil
	}
	u.inTx = false
	u.snap = nil
	u.store.mu.Unlock()

	return nil
}

func (u *UOW) Rollback(_ context.Context) error {
	if !u.inTx {
		return nil
	}
	u.store.restore(u.snap)
	u.inTx = false
	u.snap = nil
	u.store.mu.Unlock()

	return nil
}

func (u *UOW) do(fn func(s *Store)) {
	if u.inTx {
		fn(u.store)

		return
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	fn(u.store)
}

func (u *UOW) ProductRepository() iproductrepo.IProductRepository {
	return productRepo{u}
}

func (u *UOW) OrderRepository() iorderrepo.IOrderRepository {
	return orderRepo{u}
}

func (u *UOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return itemRepo{u}
}

func (u *UOW) PaymentRepository() ipaymentrepo.IPaymentRepository {
	return paymentRepo{u}
}

func (u *UOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return outboxRepo{u}
}

type productRepo struct{ u *UOW }

func (r productRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	var (
		p  product.Product
		ok bool
	)
	r.u.do(func(s *Store) {
		p, ok = s.products[id]
	})
	if !ok {
		return nil, product.ErrProductNotFound
	}

	return &p, nil
}

func (r productRepo) Query(_ context.Context, activeOnly bool) ([]product.Product, error) {
	var out []product.Product
	r.u.do(func(s *Store) {
		for _, p := range s.products {
			if activeOnly && !p.Active {
				continue
			}
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r productRepo) DecrementStock(_ context.Context, id int64, quantity int) error {
	var err error
	r.u.do(func(s *Store) {
		p, ok := s.products[id]
		if !ok {
			err = product.ErrProductNotFound

			return
		}
		if p.StockQuantity < quantity {
			err = product.ErrInsufficientStock

			return
		}
		p.StockQuantity -= quantity
		s.products[id] = p
	})

	return err
}

type orderRepo struct{ u *UOW }

func (r orderRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	r.u.do(func(s *Store) {
		s.nextOrderID++
		o.ID = s.nextOrderID

		stored := o
		stored.Items = nil
		stored.Payment = nil
		s.orders[o.ID] = stored
	})

	return &o, nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	var (
		o  order.Order
		ok bool
	)
	r.u.do(func(s *Store) {
		o, ok = s.orders[id]
	})
	if !ok {
		return nil, order.ErrOrderNotFound
	}

	return &o, nil
}

func (r orderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var out []order.Order
	r.u.do(func(s *Store) {
		ids := make(map[int64]struct{}, len(filter.Ids))
		for _, id := range filter.Ids {
			ids[id] = struct{}{}
		}

		for _, o := range s.orders {
			if filter.CustomerEmail != "" && o.CustomerEmail != filter.CustomerEmail {
				continue
			}
			if len(ids) > 0 {
				if _, ok := ids[o.ID]; !ok {
					continue
				}
			}
			out = append(out, o)
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID > out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []order.Order{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	var err error
	r.u.do(func(s *Store) {
		o, ok := s.orders[id]
		if !ok {
			err = order.ErrOrderNotFound

			return
		}
		o.Status = status
		o.UpdatedAt = time.Now()
		s.orders[id] = o
	})

	return err
}

type itemRepo struct{ u *UOW }

func (r itemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	out := make([]orderitem.OrderItem, len(items))
	r.u.do(func(s *Store) {
		for i, item := range items {
			s.nextItemID++
			item.ID = s.nextItemID
			s.items = append(s.items, item)
			out[i] = item
		}
	})

	return out, nil
}

func (r itemRepo) QueryByOrderIDs(_ context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	ids := make(map[int64]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		ids[id] = struct{}{}
	}

	var out []orderitem.OrderItem
	r.u.do(func(s *Store) {
		for _, item := range s.items {
			if _, ok := ids[item.OrderID]; ok {
				out = append(out, item)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderID != out[j].OrderID {
			return out[i].OrderID < out[j].OrderID
		}

		return out[i].ID < out[j].ID
	})

	return out, nil
}

type paymentRepo struct{ u *UOW }

func (r paymentRepo) Insert(_ context.Context, p payment.Payment) (*payment.Payment, error) {
	r.u.do(func(s *Store) {
		for id, existing := range s.payments {
			if existing.OrderID == p.OrderID {
				// Same upsert as the payments table: one row per order,
				// replaced on retry.
				p.ID = id
				p.CompletedAt = nil
				s.payments[id] = p

				return
			}
		}

		s.nextPaymentID++
		p.ID = s.nextPaymentID
		s.payments[p.ID] = p
	})

	return &p, nil
}

func (r paymentRepo) GetByIntentID(_ context.Context, intentID string) (*payment.Payment, error) {
	return r.getBy(func(p payment.Payment) bool { return p.IntentID == intentID })
}

func (r paymentRepo) GetByOrderID(_ context.Context, orderID int64) (*payment.Payment, error) {
	return r.getBy(func(p payment.Payment) bool { return p.OrderID == orderID })
}

func (r paymentRepo) getBy(match func(payment.Payment) bool) (*payment.Payment, error) {
	var found *payment.Payment
	r.u.do(func(s *Store) {
		for _, p := range s.payments {
			if match(p) {
				cp := p
				found = &cp

				return
			}
		}
	})
	if found == nil {
		return nil, payment.ErrPaymentNotFound
	}

	return found, nil
}

func (r paymentRepo) UpdateStatus(_ context.Context, intentID string, status payment.Status, completedAt *time.Time) error {
	err := payment.ErrPaymentNotFound
	r.u.do(func(s *Store) {
		for id, p := range s.payments {
			if p.IntentID == intentID {
				p.Status = status
				p.CompletedAt = completedAt
				s.payments[id] = p
				err = nil

				return
			}
		}
	})

	return err
}

type outboxRepo struct{ u *UOW }

func (r outboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.u.do(func(s *Store) {
		s.nextOutboxID++
		msg.ID = s.nextOutboxID
		s.outbox = append(s.outbox, msg)
	})

	return nil
}

func (r outboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outbox.OutboxMessage, error) {
	now := time.Now()

	var out []outbox.OutboxMessage
	r.u.do(func(s *Store) {
		for _, msg := range s.outbox {
			if msg.NextRetryAt.After(now) || msg.RetryCount >= msg.MaxRetries {
				continue
			}
			out = append(out, msg)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].NextRetryAt.Before(out[j].NextRetryAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	return out, nil
}

func (r outboxRepo) MarkProcessed(_ context.Context, id int64) error {
	r.u.do(func(s *Store) {
		for i, msg := range s.outbox {
			if msg.ID == id {
				s.outbox = append(s.outbox[:i], s.outbox[i+1:]...)

				return
			}
		}
	})

	return nil
}

func (r outboxRepo) MarkFailed(_ context.Context, id int64, lastError string) error {
	r.u.do(func(s *Store) {
		for i, msg := range s.outbox {
			if msg.ID == id {
				msg.RetryCount++
				msg.LastError = lastError
				msg.NextRetryAt = time.Now().Add(time.Duration(1<<msg.RetryCount) * time.Second)
				msg.UpdatedAt = time.Now()
				s.outbox[i] = msg

				return
			}
		}
	})

	return nil
}
