package ordersvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstore-labs/checkout/internal/dal/uow/uowtest"
	"github.com/webstore-labs/checkout/internal/service/models/currency"
	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/orderitem"
	"github.com/webstore-labs/checkout/internal/service/models/outbox"
	"github.com/webstore-labs/checkout/internal/service/models/payment"
	"github.com/webstore-labs/checkout/internal/service/models/product"
)

func newTestService(store *uowtest.Store) *OrderService {
	return MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork {
		return store.NewUOW()
	}))
}

func seedProduct(store *uowtest.Store, name, price string, stock int, active bool) product.Product {
	return store.AddProduct(product.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        active,
	})
}

func newOrderRequest(items ...orderitem.OrderItem) order.Order {
	return order.Order{
		CustomerEmail:   "jane@example.com",
		CustomerPhone:   "+15550100",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingZipCode: "12345",
		ShippingCountry: "US",
		Items:           items,
	}
}

func TestCreateOrder(t *testing.T) {
	store := uowtest.NewStore()
	book := seedProduct(store, "Book", "19.99", 10, true)
	sticker := seedProduct(store, "Sticker", "0.10", 100, true)

	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: book.ID, Quantity: 3},
		orderitem.OrderItem{ProductID: sticker.ID, Quantity: 3},
	))
	require.NoError(t, err)

	// 3*19.99 + 3*0.10 must be exactly 60.27, not 60.269999....
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("60.27")),
		"total = %s", created.TotalAmount)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.Equal(t, currency.CurrencyUSD, created.Currency)

	require.Len(t, created.Items, 2)
	assert.Equal(t, "Book", created.Items[0].ProductName)
	assert.True(t, created.Items[0].PriceAtPurchase.Equal(book.Price))
	assert.Equal(t, created.ID, created.Items[0].OrderID)

	assert.Equal(t, 7, store.StockQuantity(book.ID))
	assert.Equal(t, 97, store.StockQuantity(sticker.ID))

	assert.Equal(t, []string{outbox.EventOrderCreated}, store.Events())
}

func TestCreateOrderPriceSnapshot(t *testing.T) {
	store := uowtest.NewStore()
	p := seedProduct(store, "Book", "19.99", 10, true)

	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)

	// A later catalog price change must not leak into the stored order.
	p.Price = decimal.RequireFromString("29.99")
	store.AddProduct(p)

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].PriceAtPurchase.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("19.99")))
}

func TestCreateOrderNoItems(t *testing.T) {
	svc := newTestService(uowtest.NewStore())

	_, err := svc.CreateOrder(context.Background(), newOrderRequest())
	assert.ErrorIs(t, err, order.ErrNoItems)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc := newTestService(uowtest.NewStore())

	_, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: 42, Quantity: 1},
	))
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	store := uowtest.NewStore()
	p := seedProduct(store, "Retired", "5.00", 10, false)

	svc := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: p.ID, Quantity: 1},
	))
	assert.ErrorIs(t, err, product.ErrProductInactive)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	store := uowtest.NewStore()
	book := seedProduct(store, "Book", "19.99", 10, true)
	rare := seedProduct(store, "Rare", "99.00", 1, true)

	svc := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: book.ID, Quantity: 2},
		orderitem.OrderItem{ProductID: rare.ID, Quantity: 5},
	))
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	// The first line's decrement must not survive the failed order.
	assert.Equal(t, 10, store.StockQuantity(book.ID))
	assert.Equal(t, 1, store.StockQuantity(rare.ID))

	orders, err := svc.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, store.Events())
}

func TestCreateOrderConcurrentOversell(t *testing.T) {
	store := uowtest.NewStore()
	p := seedProduct(store, "Limited", "50.00", 5, true)

	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), newOrderRequest(
				orderitem.OrderItem{ProductID: p.ID, Quantity: 3},
			))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, product.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, store.StockQuantity(p.ID))
}

func TestGetOrder(t *testing.T) {
	store := uowtest.NewStore()
	p := seedProduct(store, "Book", "19.99", 10, true)

	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: p.ID, Quantity: 2},
	))
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Nil(t, got.Payment)

	_, err = store.NewUOW().PaymentRepository().Insert(context.Background(), payment.Payment{
		OrderID:   created.ID,
		IntentID:  "pi_test",
		Amount:    created.TotalAmount,
		Currency:  created.Currency,
		Status:    payment.StatusPending,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	got, err = svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Payment)
	assert.Equal(t, "pi_test", got.Payment.IntentID)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := newTestService(uowtest.NewStore())

	_, err := svc.GetOrder(context.Background(), 42)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestListOrdersByCustomer(t *testing.T) {
	store := uowtest.NewStore()
	p := seedProduct(store, "Book", "19.99", 100, true)

	svc := newTestService(store)

	var janeIDs []int64
	for i := 0; i < 2; i++ {
		created, err := svc.CreateOrder(context.Background(), newOrderRequest(
			orderitem.OrderItem{ProductID: p.ID, Quantity: 1},
		))
		require.NoError(t, err)
		janeIDs = append(janeIDs, created.ID)
		time.Sleep(time.Millisecond)
	}

	other := newOrderRequest(orderitem.OrderItem{ProductID: p.ID, Quantity: 1})
	other.CustomerEmail = "bob@example.com"
	_, err := svc.CreateOrder(context.Background(), other)
	require.NoError(t, err)

	orders, err := svc.ListOrdersByCustomer(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Newest first.
	assert.Equal(t, janeIDs[1], orders[0].ID)
	assert.Equal(t, janeIDs[0], orders[1].ID)
	require.Len(t, orders[0].Items, 1)

	all, err := svc.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateStatus(t *testing.T) {
	store := uowtest.NewStore()
	p := seedProduct(store, "Book", "19.99", 10, true)

	svc := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), newOrderRequest(
		orderitem.OrderItem{ProductID: p.ID, Quantity: 1},
	))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)
	require.Len(t, updated.Items, 1)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := newTestService(uowtest.NewStore())

	_, err := svc.UpdateStatus(context.Background(), 42, order.StatusShipped)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
