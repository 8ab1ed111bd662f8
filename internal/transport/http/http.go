package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/webstore-labs/checkout/internal/service/models/order"
	"github.com/webstore-labs/checkout/internal/service/models/product"
	"github.com/webstore-labs/checkout/internal/service/services/paymentsvc"
	createorder "github.com/webstore-labs/checkout/internal/transport/http/create_order"
	getorder "github.com/webstore-labs/checkout/internal/transport/http/get_order"
	listorders "github.com/webstore-labs/checkout/internal/transport/http/list_orders"
	"github.com/webstore-labs/checkout/internal/transport/http/payments"
	"github.com/webstore-labs/checkout/internal/transport/http/products"
	updatestatus "github.com/webstore-labs/checkout/internal/transport/http/update_status"
	"github.com/webstore-labs/checkout/pkg/http/middleware/trace"
	"github.com/webstore-labs/checkout/pkg/logger"
)

type orderService interface {
	CreateOrder(ctx context.Context, o order.Order) (*order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	ListOrdersByCustomer(ctx context.Context, email string) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
}

type paymentService interface {
	CreateIntent(ctx context.Context, orderID int64) (*paymentsvc.IntentResult, error)
	ConfirmPayment(ctx context.Context, intentID string) error
	FailPayment(ctx context.Context, intentID string) error
}

type productService interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	ListActiveProducts(ctx context.Context) ([]product.Product, error)
	ListAllProducts(ctx context.Context) ([]product.Product, error)
}

type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	orderSvc   orderService
	paymentSvc paymentService
	productSvc productService
}

func NewHTTPTransport(orderSvc orderService, paymentSvc paymentService, productSvc productService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:     server,
		router:     router,
		orderSvc:   orderSvc,
		paymentSvc: paymentSvc,
		productSvc: productSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Handle("/metrics", promhttp.Handler())

	h.router.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{id}", h.getProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/my-orders", h.listMyOrders)
			r.Get("/{id}", h.getOrder)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-intent", h.createIntent)
			r.Post("/confirm", h.confirmPayment)
			r.Post("/fail", h.failPayment)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.listAllOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Put("/orders/{id}/status", h.updateStatus)
			r.Get("/products", h.listAllProducts)
		})
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listMyOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListMyOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) listAllOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListAllOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.orderSvc)
}

func (h *HTTPTransport) createIntent(w http.ResponseWriter, r *http.Request) {
	payments.CreateIntent(w, r, h.paymentSvc)
}

func (h *HTTPTransport) confirmPayment(w http.ResponseWriter, r *http.Request) {
	payments.Confirm(w, r, h.paymentSvc)
}

func (h *HTTPTransport) failPayment(w http.ResponseWriter, r *http.Request) {
	payments.Fail(w, r, h.paymentSvc)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	products.ListProducts(w, r, h.productSvc)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	products.GetProduct(w, r, h.productSvc)
}

func (h *HTTPTransport) listAllProducts(w http.ResponseWriter, r *http.Request) {
	products.ListAllProducts(w, r, h.productSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
