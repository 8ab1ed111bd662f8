package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/webstore-labs/checkout/internal/dal/postgres"
	"github.com/webstore-labs/checkout/internal/dal/rabbitmq"
	outboxrepo "github.com/webstore-labs/checkout/internal/dal/repositories/outbox/postgres"
	"github.com/webstore-labs/checkout/internal/gateway"
	"github.com/webstore-labs/checkout/internal/gateway/simulator"
	"github.com/webstore-labs/checkout/internal/gateway/stripeapi"
	"github.com/webstore-labs/checkout/internal/otel"
	"github.com/webstore-labs/checkout/internal/service/services/ordersvc"
	"github.com/webstore-labs/checkout/internal/service/services/paymentsvc"
	"github.com/webstore-labs/checkout/internal/service/services/productsvc"
	httptransport "github.com/webstore-labs/checkout/internal/transport/http"
	outboxworker "github.com/webstore-labs/checkout/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	paymentSvc     *paymentsvc.PaymentService
	productSvc     *productsvc.ProductService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	paymentSvc := paymentsvc.MustNewPaymentService(
		paymentsvc.WithPostgresClient(postgresClient),
		paymentsvc.WithGateway(newGateway()),
	)

	productSvc := productsvc.MustNewProductService(
		productsvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, paymentSvc, productSvc)
	transport.RegisterRoutes()

	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		orderSvc:       orderSvc,
		paymentSvc:     paymentSvc,
		productSvc:     productSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   outboxWorker,
		otelController: otelController,
	}
}

func newGateway() gateway.PaymentGateway {
	if viper.GetString("payment.gateway") == "simulator" {
		return simulator.NewGateway(viper.GetInt("payment.simulator_failure_rate"))
	}

	return stripeapi.NewGateway()
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
