package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts successfully persisted orders.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "orders_created_total",
		Help:      "Number of orders created.",
	})

	// StockRejections counts order attempts rejected for insufficient stock.
	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "stock_rejections_total",
		Help:      "Number of order attempts rejected due to insufficient stock.",
	})

	// PaymentIntentsCreated counts intents created against the processor.
	PaymentIntentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "payment_intents_created_total",
		Help:      "Number of payment intents created.",
	})

	// PaymentsReconciled counts processor outcomes applied to payments,
	// labeled by terminal status.
	PaymentsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "payments_reconciled_total",
		Help:      "Number of payment outcomes reconciled, by status.",
	}, []string{"status"})

	// ProcessorRequestDuration observes the latency of external processor calls.
	ProcessorRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checkout",
		Name:      "processor_request_duration_seconds",
		Help:      "Latency of payment processor intent creation.",
		Buckets:   prometheus.DefBuckets,
	})
)
