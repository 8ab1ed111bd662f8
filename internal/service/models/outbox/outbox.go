package outbox

import (
	"time"
)

// Event types published through the outbox.
const (
	EventOrderCreated     = "order.created"
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// DefaultMaxRetries bounds publish attempts per staged message.
const DefaultMaxRetries = 5

// OutboxMessage represents a domain event staged in the outbox table within
// the same transaction as the state change it describes.
type OutboxMessage struct {
	ID          int64
	QueueName   string
	RoutingKey  string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}

// NewMessage builds an outbox message for a domain event, routed by the event
// type and ready for immediate pickup.
func NewMessage(eventType string, payload []byte) OutboxMessage {
	now := time.Now()

	return OutboxMessage{
		QueueName:   eventType,
		RoutingKey:  eventType,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  DefaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}
}
