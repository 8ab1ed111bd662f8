package ioutboxrepo

import (
	"context"

	"github.com/webstore-labs/checkout/internal/service/models/outbox"
)

type IOutboxRepository interface {
	Insert(ctx context.Context, msg outbox.OutboxMessage) error
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
}
