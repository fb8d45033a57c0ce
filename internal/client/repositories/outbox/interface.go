// Package outbox stores pending remote operations in FIFO order.
package outbox

import (
	"context"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	Enqueue(ctx context.Context, e *models.OutboxEntry) error
	// ListOrdered returns entries by updated_at, ties broken by insertion order.
	// A limit <= 0 means no limit.
	ListOrdered(ctx context.Context, limit int) ([]*models.OutboxEntry, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
