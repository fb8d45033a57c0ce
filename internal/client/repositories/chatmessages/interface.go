// Package chatmessages stores per-document conversation turns.
package chatmessages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, m *models.ChatMessage) error
	GetByID(ctx context.Context, id string) (*models.ChatMessage, error)
	// ListByDocument returns the conversation in created_at order.
	ListByDocument(ctx context.Context, documentID string) ([]*models.ChatMessage, error)
	UpdatedAt(ctx context.Context, id string) (time.Time, bool, error)
}
