// Package aiedits stores the append-only audit trail of document edits.
package aiedits

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, e *models.AIEdit) error
	GetByID(ctx context.Context, id string) (*models.AIEdit, error)
	// ListByDocument returns edits of a document, oldest first.
	ListByDocument(ctx context.Context, documentID string) ([]*models.AIEdit, error)
	UpdatedAt(ctx context.Context, id string) (time.Time, bool, error)
}
