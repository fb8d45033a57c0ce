package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

// Repository describes CRUD and query operations for Document objects.
type Repository interface {
	// Upsert inserts a new document or overwrites the stored one by ID.
	Upsert(ctx context.Context, d *models.Document) error

	// GetByID returns the document or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// DeleteByID removes the row; it reports whether a row existed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// List returns all documents ordered by updated_at descending.
	List(ctx context.Context) ([]*models.Document, error)

	// ListByStatus returns documents in the given status, newest first.
	ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error)

	// UpdatedAt returns the stored freshness stamp and whether the row exists.
	UpdatedAt(ctx context.Context, id string) (time.Time, bool, error)
}
