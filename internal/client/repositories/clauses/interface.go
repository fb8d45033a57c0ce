// Package clauses stores the ordered sections of documents.
package clauses

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, c *models.Clause) error
	GetByID(ctx context.Context, id string) (*models.Clause, error)
	// GetByPosition looks a clause up by (document_id, order_index).
	GetByPosition(ctx context.Context, documentID string, orderIndex int) (*models.Clause, error)
	// ListByDocument returns clauses of a document ordered by order_index.
	ListByDocument(ctx context.Context, documentID string) ([]*models.Clause, error)
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
	UpdatedAt(ctx context.Context, id string) (time.Time, bool, error)
}
