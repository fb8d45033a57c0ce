// Package autocomplete stores cached suggestions, scoped to a clause or global.
package autocomplete

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, a *models.AutocompleteEntry) error
	GetByID(ctx context.Context, id string) (*models.AutocompleteEntry, error)
	// ListByClause returns newest-first suggestions; a nil clauseID selects
	// global entries.
	ListByClause(ctx context.Context, clauseID *string) ([]*models.AutocompleteEntry, error)
	// DeleteOlderThan evicts entries created before cutoff and returns their ids.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	Clear(ctx context.Context) error
	UpdatedAt(ctx context.Context, id string) (time.Time, bool, error)
}
