// Package clauseindex stores derived span annotations over clauses. Rows are
// local only and can be rebuilt at any time.
package clauseindex

import (
	"context"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, ci *models.ClauseIndex) error
	ListByClause(ctx context.Context, clauseID string) ([]*models.ClauseIndex, error)
	DeleteByClause(ctx context.Context, clauseID string) (int64, error)
}
