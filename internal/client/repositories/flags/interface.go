// Package flags stores the singleton usage flags row.
package flags

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

type Repository interface {
	// Get returns the row or (nil, nil) before defaults are initialized.
	Get(ctx context.Context, id string) (*models.Flags, error)
	Upsert(ctx context.Context, f *models.Flags) error
	// InsertIfAbsent inserts f unless a row with its id exists. It reports
	// whether the insert happened.
	InsertIfAbsent(ctx context.Context, f *models.Flags) (bool, error)
	UpdatedAt(ctx context.Context, id string) (time.Time, bool, error)
}
