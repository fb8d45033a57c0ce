package dao

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/autocomplete"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// PutAutocomplete caches a suggestion; a nil ClauseID makes it global.
func (d *DAO) PutAutocomplete(ctx context.Context, a *models.AutocompleteEntry) (*models.AutocompleteEntry, error) {
	out := *a
	out.ID = newID(out.ID)
	err := d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		now := d.clock.Now()
		if out.CreatedAt.IsZero() {
			out.CreatedAt = now
		}
		return d.saveAt(ctx, tx, &out, now)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DAO) ListAutocomplete(ctx context.Context, clauseID *string) ([]*models.AutocompleteEntry, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	list, err := autocomplete.NewSQLiteRepository(db).ListByClause(ctx, clauseID)
	return list, wrapStorage(err)
}

// EvictAutocomplete drops entries created before olderThan and mirrors each
// removal to the outbox. It returns the number of evicted entries.
func (d *DAO) EvictAutocomplete(ctx context.Context, olderThan time.Time) (int, error) {
	var n int
	err := d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		ids, err := autocomplete.NewSQLiteRepository(tx).DeleteOlderThan(ctx, olderThan)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := d.remove(ctx, tx, models.TableAutocomplete, id); err != nil {
				return err
			}
		}
		n = len(ids)
		return nil
	})
	return n, err
}
