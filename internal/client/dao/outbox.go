package dao

import (
	"context"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/outbox"
)

// OutboxSize reports how many operations wait for remote delivery.
func (d *DAO) OutboxSize(ctx context.Context) (int, error) {
	db, err := d.reader()
	if err != nil {
		return 0, err
	}
	n, err := outbox.NewSQLiteRepository(db).Count(ctx)
	return n, wrapStorage(err)
}

// PendingOutbox returns queued operations oldest first. limit <= 0 means all.
func (d *DAO) PendingOutbox(ctx context.Context, limit int) ([]*models.OutboxEntry, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	list, err := outbox.NewSQLiteRepository(db).ListOrdered(ctx, limit)
	return list, wrapStorage(err)
}

// AckOutbox drops an entry the remote has confirmed.
func (d *DAO) AckOutbox(ctx context.Context, id string) error {
	db, err := d.reader()
	if err != nil {
		return err
	}
	return wrapStorage(outbox.NewSQLiteRepository(db).DeleteByID(ctx, id))
}
