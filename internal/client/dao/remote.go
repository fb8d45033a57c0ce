package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/flags"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// ApplyRemote merges one pulled row into the local store. The row replaces
// the local one only when no local row exists or the remote updated_at is
// strictly newer. Merged rows are not mirrored to the outbox. The returned
// time is the remote row's updated_at, for checkpointing.
//
// The guest id in flags belongs to this installation and survives a merge.
func (d *DAO) ApplyRemote(ctx context.Context, table string, raw json.RawMessage) (applied bool, remoteAt time.Time, err error) {
	rec, err := decodeRecord(table, raw)
	if err != nil {
		return false, time.Time{}, err
	}
	remoteAt = rec.GetUpdatedAt()

	err = d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		local, ok, err := storedUpdatedAt(ctx, tx, table, rec.GetID())
		if err != nil {
			return err
		}
		var localAt *time.Time
		if ok {
			localAt = &local
		}
		if !models.RemoteWins(localAt, remoteAt) {
			return nil
		}

		if f, isFlags := rec.(*models.Flags); isFlags && ok {
			cur, err := flags.NewSQLiteRepository(tx).Get(ctx, f.ID)
			if err != nil {
				return err
			}
			if cur != nil && cur.GuestID != "" {
				f.GuestID = cur.GuestID
			}
		}

		if err := writeRecord(ctx, tx, rec); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, remoteAt, err
	}
	return applied, remoteAt, nil
}
