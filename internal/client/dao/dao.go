package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/docsync/internal/client/store"
	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/dbx"
	"github.com/dmitrijs2005/docsync/internal/debounce"
	"github.com/dmitrijs2005/docsync/internal/logging"
	"github.com/dmitrijs2005/docsync/internal/timex"
)

// Store is the part of *store.Store the DAO needs.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	DB() *sql.DB
}

var _ Store = (*store.Store)(nil)

type DAO struct {
	store Store
	clock timex.Clock
	log   logging.Logger
	chat  *debounce.Debouncer[*models.ChatMessage, *models.ChatMessage]
}

// New builds a DAO. A nil clock means a monotonic wall clock; a non-positive
// chatDelay means debounce.DefaultDelay.
func New(st Store, clock timex.Clock, log logging.Logger, chatDelay time.Duration) *DAO {
	if clock == nil {
		clock = timex.NewMonotonicClock(nil)
	}
	d := &DAO{store: st, clock: clock, log: log.With("module", "dao")}
	d.chat = debounce.New(d.insertChatMessage, chatDelay)
	return d
}

// Close writes a pending chat burst and stops the debouncer.
func (d *DAO) Close() error {
	err := d.chat.Flush()
	d.chat.Stop()
	return err
}

func wrapStorage(err error) error {
	if err == nil || errors.Is(err, common.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStorage, err)
}

// tx runs fn in a store transaction and wraps failures as storage errors.
func (d *DAO) tx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return wrapStorage(d.store.WithTx(ctx, fn))
}

// reader returns the handle for plain reads.
func (d *DAO) reader() (dbx.DBTX, error) {
	db := d.store.DB()
	if db == nil {
		return nil, wrapStorage(store.ErrNotOpen)
	}
	return db, nil
}

func enqueue(ctx context.Context, tx dbx.DBTX, table string, op models.Op, payload any, at time.Time) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode outbox payload: %w", err)
	}
	return outbox.NewSQLiteRepository(tx).Enqueue(ctx, &models.OutboxEntry{
		ID:        uuid.NewString(),
		Table:     table,
		Op:        op,
		Payload:   b,
		UpdatedAt: at,
	})
}

// save stamps rec, writes it and mirrors it to the outbox.
func (d *DAO) save(ctx context.Context, tx dbx.DBTX, rec models.Record) error {
	return d.saveAt(ctx, tx, rec, d.clock.Now())
}

// saveAt stamps rec with now, or just past the stored copy's stamp when that
// is not older. A row pulled from a device with a fast clock can carry a
// stamp ahead of ours; the edit must still be the newest version.
func (d *DAO) saveAt(ctx context.Context, tx dbx.DBTX, rec models.Record, now time.Time) error {
	stored, ok, err := storedUpdatedAt(ctx, tx, rec.TableName(), rec.GetID())
	if err != nil {
		return err
	}
	if ok && !now.After(stored) {
		now = stored.Add(time.Nanosecond)
	}
	rec.Stamp(now)
	if err := writeRecord(ctx, tx, rec); err != nil {
		return err
	}
	return enqueue(ctx, tx, rec.TableName(), models.OpUpsert, rec, rec.GetUpdatedAt())
}

// remove enqueues a delete for id. The row itself is removed by the caller.
func (d *DAO) remove(ctx context.Context, tx dbx.DBTX, table, id string) error {
	return enqueue(ctx, tx, table, models.OpDelete, models.DeletePayload{ID: id}, d.clock.Now())
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
