package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/flags"
	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// ErrFlagsMissing means the store was never initialized with defaults.
var ErrFlagsMissing = fmt.Errorf("usage flags missing: %w", common.ErrNotFound)

func (d *DAO) GetFlags(ctx context.Context) (*models.Flags, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	f, err := flags.NewSQLiteRepository(db).Get(ctx, models.FlagsID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if f == nil {
		return nil, ErrFlagsMissing
	}
	return f, nil
}

// updateFlags applies change to the stored flags. When change reports no
// modification nothing is written.
func (d *DAO) updateFlags(ctx context.Context, change func(f *models.Flags) bool) (*models.Flags, error) {
	var out *models.Flags
	err := d.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		f, err := flags.NewSQLiteRepository(tx).Get(ctx, models.FlagsID)
		if err != nil {
			return wrapStorage(err)
		}
		if f == nil {
			return ErrFlagsMissing
		}
		out = f
		if !change(f) {
			return nil
		}
		return wrapStorage(d.save(ctx, tx, f))
	})
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, ErrFlagsMissing):
		return nil, err
	default:
		return nil, wrapStorage(err)
	}
}

// MarkFreeAIUsed records that the free AI allowance was consumed.
func (d *DAO) MarkFreeAIUsed(ctx context.Context) (*models.Flags, error) {
	return d.updateFlags(ctx, func(f *models.Flags) bool {
		if f.FreeAIUsed {
			return false
		}
		f.FreeAIUsed = true
		return true
	})
}

// UnlockFeature adds name to the unlocked set; unlocking twice is a no-op.
func (d *DAO) UnlockFeature(ctx context.Context, name string) (*models.Flags, error) {
	return d.updateFlags(ctx, func(f *models.Flags) bool {
		return f.Unlock(name)
	})
}
