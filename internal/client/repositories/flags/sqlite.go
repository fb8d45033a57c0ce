package flags

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func encodeFeatures(f []string) (string, error) {
	if f == nil {
		f = []string{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode feature_unlocked: %w", err)
	}
	return string(b), nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Flags, error) {
	f := &models.Flags{}
	var used int
	var features string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, free_ai_used, guest_id, feature_unlocked, updated_at FROM flags WHERE id = ?
	`, id).Scan(&f.ID, &used, &f.GuestID, &features, dbx.TimeText{T: &f.UpdatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flags[%s]: %w", id, err)
	}
	f.FreeAIUsed = used != 0
	if err := json.Unmarshal([]byte(features), &f.FeatureUnlocked); err != nil {
		return nil, fmt.Errorf("failed to decode feature_unlocked: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, f *models.Flags) error {
	features, err := encodeFeatures(f.FeatureUnlocked)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO flags (id, free_ai_used, guest_id, feature_unlocked, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			free_ai_used = excluded.free_ai_used,
			guest_id = excluded.guest_id,
			feature_unlocked = excluded.feature_unlocked,
			updated_at = excluded.updated_at
	`, f.ID, f.FreeAIUsed, f.GuestID, features, dbx.TimeArg(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert flags: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, f *models.Flags) (bool, error) {
	features, err := encodeFeatures(f.FeatureUnlocked)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO flags (id, free_ai_used, guest_id, feature_unlocked, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, f.ID, f.FreeAIUsed, f.GuestID, features, dbx.TimeArg(f.UpdatedAt))
	if err != nil {
		return false, fmt.Errorf("failed to insert default flags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM flags WHERE id = ?`, id).Scan(dbx.TimeText{T: &t})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get flags updated_at: %w", err)
	}
	return t, true, nil
}
