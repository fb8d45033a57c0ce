package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docsync/internal/dbx"
	"github.com/dmitrijs2005/docsync/internal/timex"
)

// SQLiteRepository keeps checkpoint slots in the metadata table. Times are
// stored in the fixed-width timex layout.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return string(value), true, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Time(ctx context.Context, key string) (time.Time, bool, error) {
	v, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := timex.Parse(v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt metadata[%s]: %w", key, err)
	}
	return t, true, nil
}

func (r *SQLiteRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	return r.set(ctx, key, timex.Format(t))
}

func (r *SQLiteRepository) String(ctx context.Context, key string) (string, error) {
	v, _, err := r.get(ctx, key)
	return v, err
}

func (r *SQLiteRepository) SetString(ctx context.Context, key, value string) error {
	return r.set(ctx, key, value)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata`)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
