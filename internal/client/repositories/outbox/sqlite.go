package outbox

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, e *models.OutboxEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox (id, table_name, op, payload, updated_at) VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.Table, string(e.Op), string(e.Payload), dbx.TimeArg(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListOrdered(ctx context.Context, limit int) ([]*models.OutboxEntry, error) {
	query := `SELECT id, table_name, op, payload, updated_at FROM outbox ORDER BY updated_at ASC, seq ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox: %w", err)
	}
	defer rows.Close()

	result := make([]*models.OutboxEntry, 0)
	for rows.Next() {
		e := &models.OutboxEntry{}
		var op, payload string
		if err := rows.Scan(&e.ID, &e.Table, &op, &payload, dbx.TimeText{T: &e.UpdatedAt}); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		e.Op = models.Op(op)
		e.Payload = []byte(payload)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete outbox entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outbox: %w", err)
	}
	return n, nil
}
