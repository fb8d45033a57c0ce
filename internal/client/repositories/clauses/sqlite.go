package clauses

import (
	"context"
	"database/sql"
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

const selectColumns = `id, document_id, order_index, title, body, hash, updated_at`

func scanClause(s interface{ Scan(...any) error }) (*models.Clause, error) {
	c := &models.Clause{}
	if err := s.Scan(&c.ID, &c.DocumentID, &c.OrderIndex, &c.Title, &c.Body, &c.Hash, dbx.TimeText{T: &c.UpdatedAt}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Clause) error {
	query := `INSERT INTO clauses (id, document_id, order_index, title, body, hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			order_index = excluded.order_index,
			title = excluded.title,
			body = excluded.body,
			hash = excluded.hash,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.DocumentID, c.OrderIndex, c.Title, c.Body, c.Hash, dbx.TimeArg(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert clause: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Clause, error) {
	c, err := scanClause(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clause: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Clause, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM clauses WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByPosition(ctx context.Context, documentID string, orderIndex int) (*models.Clause, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM clauses WHERE document_id = ? AND order_index = ?`, documentID, orderIndex)
}

func (r *SQLiteRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.Clause, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM clauses WHERE document_id = ? ORDER BY order_index ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select clauses: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Clause, 0)
	for rows.Next() {
		c, err := scanClause(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM clauses WHERE document_id = ? ORDER BY order_index ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select clause ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clauses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete clause: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clauses WHERE document_id = ?`, documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete clauses of document: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM clauses WHERE id = ?`, id).Scan(dbx.TimeText{T: &t})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get clause updated_at: %w", err)
	}
	return t, true, nil
}
