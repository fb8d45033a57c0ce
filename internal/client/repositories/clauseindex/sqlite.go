package clauseindex

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

func (r *SQLiteRepository) Upsert(ctx context.Context, ci *models.ClauseIndex) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clause_index (id, clause_id, start_offset, end_offset, summary)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			clause_id = excluded.clause_id,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			summary = excluded.summary
	`, ci.ID, ci.ClauseID, ci.StartOffset, ci.EndOffset, ci.Summary)
	if err != nil {
		return fmt.Errorf("failed to upsert clause index: %w", err)
	}
	return nil
}

// ListByClause returns annotations of a clause ordered by start offset.
func (r *SQLiteRepository) ListByClause(ctx context.Context, clauseID string) ([]*models.ClauseIndex, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, clause_id, start_offset, end_offset, summary
		FROM clause_index WHERE clause_id = ? ORDER BY start_offset ASC, id ASC
	`, clauseID)
	if err != nil {
		return nil, fmt.Errorf("failed to select clause index: %w", err)
	}
	defer rows.Close()

	result := make([]*models.ClauseIndex, 0)
	for rows.Next() {
		ci := &models.ClauseIndex{}
		if err := rows.Scan(&ci.ID, &ci.ClauseID, &ci.StartOffset, &ci.EndOffset, &ci.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan clause index row: %w", err)
		}
		result = append(result, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByClause(ctx context.Context, clauseID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clause_index WHERE clause_id = ?`, clauseID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete clause index: %w", err)
	}
	return res.RowsAffected()
}
