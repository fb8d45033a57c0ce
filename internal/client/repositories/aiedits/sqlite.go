package aiedits

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

const selectColumns = `id, document_id, clause_id, diff, applied_by, created_at, updated_at`

func scanEdit(s interface{ Scan(...any) error }) (*models.AIEdit, error) {
	e := &models.AIEdit{}
	var clauseID sql.NullString
	var appliedBy string
	if err := s.Scan(&e.ID, &e.DocumentID, &clauseID, &e.Diff, &appliedBy,
		dbx.TimeText{T: &e.CreatedAt}, dbx.TimeText{T: &e.UpdatedAt}); err != nil {
		return nil, err
	}
	e.ClauseID = dbx.StringPtr(clauseID)
	e.AppliedBy = models.AppliedBy(appliedBy)
	return e, nil
}

// Upsert writes the edit. Local code only appends; overwrites come from pull.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.AIEdit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_edits (id, document_id, clause_id, diff, applied_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			clause_id = excluded.clause_id,
			diff = excluded.diff,
			applied_by = excluded.applied_by,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, e.ID, e.DocumentID, dbx.NullString(e.ClauseID), e.Diff, string(e.AppliedBy),
		dbx.TimeArg(e.CreatedAt), dbx.TimeArg(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert ai edit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.AIEdit, error) {
	e, err := scanEdit(r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM ai_edits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ai edit[%s]: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.AIEdit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM ai_edits WHERE document_id = ? ORDER BY created_at ASC, id ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ai edits: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AIEdit, 0)
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM ai_edits WHERE id = ?`, id).Scan(dbx.TimeText{T: &t})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get ai edit updated_at: %w", err)
	}
	return t, true, nil
}
