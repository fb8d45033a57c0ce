package autocomplete

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

const selectColumns = `id, clause_id, suggestion, created_at, updated_at`

func scanEntry(s interface{ Scan(...any) error }) (*models.AutocompleteEntry, error) {
	a := &models.AutocompleteEntry{}
	var clauseID sql.NullString
	if err := s.Scan(&a.ID, &clauseID, &a.Suggestion, dbx.TimeText{T: &a.CreatedAt}, dbx.TimeText{T: &a.UpdatedAt}); err != nil {
		return nil, err
	}
	a.ClauseID = dbx.StringPtr(clauseID)
	return a, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, a *models.AutocompleteEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO autocomplete_cache (id, clause_id, suggestion, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			clause_id = excluded.clause_id,
			suggestion = excluded.suggestion,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, a.ID, dbx.NullString(a.ClauseID), a.Suggestion, dbx.TimeArg(a.CreatedAt), dbx.TimeArg(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert autocomplete entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.AutocompleteEntry, error) {
	a, err := scanEntry(r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM autocomplete_cache WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get autocomplete entry[%s]: %w", id, err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListByClause(ctx context.Context, clauseID *string) ([]*models.AutocompleteEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if clauseID == nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectColumns+` FROM autocomplete_cache WHERE clause_id IS NULL ORDER BY created_at DESC, id ASC`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectColumns+` FROM autocomplete_cache WHERE clause_id = ? ORDER BY created_at DESC, id ASC`, *clauseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select autocomplete entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AutocompleteEntry, 0)
	for rows.Next() {
		a, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM autocomplete_cache WHERE created_at < ? ORDER BY created_at ASC`, dbx.TimeArg(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to select stale autocomplete entries: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM autocomplete_cache WHERE created_at < ?`, dbx.TimeArg(cutoff)); err != nil {
		return nil, fmt.Errorf("failed to evict autocomplete entries: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM autocomplete_cache`); err != nil {
		return fmt.Errorf("failed to clear autocomplete cache: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM autocomplete_cache WHERE id = ?`, id).Scan(dbx.TimeText{T: &t})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get autocomplete updated_at: %w", err)
	}
	return t, true, nil
}
