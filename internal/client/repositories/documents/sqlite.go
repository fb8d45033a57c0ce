package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, title, status, created_at, updated_at`

func scanDocument(s interface{ Scan(...any) error }) (*models.Document, error) {
	d := &models.Document{}
	var status string
	if err := s.Scan(&d.ID, &d.Title, &status, dbx.TimeText{T: &d.CreatedAt}, dbx.TimeText{T: &d.UpdatedAt}); err != nil {
		return nil, err
	}
	d.Status = models.DocumentStatus(status)
	return d, nil
}

// Upsert inserts or overwrites a document by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.Document) error {
	query := `INSERT INTO documents (id, title, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Title, string(d.Status), dbx.TimeArg(d.CreatedAt), dbx.TimeArg(d.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByID returns a document by id, or (nil, nil) when absent.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document[%s]: %w", id, err)
	}
	return d, nil
}

// DeleteByID removes a document row.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Document, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM documents ORDER BY updated_at DESC`)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM documents WHERE status = ? ORDER BY updated_at DESC`, string(status))
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatedAt reads only the freshness column.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM documents WHERE id = ?`, id).Scan(dbx.TimeText{T: &t})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get document updated_at: %w", err)
	}
	return t, true, nil
}
