package chatmessages

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

const selectColumns = `id, document_id, role, content, created_at, updated_at`

func scanMessage(s interface{ Scan(...any) error }) (*models.ChatMessage, error) {
	m := &models.ChatMessage{}
	var role string
	if err := s.Scan(&m.ID, &m.DocumentID, &role, &m.Content,
		dbx.TimeText{T: &m.CreatedAt}, dbx.TimeText{T: &m.UpdatedAt}); err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	return m, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, m *models.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, document_id, role, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			role = excluded.role,
			content = excluded.content,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, m.ID, m.DocumentID, string(m.Role), m.Content, dbx.TimeArg(m.CreatedAt), dbx.TimeArg(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert chat message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM chat_messages WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat message[%s]: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM chat_messages WHERE document_id = ? ORDER BY created_at ASC, id ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select chat messages: %w", err)
	}
	defer rows.Close()

	result := make([]*models.ChatMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM chat_messages WHERE id = ?`, id).Scan(dbx.TimeText{T: &t})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get chat message updated_at: %w", err)
	}
	return t, true, nil
}
