package dao

import (
	"context"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/aiedits"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/chatmessages"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// AddAIEdit appends an audit record. A zero CreatedAt takes the stamp.
func (d *DAO) AddAIEdit(ctx context.Context, e *models.AIEdit) (*models.AIEdit, error) {
	out := *e
	out.ID = newID(out.ID)
	err := d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		now := d.clock.Now()
		if out.CreatedAt.IsZero() {
			out.CreatedAt = now
		}
		return d.saveAt(ctx, tx, &out, now)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DAO) ListAIEdits(ctx context.Context, documentID string) ([]*models.AIEdit, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	list, err := aiedits.NewSQLiteRepository(db).ListByDocument(ctx, documentID)
	return list, wrapStorage(err)
}

// AddChatMessage queues msg behind the chat debouncer and waits for the
// burst to settle. Callers superseded within the window receive the outcome
// of the last message of the burst.
func (d *DAO) AddChatMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	cp := *msg
	cp.ID = newID(cp.ID)
	return d.chat.Call(ctx, &cp)
}

// FlushChat writes a pending chat burst immediately.
func (d *DAO) FlushChat(ctx context.Context) error {
	return d.chat.Flush()
}

func (d *DAO) insertChatMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	err := d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		now := d.clock.Now()
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		return d.saveAt(ctx, tx, msg, now)
	})
	if err != nil {
		d.log.Error(ctx, "chat message write failed", "document_id", msg.DocumentID, "error", err)
		return nil, err
	}
	return msg, nil
}

func (d *DAO) ListChatMessages(ctx context.Context, documentID string) ([]*models.ChatMessage, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	list, err := chatmessages.NewSQLiteRepository(db).ListByDocument(ctx, documentID)
	return list, wrapStorage(err)
}
