package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/clauseindex"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/clauses"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// ErrInvalidStatus is returned for a document status outside draft/readonly.
var ErrInvalidStatus = errors.New("invalid document status")

// UpsertDocument stores doc and returns the persisted copy. An empty ID gets
// a new UUID, an empty status means draft, and a zero CreatedAt takes the
// freshness stamp. Calling it twice stores one row and enqueues two entries.
func (d *DAO) UpsertDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	out := *doc
	out.ID = newID(out.ID)
	if out.Status == "" {
		out.Status = models.StatusDraft
	}
	if !out.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, out.Status)
	}

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

// GetDocument returns (nil, nil) when id is unknown.
func (d *DAO) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	doc, err := documents.NewSQLiteRepository(db).GetByID(ctx, id)
	return doc, wrapStorage(err)
}

// ListDocuments returns documents newest first; an empty status lists all.
func (d *DAO) ListDocuments(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	repo := documents.NewSQLiteRepository(db)
	var list []*models.Document
	if status == "" {
		list, err = repo.List(ctx)
	} else {
		list, err = repo.ListByStatus(ctx, status)
	}
	return list, wrapStorage(err)
}

// DeleteDocument removes the document together with its clauses and their
// index rows. One delete entry is enqueued per clause and one for the
// document, clauses first.
func (d *DAO) DeleteDocument(ctx context.Context, id string) error {
	return d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		clauseRepo := clauses.NewSQLiteRepository(tx)
		ids, err := clauseRepo.ListIDsByDocument(ctx, id)
		if err != nil {
			return err
		}
		for _, cid := range ids {
			if err := d.deleteClause(ctx, tx, cid); err != nil {
				return err
			}
		}
		if _, err := documents.NewSQLiteRepository(tx).DeleteByID(ctx, id); err != nil {
			return err
		}
		return d.remove(ctx, tx, models.TableDocuments, id)
	})
}

func (d *DAO) deleteClause(ctx context.Context, tx dbx.DBTX, id string) error {
	if _, err := clauseindex.NewSQLiteRepository(tx).DeleteByClause(ctx, id); err != nil {
		return err
	}
	if _, err := clauses.NewSQLiteRepository(tx).DeleteByID(ctx, id); err != nil {
		return err
	}
	return d.remove(ctx, tx, models.TableClauses, id)
}
