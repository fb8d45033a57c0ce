package dao

import (
	"context"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/clauseindex"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/clauses"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// UpsertClauses stores every clause in one transaction, each with its own
// stamp and outbox entry. Missing hashes are computed from title and body.
func (d *DAO) UpsertClauses(ctx context.Context, list []*models.Clause) ([]*models.Clause, error) {
	out := make([]*models.Clause, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	for _, c := range list {
		cp := *c
		cp.ID = newID(cp.ID)
		if cp.Hash == "" {
			cp.Hash = models.HashClause(cp.Title, cp.Body)
		}
		out = append(out, &cp)
	}

	err := d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		for _, c := range out {
			if err := d.save(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetClausesByDocument returns the clauses ordered by order_index; an empty
// slice when there are none.
func (d *DAO) GetClausesByDocument(ctx context.Context, documentID string) ([]*models.Clause, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	list, err := clauses.NewSQLiteRepository(db).ListByDocument(ctx, documentID)
	return list, wrapStorage(err)
}

// GetClause returns (nil, nil) when id is unknown.
func (d *DAO) GetClause(ctx context.Context, id string) (*models.Clause, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	c, err := clauses.NewSQLiteRepository(db).GetByID(ctx, id)
	return c, wrapStorage(err)
}

// DeleteClause removes a clause and its index rows.
func (d *DAO) DeleteClause(ctx context.Context, id string) error {
	return d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return d.deleteClause(ctx, tx, id)
	})
}

// ReplaceClauseIndex swaps the derived annotations of a clause. It writes
// no outbox entries.
func (d *DAO) ReplaceClauseIndex(ctx context.Context, clauseID string, items []*models.ClauseIndex) error {
	return d.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := clauseindex.NewSQLiteRepository(tx)
		if _, err := repo.DeleteByClause(ctx, clauseID); err != nil {
			return err
		}
		for _, it := range items {
			cp := *it
			cp.ID = newID(cp.ID)
			cp.ClauseID = clauseID
			if err := repo.Upsert(ctx, &cp); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DAO) ListClauseIndex(ctx context.Context, clauseID string) ([]*models.ClauseIndex, error) {
	db, err := d.reader()
	if err != nil {
		return nil, err
	}
	list, err := clauseindex.NewSQLiteRepository(db).ListByClause(ctx, clauseID)
	return list, wrapStorage(err)
}
