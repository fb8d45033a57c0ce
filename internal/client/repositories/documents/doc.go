// Package documents provides the client-side persistence layer for documents.
//
// # Overview
//
// The package defines a Repository interface for CRUD and query operations on
// Document models (see internal/client/models). A SQLite-backed implementation
// (SQLiteRepository) persists data using a dbx.DBTX (either *sql.DB or *sql.Tx),
// so the DAO can compose it with other repositories inside one transaction.
//
// Repositories never stamp timestamps or touch the outbox; that is the DAO's
// job. They store exactly what they are given.
//
// Typical Usage
//
//	repo := documents.NewSQLiteRepository(tx)
//	_ = repo.Upsert(ctx, doc)
//	d, _ := repo.GetByID(ctx, id) // nil, nil when absent
//	drafts, _ := repo.ListByStatus(ctx, models.StatusDraft)
package documents
