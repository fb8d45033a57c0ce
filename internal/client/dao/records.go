package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/aiedits"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/autocomplete"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/chatmessages"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/clauses"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/flags"
	"github.com/dmitrijs2005/docsync/internal/dbx"
)

// ErrMalformedRow is returned for remote rows that do not decode into a record.
var ErrMalformedRow = errors.New("malformed row")

// newRecord returns an empty record for a synced table.
func newRecord(table string) (models.Record, error) {
	switch table {
	case models.TableDocuments:
		return &models.Document{}, nil
	case models.TableClauses:
		return &models.Clause{}, nil
	case models.TableAIEdits:
		return &models.AIEdit{}, nil
	case models.TableChatMessages:
		return &models.ChatMessage{}, nil
	case models.TableAutocomplete:
		return &models.AutocompleteEntry{}, nil
	case models.TableFlags:
		return &models.Flags{}, nil
	}
	return nil, models.ValidateTable(table)
}

func decodeRecord(table string, raw json.RawMessage) (models.Record, error) {
	rec, err := newRecord(table)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("%w: decode %s row: %v", ErrMalformedRow, table, err)
	}
	if rec.GetID() == "" {
		return nil, fmt.Errorf("%w: %s row without id", ErrMalformedRow, table)
	}
	return rec, nil
}

func writeRecord(ctx context.Context, tx dbx.DBTX, rec models.Record) error {
	switch r := rec.(type) {
	case *models.Document:
		return documents.NewSQLiteRepository(tx).Upsert(ctx, r)
	case *models.Clause:
		return clauses.NewSQLiteRepository(tx).Upsert(ctx, r)
	case *models.AIEdit:
		return aiedits.NewSQLiteRepository(tx).Upsert(ctx, r)
	case *models.ChatMessage:
		return chatmessages.NewSQLiteRepository(tx).Upsert(ctx, r)
	case *models.AutocompleteEntry:
		return autocomplete.NewSQLiteRepository(tx).Upsert(ctx, r)
	case *models.Flags:
		return flags.NewSQLiteRepository(tx).Upsert(ctx, r)
	}
	return fmt.Errorf("%w: %T", models.ErrUnknownTable, rec)
}

func storedUpdatedAt(ctx context.Context, tx dbx.DBTX, table, id string) (time.Time, bool, error) {
	switch table {
	case models.TableDocuments:
		return documents.NewSQLiteRepository(tx).UpdatedAt(ctx, id)
	case models.TableClauses:
		return clauses.NewSQLiteRepository(tx).UpdatedAt(ctx, id)
	case models.TableAIEdits:
		return aiedits.NewSQLiteRepository(tx).UpdatedAt(ctx, id)
	case models.TableChatMessages:
		return chatmessages.NewSQLiteRepository(tx).UpdatedAt(ctx, id)
	case models.TableAutocomplete:
		return autocomplete.NewSQLiteRepository(tx).UpdatedAt(ctx, id)
	case models.TableFlags:
		return flags.NewSQLiteRepository(tx).UpdatedAt(ctx, id)
	}
	return time.Time{}, false, models.ValidateTable(table)
}
