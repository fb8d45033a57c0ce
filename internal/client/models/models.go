// Package models defines the client-side records persisted in the local
// store and exchanged with the remote store.
//
// JSON tags are the wire format: the outbox stores records as JSON and the
// remote store returns rows in the same shape.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Table names. They double as local SQLite table names and remote resource
// names.
const (
	TableDocuments    = "documents"
	TableClauses      = "clauses"
	TableClauseIndex  = "clause_index"
	TableAIEdits      = "ai_edits"
	TableChatMessages = "chat_messages"
	TableAutocomplete = "autocomplete_cache"
	TableFlags        = "flags"
	TableOutbox       = "outbox"
)

// SyncedTables are pushed and pulled by the sync engine, parents first.
var SyncedTables = []string{
	TableDocuments,
	TableClauses,
	TableAIEdits,
	TableChatMessages,
	TableAutocomplete,
	TableFlags,
}

// AllTables lists every local table.
var AllTables = []string{
	TableDocuments,
	TableClauses,
	TableClauseIndex,
	TableAIEdits,
	TableChatMessages,
	TableAutocomplete,
	TableFlags,
	TableOutbox,
}

var ErrUnknownTable = errors.New("unknown table")

// IsSynced reports whether table takes part in remote sync.
func IsSynced(table string) bool {
	for _, t := range SyncedTables {
		if t == table {
			return true
		}
	}
	return false
}

// Record is implemented by every synced entity.
type Record interface {
	TableName() string
	GetID() string
	GetUpdatedAt() time.Time
	// Stamp sets the freshness timestamp. Only the DAO calls it.
	Stamp(t time.Time)
}

// ValidateTable returns ErrUnknownTable for names outside SyncedTables.
func ValidateTable(table string) error {
	if !IsSynced(table) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}
