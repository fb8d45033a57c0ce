// Package store keeps synced rows in PostgreSQL. Every synced table has the
// same shape: the row's own JSON as payload plus ownership columns.
//
// A row is visible to a caller when its user_id equals the caller's user, or
// when it is still unclaimed (user_id IS NULL) and tagged with the caller's
// guest id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/dmitrijs2005/docsync/internal/client/models"
)

// ErrUnknownTable is returned for table names outside the synced set.
var ErrUnknownTable = errors.New("unknown table")

// ErrStaleRow is returned by Upsert when the stored copy is newer than the
// incoming row, which is then not written.
var ErrStaleRow = errors.New("stored row is newer")

type Owner struct {
	GuestID string
	UserID  string
}

type Row struct {
	ID        string
	GuestID   string
	UserID    string
	UpdatedAt time.Time
	Payload   json.RawMessage
}

type Repository interface {
	// Upsert inserts or replaces the row. It returns ErrStaleRow and writes
	// nothing when the stored copy is newer.
	Upsert(ctx context.Context, table string, row Row) error
	Delete(ctx context.Context, table, id string, owner Owner) (int64, error)
	SelectSince(ctx context.Context, table string, since time.Time, owner Owner) ([]json.RawMessage, error)
	ClaimGuestRows(ctx context.Context, table, guestID, userID string) (int64, error)
	Ping(ctx context.Context) error
}

// ValidTable reports whether table is one of the synced tables.
func ValidTable(table string) bool {
	return slices.Contains(models.SyncedTables, table)
}
