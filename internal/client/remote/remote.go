// Package remote defines the contract between the sync engine and the remote
// store. Implementations live in sub-packages (rest).
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrUnavailable covers transport failures and 5xx answers.
	ErrUnavailable = errors.New("remote unavailable")
	// ErrUnauthorized covers rejected credentials.
	ErrUnauthorized = errors.New("remote unauthorized")
	// ErrConflict means the remote already holds a newer version of the row.
	ErrConflict = errors.New("remote holds a newer version")
	// ErrRemote is any other rejection by the remote store.
	ErrRemote = errors.New("remote error")
)

// Owner tags pushed rows and scopes selects. UserID is empty for guests.
type Owner struct {
	GuestID string
	UserID  string
}

// Remote is a per-table row store with upsert-by-id, delete-by-id,
// freshness-ordered select, guest claiming and identity resolution.
type Remote interface {
	Upsert(ctx context.Context, table string, row json.RawMessage, owner Owner) error
	Delete(ctx context.Context, table, id string, owner Owner) error
	// SelectSince returns rows with updated_at > since in ascending order.
	SelectSince(ctx context.Context, table string, since time.Time, owner Owner) ([]json.RawMessage, error)
	// ClaimGuestRows sets user_id on rows with guest_id = guestID and no user.
	ClaimGuestRows(ctx context.Context, table, guestID, userID string) (int64, error)
	// CurrentUser returns the authenticated principal, "" when anonymous.
	CurrentUser(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}
