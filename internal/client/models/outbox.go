package models

import (
	"encoding/json"
	"time"
)

// Op is the kind of remote operation queued in the outbox.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// OutboxEntry is a pending remote operation. Entries are replayed oldest
// first and removed only after the remote confirms them.
type OutboxEntry struct {
	ID        string          `json:"id"`
	Table     string          `json:"table"`
	Op        Op              `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DeletePayload is the outbox payload of an OpDelete entry.
type DeletePayload struct {
	ID string `json:"id"`
}

// RowHeader is the part of any synced row the merge needs to look at.
type RowHeader struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}
