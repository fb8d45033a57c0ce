package models

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Clause is an ordered section of a Document. OrderIndex is dense and unique
// per document; callers maintain that.
type Clause struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	OrderIndex int       `json:"order_index"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Hash       string    `json:"hash"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Clause) TableName() string       { return TableClauses }
func (c *Clause) GetID() string           { return c.ID }
func (c *Clause) GetUpdatedAt() time.Time { return c.UpdatedAt }
func (c *Clause) Stamp(t time.Time)       { c.UpdatedAt = t }

// HashClause returns the hex BLAKE2b-256 fingerprint of a clause's content.
func HashClause(title, body string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

// ClauseIndex is a derived annotation over a span of a clause. It is a
// rebuildable cache and is never synced.
type ClauseIndex struct {
	ID          string `json:"id"`
	ClauseID    string `json:"clause_id"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Summary     string `json:"summary"`
}
