package models

import "time"

// DocumentStatus is the lifecycle state of a Document.
type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusReadonly DocumentStatus = "readonly"
)

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	return s == StatusDraft || s == StatusReadonly
}

// Document is the root aggregate; it owns its Clauses.
type Document struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (d *Document) TableName() string       { return TableDocuments }
func (d *Document) GetID() string           { return d.ID }
func (d *Document) GetUpdatedAt() time.Time { return d.UpdatedAt }
func (d *Document) Stamp(t time.Time)       { d.UpdatedAt = t }
