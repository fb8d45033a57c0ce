package models

import "time"

// AppliedBy tells who applied an AIEdit.
type AppliedBy string

const (
	AppliedByUser AppliedBy = "user"
	AppliedByAI   AppliedBy = "ai"
)

// AIEdit is an append-only audit record of a change to a document.
type AIEdit struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ClauseID   *string   `json:"clause_id"`
	Diff       string    `json:"diff"`
	AppliedBy  AppliedBy `json:"applied_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (e *AIEdit) TableName() string       { return TableAIEdits }
func (e *AIEdit) GetID() string           { return e.ID }
func (e *AIEdit) GetUpdatedAt() time.Time { return e.UpdatedAt }
func (e *AIEdit) Stamp(t time.Time)       { e.UpdatedAt = t }

// Role of a chat participant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of a document's conversation, ordered by CreatedAt.
type ChatMessage struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (m *ChatMessage) TableName() string       { return TableChatMessages }
func (m *ChatMessage) GetID() string           { return m.ID }
func (m *ChatMessage) GetUpdatedAt() time.Time { return m.UpdatedAt }
func (m *ChatMessage) Stamp(t time.Time)       { m.UpdatedAt = t }

// AutocompleteEntry is a cached suggestion. A nil ClauseID marks a global
// suggestion.
type AutocompleteEntry struct {
	ID         string    `json:"id"`
	ClauseID   *string   `json:"clause_id"`
	Suggestion string    `json:"suggestion"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *AutocompleteEntry) TableName() string       { return TableAutocomplete }
func (a *AutocompleteEntry) GetID() string           { return a.ID }
func (a *AutocompleteEntry) GetUpdatedAt() time.Time { return a.UpdatedAt }
func (a *AutocompleteEntry) Stamp(t time.Time)       { a.UpdatedAt = t }
