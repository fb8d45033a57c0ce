package models

import (
	"slices"
	"time"
)

// FlagsID is the key of the singleton Flags row.
const FlagsID = "usage"

// Flags holds per-installation usage state, including the guest identity
// used to tag remote rows before sign-in.
type Flags struct {
	ID              string    `json:"id"`
	FreeAIUsed      bool      `json:"free_ai_used"`
	GuestID         string    `json:"guest_id"`
	FeatureUnlocked []string  `json:"feature_unlocked"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (f *Flags) TableName() string       { return TableFlags }
func (f *Flags) GetID() string           { return f.ID }
func (f *Flags) GetUpdatedAt() time.Time { return f.UpdatedAt }
func (f *Flags) Stamp(t time.Time)       { f.UpdatedAt = t }

// HasFeature reports whether name is unlocked.
func (f *Flags) HasFeature(name string) bool {
	return slices.Contains(f.FeatureUnlocked, name)
}

// Unlock adds name to FeatureUnlocked; it reports false when already present.
func (f *Flags) Unlock(name string) bool {
	if f.HasFeature(name) {
		return false
	}
	f.FeatureUnlocked = append(f.FeatureUnlocked, name)
	return true
}
