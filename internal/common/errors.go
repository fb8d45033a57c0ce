// Package common defines shared constants and sentinel errors used across
// client and server layers of docsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStorage wraps local store failures (open, migrate, commit).
	// It is fatal to the calling operation and never retried silently.
	ErrStorage = errors.New("storage failure")

	// Validation errors.
	ErrUnknownTable = errors.New("unknown table")
	ErrInvalidID    = errors.New("invalid id")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
