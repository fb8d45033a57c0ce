// Package common contains shared constants and sentinel errors used across
// docsync components.
package common

const (
	// APIKeyHeaderName carries the project API key on every remote request.
	APIKeyHeaderName = "apikey"

	// GuestIDHeaderName carries the local guest identifier so the server can
	// scope anonymous reads and tag anonymous writes.
	GuestIDHeaderName = "X-Guest-Id"

	// AuthorizationHeaderName carries "Bearer <token>".
	AuthorizationHeaderName = "Authorization"
)
