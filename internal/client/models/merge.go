package models

import "time"

// RemoteWins reports whether a remote row stamped remote replaces the local
// row stamped local. A missing local row (nil) always loses; equal stamps keep
// the local row.
func RemoteWins(local *time.Time, remote time.Time) bool {
	if local == nil {
		return true
	}
	return remote.After(*local)
}
