// Package metadata is a small key/value slot table. The client uses it for
// sync checkpoints that must outlive a wipe of the local store.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// Time returns ok=false for a missing slot.
	Time(ctx context.Context, key string) (t time.Time, ok bool, err error)
	SetTime(ctx context.Context, key string, t time.Time) error
	// String returns "" for a missing slot.
	String(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}
