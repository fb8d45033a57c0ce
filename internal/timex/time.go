// Package timex holds the time helpers shared by the store, the DAO and the
// sync engine: the fixed-width ISO-8601 layout used for freshness columns,
// a monotonic freshness clock, and a config-friendly Duration.
package timex

import (
	"fmt"
	"sync"
	"time"
)

// Layout is the on-disk timestamp format. It is fixed width so that string
// comparison in SQL orders rows chronologically.
const Layout = "2006-01-02T15:04:05.000000000Z"

// Epoch is the default pull checkpoint.
var Epoch = time.Unix(0, 0).UTC()

var parseLayouts = []string{
	Layout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Format renders t in Layout, in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse accepts Layout, RFC 3339 and the shorter ISO-8601 forms. Values
// without a zone are taken as UTC.
func Parse(s string) (time.Time, error) {
	for _, l := range parseLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Clock hands out freshness stamps.
type Clock interface {
	Now() time.Time
}

// MonotonicClock never returns the same instant twice: when the wall clock
// has not advanced past the previous stamp it returns previous+1ns.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewMonotonicClock wraps now (time.Now when nil).
func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Round(0)
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}
