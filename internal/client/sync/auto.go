package syncer

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultSyncInterval = 5 * time.Minute
	DefaultStartDelay   = 2 * time.Second
)

// StartAutoSync runs FullSync once after initialDelay and then every
// interval until ctx ends or stop is called. stop is idempotent and waits
// for the loop to exit. Non-positive durations take the defaults.
func (e *Engine) StartAutoSync(ctx context.Context, interval, initialDelay time.Duration) (stop func()) {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if initialDelay <= 0 {
		initialDelay = DefaultStartDelay
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		timer := time.NewTimer(initialDelay)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				e.runScheduled(ctx)
				timer.Reset(interval)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (e *Engine) runScheduled(ctx context.Context) {
	res, err := e.FullSync(ctx)
	if err != nil {
		e.log.Error(ctx, "scheduled sync failed", "error", err)
		return
	}
	e.log.Debug(ctx, "scheduled sync done",
		"pushed", res.Push.Success, "push_errors", res.Push.Errors,
		"pulled", res.Pull.Synced, "pull_errors", res.Pull.Errors)
}
