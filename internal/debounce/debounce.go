// Package debounce collapses bursts of calls into a single execution.
//
// Each Debouncer owns its timer, so independent call sites never cancel each
// other. Every caller of a burst shares one outcome: the result of running fn
// with the last argument of the burst.
//
//	d := debounce.New(saveDraft, 400*time.Millisecond)
//	res, err := d.Call(ctx, draft) // returns once the burst settles
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDelay applies when New is given a non-positive delay.
const DefaultDelay = 400 * time.Millisecond

// ErrStopped settles calls that were pending when Stop ran, and calls made
// after it.
var ErrStopped = errors.New("debouncer stopped")

// Pending is the shared outcome of one burst.
type Pending[R any] struct {
	done chan struct{}
	val  R
	err  error
}

func newPending[R any]() *Pending[R] {
	return &Pending[R]{done: make(chan struct{})}
}

func (p *Pending[R]) settle(v R, err error) {
	p.val, p.err = v, err
	close(p.done)
}

// Done is closed once the outcome is known.
func (p *Pending[R]) Done() <-chan struct{} { return p.done }

// Wait blocks until the burst settles or ctx ends.
func (p *Pending[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Debouncer delays fn until no new call has arrived for the configured delay.
type Debouncer[A, R any] struct {
	fn    func(context.Context, A) (R, error)
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	pending *Pending[R]
	arg     A
	ctx     context.Context
	stopped bool
	// bursts whose fn is running
	running map[*Pending[R]]struct{}
}

func New[A, R any](fn func(context.Context, A) (R, error), delay time.Duration) *Debouncer[A, R] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[A, R]{fn: fn, delay: delay, running: map[*Pending[R]]struct{}{}}
}

// Delay returns the effective quiet period.
func (d *Debouncer[A, R]) Delay() time.Duration { return d.delay }

// Go schedules a with a restarted timer and returns immediately. fn later
// runs with a context detached from ctx's cancellation, so a caller giving up
// does not abort the write the rest of the burst is waiting on.
func (d *Debouncer[A, R]) Go(ctx context.Context, a A) *Pending[R] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		p := newPending[R]()
		var zero R
		p.settle(zero, ErrStopped)
		return p
	}

	if d.pending == nil {
		d.pending = newPending[R]()
	}
	d.arg = a
	d.ctx = context.WithoutCancel(ctx)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	return d.pending
}

// Call is Go followed by Wait. When ctx ends first it returns ctx.Err(),
// and the execution still happens.
func (d *Debouncer[A, R]) Call(ctx context.Context, a A) (R, error) {
	return d.Go(ctx, a).Wait(ctx)
}

// take detaches the current burst and marks it running. Callers hold d.mu.
func (d *Debouncer[A, R]) take() (*Pending[R], A, context.Context) {
	p, a, ctx := d.pending, d.arg, d.ctx
	var zero A
	d.pending, d.arg, d.ctx = nil, zero, nil
	d.running[p] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	return p, a, ctx
}

func (d *Debouncer[A, R]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	p, a, ctx := d.take()
	d.mu.Unlock()

	d.run(p, a, ctx)
}

func (d *Debouncer[A, R]) run(p *Pending[R], a A, ctx context.Context) {
	v, err := d.fn(ctx, a)
	d.mu.Lock()
	delete(d.running, p)
	d.mu.Unlock()
	p.settle(v, err)
}

// Flush runs the pending burst now and also waits for bursts whose timer
// already fired. It returns the error of the burst it ran itself, nil when
// nothing was pending.
func (d *Debouncer[A, R]) Flush() error {
	d.mu.Lock()
	inflight := make([]*Pending[R], 0, len(d.running))
	for p := range d.running {
		inflight = append(inflight, p)
	}
	if d.pending == nil {
		d.mu.Unlock()
		for _, p := range inflight {
			<-p.done
		}
		return nil
	}
	p, a, ctx := d.take()
	d.mu.Unlock()

	d.run(p, a, ctx)
	for _, q := range inflight {
		<-q.done
	}
	return p.err
}

// Stop cancels the pending burst, settling its callers with ErrStopped.
// Later calls fail with ErrStopped too.
func (d *Debouncer[A, R]) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.pending == nil {
		d.mu.Unlock()
		return
	}
	p, _, _ := d.take()
	delete(d.running, p)
	d.mu.Unlock()

	var zero R
	p.settle(zero, ErrStopped)
}
