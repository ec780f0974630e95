// Package debounce delays a callback until its input has been quiet for a
// fixed interval.
//
// Every [Debouncer.Call] cancels the pending timer and starts a new one, so a
// burst of calls produces exactly one invocation carrying the last value.
// At most one timer is in flight per Debouncer.
//
//	d := debounce.New(time.Second, func(label string) {
//	    store.UpdateShapeData(id, diagram.Data{"label": label})
//	})
//	d.Call("s")
//	d.Call("st")
//	d.Call("start") // one commit of "start", 1s after this call
//
// Callbacks run on the timer's goroutine. Nothing is reported back to the
// caller; a commit is fire-and-forget.
package debounce

import (
	"sync"
	"time"
)

// DefaultWait is the quiet period used for label edits.
const DefaultWait = time.Second

// Timer is the part of [time.Timer] a Debouncer uses.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. [RealClock] uses [time.AfterFunc].
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Option configures a Debouncer.
type Option func(*config)

type config struct {
	clock Clock
}

// WithClock replaces the wall clock, typically with a [ManualClock] in tests.
func WithClock(c Clock) Option {
	return func(cfg *config) { cfg.clock = c }
}

// Debouncer coalesces calls and invokes fn with the last value once the input
// has been quiet for the configured wait. It is safe for concurrent use.
type Debouncer[T any] struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      func(T)
	clock   Clock
	timer   Timer
	value   T
	pending bool
	gen     uint64
}

// New returns a Debouncer that calls fn after wait of quiet. A non-positive
// wait selects [DefaultWait].
func New[T any](wait time.Duration, fn func(T), opts ...Option) *Debouncer[T] {
	cfg := config{clock: RealClock}
	for _, opt := range opts {
		opt(&cfg)
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer[T]{wait: wait, fn: fn, clock: cfg.clock}
}

// Call records v and restarts the quiet period.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.value = v
	d.pending = true
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
}

// fire runs fn if gen still names the latest scheduled call. A timer that was
// stopped too late to prevent its callback is ignored here.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Flush invokes fn immediately with the pending value, if any, and cancels
// the timer. It reports whether a value was flushed.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.value
	d.pending = false
	d.gen++
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Cancel drops the pending value without invoking fn.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.gen++
}

// Pending reports whether a call is waiting for its quiet period to end.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Wait returns the quiet period.
func (d *Debouncer[T]) Wait() time.Duration { return d.wait }
