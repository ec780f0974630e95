package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestRapidCallsCommitOnce(t *testing.T) {
	clock := NewManualClock()
	var r recorder
	d := New(time.Second, r.record, WithClock(clock))

	for _, v := range []string{"s", "st", "sta", "star", "start"} {
		d.Call(v)
		clock.Advance(200 * time.Millisecond)
	}
	if n := len(r.got()); n != 0 {
		t.Fatalf("committed %d times during the burst", n)
	}

	clock.Advance(800 * time.Millisecond)
	got := r.got()
	if len(got) != 1 || got[0] != "start" {
		t.Fatalf("calls = %v, want [start]", got)
	}

	clock.Advance(10 * time.Second)
	if n := len(r.got()); n != 1 {
		t.Errorf("calls after idle = %d, want 1", n)
	}
}

func TestSingleCallAfterIdle(t *testing.T) {
	clock := NewManualClock()
	var r recorder
	d := New(time.Second, r.record, WithClock(clock))

	d.Call("x")
	clock.Advance(999 * time.Millisecond)
	if len(r.got()) != 0 {
		t.Fatal("fired before the quiet period ended")
	}
	clock.Advance(time.Millisecond)
	if got := r.got(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("calls = %v, want [x]", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after fire")
	}
}

func TestSeparateBurstsCommitSeparately(t *testing.T) {
	clock := NewManualClock()
	var r recorder
	d := New(time.Second, r.record, WithClock(clock))

	d.Call("a")
	clock.Advance(1500 * time.Millisecond)
	d.Call("b")
	clock.Advance(1500 * time.Millisecond)

	got := r.got()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("calls = %v, want [a b]", got)
	}
}

func TestAtMostOneTimer(t *testing.T) {
	clock := NewManualClock()
	d := New(time.Second, func(string) {}, WithClock(clock))

	for i := 0; i < 5; i++ {
		d.Call("v")
	}
	if n := clock.Pending(); n != 1 {
		t.Errorf("pending timers = %d, want 1", n)
	}
}

func TestFlush(t *testing.T) {
	clock := NewManualClock()
	var r recorder
	d := New(time.Second, r.record, WithClock(clock))

	if d.Flush() {
		t.Error("Flush() with nothing pending = true")
	}

	d.Call("now")
	if !d.Flush() {
		t.Fatal("Flush() = false with a pending value")
	}
	if got := r.got(); len(got) != 1 || got[0] != "now" {
		t.Fatalf("calls = %v, want [now]", got)
	}

	clock.Advance(2 * time.Second)
	if n := len(r.got()); n != 1 {
		t.Errorf("timer fired after flush: %d calls", n)
	}
}

func TestCancel(t *testing.T) {
	clock := NewManualClock()
	var r recorder
	d := New(time.Second, r.record, WithClock(clock))

	d.Call("dropped")
	d.Cancel()
	clock.Advance(2 * time.Second)
	if n := len(r.got()); n != 0 {
		t.Errorf("calls = %d after Cancel, want 0", n)
	}
}

func TestStaleTimerIgnored(t *testing.T) {
	// A timer whose Stop came too late must not commit an old value.
	var fns []func()
	clock := clockFunc(func(_ time.Duration, f func()) Timer {
		fns = append(fns, f)
		return lateTimer{}
	})
	var r recorder
	d := New(time.Second, r.record, WithClock(clock))

	d.Call("old")
	d.Call("new")
	fns[0]()
	if n := len(r.got()); n != 0 {
		t.Fatalf("stale timer committed: %v", r.got())
	}
	fns[1]()
	if got := r.got(); len(got) != 1 || got[0] != "new" {
		t.Fatalf("calls = %v, want [new]", got)
	}
}

func TestDefaultWait(t *testing.T) {
	d := New(0, func(int) {})
	if d.Wait() != DefaultWait {
		t.Errorf("Wait() = %v, want %v", d.Wait(), DefaultWait)
	}
}

func TestRealClock(t *testing.T) {
	done := make(chan string, 1)
	d := New(10*time.Millisecond, func(v string) { done <- v })
	d.Call("a")
	d.Call("b")

	select {
	case v := <-done:
		if v != "b" {
			t.Errorf("value = %q, want %q", v, "b")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
}

type clockFunc func(time.Duration, func()) Timer

func (f clockFunc) AfterFunc(d time.Duration, fn func()) Timer { return f(d, fn) }

type lateTimer struct{}

func (lateTimer) Stop() bool { return false }
