package rumble

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chewxy/math32"
)

// manualScheduler fires callbacks only when Advance moves its clock past their deadline.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			t.f()
		}
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func TestTriggerClearsAfterDuration(t *testing.T) {
	s := &manualScheduler{}
	e := New(DefaultDuration, DefaultIntensity, s)

	if e.Active() {
		t.Fatal("new effect should be inactive")
	}
	e.Trigger()
	if !e.Active() {
		t.Fatal("Active() = false right after Trigger")
	}
	s.Advance(199 * time.Millisecond)
	if !e.Active() {
		t.Error("Active() = false at 199ms, want true")
	}
	s.Advance(1 * time.Millisecond)
	if e.Active() {
		t.Error("Active() = true at 200ms, want false")
	}
}

func TestRetriggerExtendsWindow(t *testing.T) {
	s := &manualScheduler{}
	e := New(DefaultDuration, DefaultIntensity, s)

	e.Trigger()
	s.Advance(100 * time.Millisecond)
	e.Trigger()
	if s.pending() != 1 {
		t.Errorf("pending timers = %d, want 1 after re-trigger", s.pending())
	}

	s.Advance(100 * time.Millisecond) // 200ms after the first trigger
	if !e.Active() {
		t.Error("first trigger's timer cleared the rumble early")
	}
	s.Advance(99 * time.Millisecond)
	if !e.Active() {
		t.Error("Active() = false 199ms after the second trigger")
	}
	s.Advance(1 * time.Millisecond)
	if e.Active() {
		t.Error("Active() = true 200ms after the second trigger")
	}
}

func TestStaleCallbackIsIgnored(t *testing.T) {
	s := &manualScheduler{}
	e := New(DefaultDuration, DefaultIntensity, s)
	e.Trigger()
	stale := s.timers[0]
	e.Trigger()

	// Simulate a timer that fired concurrently with Stop.
	stale.f()
	if !e.Active() {
		t.Error("stale clear turned the rumble off")
	}
}

func TestCloseCancelsTimer(t *testing.T) {
	s := &manualScheduler{}
	e := New(DefaultDuration, DefaultIntensity, s)
	e.Trigger()
	e.Close()

	if s.pending() != 0 {
		t.Errorf("pending timers = %d after Close, want 0", s.pending())
	}
	if e.Active() {
		t.Error("Active() = true after Close")
	}
	e.Trigger()
	if e.Active() || s.pending() != 0 {
		t.Error("Trigger after Close should do nothing")
	}
}

func TestOffset(t *testing.T) {
	s := &manualScheduler{}
	e := New(DefaultDuration, 0.5, s)
	rng := rand.New(rand.NewSource(1))

	if got := e.Offset(rng); got.Len() != 0 {
		t.Errorf("Offset() while inactive = %v, want zero", got)
	}
	e.Trigger()
	limit := float32(0.5 * offsetScale / 2)
	nonZero := false
	for i := 0; i < 100; i++ {
		off := e.Offset(rng)
		for axis := 0; axis < 3; axis++ {
			if math32.Abs(off[axis]) > limit {
				t.Fatalf("Offset()[%d] = %v, beyond ±%v", axis, off[axis], limit)
			}
			if off[axis] != 0 {
				nonZero = true
			}
		}
	}
	if !nonZero {
		t.Error("Offset() never jittered while active")
	}
}

func TestRealSchedulerClears(t *testing.T) {
	e := New(10*time.Millisecond, DefaultIntensity, nil)
	defer e.Close()
	e.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for e.Active() {
		if time.Now().After(deadline) {
			t.Fatal("rumble never cleared with the real scheduler")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
