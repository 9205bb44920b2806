// Package rumble implements the short cosmetic shake shown after every tap on the box.
package rumble

import (
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for the shake window and strength.
const (
	DefaultDuration  = 200 * time.Millisecond
	DefaultIntensity = 0.1
)

// offsetScale converts intensity into world units of jitter per axis.
const offsetScale = 0.01

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules with time.AfterFunc.
var RealScheduler Scheduler = clockScheduler{}

// Effect is the rumble state: active for Duration after the most recent Trigger.
// Timer callbacks arrive on another goroutine, so all state is behind mu.
type Effect struct {
	duration  time.Duration
	intensity float32
	sched     Scheduler

	mu     sync.Mutex
	active bool
	timer  Timer
	gen    uint64
	closed bool
}

// New returns an inactive effect. A nil scheduler uses RealScheduler.
func New(duration time.Duration, intensity float32, sched Scheduler) *Effect {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if sched == nil {
		sched = RealScheduler
	}
	return &Effect{duration: duration, intensity: intensity, sched: sched}
}

// Trigger starts the rumble or restarts its window. A pending clear is cancelled first,
// and the generation check makes a clear that already fired for an older trigger a no-op.
func (e *Effect) Trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.active = true
	e.timer = e.sched.AfterFunc(e.duration, func() { e.clear(gen) })
}

func (e *Effect) clear(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.active = false
	e.timer = nil
}

// Active reports whether the rumble window is open.
func (e *Effect) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Offset returns the jitter to add to a visual position this tick, or zero when inactive.
// Each axis is sampled independently from [-0.5, 0.5) scaled by intensity.
func (e *Effect) Offset(rng *rand.Rand) mgl32.Vec3 {
	if !e.Active() {
		return mgl32.Vec3{}
	}
	s := e.intensity * offsetScale
	return mgl32.Vec3{
		(rng.Float32() - 0.5) * s,
		(rng.Float32() - 0.5) * s,
		(rng.Float32() - 0.5) * s,
	}
}

// Close cancels any pending clear and disables further triggers.
func (e *Effect) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.active = false
	e.closed = true
}
