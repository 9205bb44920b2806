// Package gesture turns raw pointer-down events into a debounced multi-click trigger.
package gesture

import "time"

// Defaults match a triple tap with at most one second between taps.
const (
	DefaultWindow    = 1000 * time.Millisecond
	DefaultThreshold = 3
)

// Result is the outcome of one pointer-down.
type Result struct {
	// Count is the number of taps in the current burst, including this one.
	Count int
	// Open is true on the single tap of a burst that reaches the threshold.
	Open bool
}

// Detector counts taps that arrive within Window of the previous tap.
// The open trigger fires once per burst; a gap of Window or more starts a new burst and re-arms it.
type Detector struct {
	window    time.Duration
	threshold int

	count int
	last  time.Time
	fired bool
}

// NewDetector returns a detector. Non-positive arguments fall back to the defaults.
func NewDetector(window time.Duration, threshold int) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Detector{window: window, threshold: threshold}
}

// PointerDown records a tap at now. Events must arrive in order.
func (d *Detector) PointerDown(now time.Time) Result {
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		d.count++
	} else {
		d.count = 1
		d.fired = false
	}
	d.last = now

	res := Result{Count: d.count}
	if d.count >= d.threshold && !d.fired {
		d.fired = true
		res.Open = true
	}
	return res
}

// Count returns the taps in the current burst.
func (d *Detector) Count() int {
	return d.count
}

// Reset forgets the current burst.
func (d *Detector) Reset() {
	d.count = 0
	d.last = time.Time{}
	d.fired = false
}
