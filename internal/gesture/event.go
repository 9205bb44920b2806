package gesture

import "time"

// PointerEvent is one pointer-down delivered by the input layer.
type PointerEvent struct {
	Time    time.Time
	X, Y    float32
	stopped bool
}

// StopPropagation keeps later listeners from seeing the event.
func (e *PointerEvent) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether a listener consumed the event.
func (e *PointerEvent) Stopped() bool {
	return e.stopped
}

// Handler receives pointer events.
type Handler func(ev *PointerEvent)

// Dispatch calls handlers in order until one stops propagation. It returns true if the event was consumed.
func Dispatch(ev *PointerEvent, handlers ...Handler) bool {
	for _, h := range handlers {
		if h == nil {
			continue
		}
		h(ev)
		if ev.stopped {
			return true
		}
	}
	return false
}
