// Package openstate derives whether the gift box reads as opened from its orientation.
package openstate

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultThreshold is the |yaw| in degrees above which the box counts as opened.
const DefaultThreshold float32 = 80

// State is the semantic open/closed state reported every tick.
type State int

const (
	Intact State = iota
	Opened
)

func (s State) String() string {
	switch s {
	case Intact:
		return "intact"
	case Opened:
		return "opened"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state as its name for JSON and websocket payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "intact":
		*s = Intact
	case "opened":
		*s = Opened
	default:
		return fmt.Errorf("openstate: unknown state %q", b)
	}
	return nil
}

// YawDegrees returns the Y angle of q decomposed as XYZ Euler angles, in degrees.
// The XYZ decomposition keeps Y in [-90, 90].
func YawDegrees(q mgl32.Quat) float32 {
	q = q.Normalize()
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W
	m13 := 2 * (x*z + w*y)
	m13 = math32.Max(-1, math32.Min(1, m13))
	return mgl32.RadToDeg(math32.Asin(m13))
}

// Classify reports Opened when the yaw exceeds DefaultThreshold or the box has split.
func Classify(q mgl32.Quat, separated bool) State {
	return ClassifyAt(q, separated, DefaultThreshold)
}

// ClassifyAt is Classify with an explicit threshold in degrees.
func ClassifyAt(q mgl32.Quat, separated bool, threshold float32) State {
	if separated {
		return Opened
	}
	if math32.Abs(YawDegrees(q)) > threshold {
		return Opened
	}
	return Intact
}
