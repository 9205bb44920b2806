// Package orbit keeps a camera on a sphere around a target, rotating only, like a turntable.
package orbit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Default polar limits: the camera stays between 45° above the horizon and the horizon itself.
const (
	DefaultMinPolar = math32.Pi / 4
	DefaultMaxPolar = math32.Pi / 2
)

// Orbit is a camera position in spherical coordinates. Polar is measured from +Y.
type Orbit struct {
	Target   mgl32.Vec3
	Radius   float32
	Azimuth  float32
	Polar    float32
	MinPolar float32
	MaxPolar float32
	// Speed is radians per pixel of drag.
	Speed float32
}

// FromPosition builds an orbit that starts at pos looking at target, with the default polar limits.
func FromPosition(pos, target mgl32.Vec3) *Orbit {
	d := pos.Sub(target)
	r := d.Len()
	o := &Orbit{Target: target, Radius: r, MinPolar: DefaultMinPolar, MaxPolar: DefaultMaxPolar, Speed: 0.005}
	if r > 0 {
		o.Polar = math32.Acos(mgl32.Clamp(d[1]/r, -1, 1))
		o.Azimuth = math32.Atan2(d[0], d[2])
	}
	o.clamp()
	return o
}

// Drag rotates by a pointer movement in pixels. Dragging right turns the view around the target;
// dragging down raises the camera.
func (o *Orbit) Drag(dx, dy float32) {
	o.Azimuth -= dx * o.Speed
	o.Polar -= dy * o.Speed
	o.clamp()
}

func (o *Orbit) clamp() {
	o.Polar = mgl32.Clamp(o.Polar, o.MinPolar, o.MaxPolar)
	o.Azimuth = math32.Mod(o.Azimuth, 2*math32.Pi)
}

// Position returns the camera position.
func (o *Orbit) Position() mgl32.Vec3 {
	sp, cp := math32.Sincos(o.Polar)
	sa, ca := math32.Sincos(o.Azimuth)
	return o.Target.Add(mgl32.Vec3{o.Radius * sp * sa, o.Radius * cp, o.Radius * sp * ca})
}
