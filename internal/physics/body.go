package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Collider is a box attached to a body, centered at Offset in the body's local frame.
type Collider struct {
	HalfExtents mgl32.Vec3
	Offset      mgl32.Vec3
}

// corners returns the eight local-space corners of the collider.
func (c Collider) corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	i := 0
	for _, sx := range [2]float32{-1, 1} {
		for _, sy := range [2]float32{-1, 1} {
			for _, sz := range [2]float32{-1, 1} {
				out[i] = c.Offset.Add(mgl32.Vec3{sx * c.HalfExtents[0], sy * c.HalfExtents[1], sz * c.HalfExtents[2]})
				i++
			}
		}
	}
	return out
}

// BodyDesc describes a body to create. Zero Mass means 1; a zero Rotation means identity.
type BodyDesc struct {
	Position       mgl32.Vec3
	Rotation       mgl32.Quat
	Mass           float32
	Static         bool
	Restitution    float32
	Friction       float32
	LinearDamping  float32
	AngularDamping float32
	Colliders      []Collider
}

// Body is a 3D rigid body with position, orientation, linear and angular velocity, and box colliders.
// Static bodies do not move and are not affected by gravity or impulses.
type Body struct {
	ID              uuid.UUID
	Position        mgl32.Vec3
	Rotation        mgl32.Quat
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Mass            float32
	Static          bool
	Restitution     float32
	Friction        float32
	LinearDamping   float32
	AngularDamping  float32
	Colliders       []Collider
}

// Pose is a body's position and orientation at one tick.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func newBody(d BodyDesc) *Body {
	mass := d.Mass
	if mass <= 0 {
		mass = 1
	}
	rot := d.Rotation
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}
	colliders := make([]Collider, len(d.Colliders))
	copy(colliders, d.Colliders)
	if len(colliders) == 0 {
		colliders = append(colliders, Collider{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}})
	}
	return &Body{
		ID:             uuid.New(),
		Position:       d.Position,
		Rotation:       rot.Normalize(),
		Mass:           mass,
		Static:         d.Static,
		Restitution:    d.Restitution,
		Friction:       d.Friction,
		LinearDamping:  d.LinearDamping,
		AngularDamping: d.AngularDamping,
		Colliders:      colliders,
	}
}

// Pose returns the current position and orientation.
func (b *Body) Pose() Pose {
	return Pose{Position: b.Position, Rotation: b.Rotation}
}

// LocalToWorld maps a point in the body's frame to world space.
func (b *Body) LocalToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return b.Position.Add(b.Rotation.Rotate(p))
}

func (b *Body) inverseMass() float32 {
	if b.Static {
		return 0
	}
	return 1 / b.Mass
}

// inverseInertia treats the body as a solid box spanning all colliders and averages the three
// principal moments into one scalar.
func (b *Body) inverseInertia() float32 {
	if b.Static {
		return 0
	}
	var sum float32
	for _, c := range b.Colliders {
		for i := 0; i < 3; i++ {
			e := math32.Abs(c.Offset[i]) + c.HalfExtents[i]
			sum += e * e
		}
	}
	if sum == 0 {
		return 0
	}
	return 1 / (2 * b.Mass * sum / 9)
}

// applyImpulseAt changes linear velocity by J/m and angular velocity by I⁻¹(r × J), r measured from the body origin.
func (b *Body) applyImpulseAt(j, r mgl32.Vec3) {
	if b.Static {
		return
	}
	b.Velocity = b.Velocity.Add(j.Mul(b.inverseMass()))
	b.AngularVelocity = b.AngularVelocity.Add(r.Cross(j).Mul(b.inverseInertia()))
}

// aabb returns the world-space bounds of all colliders.
func (b *Body) aabb() (lo, hi mgl32.Vec3) {
	first := true
	for _, c := range b.Colliders {
		for _, p := range c.corners() {
			w := b.LocalToWorld(p)
			if first {
				lo, hi = w, w
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				lo[i] = math32.Min(lo[i], w[i])
				hi[i] = math32.Max(hi[i], w[i])
			}
		}
	}
	return lo, hi
}
