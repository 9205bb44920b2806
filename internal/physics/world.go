package physics

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	// ErrUnknownBody is returned for handles the world never issued.
	ErrUnknownBody = errors.New("physics: unknown body")
	// ErrRetiredBody is returned for handles of bodies that were removed. Retired handles stay invalid forever.
	ErrRetiredBody = errors.New("physics: body retired")
)

// restingSpeed is the approach speed below which ground contacts do not bounce.
const restingSpeed = 0.5

// World owns a set of bodies and runs a simple 3D step: gravity, damping, integration,
// ground-plane contacts with restitution and friction, then AABB separation between bodies.
type World struct {
	Gravity           mgl32.Vec3
	HasGround         bool
	GroundY           float32
	GroundRestitution float32
	GroundFriction    float32

	bodies  []*Body
	byID    map[uuid.UUID]*Body
	retired map[uuid.UUID]struct{}
}

// NewWorld returns a world with gravity (0, -9.81, 0) and a ground plane at Y=0.
func NewWorld() *World {
	return &World{
		Gravity:           mgl32.Vec3{0, -9.81, 0},
		HasGround:         true,
		GroundRestitution: 0.1,
		GroundFriction:    0.7,
		byID:              make(map[uuid.UUID]*Body),
		retired:           make(map[uuid.UUID]struct{}),
	}
}

// SetGravity sets the gravity vector (e.g. (0, -9.81, 0) for down in -Y).
func (w *World) SetGravity(g mgl32.Vec3) {
	w.Gravity = g
}

// CreateBody registers a new body built from d and returns it.
// Order of creation is preserved for collision resolution.
func (w *World) CreateBody(d BodyDesc) *Body {
	b := newBody(d)
	w.bodies = append(w.bodies, b)
	w.byID[b.ID] = b
	return b
}

// RemoveBody retires the body. Its handle can never be used again.
func (w *World) RemoveBody(id uuid.UUID) error {
	if _, ok := w.retired[id]; ok {
		return fmt.Errorf("remove %s: %w", id, ErrRetiredBody)
	}
	b, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownBody)
	}
	delete(w.byID, id)
	w.retired[id] = struct{}{}
	for i, cand := range w.bodies {
		if cand == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	return nil
}

// Body returns the live body for id.
func (w *World) Body(id uuid.UUID) (*Body, error) {
	if b, ok := w.byID[id]; ok {
		return b, nil
	}
	if _, ok := w.retired[id]; ok {
		return nil, fmt.Errorf("body %s: %w", id, ErrRetiredBody)
	}
	return nil, fmt.Errorf("body %s: %w", id, ErrUnknownBody)
}

// Bodies returns the live bodies in creation order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// ApplyImpulse changes the body's velocity by impulse/mass, applied at its origin.
func (w *World) ApplyImpulse(id uuid.UUID, impulse mgl32.Vec3) error {
	b, err := w.Body(id)
	if err != nil {
		return err
	}
	b.applyImpulseAt(impulse, mgl32.Vec3{})
	return nil
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.Static {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Mul(dt))
		b.Velocity = b.Velocity.Mul(1 / (1 + dt*b.LinearDamping))
		b.AngularVelocity = b.AngularVelocity.Mul(1 / (1 + dt*b.AngularDamping))

		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		spin := mgl32.Quat{W: 0, V: b.AngularVelocity}
		b.Rotation = b.Rotation.Add(spin.Mul(b.Rotation).Scale(0.5 * dt)).Normalize()

		if w.HasGround {
			w.resolveGround(b)
		}
	}
	w.separateBodies()
}

// resolveGround pushes the body out of the ground plane and applies a contact impulse at the
// mean of the penetrating collider corners.
func (w *World) resolveGround(b *Body) {
	var deepest float32
	var contact mgl32.Vec3
	n := 0
	for _, c := range b.Colliders {
		for _, p := range c.corners() {
			wp := b.LocalToWorld(p)
			if wp[1] >= w.GroundY {
				continue
			}
			deepest = math32.Max(deepest, w.GroundY-wp[1])
			contact = contact.Add(wp)
			n++
		}
	}
	if n == 0 {
		return
	}
	b.Position[1] += deepest
	contact = contact.Mul(1 / float32(n))
	contact[1] += deepest

	normal := mgl32.Vec3{0, 1, 0}
	r := contact.Sub(b.Position)
	invM, invI := b.inverseMass(), b.inverseInertia()

	v := b.Velocity.Add(b.AngularVelocity.Cross(r))
	vn := v.Dot(normal)
	if vn >= 0 {
		return
	}
	e := (b.Restitution + w.GroundRestitution) / 2
	if -vn < restingSpeed {
		e = 0
	}
	rn := r.Cross(normal)
	jn := -(1 + e) * vn / (invM + invI*rn.Dot(rn))
	b.applyImpulseAt(normal.Mul(jn), r)

	v = b.Velocity.Add(b.AngularVelocity.Cross(r))
	vt := v.Sub(normal.Mul(v.Dot(normal)))
	speed := vt.Len()
	if speed < 1e-6 {
		return
	}
	t := vt.Mul(1 / speed)
	rt := r.Cross(t)
	jt := speed / (invM + invI*rt.Dot(rt))
	mu := (b.Friction + w.GroundFriction) / 2
	jt = math32.Min(jt, mu*jn)
	b.applyImpulseAt(t.Mul(-jt), r)
}

// separateBodies resolves overlapping pairs by pushing them apart along the axis of minimum penetration.
func (w *World) separateBodies() {
	for i := 0; i < len(w.bodies); i++ {
		bi := w.bodies[i]
		loI, hiI := bi.aabb()
		for j := i + 1; j < len(w.bodies); j++ {
			bj := w.bodies[j]
			if bi.Static && bj.Static {
				continue
			}
			loJ, hiJ := bj.aabb()
			depth, axis := penetrationAxis(loI, hiI, loJ, hiJ)
			if axis < 0 {
				continue
			}
			// Push the pair apart in the direction from i to j.
			if bj.Position[axis] < bi.Position[axis] {
				depth = -depth
			}
			var moveI, moveJ float32
			switch {
			case bi.Static:
				moveJ = depth
			case bj.Static:
				moveI = -depth
			default:
				total := bi.Mass + bj.Mass
				moveI = -depth * (bj.Mass / total)
				moveJ = depth * (bi.Mass / total)
			}
			bi.Position[axis] += moveI
			bj.Position[axis] += moveJ
			if !bi.Static {
				bi.Velocity[axis] = 0
			}
			if !bj.Static {
				bj.Velocity[axis] = 0
			}
			loI, hiI = bi.aabb()
		}
	}
}

// penetrationAxis returns the overlap amount and axis index (0=X, 1=Y, 2=Z) for the minimum penetration.
// If no overlap, returns (0, -1).
func penetrationAxis(loA, hiA, loB, hiB mgl32.Vec3) (depth float32, axis int) {
	axis = -1
	for i := 0; i < 3; i++ {
		overlap := math32.Min(hiA[i], hiB[i]) - math32.Max(loA[i], loB[i])
		if overlap <= 0 {
			return 0, -1
		}
		if axis < 0 || overlap < depth {
			depth, axis = overlap, i
		}
	}
	return depth, axis
}
