package giftbox

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Hit reports whether a ray from origin along dir hits any node, and the distance to the nearest hit.
func (c *Controller) Hit(origin, dir mgl32.Vec3) (float32, bool) {
	best, hit := float32(0), false
	for _, n := range c.model.Nodes() {
		if t, ok := rayBox(origin, dir, n.Position, n.Rotation, n.HalfExtents); ok && (!hit || t < best) {
			best, hit = t, true
		}
	}
	return best, hit
}

// rayBox intersects a ray with an oriented box by moving the ray into the box frame (slab test).
func rayBox(origin, dir, center mgl32.Vec3, rot mgl32.Quat, half mgl32.Vec3) (float32, bool) {
	inv := rot.Normalize().Conjugate()
	o := inv.Rotate(origin.Sub(center))
	d := inv.Rotate(dir)

	tmin, tmax := float32(math32.Inf(-1)), float32(math32.Inf(1))
	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-8 {
			if o[i] < -half[i] || o[i] > half[i] {
				return 0, false
			}
			continue
		}
		t1 := (-half[i] - o[i]) / d[i]
		t2 := (half[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}
