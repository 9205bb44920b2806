package giftbox

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestRayBox(t *testing.T) {
	half := mgl32.Vec3{0.5, 0.5, 0.5}
	turned := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	tests := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
		rot    mgl32.Quat
		want   float32
		hit    bool
	}{
		{"straight on", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, mgl32.QuatIdent(), 4.5, true},
		{"miss above", mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 0, -1}, mgl32.QuatIdent(), 0, false},
		{"pointing away", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}, mgl32.QuatIdent(), 0, false},
		{"inside", mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.QuatIdent(), 0, true},
		{"rotated corner faces the ray", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, turned, 5 - 0.5*math32.Sqrt2, true},
		{"off-center ray grazes the rotated corner", mgl32.Vec3{0.6, 0, 5}, mgl32.Vec3{0, 0, -1}, turned, 5 - (0.5*math32.Sqrt2 - 0.6), true},
		{"outside the rotated corner", mgl32.Vec3{0.72, 0, 5}, mgl32.Vec3{0, 0, -1}, turned, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rayBox(tt.origin, tt.dir, mgl32.Vec3{}, tt.rot, half)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math32.Abs(got-tt.want) > 1e-4 {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestControllerHit(t *testing.T) {
	f := newFixture(t, nil)
	b := f.boxBody(t)
	b.Position = mgl32.Vec3{0, 1, 0}
	f.ctrl.Tick()

	if _, ok := f.ctrl.Hit(mgl32.Vec3{0, 1.3, 5}, mgl32.Vec3{0, 0, -1}); !ok {
		t.Error("ray through the base missed")
	}
	if _, ok := f.ctrl.Hit(mgl32.Vec3{0, 3, 5}, mgl32.Vec3{0, 0, -1}); ok {
		t.Error("ray above the box hit")
	}
}
