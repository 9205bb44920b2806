// Package snowfall simulates the field of flakes drifting down behind the gift box.
package snowfall

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultCount = 1000
	DefaultArea  = 20
	// DefaultFallSpeed is in world units per second.
	DefaultFallSpeed = 0.5
)

// Spin is the per-frame rotation in radians, sampled from [minSpin, minSpin+spinRange).
const (
	minSpin   = 0.005
	spinRange = 0.02
)

// FlakeSize is the side of the square each flake is drawn as.
const FlakeSize = 0.05

type Flake struct {
	Position mgl32.Vec3
	Angle    float32 // rotation about Y in radians
	Spin     float32
}

// Field is a cube of flakes centered on the origin. Flakes that fall out of the bottom
// reappear at the top with the same X and Z.
type Field struct {
	Flakes    []Flake
	Area      float32
	FallSpeed float32
}

// New scatters count flakes uniformly through a cube of side area.
func New(count int, area, fallSpeed float32, rng *rand.Rand) *Field {
	if area <= 0 {
		area = DefaultArea
	}
	if fallSpeed <= 0 {
		fallSpeed = DefaultFallSpeed
	}
	f := &Field{Flakes: make([]Flake, count), Area: area, FallSpeed: fallSpeed}
	for i := range f.Flakes {
		f.Flakes[i] = Flake{
			Position: mgl32.Vec3{
				(rng.Float32() - 0.5) * area,
				(rng.Float32() - 0.5) * area,
				(rng.Float32() - 0.5) * area,
			},
			Spin: rng.Float32()*spinRange + minSpin,
		}
	}
	return f
}

// Update advances every flake by dt seconds. Spin is applied once per call, like a per-frame tween.
func (f *Field) Update(dt float32) {
	half := f.Area / 2
	for i := range f.Flakes {
		fl := &f.Flakes[i]
		fl.Position[1] -= dt * f.FallSpeed
		fl.Angle += fl.Spin
		if fl.Position[1] < -half {
			fl.Position[1] = half
		}
	}
}

// Len returns the number of flakes.
func (f *Field) Len() int {
	return len(f.Flakes)
}
