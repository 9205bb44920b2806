// Package scene draws the 3D world: skybox, snowy ground, the gift box nodes and the snowfall,
// seen from a camera that orbits the box.
package scene

import (
	"gift-box/internal/giftbox"
	"gift-box/internal/orbit"
	"gift-box/internal/primitives"
	"gift-box/internal/snowfall"
	"gift-box/internal/ui"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fovY       = 50
	groundSize = 20
	// goldMix tints every box node a fifth of the way toward gold.
	goldMix = 0.2
)

var (
	cameraStart = mgl32.Vec3{3, 3, 3}
	lightPos    = [3]float32{5, 5, 5}

	groundColor = rl.NewColor(235, 240, 248, 255)
	flakeColor  = rl.NewColor(255, 255, 255, 204)

	// flakeTilt stands the XZ plane mesh upright.
	flakeTilt = mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{1, 0, 0})
)

// Scene owns the camera and the draw pass. Drawing state (meshes, shaders) lives in the registry.
type Scene struct {
	Camera  rl.Camera3D
	orbit   *orbit.Orbit
	prims   *primitives.Registry
	sky     *skybox
	groundY float32

	colors map[string]rl.Color
}

// New returns a scene with the camera at (3,3,3) looking at the origin.
// groundY is the height the ground plane is drawn at.
func New(prims *primitives.Registry, groundY float32) *Scene {
	s := &Scene{
		orbit:   orbit.FromPosition(cameraStart, mgl32.Vec3{}),
		prims:   prims,
		sky:     findSkybox(skyboxPaths),
		groundY: groundY,
		colors:  make(map[string]rl.Color),
	}
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = fovY
	s.Camera.Projection = rl.CameraPerspective
	s.syncCamera()
	return s
}

func (s *Scene) syncCamera() {
	p := s.orbit.Position()
	t := s.orbit.Target
	s.Camera.Position = rl.NewVector3(p[0], p[1], p[2])
	s.Camera.Target = rl.NewVector3(t[0], t[1], t[2])
}

// Update rotates the camera while the left mouse button is held. There is no pan or zoom.
func (s *Scene) Update() {
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			s.orbit.Drag(d.X, d.Y)
			s.syncCamera()
		}
	}
}

// Ray returns the world ray under a screen point.
func (s *Scene) Ray(screen rl.Vector2) (origin, dir mgl32.Vec3) {
	r := rl.GetScreenToWorldRay(screen, s.Camera)
	return mgl32.Vec3{r.Position.X, r.Position.Y, r.Position.Z}, mgl32.Vec3{r.Direction.X, r.Direction.Y, r.Direction.Z}
}

// Draw renders the world. snow may be nil before the box opens.
func (s *Scene) Draw(nodes []*giftbox.Node, snow *snowfall.Field) {
	s.prims.SetView([3]float32{s.Camera.Position.X, s.Camera.Position.Y, s.Camera.Position.Z}, lightPos)

	rl.BeginMode3D(s.Camera)
	if s.sky != nil {
		s.sky.draw(s.Camera.Position)
	}
	s.prims.Draw(primitives.Plane, primitives.Instance{
		Position: mgl32.Vec3{0, s.groundY, 0},
		Rotation: mgl32.QuatIdent(),
		Size:     mgl32.Vec3{groundSize, 1, groundSize},
		Color:    groundColor,
	})
	for _, n := range nodes {
		s.prims.Draw(primitives.Cube, primitives.Instance{
			Position: n.Position,
			Rotation: n.Rotation,
			Size:     n.HalfExtents.Mul(2),
			Color:    s.color(n.Color),
			GoldMix:  goldMix,
		})
	}
	if snow != nil {
		// flakes are single quads seen from both sides
		rl.DisableBackfaceCulling()
		for i := range snow.Flakes {
			fl := &snow.Flakes[i]
			s.prims.Draw(primitives.Plane, primitives.Instance{
				Position: fl.Position,
				Rotation: mgl32.QuatRotate(fl.Angle, mgl32.Vec3{0, 1, 0}).Mul(flakeTilt),
				Size:     mgl32.Vec3{snowfall.FlakeSize, 1, snowfall.FlakeSize},
				Color:    flakeColor,
			})
		}
		rl.EnableBackfaceCulling()
	}
	rl.EndMode3D()
}

// color parses and caches a node's hex color. Unparseable colors draw white.
func (s *Scene) color(hex string) rl.Color {
	if c, ok := s.colors[hex]; ok {
		return c
	}
	c, ok := ui.ParseHexColor(hex)
	if !ok {
		c = rl.White
	}
	s.colors[hex] = c
	return c
}

// Unload releases the skybox. The primitive registry is unloaded by its owner.
func (s *Scene) Unload() {
	if s.sky != nil {
		s.sky.unload()
	}
}
