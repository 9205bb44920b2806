package giftbox

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"gift-box/internal/config"
	"gift-box/internal/gesture"
	"gift-box/internal/openstate"
	"gift-box/internal/physics"
	"gift-box/internal/rumble"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) rumble.Timer {
	t := &fakeTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.now += d
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			t.f()
		}
	}
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recorder struct {
	states     []openstate.State
	opened     int
	interacted int
	separated  int
}

func (r *recorder) OpenState(s openstate.State) { r.states = append(r.states, s) }
func (r *recorder) Opened()                     { r.opened++ }
func (r *recorder) Interacted()                 { r.interacted++ }
func (r *recorder) Separated()                  { r.separated++ }

// still returns a world where nothing moves unless a test moves it.
func still() *physics.World {
	w := physics.NewWorld()
	w.SetGravity(mgl32.Vec3{})
	w.HasGround = false
	return w
}

type fixture struct {
	world *physics.World
	ctrl  *Controller
	rec   *recorder
	sched *fakeScheduler
	cfg   config.Settings
}

func newFixture(t *testing.T, parts []config.Part) *fixture {
	t.Helper()
	cfg := config.Default()
	if parts == nil {
		parts = cfg.Model.Parts
	}
	f := &fixture{world: still(), rec: &recorder{}, sched: &fakeScheduler{}, cfg: cfg}
	f.ctrl = New(f.world, NewModel(parts), cfg.Gift,
		WithRand(rand.New(rand.NewSource(7))),
		WithScheduler(f.sched),
		WithObserver(f.rec),
	)
	t.Cleanup(f.ctrl.Close)
	return f
}

// boxBody returns the only live body while the box is joined.
func (f *fixture) boxBody(t *testing.T) *physics.Body {
	t.Helper()
	bodies := f.world.Bodies()
	if len(bodies) != 1 {
		t.Fatalf("live bodies = %d, want 1", len(bodies))
	}
	return bodies[0]
}

// setCoverHeight moves the upright box so the cover center sits at y.
func (f *fixture) setCoverHeight(t *testing.T, y float32) {
	t.Helper()
	b := f.boxBody(t)
	b.Position = mgl32.Vec3{0, y - 0.739, 0}
	b.Rotation = mgl32.QuatIdent()
}

func near(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-4)
}

func TestSplitOnlyBelowThreshold(t *testing.T) {
	f := newFixture(t, nil)

	for _, y := range []float32{0.5, 0.3} {
		f.setCoverHeight(t, y)
		if got := f.ctrl.Tick(); got != openstate.Intact {
			t.Errorf("cover at %v: Tick() = %v, want intact", y, got)
		}
		if f.ctrl.Separated() {
			t.Fatalf("cover at %v: separated too early", y)
		}
	}

	f.setCoverHeight(t, 0.08)
	if got := f.ctrl.Tick(); got != openstate.Opened {
		t.Errorf("split tick: Tick() = %v, want opened", got)
	}
	if f.ctrl.Stage() != Separated {
		t.Errorf("Stage() = %v, want separated", f.ctrl.Stage())
	}
	if f.rec.separated != 1 {
		t.Errorf("Separated calls = %d, want 1", f.rec.separated)
	}
}

func TestSplitImpulsesAndRetiredBody(t *testing.T) {
	upsideDownYawed := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(math32.Pi, mgl32.Vec3{1, 0, 0}))

	tests := []struct {
		name     string
		pos      mgl32.Vec3
		rot      mgl32.Quat
		coverPos mgl32.Vec3
		basePos  mgl32.Vec3
		coverVel mgl32.Vec3
		baseVel  mgl32.Vec3
	}{
		{
			name:     "upright",
			pos:      mgl32.Vec3{0, 0.05 - 0.739, 0},
			rot:      mgl32.QuatIdent(),
			coverPos: mgl32.Vec3{0, 0.05, 0},
			basePos:  mgl32.Vec3{0, 0.05 - 0.739 + 0.336, 0},
			coverVel: mgl32.Vec3{0, 5, 0},
			baseVel:  mgl32.Vec3{3, 0, 0},
		},
		{
			name:     "upside down and yawed",
			pos:      mgl32.Vec3{0.3, 0.806, -0.2},
			rot:      upsideDownYawed,
			coverPos: mgl32.Vec3{0.3, 0.067, -0.2},
			basePos:  mgl32.Vec3{0.3, 0.47, -0.2},
			coverVel: mgl32.Vec3{0, -5, 0},
			baseVel:  mgl32.Vec3{2.598, 0, -1.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			b := f.boxBody(t)
			old := b.ID
			b.Position, b.Rotation = tt.pos, tt.rot
			f.ctrl.Tick()

			if _, err := f.world.Body(old); !errors.Is(err, physics.ErrRetiredBody) {
				t.Errorf("Body(old) error = %v, want ErrRetiredBody", err)
			}
			if n := f.world.Len(); n != 2 {
				t.Fatalf("live bodies = %d, want 2", n)
			}
			parts := f.ctrl.Parts()
			cover, base := f.ctrl.partBody[parts.Cover], f.ctrl.partBody[parts.Base]
			if cover == nil || base == nil {
				t.Fatal("part bodies not created")
			}

			for _, p := range []struct {
				name     string
				body     *physics.Body
				pos, vel mgl32.Vec3
			}{
				{"cover", cover, tt.coverPos, tt.coverVel},
				{"base", base, tt.basePos, tt.baseVel},
			} {
				if !p.body.Position.ApproxEqualThreshold(p.pos, 1e-3) {
					t.Errorf("%s position = %v, want %v", p.name, p.body.Position, p.pos)
				}
				if !p.body.Rotation.ApproxEqualThreshold(tt.rot, 1e-4) {
					t.Errorf("%s rotation = %v, want %v", p.name, p.body.Rotation, tt.rot)
				}
				if !p.body.Velocity.ApproxEqualThreshold(p.vel, 1e-3) {
					t.Errorf("%s velocity = %v, want %v", p.name, p.body.Velocity, p.vel)
				}
			}
			// impulses follow the box frame
			if want := tt.rot.Rotate(mgl32.Vec3{0, 5, 0}); !near(cover.Velocity, want) {
				t.Errorf("cover velocity = %v, want R*(0,5,0) = %v", cover.Velocity, want)
			}
			if want := tt.rot.Rotate(mgl32.Vec3{3, 0, 0}); !near(base.Velocity, want) {
				t.Errorf("base velocity = %v, want R*(3,0,0) = %v", base.Velocity, want)
			}

			if cover.Mass != 1 || base.Mass != 1 {
				t.Errorf("part masses = %v, %v, want 1", cover.Mass, base.Mass)
			}
			if cover.Restitution != f.cfg.Gift.Restitution || base.LinearDamping != f.cfg.Gift.LinearDamping {
				t.Error("part bodies did not inherit the box surface settings")
			}
		})
	}
}

func TestBoxBodyFromConfig(t *testing.T) {
	cfg := config.Default().Gift
	cfg.Start = [3]float32{1, 2, 3}
	cfg.Mass = 2.5
	cfg.Restitution = 0.4
	cfg.Friction = 0.6
	cfg.LinearDamping = 0.2
	cfg.AngularDamping = 0.3
	cfg.ColliderScale = 2

	w := still()
	ctrl := New(w, NewModel(config.Default().Model.Parts), cfg, WithScheduler(&fakeScheduler{}))
	t.Cleanup(ctrl.Close)

	b := w.Bodies()[0]
	if b.Position != (mgl32.Vec3{1, 2, 3}) || b.Rotation != mgl32.QuatIdent() {
		t.Errorf("pose = %v %v, want start position and identity", b.Position, b.Rotation)
	}
	if b.Mass != 2.5 || b.Restitution != 0.4 || b.Friction != 0.6 || b.LinearDamping != 0.2 || b.AngularDamping != 0.3 {
		t.Errorf("body = mass %v restitution %v friction %v damping %v/%v, want the configured values",
			b.Mass, b.Restitution, b.Friction, b.LinearDamping, b.AngularDamping)
	}
	if b.Static {
		t.Error("box body is static")
	}
	if got := len(b.Colliders); got != len(boxColliders) {
		t.Fatalf("colliders = %d, want %d", got, len(boxColliders))
	}
	if want := boxColliders[0].HalfExtents.Mul(2); b.Colliders[0].HalfExtents != want {
		t.Errorf("collider half extents = %v, want %v", b.Colliders[0].HalfExtents, want)
	}
}

func TestSplitHappensOnce(t *testing.T) {
	f := newFixture(t, nil)
	f.setCoverHeight(t, 0.0)
	for i := 0; i < 5; i++ {
		f.ctrl.Tick()
	}
	if f.world.Len() != 2 {
		t.Errorf("live bodies = %d after repeated ticks, want 2", f.world.Len())
	}
	if f.rec.separated != 1 {
		t.Errorf("Separated calls = %d, want 1", f.rec.separated)
	}
	for i, s := range f.rec.states {
		if s != openstate.Opened {
			t.Errorf("tick %d state = %v, want opened", i, s)
		}
	}
}

func TestPartsMoveIndependently(t *testing.T) {
	f := newFixture(t, nil)
	f.setCoverHeight(t, 0.05)
	f.ctrl.Tick()

	f.world.Step(0.1)
	f.ctrl.Tick()

	parts := f.ctrl.Parts()
	if parts.Cover.Position[1] <= 0.05 {
		t.Errorf("cover Y = %v, want it to rise after the upward impulse", parts.Cover.Position[1])
	}
	if parts.Base.Position[0] <= 0 {
		t.Errorf("base X = %v, want it to slide along +X", parts.Base.Position[0])
	}
	if math32.Abs(parts.Cover.Position[0]) > 1e-4 {
		t.Errorf("cover X = %v, want it unaffected by the base impulse", parts.Cover.Position[0])
	}
}

func TestMissingPartNeverSplits(t *testing.T) {
	parts := []config.Part{{Name: "Base", Offset: [3]float32{0, 0.336, 0}, HalfExtents: [3]float32{0.336, 0.336, 0.336}}}
	f := newFixture(t, parts)
	if f.ctrl.Parts().Found() {
		t.Fatal("Parts().Found() = true with no cover node")
	}
	f.setCoverHeight(t, -1)
	for i := 0; i < 3; i++ {
		f.ctrl.Tick()
	}
	if f.ctrl.Separated() || f.world.Len() != 1 {
		t.Errorf("box split without a cover: stage %v, bodies %d", f.ctrl.Stage(), f.world.Len())
	}
}

func TestTickReportsYaw(t *testing.T) {
	tests := []struct {
		name string
		yaw  float32
		want openstate.State
	}{
		{"upright", 0, openstate.Intact},
		{"quarter turn short", 60, openstate.Intact},
		{"past threshold", 85, openstate.Opened},
		{"negative past threshold", -85, openstate.Opened},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			b := f.boxBody(t)
			b.Position = mgl32.Vec3{0, 1, 0}
			b.Rotation = mgl32.QuatRotate(mgl32.DegToRad(tt.yaw), mgl32.Vec3{0, 1, 0})
			if got := f.ctrl.Tick(); got != tt.want {
				t.Errorf("Tick() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTripleTapOpensOnce(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)

	for i, ms := range []int{0, 200, 400, 600} {
		ev := &gesture.PointerEvent{Time: start.Add(time.Duration(ms) * time.Millisecond)}
		res := f.ctrl.HandlePointerDown(ev)
		if !ev.Stopped() {
			t.Errorf("tap %d did not stop propagation", i)
		}
		if res.Count != i+1 {
			t.Errorf("tap %d: Count = %d, want %d", i, res.Count, i+1)
		}
	}
	if f.rec.opened != 1 {
		t.Errorf("Opened calls = %d, want 1", f.rec.opened)
	}
	if f.rec.interacted != 4 {
		t.Errorf("Interacted calls = %d, want 4", f.rec.interacted)
	}
	if f.ctrl.Clicks() != 4 {
		t.Errorf("Clicks() = %d, want 4", f.ctrl.Clicks())
	}
}

func TestTapNudgesJoinedBox(t *testing.T) {
	f := newFixture(t, nil)
	b := f.boxBody(t)
	f.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: time.Now()})

	// 5 * intensity / mass
	want := 5 * f.cfg.Gift.RumbleIntensity / f.cfg.Gift.Mass
	if got := b.Velocity.Len(); math32.Abs(got-want) > 1e-4 {
		t.Errorf("velocity after tap = %v, want magnitude %v", got, want)
	}
}

func TestTapAfterSplitDoesNotPanic(t *testing.T) {
	f := newFixture(t, nil)
	f.setCoverHeight(t, 0.05)
	f.ctrl.Tick()
	f.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: time.Now()})
	if !f.ctrl.Rumbling() {
		t.Error("Rumbling() = false after a tap on the separated box")
	}
}

func TestRumbleJitterClears(t *testing.T) {
	f := newFixture(t, nil)
	b := f.boxBody(t)
	b.Position = mgl32.Vec3{0, 1, 0}

	f.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: time.Now()})
	b.Velocity = mgl32.Vec3{}
	b.Position = mgl32.Vec3{0, 1, 0}

	f.ctrl.Tick()
	if f.ctrl.Root().Position == b.Position {
		t.Error("root position not jittered while rumbling")
	}
	if d := f.ctrl.Root().Position.Sub(b.Position); d.Len() > 0.01 {
		t.Errorf("jitter %v too large", d)
	}

	f.sched.Advance(rumble.DefaultDuration)
	f.ctrl.Tick()
	if f.ctrl.Rumbling() {
		t.Error("Rumbling() = true after the rumble window")
	}
	if f.ctrl.Root().Position != b.Position {
		t.Errorf("root position = %v after rumble, want %v", f.ctrl.Root().Position, b.Position)
	}
}

func TestCloseCancelsRumble(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: time.Now()})
	f.ctrl.Close()
	if f.sched.pending() != 0 {
		t.Errorf("pending timers = %d after Close, want 0", f.sched.pending())
	}
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: time.Now()})
	f.ctrl.Tick()

	s := f.ctrl.Snapshot()
	if s.Stage != Joined || s.Separated || s.Clicks != 1 || !s.Rumbling {
		t.Errorf("Snapshot() = %+v", s)
	}
}

func TestSnapshotAfterSplit(t *testing.T) {
	f := newFixture(t, nil)
	b := f.boxBody(t)
	b.Position = mgl32.Vec3{0, 0.05 - 0.739, 0}
	b.Rotation = mgl32.QuatRotate(mgl32.DegToRad(20), mgl32.Vec3{0, 1, 0})
	f.ctrl.Tick()
	atSplit := f.ctrl.Snapshot()

	for i := 0; i < 3; i++ {
		f.world.Step(0.1)
		f.ctrl.Tick()
	}
	s := f.ctrl.Snapshot()
	if !s.Separated || s.Stage != Separated {
		t.Fatalf("Snapshot() = %+v, want separated", s)
	}
	if math32.Abs(s.Yaw-20) > 0.01 {
		t.Errorf("Yaw = %v after split, want the yaw at the split (20)", s.Yaw)
	}
	if s.Position != atSplit.Position {
		t.Errorf("Position = %v, want the last joined position %v", s.Position, atSplit.Position)
	}
	parts := f.ctrl.Parts()
	cover, base := f.ctrl.partBody[parts.Cover], f.ctrl.partBody[parts.Base]
	if !near(s.Cover, cover.Position) {
		t.Errorf("Cover = %v, want cover body at %v", s.Cover, cover.Position)
	}
	if !near(s.Base, base.Position) {
		t.Errorf("Base = %v, want base body at %v", s.Base, base.Position)
	}
	if s.Cover == atSplit.Cover || s.Base == atSplit.Base {
		t.Error("part positions did not move after the split")
	}
}

func TestResetTapsStartsNewBurst(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)
	tap := func(ms int) gesture.Result {
		return f.ctrl.HandlePointerDown(&gesture.PointerEvent{Time: start.Add(time.Duration(ms) * time.Millisecond)})
	}

	for _, ms := range []int{0, 100, 200} {
		tap(ms)
	}
	if f.rec.opened != 1 {
		t.Fatalf("Opened calls = %d, want 1", f.rec.opened)
	}
	f.ctrl.ResetTaps()
	if f.ctrl.Clicks() != 0 {
		t.Errorf("Clicks() = %d after ResetTaps, want 0", f.ctrl.Clicks())
	}
	// still inside the original click window
	for _, ms := range []int{300, 400, 500} {
		tap(ms)
	}
	if f.rec.opened != 2 {
		t.Errorf("Opened calls = %d, want a second open after ResetTaps", f.rec.opened)
	}
}

func TestResolveParts(t *testing.T) {
	m := NewModel(config.Default().Model.Parts)
	if _, err := ResolveParts(m, "Cover", "Base"); err != nil {
		t.Fatalf("ResolveParts() error = %v", err)
	}
	_, err := ResolveParts(m, "Lid", "Base")
	if !errors.Is(err, ErrMissingPart) {
		t.Errorf("ResolveParts(Lid) error = %v, want ErrMissingPart", err)
	}
}
