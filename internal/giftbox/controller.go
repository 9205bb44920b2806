// Package giftbox drives the interactive gift box: it samples the box pose each tick, reports the
// open state, splits the box into cover and base when the cover reaches the floor, and reacts to taps.
package giftbox

import (
	"fmt"
	"math/rand"
	"time"

	"gift-box/internal/config"
	"gift-box/internal/gesture"
	"gift-box/internal/logger"
	"gift-box/internal/openstate"
	"gift-box/internal/physics"
	"gift-box/internal/rumble"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
)

// Stage is the split state machine. Separating only exists inside split and is never seen by a tick.
type Stage int

const (
	Joined Stage = iota
	Separating
	Separated
)

func (s Stage) String() string {
	switch s {
	case Joined:
		return "joined"
	case Separating:
		return "separating"
	case Separated:
		return "separated"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// tapImpulseScale turns rumble intensity into the magnitude of the nudge applied on each tap.
const tapImpulseScale = 5

// boxColliders approximate the closed box at collider scale 1: body, lid, and the two ribbon slabs.
var boxColliders = []physics.Collider{
	{HalfExtents: mgl32.Vec3{0.28, 0.28, 0.28}, Offset: mgl32.Vec3{0, 0.28, 0}},
	{HalfExtents: mgl32.Vec3{0.252, 0.056, 0.252}, Offset: mgl32.Vec3{0, 0.616, 0}},
	{HalfExtents: mgl32.Vec3{0.028, 0.336, 0.28}, Offset: mgl32.Vec3{0, 0.28, 0}},
	{HalfExtents: mgl32.Vec3{0.28, 0.336, 0.028}, Offset: mgl32.Vec3{0, 0.28, 0}},
}

// Observer receives the controller's upward signals. All calls happen on the tick/input thread.
type Observer interface {
	// OpenState is called once per tick with the freshly derived state.
	OpenState(s openstate.State)
	// Opened is called when a tap burst reaches the click threshold.
	Opened()
	// Interacted is called on every tap.
	Interacted()
	// Separated is called once, right after the split.
	Separated()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnOpenState  func(openstate.State)
	OnOpened     func()
	OnInteracted func()
	OnSeparated  func()
}

func (f ObserverFuncs) OpenState(s openstate.State) {
	if f.OnOpenState != nil {
		f.OnOpenState(s)
	}
}

func (f ObserverFuncs) Opened() {
	if f.OnOpened != nil {
		f.OnOpened()
	}
}

func (f ObserverFuncs) Interacted() {
	if f.OnInteracted != nil {
		f.OnInteracted()
	}
}

func (f ObserverFuncs) Separated() {
	if f.OnSeparated != nil {
		f.OnSeparated()
	}
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithScheduler sets the scheduler behind the rumble timer.
func WithScheduler(s rumble.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.obs = o }
}

// Snapshot is the controller state published to external observers.
type Snapshot struct {
	State     openstate.State `json:"state"`
	Stage     Stage           `json:"stage"`
	Separated bool            `json:"separated"`
	Clicks    int             `json:"clicks"`
	Rumbling  bool            `json:"rumbling"`
	// Position and Yaw track the joined box. Both keep their last joined values once the box has
	// split, after which Cover and Base carry the part positions.
	Position [3]float32 `json:"position"`
	Yaw      float32    `json:"yaw"`
	Cover    [3]float32 `json:"cover"`
	Base     [3]float32 `json:"base"`
}

// Controller owns the box body until the split and the two part bodies after it.
// It is the only code that creates or removes bodies for the box.
type Controller struct {
	cfg   config.Gift
	world *physics.World
	model *Model
	parts Parts

	box      physics.BodyDesc
	body     *physics.Body // nil once separated
	partBody map[*Node]*physics.Body
	root     physics.Pose

	stage Stage
	state openstate.State
	yaw   float32 // yaw at the split

	taps   *gesture.Detector
	rumble *rumble.Effect

	rng   *rand.Rand
	sched rumble.Scheduler
	log   *logger.Logger
	obs   Observer
}

// New creates the box body in world at cfg.Start and resolves the cover and base parts.
// Missing parts are logged and leave the box permanently joined.
func New(world *physics.World, model *Model, cfg config.Gift, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		world:    world,
		model:    model,
		partBody: make(map[*Node]*physics.Body, 2),
		obs:      ObserverFuncs{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c.taps = gesture.NewDetector(cfg.ClickWindow, cfg.ClickThreshold)
	c.rumble = rumble.New(cfg.RumbleDuration, cfg.RumbleIntensity, c.sched)

	parts, err := ResolveParts(model, cfg.CoverPart, cfg.BasePart)
	if err != nil {
		c.log.Logf("[GiftBox] missing-geometry: %v; the box will not split", err)
	}
	c.parts = parts

	// mass, surface and damping settings carry over by field name
	if err := copier.Copy(&c.box, &cfg); err != nil {
		c.log.Logf("[GiftBox] body desc from config: %v", err)
	}
	c.box.Position = mgl32.Vec3(cfg.Start)
	c.box.Rotation = mgl32.QuatIdent()
	c.box.Colliders = scaledColliders(cfg.ColliderScale)
	c.body = world.CreateBody(c.box)
	c.root = c.body.Pose()
	for _, n := range model.Nodes() {
		n.place(c.root)
	}
	return c
}

func scaledColliders(scale float32) []physics.Collider {
	if scale <= 0 {
		scale = 1
	}
	out := make([]physics.Collider, len(boxColliders))
	for i, col := range boxColliders {
		out[i] = physics.Collider{HalfExtents: col.HalfExtents.Mul(scale), Offset: col.Offset.Mul(scale)}
	}
	return out
}

// Tick samples physics after the world has stepped, writes node poses, evaluates the split,
// and reports the open state. Call once per frame.
func (c *Controller) Tick() openstate.State {
	switch c.stage {
	case Joined:
		pose := c.body.Pose()
		c.root = physics.Pose{Position: pose.Position.Add(c.rumble.Offset(c.rng)), Rotation: pose.Rotation}
		for _, n := range c.model.Nodes() {
			n.place(c.root)
		}
		if c.parts.Found() && c.coverHeight(pose) < c.cfg.SplitHeight {
			c.split(pose)
		}
		c.state = openstate.ClassifyAt(pose.Rotation, c.stage == Separated, c.cfg.OpenAngle)
	case Separated:
		c.sampleParts()
		c.state = openstate.Opened
	}
	c.obs.OpenState(c.state)
	return c.state
}

// coverHeight is the cover's world Y for a box at pose, from physics rather than the jittered visual.
func (c *Controller) coverHeight(pose physics.Pose) float32 {
	return pose.Position.Add(pose.Rotation.Rotate(c.parts.Cover.Offset))[1]
}

func (c *Controller) sampleParts() {
	jitter := c.rumble.Offset(c.rng)
	for _, n := range [2]*Node{c.parts.Cover, c.parts.Base} {
		b, ok := c.partBody[n]
		if !ok {
			continue
		}
		n.SetPose(b.Position.Add(jitter), b.Rotation)
	}
}

// split replaces the box body with one body per part and pushes the parts apart.
// The old body is removed and forgotten in the same step that marks the box separated.
func (c *Controller) split(pose physics.Pose) {
	c.stage = Separating
	c.yaw = openstate.YawDegrees(pose.Rotation)
	cover, base := c.parts.Cover, c.parts.Base

	for _, n := range [2]*Node{cover, base} {
		n.place(pose)
		b := c.world.CreateBody(c.partDesc(n))
		c.partBody[n] = b
	}

	up := pose.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
	side := pose.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	if err := c.world.ApplyImpulse(c.partBody[cover].ID, up.Mul(c.cfg.CoverImpulse)); err != nil {
		c.log.Logf("[GiftBox] cover impulse: %v", err)
	}
	if err := c.world.ApplyImpulse(c.partBody[base].ID, side.Mul(c.cfg.BaseImpulse)); err != nil {
		c.log.Logf("[GiftBox] base impulse: %v", err)
	}

	old := c.body
	err := c.world.RemoveBody(old.ID)
	c.body = nil
	c.stage = Separated
	if err != nil {
		c.log.Logf("[GiftBox] retire box body: %v", err)
	}

	c.log.Logf("[GiftBox] separated at cover height %.3f", cover.Position[1])
	c.obs.Separated()
}

// partDesc derives a part body from the box body: same surface and damping, the part's own mass and extents.
func (c *Controller) partDesc(n *Node) physics.BodyDesc {
	d := c.box
	d.Position = n.Position
	d.Rotation = n.Rotation
	d.Mass = c.cfg.PartMass
	d.Colliders = []physics.Collider{{HalfExtents: n.HalfExtents}}
	return d
}

// HandlePointerDown consumes a tap on the box: it stops propagation, counts the tap toward the
// open gesture, nudges the box while it is still joined, and starts the rumble.
func (c *Controller) HandlePointerDown(ev *gesture.PointerEvent) gesture.Result {
	ev.StopPropagation()

	res := c.taps.PointerDown(ev.Time)
	if res.Open {
		c.log.Logf("[GiftBox] open gesture after %d taps", res.Count)
		c.obs.Opened()
	}

	if c.stage == Joined {
		c.nudge()
	}
	c.rumble.Trigger()
	c.obs.Interacted()
	return res
}

// nudge applies a small impulse in a random direction sampled from a cube.
func (c *Controller) nudge() {
	dir := mgl32.Vec3{
		(c.rng.Float32() - 0.5) * 10,
		(c.rng.Float32() - 0.5) * 10,
		(c.rng.Float32() - 0.5) * 10,
	}
	if dir.Len() == 0 {
		return
	}
	impulse := dir.Normalize().Mul(tapImpulseScale * c.cfg.RumbleIntensity)
	if err := c.world.ApplyImpulse(c.body.ID, impulse); err != nil {
		c.log.Logf("[GiftBox] tap impulse: %v", err)
	}
}

// Stage returns the split state.
func (c *Controller) Stage() Stage {
	return c.stage
}

// Separated reports whether the box has split.
func (c *Controller) Separated() bool {
	return c.stage == Separated
}

// State returns the open state from the last tick.
func (c *Controller) State() openstate.State {
	return c.state
}

// Clicks returns the taps in the current burst.
func (c *Controller) Clicks() int {
	return c.taps.Count()
}

// ResetTaps forgets the current burst, so the next open gesture needs a full set of taps.
func (c *Controller) ResetTaps() {
	c.taps.Reset()
}

// Rumbling reports whether the rumble window is open.
func (c *Controller) Rumbling() bool {
	return c.rumble.Active()
}

// Parts returns the resolved cover and base.
func (c *Controller) Parts() Parts {
	return c.parts
}

// Nodes returns the model nodes with their current visual poses.
func (c *Controller) Nodes() []*Node {
	return c.model.Nodes()
}

// Root returns the visual pose of the whole box while joined.
func (c *Controller) Root() physics.Pose {
	return c.root
}

// Snapshot captures the state for external observers.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:     c.state,
		Stage:     c.stage,
		Separated: c.Separated(),
		Clicks:    c.taps.Count(),
		Rumbling:  c.rumble.Active(),
		Position:  c.root.Position,
	}
	if c.body != nil {
		s.Yaw = openstate.YawDegrees(c.body.Rotation)
	} else {
		s.Yaw = c.yaw
	}
	if c.parts.Found() {
		s.Cover = c.parts.Cover.Position
		s.Base = c.parts.Base.Position
	}
	return s
}

// Close cancels the rumble timer. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.rumble.Close()
}
