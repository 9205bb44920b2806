package main

import (
	"math/rand"
	"path/filepath"
	"time"

	"gift-box/internal/card"
	"gift-box/internal/config"
	"gift-box/internal/debug"
	"gift-box/internal/env"
	"gift-box/internal/fontapi"
	"gift-box/internal/fonts"
	"gift-box/internal/gesture"
	"gift-box/internal/giftbox"
	"gift-box/internal/logger"
	"gift-box/internal/openstate"
	"gift-box/internal/physics"
	"gift-box/internal/primitives"
	"gift-box/internal/scene"
	"gift-box/internal/snowfall"
	"gift-box/internal/terminal"
	"gift-box/internal/ui"

	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// app wires the simulation to the window: physics, the gift box controller, the reveal
// (snow and card), sound, the state API and the 2D overlays.
type app struct {
	cfg     config.Settings
	cfgPath string
	log     *logger.Logger
	rng     *rand.Rand

	world *physics.World
	ctrl  *giftbox.Controller
	state openstate.State
	snap  giftbox.Snapshot

	opened bool
	snow   *snowfall.Field
	card   *card.Card
	fonts  []fonts.Metadata

	sound *audio
	api   *fontapi.Server

	prims   *primitives.Registry
	scn     *scene.Scene
	ui      *ui.Engine
	status  *ui.StatusPanel
	overlay *ui.CardOverlay
	dbg     *debug.Debug
	term    *terminal.Terminal
}

func newApp(cfg config.Settings, cfgPath string, log *logger.Logger, rng *rand.Rand) *app {
	a := &app{cfg: cfg, cfgPath: cfgPath, log: log, rng: rng}

	a.world = newWorld(cfg.Physics)
	a.ctrl = giftbox.New(a.world, giftbox.NewModel(cfg.Model.Parts), cfg.Gift,
		giftbox.WithLogger(log),
		giftbox.WithRand(rng),
		giftbox.WithObserver(giftbox.ObserverFuncs{
			OnOpenState:  a.onOpenState,
			OnOpened:     a.onOpened,
			OnInteracted: a.onInteracted,
			OnSeparated:  func() { a.log.Log("[App] box separated") },
		}),
	)
	a.snap = a.ctrl.Snapshot()
	a.loadFonts()

	a.sound = newAudio(env.Bool(env.Audio, true), rand.New(rand.NewSource(rng.Int63())), log)
	if cfg.API.Enabled {
		a.startAPI(env.String(env.APIAddr, cfg.API.Addr))
	}

	a.prims = primitives.NewRegistry()
	a.scn = scene.New(a.prims, cfg.Physics.GroundY)
	a.ui = ui.New()
	if err := a.ui.LoadCSS(cfg.Card.CSS); err != nil {
		log.Logf("[UI] stylesheet %s: %v", cfg.Card.CSS, err)
	}
	a.status = ui.NewStatusPanel()
	a.overlay = ui.NewCardOverlay()
	a.dbg = debug.FromConfig(cfg.Debug)
	a.term = terminal.New(log)
	a.registerCommands()
	return a
}

func newWorld(p config.Physics) *physics.World {
	w := physics.NewWorld()
	w.SetGravity(mgl32.Vec3(p.Gravity))
	w.HasGround = p.HasGround
	w.GroundY = p.GroundY
	w.GroundRestitution = p.GroundRestitution
	w.GroundFriction = p.GroundFriction
	return w
}

func (a *app) loadFonts() {
	list, err := fonts.LoadMetadata(filepath.Join(a.cfg.Card.FontsDir, fonts.MetadataFile))
	if err != nil {
		a.log.Logf("[Fonts] %v; cards use the default typeface", err)
		a.fonts = nil
		return
	}
	a.fonts = list
	a.log.Logf("[Fonts] %d fonts available", len(list))
}

func (a *app) startAPI(addr string) {
	a.api = fontapi.New(a.cfg.Card.FontsDir, a.log)
	go func() {
		a.log.Logf("[API] listening on %s", addr)
		if err := a.api.Listen(addr); err != nil {
			a.log.Logf("[API] %v", err)
		}
	}()
}

func (a *app) onOpenState(s openstate.State) {
	if s != a.state {
		a.log.Logf("[App] %s -> %s", a.state, s)
		a.state = s
	}
}

// onOpened starts the reveal the first time the open gesture fires. Later bursts leave it alone.
func (a *app) onOpened() {
	if a.opened {
		return
	}
	a.opened = true
	a.sound.chime()
	a.snow = snowfall.New(a.cfg.Snow.Count, a.cfg.Snow.Area, a.cfg.Snow.FallSpeed, a.rng)
	a.drawCard()
}

func (a *app) onInteracted() {
	a.sound.rumble(a.cfg.Gift.RumbleDuration, a.cfg.Gift.RumbleIntensity)
}

// drawCard picks a new card and uploads its image and font. Must run on the window thread.
func (a *app) drawCard() {
	c := card.Draw(a.rng, a.cfg.Card.Images, card.Greetings, a.fonts, time.Now(), a.cfg.Card.Delay)
	a.card = &c
	a.loadCard()
}

// setCardFont swaps the font of the current card, keeping its greeting and image.
func (a *app) setCardFont(m fonts.Metadata) {
	if a.card == nil {
		return
	}
	a.card.Font = m
	a.loadCard()
}

func (a *app) loadCard() {
	c := *a.card
	var fontPath string
	if c.HasFont() {
		fontPath = filepath.Join(a.cfg.Card.FontsDir, filepath.FromSlash(c.Font.File))
	}
	if c.Image == "" {
		a.overlay.Load(c, nil, fontPath)
		return
	}
	img, err := card.PrepareImage(c.Image, a.cfg.Card.Width, a.cfg.Card.Height)
	if err != nil {
		a.log.Logf("[Card] %v", err)
	}
	a.overlay.Load(c, img, fontPath)
}

// closeReveal hides the card and stops the snow. The next open gesture starts a new reveal.
func (a *app) closeReveal() {
	a.opened = false
	a.snow = nil
	a.card = nil
	a.overlay.Unload()
	a.ctrl.ResetTaps()
}

func (a *app) saveFont() {
	if a.card == nil {
		return
	}
	path, err := card.SaveFont(a.cfg.Card.FontsDir, a.card.Font, card.DownloadDir())
	if err != nil {
		a.log.Logf("[Card] download font: %v", err)
		return
	}
	a.log.Logf("[Card] font saved to %s", path)
}

func (a *app) update(dt float32) {
	a.term.Update()
	if !a.term.IsOpen() {
		a.scn.Update()
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			a.click(rl.GetMousePosition())
		}
	}

	a.world.Step(dt)
	a.ctrl.Tick()
	if a.snow != nil {
		a.snow.Update(dt)
	}

	visible := a.card != nil && a.card.Visible(time.Now())
	a.overlay.Show(visible, visible && a.card.HasFont())

	if snap := a.ctrl.Snapshot(); snap != a.snap {
		a.snap = snap
		if a.api != nil {
			a.api.Publish(snap)
		}
	}
}

// click routes a pointer-down: the card button first, then the box.
func (a *app) click(pos rl.Vector2) {
	ev := &gesture.PointerEvent{Time: time.Now(), X: pos.X, Y: pos.Y}
	gesture.Dispatch(ev,
		func(ev *gesture.PointerEvent) {
			if a.overlay.ButtonHit(ev.X, ev.Y) {
				ev.StopPropagation()
				a.saveFont()
			}
		},
		func(ev *gesture.PointerEvent) {
			origin, dir := a.scn.Ray(rl.NewVector2(ev.X, ev.Y))
			if _, ok := a.ctrl.Hit(origin, dir); ok {
				a.ctrl.HandlePointerDown(ev)
			}
		},
	)
}

func (a *app) draw() {
	a.scn.Draw(a.ctrl.Nodes(), a.snow)

	nodes := a.status.AppendNodes(nil, true, a.snap)
	nodes = append(nodes, a.overlay.Nodes()...)
	a.ui.SetNodes(nodes)
	a.ui.Draw()

	a.dbg.Draw(a.snap)
	a.term.Draw()
}

// load runs once the window exists. The configured UI font, if any, is shared with the
// console and the debug overlay.
func (a *app) load() {
	if path := a.cfg.Window.Font; path != "" {
		if err := a.ui.LoadFont(path); err != nil {
			a.log.Logf("[UI] font %s: %v", path, err)
		}
	}
	a.term.SetFont(a.ui.Font())
	a.dbg.SetFont(a.ui.Font())
}

// unload runs before the window closes.
func (a *app) unload() {
	a.overlay.Unload()
	a.ui.Unload()
	a.scn.Unload()
	a.prims.Unload()
}

// close stops everything that outlives the window.
func (a *app) close() {
	a.ctrl.Close()
	a.sound.close()
	if a.api != nil {
		if err := a.api.Shutdown(); err != nil {
			a.log.Logf("[API] shutdown: %v", err)
		}
	}
}
