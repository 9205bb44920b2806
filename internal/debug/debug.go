// Package debug draws the optional corner overlays: FPS, heap size and the gift box state.
package debug

import (
	"fmt"
	"runtime"

	"gift-box/internal/config"
	"gift-box/internal/giftbox"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh the FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
)

// Debug holds the overlay switches and cached text. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowState    bool
	font         rl.Font
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
	lastSnap     giftbox.Snapshot
	stateText    string
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// FromConfig returns a Debug with the overlays the settings enable.
func FromConfig(c config.Debug) *Debug {
	return &Debug{ShowFPS: c.ShowFPS, ShowMemAlloc: c.ShowMemAlloc, ShowState: c.ShowState}
}

// SetFont sets the overlay font. Zero texture ID = raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// Draw renders the enabled overlays right-aligned at the top of the screen, one per line.
func (d *Debug) Draw(snap giftbox.Snapshot) {
	d.frameCount++
	update := d.frameCount%updateInterval == 0
	if (d.ShowFPS && d.lastFpsText == "") || (d.ShowMemAlloc && d.lastMemText == "") {
		update = true
	}

	y := int32(padding)
	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.line(d.lastFpsText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(d.lastMemStats.Alloc)/(1024*1024))
		}
		d.line(d.lastMemText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowState {
		// state changes are rare, so the text is only rebuilt when the snapshot differs
		if snap != d.lastSnap || d.stateText == "" {
			d.lastSnap = snap
			d.stateText = fmt.Sprintf("%s %s clicks=%d yaw=%.0f", snap.State, snap.Stage, snap.Clicks, snap.Yaw)
		}
		d.line(d.stateText, y, rl.Yellow)
	}
}

func (d *Debug) line(text string, y int32, color rl.Color) {
	if text == "" {
		return
	}
	screenW := float32(rl.GetScreenWidth())
	if d.font.Texture.ID != 0 {
		sz := float32(fontSize)
		pos := rl.NewVector2(screenW-rl.MeasureTextEx(d.font, text, sz, 1).X-padding, float32(y))
		rl.DrawTextEx(d.font, text, pos, sz, 1, color)
		return
	}
	x := int32(screenW) - rl.MeasureText(text, fontSize) - padding
	rl.DrawText(text, x, y, fontSize, color)
}
