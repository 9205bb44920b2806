package graphics

import (
	"gift-box/internal/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Run opens the window and runs the main loop. Each frame it calls update (input, physics, state),
// then clears the screen to black and calls draw. It returns when the window is closed.
// load, if set, runs once after the window opens. unload, if set, runs while the GL context
// still exists so GPU resources can be released.
func Run(win config.Window, load func(), update func(dt float32), draw func(), unload func()) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(win.Width, win.Height, win.Title)
	defer rl.CloseWindow()
	if unload != nil {
		defer unload()
	}

	rl.SetTargetFPS(win.TargetFPS)
	if load != nil {
		load()
	}

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}
