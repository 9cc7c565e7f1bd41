package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window configures Run.
type Window struct {
	Width, Height int
	Title         string
	// Fullscreen opens the window at monitor size; Width and Height are ignored.
	Fullscreen bool
	TargetFPS  int
}

// Run opens the window and drives the main loop. Each frame it calls update (input,
// session events), then draw between BeginDrawing and EndDrawing. draw is responsible for
// clearing: the renderer clears to the scene background. ESC is left to the console;
// close via the window button.
func Run(w Window, update, draw func()) {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	width, height := w.Width, w.Height
	if w.Fullscreen {
		width, height = rl.GetMonitorWidth(0), rl.GetMonitorHeight(0)
	}
	rl.InitWindow(int32(width), int32(height), w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	if w.TargetFPS > 0 {
		rl.SetTargetFPS(int32(w.TargetFPS))
	}

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		draw()
		rl.EndDrawing()
	}
}
