// Package desktop drives the simulated AR platform from a keyboard and mouse so the
// sketch can be previewed in a window.
//
//	WASD / Space / C   walk, rise, sink
//	arrow keys         look around (or hold the middle mouse button and move)
//	left mouse         select on controller 0 (the eye ray, marked by the crosshair)
//	F                  select on controller 1 (the hand)
//	right mouse        drag an object under the cursor
//	M                  drop the click marker at the reticle
//	Tab                end or restart the session
package desktop

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"arsketch/internal/frame"
	"arsketch/internal/xr"
	"arsketch/internal/xr/simxr"
)

const (
	walkSpeed     = 1.5 // m/s
	turnSpeed     = 1.6 // rad/s
	mouseLookRate = 0.004
	crosshairSize = 8
)

// Host owns the simulated session and the viewer rig.
type Host struct {
	Rig *simxr.Rig

	floorHeight float32
	session     *simxr.Session
	log         *zap.Logger
}

// New returns a host whose rig stands at eyeHeight above the floor with one controller
// per modality. No session runs until Start.
func New(floorHeight, eyeHeight float32, modes []xr.Modality, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		Rig:         simxr.NewRig(floorHeight+eyeHeight, 35, modes...),
		floorHeight: floorHeight,
		log:         log.Named("desktop"),
	}
}

// Start begins a new session and binds it to app. A running session is left alone.
func (h *Host) Start(app *frame.App) {
	if h.session != nil {
		return
	}
	h.session = simxr.NewSession(h.floorHeight)
	app.SessionStart(h.session)
}

// End stops the session: sources are cancelled first, then the app tears down.
func (h *Host) End(app *frame.App) {
	if h.session == nil {
		return
	}
	h.session.End()
	app.SessionEnd()
	h.session = nil
}

// Running reports whether a session is active.
func (h *Host) Running() bool { return h.session != nil }

// Update reads input and dispatches gestures to app. It returns the frame to run, or nil
// without a session; then the camera follows the rig directly. keyboard is false while
// another widget (the console) owns the keyboard.
func (h *Host) Update(app *frame.App, keyboard bool) xr.Frame {
	app.SetAspect(rl.GetScreenWidth(), rl.GetScreenHeight())
	dt := rl.GetFrameTime()

	if keyboard {
		h.move(dt)
		if rl.IsKeyPressed(rl.KeyTab) {
			if h.Running() {
				h.End(app)
			} else {
				h.Start(app)
			}
		}
		if rl.IsKeyPressed(rl.KeyM) {
			if !app.PlaceMarker() {
				h.log.Debug("no surface under the reticle for the marker")
			}
		}
		h.selectKey(app, rl.KeyF, 1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		h.Rig.Look(-d.X*mouseLookRate, -d.Y*mouseLookRate)
	}
	h.drag(app)

	// Controller poses are refreshed by the frame, so gestures read last frame's pose,
	// like a real platform delivering events between frames.
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		app.HandleSelect(xr.SelectEvent{Index: 0, Phase: xr.SelectStart})
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		app.HandleSelect(xr.SelectEvent{Index: 0, Phase: xr.SelectEnd})
	}

	if h.session == nil {
		app.Camera.Pose = h.Rig.Viewer()
		return nil
	}
	return h.Rig.Frame(h.session)
}

func (h *Host) move(dt float32) {
	var fwd, right, up, yaw, pitch float32
	if rl.IsKeyDown(rl.KeyW) {
		fwd++
	}
	if rl.IsKeyDown(rl.KeyS) {
		fwd--
	}
	if rl.IsKeyDown(rl.KeyD) {
		right++
	}
	if rl.IsKeyDown(rl.KeyA) {
		right--
	}
	if rl.IsKeyDown(rl.KeySpace) {
		up++
	}
	if rl.IsKeyDown(rl.KeyC) {
		up--
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		yaw++
	}
	if rl.IsKeyDown(rl.KeyRight) {
		yaw--
	}
	if rl.IsKeyDown(rl.KeyUp) {
		pitch++
	}
	if rl.IsKeyDown(rl.KeyDown) {
		pitch--
	}
	h.Rig.Move(fwd*walkSpeed*dt, right*walkSpeed*dt, up*walkSpeed*dt)
	h.Rig.Look(yaw*turnSpeed*dt, pitch*turnSpeed*dt)
}

func (h *Host) selectKey(app *frame.App, key int32, index int) {
	if index >= len(h.Rig.Modes) {
		return
	}
	if rl.IsKeyPressed(key) {
		app.HandleSelect(xr.SelectEvent{Index: index, Phase: xr.SelectStart})
	}
	if rl.IsKeyReleased(key) {
		app.HandleSelect(xr.SelectEvent{Index: index, Phase: xr.SelectEnd})
	}
}

func (h *Host) drag(app *frame.App) {
	w, hgt := rl.GetScreenWidth(), rl.GetScreenHeight()
	m := rl.GetMousePosition()
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonRight):
		app.Dragger.PointerDown(m.X, m.Y, w, hgt)
	case rl.IsMouseButtonDown(rl.MouseButtonRight):
		app.Dragger.PointerMove(m.X, m.Y, w, hgt)
	case rl.IsMouseButtonReleased(rl.MouseButtonRight):
		app.Dragger.PointerUp()
	}
}

// Draw marks the eye ray with a crosshair. Call in 2D after the scene.
func (h *Host) Draw() {
	cx, cy := int32(rl.GetScreenWidth()/2), int32(rl.GetScreenHeight()/2)
	rl.DrawLine(cx-crosshairSize, cy, cx+crosshairSize, cy, rl.White)
	rl.DrawLine(cx, cy-crosshairSize, cx, cy+crosshairSize, rl.White)
}
