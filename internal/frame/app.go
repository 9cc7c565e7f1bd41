// Package frame wires the AR sketch together and runs it one displayed frame at a time.
package frame

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"arsketch/internal/config"
	"arsketch/internal/entity"
	"arsketch/internal/interaction"
	"arsketch/internal/physics"
	"arsketch/internal/pose"
	"arsketch/internal/scene"
	"arsketch/internal/stepper"
	"arsketch/internal/tracker"
	"arsketch/internal/xr"
)

// Renderer draws a scene through a camera. It is called once per frame.
type Renderer interface {
	Render(s *scene.Scene, cam *scene.Camera)
}

var (
	floorColor      = mgl32.Vec3{0.35, 0.35, 0.35}
	backgroundColor = mgl32.Vec3{0, 0, 0}
	markerColor     = mgl32.Vec3{0.2, 1, 0.4}
)

const markerRadius = 0.03

// App holds all mutable state of the sketch. Everything is touched only from the frame
// loop (Frame, HandleSelect, SessionStart, SessionEnd), so nothing is locked.
type App struct {
	cfg      config.Config
	log      *zap.Logger
	renderer Renderer

	Scene       *scene.Scene
	Camera      *scene.Camera
	Reticle     *tracker.Reticle
	Tracker     *tracker.Tracker
	World       *physics.World
	Floor       *physics.Body
	FloorVisual *scene.Node
	Registry    *entity.Registry
	Stepper     *stepper.Stepper
	Picker      *interaction.Picker
	Controllers []*interaction.Controller
	Dragger     *interaction.Dragger
	Marker      *interaction.Marker

	session xr.Session
	frames  uint64
}

// Option configures an App.
type Option func(*options)

type options struct {
	trackerOpts []tracker.Option
}

// WithTrackerOptions forwards options to the pose tracker.
func WithTrackerOptions(opts ...tracker.Option) Option {
	return func(o *options) { o.trackerOpts = append(o.trackerOpts, opts...) }
}

// New builds the application state. Initialization order:
// scene and camera, reticle and tracker, physics world and floor, entity registry,
// stepper, controllers and picker, screen dragger and click marker.
func New(cfg config.Config, renderer Renderer, log *zap.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		return nil, errors.New("frame: renderer is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log.Named("frame"), renderer: renderer}

	a.Scene = scene.New()
	a.Scene.Background = backgroundColor
	a.Camera = scene.NewCamera(cfg.Camera.FovY, 1, cfg.Camera.Near, cfg.Camera.Far)

	a.Reticle = tracker.NewReticle()
	a.Scene.Add(a.Reticle.Node)
	a.Tracker = tracker.New(a.Reticle, log, o.trackerOpts...)

	a.World = physics.NewWorld(mgl32.Vec3(cfg.Physics.Gravity), cfg.Physics.Friction)
	a.Floor = physics.NewStaticPlane(cfg.Floor.Height)
	a.World.AddBody(a.Floor)
	a.FloorVisual = scene.NewMesh("floor", scene.Plane{Width: cfg.Floor.Size, Depth: cfg.Floor.Size}, scene.Material{Color: floorColor})
	a.FloorVisual.Position = mgl32.Vec3{0, cfg.Floor.Height, 0}
	a.Scene.Add(a.FloorVisual)

	a.Registry = entity.NewRegistry(entity.Spec{
		Size:  mgl32.Vec3(cfg.Entity.Size),
		Mass:  cfg.Entity.Mass,
		Color: mgl32.Vec3(cfg.Entity.Color),
		Cap:   cfg.Entity.Cap,
	}, a.Scene.World, a.World, log)
	a.Stepper = stepper.New(a.World, a.Registry, a.Scene.World, a.Floor, cfg.Physics.Timestep, log)

	a.Picker = interaction.NewPicker(a.Scene.World, cfg.Controllers.MissLineLength, log)
	for i := 0; i < cfg.Controllers.Count; i++ {
		c := interaction.NewController(i, cfg.Controllers.Modality(i), cfg.Controllers.MissLineLength)
		a.Scene.Add(c.Node)
		a.Controllers = append(a.Controllers, c)
	}

	a.Dragger = interaction.NewDragger(a.Camera, a.Scene.World)
	a.Dragger.Moved = a.syncDraggedBody
	markerTemplate := scene.NewMesh("click-marker", scene.Ring{Inner: markerRadius / 2, Outer: markerRadius}, scene.Material{Color: markerColor})
	a.Marker = interaction.NewMarker(markerTemplate, a.Scene.Root, log)

	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config { return a.cfg }

// SetAspect updates the camera aspect ratio, e.g. after a window resize.
func (a *App) SetAspect(width, height int) {
	if width > 0 && height > 0 {
		a.Camera.Aspect = float32(width) / float32(height)
	}
}

// SessionStart binds a running session; the scene background turns transparent.
func (a *App) SessionStart(s xr.Session) {
	a.session = s
	a.Scene.Transparent = true
	a.log.Info("session started")
}

// SessionEnd is the single teardown path: the hit-test subscription is released so the
// next session subscribes again, held objects are dropped back into the world and the
// background turns opaque.
func (a *App) SessionEnd() {
	if a.session == nil {
		return
	}
	a.Tracker.Reset()
	for _, c := range a.Controllers {
		a.Picker.SelectEnd(c)
	}
	a.Picker.ClearHighlights()
	a.Dragger.PointerUp()
	a.session = nil
	a.Scene.Transparent = false
	a.log.Info("session ended", zap.Uint64("frames", a.frames))
}

// Session returns the bound session, or nil.
func (a *App) Session() xr.Session { return a.session }

// Frame runs one displayed frame. f is nil when the platform has no tracking frame.
// The steps always run in this order and none of them is skipped because another had
// nothing to do:
//  1. pose tracking (only with a frame),
//  2. clearing last frame's highlights,
//  3. hover evaluation per controller,
//  4. physics step and transform sync,
//  5. rendering.
func (a *App) Frame(ctx context.Context, f xr.Frame) {
	a.frames++

	if f != nil {
		if viewer, ok := f.ViewerPose(); ok {
			a.Camera.Pose = viewer
		}
		a.Tracker.Update(ctx, a.session, f)
		a.updateControllers(f.InputSources())
	}

	a.Picker.ClearHighlights()

	for _, c := range a.Controllers {
		a.Picker.Hover(c)
	}

	a.Stepper.Step()

	a.renderer.Render(a.Scene, a.Camera)
}

func (a *App) updateControllers(sources []xr.InputSource) {
	for _, src := range sources {
		if c := a.controller(src.Index); c != nil {
			c.Update(src)
		}
	}
}

func (a *App) controller(index int) *interaction.Controller {
	for _, c := range a.Controllers {
		if c.Index == index {
			return c
		}
	}
	return nil
}

// HandleSelect dispatches a select gesture between frames.
//
// On select start the controller first tries to grab what its ray hits; independently,
// if the reticle is visible and the registry has room, a new entity is spawned at the
// reticle. The grab is evaluated before spawning so a fresh entity is not grabbed by the
// same gesture that created it. On select end the held object is released.
func (a *App) HandleSelect(ev xr.SelectEvent) {
	c := a.controller(ev.Index)
	if c == nil {
		a.log.Debug("select from unknown controller", zap.Int("index", ev.Index))
		return
	}
	switch ev.Phase {
	case xr.SelectStart:
		a.Picker.SelectStart(c)
		a.spawnAtReticle()
	case xr.SelectEnd:
		a.Picker.SelectEnd(c)
	}
}

func (a *App) spawnAtReticle() {
	if !a.Reticle.Visible || !a.Registry.CanCreate() {
		return
	}
	if _, err := a.Registry.Create(a.Reticle.Pose); err != nil {
		a.log.Warn("spawn failed", zap.Error(err))
	}
}

// PlaceMarker drops the click marker at the reticle. It does nothing without a reticle.
func (a *App) PlaceMarker() bool {
	return a.Marker.Place(a.Reticle)
}

// syncDraggedBody keeps a dragged entity's body where the pointer put its visual.
func (a *App) syncDraggedBody(n *scene.Node) {
	if rec, ok := a.Registry.ByVisual(n); ok {
		rec.Body.SetPose(n.WorldPose())
	}
}

// ControllerState is the observable state of one controller.
type ControllerState struct {
	Index      int
	Mode       xr.Modality
	State      interaction.State
	LineLength float32
}

// Snapshot is a detached copy of the observable application state.
type Snapshot struct {
	Frames         uint64
	ReticleVisible bool
	ReticlePose    pose.Pose
	Subscription   tracker.SubscriptionState
	Entities       int
	RegistryState  entity.State
	Bodies         int
	Highlighted    int
	Controllers    []ControllerState
	SessionActive  bool
}

// Snapshot returns the current observable state.
func (a *App) Snapshot() Snapshot {
	s := Snapshot{
		Frames:         a.frames,
		ReticleVisible: a.Reticle.Visible,
		ReticlePose:    a.Reticle.Pose,
		Subscription:   a.Tracker.State(),
		Entities:       a.Registry.Len(),
		RegistryState:  a.Registry.State(),
		Bodies:         a.World.Len(),
		Highlighted:    len(a.Picker.Highlighted()),
		SessionActive:  a.session != nil,
	}
	for _, c := range a.Controllers {
		s.Controllers = append(s.Controllers, ControllerState{
			Index:      c.Index,
			Mode:       c.Mode,
			State:      c.State(),
			LineLength: c.LineLength(),
		})
	}
	return s
}

// Lines formats the snapshot for an on-screen overlay, one fact per line.
func (s Snapshot) Lines() []string {
	reticle := "hidden"
	if s.ReticleVisible {
		p := s.ReticlePose.Position
		reticle = fmt.Sprintf("%.2f %.2f %.2f", p.X(), p.Y(), p.Z())
	}
	session := "ended"
	if s.SessionActive {
		session = "running"
	}
	lines := []string{
		fmt.Sprintf("session: %s  frame %d", session, s.Frames),
		fmt.Sprintf("hit-test: %s  reticle: %s", s.Subscription, reticle),
		fmt.Sprintf("entities: %d (%s)  bodies: %d", s.Entities, s.RegistryState, s.Bodies),
	}
	for _, c := range s.Controllers {
		lines = append(lines, fmt.Sprintf("controller %d: %s %s line %.2f", c.Index, c.Mode, c.State, c.LineLength))
	}
	return lines
}
