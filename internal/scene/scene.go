package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
)

// Scene is the root of the scene graph. World is the shared group that user-spawned
// objects live in and return to when a controller releases them.
type Scene struct {
	Root  *Node
	World *Node
	// Background is drawn behind everything outside an AR session. Transparent is set
	// while a session runs so the camera feed shows through.
	Background  mgl32.Vec3
	Transparent bool
}

// New returns a scene with an empty world group attached to the root.
func New() *Scene {
	s := &Scene{
		Root:  NewGroup("root"),
		World: NewGroup("world"),
	}
	s.Root.Add(s.World)
	return s
}

// Add puts n directly under the root (outside the pickable world group).
func (s *Scene) Add(n *Node) {
	s.Root.Add(n)
}

// Camera is a perspective camera. FovY is in degrees, like three.js PerspectiveCamera.
type Camera struct {
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
	Pose   pose.Pose
}

// NewCamera returns a camera at the origin looking down -Z.
func NewCamera(fovY, aspect, near, far float32) *Camera {
	return &Camera{FovY: fovY, Aspect: aspect, Near: near, Far: far, Pose: pose.Identity()}
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	p := c.Pose
	p.Scale = mgl32.Vec3{1, 1, 1}
	return p.Matrix().Inv()
}

// Target returns a point one unit in front of the camera.
func (c *Camera) Target() mgl32.Vec3 {
	return c.Pose.Position.Add(c.Pose.TransformDirection(pose.Forward))
}

// ScreenRay unprojects a pointer position (origin top-left, pixels) into a world ray
// starting on the near plane. ok is false for degenerate viewports.
func (c *Camera) ScreenRay(x, y float32, width, height int) (Ray, bool) {
	if width <= 0 || height <= 0 {
		return Ray{}, false
	}
	winY := float32(height) - y
	view, proj := c.View(), c.Projection()
	near, err := mgl32.UnProject(mgl32.Vec3{x, winY, 0}, view, proj, 0, 0, width, height)
	if err != nil {
		return Ray{}, false
	}
	far, err := mgl32.UnProject(mgl32.Vec3{x, winY, 1}, view, proj, 0, 0, width, height)
	if err != nil {
		return Ray{}, false
	}
	dir := far.Sub(near)
	if dir.Len() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: near, Direction: dir.Normalize()}, true
}
