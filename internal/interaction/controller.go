package interaction

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
	"arsketch/internal/scene"
	"arsketch/internal/xr"
)

// State is where a controller is in the hover/select cycle.
type State int

const (
	Idle State = iota
	Hover
	Selected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hover:
		return "hover"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

// DefaultMissLength is the length of a controller's targeting line when it hits nothing.
const DefaultMissLength = float32(5)

var lineColor = mgl32.Vec3{1, 1, 1}

// Controller is one input source: a scene node that follows the platform's pose, a
// targeting line along its -Z, and the object it hovers and holds.
type Controller struct {
	Index int
	Mode  xr.Modality
	Node  *scene.Node
	Line  *scene.Node

	hovered  *scene.Node
	selected *scene.Node
}

// NewController returns an idle controller whose line has length missLength.
func NewController(index int, mode xr.Modality, missLength float32) *Controller {
	node := scene.NewGroup(fmt.Sprintf("controller-%d", index))
	line := scene.NewLine(fmt.Sprintf("controller-%d-line", index), lineColor)
	line.Scale = mgl32.Vec3{1, 1, missLength}
	node.Add(line)
	return &Controller{Index: index, Mode: mode, Node: node, Line: line}
}

// State derives the controller's state from what it hovers and holds.
func (c *Controller) State() State {
	switch {
	case c.selected != nil:
		return Selected
	case c.hovered != nil:
		return Hover
	default:
		return Idle
	}
}

// Hovered returns the object under the ray after the last hover pass, or nil.
func (c *Controller) Hovered() *scene.Node { return c.hovered }

// Selected returns the held object, or nil.
func (c *Controller) Selected() *scene.Node { return c.selected }

// Update copies the platform's per-frame input state onto the controller.
func (c *Controller) Update(src xr.InputSource) {
	c.Mode = src.Mode
	c.Node.SetLocalPose(src.Pose)
}

// Ray returns the controller's pointing ray in world space.
func (c *Controller) Ray() scene.Ray {
	return scene.RayFromPose(c.Node.WorldPose())
}

// LineLength returns the current length of the targeting line.
func (c *Controller) LineLength() float32 {
	return c.Line.Scale.Z()
}

func (c *Controller) setLineLength(l float32) {
	c.Line.Scale[2] = l
}

// Pose returns the controller's world pose.
func (c *Controller) Pose() pose.Pose {
	return c.Node.WorldPose()
}
