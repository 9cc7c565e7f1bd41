package simxr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
	"arsketch/internal/xr"
)

// maxPitch keeps the rig from flipping over the vertical.
const maxPitch = 89 * math32.Pi / 180

// DefaultHandOffset places the second controller low and to the right of the eyes.
var DefaultHandOffset = mgl32.Vec3{0.2, -0.25, -0.3}

// Rig is a walking viewer with a head-locked first controller and a hand-held second one.
// Yaw turns about +Y; pitch tilts about the rig's right axis, both in radians.
type Rig struct {
	Position   mgl32.Vec3
	Yaw, Pitch float32
	HandOffset mgl32.Vec3
	Modes      []xr.Modality
}

// NewRig returns a rig standing at the origin with its eyes at eyeHeight, looking down -Z
// and tilted down by pitchDeg degrees.
func NewRig(eyeHeight, pitchDeg float32, modes ...xr.Modality) *Rig {
	r := &Rig{
		Position:   mgl32.Vec3{0, eyeHeight, 0},
		HandOffset: DefaultHandOffset,
		Modes:      modes,
	}
	r.Look(0, -mgl32.DegToRad(pitchDeg))
	return r
}

// Look turns the rig. Pitch is clamped short of straight up and straight down.
func (r *Rig) Look(dyaw, dpitch float32) {
	r.Yaw = math32.Mod(r.Yaw+dyaw, 2*math32.Pi)
	r.Pitch = mgl32.Clamp(r.Pitch+dpitch, -maxPitch, maxPitch)
}

// Move walks the rig relative to its heading; pitch does not affect walking.
func (r *Rig) Move(forward, right, up float32) {
	heading := mgl32.QuatRotate(r.Yaw, mgl32.Vec3{0, 1, 0})
	f := heading.Rotate(pose.Forward)
	side := heading.Rotate(mgl32.Vec3{1, 0, 0})
	r.Position = r.Position.Add(f.Mul(forward)).Add(side.Mul(right)).Add(mgl32.Vec3{0, up, 0})
}

func (r *Rig) orientation() mgl32.Quat {
	yaw := mgl32.QuatRotate(r.Yaw, mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(r.Pitch, mgl32.Vec3{1, 0, 0})
	return yaw.Mul(pitch).Normalize()
}

// Viewer returns the eye pose.
func (r *Rig) Viewer() pose.Pose {
	p := pose.At(r.Position)
	p.Orientation = r.orientation()
	return p
}

// Inputs returns one input source per configured modality: index 0 looks along the eye
// ray, every further one is held at HandOffset in the eye frame.
func (r *Rig) Inputs() []xr.InputSource {
	viewer := r.Viewer()
	out := make([]xr.InputSource, 0, len(r.Modes))
	for i, m := range r.Modes {
		p := viewer
		if i > 0 {
			p.Position = viewer.TransformPoint(r.HandOffset)
		}
		out = append(out, xr.InputSource{Index: i, Mode: m, Pose: p})
	}
	return out
}

// Frame builds a tracking frame for the rig's current pose from session s.
func (r *Rig) Frame(s *Session) *Frame {
	return s.Frame(r.Viewer(), r.Inputs()...)
}
