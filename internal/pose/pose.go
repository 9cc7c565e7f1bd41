package pose

import (
	"github.com/go-gl/mathgl/mgl32"
)

// epsilon is the default tolerance used by ApproxEqual.
const epsilon = 1e-4

// Forward is the local direction a pose "looks" along (-Z, right-handed, Y-up).
var Forward = mgl32.Vec3{0, 0, -1}

// Pose is a rigid placement in world space: translation, rotation and a per-axis scale.
// The zero value is not a valid pose; use Identity or At.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
}

// Identity returns the pose at the origin with no rotation and unit scale.
func Identity() Pose {
	return Pose{
		Orientation: mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// At returns an identity-rotation, unit-scale pose translated to position.
func At(position mgl32.Vec3) Pose {
	p := Identity()
	p.Position = position
	return p
}

// FromMatrix decomposes a TRS matrix (e.g. a hit-test transform) into a Pose.
// A negative determinant flips the X scale so the rotation part stays proper.
func FromMatrix(m mgl32.Mat4) Pose {
	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if m.Det() < 0 {
		sx = -sx
	}
	p := Pose{
		Position: m.Col(3).Vec3(),
		Scale:    mgl32.Vec3{sx, sy, sz},
	}
	if sx == 0 || sy == 0 || sz == 0 {
		p.Orientation = mgl32.QuatIdent()
		return p
	}
	rot := mgl32.Mat4FromCols(
		c0.Mul(1/sx).Vec4(0),
		c1.Mul(1/sy).Vec4(0),
		c2.Mul(1/sz).Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)
	p.Orientation = mgl32.Mat4ToQuat(rot).Normalize()
	return p
}

// Matrix composes the pose as T * R * S.
func (p Pose) Matrix() mgl32.Mat4 {
	t := mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2])
	s := mgl32.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2])
	return t.Mul4(p.Orientation.Normalize().Mat4()).Mul4(s)
}

// Mul returns p composed with child, i.e. child expressed in p's frame moved to world.
func (p Pose) Mul(child Pose) Pose {
	return FromMatrix(p.Matrix().Mul4(child.Matrix()))
}

// Inverse returns the pose that undoes p.
func (p Pose) Inverse() Pose {
	return FromMatrix(p.Matrix().Inv())
}

// TransformPoint maps a point from p's local frame to world.
func (p Pose) TransformPoint(v mgl32.Vec3) mgl32.Vec3 {
	return p.Matrix().Mul4x1(v.Vec4(1)).Vec3()
}

// TransformDirection rotates a direction by p's orientation (scale is ignored).
func (p Pose) TransformDirection(v mgl32.Vec3) mgl32.Vec3 {
	return p.Orientation.Normalize().Rotate(v)
}

// ApproxEqual reports whether two poses match within a small tolerance.
// q and -q describe the same rotation and compare equal.
func (p Pose) ApproxEqual(o Pose) bool {
	return p.ApproxEqualThreshold(o, epsilon)
}

// ApproxEqualThreshold is ApproxEqual with an explicit tolerance.
func (p Pose) ApproxEqualThreshold(o Pose, eps float32) bool {
	if !p.Position.ApproxEqualThreshold(o.Position, eps) {
		return false
	}
	if !p.Scale.ApproxEqualThreshold(o.Scale, eps) {
		return false
	}
	q1, q2 := p.Orientation.Normalize(), o.Orientation.Normalize()
	if q1.Dot(q2) < 0 {
		q2 = q2.Scale(-1)
	}
	return q1.ApproxEqualThreshold(q2, eps)
}
