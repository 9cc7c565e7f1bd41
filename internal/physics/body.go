package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
)

// Shape is the collision primitive of a body.
type Shape int

const (
	// ShapePlane is an infinite horizontal plane at Position.Y() with normal +Y.
	ShapePlane Shape = iota
	// ShapeBox is an oriented box with HalfExtents.
	ShapeBox
)

func (s Shape) String() string {
	if s == ShapePlane {
		return "plane"
	}
	return "box"
}

// Body is a rigid body with position, orientation and velocity.
// Static bodies have infinite mass and never move. Kinematic bodies are moved by the
// caller (e.g. while held by a controller); they push dynamic bodies but ignore gravity.
type Body struct {
	ID          int
	Shape       Shape
	HalfExtents mgl32.Vec3
	Mass        float32
	Static      bool
	Kinematic   bool

	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Velocity    mgl32.Vec3
}

// NewStaticPlane returns the floor: an immovable plane at the given height.
func NewStaticPlane(height float32) *Body {
	return &Body{
		Shape:       ShapePlane,
		Static:      true,
		Position:    mgl32.Vec3{0, height, 0},
		Orientation: mgl32.QuatIdent(),
	}
}

// NewBox returns a dynamic box placed at p. mass <= 0 falls back to 1.
func NewBox(p pose.Pose, halfExtents mgl32.Vec3, mass float32) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{
		Shape:       ShapeBox,
		HalfExtents: halfExtents,
		Mass:        mass,
		Position:    p.Position,
		Orientation: p.Orientation.Normalize(),
	}
}

// Pose returns the body's transform with unit scale.
func (b *Body) Pose() pose.Pose {
	return pose.Pose{Position: b.Position, Orientation: b.Orientation, Scale: mgl32.Vec3{1, 1, 1}}
}

// SetPose teleports the body and clears its velocity.
func (b *Body) SetPose(p pose.Pose) {
	b.Position = p.Position
	b.Orientation = p.Orientation.Normalize()
	b.Velocity = mgl32.Vec3{}
}

// movable reports whether the solver may integrate and push this body.
func (b *Body) movable() bool {
	return !b.Static && !b.Kinematic
}

// extentAlong returns the half size of the body's box projected onto axis.
func (b *Body) extentAlong(axis mgl32.Vec3) float32 {
	var e float32
	for i := 0; i < 3; i++ {
		var local mgl32.Vec3
		local[i] = 1
		e += abs(axis.Dot(b.Orientation.Rotate(local))) * b.HalfExtents[i]
	}
	return e
}

// worldHalf returns the half extents of the body's world-space AABB.
func (b *Body) worldHalf() mgl32.Vec3 {
	return mgl32.Vec3{
		b.extentAlong(mgl32.Vec3{1, 0, 0}),
		b.extentAlong(mgl32.Vec3{0, 1, 0}),
		b.extentAlong(mgl32.Vec3{0, 0, 1}),
	}
}
