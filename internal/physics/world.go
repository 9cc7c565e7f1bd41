package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultGravity is the gravity used when none is configured (Y-up world).
var DefaultGravity = mgl32.Vec3{0, -9.82, 0}

// DefaultFriction is the global friction coefficient applied on contact.
const DefaultFriction = float32(0.3)

// contactSlop is how far apart two surfaces may be and still count as touching.
const contactSlop = 1e-4

var up = mgl32.Vec3{0, 1, 0}

// Contact describes two bodies that started touching during a step.
type Contact struct {
	A, B  *Body
	Depth float32
}

type pairKey struct{ a, b int }

// World holds a set of bodies and runs a simple fixed-step simulation: gravity,
// semi-implicit Euler integration, then push-out contact resolution.
type World struct {
	Gravity  mgl32.Vec3
	Friction float32

	bodies   []*Body
	nextID   int
	touching map[pairKey]bool
	onBegin  []func(Contact)
}

// NewWorld returns an empty world with the given gravity and global friction.
func NewWorld(gravity mgl32.Vec3, friction float32) *World {
	if friction < 0 {
		friction = 0
	}
	return &World{
		Gravity:  gravity,
		Friction: friction,
		nextID:   1,
		touching: make(map[pairKey]bool),
	}
}

// SetGravity sets the gravity vector (e.g. [0, -9.82, 0] for down in -Y).
func (w *World) SetGravity(g mgl32.Vec3) {
	w.Gravity = g
}

// AddBody appends a body and assigns its ID. Order is preserved.
func (w *World) AddBody(b *Body) {
	b.ID = w.nextID
	w.nextID++
	w.bodies = append(w.bodies, b)
}

// Bodies returns the bodies in insertion order. The slice must not be modified.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Len returns the number of bodies in the world.
func (w *World) Len() int {
	return len(w.bodies)
}

// OnContact registers fn to be called whenever a pair of bodies starts touching.
func (w *World) OnContact(fn func(Contact)) {
	w.onBegin = append(w.onBegin, fn)
}

// Step advances the simulation by dt seconds: apply gravity, integrate, then resolve contacts.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if !b.movable() {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Mul(dt))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}

	now := make(map[pairKey]bool, len(w.touching))
	var begun []Contact
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			a, b := w.bodies[i], w.bodies[j]
			depth, touching := w.resolve(a, b)
			if !touching {
				continue
			}
			key := pairKey{a.ID, b.ID}
			now[key] = true
			if !w.touching[key] {
				begun = append(begun, Contact{A: a, B: b, Depth: depth})
			}
		}
	}
	w.touching = now
	for _, c := range begun {
		for _, fn := range w.onBegin {
			fn(c)
		}
	}
}

// resolve separates a and b if they overlap and reports whether they touch.
func (w *World) resolve(a, b *Body) (float32, bool) {
	switch {
	case a.Shape == ShapePlane && b.Shape == ShapeBox:
		return w.resolvePlane(a, b)
	case a.Shape == ShapeBox && b.Shape == ShapePlane:
		return w.resolvePlane(b, a)
	case a.Shape == ShapeBox && b.Shape == ShapeBox:
		return w.resolveBoxes(a, b)
	default:
		return 0, false
	}
}

// resolvePlane pushes box up out of plane and applies friction to its sliding velocity.
func (w *World) resolvePlane(plane, box *Body) (float32, bool) {
	bottom := box.Position.Y() - box.extentAlong(up)
	depth := plane.Position.Y() - bottom
	if depth < -contactSlop {
		return 0, false
	}
	if depth <= 0 || !box.movable() {
		return depth, true
	}
	box.Position[1] += depth
	if box.Velocity.Y() < 0 {
		impulse := -box.Velocity.Y()
		box.Velocity[1] = 0
		w.applyFriction(box, impulse)
	}
	return depth, true
}

// applyFriction removes up to Friction*normalImpulse of horizontal speed.
func (w *World) applyFriction(b *Body, normalImpulse float32) {
	tangent := mgl32.Vec3{b.Velocity.X(), 0, b.Velocity.Z()}
	speed := tangent.Len()
	if speed == 0 {
		return
	}
	loss := w.Friction * normalImpulse
	if loss >= speed {
		b.Velocity[0], b.Velocity[2] = 0, 0
		return
	}
	scaled := tangent.Mul((speed - loss) / speed)
	b.Velocity[0], b.Velocity[2] = scaled.X(), scaled.Z()
}

// resolveBoxes pushes two overlapping boxes apart along the axis of minimum penetration,
// splitting the correction by mass when both can move.
func (w *World) resolveBoxes(a, b *Body) (float32, bool) {
	ha, hb := a.worldHalf(), b.worldHalf()
	var overlap mgl32.Vec3
	for i := 0; i < 3; i++ {
		overlap[i] = ha[i] + hb[i] - math32.Abs(a.Position[i]-b.Position[i])
		if overlap[i] < -contactSlop {
			return 0, false
		}
	}
	axis := 0
	depth := overlap[0]
	if overlap[1] < depth {
		axis, depth = 1, overlap[1]
	}
	if overlap[2] < depth {
		axis, depth = 2, overlap[2]
	}
	if depth <= 0 {
		return depth, true
	}

	// sign points from a to b along axis.
	sign := float32(1)
	if b.Position[axis] < a.Position[axis] {
		sign = -1
	}
	var moveA, moveB float32
	switch {
	case a.movable() && b.movable():
		total := a.Mass + b.Mass
		moveA = -depth * (b.Mass / total)
		moveB = depth * (a.Mass / total)
	case a.movable():
		moveA = -depth
	case b.movable():
		moveB = depth
	default:
		return depth, true
	}
	a.Position[axis] += moveA * sign
	b.Position[axis] += moveB * sign
	if a.movable() {
		a.Velocity[axis] = 0
	}
	if b.movable() {
		b.Velocity[axis] = 0
	}
	return depth, true
}

func abs(f float32) float32 {
	return math32.Abs(f)
}
