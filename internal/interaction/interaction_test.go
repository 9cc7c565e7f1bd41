package interaction

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"arsketch/internal/pose"
	"arsketch/internal/scene"
	"arsketch/internal/tracker"
	"arsketch/internal/xr"
)

type fixture struct {
	scene  *scene.Scene
	picker *Picker
	a, b   *Controller
	obj    *scene.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := scene.New()
	obj := scene.NewMesh("cube", scene.Box{Size: mgl32.Vec3{0.2, 0.2, 0.2}}, scene.Material{Color: mgl32.Vec3{0.5, 0.5, 0.5}})
	obj.Position = mgl32.Vec3{0, 1, -2}
	s.World.Add(obj)

	a := NewController(0, xr.ModalityTrackedPointer, DefaultMissLength)
	b := NewController(1, xr.ModalityTrackedPointer, DefaultMissLength)
	s.Add(a.Node)
	s.Add(b.Node)

	a.Update(xr.InputSource{Index: 0, Mode: xr.ModalityTrackedPointer, Pose: pose.At(mgl32.Vec3{0, 1, 0})})
	away := pose.At(mgl32.Vec3{0.2, 1, 0})
	away.Orientation = mgl32.QuatRotate(mgl32.DegToRad(180), mgl32.Vec3{0, 1, 0})
	b.Update(xr.InputSource{Index: 1, Mode: xr.ModalityTrackedPointer, Pose: away})

	return &fixture{
		scene:  s,
		picker: NewPicker(s.World, DefaultMissLength, zaptest.NewLogger(t)),
		a:      a,
		b:      b,
		obj:    obj,
	}
}

func (f *fixture) hoverPass() {
	f.picker.ClearHighlights()
	f.picker.Hover(f.a)
	f.picker.Hover(f.b)
}

func TestHoverHighlightsNearestOnce(t *testing.T) {
	f := newFixture(t)
	f.hoverPass()

	assert.Equal(t, []*scene.Node{f.obj}, f.picker.Highlighted())
	assert.Equal(t, float32(1), f.obj.Material.Emissive.X())
	assert.Equal(t, Hover, f.a.State())
	assert.Same(t, f.obj, f.a.Hovered())
	assert.InDelta(t, 1.9, f.a.LineLength(), 1e-4)

	assert.Equal(t, Idle, f.b.State())
	assert.Equal(t, DefaultMissLength, f.b.LineLength())
}

func TestBothControllersOnSameObjectHighlightOnce(t *testing.T) {
	f := newFixture(t)
	f.b.Update(xr.InputSource{Index: 1, Pose: pose.At(mgl32.Vec3{0.05, 1, 0})})
	f.hoverPass()

	assert.Len(t, f.picker.Highlighted(), 1)
	assert.Same(t, f.obj, f.b.Hovered())
}

func TestHighlightClearedWhenRayMovesAway(t *testing.T) {
	f := newFixture(t)
	f.hoverPass()
	require.Equal(t, float32(1), f.obj.Material.Emissive.X())

	f.a.Update(xr.InputSource{Index: 0, Pose: pose.At(mgl32.Vec3{3, 1, 0})})
	f.hoverPass()
	assert.Equal(t, float32(0), f.obj.Material.Emissive.X())
	assert.Empty(t, f.picker.Highlighted())
	assert.Equal(t, Idle, f.a.State())
	assert.Equal(t, DefaultMissLength, f.a.LineLength())
}

func TestScreenModeNeverHovers(t *testing.T) {
	f := newFixture(t)
	f.a.Update(xr.InputSource{Index: 0, Mode: xr.ModalityScreen, Pose: pose.At(mgl32.Vec3{0, 1, 0})})
	f.hoverPass()

	assert.Empty(t, f.picker.Highlighted())
	assert.Equal(t, Idle, f.a.State())
}

func TestSelectAttachesAndReleaseReturnsToWorld(t *testing.T) {
	f := newFixture(t)
	before := f.obj.WorldPose()

	got := f.picker.SelectStart(f.a)
	require.Same(t, f.obj, got)
	assert.Same(t, f.a.Node, f.obj.Parent())
	assert.Equal(t, Selected, f.a.State())
	assert.Equal(t, float32(1), f.obj.Material.Emissive.Z())
	assert.True(t, f.obj.WorldPose().ApproxEqual(before), "attach must not move the object")

	// Move the controller while holding: the object follows rigidly.
	moved := pose.At(mgl32.Vec3{0.5, 1.2, 0})
	f.a.Update(xr.InputSource{Index: 0, Pose: moved})
	duringHold := f.obj.WorldPose()
	assert.True(t, duringHold.Position.ApproxEqualThreshold(mgl32.Vec3{0.5, 1.2, -2}, 1e-4), "%v", duringHold.Position)

	released := f.picker.SelectEnd(f.a)
	require.Same(t, f.obj, released)
	assert.Same(t, f.scene.World, f.obj.Parent())
	assert.Equal(t, float32(0), f.obj.Material.Emissive.Z())
	assert.Equal(t, Idle, f.a.State())
	assert.True(t, f.obj.WorldPose().ApproxEqual(duringHold), "detach must not move the object")
}

func TestSelectWithoutHitDoesNothing(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.picker.SelectStart(f.b))
	assert.Nil(t, f.picker.SelectEnd(f.b))
	assert.Same(t, f.scene.World, f.obj.Parent())
}

func TestHeldObjectIsNotPickableByOtherController(t *testing.T) {
	f := newFixture(t)
	require.NotNil(t, f.picker.SelectStart(f.a))

	f.b.Update(xr.InputSource{Index: 1, Pose: pose.At(mgl32.Vec3{0, 1, 0})})
	assert.Nil(t, f.picker.SelectStart(f.b))
	assert.Same(t, f.a.Node, f.obj.Parent())
}

func TestHoldingControllerSkipsHover(t *testing.T) {
	f := newFixture(t)
	require.NotNil(t, f.picker.SelectStart(f.a))
	f.hoverPass()
	assert.Equal(t, Selected, f.a.State())
	assert.Empty(t, f.picker.Highlighted())
}

func TestDraggerMovesPickedObject(t *testing.T) {
	s := scene.New()
	obj := scene.NewMesh("cube", scene.Box{Size: mgl32.Vec3{0.5, 0.5, 0.5}}, scene.Material{})
	obj.Position = mgl32.Vec3{0, 0, -3}
	s.World.Add(obj)

	cam := scene.NewCamera(70, 1, 0.01, 20)
	d := NewDragger(cam, s.World)
	var moved []*scene.Node
	d.Moved = func(n *scene.Node) { moved = append(moved, n) }

	assert.False(t, d.PointerMove(60, 50, 100, 100), "move without a drag is ignored")
	assert.False(t, d.PointerDown(0, 0, 100, 100), "corner misses the cube")

	require.True(t, d.PointerDown(50, 50, 100, 100))
	require.Same(t, obj, d.Dragging())
	require.True(t, d.PointerMove(60, 50, 100, 100))
	assert.Greater(t, obj.Position.X(), float32(0))
	assert.InDelta(t, -3, obj.Position.Z(), 1e-3)
	assert.Equal(t, []*scene.Node{obj}, moved)

	d.PointerUp()
	assert.Nil(t, d.Dragging())
}

func TestMarkerNeedsVisibleReticle(t *testing.T) {
	s := scene.New()
	template := scene.NewMesh("marker", scene.Ring{Inner: 0.02, Outer: 0.04}, scene.Material{Color: mgl32.Vec3{0, 1, 0}})
	m := NewMarker(template, s.Root, nil)
	r := tracker.NewReticle()

	assert.False(t, m.Place(r))
	assert.Nil(t, m.Node())

	r.Show(pose.At(mgl32.Vec3{1, 0, -1}))
	require.True(t, m.Place(r))
	assert.Same(t, s.Root, m.Node().Parent())
	assert.Equal(t, mgl32.Vec3{1, 0, -1}, m.Node().Position)
	assert.NotSame(t, template.Material, m.Node().Material)
}

func TestMarkerFallsBackWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := scene.New()
	m := NewMarker(nil, s.Root, zap.New(core))
	r := tracker.NewReticle()
	r.Show(pose.Identity())

	require.True(t, m.Place(r))
	require.True(t, m.Place(r))
	_, isBox := m.Node().Geometry.(scene.Box)
	assert.True(t, isBox)
	assert.Equal(t, 1, logs.Len())
}
