package stepper

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"arsketch/internal/entity"
	"arsketch/internal/physics"
	"arsketch/internal/pose"
	"arsketch/internal/scene"
)

type rig struct {
	scene    *scene.Scene
	world    *physics.World
	floor    *physics.Body
	registry *entity.Registry
	stepper  *Stepper
	logs     *observer.ObservedLogs
}

func newRig(t *testing.T) *rig {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	s := scene.New()
	w := physics.NewWorld(physics.DefaultGravity, physics.DefaultFriction)
	floor := physics.NewStaticPlane(0)
	w.AddBody(floor)
	reg := entity.NewRegistry(entity.Spec{Size: mgl32.Vec3{0.2, 0.2, 0.2}, Mass: 1, Cap: 0}, s.World, w, log)
	return &rig{
		scene:    s,
		world:    w,
		floor:    floor,
		registry: reg,
		stepper:  New(w, reg, s.World, floor, 0, log),
		logs:     logs,
	}
}

func (r *rig) create(t *testing.T, p pose.Pose) *entity.Record {
	t.Helper()
	h, err := r.registry.Create(p)
	require.NoError(t, err)
	rec, ok := r.registry.Get(h.ID)
	require.True(t, ok)
	return rec
}

func TestDefaultTimestep(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, DefaultTimestep, r.stepper.Timestep())
}

func TestEntityFallsToFloorAndStops(t *testing.T) {
	r := newRig(t)
	rec := r.create(t, pose.At(mgl32.Vec3{0, 2, 0}))

	prev := rec.Visual.Position.Y()
	for i := 0; i < 120; i++ {
		r.stepper.Step()
		y := rec.Visual.Position.Y()
		require.LessOrEqual(t, y, prev+1e-6)
		assert.Equal(t, rec.Body.Position, rec.Visual.Position, "visual must mirror body after every step")
		prev = y
	}
	assert.InDelta(t, 0.1, rec.Visual.Position.Y(), 1e-4)
	assert.Equal(t, uint64(120), r.stepper.Steps())
	assert.Equal(t, 1, r.logs.FilterMessage("body hit the floor").Len())
}

func TestSyncUsesWorldPoseUnderMovedGroup(t *testing.T) {
	r := newRig(t)
	r.scene.World.Position = mgl32.Vec3{0.5, 1, 0}
	r.scene.World.Orientation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	rec := r.create(t, pose.At(mgl32.Vec3{0, 2, 0}))
	require.True(t, rec.Visual.WorldPose().Position.ApproxEqualThreshold(rec.Body.Position, 1e-5))

	for i := 0; i < 120; i++ {
		r.stepper.Step()
		got := rec.Visual.WorldPose().Position
		require.True(t, got.ApproxEqualThreshold(rec.Body.Position, 1e-4), "step %d: visual %v body %v", i, got, rec.Body.Position)
	}
	assert.InDelta(t, 0.1, rec.Body.Position.Y(), 1e-4)
	assert.InDelta(t, 0.1, rec.Visual.WorldPose().Position.Y(), 1e-4)
	assert.True(t, rec.Visual.LocalPose().Position.ApproxEqualThreshold(mgl32.Vec3{0, -0.9, -0.5}, 1e-4), "%v", rec.Visual.Position)
}

func TestStepIsFixedIncrement(t *testing.T) {
	r := newRig(t)
	rec := r.create(t, pose.At(mgl32.Vec3{0, 10, 0}))
	r.stepper.Step()

	dt := DefaultTimestep
	g := physics.DefaultGravity.Y()
	assert.InDelta(t, 10+g*dt*dt, rec.Visual.Position.Y(), 1e-5)
}

func TestHeldEntityFollowsControllerAndReleasesWithoutJump(t *testing.T) {
	r := newRig(t)
	rec := r.create(t, pose.At(mgl32.Vec3{0, 1, -1}))

	hand := scene.NewGroup("controller-0")
	hand.Position = mgl32.Vec3{0, 1, 0}
	r.scene.Add(hand)
	hand.Attach(rec.Visual)

	for i := 0; i < 10; i++ {
		hand.Position = hand.Position.Add(mgl32.Vec3{0.01, 0, 0})
		r.stepper.Step()
	}
	require.True(t, rec.Body.Kinematic)
	held := rec.Visual.WorldPose()
	assert.InDelta(t, 0.1, held.Position.X(), 1e-5)
	assert.InDelta(t, 1, held.Position.Y(), 1e-5, "held entity must not fall")
	assert.True(t, rec.Body.Position.ApproxEqualThreshold(held.Position, 1e-5))

	// Move once more, then release before the next step.
	hand.Position = hand.Position.Add(mgl32.Vec3{0.05, 0, 0})
	beforeRelease := rec.Visual.WorldPose()
	r.scene.World.Attach(rec.Visual)
	assert.True(t, rec.Visual.WorldPose().ApproxEqualThreshold(beforeRelease, 1e-5))

	r.stepper.Step()
	assert.False(t, rec.Body.Kinematic)
	assert.InDelta(t, beforeRelease.Position.X(), rec.Visual.Position.X(), 1e-5)
	assert.Less(t, rec.Visual.Position.Y(), beforeRelease.Position.Y())
	assert.Greater(t, rec.Visual.Position.Y(), beforeRelease.Position.Y()-0.01)
}
