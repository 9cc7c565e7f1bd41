package simxr

import (
	"context"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arsketch/internal/pose"
	"arsketch/internal/xr"
)

func TestRigLooksDownOntoFloor(t *testing.T) {
	ctx := context.Background()
	s := NewSession(0)
	space, err := s.RequestReferenceSpace(ctx, xr.ReferenceSpaceViewer)
	require.NoError(t, err)
	src, err := s.RequestHitTestSource(ctx, space)
	require.NoError(t, err)

	r := NewRig(1.6, 45, xr.ModalityTrackedPointer)
	results := r.Frame(s).HitTestResults(src)
	require.Len(t, results, 1)
	p, ok := results[0].Pose(s.LocalSpace())
	require.True(t, ok)
	assert.True(t, p.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1.6}, 1e-4), "%v", p.Position)
}

func TestRigPitchIsClamped(t *testing.T) {
	r := NewRig(1.6, 0)
	r.Look(0, 10)
	assert.InDelta(t, maxPitch, r.Pitch, 1e-6)
	r.Look(0, -20)
	assert.InDelta(t, -maxPitch, r.Pitch, 1e-6)
}

func TestRigMoveFollowsHeading(t *testing.T) {
	r := NewRig(1.6, 30)
	r.Look(math32.Pi/2, 0)
	r.Move(1, 0, 0)
	assert.True(t, r.Position.ApproxEqualThreshold(mgl32.Vec3{-1, 1.6, 0}, 1e-4), "%v", r.Position)

	r.Move(0, 0, 0.5)
	assert.InDelta(t, 2.1, r.Position.Y(), 1e-5)
}

func TestRigInputs(t *testing.T) {
	r := NewRig(1.5, 0, xr.ModalityGaze, xr.ModalityTrackedPointer)
	inputs := r.Inputs()
	require.Len(t, inputs, 2)

	assert.Equal(t, 0, inputs[0].Index)
	assert.Equal(t, xr.ModalityGaze, inputs[0].Mode)
	assert.True(t, inputs[0].Pose.ApproxEqual(r.Viewer()))

	assert.Equal(t, 1, inputs[1].Index)
	want := mgl32.Vec3{0.2, 1.25, -0.3}
	assert.True(t, inputs[1].Pose.Position.ApproxEqualThreshold(want, 1e-5), "%v", inputs[1].Pose.Position)
	assert.True(t, inputs[1].Pose.TransformDirection(pose.Forward).ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))
}
