package simxr

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arsketch/internal/pose"
	"arsketch/internal/xr"
)

func lookingDown(height float32) pose.Pose {
	p := pose.At(mgl32.Vec3{0, height, 0})
	p.Orientation = mgl32.QuatRotate(mgl32.DegToRad(-90), mgl32.Vec3{1, 0, 0})
	return p
}

func TestHitTestCastsOntoFloor(t *testing.T) {
	ctx := context.Background()
	s := NewSession(0)
	space, err := s.RequestReferenceSpace(ctx, xr.ReferenceSpaceViewer)
	require.NoError(t, err)
	src, err := s.RequestHitTestSource(ctx, space)
	require.NoError(t, err)

	results := s.Frame(lookingDown(1.5)).HitTestResults(src)
	require.Len(t, results, 1)
	p, ok := results[0].Pose(s.LocalSpace())
	require.True(t, ok)
	assert.True(t, p.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, 0}, 1e-4), "%v", p.Position)

	assert.Empty(t, s.Frame(pose.At(mgl32.Vec3{0, 1.5, 0})).HitTestResults(src), "horizontal ray never meets the floor")
}

func TestEndCancelsSources(t *testing.T) {
	ctx := context.Background()
	s := NewSession(0)
	space, _ := s.RequestReferenceSpace(ctx, xr.ReferenceSpaceViewer)
	src, _ := s.RequestHitTestSource(ctx, space)

	s.End()
	assert.True(t, src.(*Source).Cancelled())
	assert.Empty(t, s.Frame(lookingDown(1)).HitTestResults(src))

	_, err := s.RequestHitTestSource(ctx, space)
	assert.ErrorIs(t, err, xr.ErrSessionEnded)
}

func TestFailNextHitTestRequest(t *testing.T) {
	ctx := context.Background()
	s := NewSession(0)
	boom := errors.New("boom")
	s.FailNextHitTestRequest(boom)

	_, err := s.RequestHitTestSource(ctx, s.LocalSpace())
	assert.ErrorIs(t, err, boom)
	_, err = s.RequestHitTestSource(ctx, s.LocalSpace())
	assert.NoError(t, err)
	assert.Equal(t, 2, s.HitTestRequests())
}

func TestScriptedFrame(t *testing.T) {
	s := NewSession(0)
	src, _ := s.RequestHitTestSource(context.Background(), s.LocalSpace())
	f := &Frame{Scripted: true}
	assert.Empty(t, f.HitTestResults(src))

	f.Hits = []pose.Pose{pose.At(mgl32.Vec3{1, 0, 0}), pose.At(mgl32.Vec3{2, 0, 0})}
	assert.Len(t, f.HitTestResults(src), 2)
}
