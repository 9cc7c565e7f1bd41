package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"arsketch/internal/physics"
	"arsketch/internal/pose"
	"arsketch/internal/scene"
)

var cubeSpec = Spec{Size: mgl32.Vec3{0.2, 0.2, 0.2}, Mass: 1, Color: mgl32.Vec3{0.8, 0.2, 0.2}, Cap: 1}

func newRegistry(t *testing.T, spec Spec) (*Registry, *scene.Scene, *physics.World) {
	t.Helper()
	s := scene.New()
	w := physics.NewWorld(physics.DefaultGravity, physics.DefaultFriction)
	w.AddBody(physics.NewStaticPlane(0))
	return NewRegistry(spec, s.World, w, zaptest.NewLogger(t)), s, w
}

func TestCreateJoinsSceneAndWorld(t *testing.T) {
	r, s, w := newRegistry(t, cubeSpec)
	p := pose.At(mgl32.Vec3{0, 0, -1})

	h, err := r.Create(p)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Index)

	rec, ok := r.Get(h.ID)
	require.True(t, ok)
	assert.Same(t, s.World, rec.Visual.Parent())
	assert.True(t, rec.Visual.LocalPose().ApproxEqual(p))
	assert.Equal(t, p.Position, rec.Body.Position)
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, rec.Body.HalfExtents)
	assert.Equal(t, 2, w.Len())

	byVisual, ok := r.ByVisual(rec.Visual)
	require.True(t, ok)
	assert.Same(t, rec, byVisual)
}

func TestCapGuardsCreation(t *testing.T) {
	r, _, w := newRegistry(t, cubeSpec)
	assert.Equal(t, Empty, r.State())

	for i := 0; i < 5; i++ {
		_, err := r.Create(pose.Identity())
		if i == 0 {
			require.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, ErrCapReached)
	}
	assert.Equal(t, Full, r.State())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, w.Len())
}

func TestUnlimitedCap(t *testing.T) {
	spec := cubeSpec
	spec.Cap = 0
	r, _, _ := newRegistry(t, spec)
	for i := 0; i < 10; i++ {
		_, err := r.Create(pose.Identity())
		require.NoError(t, err)
	}
	assert.Equal(t, Created, r.State())
	assert.True(t, r.CanCreate())
}

func TestSetCapReopensRegistry(t *testing.T) {
	r, _, _ := newRegistry(t, cubeSpec)
	_, err := r.Create(pose.Identity())
	require.NoError(t, err)
	require.False(t, r.CanCreate())

	r.SetCap(3)
	assert.Equal(t, Created, r.State())
	assert.Equal(t, 3, r.Cap())
}

func TestRecordsStayPaired(t *testing.T) {
	spec := cubeSpec
	spec.Cap = 0
	r, s, w := newRegistry(t, spec)
	for i := 0; i < 4; i++ {
		_, err := r.Create(pose.At(mgl32.Vec3{float32(i), 0, 0}))
		require.NoError(t, err)
	}

	visuals := s.World.Children()
	bodies := w.Bodies()[1:]
	require.Len(t, visuals, r.Len())
	require.Len(t, bodies, r.Len())

	i := 0
	r.Each(func(rec *Record) {
		assert.Equal(t, i, rec.Index)
		assert.Same(t, visuals[i], rec.Visual)
		assert.Same(t, bodies[i], rec.Body)
		assert.Equal(t, rec.Visual.Position, rec.Body.Position)
		i++
	})
}

func TestCreateScalesBodyWithPose(t *testing.T) {
	spec := cubeSpec
	spec.Cap = 0
	r, _, _ := newRegistry(t, spec)
	p := pose.Identity()
	p.Scale = mgl32.Vec3{1, 2, 1}
	h, err := r.Create(p)
	require.NoError(t, err)
	rec, _ := r.Get(h.ID)
	assert.InDelta(t, 0.2, rec.Body.HalfExtents.Y(), 1e-6)

	h, err = r.Create(pose.Pose{Orientation: mgl32.QuatIdent()})
	require.NoError(t, err)
	rec, _ = r.Get(h.ID)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, rec.Visual.Scale)
}
