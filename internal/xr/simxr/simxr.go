// Package simxr is an in-process AR platform: the real world is a single horizontal
// floor plane, hit-tests cast the viewer's forward ray onto it. It backs the desktop
// preview and the tests.
package simxr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
	"arsketch/internal/scene"
	"arsketch/internal/xr"
)

var floorNormal = mgl32.Vec3{0, 1, 0}

// Space is a reference space handed out by Session.
type Space struct {
	kind xr.ReferenceSpaceType
}

func (s *Space) Type() xr.ReferenceSpaceType { return s.kind }

// Source is a hit-test subscription.
type Source struct {
	space     xr.ReferenceSpace
	cancelled atomic.Bool
}

// Cancel marks the subscription dead; frames return no results for it afterwards.
func (s *Source) Cancel() { s.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (s *Source) Cancelled() bool { return s.cancelled.Load() }

// Session simulates an AR session over a floor at FloorHeight.
type Session struct {
	FloorHeight float32

	mu       sync.Mutex
	ended    bool
	failNext error
	sources  []*Source
	local    *Space
	requests int
}

// NewSession returns a running session.
func NewSession(floorHeight float32) *Session {
	return &Session{
		FloorHeight: floorHeight,
		local:       &Space{kind: xr.ReferenceSpaceLocal},
	}
}

func (s *Session) LocalSpace() xr.ReferenceSpace { return s.local }

func (s *Session) RequestReferenceSpace(ctx context.Context, t xr.ReferenceSpaceType) (xr.ReferenceSpace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, xr.ErrSessionEnded
	}
	if t == xr.ReferenceSpaceLocal {
		return s.local, nil
	}
	return &Space{kind: t}, nil
}

func (s *Session) RequestHitTestSource(ctx context.Context, space xr.ReferenceSpace) (xr.HitTestSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if s.ended {
		return nil, xr.ErrSessionEnded
	}
	if err := s.failNext; err != nil {
		s.failNext = nil
		return nil, fmt.Errorf("request hit-test source: %w", err)
	}
	src := &Source{space: space}
	s.sources = append(s.sources, src)
	return src, nil
}

// FailNextHitTestRequest makes the next RequestHitTestSource return err.
func (s *Session) FailNextHitTestRequest(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// HitTestRequests returns how many hit-test sources were requested.
func (s *Session) HitTestRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// End stops the session and cancels every source it handed out.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	for _, src := range s.sources {
		src.Cancel()
	}
	s.sources = nil
}

// Ended reports whether End was called.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Frame returns a tracking frame for the given viewer pose and controllers.
func (s *Session) Frame(viewer pose.Pose, inputs ...xr.InputSource) *Frame {
	return &Frame{Viewer: viewer, Tracking: true, Inputs: inputs, FloorHeight: s.FloorHeight}
}

// Frame is one simulated tracking frame. When Scripted is set, Hits are returned
// verbatim instead of casting against the floor.
type Frame struct {
	Viewer      pose.Pose
	Tracking    bool
	Inputs      []xr.InputSource
	FloorHeight float32

	Scripted bool
	Hits     []pose.Pose
}

func (f *Frame) ViewerPose() (pose.Pose, bool) {
	return f.Viewer, f.Tracking
}

func (f *Frame) InputSources() []xr.InputSource {
	return f.Inputs
}

func (f *Frame) HitTestResults(src xr.HitTestSource) []xr.HitTestResult {
	s, ok := src.(*Source)
	if !ok || s.Cancelled() {
		return nil
	}
	if f.Scripted {
		out := make([]xr.HitTestResult, 0, len(f.Hits))
		for _, h := range f.Hits {
			out = append(out, Result{pose: h})
		}
		return out
	}
	if !f.Tracking {
		return nil
	}
	ray := scene.RayFromPose(f.Viewer)
	point, _, hit := scene.IntersectPlane(ray, mgl32.Vec3{0, f.FloorHeight, 0}, floorNormal)
	if !hit {
		return nil
	}
	return []xr.HitTestResult{Result{pose: pose.At(point)}}
}

// Result is a simulated hit.
type Result struct {
	pose pose.Pose
}

func (r Result) Pose(space xr.ReferenceSpace) (pose.Pose, bool) {
	if space == nil {
		return pose.Pose{}, false
	}
	return r.pose, true
}
