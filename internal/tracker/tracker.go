package tracker

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"arsketch/internal/pose"
	"arsketch/internal/scene"
	"arsketch/internal/xr"
)

// SubscriptionState is the lifecycle of the hit-test subscription.
type SubscriptionState int

const (
	NotRequested SubscriptionState = iota
	Requested
	Resolved
)

func (s SubscriptionState) String() string {
	switch s {
	case NotRequested:
		return "not-requested"
	case Requested:
		return "requested"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Reticle sizes, in meters.
const (
	reticleInner = 0.15
	reticleOuter = 0.2
)

// Reticle marks the best-known surface pose under the viewer's ray.
// Node mirrors Visible and Pose so the renderer can draw it.
type Reticle struct {
	Visible bool
	Pose    pose.Pose
	Node    *scene.Node
}

// NewReticle returns a hidden reticle with a ring node.
func NewReticle() *Reticle {
	n := scene.NewMesh("reticle", scene.Ring{Inner: reticleInner, Outer: reticleOuter}, scene.Material{Color: mgl32.Vec3{1, 1, 1}})
	n.Visible = false
	return &Reticle{Pose: pose.Identity(), Node: n}
}

// Show makes the reticle visible at p.
func (r *Reticle) Show(p pose.Pose) {
	r.Visible = true
	r.Pose = p
	r.Node.Visible = true
	r.Node.SetLocalPose(p)
}

// Hide hides the reticle; its last pose is kept.
func (r *Reticle) Hide() {
	r.Visible = false
	r.Node.Visible = false
}

// reply is what a finished subscription request posts back to the frame loop.
type reply struct {
	generation int
	source     xr.HitTestSource
	err        error
}

// Tracker polls hit-test results once per frame and keeps the reticle on the first hit.
// Update and Reset must be called from the frame loop; only the subscription request runs
// in the background, and it hands its result over through a one-slot mailbox.
type Tracker struct {
	reticle *Reticle
	log     *zap.Logger
	spawn   func(func())

	state      SubscriptionState
	source     xr.HitTestSource
	generation int
	pending    chan reply
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithInlineRequests runs subscription requests synchronously inside Update.
// The result still becomes visible no earlier than the same Update's poll.
func WithInlineRequests() Option {
	return func(t *Tracker) {
		t.spawn = func(f func()) { f() }
	}
}

// New returns a tracker that drives reticle.
func New(reticle *Reticle, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		reticle: reticle,
		log:     log.Named("tracker"),
		spawn:   func(f func()) { go f() },
		pending: make(chan reply, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the subscription state.
func (t *Tracker) State() SubscriptionState { return t.state }

// Reticle returns the reticle the tracker drives.
func (t *Tracker) Reticle() *Reticle { return t.reticle }

// Update runs once per frame. A nil frame is a no-op. The subscription is requested
// lazily the first time a frame is seen; until it resolves the reticle is left alone.
func (t *Tracker) Update(ctx context.Context, session xr.Session, frame xr.Frame) {
	if frame == nil || session == nil {
		return
	}
	if t.state == NotRequested {
		t.request(ctx, session)
	}
	t.poll()
	if t.state != Resolved {
		return
	}

	results := frame.HitTestResults(t.source)
	if len(results) == 0 {
		t.reticle.Hide()
		return
	}
	p, ok := results[0].Pose(session.LocalSpace())
	if !ok {
		t.reticle.Hide()
		return
	}
	t.reticle.Show(p)
}

// Reset tears the subscription down so a new session can subscribe again.
// Replies from requests already in flight are discarded.
func (t *Tracker) Reset() {
	if t.source != nil {
		t.source.Cancel()
		t.source = nil
	}
	t.generation++
	t.state = NotRequested
	t.reticle.Hide()
	t.log.Debug("hit-test subscription reset", zap.Int("generation", t.generation))
}

func (t *Tracker) request(ctx context.Context, session xr.Session) {
	gen := t.generation
	t.state = Requested
	t.log.Debug("requesting hit-test source", zap.Int("generation", gen))
	t.spawn(func() {
		space, err := session.RequestReferenceSpace(ctx, xr.ReferenceSpaceViewer)
		if err != nil {
			t.post(reply{generation: gen, err: fmt.Errorf("request viewer space: %w", err)})
			return
		}
		src, err := session.RequestHitTestSource(ctx, space)
		t.post(reply{generation: gen, source: src, err: err})
	})
}

// post hands a reply to the frame loop. When the slot is taken the reply
// with the higher generation stays queued and the other one is cancelled.
func (t *Tracker) post(r reply) {
	for {
		select {
		case t.pending <- r:
			return
		default:
		}
		select {
		case old := <-t.pending:
			if old.generation > r.generation {
				r, old = old, r
			}
			if old.source != nil {
				old.source.Cancel()
			}
		default:
		}
	}
}

func (t *Tracker) poll() {
	var r reply
	select {
	case r = <-t.pending:
	default:
		return
	}
	if r.generation != t.generation {
		if r.source != nil {
			r.source.Cancel()
		}
		return
	}
	if r.err != nil {
		t.log.Warn("hit-test source unavailable, retrying next frame", zap.Error(r.err))
		t.state = NotRequested
		return
	}
	t.source = r.source
	t.state = Resolved
	t.log.Info("hit-test source resolved")
}
