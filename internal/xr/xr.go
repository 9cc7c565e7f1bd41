// Package xr describes the narrow slice of an AR platform the sketch depends on:
// a session that hands out hit-test sources, per-frame tracking data and input
// sources with select gestures.
package xr

import (
	"context"
	"errors"

	"arsketch/internal/pose"
)

// ErrSessionEnded is returned by requests made on a session that is no longer running.
var ErrSessionEnded = errors.New("xr: session ended")

// ReferenceSpaceType names the coordinate frame a reference space expresses poses in.
type ReferenceSpaceType string

const (
	// ReferenceSpaceViewer follows the device; hit-tests cast along its forward ray.
	ReferenceSpaceViewer ReferenceSpaceType = "viewer"
	// ReferenceSpaceLocal is the world-fixed space the scene is rendered in.
	ReferenceSpaceLocal ReferenceSpaceType = "local"
)

// ReferenceSpace is a coordinate frame handed out by the session.
type ReferenceSpace interface {
	Type() ReferenceSpaceType
}

// HitTestSource is a subscription that makes a frame produce hit-test results.
type HitTestSource interface {
	// Cancel releases the subscription. It is safe to call more than once.
	Cancel()
}

// HitTestResult is one real-world surface hit. Pose expresses it in space; ok is false
// when the platform cannot relate the hit to that space this frame.
type HitTestResult interface {
	Pose(space ReferenceSpace) (p pose.Pose, ok bool)
}

// Session is a running AR session.
type Session interface {
	// LocalSpace is the reference space the renderer draws in.
	LocalSpace() ReferenceSpace
	// RequestReferenceSpace may block until the platform resolves the space.
	RequestReferenceSpace(ctx context.Context, t ReferenceSpaceType) (ReferenceSpace, error)
	// RequestHitTestSource may block until the platform resolves the subscription.
	RequestHitTestSource(ctx context.Context, space ReferenceSpace) (HitTestSource, error)
}

// Frame is the tracking data for one displayed frame.
type Frame interface {
	// ViewerPose is the device pose in the local space; ok is false while tracking is lost.
	ViewerPose() (p pose.Pose, ok bool)
	// HitTestResults returns the hits for src, nearest/most confident first.
	HitTestResults(src HitTestSource) []HitTestResult
	// InputSources returns the currently tracked controllers.
	InputSources() []InputSource
}

// Modality is how an input source points at the scene.
type Modality int

const (
	// ModalityTrackedPointer is a spatially tracked controller or hand ray.
	ModalityTrackedPointer Modality = iota
	// ModalityGaze is a head-locked ray.
	ModalityGaze
	// ModalityScreen is a touch on a handheld screen; it has no persistent ray to hover with.
	ModalityScreen
)

var modalityNames = map[Modality]string{
	ModalityTrackedPointer: "tracked-pointer",
	ModalityGaze:           "gaze",
	ModalityScreen:         "screen",
}

func (m Modality) String() string {
	if s, ok := modalityNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseModality maps a target-ray-mode name to a Modality.
func ParseModality(s string) (Modality, bool) {
	for m, name := range modalityNames {
		if name == s {
			return m, true
		}
	}
	return 0, false
}

// InputSource is the per-frame state of one controller.
type InputSource struct {
	Index int
	Mode  Modality
	Pose  pose.Pose
}

// SelectPhase distinguishes the two halves of a select gesture.
type SelectPhase int

const (
	SelectStart SelectPhase = iota
	SelectEnd
)

func (p SelectPhase) String() string {
	if p == SelectStart {
		return "selectstart"
	}
	return "selectend"
}

// SelectEvent is a select gesture from the controller at Index. The controller's
// modality is tracked on the controller itself, not carried per event.
type SelectEvent struct {
	Index int
	Phase SelectPhase
}
