package interaction

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"arsketch/internal/scene"
	"arsketch/internal/tracker"
)

const fallbackMarkerSize = 0.05

var fallbackMarkerColor = mgl32.Vec3{1, 1, 0}

// Marker drops a single click marker at the reticle. The marker node is built from
// template on first use; a nil template degrades to a small plain box.
type Marker struct {
	template *scene.Node
	parent   *scene.Node
	log      *zap.Logger

	node *scene.Node
}

// NewMarker returns a marker that adds its node under parent.
func NewMarker(template, parent *scene.Node, log *zap.Logger) *Marker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Marker{template: template, parent: parent, log: log.Named("marker")}
}

// Node returns the placed marker node, or nil before the first placement.
func (m *Marker) Node() *scene.Node { return m.node }

// Place moves the marker to the reticle's pose. Without a visible reticle it does nothing
// and returns false.
func (m *Marker) Place(r *tracker.Reticle) bool {
	if r == nil || !r.Visible {
		return false
	}
	if m.node == nil {
		m.node = m.build()
		m.parent.Add(m.node)
	}
	m.node.SetLocalPose(r.Pose)
	m.node.Visible = true
	return true
}

func (m *Marker) build() *scene.Node {
	if m.template != nil {
		return m.template.Clone("click-marker")
	}
	m.log.Warn("click marker template missing, using a plain box")
	size := float32(fallbackMarkerSize)
	return scene.NewMesh("click-marker", scene.Box{Size: mgl32.Vec3{size, size, size}}, scene.Material{Color: fallbackMarkerColor})
}
