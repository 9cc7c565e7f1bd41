package interaction

import (
	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
	"arsketch/internal/scene"
)

// Dragger moves objects under a 2D pointer (mouse or touch). The pointer position is
// unprojected through the camera into a picking ray; a picked object is dragged on the
// camera-facing plane through the point where it was grabbed.
type Dragger struct {
	camera    *scene.Camera
	group     *scene.Node
	raycaster scene.Raycaster

	// Moved, if set, is called after every position change of the dragged object.
	Moved func(*scene.Node)

	dragging    *scene.Node
	planePoint  mgl32.Vec3
	planeNormal mgl32.Vec3
	offset      mgl32.Vec3
}

// NewDragger returns a dragger over the direct children of group.
func NewDragger(camera *scene.Camera, group *scene.Node) *Dragger {
	return &Dragger{camera: camera, group: group}
}

// Dragging returns the object being dragged, or nil.
func (d *Dragger) Dragging() *scene.Node { return d.dragging }

// PointerDown starts a drag on the nearest object under (x, y). It reports whether
// something was picked; pressing on empty space does nothing.
func (d *Dragger) PointerDown(x, y float32, width, height int) bool {
	ray, ok := d.camera.ScreenRay(x, y, width, height)
	if !ok {
		return false
	}
	hits := d.raycaster.Intersect(ray, d.group.Children())
	if len(hits) == 0 {
		return false
	}
	hit := hits[0]
	d.dragging = hit.Node
	d.planePoint = hit.Point
	d.planeNormal = d.camera.Pose.TransformDirection(pose.Forward).Mul(-1)
	d.offset = hit.Node.WorldPose().Position.Sub(hit.Point)
	return true
}

// PointerMove drags the picked object to follow the pointer. It is ignored when no drag
// is in progress or the pointer ray misses the drag plane.
func (d *Dragger) PointerMove(x, y float32, width, height int) bool {
	if d.dragging == nil {
		return false
	}
	ray, ok := d.camera.ScreenRay(x, y, width, height)
	if !ok {
		return false
	}
	point, _, ok := scene.IntersectPlane(ray, d.planePoint, d.planeNormal)
	if !ok {
		return false
	}
	world := d.dragging.WorldPose()
	world.Position = point.Add(d.offset)
	d.dragging.SetWorldPose(world)
	if d.Moved != nil {
		d.Moved(d.dragging)
	}
	return true
}

// PointerUp ends the drag.
func (d *Dragger) PointerUp() {
	d.dragging = nil
}
