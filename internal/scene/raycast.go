package scene

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
)

// Ray is a half-line in world space. Direction is expected to be normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// RayFromPose builds the pointing ray of a pose (origin at its position, along its -Z).
func RayFromPose(p pose.Pose) Ray {
	return Ray{Origin: p.Position, Direction: p.TransformDirection(pose.Forward).Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Intersection is one ray hit.
type Intersection struct {
	Node     *Node
	Point    mgl32.Vec3
	Distance float32
}

// Raycaster tests rays against mesh nodes. Far limits the hit distance; 0 means unbounded.
type Raycaster struct {
	Near float32
	Far  float32
}

// Intersect returns the hits of ray against candidates (not their descendants), nearest first.
// Invisible nodes and non-mesh nodes are skipped.
func (rc Raycaster) Intersect(ray Ray, candidates []*Node) []Intersection {
	var hits []Intersection
	for _, n := range candidates {
		if n == nil || !n.Visible || n.Kind != KindMesh || n.Geometry == nil {
			continue
		}
		if hit, ok := rc.intersectNode(ray, n); ok {
			hits = append(hits, hit)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// intersectNode moves the ray into the node's local frame and runs a slab test against its bounds.
func (rc Raycaster) intersectNode(ray Ray, n *Node) (Intersection, bool) {
	world := n.WorldMatrix()
	inv := world.Inv()
	localOrigin := inv.Mul4x1(ray.Origin.Vec4(1)).Vec3()
	localDir := inv.Mul4x1(ray.Direction.Vec4(0)).Vec3()

	t, ok := slab(localOrigin, localDir, n.Geometry.Bounds())
	if !ok {
		return Intersection{}, false
	}
	localPoint := localOrigin.Add(localDir.Mul(t))
	point := world.Mul4x1(localPoint.Vec4(1)).Vec3()
	dist := point.Sub(ray.Origin).Len()
	if dist < rc.Near || (rc.Far > 0 && dist > rc.Far) {
		return Intersection{}, false
	}
	return Intersection{Node: n, Point: point, Distance: dist}, true
}

// slab returns the entry parameter of a ray against the box [-half, half].
// A ray starting inside the box hits at t=0.
func slab(origin, dir, half mgl32.Vec3) (float32, bool) {
	tmin := float32(0)
	tmax := math32.Inf(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < 1e-8 {
			if origin[i] < -half[i] || origin[i] > half[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (-half[i] - origin[i]) * inv
		t2 := (half[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// IntersectPlane returns where ray crosses the plane through point with the given normal.
// ok is false when the ray is parallel to or points away from the plane.
func IntersectPlane(ray Ray, point, normal mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	denom := normal.Dot(ray.Direction)
	if math32.Abs(denom) < 1e-6 {
		return mgl32.Vec3{}, 0, false
	}
	t := point.Sub(ray.Origin).Dot(normal) / denom
	if t < 0 {
		return mgl32.Vec3{}, 0, false
	}
	return ray.At(t), t, true
}
