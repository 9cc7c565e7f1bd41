package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"arsketch/internal/pose"
)

// Kind tells the renderer and the raycaster how to treat a node.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLine:
		return "line"
	default:
		return "unknown"
	}
}

// Geometry is the primitive shape of a mesh node, in local (unscaled) units.
type Geometry interface {
	// Bounds returns the local-space axis-aligned half extents used for picking.
	Bounds() mgl32.Vec3
}

// Box is an axis-aligned cuboid centered on the node origin.
type Box struct {
	Size mgl32.Vec3
}

func (b Box) Bounds() mgl32.Vec3 { return b.Size.Mul(0.5) }

// planeThickness gives planes a pickable slab instead of a zero-width box.
const planeThickness = 1e-3

// Plane is a horizontal (XZ) quad centered on the node origin.
type Plane struct {
	Width, Depth float32
}

func (p Plane) Bounds() mgl32.Vec3 { return mgl32.Vec3{p.Width / 2, planeThickness, p.Depth / 2} }

// Ring is a flat annulus on the XZ plane; used for the placement reticle.
type Ring struct {
	Inner, Outer float32
}

func (r Ring) Bounds() mgl32.Vec3 { return mgl32.Vec3{r.Outer, planeThickness, r.Outer} }

// Material holds the appearance of a mesh. Emissive is added on top of Color by the
// renderer; its R channel marks hover, its B channel marks selection.
type Material struct {
	Color    mgl32.Vec3
	Emissive mgl32.Vec3
}

// Node is one element of the scene graph. A node has exactly one parent at a time.
type Node struct {
	Name     string
	Kind     Kind
	Geometry Geometry
	Material *Material
	Visible  bool

	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3

	parent   *Node
	children []*Node
}

// NewGroup returns an empty, visible group node with an identity transform.
func NewGroup(name string) *Node {
	return newNode(name, KindGroup)
}

// NewMesh returns a visible mesh node with its own material copy.
func NewMesh(name string, geom Geometry, mat Material) *Node {
	n := newNode(name, KindMesh)
	n.Geometry = geom
	n.Material = &mat
	return n
}

// NewLine returns a unit-length line from the origin along -Z; its length is Scale.Z().
func NewLine(name string, color mgl32.Vec3) *Node {
	n := newNode(name, KindLine)
	n.Material = &Material{Color: color}
	return n
}

func newNode(name string, kind Kind) *Node {
	return &Node{
		Name:        name,
		Kind:        kind,
		Visible:     true,
		Orientation: mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// Clone returns a detached copy of n with its own material. Children are not copied.
func (n *Node) Clone(name string) *Node {
	c := *n
	c.Name = name
	c.parent = nil
	c.children = nil
	if n.Material != nil {
		m := *n.Material
		c.Material = &m
	}
	return &c
}

// Parent returns the node's parent, or nil for a detached node or the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the direct children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Add makes child a child of n, removing it from any previous parent.
// The child's local transform is kept, so its world transform may change.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Attach reparents child under n keeping its world transform unchanged.
func (n *Node) Attach(child *Node) {
	if child == nil || child == n {
		return
	}
	world := child.WorldPose()
	n.Add(child)
	child.SetWorldPose(world)
}

// Remove detaches child from n. It is a no-op if child is not a child of n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// LocalPose returns the node's transform relative to its parent.
func (n *Node) LocalPose() pose.Pose {
	return pose.Pose{Position: n.Position, Orientation: n.Orientation, Scale: n.Scale}
}

// SetLocalPose overwrites the node's transform relative to its parent.
func (n *Node) SetLocalPose(p pose.Pose) {
	n.Position = p.Position
	n.Orientation = p.Orientation
	n.Scale = p.Scale
}

// WorldMatrix returns the node's transform composed with all of its ancestors.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalPose().Matrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalPose().Matrix().Mul4(m)
	}
	return m
}

// WorldPose decomposes WorldMatrix.
func (n *Node) WorldPose() pose.Pose {
	return pose.FromMatrix(n.WorldMatrix())
}

// SetWorldPose sets the local transform so the node ends up at p in world space.
func (n *Node) SetWorldPose(p pose.Pose) {
	if n.parent == nil {
		n.SetLocalPose(p)
		return
	}
	parentInv := n.parent.WorldMatrix().Inv()
	n.SetLocalPose(pose.FromMatrix(parentInv.Mul4(p.Matrix())))
}

// MoveTo places the node at p's world position and orientation. p's scale is
// ignored; the node keeps its local scale.
func (n *Node) MoveTo(p pose.Pose) {
	scale := n.Scale
	p.Scale = n.WorldPose().Scale
	n.SetWorldPose(p)
	n.Scale = scale
}

// Walk visits n and its descendants depth-first; returning false skips a subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}
