package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"

	"arsketch/internal/primitives"
	"arsketch/internal/scene"
)

const (
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	// gridLift keeps grid lines from z-fighting with the floor visual.
	gridLift = 0.002
)

// passthroughColor stands in for the camera feed while a session runs on the desktop.
var passthroughColor = rl.NewColor(58, 62, 70, 255)

// Renderer draws a scene graph with raylib. It implements the orchestrator's Renderer.
type Renderer struct {
	prims *primitives.Registry

	// GridVisible draws a reference grid on the floor plane.
	GridVisible bool
	// GridExtent is the half size of the grid in meters.
	GridExtent int
	// GridHeight is the Y of the grid plane.
	GridHeight float32

	lightDir [3]float32
}

// NewRenderer returns a renderer with the grid enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		prims:       primitives.NewRegistry(),
		GridVisible: true,
		GridExtent:  10,
		lightDir:    [3]float32{0.5, 1, 0.5},
	}
}

// Close releases GPU resources. Call before the window closes.
func (r *Renderer) Close() {
	r.prims.Unload()
}

// Render clears to the scene background and draws every visible node under s.Root.
func (r *Renderer) Render(s *scene.Scene, cam *scene.Camera) {
	if s.Transparent {
		rl.ClearBackground(passthroughColor)
	} else {
		rl.ClearBackground(toColor(s.Background))
	}

	pos := cam.Pose.Position
	r.prims.SetView([3]float32{pos.X(), pos.Y(), pos.Z()}, r.lightDir)

	rl.BeginMode3D(toCamera(cam))
	// BeginMode3D uses raylib's fixed clip planes; picking uses the camera's.
	rl.SetMatrixProjection(toMatrix(cam.Projection()))
	if r.GridVisible {
		drawGrid(r.GridExtent, r.GridHeight+gridLift)
	}
	r.drawNode(s.Root)
	rl.EndMode3D()
}

// drawNode draws n and its subtree. Hidden nodes hide their descendants.
func (r *Renderer) drawNode(n *scene.Node) {
	if !n.Visible {
		return
	}
	switch n.Kind {
	case scene.KindMesh:
		r.drawMesh(n)
	case scene.KindLine:
		drawLine(n)
	}
	for _, child := range n.Children() {
		r.drawNode(child)
	}
}

func (r *Renderer) drawMesh(n *scene.Node) {
	var kind primitives.Kind
	var size mgl32.Vec3
	switch g := n.Geometry.(type) {
	case scene.Box:
		kind, size = primitives.Box, g.Size
	case scene.Plane:
		kind, size = primitives.Plane, mgl32.Vec3{g.Width, 1, g.Depth}
	case scene.Ring:
		kind, size = primitives.Ring, mgl32.Vec3{g.Outer, g.Outer, g.Outer}
	default:
		return
	}
	color := rl.White
	var emissive [3]float32
	if n.Material != nil {
		color = toColor(n.Material.Color)
		emissive = [3]float32(n.Material.Emissive)
	}
	model := n.WorldMatrix().Mul4(mgl32.Scale3D(size.X(), size.Y(), size.Z()))
	r.prims.Draw(kind, toMatrix(model), color, emissive)
}

// drawLine draws a line node from its origin along its local -Z, Scale.Z meters long.
func drawLine(n *scene.Node) {
	m := n.WorldMatrix()
	start := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	end := m.Mul4x1(mgl32.Vec4{0, 0, -1, 1}).Vec3()
	color := rl.White
	if n.Material != nil {
		color = toColor(n.Material.Color)
	}
	rl.DrawLine3D(toVector3(start), toVector3(end), color)
}

// drawGrid draws a grid on the XZ plane at height y with major/minor lines and axis lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawGrid(extent int, y float32) {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	e := float32(extent)
	var start, end rl.Vector3
	for x := -extent; x <= extent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), y, -e
		end.X, end.Y, end.Z = float32(x), y, e
		rl.DrawLine3D(start, end, c)
	}
	for z := -extent; z <= extent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = -e, y, float32(z)
		end.X, end.Y, end.Z = e, y, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	start.X, start.Y, start.Z = -e, y, 0
	end.X, end.Y, end.Z = e, y, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, y, -e
	end.X, end.Y, end.Z = 0, y, e
	rl.DrawLine3D(start, end, axisZ)
}
