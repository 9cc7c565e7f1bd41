package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"

	"arsketch/internal/scene"
)

// toMatrix converts a column-major mgl32 matrix; raylib stores columns in M0..M3, M4..M7, ...
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func toVector3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}

func toColor(c mgl32.Vec3) rl.Color {
	return rl.NewColor(channel(c.X()), channel(c.Y()), channel(c.Z()), 255)
}

func channel(f float32) uint8 {
	return uint8(math32.Round(mgl32.Clamp(f, 0, 1) * 255))
}

// toCamera builds a raylib camera looking along the pose's forward axis.
// Near and Far are not part of rl.Camera3D; the renderer loads Camera.Projection after
// BeginMode3D.
func toCamera(c *scene.Camera) rl.Camera3D {
	up := c.Pose.Orientation.Rotate(mgl32.Vec3{0, 1, 0})
	return rl.Camera3D{
		Position:   toVector3(c.Pose.Position),
		Target:     toVector3(c.Target()),
		Up:         toVector3(up),
		Fovy:       c.FovY,
		Projection: rl.CameraPerspective,
	}
}
