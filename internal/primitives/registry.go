package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind names a cached mesh.
type Kind string

const (
	// Box is a unit cube centered on the origin.
	Box Kind = "box"
	// Plane is a unit quad in XZ, centered on the origin.
	Plane Kind = "plane"
	// Ring is a flat torus in XZ with outer radius 1.
	Ring Kind = "ring"
)

// raylib scales a torus to size/2 and the tube adds radius on top, so a 0.25 tube at
// size 1.6 gives an outer radius of 1.
const (
	ringTube = 0.25
	ringSize = 1.6
)

const (
	defaultRingSegments = 32
	defaultRingSides    = 8
)

// cached holds mesh and material for a primitive kind. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
	// base orients the raylib mesh into the primitive's canonical frame.
	base rl.Matrix
}

// Registry maps primitive kinds to mesh+material. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[Kind]cached
	viewPos  [3]float32
	lightDir [3]float32
	// loc caches uniform locations per shader ID.
	loc map[uint32]uniforms
}

type uniforms struct {
	viewPos, lightDir, ambient, lightColor, lightIntensity, specPower, specStrength, emissive int32
}

// NewRegistry returns a registry with no primitives.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[Kind]cached),
		lightDir: [3]float32{0.5, 1, 0.5},
		loc:      make(map[uint32]uniforms),
	}
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing so lit primitives get correct shading.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

func (r *Registry) ensure(kind Kind) (cached, bool) {
	if c, ok := r.cache[kind]; ok {
		return c, true
	}
	var mesh rl.Mesh
	base := rl.MatrixIdentity()
	switch kind {
	case Box:
		mesh = rl.GenMeshCube(1, 1, 1)
	case Plane:
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	case Ring:
		// raylib's torus lies in XY; lay it flat so it faces +Y like a hit-test pose.
		mesh = rl.GenMeshTorus(ringTube, ringSize, defaultRingSegments, defaultRingSides)
		base = rl.MatrixRotateX(rl.Pi / 2)
	default:
		return cached{}, false
	}
	mtl := rl.LoadMaterialDefault()
	if shader := loadLitShader(); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	c := cached{mesh: mesh, mtl: mtl, base: base}
	r.cache[kind] = c
	return c, true
}

// loadLitShader returns a shader that does directional light + ambient + emissive.
// Same vertex attributes as raylib meshes: vertexPosition, vertexTexCoord, vertexNormal.
func loadLitShader() rl.Shader {
	return rl.LoadShaderFromMemory(litVS, litFS)
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
uniform vec3 emissive;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(min(amb + diffuse + specular + emissive, vec3(1.0)), tint.a);
}
`
)

var (
	defaultAmbient    = [4]float32{0.2, 0.22, 0.26, 1.0}
	defaultLightColor = [3]float32{1.0, 0.98, 0.95}
)

const (
	defaultLightIntensity   = float32(0.75)
	defaultSpecularPower    = float32(48.0)
	defaultSpecularStrength = float32(0.35)
)

func (r *Registry) locations(shader rl.Shader) uniforms {
	if u, ok := r.loc[shader.ID]; ok {
		return u
	}
	u := uniforms{
		viewPos:        rl.GetShaderLocation(shader, "viewPos"),
		lightDir:       rl.GetShaderLocation(shader, "lightDir"),
		ambient:        rl.GetShaderLocation(shader, "ambient"),
		lightColor:     rl.GetShaderLocation(shader, "lightColor"),
		lightIntensity: rl.GetShaderLocation(shader, "lightIntensity"),
		specPower:      rl.GetShaderLocation(shader, "specularPower"),
		specStrength:   rl.GetShaderLocation(shader, "specularStrength"),
		emissive:       rl.GetShaderLocation(shader, "emissive"),
	}
	r.loc[shader.ID] = u
	return u
}

// setUniforms uploads lighting and the per-draw emissive term (cgo-safe: local arrays).
func (r *Registry) setUniforms(shader rl.Shader, emissive [3]float32) {
	if !rl.IsShaderValid(shader) {
		return
	}
	u := r.locations(shader)
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := defaultAmbient
	lightColor := defaultLightColor
	set := func(loc int32, v []float32, typ rl.ShaderUniformDataType) {
		if loc >= 0 {
			rl.SetShaderValueV(shader, loc, v, typ, 1)
		}
	}
	set(u.viewPos, viewPos[:], rl.ShaderUniformVec3)
	set(u.lightDir, lightDir[:], rl.ShaderUniformVec3)
	set(u.ambient, amb[:], rl.ShaderUniformVec4)
	set(u.lightColor, lightColor[:], rl.ShaderUniformVec3)
	set(u.lightIntensity, []float32{defaultLightIntensity}, rl.ShaderUniformFloat)
	set(u.specPower, []float32{defaultSpecularPower}, rl.ShaderUniformFloat)
	set(u.specStrength, []float32{defaultSpecularStrength}, rl.ShaderUniformFloat)
	set(u.emissive, emissive[:], rl.ShaderUniformVec3)
}

// Draw draws one instance of kind with the given model transform, albedo color and
// emissive term. Must be called between BeginMode3D and EndMode3D, after SetView.
// Unknown kinds are skipped.
func (r *Registry) Draw(kind Kind, transform rl.Matrix, color rl.Color, emissive [3]float32) {
	c, ok := r.ensure(kind)
	if !ok {
		return
	}
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = color
	}
	r.setUniforms(c.mtl.Shader, emissive)
	rl.DrawMesh(c.mesh, c.mtl, rl.MatrixMultiply(c.base, transform))
}

// Unload releases every cached mesh and shader. Call before closing the window.
func (r *Registry) Unload() {
	for kind, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		if rl.IsShaderValid(c.mtl.Shader) {
			rl.UnloadShader(c.mtl.Shader)
		}
		delete(r.cache, kind)
	}
}
