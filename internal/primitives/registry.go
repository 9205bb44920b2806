package primitives

import (
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind names a cached mesh.
type Kind string

const (
	// Cube is a unit cube centered on the origin.
	Cube Kind = "cube"
	// Plane is a unit quad in XZ centered on the origin.
	Plane Kind = "plane"
)

// cached holds mesh and material for a primitive kind. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry maps primitive kinds to mesh+material. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[Kind]cached
	viewPos  [3]float32 // camera position, set each frame for lighting
	lightDir [3]float32 // direction to light (normalized), set each frame
}

// NewRegistry returns a registry with no meshes loaded.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[Kind]cached),
		lightDir: [3]float32{5, 5, 5}, // the key light sits at (5,5,5)
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
	switch kind {
	case Cube:
		mesh = rl.GenMeshCube(1, 1, 1)
	case Plane:
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return cached{}, false
	}
	mtl := rl.LoadMaterialDefault()
	if shader := loadLitShader(); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	r.cache[kind] = c
	return c, true
}

// loadLitShader returns a shader that does directional light + ambient, then blends toward gold by goldMix.
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
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
uniform float goldMix;
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
  float NdotH = max(dot(N, H), 0.0);
  float spec = pow(NdotH, specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  vec3 lit = amb + diffuse + specular;
  finalColor = vec4(mix(lit, vec3(1.0, 0.843, 0.0), goldMix), tint.a);
}
`
)

// defaultAmbient matches an ambient light at half intensity.
var defaultAmbient = [4]float32{0.5, 0.5, 0.5, 1.0}

var defaultLightColor = [3]float32{1.0, 0.98, 0.95}

const defaultLightIntensity = float32(1.0)

// defaultSpecularPower controls highlight tightness (higher = smaller, sharper highlight).
const defaultSpecularPower = float32(48.0)

const defaultSpecularStrength = float32(0.35)

// setLitShaderUniforms sets the per-frame lighting uniforms and the gold blend (cgo-safe: local arrays).
func (r *Registry) setLitShaderUniforms(shader rl.Shader, goldMix float32) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := [3]float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
	lightDir := [3]float32{r.lightDir[0], r.lightDir[1], r.lightDir[2]}
	amb := [4]float32{defaultAmbient[0], defaultAmbient[1], defaultAmbient[2], defaultAmbient[3]}
	lightColor := [3]float32{defaultLightColor[0], defaultLightColor[1], defaultLightColor[2]}
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightColor[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultLightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultSpecularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultSpecularStrength}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "goldMix"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{goldMix}, rl.ShaderUniformFloat)
	}
}

// Instance is one draw of a primitive: a pose, a size along each local axis, and a tint.
type Instance struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Size     mgl32.Vec3
	Color    rl.Color
	// GoldMix blends the lit color toward gold (0 = none, 1 = solid gold).
	GoldMix float32
}

// Draw draws one instance. Must be called between BeginMode3D and EndMode3D, after SetView.
// Unknown kinds are skipped.
func (r *Registry) Draw(kind Kind, in Instance) {
	c, ok := r.ensure(kind)
	if !ok {
		return
	}
	r.setLitShaderUniforms(c.mtl.Shader, in.GoldMix)
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = in.Color
	}
	rl.DrawMesh(c.mesh, c.mtl, Transform(in.Position, in.Rotation, in.Size))
}

// Transform builds scale, then rotate, then translate. A zero size axis is treated as 1.
func Transform(pos mgl32.Vec3, rot mgl32.Quat, size mgl32.Vec3) rl.Matrix {
	for i := range size {
		if size[i] == 0 {
			size[i] = 1
		}
	}
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}
	scaleM := rl.MatrixScale(size[0], size[1], size[2])
	rotM := rl.QuaternionToMatrix(rl.NewQuaternion(rot.V[0], rot.V[1], rot.V[2], rot.W))
	transM := rl.MatrixTranslate(pos[0], pos[1], pos[2])
	return rl.MatrixMultiply(rl.MatrixMultiply(scaleM, rotM), transM)
}

// Unload releases every cached mesh and material. Call before the window closes.
func (r *Registry) Unload() {
	for k, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		rl.UnloadShader(c.mtl.Shader)
		delete(r.cache, k)
	}
}
