package scene

import (
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const skyboxScale = 1000

// skyboxPaths are tried in order so the skybox is found from the repo root or from cmd/giftbox.
var skyboxPaths = []string{
	"assets/skybox/skybox.png",
	"assets/skybox/skybox.jpg",
	"../../assets/skybox/skybox.png",
	"../../assets/skybox/skybox.jpg",
}

// A 2:1 image is an equirectangular panorama; anything else is treated as a cubemap layout.
const (
	equirectAspectMin = 1.8
	equirectAspectMax = 2.2
)

// skybox is an optional backdrop drawn first in 3D mode. The file is probed at construction;
// GPU resources are created on the first draw, after the window exists.
type skybox struct {
	path     string
	equirect bool
	loaded   bool

	tex       rl.Texture2D
	mesh      rl.Mesh
	mtl       rl.Material
	camPosLoc int32
	texLoc    int32
}

func findSkybox(paths []string) *skybox {
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		img := rl.LoadImage(p)
		if img == nil || img.Width <= 0 || img.Height <= 0 {
			return nil
		}
		aspect := float32(img.Width) / float32(img.Height)
		rl.UnloadImage(img)
		return &skybox{path: p, equirect: aspect >= equirectAspectMin && aspect <= equirectAspectMax}
	}
	return nil
}

// ensure loads the GPU side once. A failed load clears path so it is not retried every frame.
func (s *skybox) ensure() bool {
	if s.loaded || s.path == "" {
		return s.loaded
	}
	path := s.path
	s.path = ""

	if !s.equirect {
		img := rl.LoadImage(path)
		if img == nil || img.Width <= 0 || img.Height <= 0 {
			return false
		}
		s.tex = rl.LoadTextureCubemap(img, rl.CubemapLayoutAutoDetect)
		rl.UnloadImage(img)
		if !rl.IsTextureValid(s.tex) {
			return false
		}
		s.mesh = rl.GenMeshCube(1, 1, 1)
		s.mtl = rl.LoadMaterialDefault()
		rl.SetMaterialTexture(&s.mtl, rl.MapCubemap, s.tex)
		s.loaded = true
		return true
	}

	s.tex = rl.LoadTexture(path)
	if !rl.IsTextureValid(s.tex) {
		return false
	}
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		rl.UnloadTexture(s.tex)
		return false
	}
	s.mesh = rl.GenMeshCube(1, 1, 1)
	s.mtl = rl.LoadMaterialDefault()
	s.mtl.Shader = shader
	s.camPosLoc = rl.GetShaderLocation(shader, "cameraPosition")
	s.texLoc = rl.GetShaderLocation(shader, "skybox")
	s.loaded = true
	return true
}

// Equirectangular skybox shader: samples a 2D panorama by view direction.
const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D skybox;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float lon = atan(dir.z, dir.x);
  float lat = asin(clamp(dir.y, -1.0, 1.0));
  float u = lon / 6.28318530718 + 0.5;
  float v = 0.5 - lat / 3.14159265359;
  finalColor = texture(skybox, vec2(u, v));
}
`
)

// draw renders a large cube centered on the camera with depth writes off.
func (s *skybox) draw(cam rl.Vector3) {
	if !s.ensure() {
		return
	}
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	transform := rl.MatrixMultiply(rl.MatrixScale(skyboxScale, skyboxScale, skyboxScale), rl.MatrixTranslate(cam.X, cam.Y, cam.Z))
	if s.equirect {
		if s.camPosLoc >= 0 {
			rl.SetShaderValueV(s.mtl.Shader, s.camPosLoc, []float32{cam.X, cam.Y, cam.Z}, rl.ShaderUniformVec3, 1)
		}
		if s.texLoc >= 0 {
			rl.SetShaderValueTexture(s.mtl.Shader, s.texLoc, s.tex)
		}
	}
	rl.DrawMesh(s.mesh, s.mtl, transform)
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

func (s *skybox) unload() {
	if !s.loaded {
		return
	}
	rl.UnloadTexture(s.tex)
	rl.UnloadMesh(&s.mesh)
	if s.equirect {
		rl.UnloadShader(s.mtl.Shader)
	}
	s.loaded = false
}
