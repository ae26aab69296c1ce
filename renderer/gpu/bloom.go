// Package gpu implements the renderer canvas on raylib render textures.
// All functions require an initialized raylib window (possibly hidden).
package gpu

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/renderer"
)

//go:embed shaders/bloom.fs
var bloomFS string

// BloomShader applies blur and brightness while drawing a texture.
type BloomShader struct {
	shader        rl.Shader
	resolutionLoc int32
	blurLoc       int32
	brightnessLoc int32
}

// LoadBloomShader compiles the embedded bloom fragment shader.
func LoadBloomShader() *BloomShader {
	b := &BloomShader{shader: rl.LoadShaderFromMemory("", bloomFS)}
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.blurLoc = rl.GetShaderLocation(b.shader, "blurRadius")
	b.brightnessLoc = rl.GetShaderLocation(b.shader, "brightness")
	return b
}

// Begin sets the uniforms for f on a source of the given size and enables
// the shader.
func (b *BloomShader) Begin(f renderer.Filter, width, height int32) {
	bright := float32(f.Brightness)
	if bright <= 0 {
		bright = 1
	}
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{float32(width), float32(height)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.blurLoc, []float32{float32(f.Blur)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(b.shader, b.brightnessLoc, []float32{bright}, rl.ShaderUniformFloat)
	rl.BeginShaderMode(b.shader)
}

// End disables the shader.
func (b *BloomShader) End() {
	rl.EndShaderMode()
}

// Unload releases GPU resources.
func (b *BloomShader) Unload() {
	rl.UnloadShader(b.shader)
}
