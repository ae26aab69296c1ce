// Noise field preview tool - interactive visualization of the direction
// field that steers the swirl particles.
//
// Usage: go run ./cmd/noisepreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/systems"
)

const (
	windowWidth  = 1040
	windowHeight = 720
	previewW     = 640
	previewH     = 400
	gridStep     = 20
	panelWidth   = windowWidth - previewW - 40
)

// previewParams holds the swirl noise parameters being tuned.
type previewParams struct {
	Kind       string
	Seed       int64
	Steps      float32
	Scale      float32 // Spatial scale at the preview's 1:1 pixel mapping
	TimeScale  float32
	Smoothing  float32
	SurfaceW   float32 // Surface width the preview represents
	SurfaceH   float32
	ShowValues bool
}

func paramsFromConfig(cfg *config.Config) previewParams {
	return previewParams{
		Kind:       cfg.Noise.Kind,
		Seed:       cfg.Noise.Seed,
		Steps:      float32(cfg.Swirl.NoiseSteps),
		Scale:      float32(cfg.Swirl.NoiseScaleX),
		TimeScale:  float32(cfg.Swirl.NoiseScaleT),
		Smoothing:  float32(cfg.Swirl.VelocitySmoothing),
		SurfaceW:   float32(cfg.Screen.Width),
		SurfaceH:   float32(cfg.Screen.Height),
		ShowValues: true,
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := paramsFromConfig(cfg)
	params := defaults

	noise, err := systems.NewNoiseField(params.Kind, params.Seed)
	if err != nil {
		slog.Error("failed to create noise field", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Swirl Noise Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	// Noise values as a grayscale texture
	valueW, valueH := previewW/4, previewH/4
	pixels := make([]color.RGBA, valueW*valueH)
	img := rl.GenImageColor(valueW, valueH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	rl.SetTextureFilter(texture, rl.FilterBilinear)

	var tick float32
	animating := false

	for !rl.WindowShouldClose() {
		if animating {
			tick++
		}

		t := float64(tick) * float64(params.TimeScale)
		angleScale := float64(params.Steps) * 2 * math.Pi
		sx := float64(params.SurfaceW) / previewW
		sy := float64(params.SurfaceH) / previewH

		if params.ShowValues {
			fillValues(pixels, valueW, valueH, noise, params, t)
			rl.UpdateTexture(texture, pixels)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 12, G: 10, B: 22, A: 255})

		if params.ShowValues {
			rl.DrawTexturePro(
				texture,
				rl.Rectangle{Width: float32(valueW), Height: float32(valueH)},
				rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
				rl.Vector2{}, 0, rl.White,
			)
		}

		// Direction arrows at surface coordinates mapped into the preview
		for py := gridStep / 2; py < previewH; py += gridStep {
			for px := gridStep / 2; px < previewW; px += gridStep {
				x := float64(px) * sx
				y := float64(py) * sy
				n := noise.Noise3D(x*float64(params.Scale), y*float64(params.Scale), t) * angleScale
				dx := float32(math.Cos(n)) * gridStep * 0.4
				dy := float32(math.Sin(n)) * gridStep * 0.4
				cx := float32(px + 10)
				cy := float32(py + 10)
				col := rl.ColorFromHSV(angleHue(n), 0.7, 1)
				rl.DrawLineEx(rl.Vector2{X: cx - dx, Y: cy - dy}, rl.Vector2{X: cx + dx, Y: cy + dy}, 1.5, col)
				rl.DrawCircleV(rl.Vector2{X: cx + dx, Y: cy + dy}, 2, col)
			}
		}
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Noise: %s  Seed: %d", params.Kind, params.Seed), 15, statsY, 16, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Tick: %.0f  t: %.3f", tick, t), 15, statsY+20, 16, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Surface: %.0fx%.0f", params.SurfaceW, params.SurfaceH), 15, statsY+40, 16, rl.LightGray)

		// Control panel
		panelX := float32(previewW + 30)
		panelY := float32(10)

		rl.DrawText("Noise Field Parameters", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		slider := func(label string, value, lo, hi float32, format string) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
			panelY += 35
			return v
		}

		params.Steps = slider("Noise steps (turns per unit noise)", params.Steps, 1, 16, "%.1f")
		params.Scale = slider("Spatial scale (x1e-3)", params.Scale*1000, 0.2, 5, "%.2f") / 1000
		params.TimeScale = slider("Time scale (x1e-3)", params.TimeScale*1000, 0, 3, "%.2f") / 1000
		params.Smoothing = slider("Velocity smoothing", params.Smoothing, 0.05, 1, "%.2f")

		newSeed := int64(slider("Seed", float32(params.Seed), 0, 9999, "%.0f"))
		if newSeed != params.Seed {
			params.Seed = newSeed
			noise = mustNoise(params.Kind, params.Seed)
		}

		params.ShowValues = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 18, Height: 18}, "Show noise values", params.ShowValues)
		panelY += 30

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			tick = 0
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(params.Kind == systems.NoisePerlin, "Use Simplex", "Use Perlin")) {
			if params.Kind == systems.NoisePerlin {
				params.Kind = systems.NoiseSimplex
			} else {
				params.Kind = systems.NoisePerlin
			}
			noise = mustNoise(params.Kind, params.Seed)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			tick = 0
			noise = mustNoise(params.Kind, params.Seed)
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.RayWhite)
		panelY += 25
		yaml := paramsYAML(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.DarkGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func mustNoise(kind string, seed int64) systems.NoiseField3D {
	n, err := systems.NewNoiseField(kind, seed)
	if err != nil {
		slog.Error("failed to create noise field", "error", err)
		os.Exit(1)
	}
	return n
}

// fillValues maps noise in [-1, 1] to grayscale over the preview surface.
func fillValues(pixels []color.RGBA, w, h int, noise systems.NoiseField3D, params previewParams, t float64) {
	sx := float64(params.SurfaceW) / float64(w)
	sy := float64(params.SurfaceH) / float64(h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := noise.Noise3D((float64(x)+0.5)*sx*float64(params.Scale), (float64(y)+0.5)*sy*float64(params.Scale), t)
			v := uint8((n*0.5 + 0.5) * 90)
			pixels[y*w+x] = color.RGBA{R: v / 2, G: v / 2, B: v, A: 255}
		}
	}
}

func paramsYAML(p previewParams) string {
	return fmt.Sprintf(`noise:
  kind: %s
  seed: %d
swirl:
  noise_steps: %.1f
  noise_scale_x: %.5f
  noise_scale_y: %.5f
  noise_scale_t: %.5f
  velocity_smoothing: %.2f`,
		p.Kind, p.Seed, p.Steps, p.Scale, p.Scale, p.TimeScale, p.Smoothing)
}

// angleHue maps an angle in radians to a hue in [0, 360).
func angleHue(a float64) float32 {
	h := math.Mod(a*180/math.Pi, 360)
	if h < 0 {
		h += 360
	}
	return float32(h)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
