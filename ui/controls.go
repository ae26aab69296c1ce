package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/config"
)

// ControlsActions reports button presses from one panel draw.
type ControlsActions struct {
	TogglePause bool
	Reseed      bool
}

// ControlsPanel renders raygui sliders bound to the live configuration.
// Swirl, background and bloom changes take effect on the next frame;
// particle count applies on reseed.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// SetPosition moves the panel, e.g. to stay right-aligned after a resize.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// Draw renders the panel and applies slider changes to cfg.
func (c *ControlsPanel) Draw(cfg *config.Config, paused bool) ControlsActions {
	var act ControlsActions
	if !c.visible {
		return act
	}

	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, 490)

	x := float32(c.x + pad)
	y := float32(c.y + pad)
	w := float32(c.width - pad*2 - 50)

	rl.DrawText("Swirl", int32(x), int32(y), 16, rl.White)
	y += 26

	slider := func(label string, value, lo, hi float32, format string) float32 {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w, Height: 16}, "", "", value, lo, hi)
		rl.DrawText(fmt.Sprintf(format, v), int32(x+w+6), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		y += 26
		return v
	}

	header := func(title string) {
		y = float32(r.DrawSectionHeader(int32(x), int32(y), title)) + 2
	}

	s := &cfg.Swirl
	header("Flow")
	s.NoiseSteps = float64(slider("Noise steps", float32(s.NoiseSteps), 1, 16, "%.1f"))

	scale := slider("Noise scale (x1e-3)", float32(s.NoiseScaleX*1000), 0.2, 5, "%.2f")
	s.NoiseScaleX = float64(scale) / 1000
	s.NoiseScaleY = s.NoiseScaleX

	s.NoiseScaleT = float64(slider("Time scale (x1e-3)", float32(s.NoiseScaleT*1000), 0, 3, "%.2f")) / 1000
	s.VelocitySmoothing = float64(slider("Smoothing", float32(s.VelocitySmoothing), 0.05, 1, "%.2f"))
	header("Trails")
	s.StrokeLightness = float64(slider("Lightness", float32(s.StrokeLightness), 0.2, 0.9, "%.2f"))
	cfg.Background.Alpha = float64(slider("Trail fade", float32(cfg.Background.Alpha), 0.02, 1, "%.2f"))
	s.ParticleCount = int(slider("Particles (reseed)", float32(s.ParticleCount), 50, 3000, "%.0f"))

	header("Bloom")
	cfg.Bloom.Enabled = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Bloom", cfg.Bloom.Enabled)
	y += 24
	cfg.Bloom.CompositeSharp = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Sharp strokes", cfg.Bloom.CompositeSharp)
	y += 30

	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 100, Height: 26}, pauseText) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 110, Y: y, Width: 100, Height: 26}, "Reseed") {
		act.Reseed = true
	}

	return act
}
