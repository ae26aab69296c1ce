package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the status HUD.
type HUDData struct {
	Title     string
	Particles int
	Frame     uint64
	FPS       int32
	Respawns  int
	Width     int
	Height    int
	LifeMean  float32 // Mean age/ttl of the last stats window
	Paused    bool
}

// HUD renders the status heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	const x, width = 10, 260

	r.DrawPanel(x-4, 6, width, 104)
	rl.DrawText(data.Title, x, 10, 20, rl.White)

	y := int32(36)
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d (%d respawned)", data.Particles, data.Respawns))
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d @ %d fps", data.Frame, data.FPS))
	y = r.DrawLabelValue(x, y, "Surface", fmt.Sprintf("%dx%d", data.Width, data.Height))
	r.DrawBar(x, y, "Life", data.LifeMean, width-8)

	if data.Paused {
		rl.DrawText("PAUSED", x+width-70, 14, 14, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
