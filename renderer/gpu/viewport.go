package gpu

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/game"
)

// WindowViewport reports the raylib window size.
type WindowViewport struct{}

// Viewport implements game.ViewportSource.
func (WindowViewport) Viewport() game.Viewport {
	if !rl.IsWindowReady() {
		return game.Viewport{}
	}
	return game.NewViewport(rl.GetScreenWidth(), rl.GetScreenHeight())
}
