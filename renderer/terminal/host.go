package terminal

import (
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/swirl/game"
	"github.com/pthm-cable/swirl/renderer"
)

// KeyHandler reacts to a key press. Returning false stops the host.
type KeyHandler func(ev *tcell.EventKey) bool

// Host runs a game.Loop at a fixed rate and presents a raster canvas after
// every frame.
type Host struct {
	screen    tcell.Screen
	presenter *Presenter
	canvas    *renderer.RasterCanvas
	loop      *game.Loop
	fps       int
	onKey     KeyHandler
}

// NewHost creates a host. The screen must already be initialized.
func NewHost(screen tcell.Screen, presenter *Presenter, canvas *renderer.RasterCanvas, loop *game.Loop, fps int, onKey KeyHandler) *Host {
	return &Host{
		screen:    screen,
		presenter: presenter,
		canvas:    canvas,
		loop:      loop,
		fps:       max(fps, 1),
		onKey:     onKey,
	}
}

// Present draws the canvas. Use as the animator's frame hook.
func (h *Host) Present(uint64) {
	h.presenter.Draw(h.canvas.Image())
}

// Run processes input and frames until a quit key, the loop going idle, or
// stop returning true. stop may be nil.
func (h *Host) Run(stop func() bool) {
	ticker := time.NewTicker(time.Second / time.Duration(h.fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !h.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			if h.loop.Idle() {
				slog.Info("animation loop stopped")
				return
			}
			if stop != nil && stop() {
				slog.Info("max ticks reached", "frame", h.loop.Frames())
				return
			}
			h.loop.Frame()
		}
	}
}

func (h *Host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		if h.onKey != nil {
			return h.onKey(ev)
		}

	case *tcell.EventResize:
		// The viewport watcher picks up the new size on the next frame
		h.screen.Sync()
	}
	return true
}
