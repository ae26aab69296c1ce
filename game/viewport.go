package game

import (
	"fmt"
	"log/slog"
)

// Viewport is the drawable surface size in pixels plus dynamic viewport
// units (1dvw is 1% of the width, 1dvh is 1% of the height).
type Viewport struct {
	Width, Height int
	DVW, DVH      float64
	DVMin, DVMax  float64
}

// NewViewport builds a viewport, treating negative sizes as zero.
func NewViewport(width, height int) Viewport {
	width, height = max(width, 0), max(height, 0)
	dvw := float64(width) / 100
	dvh := float64(height) / 100
	return Viewport{
		Width:  width,
		Height: height,
		DVW:    dvw,
		DVH:    dvh,
		DVMin:  min(dvw, dvh),
		DVMax:  max(dvw, dvh),
	}
}

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.Width == 0 || v.Height == 0
}

// String implements fmt.Stringer.
func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ViewportSource reports the current surface size.
type ViewportSource interface {
	Viewport() Viewport
}

// ViewportFunc adapts a function to ViewportSource.
type ViewportFunc func() Viewport

// Viewport calls f.
func (f ViewportFunc) Viewport() Viewport {
	return f()
}

// FixedViewport is a ViewportSource with a size set by the caller.
type FixedViewport struct {
	v Viewport
}

// NewFixedViewport creates a source reporting width x height.
func NewFixedViewport(width, height int) *FixedViewport {
	return &FixedViewport{v: NewViewport(width, height)}
}

// Set changes the reported size.
func (f *FixedViewport) Set(width, height int) {
	f.v = NewViewport(width, height)
}

// Viewport returns the current size.
func (f *FixedViewport) Viewport() Viewport {
	return f.v
}

// SafeViewport wraps a source so a failing environment query yields the
// zero viewport instead of a panic.
type SafeViewport struct {
	Source ViewportSource
}

// Viewport queries the wrapped source.
func (s SafeViewport) Viewport() (v Viewport) {
	if s.Source == nil {
		return Viewport{}
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("viewport query failed", "error", r)
			v = Viewport{}
		}
	}()
	return s.Source.Viewport()
}

// ResizeNotifier delivers viewport changes to listeners.
type ResizeNotifier interface {
	// Listen registers cb and returns a function that removes it.
	Listen(cb func(Viewport)) (unsubscribe func())
}

type resizeListener struct {
	id int
	cb func(Viewport)
}

// ViewportWatcher polls a source once per frame and notifies listeners when
// the size changes.
type ViewportWatcher struct {
	source    ViewportSource
	last      Viewport
	listeners []resizeListener
	nextID    int
}

// NewViewportWatcher creates a watcher. The source is wrapped in SafeViewport.
func NewViewportWatcher(source ViewportSource) *ViewportWatcher {
	w := &ViewportWatcher{source: SafeViewport{Source: source}}
	w.last = w.source.Viewport()
	return w
}

// Current returns the last observed viewport.
func (w *ViewportWatcher) Current() Viewport {
	return w.last
}

// Viewport implements ViewportSource with a fresh query.
func (w *ViewportWatcher) Viewport() Viewport {
	return w.source.Viewport()
}

// Listen registers cb for size changes.
func (w *ViewportWatcher) Listen(cb func(Viewport)) func() {
	w.nextID++
	id := w.nextID
	w.listeners = append(w.listeners, resizeListener{id: id, cb: cb})
	return func() {
		for i, l := range w.listeners {
			if l.id == id {
				w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of registered listeners.
func (w *ViewportWatcher) Listeners() int {
	return len(w.listeners)
}

// Poll queries the source and notifies listeners if the size changed.
// Returns true if a change was delivered.
func (w *ViewportWatcher) Poll() bool {
	v := w.source.Viewport()
	if v.Width == w.last.Width && v.Height == w.last.Height {
		return false
	}
	slog.Debug("viewport changed", "from", w.last.String(), "to", v.String())
	w.last = v

	// Listeners may unsubscribe while being notified
	snapshot := append([]resizeListener(nil), w.listeners...)
	for _, l := range snapshot {
		w.notify(l, v)
	}
	return true
}

func (w *ViewportWatcher) notify(l resizeListener, v Viewport) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("resize listener failed", "listener", l.id, "error", r)
		}
	}()
	l.cb(v)
}
