package renderer

import (
	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/systems"
)

// SwirlRenderer draws particle strokes on a transient primary canvas and
// blooms them onto a persistent background canvas that fades old trails.
//
// Frame order: BeginFrame, one Stroke per particle, EndStrokes, Bloom, Composite.
type SwirlRenderer struct {
	cfg        *config.Config
	primary    Canvas
	background Canvas

	strokes int // Strokes drawn since BeginFrame
}

var _ systems.StrokeSink = (*SwirlRenderer)(nil)

// NewSwirlRenderer creates a renderer over two canvases of the same implementation.
func NewSwirlRenderer(cfg *config.Config, primary, background Canvas) *SwirlRenderer {
	return &SwirlRenderer{
		cfg:        cfg,
		primary:    primary,
		background: background,
	}
}

// Resize resizes both canvases, keeping their content.
func (r *SwirlRenderer) Resize(width, height int) {
	r.primary.Resize(width, height)
	r.background.Resize(width, height)
}

// BeginFrame dims the persistent canvas and clears the primary one for strokes.
func (r *SwirlRenderer) BeginFrame() {
	r.strokes = 0

	r.background.BeginDraw()
	r.background.Fill(BackgroundHSLA(r.cfg.Background).NRGBA())
	r.background.EndDraw()

	r.primary.BeginDraw()
	r.primary.Clear()
}

// Stroke draws one particle's movement this frame. Alpha follows a
// triangular fade over the particle's lifetime.
func (r *SwirlRenderer) Stroke(x1, y1, x2, y2, age, ttl, radius, hue float32) {
	s := r.cfg.Swirl
	col := HSLA{
		H: float64(hue),
		S: s.StrokeSaturation,
		L: s.StrokeLightness,
		A: float64(systems.FadeInOut(age, ttl)),
	}.NRGBA()
	r.primary.StrokeLine(x1, y1, x2, y2, radius, col)
	r.strokes++
}

// EndStrokes closes the primary canvas.
func (r *SwirlRenderer) EndStrokes() {
	r.primary.EndDraw()
}

// Bloom adds blurred, brightened copies of the strokes to the persistent canvas.
func (r *SwirlRenderer) Bloom() {
	r.background.BeginDraw()
	if !r.cfg.Bloom.Enabled {
		return
	}
	for _, pass := range r.cfg.Bloom.Passes {
		r.background.Composite(r.primary, CompositeLighter, Filter{Blur: pass.Blur, Brightness: pass.Brightness})
	}
}

// Composite adds the sharp strokes on top of the glow and closes the frame.
func (r *SwirlRenderer) Composite() {
	if r.cfg.Bloom.CompositeSharp {
		r.background.Composite(r.primary, CompositeLighter, Filter{})
	}
	r.background.EndDraw()
}

// Strokes returns the number of strokes drawn in the current frame.
func (r *SwirlRenderer) Strokes() int {
	return r.strokes
}
