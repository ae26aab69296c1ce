// Package renderer provides rendering utilities.
package renderer

import "image/color"

// CompositeOp selects how a source canvas is blended onto a destination.
type CompositeOp uint8

const (
	// CompositeSourceOver is normal alpha blending.
	CompositeSourceOver CompositeOp = iota
	// CompositeLighter adds source and destination, saturating at white.
	CompositeLighter
)

// String returns the canvas-style operation name.
func (op CompositeOp) String() string {
	switch op {
	case CompositeSourceOver:
		return "source-over"
	case CompositeLighter:
		return "lighter"
	default:
		return "unknown"
	}
}

// Filter is applied to the source pixels before compositing.
// The zero value leaves the source unchanged.
type Filter struct {
	Blur       float64 // Gaussian blur radius in pixels (0 = none)
	Brightness float64 // Colour multiplier (0 or 1 = unchanged)
}

// IsIdentity reports whether the filter leaves pixels unchanged.
func (f Filter) IsIdentity() bool {
	return f.Blur <= 0 && (f.Brightness == 0 || f.Brightness == 1)
}

// Canvas is a 2D immediate-mode drawing surface.
//
// Drawing calls must be bracketed by BeginDraw/EndDraw. At most one canvas
// may be between BeginDraw and EndDraw at a time.
type Canvas interface {
	// Size returns the canvas size in pixels.
	Size() (width, height int)
	// Resize changes the size, keeping existing pixels anchored top-left.
	Resize(width, height int)

	BeginDraw()
	EndDraw()

	// Clear sets every pixel to transparent.
	Clear()
	// Fill blends a colour over the whole canvas.
	Fill(c color.NRGBA)
	// StrokeLine draws a round-capped segment.
	StrokeLine(x1, y1, x2, y2, width float32, c color.NRGBA)
	// Composite draws src onto this canvas at the origin.
	// src must be the same implementation as the receiver.
	Composite(src Canvas, op CompositeOp, f Filter)
}
