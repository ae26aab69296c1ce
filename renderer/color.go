package renderer

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/swirl/config"
)

// HSLA is a hue/saturation/lightness colour with alpha.
// H is in degrees, S, L and A in [0, 1].
type HSLA struct {
	H, S, L, A float64
}

// BackgroundHSLA converts the configured fade colour.
func BackgroundHSLA(c config.BackgroundConfig) HSLA {
	return HSLA{H: c.Hue, S: c.Saturation, L: c.Lightness, A: c.Alpha}
}

// NRGBA converts to a non-premultiplied 8-bit colour.
func (c HSLA) NRGBA() color.NRGBA {
	r, g, b := colorful.Hsl(c.H, clamp01(c.S), clamp01(c.L)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(c.A)*255 + 0.5)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
