package gpu

import (
	"fmt"
	"image/color"

	"github.com/pthm-cable/swirl/renderer"
)

// blendCase is one stroke composited onto a faded background.
type blendCase struct {
	name   string
	stroke color.NRGBA
	fill   color.NRGBA
	filter renderer.Filter
}

var blendCases = []blendCase{
	{"half alpha lighter", color.NRGBA{R: 255, G: 128, B: 64, A: 128}, color.NRGBA{R: 20, G: 10, B: 40, A: 102}, renderer.Filter{}},
	{"faint lighter", color.NRGBA{R: 200, G: 220, B: 255, A: 40}, color.NRGBA{A: 255}, renderer.Filter{}},
	{"brightened", color.NRGBA{R: 90, G: 60, B: 200, A: 160}, color.NRGBA{R: 20, G: 10, B: 40, A: 102}, renderer.Filter{Brightness: 2}},
}

// CheckAgainstRaster draws the same strokes and composites on a
// TextureCanvas and a RasterCanvas and compares a pixel in the middle of the
// stroke. It returns an error naming the first channel that differs by more
// than tolerance. Requires an initialized raylib window.
func CheckAgainstRaster(tolerance int) error {
	const w, h = 64, 32
	bloom := LoadBloomShader()
	defer bloom.Unload()

	for _, bc := range blendCases {
		primary := NewTextureCanvas(w, h, bloom)
		background := NewTextureCanvas(w, h, bloom)
		drawBlendCase(bc, primary, background)
		got := background.Image().RGBAAt(w/2, h/2)
		primary.Unload()
		background.Unload()

		rp := renderer.NewRasterCanvas(w, h)
		rb := renderer.NewRasterCanvas(w, h)
		drawBlendCase(bc, rp, rb)
		want := rb.Image().RGBAAt(w/2, h/2)

		channels := [4][2]uint8{{got.R, want.R}, {got.G, want.G}, {got.B, want.B}, {got.A, want.A}}
		for i, ch := range channels {
			if d := int(ch[0]) - int(ch[1]); d > tolerance || d < -tolerance {
				return fmt.Errorf("%s: channel %c = %d, raster canvas has %d", bc.name, "RGBA"[i], ch[0], ch[1])
			}
		}
	}
	return nil
}

func drawBlendCase(bc blendCase, primary, background renderer.Canvas) {
	_, h := primary.Size()
	y := float32(h) / 2

	background.BeginDraw()
	background.Fill(bc.fill)
	background.EndDraw()

	primary.BeginDraw()
	primary.Clear()
	primary.StrokeLine(8, y, 56, y, 6, bc.stroke)
	primary.EndDraw()

	background.BeginDraw()
	background.Composite(primary, renderer.CompositeLighter, bc.filter)
	background.EndDraw()
}
