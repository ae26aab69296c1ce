// Package terminal presents a raster canvas on a character terminal using
// half-block cells, two vertical pixels per cell.
package terminal

import (
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/swirl/game"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background.
const upperHalf = '▀'

// Presenter downsamples a canvas image onto a tcell screen. Each cell covers
// a block of pixelsPerCell x 2*pixelsPerCell canvas pixels.
type Presenter struct {
	screen        tcell.Screen
	pixelsPerCell int
}

// NewPresenter creates a presenter. pixelsPerCell is clamped to at least 1.
func NewPresenter(screen tcell.Screen, pixelsPerCell int) *Presenter {
	return &Presenter{
		screen:        screen,
		pixelsPerCell: max(pixelsPerCell, 1),
	}
}

// Viewport returns the canvas size matching the current screen.
func (p *Presenter) Viewport() game.Viewport {
	cols, rows := p.screen.Size()
	return game.NewViewport(cols*p.pixelsPerCell, rows*2*p.pixelsPerCell)
}

// Draw writes img to the screen and shows it. img holds premultiplied
// colours; they are shown as composited over black.
func (p *Presenter) Draw(img *image.RGBA) {
	cols, rows := p.screen.Size()
	n := p.pixelsPerCell
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := blockAverage(img, cx*n, 2*cy*n, n)
			bottom := blockAverage(img, cx*n, (2*cy+1)*n, n)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			p.screen.SetContent(cx, cy, upperHalf, nil, style)
		}
	}
	p.screen.Show()
}

// blockAverage averages the n x n block at (x0, y0), clipped to the image.
func blockAverage(img *image.RGBA, x0, y0, n int) tcell.Color {
	r := image.Rect(x0, y0, x0+n, y0+n).Intersect(img.Bounds())
	if r.Empty() {
		return tcell.NewRGBColor(0, 0, 0)
	}
	var sr, sg, sb int32
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, i = x+1, i+4 {
			sr += int32(img.Pix[i])
			sg += int32(img.Pix[i+1])
			sb += int32(img.Pix[i+2])
		}
	}
	count := int32(r.Dx() * r.Dy())
	return tcell.NewRGBColor(sr/count, sg/count, sb/count)
}
