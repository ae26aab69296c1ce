package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// kappa is the cubic Bézier control distance for a quarter circle.
const kappa = 0.5522847498

// RasterCanvas is a software canvas backed by a premultiplied RGBA image.
// Used for headless runs and the terminal presenter.
type RasterCanvas struct {
	img      *image.RGBA
	filtered *image.RGBA // Scratch for filtered composite sources
	raster   vector.Rasterizer
	paint    *image.Uniform
}

// NewRasterCanvas creates a transparent canvas.
func NewRasterCanvas(width, height int) *RasterCanvas {
	return &RasterCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		paint: image.NewUniform(color.NRGBA{}),
	}
}

// Image returns the backing image. It is reused across frames.
func (c *RasterCanvas) Image() *image.RGBA {
	return c.img
}

// Size returns the canvas size in pixels.
func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the image and copies the old pixels across.
func (c *RasterCanvas) Resize(width, height int) {
	w, h := c.Size()
	if w == width && h == height {
		return
	}
	next := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	draw.Draw(next, next.Bounds(), c.img, image.Point{}, draw.Src)
	c.img = next
}

// BeginDraw is a no-op for the software canvas.
func (c *RasterCanvas) BeginDraw() {}

// EndDraw is a no-op for the software canvas.
func (c *RasterCanvas) EndDraw() {}

// Clear sets every pixel to transparent.
func (c *RasterCanvas) Clear() {
	clear(c.img.Pix)
}

// Fill blends a colour over the whole canvas (source-over).
func (c *RasterCanvas) Fill(col color.NRGBA) {
	if col.A == 0 {
		return
	}
	a := uint32(col.A)
	sr := uint32(col.R) * a / 255
	sg := uint32(col.G) * a / 255
	sb := uint32(col.B) * a / 255
	inv := 255 - a

	pix := c.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = uint8(sr + uint32(pix[i])*inv/255)
		pix[i+1] = uint8(sg + uint32(pix[i+1])*inv/255)
		pix[i+2] = uint8(sb + uint32(pix[i+2])*inv/255)
		pix[i+3] = uint8(a + uint32(pix[i+3])*inv/255)
	}
}

// StrokeLine draws a round-capped segment as a filled capsule.
func (c *RasterCanvas) StrokeLine(x1, y1, x2, y2, width float32, col color.NRGBA) {
	if col.A == 0 || width <= 0 {
		return
	}
	half := width * 0.5

	// Rasterize only the capsule's bounding box
	minX := int(math.Floor(float64(min(x1, x2) - half)))
	minY := int(math.Floor(float64(min(y1, y2) - half)))
	maxX := int(math.Ceil(float64(max(x1, x2) + half)))
	maxY := int(math.Ceil(float64(max(y1, y2) + half)))
	box := image.Rect(minX, minY, maxX, maxY).Intersect(c.img.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	ax, ay := x1-ox, y1-oy
	bx, by := x2-ox, y2-oy

	// Unit tangent (u) and normal (n) scaled to the half width
	dx, dy := bx-ax, by-ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l < 1e-4 {
		dx, dy, l = 1, 0, 1
	}
	ux, uy := dx/l*half, dy/l*half
	nx, ny := -uy, ux
	const k = kappa

	z := &c.raster
	z.Reset(box.Dx(), box.Dy())
	z.DrawOp = draw.Over

	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	// Cap around b: +n -> +u -> -n
	z.CubeTo(bx+nx+k*ux, by+ny+k*uy, bx+ux+k*nx, by+uy+k*ny, bx+ux, by+uy)
	z.CubeTo(bx+ux-k*nx, by+uy-k*ny, bx-nx+k*ux, by-ny+k*uy, bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	// Cap around a: -n -> -u -> +n
	z.CubeTo(ax-nx-k*ux, ay-ny-k*uy, ax-ux-k*nx, ay-uy-k*ny, ax-ux, ay-uy)
	z.CubeTo(ax-ux+k*nx, ay-uy+k*ny, ax+nx-k*ux, ay+ny-k*uy, ax+nx, ay+ny)
	z.ClosePath()

	c.paint.C = col
	z.Draw(c.img, box, c.paint, image.Point{})
}

// Composite draws src onto the canvas at the origin.
func (c *RasterCanvas) Composite(src Canvas, op CompositeOp, f Filter) {
	s, ok := src.(*RasterCanvas)
	if !ok {
		panic(fmt.Sprintf("renderer: cannot composite %T onto *RasterCanvas", src))
	}

	from := s.img
	if f.Blur > 0 {
		c.filtered = premultiply(imaging.Blur(s.img, f.Blur), c.filtered)
		from = c.filtered
	}

	bright := f.Brightness
	if bright <= 0 {
		bright = 1
	}

	r := c.img.Bounds().Intersect(from.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := from.PixOffset(r.Min.X, y)
		di := c.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, si, di = x+1, si+4, di+4 {
			sa := uint32(from.Pix[si+3])
			if sa == 0 {
				continue
			}
			sr := brighten(from.Pix[si], sa, bright)
			sg := brighten(from.Pix[si+1], sa, bright)
			sb := brighten(from.Pix[si+2], sa, bright)

			d := c.img.Pix[di : di+4 : di+4]
			switch op {
			case CompositeLighter:
				d[0] = addSat(d[0], sr)
				d[1] = addSat(d[1], sg)
				d[2] = addSat(d[2], sb)
				d[3] = addSat(d[3], sa)
			default:
				inv := 255 - sa
				d[0] = uint8(sr + uint32(d[0])*inv/255)
				d[1] = uint8(sg + uint32(d[1])*inv/255)
				d[2] = uint8(sb + uint32(d[2])*inv/255)
				d[3] = uint8(sa + uint32(d[3])*inv/255)
			}
		}
	}
}

// brighten scales a premultiplied channel, capped at alpha so the
// un-premultiplied value stays within [0, 1].
func brighten(v uint8, a uint32, factor float64) uint32 {
	if factor == 1 {
		return uint32(v)
	}
	s := uint32(float64(v)*factor + 0.5)
	if s > a {
		return a
	}
	return s
}

func addSat(d uint8, s uint32) uint8 {
	v := uint32(d) + s
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// premultiply converts an NRGBA image into dst, reallocating dst if the
// bounds differ.
func premultiply(src *image.NRGBA, dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds() != src.Bounds() {
		dst = image.NewRGBA(src.Bounds())
	}
	for i := 0; i+3 < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3])
		dst.Pix[i] = uint8(uint32(src.Pix[i]) * a / 255)
		dst.Pix[i+1] = uint8(uint32(src.Pix[i+1]) * a / 255)
		dst.Pix[i+2] = uint8(uint32(src.Pix[i+2]) * a / 255)
		dst.Pix[i+3] = uint8(a)
	}
	return dst
}
