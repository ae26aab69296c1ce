package gpu

import (
	"fmt"
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/renderer"
)

// TextureCanvas is a renderer.Canvas backed by a raylib RenderTexture2D.
// The texture is never smaller than 1x1; Size reports the logical size.
//
// Texels hold premultiplied colour, like RasterCanvas. Drawing between
// BeginDraw and EndDraw uses premultiplied source-over blending, and
// lighter composites add source and destination with factors (1, 1).
type TextureCanvas struct {
	target        rl.RenderTexture2D
	width, height int
	bloom         *BloomShader
}

var _ renderer.Canvas = (*TextureCanvas)(nil)

// NewTextureCanvas creates a transparent canvas. bloom may be shared
// between canvases and is required for filtered composites.
func NewTextureCanvas(width, height int, bloom *BloomShader) *TextureCanvas {
	c := &TextureCanvas{
		width:  max(width, 0),
		height: max(height, 0),
		bloom:  bloom,
	}
	c.target = loadTarget(c.width, c.height)
	return c
}

func loadTarget(width, height int) rl.RenderTexture2D {
	t := rl.LoadRenderTexture(int32(max(width, 1)), int32(max(height, 1)))
	rl.SetTextureFilter(t.Texture, rl.FilterBilinear)
	rl.BeginTextureMode(t)
	rl.ClearBackground(rl.Blank)
	rl.EndTextureMode()
	return t
}

// Size returns the logical canvas size in pixels.
func (c *TextureCanvas) Size() (int, int) {
	return c.width, c.height
}

// Resize reallocates the render texture and copies the old pixels across,
// anchored at the top-left corner.
func (c *TextureCanvas) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == c.width && height == c.height {
		return
	}

	next := loadTarget(width, height)
	tw, th := int32(max(width, 1)), int32(max(height, 1))

	// Render textures are stored bottom-up; flip to anchor the top edge
	img := rl.LoadImageFromTexture(c.target.Texture)
	rl.ImageFlipVertical(img)
	rl.ImageResizeCanvas(img, tw, th, 0, 0, rl.Blank)
	rl.ImageFlipVertical(img)
	colors := rl.LoadImageColors(img)
	rl.UpdateTexture(next.Texture, colors)
	rl.UnloadImageColors(colors)
	rl.UnloadImage(img)

	rl.UnloadRenderTexture(c.target)
	c.target = next
	c.width, c.height = width, height
}

// BeginDraw redirects raylib drawing into the texture.
func (c *TextureCanvas) BeginDraw() {
	rl.BeginTextureMode(c.target)
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
}

// EndDraw restores the previous draw target.
func (c *TextureCanvas) EndDraw() {
	rl.EndBlendMode()
	rl.EndTextureMode()
}

// Clear sets every pixel to transparent.
func (c *TextureCanvas) Clear() {
	rl.ClearBackground(rl.Blank)
}

// Fill blends a colour over the whole canvas.
func (c *TextureCanvas) Fill(col color.NRGBA) {
	rl.DrawRectangle(0, 0, c.target.Texture.Width, c.target.Texture.Height, premultiplied(col))
}

// StrokeLine draws a thick segment with round caps.
func (c *TextureCanvas) StrokeLine(x1, y1, x2, y2, width float32, col color.NRGBA) {
	if col.A == 0 || width <= 0 {
		return
	}
	rc := premultiplied(col)
	a := rl.Vector2{X: x1, Y: y1}
	b := rl.Vector2{X: x2, Y: y2}
	rl.DrawLineEx(a, b, width, rc)
	rl.DrawCircleV(a, width*0.5, rc)
	rl.DrawCircleV(b, width*0.5, rc)
}

// Composite draws src at the origin. Must be called between BeginDraw and
// EndDraw of the destination.
func (c *TextureCanvas) Composite(src renderer.Canvas, op renderer.CompositeOp, f renderer.Filter) {
	s, ok := src.(*TextureCanvas)
	if !ok {
		panic(fmt.Sprintf("gpu: cannot composite %T onto *TextureCanvas", src))
	}

	if op == renderer.CompositeLighter {
		rl.BeginBlendMode(rl.BlendAddColors)
		defer rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	}

	tex := s.target.Texture
	if !f.IsIdentity() && c.bloom != nil {
		c.bloom.Begin(f, tex.Width, tex.Height)
		defer c.bloom.End()
	}

	s.drawAt(0, 0)
}

// drawAt draws the texture upright onto the current target.
func (c *TextureCanvas) drawAt(x, y float32) {
	tex := c.target.Texture
	src := rl.Rectangle{Width: float32(tex.Width), Height: -float32(tex.Height)}
	rl.DrawTextureRec(tex, src, rl.Vector2{X: x, Y: y}, rl.White)
}

// Present draws the canvas onto the current target, normally the window
// between rl.BeginDrawing and rl.EndDrawing.
func (c *TextureCanvas) Present(x, y float32) {
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	c.drawAt(x, y)
	rl.EndBlendMode()
}

// Image reads the texture back into a premultiplied image, top row first.
func (c *TextureCanvas) Image() *image.RGBA {
	img := rl.LoadImageFromTexture(c.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	out := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	if c.width == 0 || c.height == 0 {
		return out
	}
	colors := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(colors)

	stride := int(img.Width)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			p := colors[y*stride+x]
			i := out.PixOffset(x, y)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = p.R, p.G, p.B, p.A
		}
	}
	return out
}

// Unload releases the render texture.
func (c *TextureCanvas) Unload() {
	rl.UnloadRenderTexture(c.target)
}

// premultiplied converts a straight-alpha colour for the premultiplied texels.
func premultiplied(col color.NRGBA) rl.Color {
	a := uint32(col.A)
	return rl.Color{
		R: uint8((uint32(col.R)*a + 127) / 255),
		G: uint8((uint32(col.G)*a + 127) / 255),
		B: uint8((uint32(col.B)*a + 127) / 255),
		A: col.A,
	}
}
