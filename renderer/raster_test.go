package renderer

import (
	"image/color"
	"testing"
)

func TestRasterClear(t *testing.T) {
	c := NewRasterCanvas(8, 8)
	c.Fill(color.NRGBA{R: 255, A: 255})
	c.Clear()

	for i, v := range c.Image().Pix {
		if v != 0 {
			t.Fatalf("expected transparent canvas after clear, byte %d = %d", i, v)
		}
	}
}

func TestRasterFillBlends(t *testing.T) {
	c := NewRasterCanvas(4, 4)

	c.Fill(color.NRGBA{R: 200, G: 100, B: 0, A: 255})
	px := c.Image().RGBAAt(1, 1)
	if px.R != 200 || px.G != 100 || px.A != 255 {
		t.Fatalf("expected opaque fill, got %+v", px)
	}

	// Half-transparent black halves the existing colour
	c.Fill(color.NRGBA{A: 128})
	px = c.Image().RGBAAt(1, 1)
	if px.R < 98 || px.R > 102 {
		t.Errorf("expected red ~100 after dimming, got %d", px.R)
	}
	if px.A != 255 {
		t.Errorf("expected alpha to stay opaque, got %d", px.A)
	}
}

func TestRasterStrokeLine(t *testing.T) {
	c := NewRasterCanvas(40, 20)
	c.StrokeLine(5, 10, 35, 10, 4, color.NRGBA{G: 255, A: 255})

	img := c.Image()
	if px := img.RGBAAt(20, 10); px.G < 250 || px.A < 250 {
		t.Errorf("expected solid green at the segment middle, got %+v", px)
	}
	// Round cap extends past the end point by the half width
	if px := img.RGBAAt(36, 10); px.A == 0 {
		t.Error("expected cap coverage just past the end point")
	}
	if px := img.RGBAAt(20, 2); px.A != 0 {
		t.Errorf("expected nothing far from the segment, got %+v", px)
	}
}

func TestRasterStrokeDegenerate(t *testing.T) {
	c := NewRasterCanvas(20, 20)
	c.StrokeLine(10, 10, 10, 10, 6, color.NRGBA{B: 255, A: 255})

	if px := c.Image().RGBAAt(10, 10); px.A == 0 {
		t.Error("zero-length stroke should still draw a round dot")
	}
}

func TestRasterStrokeClipped(t *testing.T) {
	c := NewRasterCanvas(10, 10)

	// Partially and fully outside the canvas must not panic
	c.StrokeLine(-5, 5, 5, 5, 2, color.NRGBA{R: 255, A: 255})
	c.StrokeLine(-50, -50, -40, -40, 2, color.NRGBA{R: 255, A: 255})
	c.StrokeLine(5, 5, 50, 5, 2, color.NRGBA{R: 255, A: 255})

	if px := c.Image().RGBAAt(2, 5); px.R == 0 {
		t.Error("expected visible part of a clipped stroke to be drawn")
	}
}

func TestRasterResizePreservesContent(t *testing.T) {
	c := NewRasterCanvas(10, 10)
	c.StrokeLine(2, 2, 8, 2, 2, color.NRGBA{R: 255, A: 255})
	before := c.Image().RGBAAt(5, 2)

	c.Resize(20, 30)

	w, h := c.Size()
	if w != 20 || h != 30 {
		t.Fatalf("expected 20x30, got %dx%d", w, h)
	}
	if got := c.Image().RGBAAt(5, 2); got != before {
		t.Errorf("resize lost pixel content: %+v -> %+v", before, got)
	}

	// Shrinking keeps what still fits
	c.Resize(6, 6)
	if got := c.Image().RGBAAt(5, 2); got != before {
		t.Errorf("shrink lost pixel content: %+v -> %+v", before, got)
	}
}

func TestRasterResizeToZero(t *testing.T) {
	c := NewRasterCanvas(10, 10)
	c.Resize(0, 0)

	c.Clear()
	c.Fill(color.NRGBA{A: 100})
	c.StrokeLine(0, 0, 5, 5, 2, color.NRGBA{A: 255})
	c.Composite(NewRasterCanvas(4, 4), CompositeLighter, Filter{Blur: 2, Brightness: 2})
}

func TestRasterCompositeLighter(t *testing.T) {
	dst := NewRasterCanvas(4, 4)
	src := NewRasterCanvas(4, 4)
	dst.Fill(color.NRGBA{R: 100, G: 200, A: 255})
	src.Fill(color.NRGBA{R: 100, G: 100, A: 255})

	dst.Composite(src, CompositeLighter, Filter{})

	px := dst.Image().RGBAAt(0, 0)
	if px.R != 200 {
		t.Errorf("expected additive red 200, got %d", px.R)
	}
	if px.G != 255 {
		t.Errorf("expected saturated green 255, got %d", px.G)
	}
}

func TestRasterCompositeBrightness(t *testing.T) {
	dst := NewRasterCanvas(2, 2)
	src := NewRasterCanvas(2, 2)
	src.Fill(color.NRGBA{R: 60, A: 255})

	dst.Composite(src, CompositeLighter, Filter{Brightness: 2})

	if px := dst.Image().RGBAAt(0, 0); px.R != 120 {
		t.Errorf("expected doubled red 120, got %d", px.R)
	}
}

func TestRasterCompositeBlurSpreads(t *testing.T) {
	dst := NewRasterCanvas(30, 30)
	src := NewRasterCanvas(30, 30)
	src.StrokeLine(15, 15, 15, 15, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	dst.Composite(src, CompositeLighter, Filter{Blur: 3, Brightness: 2})

	if px := dst.Image().RGBAAt(19, 15); px.A == 0 {
		t.Error("expected blur to spread light beyond the stroke")
	}
	if px := dst.Image().RGBAAt(0, 0); px.A != 0 {
		t.Errorf("expected far corner untouched, got %+v", px)
	}
}

func TestRasterCompositeSourceOver(t *testing.T) {
	dst := NewRasterCanvas(2, 2)
	src := NewRasterCanvas(2, 2)
	dst.Fill(color.NRGBA{B: 255, A: 255})
	src.Fill(color.NRGBA{R: 255, A: 255})

	dst.Composite(src, CompositeSourceOver, Filter{})

	if px := dst.Image().RGBAAt(1, 1); px.R != 255 || px.B != 0 {
		t.Errorf("expected opaque source to replace destination, got %+v", px)
	}
}

func TestHSLAConversion(t *testing.T) {
	tests := []struct {
		in   HSLA
		want color.NRGBA
	}{
		{HSLA{H: 0, S: 1, L: 0.5, A: 1}, color.NRGBA{R: 255, A: 255}},
		{HSLA{H: 120, S: 1, L: 0.5, A: 0}, color.NRGBA{G: 255}},
		{HSLA{H: 240, S: 1, L: 0.5, A: 0.5}, color.NRGBA{B: 255, A: 128}},
		{HSLA{H: 0, S: 0, L: 1, A: 2}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	}

	for _, tc := range tests {
		if got := tc.in.NRGBA(); got != tc.want {
			t.Errorf("%+v.NRGBA() = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
