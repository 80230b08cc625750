// Package canvas provides the pixel buffer the drawing passes render into.
//
// A Canvas is a fixed-size, row-major RGB grid with the origin at the top
// left. It is backed by an *image.RGBA whose alpha channel is kept at 255,
// so the finished buffer can be handed directly to any image encoder.
//
// Drawing never fails: coordinates outside the canvas are ignored per pixel.
// Passes that need positions kept on the canvas clamp them themselves.
package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/matzehuels/dailyart/pkg/errors"
)

// Color is an RGB color with an optional alpha used for blended fills.
// Opaque colors have A == 255.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// RGBA returns a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Opaque returns c with alpha forced to 255.
func (c Color) Opaque() Color { c.A = 255; return c }

// NRGBA converts c to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Canvas is a mutable pixel buffer.
type Canvas struct {
	img *image.RGBA
	w   int
	h   int
}

// New allocates a width x height canvas filled with opaque black.
//
// Non-positive dimensions return ErrCodeInvalidDimensions; buffers over
// errors.MaxPixels return ErrCodeAllocation.
func New(width, height int) (*Canvas, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &Canvas{img: img, w: width, h: height}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.w }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.h }

// Image exposes the backing image for encoding. Callers must not retain it
// across further drawing if they need a stable snapshot; use Clone.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clone returns an independent copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	img := image.NewRGBA(c.img.Rect)
	copy(img.Pix, c.img.Pix)
	return &Canvas{img: img, w: c.w, h: c.h}
}

// In reports whether (x, y) lies on the canvas.
func (c *Canvas) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.w && y < c.h
}

// At returns the opaque color at (x, y), or the zero Color if out of bounds.
func (c *Canvas) At(x, y int) Color {
	if !c.In(x, y) {
		return Color{}
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// SetPixel writes col at (x, y), blending when col.A < 255.
// Out-of-bounds coordinates are ignored.
func (c *Canvas) SetPixel(x, y int, col Color) {
	if !c.In(x, y) {
		return
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	if col.A == 255 {
		p[0], p[1], p[2] = col.R, col.G, col.B
	} else {
		p[0] = blend(col.R, p[0], col.A)
		p[1] = blend(col.G, p[1], col.A)
		p[2] = blend(col.B, p[2], col.A)
	}
	p[3] = 0xff
}

// blend mixes src over dst proportionally to a/255.
func blend(src, dst, a uint8) uint8 {
	return uint8((uint32(src)*uint32(a) + uint32(dst)*(255-uint32(a))) / 255)
}

// Fill paints every pixel with col.
func (c *Canvas) Fill(col Color) {
	for y := 0; y < c.h; y++ {
		c.HLine(y, col)
	}
}

// HLine draws a full-width horizontal line on row y.
func (c *Canvas) HLine(y int, col Color) {
	if y < 0 || y >= c.h {
		return
	}
	for x := 0; x < c.w; x++ {
		c.SetPixel(x, y, col)
	}
}

// DrawLine rasterizes a 1-pixel segment between two points. Endpoints are
// rounded to the nearest pixel and the segment is traced with Bresenham's
// algorithm; pixels falling off the canvas are skipped.
func (c *Canvas) DrawLine(x0, y0, x1, y1 float64, col Color) {
	ax, ay := int(math.Round(x0)), int(math.Round(y0))
	bx, by := int(math.Round(x1)), int(math.Round(y1))

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}

	e := dx + dy
	for {
		c.SetPixel(ax, ay, col)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// FillEllipse fills every pixel (x, y) with
// ((x-cx)/rx)^2 + ((y-cy)/ry)^2 <= 1. Colors with A < 255 are blended over
// the existing pixels. Non-positive radii draw nothing.
func (c *Canvas) FillEllipse(cx, cy, rx, ry float64, col Color) {
	if rx <= 0 || ry <= 0 {
		return
	}
	// Lattice points exactly on the boundary must survive rounding error.
	const eps = 1e-9

	x0 := max(0, int(math.Ceil(cx-rx)))
	x1 := min(c.w-1, int(math.Floor(cx+rx)))
	y0 := max(0, int(math.Ceil(cy-ry)))
	y1 := min(c.h-1, int(math.Floor(cy+ry)))
	for y := y0; y <= y1; y++ {
		ny := (float64(y) - cy) / ry
		for x := x0; x <= x1; x++ {
			nx := (float64(x) - cx) / rx
			if nx*nx+ny*ny <= 1+eps {
				c.SetPixel(x, y, col)
			}
		}
	}
}

// Count returns the number of pixels for which match returns true.
func (c *Canvas) Count(match func(x, y int, col Color) bool) int {
	n := 0
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			if match(x, y, c.At(x, y)) {
				n++
			}
		}
	}
	return n
}

// Equal reports whether both canvases have the same size and pixels.
func (c *Canvas) Equal(o *Canvas) bool {
	if c.w != o.w || c.h != o.h {
		return false
	}
	for i := range c.img.Pix {
		if c.img.Pix[i] != o.img.Pix[i] {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
