package passes

import "github.com/matzehuels/dailyart/pkg/canvas"

// Gradient fills the canvas top to bottom, interpolating each channel
// independently from start (row 0) towards end:
//
//	channel(y) = start + (end - start) * (y / height)
//
// truncated toward zero. No randomness is consumed.
func Gradient(c *canvas.Canvas, start, end canvas.Color) {
	h := c.Height()
	for y := 0; y < h; y++ {
		c.HLine(y, GradientAt(start, end, y, h))
	}
}

// GradientAt returns the opaque color of row y of an h-row gradient.
func GradientAt(start, end canvas.Color, y, h int) canvas.Color {
	t := float64(y) / float64(h)
	return canvas.RGB(
		lerp(start.R, end.R, t),
		lerp(start.G, end.G, t),
		lerp(start.B, end.B, t),
	)
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
