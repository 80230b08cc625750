package passes

import (
	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/rng"
)

// Bubbles bounds.
const (
	BubbleBackgroundMax = 50
	BubblesMin          = 50
	BubblesMax          = 150
	BubbleRadiusMin     = 50
	BubbleRadiusMax     = 300
	BubbleAlphaMin      = 50
	BubbleAlphaMax      = 100
)

// Bubbles paints a flat dark background and overlays translucent circles.
// It ignores the palette; colors come straight from the stream.
//
// Draws: three IntRange(0, 50) for the background channels, one
// IntRange(50, 150) for the circle count, then per circle IntRange for x in
// [0, width], y in [0, height], radius in [50, 300], r, g, b in [0, 255] and
// alpha in [50, 100], in that order. It returns the number of circles.
func Bubbles(c *canvas.Canvas, s *rng.Stream) int {
	bg := canvas.RGB(
		uint8(s.IntRange(0, BubbleBackgroundMax)),
		uint8(s.IntRange(0, BubbleBackgroundMax)),
		uint8(s.IntRange(0, BubbleBackgroundMax)),
	)
	c.Fill(bg)

	n := s.IntRange(BubblesMin, BubblesMax)
	for i := 0; i < n; i++ {
		x := s.IntRange(0, c.Width())
		y := s.IntRange(0, c.Height())
		radius := float64(s.IntRange(BubbleRadiusMin, BubbleRadiusMax))
		col := canvas.RGBA(
			uint8(s.IntRange(0, 255)),
			uint8(s.IntRange(0, 255)),
			uint8(s.IntRange(0, 255)),
			uint8(s.IntRange(BubbleAlphaMin, BubbleAlphaMax)),
		)
		c.FillEllipse(float64(x), float64(y), radius, radius, col)
	}
	return n
}
