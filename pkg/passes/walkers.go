package passes

import (
	"math"

	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/rng"
)

// Walker bounds.
const (
	WalkersMin    = 3
	WalkersMax    = 8
	WalkerStepMin = 200
	WalkerStepMax = 500
	StrideMin     = 5.0
	StrideMax     = 25.0
)

// Walker is a random-walk path tracer.
type Walker struct {
	Pos   Point
	Steps int
	Color canvas.Color
}

// Advance moves the walker by length along angle and clamps the result to
// [0, width-1] x [0, height-1]. It returns the position before the move.
// Clamping never bounces or ends the walk.
func (w *Walker) Advance(angle, length float64, width, height int) Point {
	from := w.Pos
	w.Pos = Point{
		X: clamp(from.X+math.Cos(angle)*length, 0, float64(width-1)),
		Y: clamp(from.Y+math.Sin(angle)*length, 0, float64(height-1)),
	}
	return from
}

// Walk runs all of the walker's steps, drawing each segment.
// Draws per step: FloatRange(0, 2π) for the angle, FloatRange(5, 25) for
// the length.
func (w *Walker) Walk(c *canvas.Canvas, s *rng.Stream) {
	for i := 0; i < w.Steps; i++ {
		angle := s.FloatRange(0, 2*math.Pi)
		length := s.FloatRange(StrideMin, StrideMax)
		from := w.Advance(angle, length, c.Width(), c.Height())
		c.DrawLine(from.X, from.Y, w.Pos.X, w.Pos.Y, w.Color)
	}
}

// NewWalker spawns a walker. Draws, in order: FloatRange(0, width),
// FloatRange(0, height), IntRange(200, 500) for the step count, and one
// Choose over the palette's line colors.
func NewWalker(s *rng.Stream, width, height int, lines []canvas.Color) *Walker {
	x := s.FloatRange(0, float64(width))
	y := s.FloatRange(0, float64(height))
	steps := s.IntRange(WalkerStepMin, WalkerStepMax)
	col := rng.Choose(s, lines)
	return &Walker{Pos: Point{X: x, Y: y}, Steps: steps, Color: col}
}

// ChaoticWalkers traces IntRange(3, 8) random walks in the palette's line
// colors. Each walker is spawned and runs to completion before the next one
// is spawned. It returns the number of walkers drawn.
func ChaoticWalkers(c *canvas.Canvas, s *rng.Stream, p palette.Palette) int {
	n := s.IntRange(WalkersMin, WalkersMax)
	for i := 0; i < n; i++ {
		NewWalker(s, c.Width(), c.Height(), p.Lines).Walk(c, s)
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
