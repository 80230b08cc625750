package passes

import (
	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/rng"
)

// Grid step bounds, in pixels.
const (
	GridStepMin = 50
	GridStepMax = 150
)

// GridField is the perturbed lattice drawn by FracturedGrid.
// Points are indexed [column][row].
type GridField struct {
	Step   int
	Jolt   float64
	Points [][]Point
}

// Cols returns the number of lattice columns.
func (f *GridField) Cols() int { return len(f.Points) }

// Rows returns the number of lattice rows.
func (f *GridField) Rows() int {
	if len(f.Points) == 0 {
		return 0
	}
	return len(f.Points[0])
}

// Nominal returns the unperturbed position of point [i][j].
func (f *GridField) Nominal(i, j int) Point {
	return Point{X: float64(i * f.Step), Y: float64(j * f.Step)}
}

// BuildGrid lays out nominal points every step pixels while x < width+step
// and y < height+step, so the lattice overhangs the right and bottom edges
// by one cell and no seam shows at the border. Each point is then offset by
// FloatRange(-jolt, jolt) on x and then on y, with jolt = step/4. Columns
// form the outer loop.
func BuildGrid(s *rng.Stream, width, height, step int) *GridField {
	jolt := float64(step) / 4
	f := &GridField{Step: step, Jolt: jolt}
	for x := 0; x < width+step; x += step {
		var col []Point
		for y := 0; y < height+step; y += step {
			col = append(col, Point{
				X: float64(x) + s.FloatRange(-jolt, jolt),
				Y: float64(y) + s.FloatRange(-jolt, jolt),
			})
		}
		f.Points = append(f.Points, col)
	}
	return f
}

// Draw joins every point to its neighbour below and to its right.
func (f *GridField) Draw(c *canvas.Canvas, col canvas.Color) {
	for i, column := range f.Points {
		for j, p := range column {
			if j+1 < len(column) {
				q := column[j+1]
				c.DrawLine(p.X, p.Y, q.X, q.Y, col)
			}
			if i+1 < len(f.Points) {
				q := f.Points[i+1][j]
				c.DrawLine(p.X, p.Y, q.X, q.Y, col)
			}
		}
	}
}

// FracturedGrid draws a jittered lattice in the palette's grid color.
//
// Draws: one IntRange(GridStepMin, GridStepMax) for the step, then two
// FloatRange per lattice point (see BuildGrid).
func FracturedGrid(c *canvas.Canvas, s *rng.Stream, p palette.Palette) *GridField {
	step := s.IntRange(GridStepMin, GridStepMax)
	f := BuildGrid(s, c.Width(), c.Height(), step)
	f.Draw(c, p.Grid)
	return f
}
