// Package passes implements the drawing passes that compose an image.
//
// Every pass mutates a canvas in place and, except for the gradient, draws
// from the shared random stream. The stream is never reseeded between
// passes, so both the order of passes and the order of draws inside each
// pass are part of the reproducibility contract. Each pass documents the
// exact sequence of draws it makes.
//
// The canonical composition is:
//
//	passes.Gradient(c, p.BgStart, p.BgEnd)
//	passes.FracturedGrid(c, s, p)
//	passes.ChaoticWalkers(c, s, p)
//
// Bubbles is the earlier alpha-blended circle composition, kept for
// compatibility with images produced before the grid and walkers existed.
package passes

// Pass names, used for logging, hooks and pipeline inspection.
const (
	NameGradient = "gradient"
	NameGrid     = "fractured-grid"
	NameWalkers  = "chaotic-walkers"
	NameBubbles  = "bubbles"
)

// Point is a floating-point canvas position.
type Point struct {
	X, Y float64
}
