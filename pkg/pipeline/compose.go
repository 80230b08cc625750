package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/passes"
	"github.com/matzehuels/dailyart/pkg/rng"
	"github.com/matzehuels/dailyart/pkg/seed"
)

// pass is one step of a style. It paints c using s.
type pass struct {
	name string
	run  func(c *canvas.Canvas, s *rng.Stream, comp *Composition)
}

// styles maps each style to its passes in execution order. The order is
// part of the reproducibility contract: reordering changes every image.
var styles = map[string][]pass{
	StyleFractured: {
		{passes.NameGradient, func(c *canvas.Canvas, _ *rng.Stream, comp *Composition) {
			passes.Gradient(c, comp.Palette.BgStart, comp.Palette.BgEnd)
		}},
		{passes.NameGrid, func(c *canvas.Canvas, s *rng.Stream, comp *Composition) {
			passes.FracturedGrid(c, s, comp.Palette)
		}},
		{passes.NameWalkers, func(c *canvas.Canvas, s *rng.Stream, comp *Composition) {
			passes.ChaoticWalkers(c, s, comp.Palette)
		}},
	},
	StyleBubbles: {
		{passes.NameBubbles, func(c *canvas.Canvas, s *rng.Stream, _ *Composition) {
			passes.Bubbles(c, s)
		}},
	},
}

// Compose runs one generation in memory.
//
// Dimension errors are returned before any randomness is consumed or any
// pass runs. The palette index is always drawn; an override in
// opts.Palette replaces the drawn palette but not the stream position.
func Compose(opts Options) (*Composition, error) {
	return ComposeContext(context.Background(), opts)
}

// ComposeContext is Compose that stops between passes once ctx is done.
func ComposeContext(ctx context.Context, opts Options) (*Composition, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	c, err := canvas.New(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	sd := seed.Derive(opts.Date)
	s := rng.New(sd)

	p, idx := opts.Registry.Choose(s)
	if opts.Palette != "" {
		// Validated above, so Resolve cannot fail here.
		p, idx, _ = opts.Registry.Resolve(opts.Palette)
	}

	comp := &Composition{
		Canvas:       c,
		Date:         opts.Date,
		Seed:         sd,
		Palette:      p,
		PaletteIndex: idx,
		Style:        opts.Style,
	}

	for _, ps := range styles[opts.Style] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before, t0 := s.Draws(), time.Now()
		ps.run(c, s, comp)
		comp.Stats.Passes = append(comp.Stats.Passes, PassStat{
			Name:     ps.name,
			Draws:    s.Draws() - before,
			Duration: time.Since(t0),
		})
		if opts.Inspect != nil {
			opts.Inspect(ps.name, c)
		}
	}

	comp.Stats.Draws = s.Draws()
	comp.Stats.Duration = time.Since(start)
	return comp, nil
}

// PassNames returns the pass names of style in execution order.
func PassNames(style string) []string {
	ps := styles[style]
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.name
	}
	return out
}

// Describe derives the seed and drawn palette for opts without painting.
// It consumes exactly the one palette draw Compose would.
func Describe(opts Options) (*Composition, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	sd := seed.Derive(opts.Date)
	p, idx := opts.Registry.Choose(rng.New(sd))
	if opts.Palette != "" {
		p, idx, _ = opts.Registry.Resolve(opts.Palette)
	}
	return &Composition{
		Date:         opts.Date,
		Seed:         sd,
		Palette:      p,
		PaletteIndex: idx,
		Style:        opts.Style,
		Stats:        Stats{Draws: 1},
	}, nil
}
