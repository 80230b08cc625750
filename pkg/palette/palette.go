// Package palette defines the color schemes a run can be painted with.
//
// A Palette is an immutable record: two gradient endpoints, an ordered set
// of walker line colors, and one grid color. The built-in registry holds the
// three reference palettes and is constructed once per process; exactly one
// palette is chosen per run by a single uniform index draw from the stream.
//
// Custom palettes (from configuration) are appended after the built-ins via
// NewRegistry. Adding palettes changes which palette a given date selects,
// so custom registries are part of a run's identity (see Registry.Fingerprint).
package palette

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/errors"
	"github.com/matzehuels/dailyart/pkg/rng"
)

// Palette is a named set of colors used by one run.
type Palette struct {
	Name    string
	BgStart canvas.Color
	BgEnd   canvas.Color
	Lines   []canvas.Color
	Grid    canvas.Color
}

// Validate checks that the palette can be drawn with.
func (p Palette) Validate() error {
	if err := errors.ValidateName(errors.ErrCodeInvalidPalette, "palette", p.Name); err != nil {
		return err
	}
	if len(p.Lines) == 0 {
		return errors.New(errors.ErrCodeInvalidPalette, "palette %q has no line colors", p.Name)
	}
	return nil
}

// clone returns p with its own Lines slice.
func (p Palette) clone() Palette {
	p.Lines = append([]canvas.Color(nil), p.Lines...)
	return p
}

// builtin is the reference palette set, in selection order.
var builtin = []Palette{
	{
		Name:    "Cosmic Scene",
		BgStart: canvas.RGB(0, 0, 10),
		BgEnd:   canvas.RGB(5, 0, 25),
		Lines:   []canvas.Color{canvas.RGB(255, 255, 255), canvas.RGB(100, 100, 255)},
		Grid:    canvas.RGB(40, 40, 80),
	},
	{
		Name:    "Fever Dream",
		BgStart: canvas.RGB(20, 5, 5),
		BgEnd:   canvas.RGB(50, 10, 10),
		Lines:   []canvas.Color{canvas.RGB(255, 220, 180), canvas.RGB(255, 100, 100)},
		Grid:    canvas.RGB(100, 60, 60),
	},
	{
		Name:    "Glitches in Space",
		BgStart: canvas.RGB(15, 25, 15),
		BgEnd:   canvas.RGB(0, 10, 0),
		Lines:   []canvas.Color{canvas.RGB(200, 255, 200), canvas.RGB(150, 255, 250)},
		Grid:    canvas.RGB(50, 90, 50),
	},
}

// Registry is an immutable ordered list of palettes.
type Registry struct {
	palettes []Palette
	byName   map[string]int
	print    string
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry of built-in palettes.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(builtin...)
		if err != nil {
			panic(fmt.Sprintf("palette: invalid builtin registry: %v", err))
		}
		defaultReg = r
	})
	return defaultReg
}

// Builtin returns copies of the built-in palettes.
func Builtin() []Palette {
	return Default().All()
}

// NewRegistry builds a registry from ps, in order. Names must be unique
// (case-insensitive) and every palette must have at least one line color.
func NewRegistry(ps ...Palette) (*Registry, error) {
	if len(ps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPalette, "registry needs at least one palette")
	}

	r := &Registry{
		palettes: make([]Palette, 0, len(ps)),
		byName:   make(map[string]int, len(ps)),
	}
	h := sha256.New()
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(p.Name)
		if _, dup := r.byName[key]; dup {
			return nil, errors.New(errors.ErrCodeInvalidPalette, "duplicate palette name %q", p.Name)
		}
		r.byName[key] = len(r.palettes)
		r.palettes = append(r.palettes, p.clone())
		fmt.Fprintf(h, "%s|%v|%v|%v|%v;", p.Name, p.BgStart, p.BgEnd, p.Lines, p.Grid)
	}
	r.print = hex.EncodeToString(h.Sum(nil))[:16]
	return r, nil
}

// Len returns the number of palettes.
func (r *Registry) Len() int { return len(r.palettes) }

// At returns the palette at index i. It panics if i is out of range.
func (r *Registry) At(i int) Palette { return r.palettes[i].clone() }

// All returns copies of every palette in order.
func (r *Registry) All() []Palette {
	out := make([]Palette, len(r.palettes))
	for i, p := range r.palettes {
		out[i] = p.clone()
	}
	return out
}

// Lookup finds a palette by case-insensitive name.
func (r *Registry) Lookup(name string) (Palette, int, bool) {
	i, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Palette{}, -1, false
	}
	return r.At(i), i, true
}

// Resolve finds a palette by name or by zero-based index ("0", "2").
func (r *Registry) Resolve(ref string) (Palette, int, error) {
	if p, i, ok := r.Lookup(ref); ok {
		return p, i, nil
	}
	if i, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		if i < 0 || i >= len(r.palettes) {
			return Palette{}, -1, errors.New(errors.ErrCodeInvalidPalette,
				"palette index %d out of range [0, %d)", i, len(r.palettes))
		}
		return r.At(i), i, nil
	}
	return Palette{}, -1, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q", ref)
}

// Fingerprint identifies the registry contents; it changes whenever a
// palette is added, removed, reordered, or recolored.
func (r *Registry) Fingerprint() string { return r.print }

// Choose draws one uniform index from s and returns that palette.
func (r *Registry) Choose(s *rng.Stream) (Palette, int) {
	i := s.IntN(len(r.palettes))
	return r.At(i), i
}

// ParseHex parses "#rrggbb" (or "#rgb") into an opaque color.
func ParseHex(s string) (canvas.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return canvas.Color{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "invalid color %q", s)
	}
	r, g, b := c.RGB255()
	return canvas.RGB(r, g, b), nil
}

// Hex formats c as "#rrggbb".
func Hex(c canvas.Color) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
