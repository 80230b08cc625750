// Package pipeline provides the daily art composition pipeline.
//
// One run is strictly linear: the date is hashed into a seed, the seed
// starts a random stream, one palette is drawn from the registry, and the
// style's passes paint the canvas in a fixed order. The same date, size,
// style, palette override and registry always yield identical pixels.
//
// # Usage
//
// Compose a canvas directly:
//
//	comp, err := pipeline.Compose(pipeline.Options{Date: "2024-01-01"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	img := comp.Canvas.Image()
//
// Or use a Runner for caching, encoding, logging and hooks:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Date: "2024-01-01"})
//	png := result.Artifact
package pipeline

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dailyart/pkg/cache"
	"github.com/matzehuels/dailyart/pkg/canvas"
	"github.com/matzehuels/dailyart/pkg/errors"
	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/seed"
	"github.com/matzehuels/dailyart/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1080

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 1080

	// DefaultFormat is the default encoded output format.
	DefaultFormat = sink.DefaultFormat
)

// Style names.
const (
	// StyleFractured is the canonical composition: gradient, fractured
	// grid, chaotic walkers.
	StyleFractured = "fractured"

	// StyleBubbles paints translucent circles over a dark background.
	StyleBubbles = "bubbles"
)

// DefaultStyle is the default composition style.
const DefaultStyle = StyleFractured

// ValidStyles is the set of supported styles.
var ValidStyles = map[string]bool{
	StyleFractured: true,
	StyleBubbles:   true,
}

// Styles returns the supported style names, sorted.
func Styles() []string {
	out := make([]string, 0, len(ValidStyles))
	for s := range ValidStyles {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one generation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Date is the YYYY-MM-DD seed string. Empty means today (local time).
	Date string `json:"date,omitempty"`

	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Style  string `json:"style,omitempty"`

	// Palette overrides the drawn palette by name or index. The palette
	// draw still happens so the rest of the stream is unchanged.
	Palette string `json:"palette,omitempty"`

	// Format is the encoding used by Runner.Execute.
	Format string `json:"format,omitempty"`

	// Refresh bypasses the cache read (the result is still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Registry *palette.Registry                   `json:"-"`
	Logger   *log.Logger                         `json:"-"`
	Inspect  func(pass string, c *canvas.Canvas) `json:"-"`
	Now      func() time.Time                    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Composition is the in-memory result of Compose.
type Composition struct {
	Canvas       *canvas.Canvas
	Date         string
	Seed         seed.Seed
	Palette      palette.Palette
	PaletteIndex int
	Style        string
	Stats        Stats
}

// Stats contains composition statistics.
type Stats struct {
	// Draws is the total number of values taken from the stream.
	Draws int

	// Passes lists each pass in execution order.
	Passes []PassStat

	Duration time.Duration
}

// PassStat describes one drawing pass.
type PassStat struct {
	Name     string
	Draws    int
	Duration time.Duration
}

// Result contains the outputs of a Runner execution.
type Result struct {
	Date         string
	Seed         seed.Seed
	Palette      palette.Palette
	PaletteIndex int
	Style        string
	Format       string
	Width        int
	Height       int

	// Artifact holds the encoded image.
	Artifact []byte

	// Composition is nil when the artifact came from the cache.
	Composition *Composition

	// CacheHit reports whether Artifact was read from the cache.
	CacheHit bool

	Duration time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle,
			"invalid style: %q (must be one of: %s)", style, strings.Join(Styles(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if _, err := seed.ParseDate(o.Date); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if err := sink.ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Palette != "" {
		if _, _, err := o.Registry.Resolve(o.Palette); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero-valued fields. Dimensions are only defaulted when
// both are zero so a half-specified size still fails validation.
func (o *Options) SetDefaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Date == "" {
		o.Date = seed.Today(o.Now())
	}
	if o.Width == 0 && o.Height == 0 {
		o.Width, o.Height = DefaultWidth, DefaultHeight
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	o.Style = strings.ToLower(o.Style)
	o.Format = sink.Normalize(o.Format)
	if o.Registry == nil {
		o.Registry = palette.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for the encoded artifact.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		Style:    o.Style,
		Palette:  o.Palette,
		Registry: o.Registry.Fingerprint(),
		Format:   o.Format,
	}
}
