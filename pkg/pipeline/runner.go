package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dailyart/pkg/cache"
	"github.com/matzehuels/dailyart/pkg/observability"
	"github.com/matzehuels/dailyart/pkg/sink"
)

// keyTypeArtifact labels artifact entries in cache hooks.
const keyTypeArtifact = "artifact"

// Runner encapsulates generation with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute composes and encodes one image, consulting the cache first.
//
// On a cache hit only the seed and palette are re-derived (one draw), so
// Result metadata is complete while Result.Composition stays nil. Cache
// hits do not fire the generation hooks. Cancellation is checked between
// passes.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	key := r.Keyer.ArtifactKey(opts.Date, opts.ArtifactKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			desc, err := Describe(opts)
			if err != nil {
				return nil, err
			}
			result = newResult(desc, opts, data, true, time.Since(start))
			opts.Logger.Debug("cache hit", "date", opts.Date, "key", key)
			r.logResult(opts.Logger, result)
			return result, nil
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", key, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	// Generation hooks cover renders only; hits are reported as cache events.
	hooks := observability.Generation()
	hooks.OnGenerateStart(ctx, opts.Date, opts.Style)
	renderStart := time.Now()
	defer func() {
		hooks.OnGenerateComplete(ctx, opts.Date, opts.Style, time.Since(renderStart), err)
	}()

	comp, err := ComposeContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, ps := range comp.Stats.Passes {
		hooks.OnPassComplete(ctx, opts.Date, ps.Name, ps.Draws, ps.Duration)
		opts.Logger.Debug("pass complete", "pass", ps.Name, "draws", ps.Draws, "duration", ps.Duration)
	}

	data, err := sink.Bytes(comp.Canvas.Image(), opts.Format)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}

	result = newResult(comp, opts, data, false, time.Since(start))
	result.Composition = comp
	r.logResult(opts.Logger, result)
	return result, nil
}

// Compose is ComposeContext with the runner's logger applied.
func (r *Runner) Compose(ctx context.Context, opts Options) (*Composition, error) {
	r.applyLogger(&opts)
	return ComposeContext(ctx, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) logResult(logger *log.Logger, res *Result) {
	logger.Info("generated",
		"date", res.Date,
		"seed", res.Seed.Hex()[:16],
		"palette", res.Palette.Name,
		"style", res.Style,
		"bytes", len(res.Artifact),
		"cached", res.CacheHit,
		"duration", res.Duration)
}

func newResult(comp *Composition, opts Options, data []byte, hit bool, d time.Duration) *Result {
	return &Result{
		Date:         comp.Date,
		Seed:         comp.Seed,
		Palette:      comp.Palette,
		PaletteIndex: comp.PaletteIndex,
		Style:        comp.Style,
		Format:       opts.Format,
		Width:        opts.Width,
		Height:       opts.Height,
		Artifact:     data,
		CacheHit:     hit,
		Duration:     d,
	}
}
