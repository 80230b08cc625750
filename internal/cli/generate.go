package cli

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/config"
	"github.com/matzehuels/dailyart/pkg/errors"
	"github.com/matzehuels/dailyart/pkg/gallery"
	"github.com/matzehuels/dailyart/pkg/pipeline"
	"github.com/matzehuels/dailyart/pkg/sink"
)

// artFlags holds the flags shared by generate and backfill. Unset flags
// fall back to the config file.
type artFlags struct {
	cmd     *cobra.Command
	width   int
	height  int
	out     string
	format  string
	style   string
	palette string
	thumb   int
	noCache bool
	force   bool
}

func (f *artFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	cmd.Flags().IntVar(&f.width, "width", 0, "canvas width in pixels (default 1080)")
	cmd.Flags().IntVar(&f.height, "height", 0, "canvas height in pixels (default 1080)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output directory (default \"art\")")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "image format: png (default), jpeg, gif, tiff, bmp")
	cmd.Flags().StringVar(&f.style, "style", "", "composition style: fractured (default), bubbles")
	cmd.Flags().StringVarP(&f.palette, "palette", "p", "", "force a palette by name or index")
	cmd.Flags().IntVar(&f.thumb, "thumb", 0, "also write a thumbnail no larger than N pixels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.force, "force", false, "regenerate and overwrite existing images")
}

// options merges flags over the config into pipeline options.
func (f *artFlags) options(cfg *config.Config, date string) (pipeline.Options, string, error) {
	for _, d := range []struct {
		name string
		v    int
	}{{"width", f.width}, {"height", f.height}} {
		if f.cmd != nil && f.cmd.Flags().Changed(d.name) && d.v <= 0 {
			return pipeline.Options{}, "", errors.New(errors.ErrCodeInvalidDimensions,
				"--%s must be positive, got %d", d.name, d.v)
		}
	}
	opts := pipeline.Options{
		Date:    date,
		Width:   pick(f.width, cfg.Width),
		Height:  pick(f.height, cfg.Height),
		Format:  pick(f.format, cfg.Format),
		Style:   pick(f.style, cfg.Style),
		Palette: f.palette,
		Refresh: f.force,
	}
	reg, err := cfg.Registry()
	if err != nil {
		return opts, "", err
	}
	opts.Registry = reg
	return opts, pick(f.out, cfg.OutputDir), nil
}

func pick[T comparable](flag, fallback T) T {
	var zero T
	if flag != zero {
		return flag
	}
	return fallback
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags artFlags
		date  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the image for a date (default today)",
		Long: `Generate the image for a date.

The date is hashed into a seed, so running generate twice for the same date
produces the same picture. The image is saved as <out>/<date>.<format> and
recorded in the gallery.

Encoded images are cached, so regenerating an existing date is instant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			opts, outDir, err := flags.options(cfg, date)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), opts, outDir, flags)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	flags.register(cmd)
	c.registerArtFlagCompletions(cmd)
	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, outDir string, flags artFlags) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newGallery(ctx, outDir)
	if err != nil {
		return fmt.Errorf("open gallery: %w", err)
	}
	defer store.Close()

	out, err := c.generateOne(ctx, runner, store, opts, outDir, flags)
	if err != nil {
		return err
	}
	if out.skipped {
		printInfo("%s already exists (use --force to regenerate)", out.date)
		printFile(out.path)
		return nil
	}

	printSuccess("Generated %s", StyleHighlight.Render(out.date))
	printKeyValue("Seed", out.result.Seed.Hex()[:16]+"…")
	printPalette(out.result.Palette, out.result.PaletteIndex)
	printKeyValue("Style", out.result.Style)
	printKeyValue("Size", fmt.Sprintf("%dx%d", out.result.Width, out.result.Height))
	printStats(out.result)
	printFile(out.path)
	if out.thumb != "" {
		printFile(out.thumb)
	}
	printNewline()
	printNextStep("Browse", appName+" gallery browse")
	return nil
}

// generated describes the outcome of one date.
type generated struct {
	date    string
	path    string
	thumb   string
	result  *pipeline.Result
	skipped bool
}

// generateOne renders, saves and records a single date. An existing image
// is left alone unless flags.force is set.
func (c *CLI) generateOne(ctx context.Context, runner *pipeline.Runner, store gallery.Store, opts pipeline.Options, outDir string, flags artFlags) (*generated, error) {
	logger := loggerFromContext(ctx)
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := errors.ValidateOutputDir(outDir); err != nil {
		return nil, err
	}

	out := &generated{date: opts.Date, path: sink.Path(outDir, opts.Date, opts.Format)}
	if !flags.force {
		if _, err := os.Stat(out.path); err == nil {
			out.skipped = true
			return out, nil
		}
	}

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", opts.Date, err)
	}
	out.result = res

	if out.path, err = sink.Save(outDir, res.Date, res.Format, res.Artifact); err != nil {
		return nil, err
	}
	logger.Debug("saved", "path", out.path, "bytes", len(res.Artifact))

	if flags.thumb > 0 {
		img, err := resultImage(res)
		if err != nil {
			return nil, err
		}
		if out.thumb, err = sink.SaveThumbnail(outDir, res.Date, img, flags.thumb); err != nil {
			return nil, err
		}
	}

	entry := gallery.Entry{
		Date:      res.Date,
		Seed:      res.Seed.Hex(),
		Palette:   res.Palette.Name,
		Style:     res.Style,
		Width:     res.Width,
		Height:    res.Height,
		Format:    res.Format,
		Path:      out.path,
		Thumb:     out.thumb,
		CreatedAt: time.Now(),
	}
	if err := store.Put(ctx, entry); err != nil {
		// The image is already on disk; a gallery failure is not fatal.
		logger.Warn("gallery update failed", "date", res.Date, "error", err)
	}
	return out, nil
}

// resultImage returns the rendered image, decoding the artifact when the
// result came from the cache.
func resultImage(res *pipeline.Result) (image.Image, error) {
	if res.Composition != nil {
		return res.Composition.Canvas.Image(), nil
	}
	return sink.Decode(res.Artifact)
}
