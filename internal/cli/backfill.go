package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/seed"
)

// backfillCommand creates the backfill command.
func (c *CLI) backfillCommand() *cobra.Command {
	var (
		flags    artFlags
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Generate every date in a range",
		Long: `Generate every date from --from to --to inclusive.

Dates that already have an image in the output directory are skipped unless
--force is given, so an interrupted backfill can simply be rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := seed.Dates(from, to)
			if err != nil {
				return err
			}
			return c.runBackfill(cmd.Context(), dates, flags)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	flags.register(cmd)
	c.registerArtFlagCompletions(cmd)
	return cmd
}

// backfillSummary counts the outcomes of a backfill.
type backfillSummary struct {
	generated int
	cached    int
	skipped   int
}

func (c *CLI) runBackfill(ctx context.Context, dates []string, flags artFlags) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	_, outDir, err := flags.options(cfg, "")
	if err != nil {
		return err
	}
	store, err := c.newGallery(ctx, outDir)
	if err != nil {
		return fmt.Errorf("open gallery: %w", err)
	}
	defer store.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Starting backfill...")
	spinner.Start()

	var sum backfillSummary
	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			spinner.Stop()
			return err
		}
		spinner.SetMessage(fmt.Sprintf("Generating %s (%d/%d)", date, i+1, len(dates)))

		opts, _, err := flags.options(cfg, date)
		if err != nil {
			spinner.StopWithError("Backfill failed")
			return err
		}
		out, err := c.generateOne(ctx, runner, store, opts, outDir, flags)
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Backfill failed at %s", date))
			return err
		}
		switch {
		case out.skipped:
			sum.skipped++
		case out.result.CacheHit:
			sum.cached++
			sum.generated++
		default:
			sum.generated++
		}
	}
	spinner.Stop()

	printSuccess("Generated %s of %s dates", StyleNumber.Render(fmt.Sprint(sum.generated)), StyleNumber.Render(fmt.Sprint(len(dates))))
	if sum.cached > 0 {
		printDetail("%d from cache", sum.cached)
	}
	if sum.skipped > 0 {
		printDetail("%d already existed", sum.skipped)
	}
	printFile(outDir)
	prog.done("backfill complete", "from", dates[0], "to", dates[len(dates)-1])
	return nil
}
