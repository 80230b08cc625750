package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/pipeline"
	"github.com/matzehuels/dailyart/pkg/seed"
)

// seedCommand creates the seed command.
func (c *CLI) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [date]",
		Short: "Show the seed and palette for a date",
		Long: `Show the seed and palette for a date without rendering anything.

The seed is the SHA-256 digest of the date string read as a 256-bit integer.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := seed.Today(time.Now())
			if len(args) == 1 {
				date = args[0]
			}
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			desc, err := pipeline.Describe(pipeline.Options{
				Date:     date,
				Registry: reg,
				Width:    cfg.Width,
				Height:   cfg.Height,
			})
			if err != nil {
				return err
			}

			hi, lo := desc.Seed.PCG()
			printKeyValue("Date", desc.Date)
			printKeyValue("Seed", desc.Seed.String())
			printKeyValue("Hex", desc.Seed.Hex())
			printKeyValue("Stream", fmt.Sprintf("pcg(%#016x, %#016x)", hi, lo))
			printPalette(desc.Palette, desc.PaletteIndex)
			return nil
		},
	}
}
