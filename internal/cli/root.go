// Package cli implements the dailyart command-line interface.
//
// # Commands
//
//   - generate: render one date and save it (the default daily job)
//   - backfill: render every date in a range
//   - seed: show the seed and palette a date resolves to
//   - palettes: list the palette registry
//   - gallery: list or browse generated images
//   - cache: manage the artifact cache
//   - serve: render images over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried on the CLI struct and through the command context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dailyart paints one deterministic generative image per day",
		Long: `dailyart hashes a calendar date into a seed and paints a gradient, a
fractured grid and a handful of chaotic walkers from it. The same date always
produces the same image.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.Config(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/dailyart/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.backfillCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.palettesCommand())
	root.AddCommand(c.galleryCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
