package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/internal/server"
	"github.com/matzehuels/dailyart/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxSize int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve images over HTTP",
		Long: `Serve images over HTTP.

Routes:
  GET /art/today     today's image
  GET /art/{date}    the image for a date
  GET /palettes      the palette registry as JSON
  GET /healthz       liveness and build info
  GET /metrics       Prometheus metrics

Image routes accept width, height, style, palette and format query
parameters. Configure cache.redis to share rendered images across replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			stats := observability.NewStats()
			stats.Register()
			defer observability.Reset()

			srv := server.New(runner, c.Logger, server.Options{
				Width:    cfg.Width,
				Height:   cfg.Height,
				Style:    cfg.Style,
				Format:   cfg.Format,
				MaxSize:  maxSize,
				Registry: reg,
				Stats:    stats,
			})
			printInfo("Listening on %s", StyleLink.Render(listenURL(addr)))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().IntVar(&maxSize, "max-size", server.DefaultMaxSize, "largest width or height a request may ask for")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// listenURL turns a listen address into a clickable URL.
func listenURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr + "/art/today"
	}
	return "http://" + addr + "/art/today"
}
