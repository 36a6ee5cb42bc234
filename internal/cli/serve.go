package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/internal/server"
	"github.com/matzehuels/solutionmap/pkg/session"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered views and interactive diagram sessions over HTTP",
		Long: `Serve exposes the hierarchy, static renders and interactive diagram
sessions. Session timelines follow wall-clock time; idle sessions expire
after the configured session TTL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := componentLogger(ctx, "server")

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			src, err := cfg.RecordSource()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			srv := server.New(server.Options{
				Runner: runner,
				Source: src,
				Config: cfg,
				Sessions: session.NewManager(session.Options{
					TTL:    time.Duration(cfg.Server.SessionTTL),
					Logger: logger,
				}),
				Logger: logger,
			})

			printInfo("Listening on %s", StyleLink.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "rebuild even when the records are unchanged")

	return cmd
}
