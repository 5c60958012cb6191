package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fontfetch/internal/config"
	"github.com/matzehuels/fontfetch/internal/server"
	"github.com/matzehuels/fontfetch/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve fonts over HTTP",
		Long: `Serve fonts over HTTP. GET /fonts/{family}?weight=700&italic=true acquires
the font like "fontfetch get" and responds with the font file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if listen == "" {
				listen = cfg.Listen
			}
			if logFile == "" {
				logFile = cfg.LogFile
			}

			logger := loggerFromContext(ctx)
			if logFile != "" {
				rotator, err := rotatingFile(logFile)
				if err != nil {
					return err
				}
				defer rotator.Close()
				logger = fileLogger(io.MultiWriter(os.Stderr, rotator), logger.GetLevel())
				printDetail("Logging to %s", logFile)
			}

			stats := observability.NewStats()
			observability.SetAcquireHooks(observability.Tee(stats, observability.LogHooks{Logger: logger}))

			eng, err := c.openEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			srv := server.New(server.Options{
				Fonts:          eng,
				Names:          eng.Names,
				Catalog:        eng.Catalog,
				Stats:          stats,
				Logger:         logger,
				AcquireTimeout: cfg.HTTPTimeout.Std() * 4,
			})
			return srv.ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default "+config.DefaultListen+")")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file")
	return cmd
}
