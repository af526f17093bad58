package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lakeboard/internal/app"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workspace HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(*configPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))
			slog.SetDefault(logger)

			return app.RunServer(cmd.Context(), cfg, logger)
		},
	}
}
