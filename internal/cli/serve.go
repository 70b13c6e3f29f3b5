package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/razor-1/polylabel/internal/server"
)

// newServeCmd creates the serve command for running the HTTP API.
func newServeCmd() *cobra.Command {
	var configPath string
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes the labeling pipeline over HTTP. Computed labels are
persisted as records, and an optional GeoJSON dataset is labeled and indexed
at startup for spatial queries.

Configuration is read from a TOML file plus POLYLABEL_* environment
variables; a .env file is loaded if present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			// Missing .env files are fine; explicit ones are not.
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return err
				}
			} else {
				_ = godotenv.Load()
			}

			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}

			srv, err := server.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to .env file (default: ./.env if present)")

	return cmd
}
