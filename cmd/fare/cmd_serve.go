package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the metrics over HTTP",
		Long: `Starts the HTTP service. Address, body limit and audit defaults come from
FARE_SERVER_* and FARE_AUDIT_* environment variables (or a .env file);
--host and --port override them. Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := server.ConfigFromEnv(a.cfg)
			if host != "" {
				sc.Host = host
			}
			if port != 0 {
				sc.Port = port
			}

			s := server.NewServer(sc)
			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default FARE_SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default FARE_SERVER_PORT)")
	return cmd
}
