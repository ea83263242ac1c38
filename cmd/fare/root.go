package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/config"
	"github.com/tensorplex-labs/fare/internal/utils/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	debug bool
	trace bool
	info  bool
}

// app carries state resolved once in PersistentPreRunE.
type app struct {
	flags rootFlags
	cfg   *config.AppConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fare",
		Short: "Pairwise fairness metrics for rankings",
		Long: "fare measures ranking fairness between two groups with the rank parity,\n" +
			"rank equality and rank calibration pairwise error metrics, audits them\n" +
			"over sliding windows and summarizes the windowed errors.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg

			logger.Init(logger.Options{
				Environment: cfg.Environment,
				Debug:       a.flags.debug,
				Trace:       a.flags.trace,
				Info:        a.flags.info,
				Out:         cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&a.flags.debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&a.flags.trace, "trace", false, "Enable trace logging")
	pf.BoolVar(&a.flags.info, "info", false, "Enable info logging")

	rootCmd.AddCommand(newScoreCmd(a))
	rootCmd.AddCommand(newAuditCmd(a))
	rootCmd.AddCommand(newReportCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newExampleCmd())
	rootCmd.Version = version

	return rootCmd
}
