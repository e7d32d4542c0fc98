package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/config"
)

// version is stamped by the release build via -ldflags.
var version = "0.1.0-dev"

// cfg is populated by the root PersistentPreRunE before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "triage",
	Version: version,
	Short:   "AML/KYC alert triage simulator",
	Long: `Generates synthetic financial-crime alert data, trains a logistic
regression on engineered features, and writes per-alert priority scores
with a distribution plot.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "triage: load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "triage: init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
