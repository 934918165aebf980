package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bidsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bidsync",
	Short: "Construction feed ingest and Salesforce lead reconciliation",
	Long:  "Ingests construction project feed archives, normalizes the XML records, and cross-references Salesforce leads to find stale pipeline stages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
