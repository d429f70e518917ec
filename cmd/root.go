package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bidbook/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bidbook",
	Short: "Subcontractor proposal extraction service",
	Long:  "Extracts subcontractor contact information from construction proposal PDFs via text extraction, OCR, and Claude, then reconciles duplicate companies across a batch.",
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
