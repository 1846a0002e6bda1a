package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Heetbisht/bagasse-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bagasse-scout",
	Short: "B2B lead engine for bagasse tableware buyers",
	Long:  "Discovers candidate company websites via search, extracts their content, and classifies each one as a buyer lead (importer, wholesaler, stockist) or not.",
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
