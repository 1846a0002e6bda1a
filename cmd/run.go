package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Heetbisht/bagasse-scout/internal/classify"
	"github.com/Heetbisht/bagasse-scout/internal/export"
	"github.com/Heetbisht/bagasse-scout/internal/model"
	"github.com/Heetbisht/bagasse-scout/internal/pipeline"
	"github.com/Heetbisht/bagasse-scout/internal/resilience"
	"github.com/Heetbisht/bagasse-scout/internal/scrape"
	"github.com/Heetbisht/bagasse-scout/pkg/firecrawl"
	"github.com/Heetbisht/bagasse-scout/pkg/gemini"
	"github.com/Heetbisht/bagasse-scout/pkg/serper"
)

var (
	runTerm     string
	runMarkets  []string
	runLimit    int
	runCSVPath  string
	runXLSXPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the lead engine for a product term",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		markets := runMarkets
		if len(markets) == 0 {
			markets = cfg.Pipeline.Markets
		}

		// Init clients
		searchClient := serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		firecrawlClient := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		geminiClient, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.Gemini.Key,
			BaseURL: cfg.Gemini.BaseURL,
		})
		if err != nil {
			return eris.Wrap(err, "init gemini client")
		}

		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.Pipeline.RetryMaxAttempts

		engine := pipeline.New(
			cfg.Pipeline,
			searchClient,
			scrape.NewExtractor(firecrawlClient, cfg.Pipeline.MinDocLength),
			classify.NewClassifier(geminiClient, runTerm, retry),
			func(rctx context.Context) (string, error) {
				return gemini.ResolveModel(rctx, geminiClient)
			},
		)

		result, err := engine.Run(ctx, model.RunConfig{
			Term:    runTerm,
			Markets: markets,
			Limit:   runLimit,
		})
		if err != nil {
			return eris.Wrap(err, "lead engine run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", result.RunID),
			zap.Int("leads", result.Count()),
			zap.Int("skipped", result.Skipped),
		)

		if runCSVPath != "" {
			f, err := os.Create(runCSVPath)
			if err != nil {
				return eris.Wrap(err, "create csv file")
			}
			defer f.Close() //nolint:errcheck
			if err := export.WriteCSV(f, result.Leads); err != nil {
				return err
			}
		}
		if runXLSXPath != "" {
			if err := export.WriteXLSX(runXLSXPath, result.Leads); err != nil {
				return err
			}
		}

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runTerm, "term", "Bagasse tableware", "base product search term")
	runCmd.Flags().StringSliceVar(&runMarkets, "market", nil, "target market codes (default from config)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "search results to analyze per market (default from config)")
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "write qualified leads to a CSV file")
	runCmd.Flags().StringVar(&runXLSXPath, "xlsx", "", "write qualified leads to an XLSX file")
	rootCmd.AddCommand(runCmd)
}
