// Package cmd defines and implements the CLI commands for the nycrawler
// executable.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/concertarchive/nyc-crawler/internal/catalog"
	"github.com/concertarchive/nyc-crawler/internal/config"
	"github.com/concertarchive/nyc-crawler/internal/logging"
	"github.com/concertarchive/nyc-crawler/internal/ratelimit"
	"github.com/concertarchive/nyc-crawler/internal/scan"
	"github.com/concertarchive/nyc-crawler/internal/telemetry"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nycrawler",
		Short: "Discovers and archives Vienna New Year's Concert programmes.",
		Long: `nycrawler locates New Year's Concert pages on the Wiener Philharmoniker
catalog, whose pages are addressed by opaque numeric identifiers, and extracts
the programme (year, conductor, pieces, composers) into a local JSON archive.

A year→identifier mapping cache avoids repeat scans once a concert has been
located.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newScanCmd())
	return cmd
}

// Execute is the main entry point. It returns an error so main can map it
// to a non-zero exit code.
func Execute() error {
	return newRootCmd().Execute()
}

// setup loads configuration and builds the shared logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	telemetry.Init()
	return cfg, logger, nil
}

// buildScanner wires the fetcher, rate limiter, and scanner from config.
func buildScanner(cfg config.Config, logger *zap.Logger) *scan.Scanner {
	fetcher := catalog.NewFetcher(catalog.Config{
		BaseURL:      cfg.Catalog.BaseURL,
		UserAgent:    cfg.Catalog.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		ProbeTimeout: cfg.ProbeTimeout(),
		MinBodyBytes: cfg.Catalog.MinBodyBytes,
	}, logger)

	limiter := ratelimit.New(ratelimit.Config{
		RPS:   cfg.Catalog.RPS,
		Burst: cfg.Catalog.Burst,
	})

	return scan.New(fetcher, limiter, scan.Config{
		Workers:          cfg.Scan.Workers,
		BatchSize:        cfg.Scan.BatchSize,
		ProgressInterval: cfg.Scan.ProgressInterval,
		ResultTimeout:    cfg.ResultTimeout(),
	}, logger)
}
