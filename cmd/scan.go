package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/concertarchive/nyc-crawler/internal/api"
	"github.com/concertarchive/nyc-crawler/internal/concert"
	"github.com/concertarchive/nyc-crawler/internal/logging"
	"github.com/concertarchive/nyc-crawler/internal/store"
)

func newScanCmd() *cobra.Command {
	var (
		startID int
		endID   int
		workers int
		batch   int
		listen  string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scans an identifier range to populate the cache and corpus",
		Long: `Probes every catalog identifier in [start, end] with a bounded pool of
concurrent pipelines, recording every concert found into the mapping cache
and the corpus. Useful for bulk discovery before targeted fetches.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), startID, endID, workers, batch, listen)
		},
	}

	cmd.Flags().IntVar(&startID, "start", 2000, "first identifier to probe")
	cmd.Flags().IntVar(&endID, "end", 11000, "last identifier to probe")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent pipelines (default from config)")
	cmd.Flags().IntVar(&batch, "batch", 0, "batch size (default from config)")
	cmd.Flags().StringVar(&listen, "listen", "", "serve /healthz and /metrics on this address during the scan")
	return cmd
}

func runScan(ctx context.Context, startID, endID, workers, batch int, listen string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	if workers > 0 {
		cfg.Scan.Workers = workers
	}
	if batch > 0 {
		cfg.Scan.BatchSize = batch
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listen != "" {
		srv := api.NewServer(listen, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("admin server shutdown failed", zap.Error(err))
			}
		}()
	}

	cache, err := store.LoadMappingCache(cfg.Files.MappingCache)
	if err != nil {
		return err
	}
	corpus := store.NewCorpusStore(cfg.Files.Corpus)
	archive, err := corpus.Load()
	if err != nil {
		return err
	}

	scanner := buildScanner(cfg, logger)
	found, scanErr := scanner.Scan(ctx, startID, endID, cache)

	// Persist whatever was discovered even when the scan was interrupted;
	// partial discovery is still discovery.
	if cache.Dirty() {
		if err := cache.Persist(); err != nil {
			return err
		}
	}
	if len(found) > 0 {
		for _, rec := range found {
			archive = concert.Merge(archive, rec)
		}
		if err := corpus.Save(archive); err != nil {
			return err
		}
	}
	logger.Info("scan results persisted",
		zap.Int("found", len(found)),
		zap.Int("cache_size", cache.Len()),
		zap.Int("corpus_size", len(archive.Concerts)),
	)
	return scanErr
}
