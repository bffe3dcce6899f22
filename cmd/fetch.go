package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/concertarchive/nyc-crawler/internal/concert"
	"github.com/concertarchive/nyc-crawler/internal/logging"
	"github.com/concertarchive/nyc-crawler/internal/store"
)

func newFetchCmd() *cobra.Command {
	var noUpdate bool

	cmd := &cobra.Command{
		Use:   "fetch <year>",
		Short: "Fetches the concert programme for one year",
		Long: `Fetches the New Year's Concert programme for the given year. The mapping
cache is consulted first; on a miss the heuristic identifier range is scanned
concurrently until the year is found. The result is merged into the corpus
file unless --no-update is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			return runFetch(cmd.Context(), year, noUpdate)
		},
	}

	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "fetch and display without updating the corpus file")
	return cmd
}

func runFetch(ctx context.Context, year int, noUpdate bool) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := buildScanner(cfg, logger)

	cache, err := store.LoadMappingCache(cfg.Files.MappingCache)
	if err != nil {
		return err
	}

	id, err := resolveID(ctx, scanner, cache, year, logger)
	if err != nil {
		return err
	}

	rec, ok := scanner.FetchRecord(ctx, id)
	if !ok {
		return fmt.Errorf("could not fetch concert data for year %d (id %d)", year, id)
	}

	// The cache write happens regardless of what the corpus write does
	// next; the two files are deliberately independent.
	if cache.Dirty() {
		if err := cache.Persist(); err != nil {
			return err
		}
		logger.Info("mapping cache updated", zap.Int("year", year), zap.Int("id", id))
	}

	printRecord(rec)

	if noUpdate {
		logger.Info("skipping corpus update")
		return nil
	}

	corpus := store.NewCorpusStore(cfg.Files.Corpus)
	archive, err := corpus.Load()
	if err != nil {
		return err
	}
	archive = concert.Merge(archive, rec)
	if err := corpus.Save(archive); err != nil {
		return err
	}
	logger.Info("corpus updated", zap.Int("year", year), zap.Int("concerts", len(archive.Concerts)))
	return nil
}

// idFinder locates the catalog identifier for a year by scanning; the
// scanner satisfies it.
type idFinder interface {
	FindID(ctx context.Context, year int) (int, error)
}

// resolveID returns the catalog identifier for a year. A cache hit answers
// directly; only a miss triggers the concurrent range search.
func resolveID(ctx context.Context, finder idFinder, cache *store.MappingCache, year int, logger *zap.Logger) (int, error) {
	if id, ok := cache.Lookup(year); ok {
		logger.Info("identifier cached", zap.Int("year", year), zap.Int("id", id))
		return id, nil
	}

	logger.Info("identifier not cached, searching", zap.Int("year", year))
	id, err := finder.FindID(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("find identifier for year %d: %w", year, err)
	}
	cache.Record(year, id)
	return id, nil
}

func printRecord(rec concert.Record) {
	fmt.Printf("\nNew Year's Concert %d\n", rec.Year)
	fmt.Printf("Conductor: %s\n", rec.Conductor)
	fmt.Printf("\nProgramme (%d pieces):\n", len(rec.Pieces))
	for i, piece := range rec.Pieces {
		fmt.Printf("%2d. %s\n", i+1, piece.Name)
		fmt.Printf("    Composer: %s\n", piece.Composer)
	}
	fmt.Println()
}
