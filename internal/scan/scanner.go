// Package scan orchestrates concurrent fetch→classify→extract pipelines
// across the catalog's identifier space.
package scan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/concertarchive/nyc-crawler/internal/catalog"
	"github.com/concertarchive/nyc-crawler/internal/concert"
	"github.com/concertarchive/nyc-crawler/internal/extract"
	"github.com/concertarchive/nyc-crawler/internal/ratelimit"
	"github.com/concertarchive/nyc-crawler/internal/telemetry"
)

// Fetcher is the catalog access needed by the pipelines.
type Fetcher interface {
	Fetch(ctx context.Context, id int) (catalog.Document, bool)
}

// MappingRecorder receives year→identifier associations as the scan finds
// them. It is only ever called from the collector goroutine, never from
// pipeline workers.
type MappingRecorder interface {
	Record(year, id int)
}

// Config controls Scanner behavior.
type Config struct {
	Workers          int
	BatchSize        int
	ProgressInterval int
	// ResultTimeout guards against a pipeline hanging past the fetcher's
	// own timeout; an expired pipeline counts as absence.
	ResultTimeout time.Duration
}

// Scanner drives bounded-concurrency pipelines over candidate identifier
// ranges. Pipeline workers only return results; all aggregation, counting,
// and persistence happens in the single collector goroutine.
type Scanner struct {
	fetcher Fetcher
	limiter *ratelimit.Limiter
	cfg     Config
	logger  *zap.Logger
}

// result is one completed pipeline pass.
type result struct {
	id  int
	rec concert.Record
	ok  bool
}

// New constructs a Scanner.
func New(fetcher Fetcher, limiter *ratelimit.Limiter, cfg Config, logger *zap.Logger) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 50
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 200
	}
	if cfg.ResultTimeout <= 0 {
		cfg.ResultTimeout = 10 * time.Second
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Config{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		fetcher: fetcher,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Scan probes every identifier in [startID, endID] in contiguous batches and
// returns the records discovered, keyed by year. The first record found for
// a year wins within one scan; its year→id association is recorded into rec
// immediately. Persisting rec is the caller's job.
func (s *Scanner) Scan(ctx context.Context, startID, endID int, rec MappingRecorder) (map[int]concert.Record, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	found := make(map[int]concert.Record)

	total := endID - startID + 1
	logger.Info("scan starting",
		zap.Int("start_id", startID),
		zap.Int("end_id", endID),
		zap.Int("total", total),
		zap.Int("workers", s.cfg.Workers),
	)
	prog := newProgress(total, s.cfg.ProgressInterval, logger)

	for batchStart := startID; batchStart <= endID; batchStart += s.cfg.BatchSize {
		batchEnd := min(batchStart+s.cfg.BatchSize-1, endID)
		if err := s.scanBatch(ctx, batchStart, batchEnd, rec, found, prog, logger); err != nil {
			return found, err
		}
	}

	prog.finish(len(found))
	return found, nil
}

func (s *Scanner) scanBatch(
	ctx context.Context,
	batchStart, batchEnd int,
	rec MappingRecorder,
	found map[int]concert.Record,
	prog *progress,
	logger *zap.Logger,
) error {
	results := make(chan result, batchEnd-batchStart+1)

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for id := batchStart; id <= batchEnd; id++ {
			id := id
			g.Go(func() error {
				results <- s.runPipeline(gctx, id)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	// Completions arrive in whatever order pipelines finish; identifier
	// order is not preserved and must not be assumed.
	for res := range results {
		_, seen := found[res.rec.Year]
		// Duplicate years count as tested but not as found; the found
		// counter tracks unique years, same as the returned map.
		fresh := res.ok && !seen
		prog.observe(fresh)
		if !fresh {
			continue
		}
		found[res.rec.Year] = res.rec
		rec.Record(res.rec.Year, res.id)
		telemetry.ObserveRecordFound()
		logger.Info("concert found",
			zap.Int("year", res.rec.Year),
			zap.Int("id", res.id),
			zap.String("conductor", res.rec.Conductor),
			zap.Int("pieces", len(res.rec.Pieces)),
		)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// runPipeline performs one fetch→classify→extract pass. Every failure mode
// is absence; pipelines never return errors.
func (s *Scanner) runPipeline(ctx context.Context, id int) result {
	pctx, cancel := context.WithTimeout(ctx, s.cfg.ResultTimeout)
	defer cancel()

	if err := s.limiter.Wait(pctx); err != nil {
		return result{id: id}
	}

	telemetry.IncActivePipelines()
	defer telemetry.DecActivePipelines()
	telemetry.ObservePageTested()

	doc, ok := s.fetcher.Fetch(pctx, id)
	if !ok {
		return result{id: id}
	}
	if !catalog.IsConcertPage(doc.Body) {
		return result{id: id}
	}
	rec, ok := extract.Record(doc.Body)
	if !ok || !rec.Valid() {
		return result{id: id}
	}
	return result{id: id, rec: rec, ok: true}
}

// FetchRecord runs a single pipeline pass against one known identifier.
func (s *Scanner) FetchRecord(ctx context.Context, id int) (concert.Record, bool) {
	res := s.runPipeline(ctx, id)
	return res.rec, res.ok
}
