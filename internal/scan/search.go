package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound reports that the target year was not located inside the
// heuristic identifier range. The range is a coarse prior, not a guarantee;
// by design the search does not expand it.
var ErrNotFound = errors.New("concert not found in search range")

// SearchRange guesses the identifier range to probe for a target year.
// Later concerts were assigned later, wider identifier ranges in the
// catalog's observed numbering scheme.
func SearchRange(year int) (startID, endID int) {
	switch {
	case year >= 2010:
		return 2000, 11000
	case year >= 2000:
		return 2000, 6000
	default:
		return 4000, 8000
	}
}

// FindID probes the heuristic identifier range for a year as one concurrent
// batch and returns the identifier of the first completed pipeline whose
// record matches. Remaining pipelines are cancelled best-effort once a match
// arrives; results that were already in flight are drained and discarded.
func (s *Scanner) FindID(ctx context.Context, targetYear int) (int, error) {
	startID, endID := SearchRange(targetYear)
	return s.findIDIn(ctx, targetYear, startID, endID)
}

func (s *Scanner) findIDIn(ctx context.Context, targetYear, startID, endID int) (int, error) {
	logger := s.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.Int("target_year", targetYear),
	)
	logger.Info("searching identifier range",
		zap.Int("start_id", startID),
		zap.Int("end_id", endID),
		zap.Int("workers", s.cfg.Workers),
	)

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result, endID-startID+1)
	go func() {
		g, gctx := errgroup.WithContext(sctx)
		g.SetLimit(s.cfg.Workers)
		for id := startID; id <= endID; id++ {
			id := id
			g.Go(func() error {
				results <- s.runPipeline(gctx, id)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	foundID := 0
	for res := range results {
		if foundID != 0 {
			// Stragglers that completed after the match are discarded,
			// never merged.
			continue
		}
		if res.ok && res.rec.Year == targetYear {
			foundID = res.id
			logger.Info("identifier found", zap.Int("id", res.id))
			cancel()
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if foundID == 0 {
		return 0, ErrNotFound
	}
	return foundID, nil
}
