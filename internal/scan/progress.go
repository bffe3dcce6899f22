package scan

import (
	"time"

	"go.uber.org/zap"
)

// progress tracks scan throughput. It is owned exclusively by the collector
// goroutine, so no synchronization is needed.
type progress struct {
	total    int
	tested   int
	found    int
	interval int
	start    time.Time
	logger   *zap.Logger
}

func newProgress(total, interval int, logger *zap.Logger) *progress {
	return &progress{
		total:    total,
		interval: interval,
		start:    time.Now(),
		logger:   logger,
	}
}

func (p *progress) observe(found bool) {
	p.tested++
	if found {
		p.found++
	}
	if p.tested%p.interval != 0 {
		return
	}
	elapsed := time.Since(p.start)
	rate := float64(p.tested) / elapsed.Seconds()
	var eta time.Duration
	if rate > 0 {
		eta = time.Duration(float64(p.total-p.tested)/rate) * time.Second
	}
	p.logger.Info("scan progress",
		zap.Int("tested", p.tested),
		zap.Int("total", p.total),
		zap.Int("found", p.found),
		zap.Float64("rate_per_sec", rate),
		zap.Duration("eta", eta),
	)
}

func (p *progress) finish(found int) {
	p.logger.Info("scan finished",
		zap.Int("tested", p.tested),
		zap.Int("found", found),
		zap.Duration("elapsed", time.Since(p.start)),
	)
}
