// Package catalog talks to the remote concert catalog: address construction,
// the high-volume probing fetcher, and the page classifier.
package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/concertarchive/nyc-crawler/internal/telemetry"
)

// Config controls fetcher behavior.
type Config struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	MinBodyBytes int
}

// Document is the body of one fetched catalog page. It lives only for the
// duration of a single pipeline pass.
type Document struct {
	ID   int
	Body []byte
}

// Fetcher retrieves catalog pages with a strict timeout. Failures of any
// kind are reported as absence, not errors: the scanner treats a missing
// page the same as an identifier that was never assigned.
type Fetcher struct {
	cfg         Config
	base        *colly.Collector
	probeClient *http.Client
	logger      *zap.Logger
}

// NewFetcher builds a Fetcher.
func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 1500 * time.Millisecond
	}
	if cfg.MinBodyBytes <= 0 {
		cfg.MinBodyBytes = MinBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:  cfg,
		base: colly.NewCollector(colly.Async(false)),
		probeClient: &http.Client{
			Timeout: cfg.ProbeTimeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the page for one candidate identifier. The second return
// value is false when the request errored, timed out, or the body was too
// short to be a real page.
func (f *Fetcher) Fetch(ctx context.Context, id int) (Document, bool) {
	url := PageURL(f.cfg.BaseURL, id)
	start := time.Now()

	var (
		body     []byte
		fetchErr error
	)
	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		telemetry.ObserveFetch("canceled", time.Since(start), 0)
		return Document{}, false
	case err := <-done:
		if err != nil && fetchErr == nil {
			fetchErr = err
		}
	}

	elapsed := time.Since(start)
	if fetchErr != nil {
		telemetry.ObserveFetch("error", elapsed, 0)
		f.logger.Debug("fetch failed", zap.Int("id", id), zap.Error(fetchErr))
		return Document{}, false
	}
	if len(body) < f.cfg.MinBodyBytes {
		telemetry.ObserveFetch("short", elapsed, len(body))
		return Document{}, false
	}
	telemetry.ObserveFetch("ok", elapsed, len(body))
	return Document{ID: id, Body: body}, true
}

// Probe is a cheap existence check using a HEAD request. It is deliberately
// lenient: only a definite 404/410 rules a candidate out, every other
// outcome (including probe errors and timeouts) lets the full fetch proceed,
// because a false negative here silently loses data.
func (f *Fetcher) Probe(ctx context.Context, id int) bool {
	url := PageURL(f.cfg.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return true
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	resp, err := f.probeClient.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()
	return resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusGone
}
