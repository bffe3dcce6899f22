package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/concertarchive/nyc-crawler/internal/catalog"
)

// concertPage builds a synthetic catalog page that passes both the
// classifier and the extractor.
func concertPage(year int, conductor string, pieces ...string) []byte {
	var b strings.Builder
	b.WriteString("<html><body><h1>New Year's Concert</h1>\n")
	fmt.Fprintf(&b, "<p>Monday, January 1, %d</p>\n", year)
	fmt.Fprintf(&b, "<h3>Conductor</h3><p>%s</p>\n", conductor)
	for _, p := range pieces {
		fmt.Fprintf(&b, `<span class="cast-programm"><em>%s</em></span>`+"\n", p)
	}
	b.WriteString(strings.Repeat("<p>programme notes filler text</p>\n", 30))
	b.WriteString("</body></html>")
	return []byte(b.String())
}

// fakeFetcher serves canned pages and tracks pipeline concurrency.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int][]byte
	delay map[int]time.Duration

	active    atomic.Int64
	maxActive atomic.Int64
	fetches   atomic.Int64
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[int][]byte{},
		delay: map[int]time.Duration{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, id int) (catalog.Document, bool) {
	f.fetches.Add(1)
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		prev := f.maxActive.Load()
		if cur <= prev || f.maxActive.CompareAndSwap(prev, cur) {
			break
		}
	}

	f.mu.Lock()
	d := f.delay[id]
	body, ok := f.pages[id]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-ctx.Done():
			return catalog.Document{}, false
		case <-time.After(d):
		}
	}
	if ctx.Err() != nil || !ok {
		return catalog.Document{}, false
	}
	return catalog.Document{ID: id, Body: body}, true
}

// recorderMap collects Record calls; the scanner guarantees single-goroutine
// access.
type recorderMap map[int]int

func (r recorderMap) Record(year, id int) { r[year] = id }

func TestScanner_ScanFindsRecordsAndRecordsMappings(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher()
	f.pages[105] = concertPage(2015, "Zubin Mehta", "Blue Danube Waltz")
	f.pages[142] = concertPage(2016, "Mariss Jansons", "Emperor Waltz")
	// Not a concert page: fails classification, must be skipped silently.
	f.pages[120] = []byte(strings.Repeat("<p>unrelated catalog entry</p>", 40))

	s := New(f, nil, Config{Workers: 8, BatchSize: 25, ProgressInterval: 10}, zap.NewNop())
	mappings := recorderMap{}
	found, err := s.Scan(context.Background(), 100, 160, mappings)
	require.NoError(t, err)

	require.Len(t, found, 2)
	require.Equal(t, "Zubin Mehta", found[2015].Conductor)
	require.Equal(t, "Mariss Jansons", found[2016].Conductor)
	require.Equal(t, recorderMap{2015: 105, 2016: 142}, mappings)
	require.EqualValues(t, 61, f.fetches.Load())
}

func TestScanner_ScanRespectsWorkerLimit(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher()
	for id := 0; id < 40; id++ {
		f.delay[id] = 5 * time.Millisecond
	}

	s := New(f, nil, Config{Workers: 4, BatchSize: 40, ProgressInterval: 10}, zap.NewNop())
	_, err := s.Scan(context.Background(), 0, 39, recorderMap{})
	require.NoError(t, err)
	require.LessOrEqual(t, f.maxActive.Load(), int64(4))
}

func TestScanner_FirstFoundWinsPerYear(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher()
	// Two identifiers resolve to the same year; exactly one mapping must be
	// recorded and the record must correspond to whichever arrived first.
	f.pages[10] = concertPage(2015, "Zubin Mehta", "Blue Danube Waltz")
	f.pages[20] = concertPage(2015, "Zubin Mehta", "Blue Danube Waltz")

	s := New(f, nil, Config{Workers: 2, BatchSize: 50, ProgressInterval: 10}, zap.NewNop())
	mappings := recorderMap{}
	found, err := s.Scan(context.Background(), 1, 50, mappings)
	require.NoError(t, err)

	require.Len(t, found, 1)
	require.Len(t, mappings, 1)
	require.Contains(t, []int{10, 20}, mappings[2015])
}

func TestScanner_ProgressCountsUniqueYears(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	f := newFakeFetcher()
	// Same year at two identifiers; only one of them is a find.
	f.pages[10] = concertPage(2015, "Zubin Mehta", "Blue Danube Waltz")
	f.pages[20] = concertPage(2015, "Zubin Mehta", "Blue Danube Waltz")

	s := New(f, nil, Config{Workers: 2, BatchSize: 30, ProgressInterval: 1}, zap.New(core))
	found, err := s.Scan(context.Background(), 1, 30, recorderMap{})
	require.NoError(t, err)
	require.Len(t, found, 1)

	entries := logs.FilterMessage("scan progress").All()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1].ContextMap()
	require.EqualValues(t, 30, last["tested"])
	require.EqualValues(t, 1, last["found"])
}

func TestScanner_ScanReturnsOnCanceledContext(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher()
	for id := 0; id < 100; id++ {
		f.delay[id] = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(f, nil, Config{Workers: 4, BatchSize: 100, ProgressInterval: 10}, zap.NewNop())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.Scan(ctx, 0, 99, recorderMap{})
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestScanner_FetchRecordSinglePass(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher()
	f.pages[10430] = concertPage(2015, "Zubin Mehta", "Blue Danube Waltz", "Radetzky March")

	s := New(f, nil, Config{}, zap.NewNop())
	rec, ok := s.FetchRecord(context.Background(), 10430)
	require.True(t, ok)
	require.Equal(t, 2015, rec.Year)
	require.Len(t, rec.Pieces, 2)
	require.EqualValues(t, 1, f.fetches.Load())

	_, ok = s.FetchRecord(context.Background(), 9999)
	require.False(t, ok)
}
