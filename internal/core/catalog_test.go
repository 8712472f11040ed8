package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marquee/internal/clients/metadata"
	"marquee/internal/config"
	"marquee/internal/utils"
)

// fakeCatalog records calls and delegates to per-test functions.
type fakeCatalog struct {
	mu            sync.Mutex
	searches      []string
	trendingCalls []metadata.MediaType
	detailsCalls  []int

	search   func(ctx context.Context, query string) ([]metadata.MediaSummary, error)
	trending func(ctx context.Context, mediaType metadata.MediaType) ([]metadata.MediaSummary, error)
	details  func(ctx context.Context, mediaType metadata.MediaType, id int) (*metadata.MediaDetails, error)
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]metadata.MediaSummary, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	fn := f.search
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, query)
}

func (f *fakeCatalog) Trending(ctx context.Context, mediaType metadata.MediaType) ([]metadata.MediaSummary, error) {
	f.mu.Lock()
	f.trendingCalls = append(f.trendingCalls, mediaType)
	fn := f.trending
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, mediaType)
}

func (f *fakeCatalog) Details(ctx context.Context, mediaType metadata.MediaType, id int) (*metadata.MediaDetails, error) {
	f.mu.Lock()
	f.detailsCalls = append(f.detailsCalls, id)
	fn := f.details
	f.mu.Unlock()
	if fn == nil {
		return detailsFor(mediaType, id), nil
	}
	return fn(ctx, mediaType, id)
}

func (f *fakeCatalog) searchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeCatalog) trendingCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.trendingCalls)
}

func (f *fakeCatalog) detailsCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.detailsCalls)
}

func movie(id int, title string) metadata.MediaSummary {
	return metadata.MediaSummary{ID: id, Title: title, PosterPath: fmt.Sprintf("/%d.jpg", id), MediaType: metadata.MediaTypeMovie}
}

func series(id int, title string) metadata.MediaSummary {
	return metadata.MediaSummary{ID: id, Title: title, PosterPath: fmt.Sprintf("/%d.jpg", id), MediaType: metadata.MediaTypeSeries}
}

func person(id int, name string) metadata.MediaSummary {
	return metadata.MediaSummary{ID: id, Title: name, MediaType: metadata.MediaType("person")}
}

func detailsFor(mediaType metadata.MediaType, id int) *metadata.MediaDetails {
	return &metadata.MediaDetails{
		MediaSummary: metadata.MediaSummary{ID: id, Title: fmt.Sprintf("Title %d", id), MediaType: mediaType},
		Overview:     fmt.Sprintf("Overview %d", id),
	}
}

func manyMovies(n int) []metadata.MediaSummary {
	out := make([]metadata.MediaSummary, n)
	for i := range out {
		out[i] = movie(i+1, fmt.Sprintf("Movie %d", i+1))
	}
	return out
}

// gate blocks callers until released, keyed by an int.
type gate struct {
	mu    sync.Mutex
	chans map[int]chan struct{}
}

func newGate() *gate {
	return &gate{chans: make(map[int]chan struct{})}
}

func (g *gate) ch(key int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.chans[key]
	if !ok {
		c = make(chan struct{})
		g.chans[key] = c
	}
	return c
}

func (g *gate) wait(key int) { <-g.ch(key) }

func (g *gate) release(key int) { close(g.ch(key)) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Port = 8081
	cfg.App.SessionIdleTimeout = time.Minute
	cfg.Catalog.APIKey = "test-key"
	cfg.Catalog.TrendingLimit = 10
	cfg.Player.EmbedBaseURL = "https://vidsrc.xyz/embed"
	cfg.Search.Debounce = 30 * time.Millisecond
	return cfg
}

var testLogger = utils.NopLogger()

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)
