package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marquee/internal/clients/metadata"
	"marquee/internal/config"
	"marquee/internal/core"
	"marquee/internal/utils"
	"marquee/internal/views"
)

type stubCatalog struct {
	mu       sync.Mutex
	queries  []string
	search   []metadata.MediaSummary
	movies   []metadata.MediaSummary
	series   []metadata.MediaSummary
	err      error
	trendErr error
}

func (c *stubCatalog) Search(ctx context.Context, query string) ([]metadata.MediaSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, query)
	if c.err != nil {
		return nil, c.err
	}
	return c.search, nil
}

func (c *stubCatalog) Trending(ctx context.Context, mediaType metadata.MediaType) ([]metadata.MediaSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trendErr != nil && mediaType == metadata.MediaTypeSeries {
		return nil, c.trendErr
	}
	if mediaType == metadata.MediaTypeMovie {
		return c.movies, nil
	}
	return c.series, nil
}

func (c *stubCatalog) Details(ctx context.Context, mediaType metadata.MediaType, id int) (*metadata.MediaDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &metadata.MediaDetails{
		MediaSummary: metadata.MediaSummary{ID: id, Title: fmt.Sprintf("Title %d", id), PosterPath: "/p.jpg", MediaType: mediaType},
		Overview:     "Overview",
	}, nil
}

func (c *stubCatalog) searchQueries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Port = 8081
	cfg.App.UIEnabled = true
	cfg.App.SessionIdleTimeout = time.Minute
	cfg.Catalog.APIKey = "test-key"
	cfg.Catalog.ImageBaseURL = "https://image.tmdb.org/t/p"
	cfg.Catalog.TrendingLimit = 10
	cfg.Player.EmbedBaseURL = "https://vidsrc.xyz/embed"
	cfg.Search.Debounce = 20 * time.Millisecond
	return cfg
}

// newTestServer serves the full router over a real listener.
func newTestServer(t *testing.T, cfg *config.Config, catalog metadata.Catalog) (*httptest.Server, *core.Manager) {
	t.Helper()
	logger := utils.NopLogger()
	renderer, err := views.NewRenderer(cfg.Catalog.ImageBaseURL)
	require.NoError(t, err)

	manager := core.NewManager(cfg, catalog, logger)
	srv := httptest.NewServer(NewServer(cfg, manager, renderer, logger).Router())
	t.Cleanup(func() {
		srv.Close()
		manager.Stop()
	})
	return srv, manager
}

func summaries(mediaType metadata.MediaType, n int) []metadata.MediaSummary {
	out := make([]metadata.MediaSummary, n)
	for i := range out {
		out[i] = metadata.MediaSummary{ID: i + 1, Title: fmt.Sprintf("Item %d", i+1), MediaType: mediaType}
	}
	return out
}
