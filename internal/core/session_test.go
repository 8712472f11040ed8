package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/clients/metadata"
)

func newTestSession(catalog metadata.Catalog) *Session {
	return NewSession(catalog, SessionOptions{
		Debounce:      30 * time.Millisecond,
		TrendingLimit: 10,
		EmbedBaseURL:  embedBase,
	}, testLogger)
}

func TestSession_StartMarksAllWidgetsAndLoadsTrending(t *testing.T) {
	catalog := &fakeCatalog{}
	s := newTestSession(catalog)
	defer s.Close()

	s.Start()

	select {
	case <-s.Changes():
	case <-time.After(waitFor):
		t.Fatal("no change signalled")
	}
	assert.ElementsMatch(t, []Widget{WidgetPlayer, WidgetSearch, WidgetTrending}, s.Drain())

	require.Eventually(t, func() bool { return s.Trending.Snapshot().Status == TrendingLoaded }, waitFor, tick)
	assert.Equal(t, 2, catalog.trendingCallCount())
}

func TestSession_DrainResets(t *testing.T) {
	s := newTestSession(&fakeCatalog{})
	defer s.Close()

	s.markDirty(WidgetPlayer)
	s.markDirty(WidgetPlayer)
	assert.Equal(t, []Widget{WidgetPlayer}, s.Drain())
	assert.Empty(t, s.Drain())
}

func TestSession_SearchSelectionReachesPlayer(t *testing.T) {
	catalog := &fakeCatalog{
		search: func(ctx context.Context, query string) ([]metadata.MediaSummary, error) {
			return []metadata.MediaSummary{movie(550, "Fight Club")}, nil
		},
	}
	s := newTestSession(catalog)
	defer s.Close()

	s.Search.SetQuery("fight")
	require.Eventually(t, func() bool { return len(s.Search.Snapshot().Results) == 1 }, waitFor, tick)

	require.NoError(t, s.Search.Select(550, metadata.MediaTypeMovie))

	sel := s.Selection()
	require.NotNil(t, sel)
	assert.Equal(t, 550, sel.ID)
	require.Eventually(t, func() bool { return s.Player.Snapshot().Status == PlayerLoaded }, waitFor, tick)
	assert.Equal(t, "https://vidsrc.xyz/embed/movie/550", s.Player.Snapshot().EmbedURL)
	assert.Empty(t, s.Search.Snapshot().Results)
}

func TestSession_TrendingSelectionReachesPlayer(t *testing.T) {
	catalog := &fakeCatalog{
		trending: func(ctx context.Context, mediaType metadata.MediaType) ([]metadata.MediaSummary, error) {
			if mediaType == metadata.MediaTypeSeries {
				return []metadata.MediaSummary{series(1399, "Game of Thrones")}, nil
			}
			return nil, nil
		},
	}
	s := newTestSession(catalog)
	defer s.Close()

	s.Trending.Load(context.Background())
	require.NoError(t, s.Trending.Select(1399, metadata.MediaTypeSeries))

	require.Eventually(t, func() bool { return s.Player.Snapshot().Status == PlayerLoaded }, waitFor, tick)
	assert.Equal(t, "https://vidsrc.xyz/embed/tv/1399", s.Player.Snapshot().EmbedURL)
}

func TestSession_LatestSelectionWins(t *testing.T) {
	g := newGate()
	catalog := &fakeCatalog{
		details: func(ctx context.Context, mediaType metadata.MediaType, id int) (*metadata.MediaDetails, error) {
			g.wait(id)
			return detailsFor(mediaType, id), nil
		},
	}
	s := newTestSession(catalog)
	defer s.Close()

	s.Select(movie(1, "A"))
	s.Select(movie(2, "B"))
	g.release(2)
	g.release(1)

	require.Eventually(t, func() bool { return loadedID(s.Player) == 2 }, waitFor, tick)
	assert.Never(t, func() bool { return loadedID(s.Player) == 1 }, 100*time.Millisecond, tick)
	assert.Equal(t, 2, s.Selection().ID)
}

func TestSession_ClearSelection(t *testing.T) {
	s := newTestSession(&fakeCatalog{})
	defer s.Close()

	s.Select(movie(1, "A"))
	s.ClearSelection()

	assert.Nil(t, s.Selection())
	assert.Equal(t, PlayerIdle, s.Player.Snapshot().Status)
}

func TestSession_TouchAndClose(t *testing.T) {
	s := newTestSession(&fakeCatalog{})
	before := s.LastSeen()
	time.Sleep(5 * time.Millisecond)
	s.Touch()
	assert.True(t, s.LastSeen().After(before))

	s.Close()
	s.Close()
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Close")
	}
}
