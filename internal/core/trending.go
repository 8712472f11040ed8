package core

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"marquee/internal/clients/metadata"
	"marquee/internal/utils"
)

type TrendingStatus string

const (
	TrendingLoading TrendingStatus = "loading"
	TrendingLoaded  TrendingStatus = "loaded"
	TrendingError   TrendingStatus = "error"
)

// TrendingState is a snapshot of the trending widget.
type TrendingState struct {
	Status TrendingStatus
	Movies []metadata.MediaSummary
	Series []metadata.MediaSummary
}

// Empty reports a successful load with nothing in either list.
func (s TrendingState) Empty() bool {
	return s.Status == TrendingLoaded && len(s.Movies) == 0 && len(s.Series) == 0
}

// TrendingWidget loads the weekly trending movies and series once.
type TrendingWidget struct {
	catalog  metadata.Catalog
	limit    int
	logger   *utils.Logger
	onSelect func(metadata.MediaSummary)
	onChange func()

	once  sync.Once
	mu    sync.Mutex
	state TrendingState
}

func NewTrendingWidget(catalog metadata.Catalog, limit int, logger *utils.Logger, onSelect func(metadata.MediaSummary), onChange func()) *TrendingWidget {
	return &TrendingWidget{
		catalog:  catalog,
		limit:    limit,
		logger:   logger.With("widget", "trending"),
		onSelect: onSelect,
		onChange: onChange,
		state:    TrendingState{Status: TrendingLoading},
	}
}

// Load fetches both lists. Only the first call does anything; the widget
// ends in loaded or error and stays there.
func (w *TrendingWidget) Load(ctx context.Context) {
	w.once.Do(func() {
		movies, series, err := fetchTrending(ctx, w.catalog, w.limit)

		w.mu.Lock()
		if err != nil {
			w.state = TrendingState{Status: TrendingError}
		} else {
			w.state = TrendingState{Status: TrendingLoaded, Movies: movies, Series: series}
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("Error fetching trending data:", err)
		} else {
			w.logger.Debug("Trending loaded:", len(movies), "movies,", len(series), "series")
		}
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// Select emits one of the displayed items.
func (w *TrendingWidget) Select(id int, mediaType metadata.MediaType) error {
	w.mu.Lock()
	list := w.state.Movies
	if mediaType == metadata.MediaTypeSeries {
		list = w.state.Series
	}
	item, ok := findSummary(list, id, mediaType)
	w.mu.Unlock()

	if !ok {
		return ErrUnknownResult
	}
	if w.onSelect != nil {
		w.onSelect(item)
	}
	return nil
}

func (w *TrendingWidget) Snapshot() TrendingState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return TrendingState{
		Status: w.state.Status,
		Movies: append([]metadata.MediaSummary(nil), w.state.Movies...),
		Series: append([]metadata.MediaSummary(nil), w.state.Series...),
	}
}

// fetchTrending requests both weekly lists concurrently and waits for both.
// Any failure fails the pair.
func fetchTrending(ctx context.Context, catalog metadata.Catalog, limit int) (movies, series []metadata.MediaSummary, err error) {
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		res, err := catalog.Trending(ctx, metadata.MediaTypeMovie)
		movies = truncate(res, limit)
		return err
	})
	p.Go(func(ctx context.Context) error {
		res, err := catalog.Trending(ctx, metadata.MediaTypeSeries)
		series = truncate(res, limit)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return movies, series, nil
}

func truncate(items []metadata.MediaSummary, limit int) []metadata.MediaSummary {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
