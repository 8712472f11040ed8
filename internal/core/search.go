package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"marquee/internal/clients/metadata"
	"marquee/internal/utils"
)

var ErrUnknownResult = errors.New("result is not part of the current list")

// SearchState is a snapshot of the search widget.
type SearchState struct {
	Query   string
	Results []metadata.MediaSummary
}

// SearchWidget debounces free text into catalog searches.
type SearchWidget struct {
	catalog  metadata.Catalog
	logger   *utils.Logger
	debounce *Debouncer
	onSelect func(metadata.MediaSummary)
	onChange func()

	mu        sync.Mutex
	query     string
	debounced string
	gen       uint64
	cancel    context.CancelFunc
	results   []metadata.MediaSummary
	closed    bool
}

func NewSearchWidget(catalog metadata.Catalog, delay time.Duration, logger *utils.Logger, onSelect func(metadata.MediaSummary), onChange func()) *SearchWidget {
	return &SearchWidget{
		catalog:  catalog,
		logger:   logger.With("widget", "search"),
		debounce: NewDebouncer(delay),
		onSelect: onSelect,
		onChange: onChange,
	}
}

// SetQuery records new input text. Empty text clears the results at once and
// issues no request; anything else is searched after the debounce delay.
func (w *SearchWidget) SetQuery(text string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.query = text

	if strings.TrimSpace(text) == "" {
		w.debounce.Stop()
		w.debounced = ""
		w.invalidateLocked()
		w.results = nil
		w.mu.Unlock()
		w.notify()
		return
	}

	w.debounce.Trigger(func() { w.fire(text) })
	w.mu.Unlock()
}

func (w *SearchWidget) fire(text string) {
	w.mu.Lock()
	// superseded by newer input, or same as what is already shown
	if w.closed || text != w.query || text == w.debounced {
		w.mu.Unlock()
		return
	}
	w.debounced = text
	gen := w.invalidateLocked()
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	go w.fetch(ctx, gen, text)
}

func (w *SearchWidget) fetch(ctx context.Context, gen uint64, query string) {
	results, err := w.catalog.Search(ctx, query)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		w.logger.Debug("Discarding stale search results for", query)
		return
	}
	if err != nil {
		w.results = nil
		w.mu.Unlock()
		w.logger.Error("Error fetching search results:", err)
		w.notify()
		return
	}
	w.results = filterPlayable(results)
	w.mu.Unlock()

	w.notify()
}

// Select emits the chosen result and resets the widget.
func (w *SearchWidget) Select(id int, mediaType metadata.MediaType) error {
	w.mu.Lock()
	item, ok := findSummary(w.results, id, mediaType)
	w.mu.Unlock()
	if !ok {
		return ErrUnknownResult
	}

	if w.onSelect != nil {
		w.onSelect(item)
	}

	w.mu.Lock()
	w.debounce.Stop()
	w.query = ""
	w.debounced = ""
	w.invalidateLocked()
	w.results = nil
	w.mu.Unlock()

	w.notify()
	return nil
}

func (w *SearchWidget) Snapshot() SearchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return SearchState{
		Query:   w.query,
		Results: append([]metadata.MediaSummary(nil), w.results...),
	}
}

func (w *SearchWidget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.debounce.Stop()
	w.invalidateLocked()
}

// invalidateLocked makes every in-flight request stale and returns the new generation.
func (w *SearchWidget) invalidateLocked() uint64 {
	w.gen++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	return w.gen
}

func (w *SearchWidget) notify() {
	if w.onChange != nil {
		w.onChange()
	}
}

func filterPlayable(items []metadata.MediaSummary) []metadata.MediaSummary {
	out := make([]metadata.MediaSummary, 0, len(items))
	for _, item := range items {
		if item.MediaType.Playable() {
			out = append(out, item)
		}
	}
	return out
}

func findSummary(items []metadata.MediaSummary, id int, mediaType metadata.MediaType) (metadata.MediaSummary, bool) {
	for _, item := range items {
		if item.ID == id && item.MediaType == mediaType {
			return item, true
		}
	}
	return metadata.MediaSummary{}, false
}
