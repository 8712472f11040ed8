package core

import (
	"context"
	"sync"

	"marquee/internal/clients/metadata"
	"marquee/internal/utils"
)

type PlayerStatus string

const (
	PlayerIdle    PlayerStatus = "idle"
	PlayerLoading PlayerStatus = "loading"
	PlayerLoaded  PlayerStatus = "loaded"
	PlayerError   PlayerStatus = "error"
)

// PlayerState is a snapshot of the player widget. Details and EmbedURL are
// set only when Status is PlayerLoaded.
type PlayerState struct {
	Status    PlayerStatus
	Selection *metadata.MediaSummary
	Details   *metadata.MediaDetails
	EmbedURL  string
}

// PlayerWidget fetches details for the current selection and derives the embed URL.
type PlayerWidget struct {
	catalog   metadata.Catalog
	embedBase string
	logger    *utils.Logger
	onChange  func()

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  PlayerState
	closed bool
}

func NewPlayerWidget(catalog metadata.Catalog, embedBase string, logger *utils.Logger, onChange func()) *PlayerWidget {
	return &PlayerWidget{
		catalog:   catalog,
		embedBase: embedBase,
		logger:    logger.With("widget", "player"),
		onChange:  onChange,
		state:     PlayerState{Status: PlayerIdle},
	}
}

// SetSelection switches the player to sel. nil clears it synchronously.
// Every non-nil selection triggers a fresh details fetch; responses for
// earlier selections are dropped.
func (w *PlayerWidget) SetSelection(sel *metadata.MediaSummary) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	gen := w.invalidateLocked()

	if sel == nil {
		w.state = PlayerState{Status: PlayerIdle}
		w.mu.Unlock()
		w.notify()
		return
	}

	item := *sel
	w.state = PlayerState{Status: PlayerLoading, Selection: &item}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	w.notify()
	go w.fetch(ctx, gen, item)
}

func (w *PlayerWidget) fetch(ctx context.Context, gen uint64, item metadata.MediaSummary) {
	details, err := w.catalog.Details(ctx, item.MediaType, item.ID)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		w.logger.Debug("Discarding stale details for", item.MediaType, item.ID)
		return
	}
	if err != nil {
		w.state = PlayerState{Status: PlayerError, Selection: &item}
		w.mu.Unlock()
		w.logger.Error("Error fetching media details:", err)
		w.notify()
		return
	}
	w.state = PlayerState{
		Status:    PlayerLoaded,
		Selection: &item,
		Details:   details,
		EmbedURL:  EmbedURL(w.embedBase, item.MediaType, item.ID),
	}
	w.mu.Unlock()

	w.notify()
}

func (w *PlayerWidget) Snapshot() PlayerState {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.state
	if s.Selection != nil {
		sel := *s.Selection
		s.Selection = &sel
	}
	if s.Details != nil {
		d := *s.Details
		s.Details = &d
	}
	return s
}

func (w *PlayerWidget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.invalidateLocked()
}

func (w *PlayerWidget) invalidateLocked() uint64 {
	w.gen++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	return w.gen
}

func (w *PlayerWidget) notify() {
	if w.onChange != nil {
		w.onChange()
	}
}
