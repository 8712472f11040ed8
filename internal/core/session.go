package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marquee/internal/clients/metadata"
	"marquee/internal/utils"
)

// Widget names one piece of a session's UI.
type Widget string

const (
	WidgetSearch   Widget = "search"
	WidgetTrending Widget = "trending"
	WidgetPlayer   Widget = "player"
)

type SessionOptions struct {
	Debounce      time.Duration
	TrendingLimit int
	EmbedBaseURL  string
}

// Session is one connected browser. It owns the current selection and wires
// the search and trending widgets into the player.
type Session struct {
	ID       string
	Search   *SearchWidget
	Trending *TrendingWidget
	Player   *PlayerWidget

	logger *utils.Logger
	ctx    context.Context
	cancel context.CancelFunc

	// selectMu orders selection writes so the player sees them in the same order.
	selectMu  sync.Mutex
	mu        sync.Mutex
	selection *metadata.MediaSummary
	dirty     map[Widget]bool
	lastSeen  time.Time
	closeOnce sync.Once
	changes   chan struct{}
}

func NewSession(catalog metadata.Catalog, opts SessionOptions, logger *utils.Logger) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:       id,
		logger:   logger.With("session", id),
		ctx:      ctx,
		cancel:   cancel,
		dirty:    make(map[Widget]bool),
		lastSeen: time.Now(),
		changes:  make(chan struct{}, 1),
	}

	s.Search = NewSearchWidget(catalog, opts.Debounce, s.logger, s.Select, func() { s.markDirty(WidgetSearch) })
	s.Trending = NewTrendingWidget(catalog, opts.TrendingLimit, s.logger, s.Select, func() { s.markDirty(WidgetTrending) })
	s.Player = NewPlayerWidget(catalog, opts.EmbedBaseURL, s.logger, func() { s.markDirty(WidgetPlayer) })
	return s
}

// Start marks every widget for an initial render and begins the trending load.
func (s *Session) Start() {
	s.markDirty(WidgetSearch)
	s.markDirty(WidgetTrending)
	s.markDirty(WidgetPlayer)
	go s.Trending.Load(s.ctx)
}

// Select makes item the current selection and hands it to the player.
func (s *Session) Select(item metadata.MediaSummary) {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()

	s.mu.Lock()
	s.selection = &item
	s.mu.Unlock()

	s.logger.Info("Selected", item.MediaType, item.ID, item.Title)
	s.Player.SetSelection(&item)
}

func (s *Session) ClearSelection() {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()

	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()

	s.Player.SetSelection(nil)
}

func (s *Session) Selection() *metadata.MediaSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return nil
	}
	sel := *s.selection
	return &sel
}

// Changes fires at least once after any widget changed. Call Drain to learn which.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// Drain returns the widgets changed since the last call, in name order.
func (s *Session) Drain() []Widget {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets := make([]Widget, 0, len(s.dirty))
	for w := range s.dirty {
		widgets = append(widgets, w)
	}
	sort.Slice(widgets, func(i, j int) bool { return widgets[i] < widgets[j] })
	s.dirty = make(map[Widget]bool)
	return widgets
}

func (s *Session) markDirty(w Widget) {
	s.mu.Lock()
	s.dirty[w] = true
	s.mu.Unlock()

	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.Search.Close()
		s.Player.Close()
		s.logger.Debug("Session closed")
	})
}
