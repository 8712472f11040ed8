package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"marquee/internal/clients/metadata"
	"marquee/internal/config"
	"marquee/internal/utils"
)

var ErrSessionNotFound = errors.New("session not found")

type Manager struct {
	config    *config.Config
	catalog   metadata.Catalog
	logger    *utils.Logger
	scheduler *cron.Cron
	startedAt time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg *config.Config, catalog metadata.Catalog, logger *utils.Logger) *Manager {
	return &Manager{
		config:    cfg,
		catalog:   catalog,
		logger:    logger,
		scheduler: cron.New(),
		startedAt: time.Now(),
		sessions:  make(map[string]*Session),
	}
}

// NewSession registers a session and starts its trending load.
func (m *Manager) NewSession() *Session {
	s := NewSession(m.catalog, SessionOptions{
		Debounce:      m.config.Search.Debounce,
		TrendingLimit: m.config.Catalog.TrendingLimit,
		EmbedBaseURL:  m.config.Player.EmbedBaseURL,
	}, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.Start()
	m.logger.Debug("Session opened:", s.ID)
	return s
}

func (m *Manager) Session(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (m *Manager) CloseSession(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) StartScheduler() error {
	if _, err := m.scheduler.AddFunc("@every 1m", m.reapIdleSessions); err != nil {
		return fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	m.scheduler.Start()
	m.logger.Info("Scheduler started.")
	return nil
}

// Stop halts the scheduler and closes every session.
func (m *Manager) Stop() {
	if m.scheduler != nil {
		<-m.scheduler.Stop().Done()
	}

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) reapIdleSessions() {
	cutoff := time.Now().Add(-m.config.App.SessionIdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.logger.Info(fmt.Sprintf("Closed %d idle sessions", len(idle)))
	}
}

// SearchCatalog is the stateless form of the search widget: empty queries
// return nothing without a request and only movies and series come back.
func (m *Manager) SearchCatalog(ctx context.Context, query string) ([]metadata.MediaSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []metadata.MediaSummary{}, nil
	}
	results, err := m.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return filterPlayable(results), nil
}

// TrendingCatalog returns both weekly lists, or an error if either failed.
func (m *Manager) TrendingCatalog(ctx context.Context) (movies, series []metadata.MediaSummary, err error) {
	return fetchTrending(ctx, m.catalog, m.config.Catalog.TrendingLimit)
}

// MediaDetails fetches an item's details along with its player embed URL.
func (m *Manager) MediaDetails(ctx context.Context, mediaType metadata.MediaType, id int) (*metadata.MediaDetails, string, error) {
	details, err := m.catalog.Details(ctx, mediaType, id)
	if err != nil {
		return nil, "", err
	}
	return details, m.EmbedURL(mediaType, id), nil
}

func (m *Manager) EmbedURL(mediaType metadata.MediaType, id int) string {
	return EmbedURL(m.config.Player.EmbedBaseURL, mediaType, id)
}

type SystemStatus struct {
	Sessions          int     `json:"sessions"`
	CatalogConfigured bool    `json:"catalog_configured"`
	UptimeSeconds     int64   `json:"uptime_seconds"`
	HostUptimeSeconds uint64  `json:"host_uptime_seconds,omitempty"`
	HostMemoryUsedPct float64 `json:"host_memory_used_pct,omitempty"`
}

func (m *Manager) GetSystemStatus() SystemStatus {
	status := SystemStatus{
		Sessions:          m.SessionCount(),
		CatalogConfigured: m.config.Catalog.APIKey != "",
		UptimeSeconds:     int64(time.Since(m.startedAt).Seconds()),
	}

	// host stats are best effort
	if up, err := host.Uptime(); err == nil {
		status.HostUptimeSeconds = up
	} else {
		m.logger.Debug("Host uptime unavailable:", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.HostMemoryUsedPct = vm.UsedPercent
	} else {
		m.logger.Debug("Host memory unavailable:", err)
	}
	return status
}
