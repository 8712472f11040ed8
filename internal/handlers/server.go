package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marquee/internal/config"
	"marquee/internal/core"
	"marquee/internal/utils"
	"marquee/internal/views"
	"marquee/web"

	"github.com/gorilla/mux"
)

type Server struct {
	config     *config.Config
	manager    *core.Manager
	renderer   *views.Renderer
	logger     *utils.Logger
	httpServer *http.Server
	apiHandler *APIHandler
}

func NewServer(cfg *config.Config, manager *core.Manager, renderer *views.Renderer, logger *utils.Logger) *Server {
	return &Server{
		config:     cfg,
		manager:    manager,
		renderer:   renderer,
		logger:     logger,
		apiHandler: NewAPIHandler(manager, logger),
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.Handle("/healthz", HealthHandler()).Methods("GET")
	router.HandleFunc("/ws", s.HandleWebSocket).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/search", s.apiHandler.Search).Methods("GET")
	api.HandleFunc("/trending", s.apiHandler.Trending).Methods("GET")
	api.HandleFunc("/details/{type}/{id}", s.apiHandler.Details).Methods("GET")
	api.HandleFunc("/embed/{type}/{id}", s.apiHandler.Embed).Methods("GET")
	api.HandleFunc("/status", s.apiHandler.GetSystemStatus).Methods("GET")

	// Web UI (if enabled)
	if s.config.App.UIEnabled {
		static, err := web.StaticFS()
		if err != nil {
			s.logger.Error("Web UI unavailable:", err)
		} else {
			router.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
		}
	}

	return router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.App.Port),
		Handler:     s.Router(),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset; /ws connections are long-lived
	}

	s.logger.Info("Starting server on port", s.config.App.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
