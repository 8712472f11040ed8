package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marquee/internal/clients/metadata"
	"marquee/internal/config"
	"marquee/internal/core"
	"marquee/internal/handlers"
	"marquee/internal/utils"
	"marquee/internal/views"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize logger to write to console and, with log_dir set, a rotating file
	logger, err := utils.NewLogger(cfg.App.Debug, cfg.App.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	catalog, err := metadata.NewTMDBClient(cfg.Catalog.APIKey, cfg.Catalog.Language, cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)
	if err != nil {
		logger.Fatal("Failed to initialize catalog client:", err)
	}
	if !catalog.IsConfigured() {
		logger.Warn("No catalog API key set (catalog.api_key or TMDB_API_KEY); every catalog request will fail")
	}

	renderer, err := views.NewRenderer(cfg.Catalog.ImageBaseURL)
	if err != nil {
		logger.Fatal("Failed to load views:", err)
	}

	// Create manager
	manager := core.NewManager(cfg, catalog, logger)

	// Start web server
	server := handlers.NewServer(cfg, manager, renderer, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server failed to start:", err)
		}
	}()

	if err := manager.StartScheduler(); err != nil {
		logger.Fatal("Failed to start scheduler:", err)
	}

	logger.Info("Marquee started successfully on port", cfg.App.Port)

	// Wait for interrupt
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager.Stop()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed:", err)
	}
}
