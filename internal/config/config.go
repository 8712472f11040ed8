package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port               int           `yaml:"port"`
		Debug              bool          `yaml:"debug"`
		UIEnabled          bool          `yaml:"ui_enabled"`
		LogDir             string        `yaml:"log_dir"`
		SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
	} `yaml:"app"`

	Catalog struct {
		APIKey string `yaml:"api_key"`
		// BaseURL redirects catalog requests to another host, e.g. a local fake catalog.
		BaseURL       string        `yaml:"base_url"`
		ImageBaseURL  string        `yaml:"image_base_url"`
		Language      string        `yaml:"language"`
		Timeout       time.Duration `yaml:"timeout"`
		TrendingLimit int           `yaml:"trending_limit"`
	} `yaml:"catalog"`

	Player struct {
		EmbedBaseURL string `yaml:"embed_base_url"`
	} `yaml:"player"`

	Search struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"search"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.App.Port = 8081
	cfg.App.Debug = false
	cfg.App.UIEnabled = true
	cfg.App.SessionIdleTimeout = 30 * time.Minute

	cfg.Catalog.ImageBaseURL = "https://image.tmdb.org/t/p"
	cfg.Catalog.Language = "en-US"
	cfg.Catalog.Timeout = 10 * time.Second
	cfg.Catalog.TrendingLimit = 10

	cfg.Player.EmbedBaseURL = "https://vidsrc.xyz/embed"

	cfg.Search.Debounce = 500 * time.Millisecond
}

// loadFromEnv applies a .env file (if any) and then environment overrides.
func loadFromEnv(cfg *Config) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		cfg.Catalog.APIKey = key
	}
	if port := os.Getenv("MARQUEE_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid MARQUEE_PORT %q: %w", port, err)
		}
		cfg.App.Port = p
	}
	return nil
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 {
		return fmt.Errorf("app.port must be positive, got %d", c.App.Port)
	}
	if c.App.SessionIdleTimeout <= 0 {
		return fmt.Errorf("app.session_idle_timeout must be positive, got %s", c.App.SessionIdleTimeout)
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive, got %s", c.Search.Debounce)
	}
	if c.Catalog.TrendingLimit <= 0 {
		return fmt.Errorf("catalog.trending_limit must be positive, got %d", c.Catalog.TrendingLimit)
	}
	if c.Player.EmbedBaseURL == "" {
		return fmt.Errorf("player.embed_base_url is required")
	}
	return nil
}
