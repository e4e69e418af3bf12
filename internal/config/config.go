package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docversions/internal/menu"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Site layout
	SiteDir    string
	OutputDir  string
	LayoutFile string

	// Build-time version data
	VersionsFile string

	// Menu rendering
	ContainerID     string
	PathPrefix      string
	StrictContainer bool

	// Auth for the reload endpoint
	APIKey string

	// Data file watching
	WatchVersions bool
	WatchDebounce time.Duration

	// Builder
	RenderConcurrency int

	// Render latency window
	StatsWindow time.Duration

	CORSOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set take precedence.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		SiteDir:    envOr("SITE_DIR", "./site"),
		OutputDir:  envOr("OUTPUT_DIR", "./public"),
		LayoutFile: os.Getenv("LAYOUT_FILE"),

		VersionsFile: envOr("VERSIONS_FILE", "./_data/versions.yml"),

		ContainerID:     envOr("MENU_CONTAINER_ID", menu.DefaultContainerID),
		PathPrefix:      envOr("VERSIONS_PATH_PREFIX", menu.DefaultPathPrefix),
		StrictContainer: envBool("STRICT_CONTAINER", false),

		APIKey: os.Getenv("DOCVERSIONS_API_KEY"),

		WatchVersions: envBool("WATCH_VERSIONS", true),
		WatchDebounce: envDuration("WATCH_DEBOUNCE", 500*time.Millisecond),

		RenderConcurrency: envInt("RENDER_CONCURRENCY", 8),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),
	}

	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 500 * time.Millisecond
	}
	if cfg.RenderConcurrency <= 0 {
		cfg.RenderConcurrency = 8
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if c.VersionsFile == "" {
		return fmt.Errorf("VERSIONS_FILE is required")
	}
	if c.ContainerID == "" {
		return fmt.Errorf("MENU_CONTAINER_ID must not be empty")
	}
	if c.SiteDir == "" {
		return fmt.Errorf("SITE_DIR is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
