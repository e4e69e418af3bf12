package config

import (
	"testing"
	"time"

	"github.com/dgallion1/docversions/internal/menu"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MENU_CONTAINER_ID", "VERSIONS_PATH_PREFIX", "RENDER_CONCURRENCY", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.ContainerID != menu.DefaultContainerID {
		t.Errorf("expected container id %q, got %q", menu.DefaultContainerID, cfg.ContainerID)
	}
	if cfg.PathPrefix != menu.DefaultPathPrefix {
		t.Errorf("expected prefix %q, got %q", menu.DefaultPathPrefix, cfg.PathPrefix)
	}
	if cfg.RenderConcurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.RenderConcurrency)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected default CORS origins [*], got %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MENU_CONTAINER_ID", "nav-versions")
	t.Setenv("VERSIONS_PATH_PREFIX", "/docs/")
	t.Setenv("WATCH_DEBOUNCE", "2s")
	t.Setenv("RENDER_CONCURRENCY", "-3")
	t.Setenv("STRICT_CONTAINER", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()
	if cfg.ContainerID != "nav-versions" {
		t.Errorf("expected container id %q, got %q", "nav-versions", cfg.ContainerID)
	}
	if cfg.PathPrefix != "/docs/" {
		t.Errorf("expected prefix %q, got %q", "/docs/", cfg.PathPrefix)
	}
	if cfg.WatchDebounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %s", cfg.WatchDebounce)
	}
	// Non-positive values fall back to the default.
	if cfg.RenderConcurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.RenderConcurrency)
	}
	if !cfg.StrictContainer {
		t.Error("expected strict container mode")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{VersionsFile: "v.yml", ContainerID: "x", SiteDir: "site"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.ContainerID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty container id")
	}

	cfg = Config{ContainerID: "x", SiteDir: "site"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing versions file")
	}
}
