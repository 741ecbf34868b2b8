package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/junekp/photoroll/internal/config"
)

func TestLoadRequiresLibraryPath(t *testing.T) {
	if _, err := config.Load(); err == nil {
		t.Fatal("expected an error when no library path is set")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PHOTOROLL_LIBRARY_PATH", "/photos")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.DBPath != "data/photoroll.db" {
		t.Errorf("DBPath = %q, want data/photoroll.db", cfg.DBPath)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.GeocodePrecision != 2 {
		t.Errorf("GeocodePrecision = %d, want 2", cfg.GeocodePrecision)
	}
	if cfg.GeocodeMaxLookups != 60 {
		t.Errorf("GeocodeMaxLookups = %d, want 60", cfg.GeocodeMaxLookups)
	}
	if cfg.GeocodeDelay != 150*time.Millisecond {
		t.Errorf("GeocodeDelay = %v, want 150ms", cfg.GeocodeDelay)
	}
	if cfg.DebounceWindow != 500*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 500ms", cfg.DebounceWindow)
	}
	if cfg.DetailTimeout != 10*time.Second {
		t.Errorf("DetailTimeout = %v, want 10s", cfg.DetailTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PHOTOROLL_LIBRARY_PATH", "/photos")
	t.Setenv("PHOTOROLL_ADDR", ":9090")
	t.Setenv("PHOTOROLL_PAGE_SIZE", "25")
	t.Setenv("PHOTOROLL_GEOCODE_DELAY", "10ms")
	t.Setenv("PHOTOROLL_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.GeocodeDelay != 10*time.Millisecond {
		t.Errorf("GeocodeDelay = %v, want 10ms", cfg.GeocodeDelay)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PHOTOROLL_LIBRARY_PATH", "/photos")
	t.Setenv("PHOTOROLL_PAGE_SIZE", "not-a-number")
	t.Setenv("PHOTOROLL_GEOCODE_DELAY", "soon")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want the default 50", cfg.PageSize)
	}
	if cfg.GeocodeDelay != 150*time.Millisecond {
		t.Errorf("GeocodeDelay = %v, want the default 150ms", cfg.GeocodeDelay)
	}
}
