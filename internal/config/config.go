package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBPath      string
	LibraryPath string
	PageSize    int

	GeocodeBaseURL    string
	GeocodeContact    string
	GeocodePrecision  int
	GeocodeMaxLookups int
	GeocodeDelay      time.Duration
	GeocodeCacheSize  int
	GeocodeCacheTTL   time.Duration

	DebounceWindow time.Duration
	DetailTimeout  time.Duration

	LogLevel slog.Level
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        getString("PHOTOROLL_ADDR", ":8080"),
		DBPath:      getString("PHOTOROLL_DB_PATH", "data/photoroll.db"),
		LibraryPath: strings.TrimSpace(os.Getenv("PHOTOROLL_LIBRARY_PATH")),
		PageSize:    getInt("PHOTOROLL_PAGE_SIZE", 50),

		GeocodeBaseURL:    getString("PHOTOROLL_GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeContact:    getString("PHOTOROLL_GEOCODE_CONTACT", ""),
		GeocodePrecision:  getInt("PHOTOROLL_GEOCODE_PRECISION", 2),
		GeocodeMaxLookups: getInt("PHOTOROLL_GEOCODE_MAX_LOOKUPS", 60),
		GeocodeDelay:      getDuration("PHOTOROLL_GEOCODE_DELAY", 150*time.Millisecond),
		GeocodeCacheSize:  getInt("PHOTOROLL_GEOCODE_CACHE_SIZE", 1024),
		GeocodeCacheTTL:   getDuration("PHOTOROLL_GEOCODE_CACHE_TTL", time.Hour),

		DebounceWindow: getDuration("PHOTOROLL_DEBOUNCE_WINDOW", 500*time.Millisecond),
		DetailTimeout:  getDuration("PHOTOROLL_DETAIL_TIMEOUT", 10*time.Second),

		LogLevel: getLogLevel("PHOTOROLL_LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.LibraryPath == "" {
		return nil, fmt.Errorf("PHOTOROLL_LIBRARY_PATH must be set")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PHOTOROLL_PAGE_SIZE must be positive")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getLogLevel(key string, fallback slog.Level) slog.Level {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
