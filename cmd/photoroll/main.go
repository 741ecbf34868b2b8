package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/junekp/photoroll/internal/analytics"
	"github.com/junekp/photoroll/internal/config"
	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/geocode"
	"github.com/junekp/photoroll/internal/library"
	"github.com/junekp/photoroll/internal/logging"
	"github.com/junekp/photoroll/internal/pipeline"
	"github.com/junekp/photoroll/internal/router"
	"github.com/junekp/photoroll/internal/storage/sqlite"
	"github.com/junekp/photoroll/internal/userdata"
)

var rootCmd = &cobra.Command{
	Use:   "photoroll",
	Short: "Incremental photo gallery with filtering and geocode enrichment",
	Long: `Photoroll serves a photo library page by page, filtering by date,
time of day and place, and enriches located photos with country and city
names from a reverse geocoder.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gallery HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	bootstrapLogger := logging.New(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		return err
	}

	logger := logging.New(cfg.LogLevel)

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open sqlite database", "path", cfg.DBPath, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close sqlite database", "error", err)
		}
	}()

	lib := library.NewFS(cfg.LibraryPath, logger)
	geocoder := geocode.NewNominatim(cfg.GeocodeBaseURL, cfg.GeocodeContact)
	cache := geocode.NewCache(geocoder, geocode.CacheConfig{
		Precision: cfg.GeocodePrecision,
		Delay:     cfg.GeocodeDelay,
		Size:      cfg.GeocodeCacheSize,
		TTL:       cfg.GeocodeCacheTTL,
	}, logger)

	fetcher := pipeline.NewPageFetcher(lib, cfg.PageSize, cfg.DetailTimeout, logger)
	enricher := pipeline.NewEnricher(cache, cfg.GeocodeMaxLookups)
	control := pipeline.NewController(fetcher, enricher, logger)

	users := userdata.NewService(store.KV(), logger)
	events := analytics.NewLogSink(logger, 256)
	defer events.Close()

	debouncer := pipeline.NewDebouncer(cfg.DebounceWindow, func(f gallery.Filter) {
		ctx := context.Background()
		if err := control.Apply(ctx, f); err != nil {
			logger.Error("filter apply failed", "error", err)
			return
		}
		if err := users.RecordSearch(ctx, f); err != nil {
			logger.Error("failed to record search", "error", err)
		}
		if loaded := len(control.Snapshot().Photos); loaded > 0 {
			if err := users.RecordPhotos(ctx, loaded); err != nil {
				logger.Error("failed to record loaded photos", "error", err)
			}
		}
		events.Emit("filter_applied", map[string]string{"signature": f.Signature()})
	})

	if err := control.Apply(context.Background(), gallery.Default(time.Now())); err != nil {
		logger.Warn("initial load failed", "error", err)
	}

	logger.Info("starting server", "addr", cfg.Addr, "library", cfg.LibraryPath)

	r := router.New(logger, control, debouncer, users, events, store)

	if err := r.Run(cfg.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	return nil
}
