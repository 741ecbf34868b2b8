package geocode

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoroll_geocode_cache_hits_total",
		Help: "Coordinate-cell lookups answered from cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoroll_geocode_cache_misses_total",
		Help: "Coordinate-cell lookups not present in any cache.",
	})
	externalLookupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoroll_geocode_external_lookups_total",
		Help: "Reverse-geocode calls issued to the external service.",
	})
	lookupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoroll_geocode_failures_total",
		Help: "Reverse-geocode calls that failed and were cached as empty.",
	})
)

// CacheConfig tunes the lookup throttle. Zero values fall back to the
// defaults used by the mobile client: 2-decimal rounding (~1 km cells), 150ms
// between calls.
type CacheConfig struct {
	Precision int
	Delay     time.Duration
	// Size and TTL bound the shared cross-load cache.
	Size int
	TTL  time.Duration
}

func (c CacheConfig) withDefaults() CacheConfig {
	if c.Precision <= 0 {
		c.Precision = 2
	}
	if c.Delay == 0 {
		c.Delay = 150 * time.Millisecond
	}
	if c.Size <= 0 {
		c.Size = 1024
	}
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
	return c
}

// Cache memoizes reverse-geocode results by rounded coordinate cell. A
// process-wide LRU carries successful results across load cycles; per-load
// budgets and failure placeholders live in Sessions.
type Cache struct {
	geo    Geocoder
	cfg    CacheConfig
	shared *expirable.LRU[string, PlaceNames]
	logger *slog.Logger
}

func NewCache(geo Geocoder, cfg CacheConfig, logger *slog.Logger) *Cache {
	cfg = cfg.withDefaults()
	return &Cache{
		geo:    geo,
		cfg:    cfg,
		shared: expirable.NewLRU[string, PlaceNames](cfg.Size, nil, cfg.TTL),
		logger: logger,
	}
}

// Session opens one enrichment pass with its own lookup budget. Sessions are
// not safe for concurrent use; lookups within a pass are deliberately
// serialized to respect the inter-call delay.
func (c *Cache) Session(maxLookups int) *Session {
	return &Session{
		cache:      c,
		local:      make(map[string]PlaceNames),
		maxLookups: maxLookups,
	}
}

type Session struct {
	cache      *Cache
	local      map[string]PlaceNames
	lookups    int
	maxLookups int
}

// Lookups reports how many external calls the session has issued.
func (s *Session) Lookups() int { return s.lookups }

// Lookup resolves one coordinate to place names. Repeated coordinates in the
// same cell cost a single external call per pass; failures are cached as
// empty placeholders so they are not retried within the pass; once the
// budget is exhausted remaining coordinates resolve to empty without
// touching the service.
func (s *Session) Lookup(ctx context.Context, lat, lon float64) PlaceNames {
	key := s.cache.cellKey(lat, lon)

	if names, ok := s.local[key]; ok {
		cacheHitsTotal.Inc()
		return names
	}
	if names, ok := s.cache.shared.Get(key); ok {
		cacheHitsTotal.Inc()
		s.local[key] = names
		return names
	}
	cacheMissesTotal.Inc()

	if s.lookups >= s.maxLookups {
		return PlaceNames{}
	}

	place, err := s.cache.geo.ReverseGeocode(ctx, lat, lon)
	s.lookups++
	externalLookupsTotal.Inc()

	if err != nil {
		lookupFailuresTotal.Inc()
		s.cache.logger.Debug("reverse geocode failed", "lat", lat, "lon", lon, "error", err)
		// Cache the failure for this pass only so a later load retries,
		// then back off harder than after a success.
		s.local[key] = PlaceNames{}
		sleep(ctx, s.cache.cfg.Delay*4)
		return PlaceNames{}
	}

	names := toNames(place)
	s.local[key] = names
	s.cache.shared.Add(key, names)
	sleep(ctx, s.cache.cfg.Delay)
	return names
}

func (c *Cache) cellKey(lat, lon float64) string {
	p := c.cfg.Precision
	return strconv.FormatFloat(lat, 'f', p, 64) + "," + strconv.FormatFloat(lon, 'f', p, 64)
}

func toNames(place Place) PlaceNames {
	var names PlaceNames
	if place.Country != "" {
		country := place.Country
		names.Country = &country
	}
	city := place.City
	if city == "" {
		city = place.Subregion
	}
	if city != "" {
		names.City = &city
	}
	return names
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
