package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/library"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoroll_loads_total",
		Help: "Completed page loads by kind.",
	}, []string{"kind"})
	staleLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoroll_stale_loads_total",
		Help: "Load results discarded because a newer reset superseded them.",
	})
)

// ErrStale reports that a load finished after a newer reset had already
// replaced the photo list. It is an internal consistency signal, never shown
// to the user.
var ErrStale = errors.New("pipeline: superseded load discarded")

// Messages surfaced to the view layer. Everything else is absorbed.
const (
	msgPermissionDenied = "Photo access permission is required."
	msgLoadFailed       = "Something went wrong while loading photos."
)

// Snapshot is the externally observable state of a load session.
type Snapshot struct {
	Photos      []gallery.Photo `json:"photos"`
	Loading     bool            `json:"loading"`
	HasNextPage bool            `json:"hasNextPage"`
	Error       *string         `json:"error"`
}

// Controller owns the cursor walk: it orchestrates fetch, filter, and
// enrichment for reset and append loads and guards against overlapping or
// stale ones. All mutation happens through its methods.
type Controller struct {
	fetcher  *PageFetcher
	enricher *Enricher
	logger   *slog.Logger

	mu          sync.Mutex
	filter      gallery.Filter
	photos      []gallery.Photo
	endCursor   *string
	hasNextPage bool
	loading     bool
	lastErr     string
	generation  uint64
	cancel      context.CancelFunc
}

func NewController(fetcher *PageFetcher, enricher *Enricher, logger *slog.Logger) *Controller {
	return &Controller{
		fetcher:  fetcher,
		enricher: enricher,
		logger:   logger,
	}
}

// Apply installs a new filter and restarts the cursor walk from the
// beginning. A reset is always permitted: it supersedes any in-flight load by
// bumping the generation and cancelling the load's context, so a stale result
// can never land on top of a newer list.
func (c *Controller) Apply(ctx context.Context, filter gallery.Filter) error {
	filter = filter.Normalize()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.filter = filter
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	result, err := c.loadPage(loadCtx, nil, filter)
	return c.finish(gen, result, err, true)
}

// LoadMore continues the walk from the current cursor. It is ignored while a
// load is in flight or when the library has no further pages; duplicate
// scroll triggers are therefore harmless.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || !c.hasNextPage {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	cursor := c.endCursor
	filter := c.filter
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()

	result, err := c.loadPage(loadCtx, cursor, filter)
	return c.finish(gen, result, err, false)
}

func (c *Controller) finish(gen uint64, result pageResult, err error, reset bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		staleLoadsTotal.Inc()
		c.logger.Debug("discarding superseded load result", "generation", gen)
		return ErrStale
	}

	c.loading = false
	if c.cancel != nil {
		// Release the finished load's context; leaving it uncancelled
		// would pin it until the parent expires.
		c.cancel()
		c.cancel = nil
	}

	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			c.lastErr = msgPermissionDenied
		} else {
			c.lastErr = msgLoadFailed
		}
		c.logger.Error("page load failed", "reset", reset, "error", err)
		return err
	}

	if reset {
		c.photos = result.photos
		loadsTotal.WithLabelValues("reset").Inc()
	} else {
		c.photos = append(c.photos, result.photos...)
		loadsTotal.WithLabelValues("append").Inc()
	}
	c.endCursor = result.endCursor
	c.hasNextPage = result.hasNextPage
	return nil
}

type pageResult struct {
	photos      []gallery.Photo
	endCursor   *string
	hasNextPage bool
}

// loadPage runs one page through the pipeline: fetch raw assets, drop the
// ones outside the date/time window before paying for detail or geocode
// calls, resolve details concurrently, enrich serially, then apply the
// location criterion to the enriched records.
func (c *Controller) loadPage(ctx context.Context, cursor *string, filter gallery.Filter) (pageResult, error) {
	page, err := c.fetcher.Page(ctx, cursor)
	if err != nil {
		return pageResult{}, err
	}

	kept := make([]library.Asset, 0, len(page.Assets))
	for _, asset := range page.Assets {
		if filter.MatchesMoment(asset.BestTimestamp()) {
			kept = append(kept, asset)
		}
	}

	details := c.fetcher.Details(ctx, kept)
	enriched := c.enricher.Enrich(ctx, details)

	photos := make([]gallery.Photo, 0, len(enriched))
	for _, photo := range enriched {
		if filter.MatchesPlace(photo) {
			photos = append(photos, photo)
		}
	}

	return pageResult{
		photos:      photos,
		endCursor:   page.EndCursor,
		hasNextPage: page.HasNextPage,
	}, nil
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Photos:      append([]gallery.Photo(nil), c.photos...),
		Loading:     c.loading,
		HasNextPage: c.hasNextPage,
	}
	if c.lastErr != "" {
		msg := c.lastErr
		snap.Error = &msg
	}
	return snap
}

// Filter returns the currently installed filter.
func (c *Controller) Filter() gallery.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}
