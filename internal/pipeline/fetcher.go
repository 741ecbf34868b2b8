package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/junekp/photoroll/internal/library"
)

// ErrPermissionDenied is surfaced when the user (or platform) declined photo
// library access. There is no automatic retry; a new grant is a new session.
var ErrPermissionDenied = errors.New("pipeline: photo library permission denied")

// PageFetcher talks to the photo-library accessor: one page of raw assets per
// call, then per-asset detail for the subset that survived pre-filtering.
// Permission is requested once per session and the answer cached.
type PageFetcher struct {
	lib           library.Library
	pageSize      int
	detailTimeout time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	granted *bool
}

func NewPageFetcher(lib library.Library, pageSize int, detailTimeout time.Duration, logger *slog.Logger) *PageFetcher {
	if pageSize <= 0 {
		pageSize = 50
	}
	if detailTimeout <= 0 {
		detailTimeout = 10 * time.Second
	}
	return &PageFetcher{
		lib:           lib,
		pageSize:      pageSize,
		detailTimeout: detailTimeout,
		logger:        logger,
	}
}

func (f *PageFetcher) ensurePermission(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.granted == nil {
		granted, err := f.lib.RequestPermission(ctx)
		if err != nil {
			return fmt.Errorf("pipeline: request permission: %w", err)
		}
		f.granted = &granted
	}

	if !*f.granted {
		return ErrPermissionDenied
	}
	return nil
}

// Page fetches one page of raw assets starting at cursor (nil restarts the
// walk).
func (f *PageFetcher) Page(ctx context.Context, cursor *string) (library.Page, error) {
	if err := f.ensurePermission(ctx); err != nil {
		return library.Page{}, err
	}

	page, err := f.lib.GetPage(ctx, f.pageSize, cursor)
	if err != nil {
		return library.Page{}, fmt.Errorf("pipeline: fetch page: %w", err)
	}
	return page, nil
}

// Details resolves per-asset detail concurrently, one fetch per asset, and
// waits for all of them. Results are index-aligned with the input regardless
// of completion order. A failed or timed-out detail fetch degrades to the raw
// asset's own fields rather than dropping the asset.
func (f *PageFetcher) Details(ctx context.Context, assets []library.Asset) []library.Detail {
	details := make([]library.Detail, len(assets))

	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset library.Asset) {
			defer wg.Done()

			detailCtx, cancel := context.WithTimeout(ctx, f.detailTimeout)
			defer cancel()

			detail, err := f.lib.GetDetail(detailCtx, asset.ID)
			if err != nil {
				f.logger.Debug("detail fetch degraded to raw asset", "asset", asset.ID, "error", err)
				details[i] = library.Detail{
					URI:      asset.URI,
					TakenAt:  asset.BestTimestamp(),
					Location: asset.Location,
				}
				return
			}

			if detail.URI == "" {
				detail.URI = asset.URI
			}
			if detail.TakenAt == nil {
				detail.TakenAt = asset.BestTimestamp()
			}
			details[i] = detail
		}(i, asset)
	}
	wg.Wait()

	return details
}
