package pipeline_test

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/geocode"
	"github.com/junekp/photoroll/internal/library"
)

// fakeLibrary serves a fixed sequence of pages. Cursors encode the page
// index so walks are deterministic; gate, when set, is invoked before every
// page fetch and may block to hold a load in flight.
type fakeLibrary struct {
	mu              sync.Mutex
	pages           []library.Page
	assets          map[string]library.Asset
	detailErr       map[string]bool
	detailDelay     map[string]time.Duration
	permission      bool
	permissionCalls int
	pageCalls       int
	pageErr         error
	gate            func(cursor *string)
	lastPageCtx     context.Context
}

func newFakeLibrary(pages ...[]library.Asset) *fakeLibrary {
	l := &fakeLibrary{
		permission: true,
		assets:     make(map[string]library.Asset),
		detailErr:  make(map[string]bool),
	}
	for i, assets := range pages {
		page := library.Page{
			Assets:      assets,
			HasNextPage: i < len(pages)-1,
		}
		if len(assets) > 0 {
			cursor := "c" + strconv.Itoa(i)
			page.EndCursor = &cursor
		}
		l.pages = append(l.pages, page)
		for _, a := range assets {
			l.assets[a.ID] = a
		}
	}
	return l
}

func (l *fakeLibrary) RequestPermission(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.permissionCalls++
	return l.permission, nil
}

func (l *fakeLibrary) GetPage(ctx context.Context, pageSize int, cursor *string) (library.Page, error) {
	if l.gate != nil {
		l.gate(cursor)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pageCalls++
	l.lastPageCtx = ctx

	if l.pageErr != nil {
		return library.Page{}, l.pageErr
	}

	idx := 0
	if cursor != nil {
		n, err := strconv.Atoi(strings.TrimPrefix(*cursor, "c"))
		if err != nil {
			return library.Page{}, library.ErrInvalidCursor
		}
		idx = n + 1
	}
	if idx >= len(l.pages) {
		return library.Page{}, nil
	}
	return l.pages[idx], nil
}

func (l *fakeLibrary) GetDetail(ctx context.Context, id string) (library.Detail, error) {
	l.mu.Lock()
	asset, ok := l.assets[id]
	fail := l.detailErr[id]
	delay := l.detailDelay[id]
	l.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		return library.Detail{}, fmt.Errorf("unknown asset %q", id)
	}
	if fail {
		return library.Detail{}, fmt.Errorf("detail unavailable for %q", id)
	}

	return library.Detail{
		URI:      "detail://" + id,
		TakenAt:  asset.CreationTime,
		Location: asset.Location,
	}, nil
}

// countingGeocoder resolves every coordinate to the same place.
type countingGeocoder struct {
	mu    sync.Mutex
	calls int
	place geocode.Place
}

func (g *countingGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (geocode.Place, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.place, nil
}

func (g *countingGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestCache(geo geocode.Geocoder) *geocode.Cache {
	return geocode.NewCache(geo, geocode.CacheConfig{Delay: time.Nanosecond}, newTestLogger())
}

func asset(id string, takenAt time.Time) library.Asset {
	ms := takenAt.UnixMilli()
	return library.Asset{
		ID:           id,
		URI:          "file://" + id,
		CreationTime: &ms,
	}
}

func locatedAsset(id string, takenAt time.Time, lat, lon float64) library.Asset {
	a := asset(id, takenAt)
	a.Location = &gallery.Coordinate{Latitude: lat, Longitude: lon}
	return a
}

func allDayFilter(start, end time.Time) gallery.Filter {
	return gallery.Filter{
		DateStart: start,
		DateEnd:   end,
		TimeStart: 0,
		TimeEnd:   gallery.EndOfDay,
		Zone:      time.UTC,
	}
}
