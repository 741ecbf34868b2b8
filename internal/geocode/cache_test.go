package geocode_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/junekp/photoroll/internal/geocode"
)

type stubGeocoder struct {
	calls  int
	place  geocode.Place
	err    error
	byCall func(call int, lat, lon float64) (geocode.Place, error)
}

func (s *stubGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (geocode.Place, error) {
	s.calls++
	if s.byCall != nil {
		return s.byCall(s.calls, lat, lon)
	}
	return s.place, s.err
}

func newCache(geo geocode.Geocoder) *geocode.Cache {
	return geocode.NewCache(geo, geocode.CacheConfig{
		Precision: 2,
		Delay:     time.Nanosecond,
	}, slog.New(slog.DiscardHandler))
}

func TestSessionDeduplicatesNearbyCoordinates(t *testing.T) {
	stub := &stubGeocoder{place: geocode.Place{Country: "United States", City: "San Mateo"}}
	session := newCache(stub).Session(1)
	ctx := context.Background()

	// Both coordinates round to the cell "37.50,-122.40".
	first := session.Lookup(ctx, 37.501, -122.399)
	second := session.Lookup(ctx, 37.499, -122.401)

	if stub.calls != 1 {
		t.Fatalf("expected exactly one external call, got %d", stub.calls)
	}
	if first.Country == nil || *first.Country != "United States" {
		t.Fatalf("unexpected country: %v", first.Country)
	}
	if second.City == nil || *second.City != "San Mateo" {
		t.Fatalf("expected cached city for second photo, got %v", second.City)
	}
}

func TestSessionBudgetBoundsExternalCalls(t *testing.T) {
	stub := &stubGeocoder{place: geocode.Place{Country: "France"}}
	session := newCache(stub).Session(3)
	ctx := context.Background()

	// Ten photos across five distinct cells with a budget of three.
	for i := 0; i < 10; i++ {
		session.Lookup(ctx, float64(i%5), 0)
	}

	if stub.calls != 3 {
		t.Fatalf("expected calls bounded by budget, got %d", stub.calls)
	}
	if session.Lookups() != 3 {
		t.Fatalf("expected session to report 3 lookups, got %d", session.Lookups())
	}

	// Past the budget, cells already resolved still answer from cache.
	resolved := session.Lookup(ctx, 1, 0)
	if resolved.Country == nil {
		t.Fatalf("expected cached cell to resolve after budget exhaustion")
	}
	if stub.calls != 3 {
		t.Fatalf("expected no further external calls, got %d", stub.calls)
	}

	// Unknown cells resolve to empty without consuming anything.
	empty := session.Lookup(ctx, 90, 90)
	if empty.Country != nil || empty.City != nil {
		t.Fatalf("expected empty result past the budget, got %+v", empty)
	}
	if stub.calls != 3 {
		t.Fatalf("expected budget to stay exhausted, got %d calls", stub.calls)
	}
}

func TestSessionCachesFailures(t *testing.T) {
	stub := &stubGeocoder{err: errors.New("rate limited")}
	session := newCache(stub).Session(10)
	ctx := context.Background()

	first := session.Lookup(ctx, 0, 0)
	second := session.Lookup(ctx, 0, 0)

	if stub.calls != 1 {
		t.Fatalf("expected the failure to be cached for the pass, got %d calls", stub.calls)
	}
	if first.Country != nil || first.City != nil {
		t.Fatalf("expected empty placeholder after failure, got %+v", first)
	}
	if second.Country != nil || second.City != nil {
		t.Fatalf("expected cached placeholder for second photo, got %+v", second)
	}
}

func TestFailuresAreNotSharedAcrossSessions(t *testing.T) {
	stub := &stubGeocoder{
		byCall: func(call int, lat, lon float64) (geocode.Place, error) {
			if call == 1 {
				return geocode.Place{}, errors.New("transient")
			}
			return geocode.Place{Country: "Japan", City: "Kyoto"}, nil
		},
	}
	cache := newCache(stub)
	ctx := context.Background()

	if names := cache.Session(10).Lookup(ctx, 35, 135); names.Country != nil {
		t.Fatalf("expected first session to observe the failure, got %+v", names)
	}

	// A later load cycle retries rather than inheriting the placeholder.
	names := cache.Session(10).Lookup(ctx, 35, 135)
	if stub.calls != 2 {
		t.Fatalf("expected a retry in the new session, got %d calls", stub.calls)
	}
	if names.City == nil || *names.City != "Kyoto" {
		t.Fatalf("expected fresh result in new session, got %+v", names)
	}
}

func TestSuccessesAreSharedAcrossSessions(t *testing.T) {
	stub := &stubGeocoder{place: geocode.Place{Country: "Italy", City: "Rome"}}
	cache := newCache(stub)
	ctx := context.Background()

	cache.Session(10).Lookup(ctx, 41.9, 12.5)
	names := cache.Session(10).Lookup(ctx, 41.9, 12.5)

	if stub.calls != 1 {
		t.Fatalf("expected shared cache to answer the second session, got %d calls", stub.calls)
	}
	if names.City == nil || *names.City != "Rome" {
		t.Fatalf("expected shared result, got %+v", names)
	}
}

func TestCityFallsBackToSubregion(t *testing.T) {
	stub := &stubGeocoder{place: geocode.Place{Country: "Iceland", Subregion: "Southern Region"}}
	session := newCache(stub).Session(1)

	names := session.Lookup(context.Background(), 63.9, -21.0)
	if names.City == nil || *names.City != "Southern Region" {
		t.Fatalf("expected subregion fallback, got %v", names.City)
	}
}
