package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/geocode"
	"github.com/junekp/photoroll/internal/library"
	"github.com/junekp/photoroll/internal/pipeline"
)

func TestEnrichResolvesLocatedPhotos(t *testing.T) {
	geo := &countingGeocoder{place: geocode.Place{Country: "France", City: "Paris"}}
	enricher := pipeline.NewEnricher(newTestCache(geo), 60)

	ts := time.Now().UnixMilli()
	details := []library.Detail{
		{URI: "detail://a", TakenAt: &ts, Location: &gallery.Coordinate{Latitude: 48.85, Longitude: 2.35}},
		{URI: "detail://b", TakenAt: &ts},
		{URI: "detail://c", TakenAt: &ts, Location: &gallery.Coordinate{Latitude: 48.851, Longitude: 2.351}},
	}

	photos := enricher.Enrich(context.Background(), details)
	if len(photos) != len(details) {
		t.Fatalf("got %d photos, want %d", len(photos), len(details))
	}
	for i, d := range details {
		if photos[i].URI != d.URI {
			t.Errorf("photos[%d].URI = %q, want %q", i, photos[i].URI, d.URI)
		}
	}
	if photos[0].Country == nil || *photos[0].Country != "France" {
		t.Errorf("photos[0].Country = %v, want France", photos[0].Country)
	}
	if photos[0].City == nil || *photos[0].City != "Paris" {
		t.Errorf("photos[0].City = %v, want Paris", photos[0].City)
	}
	if photos[1].Country != nil || photos[1].City != nil {
		t.Errorf("unlocated photo got place names: country=%v city=%v", photos[1].Country, photos[1].City)
	}

	// Both located photos round to the same cell.
	if got := geo.callCount(); got != 1 {
		t.Errorf("external lookups = %d, want 1", got)
	}
}

func TestEnrichSkipsUnlocatedPhotos(t *testing.T) {
	geo := &countingGeocoder{place: geocode.Place{Country: "France"}}
	enricher := pipeline.NewEnricher(newTestCache(geo), 60)

	ts := time.Now().UnixMilli()
	details := []library.Detail{
		{URI: "detail://a", TakenAt: &ts},
		{URI: "detail://b", TakenAt: &ts},
	}

	photos := enricher.Enrich(context.Background(), details)
	if len(photos) != 2 {
		t.Fatalf("got %d photos, want 2", len(photos))
	}
	if got := geo.callCount(); got != 0 {
		t.Errorf("external lookups = %d, want 0", got)
	}
}
