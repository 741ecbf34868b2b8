package pipeline

import (
	"context"

	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/geocode"
	"github.com/junekp/photoroll/internal/library"
)

// Enricher turns raw asset details into view-model photos, attaching place
// names through one geocode session per page so nearby coordinates share a
// single lookup.
type Enricher struct {
	cache      *geocode.Cache
	maxLookups int
}

func NewEnricher(cache *geocode.Cache, maxLookups int) *Enricher {
	if maxLookups <= 0 {
		maxLookups = 60
	}
	return &Enricher{cache: cache, maxLookups: maxLookups}
}

// Enrich maps details to photos 1:1, preserving order. Assets without a
// coordinate skip the lookup entirely and do not count against the session
// budget.
func (e *Enricher) Enrich(ctx context.Context, details []library.Detail) []gallery.Photo {
	session := e.cache.Session(e.maxLookups)

	photos := make([]gallery.Photo, 0, len(details))
	for _, d := range details {
		photo := gallery.Photo{
			URI:      d.URI,
			TakenAt:  d.TakenAt,
			Location: d.Location,
		}
		if d.Location != nil {
			names := session.Lookup(ctx, d.Location.Latitude, d.Location.Longitude)
			photo.Country = names.Country
			photo.City = names.City
		}
		photos = append(photos, photo)
	}
	return photos
}
