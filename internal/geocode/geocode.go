package geocode

import "context"

// Place is the raw reverse-geocoding result for a coordinate. Empty fields
// mean the service had no value. City-level consumers should prefer City and
// fall back to Subregion.
type Place struct {
	Country   string
	City      string
	Subregion string
}

// PlaceNames are the derived fields attached to a photo. Nil means unknown:
// the asset had no coordinate, the lookup budget was exhausted, or the
// service failed or returned nothing.
type PlaceNames struct {
	Country *string
	City    *string
}

// Geocoder resolves a coordinate to place names. Implementations may fail to
// signal rate limiting or transient errors; callers are expected to absorb
// failures rather than propagate them.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}
