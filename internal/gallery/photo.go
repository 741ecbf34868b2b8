package gallery

// Coordinate is a GPS position attached to a photo.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo is the enriched record consumed by the view layer. Instances are
// immutable once placed in a result list; a reset replaces the list wholesale.
type Photo struct {
	// URI is the resolved location of the image resource.
	URI string `json:"uri"`
	// TakenAt is the capture timestamp in milliseconds since epoch. It falls
	// back to the modification time when capture time is absent and is nil
	// when neither is available.
	TakenAt *int64 `json:"takenAt"`
	// Location is the GPS coordinate attached to the asset, if any.
	Location *Coordinate `json:"location"`
	// Country and City are populated by enrichment and stay nil when the
	// asset has no location or geocoding failed or was skipped.
	Country *string `json:"country"`
	City    *string `json:"city"`
}
