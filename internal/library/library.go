package library

import (
	"context"
	"errors"

	"github.com/junekp/photoroll/internal/gallery"
)

// ErrInvalidCursor indicates a pagination cursor that no longer maps to a
// position in the library, e.g. after the backing collection changed.
var ErrInvalidCursor = errors.New("library: invalid cursor")

// Asset is the raw listing entry returned by a page fetch. It carries only
// what the backend can produce cheaply for a whole page; the expensive
// per-asset fields live in Detail.
type Asset struct {
	ID               string
	URI              string
	CreationTime     *int64 // milliseconds since epoch, nil when unknown
	ModificationTime *int64
	Location         *gallery.Coordinate
}

// BestTimestamp returns the creation time when present, otherwise the
// modification time, otherwise nil.
func (a Asset) BestTimestamp() *int64 {
	if a.CreationTime != nil {
		return a.CreationTime
	}
	return a.ModificationTime
}

// Detail is the per-asset record behind a detail fetch: the resolved URI plus
// capture time and GPS coordinate where available.
type Detail struct {
	URI      string
	TakenAt  *int64
	Location *gallery.Coordinate
}

// Page is one slice of the library in newest-first order. EndCursor is an
// opaque resume token, nil on the final page.
type Page struct {
	Assets      []Asset
	EndCursor   *string
	HasNextPage bool
}

// Library is the device photo-library accessor. Implementations are treated
// as shared singletons; callers serialize access through the pagination
// controller.
type Library interface {
	// RequestPermission reports whether the library may be read. A false
	// result with a nil error means the user (or platform) denied access.
	RequestPermission(ctx context.Context) (bool, error)
	// GetPage returns one page of assets sorted by creation time descending,
	// starting from the beginning when cursor is nil.
	GetPage(ctx context.Context, pageSize int, cursor *string) (Page, error)
	// GetDetail resolves the full record for one asset.
	GetDetail(ctx context.Context, id string) (Detail, error)
}
