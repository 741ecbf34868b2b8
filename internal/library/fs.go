package library

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/junekp/photoroll/internal/gallery"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
	".tiff": true,
}

// FS serves a directory tree of image files as a photo library. The listing
// is snapshotted on the first page fetch of a cursor walk and re-snapshotted
// whenever a walk restarts from a nil cursor, so a reset sees new files while
// an in-progress walk keeps a stable order.
type FS struct {
	root   string
	logger *slog.Logger

	mu     sync.Mutex
	assets []Asset
	byID   map[string]int
}

// NewFS creates a filesystem-backed library rooted at dir.
func NewFS(dir string, logger *slog.Logger) *FS {
	return &FS{root: dir, logger: logger}
}

// RequestPermission checks that the library root is readable. A permission
// error maps to a denial rather than a failure so the caller can surface the
// same message a mobile permission prompt would.
func (l *FS) RequestPermission(ctx context.Context) (bool, error) {
	f, err := os.Open(l.root)
	if err != nil {
		if os.IsPermission(err) {
			return false, nil
		}
		return false, fmt.Errorf("library: open root: %w", err)
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		if os.IsPermission(err) {
			return false, nil
		}
	}
	return true, nil
}

func (l *FS) GetPage(ctx context.Context, pageSize int, cursor *string) (Page, error) {
	if pageSize <= 0 {
		return Page{}, fmt.Errorf("library: page size must be positive, got %d", pageSize)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cursor == nil || l.assets == nil {
		if err := l.scanLocked(); err != nil {
			return Page{}, err
		}
	}

	offset := 0
	if cursor != nil {
		id, err := decodeCursor(*cursor)
		if err != nil {
			return Page{}, err
		}
		idx, ok := l.byID[id]
		if !ok {
			return Page{}, ErrInvalidCursor
		}
		offset = idx + 1
	}

	if offset >= len(l.assets) {
		return Page{HasNextPage: false}, nil
	}

	end := offset + pageSize
	if end > len(l.assets) {
		end = len(l.assets)
	}

	page := Page{
		Assets:      append([]Asset(nil), l.assets[offset:end]...),
		HasNextPage: end < len(l.assets),
	}
	if len(page.Assets) > 0 {
		c := encodeCursor(page.Assets[len(page.Assets)-1].ID)
		page.EndCursor = &c
	}
	return page, nil
}

// GetDetail reads EXIF metadata for one asset. Files without a usable EXIF
// block return an error; the fetcher falls back to the raw listing entry.
func (l *FS) GetDetail(ctx context.Context, id string) (Detail, error) {
	l.mu.Lock()
	idx, ok := l.byID[id]
	var asset Asset
	if ok {
		asset = l.assets[idx]
	}
	l.mu.Unlock()

	if !ok {
		return Detail{}, fmt.Errorf("library: unknown asset %q", id)
	}

	f, err := os.Open(filepath.Join(l.root, id))
	if err != nil {
		return Detail{}, fmt.Errorf("library: open asset %q: %w", id, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Detail{}, fmt.Errorf("library: decode exif for %q: %w", id, err)
	}

	detail := Detail{URI: asset.URI}

	if taken, err := x.DateTime(); err == nil {
		ms := taken.UnixMilli()
		detail.TakenAt = &ms
	} else {
		detail.TakenAt = asset.ModificationTime
	}

	if lat, lon, err := x.LatLong(); err == nil {
		detail.Location = &gallery.Coordinate{Latitude: lat, Longitude: lon}
	}

	return detail, nil
}

func (l *FS) scanLocked() error {
	var assets []Asset

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}

		modMillis := info.ModTime().UnixMilli()
		assets = append(assets, Asset{
			ID:               rel,
			URI:              "file://" + path,
			ModificationTime: &modMillis,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("library: scan %s: %w", l.root, err)
	}

	// Newest first; path breaks ties so the order is stable across scans.
	sort.Slice(assets, func(i, j int) bool {
		a, b := *assets[i].ModificationTime, *assets[j].ModificationTime
		if a != b {
			return a > b
		}
		return assets[i].ID < assets[j].ID
	})

	byID := make(map[string]int, len(assets))
	for i, a := range assets {
		byID[a.ID] = i
	}

	l.assets = assets
	l.byID = byID
	l.logger.Debug("library scanned", "root", l.root, "assets", len(assets))
	return nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", ErrInvalidCursor
	}
	return string(raw), nil
}

var _ Library = (*FS)(nil)
