package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junekp/photoroll/internal/analytics"
	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/pipeline"
	"github.com/junekp/photoroll/internal/userdata"
)

// GalleryHandler exposes the photo pipeline over JSON. Filter changes go
// through the debouncer; everything else reads controller state.
type GalleryHandler struct {
	logger    *slog.Logger
	control   *pipeline.Controller
	debouncer *pipeline.Debouncer
	users     *userdata.Service
	events    analytics.Sink
	now       func() time.Time
}

func NewGalleryHandler(logger *slog.Logger, control *pipeline.Controller, debouncer *pipeline.Debouncer, users *userdata.Service, events analytics.Sink) *GalleryHandler {
	return &GalleryHandler{
		logger:    logger,
		control:   control,
		debouncer: debouncer,
		users:     users,
		events:    events,
		now:       time.Now,
	}
}

// Snapshot returns the currently loaded photos and load state.
func (h *GalleryHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.control.Snapshot())
}

type filterRequest struct {
	DateStart string   `json:"dateStart"`
	DateEnd   string   `json:"dateEnd"`
	TimeStart *int     `json:"timeStart"`
	TimeEnd   *int     `json:"timeEnd"`
	Countries []string `json:"countries"`
	Cities    []string `json:"cities"`
	Preset    string   `json:"preset"`
	Immediate bool     `json:"immediate"`
}

// UpdateFilter merges the request into the active filter. Presets and
// explicit immediate requests apply synchronously; everything else waits out
// the debounce window so typing bursts collapse into one reload.
func (h *GalleryHandler) UpdateFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter payload"})
		return
	}

	// Merge onto the pending debounced filter when one exists so a burst of
	// partial updates accumulates instead of each request clobbering the
	// previous one.
	filter, pending := h.debouncer.Pending()
	if !pending {
		filter = h.control.Filter()
		if filter.DateStart.IsZero() {
			filter = gallery.Default(h.now())
		}
	}

	if req.Preset != "" {
		updated, err := gallery.ApplyPreset(filter, req.Preset, h.now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.events.Emit("filter_preset", map[string]string{"preset": req.Preset})
		h.debouncer.Apply(updated)
		c.JSON(http.StatusOK, h.control.Snapshot())
		return
	}

	if req.DateStart != "" {
		start, err := time.ParseInLocation("2006-01-02", req.DateStart, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateStart"})
			return
		}
		filter.DateStart = start
	}
	if req.DateEnd != "" {
		end, err := time.ParseInLocation("2006-01-02", req.DateEnd, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateEnd"})
			return
		}
		filter.DateEnd = end
	}
	if req.TimeStart != nil {
		filter.TimeStart = *req.TimeStart
	}
	if req.TimeEnd != nil {
		filter.TimeEnd = *req.TimeEnd
	}
	if req.Countries != nil {
		filter.Countries = req.Countries
	}
	if req.Cities != nil {
		filter.Cities = req.Cities
	}

	if req.Immediate {
		h.debouncer.Apply(filter)
		c.JSON(http.StatusOK, h.control.Snapshot())
		return
	}

	h.debouncer.Update(filter)
	c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
}

// FlushFilter applies any pending debounced change right away, matching the
// filter sheet being dismissed.
func (h *GalleryHandler) FlushFilter(c *gin.Context) {
	h.debouncer.Flush()
	c.JSON(http.StatusOK, h.control.Snapshot())
}

// LoadMore continues the pagination walk. Newly appended photos count toward
// the lifetime total.
func (h *GalleryHandler) LoadMore(c *gin.Context) {
	before := len(h.control.Snapshot().Photos)

	if err := h.control.LoadMore(c.Request.Context()); err != nil {
		h.logger.Error("load more failed", "error", err)
	}

	snap := h.control.Snapshot()
	if added := len(snap.Photos) - before; added > 0 {
		if err := h.users.RecordPhotos(c.Request.Context(), added); err != nil {
			h.logger.Error("failed to record loaded photos", "error", err)
		}
	}
	c.JSON(http.StatusOK, snap)
}

// Locations returns the country and city names present in the loaded photos.
func (h *GalleryHandler) Locations(c *gin.Context) {
	snap := h.control.Snapshot()
	c.JSON(http.StatusOK, gallery.BuildLocationCatalog(snap.Photos))
}

type mapPoint struct {
	URI       string  `json:"uri"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Map lists the coordinates of located photos for the map viewer.
func (h *GalleryHandler) Map(c *gin.Context) {
	snap := h.control.Snapshot()

	points := make([]mapPoint, 0, len(snap.Photos))
	for _, p := range snap.Photos {
		if p.Location == nil {
			continue
		}
		points = append(points, mapPoint{
			URI:       p.URI,
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		})
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}
