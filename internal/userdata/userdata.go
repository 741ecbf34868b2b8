package userdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/junekp/photoroll/internal/gallery"
	"github.com/junekp/photoroll/internal/storage"
)

const (
	statsKey     = "user:stats"
	slideshowKey = "settings:slideshow"
)

// Slideshow interval bounds, in seconds.
const (
	DefaultSlideshowInterval = 5
	MinSlideshowInterval     = 1
	MaxSlideshowInterval     = 60
)

// Stats aggregates lifetime usage counters for a single user.
type Stats struct {
	StartDate           string `json:"startDate"`
	DateSearchCount     int    `json:"dateSearchCount"`
	TimeSearchCount     int    `json:"timeSearchCount"`
	LocationSearchCount int    `json:"locationSearchCount"`
	TotalPhotos         int    `json:"totalPhotos"`
}

// Slideshow holds the slideshow playback preference.
type Slideshow struct {
	IntervalSeconds int `json:"intervalSeconds"`
}

// Service persists user statistics and settings as JSON documents in the
// key-value store.
type Service struct {
	kv     storage.KV
	logger *slog.Logger
	now    func() time.Time
}

func NewService(kv storage.KV, logger *slog.Logger) *Service {
	return &Service{kv: kv, logger: logger, now: time.Now}
}

// Stats loads the user statistics, initialising and persisting a fresh record
// on first use so StartDate marks the first launch.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	raw, err := s.kv.Get(ctx, statsKey)
	if errors.Is(err, storage.ErrNotFound) {
		stats := Stats{StartDate: s.now().Format("2006-01-02")}
		if err := s.SaveStats(ctx, stats); err != nil {
			return Stats{}, err
		}
		s.logger.Info("initialised user statistics", "startDate", stats.StartDate)
		return stats, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("userdata: load stats: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return Stats{}, fmt.Errorf("userdata: decode stats: %w", err)
	}
	return stats, nil
}

// SaveStats overwrites the stored statistics record.
func (s *Service) SaveStats(ctx context.Context, stats Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("userdata: encode stats: %w", err)
	}
	if err := s.kv.Set(ctx, statsKey, raw); err != nil {
		return fmt.Errorf("userdata: save stats: %w", err)
	}
	return nil
}

// RecordSearch bumps the search counters for the criteria a filter actually
// uses. Every search carries a date range; the time counter moves only when
// the window is narrower than the full day, the location counter only when
// countries or cities are set.
func (s *Service) RecordSearch(ctx context.Context, filter gallery.Filter) error {
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}

	stats.DateSearchCount++
	if filter.TimeStart != 0 || filter.TimeEnd != gallery.EndOfDay {
		stats.TimeSearchCount++
	}
	if len(filter.Countries) > 0 || len(filter.Cities) > 0 {
		stats.LocationSearchCount++
	}

	return s.SaveStats(ctx, stats)
}

// RecordPhotos adds freshly loaded photos to the lifetime total.
func (s *Service) RecordPhotos(ctx context.Context, count int) error {
	if count <= 0 {
		return nil
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	stats.TotalPhotos += count
	return s.SaveStats(ctx, stats)
}

// Slideshow loads the slideshow preference, falling back to the default
// interval when none has been saved.
func (s *Service) Slideshow(ctx context.Context) (Slideshow, error) {
	raw, err := s.kv.Get(ctx, slideshowKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Slideshow{IntervalSeconds: DefaultSlideshowInterval}, nil
	}
	if err != nil {
		return Slideshow{}, fmt.Errorf("userdata: load slideshow: %w", err)
	}

	var pref Slideshow
	if err := json.Unmarshal(raw, &pref); err != nil {
		return Slideshow{}, fmt.Errorf("userdata: decode slideshow: %w", err)
	}
	return pref, nil
}

// SetSlideshow validates and persists the slideshow preference.
func (s *Service) SetSlideshow(ctx context.Context, pref Slideshow) error {
	if pref.IntervalSeconds < MinSlideshowInterval || pref.IntervalSeconds > MaxSlideshowInterval {
		return fmt.Errorf("userdata: slideshow interval %d out of range [%d,%d]",
			pref.IntervalSeconds, MinSlideshowInterval, MaxSlideshowInterval)
	}

	raw, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("userdata: encode slideshow: %w", err)
	}
	if err := s.kv.Set(ctx, slideshowKey, raw); err != nil {
		return fmt.Errorf("userdata: save slideshow: %w", err)
	}
	return nil
}
