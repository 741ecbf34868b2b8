package gallery

import (
	"fmt"
	"time"
)

// Preset names accepted by ApplyPreset. Date presets move the date range and
// keep the time window; time presets do the opposite.
const (
	PresetOneYearAgo  = "one-year-ago"
	PresetOneMonthAgo = "one-month-ago"
	PresetPastMonth   = "past-month"
	PresetPastWeek    = "past-week"

	PresetNight     = "night"     // 00:00 - 05:59
	PresetMorning   = "morning"   // 06:00 - 11:59
	PresetAfternoon = "afternoon" // 12:00 - 17:59
	PresetEvening   = "evening"   // 18:00 - 23:59
	PresetAllDay    = "all-day"
)

// ApplyPreset returns f with the named preset applied relative to now.
// Presets are discrete, intentional selections and bypass debouncing at the
// call site.
func ApplyPreset(f Filter, name string, now time.Time) (Filter, error) {
	switch name {
	case PresetOneYearAgo:
		d := now.AddDate(-1, 0, 0)
		f.DateStart, f.DateEnd = d, d
	case PresetOneMonthAgo:
		d := now.AddDate(0, -1, 0)
		f.DateStart, f.DateEnd = d, d
	case PresetPastMonth:
		first := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		last := time.Date(now.Year(), now.Month(), 0, 0, 0, 0, 0, now.Location())
		f.DateStart, f.DateEnd = first, last
	case PresetPastWeek:
		f.DateStart = now.AddDate(0, 0, -7)
		f.DateEnd = now.AddDate(0, 0, -1)
	case PresetNight:
		f.TimeStart, f.TimeEnd = 0, 6*60-1
	case PresetMorning:
		f.TimeStart, f.TimeEnd = 6*60, 12*60-1
	case PresetAfternoon:
		f.TimeStart, f.TimeEnd = 12*60, 18*60-1
	case PresetEvening:
		f.TimeStart, f.TimeEnd = 18*60, 24*60-1
	case PresetAllDay:
		f.TimeStart, f.TimeEnd = 0, EndOfDay
	default:
		return f, fmt.Errorf("gallery: unknown preset %q", name)
	}
	return f, nil
}
