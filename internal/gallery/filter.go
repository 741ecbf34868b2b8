package gallery

import (
	"fmt"
	"strings"
	"time"
)

// EndOfDay is the 24:00 sentinel for Filter.TimeEnd. A window ending at 24:00
// has no upper bound within the day.
const EndOfDay = 1440

// Filter is the compound criterion applied to a page of assets. Date bounds
// are inclusive calendar days; time bounds are minutes of the local wall-clock
// day. When both Countries and Cities are empty no location filtering happens;
// a non-empty Cities list takes precedence over Countries.
type Filter struct {
	DateStart time.Time `json:"dateStart"`
	DateEnd   time.Time `json:"dateEnd"`
	TimeStart int       `json:"timeStart"`
	TimeEnd   int       `json:"timeEnd"`
	Countries []string  `json:"countries,omitempty"`
	Cities    []string  `json:"cities,omitempty"`

	// Zone is the location used to derive wall-clock minutes from
	// timestamps. Nil means time.Local.
	Zone *time.Location `json:"-"`
}

// Default returns the filter applied before the user touches anything: the
// past month of photos at any time of day.
func Default(now time.Time) Filter {
	return Filter{
		DateStart: now.AddDate(0, -1, 0),
		DateEnd:   now,
		TimeStart: 0,
		TimeEnd:   EndOfDay,
	}
}

// Normalize returns a copy with an inverted date range swapped and time
// bounds clamped to [0,1440]. Downstream predicates assume a normalized
// filter.
func (f Filter) Normalize() Filter {
	if f.DateEnd.Before(f.DateStart) {
		f.DateStart, f.DateEnd = f.DateEnd, f.DateStart
	}
	f.TimeStart = clampMinutes(f.TimeStart, EndOfDay-1)
	f.TimeEnd = clampMinutes(f.TimeEnd, EndOfDay)
	return f
}

func clampMinutes(m, max int) int {
	if m < 0 {
		return 0
	}
	if m > max {
		return max
	}
	return m
}

func (f Filter) zone() *time.Location {
	if f.Zone != nil {
		return f.Zone
	}
	return time.Local
}

// dayStart truncates t to midnight in the filter's zone.
func (f Filter) dayStart(t time.Time) time.Time {
	t = t.In(f.zone())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, f.zone())
}

// MatchesMoment reports whether a timestamp (milliseconds since epoch) falls
// within the filter's date range and time-of-day window. It is evaluated
// before enrichment so excluded assets never cost a geocode lookup.
func (f Filter) MatchesMoment(tsMillis *int64) bool {
	if tsMillis == nil {
		return false
	}
	ts := time.UnixMilli(*tsMillis)

	start := f.dayStart(f.DateStart)
	end := f.dayStart(f.DateEnd).AddDate(0, 0, 1)
	if ts.Before(start) || !ts.Before(end) {
		return false
	}

	return InWindow(*tsMillis, f.TimeStart, f.TimeEnd, f.zone())
}

// MatchesPlace reports whether an enriched photo passes the location
// criterion. It runs after enrichment since it depends on derived place
// names.
func (f Filter) MatchesPlace(p Photo) bool {
	if len(f.Countries) == 0 && len(f.Cities) == 0 {
		return true
	}
	if len(f.Cities) > 0 {
		return p.City != nil && contains(f.Cities, *p.City)
	}
	return p.Country != nil && contains(f.Countries, *p.Country)
}

// Matches is the full compound predicate over an enriched photo.
func (f Filter) Matches(p Photo) bool {
	return f.MatchesMoment(p.TakenAt) && f.MatchesPlace(p)
}

// InWindow reports whether the local wall-clock minute of ts (milliseconds
// since epoch) falls in [startMin, endMin]. endMin == 1440 means the window
// runs through 23:59. A window with endMin < startMin crosses midnight and
// matches minutes on either side of it.
func InWindow(tsMillis int64, startMin, endMin int, zone *time.Location) bool {
	local := time.UnixMilli(tsMillis).In(zone)
	mins := local.Hour()*60 + local.Minute()
	switch {
	case endMin == EndOfDay:
		return mins >= startMin
	case endMin >= startMin:
		return mins >= startMin && mins <= endMin
	default:
		return mins >= startMin || mins <= endMin
	}
}

// Signature serializes the filter bounds into a stable string. Two filters
// with equal signatures would produce identical reloads, which lets the
// debouncer suppress redundant emissions.
func (f Filter) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%d|%d",
		f.dayStart(f.DateStart).Format("2006-01-02"),
		f.dayStart(f.DateEnd).Format("2006-01-02"),
		f.TimeStart,
		f.TimeEnd,
	)
	b.WriteByte('|')
	b.WriteString(strings.Join(f.Countries, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(f.Cities, ","))
	return b.String()
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
