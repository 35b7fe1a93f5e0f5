package timezone

import (
	"log/slog"
	"sync"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Resolver turns company IANA timezone names into company-local day boundaries.
// Calendar dates are represented as time.Time values at midnight UTC; only their
// year, month and day are meaningful.
type Resolver struct {
	fallback *time.Location
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]*time.Location
}

// NewResolver creates a resolver. An invalid fallback name degrades to UTC.
func NewResolver(defaultTimezone string) *Resolver {
	fallback, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		slog.Warn("Invalid default timezone, using UTC", "timezone", defaultTimezone, "error", err)
		fallback = time.UTC
	}
	return &Resolver{
		fallback: fallback,
		now:      time.Now,
		cache:    make(map[string]*time.Location),
	}
}

// WithClock returns a copy of the resolver that reads the current instant from now.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	return &Resolver{
		fallback: r.fallback,
		now:      now,
		cache:    make(map[string]*time.Location),
	}
}

// Now returns the current instant.
func (r *Resolver) Now() time.Time {
	return r.now()
}

// Location loads tz, falling back to the default location when tz is empty or unknown.
func (r *Resolver) Location(tz string) *time.Location {
	if tz == "" {
		return r.fallback
	}

	r.mu.RLock()
	loc, ok := r.cache[tz]
	r.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("Unknown company timezone, using default", "timezone", tz, "default", r.fallback.String())
		loc = r.fallback
	}

	r.mu.Lock()
	r.cache[tz] = loc
	r.mu.Unlock()
	return loc
}

// LocalDate returns the company-local calendar date that contains instant t.
func (r *Resolver) LocalDate(tz string, t time.Time) time.Time {
	local := t.In(r.Location(tz))
	return Date(local.Year(), local.Month(), local.Day())
}

// Today returns the company-local calendar date of the current instant.
func (r *Resolver) Today(tz string) time.Time {
	return r.LocalDate(tz, r.now())
}

// DateRange returns [start, end) instants of the company-local calendar day date.
func (r *Resolver) DateRange(tz string, date time.Time) (time.Time, time.Time) {
	loc := r.Location(tz)
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	end := time.Date(date.Year(), date.Month(), date.Day()+1, 0, 0, 0, 0, loc)
	return start, end
}

// DayRange returns [start, end) instants of the company-local day containing instant t.
func (r *Resolver) DayRange(tz string, t time.Time) (time.Time, time.Time) {
	return r.DateRange(tz, r.LocalDate(tz, t))
}

// TodayRange returns [start, end) instants of the current company-local day.
func (r *Resolver) TodayRange(tz string) (time.Time, time.Time) {
	return r.DayRange(tz, r.now())
}

// LastNDaysRange returns the instant at the start of the company-local day n days
// before today, and the current instant.
func (r *Resolver) LastNDaysRange(tz string, n int) (time.Time, time.Time) {
	now := r.now()
	today := r.LocalDate(tz, now)
	start, _ := r.DateRange(tz, today.AddDate(0, 0, -n))
	return start, now
}

// Date builds a calendar date value.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate strips the clock from t and keeps its calendar date as-is.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Days lists each calendar date in [start, end], inclusive. It returns nil when end is before start.
func Days(start, end time.Time) []time.Time {
	start, end = Truncate(start), Truncate(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
