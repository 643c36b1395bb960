package aggregator

import (
	"fmt"
	"time"
)

// WindowKind selects how a window is computed relative to the aggregation moment
type WindowKind string

// Supported window kinds
const (
	WindowToday   WindowKind = "today"
	WindowDaysAgo WindowKind = "days_ago"
	WindowAll     WindowKind = "all"
)

// Window is a local-calendar-day time filter
type Window struct {
	Kind WindowKind
	Days int
}

// NewWindow validates and builds a window
func NewWindow(kind string, days int) (Window, error) {
	w := Window{Kind: WindowKind(kind), Days: days}
	switch w.Kind {
	case WindowToday, WindowAll:
		return w, nil
	case WindowDaysAgo:
		if days < 1 {
			return Window{}, fmt.Errorf("days ago window needs at least 1 day, got %d", days)
		}
		return w, nil
	default:
		return Window{}, fmt.Errorf("unknown window kind %q", kind)
	}
}

// Bounds returns the half-open interval [start, end) of the window relative to asOf, in asOf's location. For
// WindowAll both bounds are zero.
func (w Window) Bounds(asOf time.Time) (time.Time, time.Time) {
	midnight := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())

	switch w.Kind {
	case WindowToday:
		return midnight, midnight.AddDate(0, 0, 1)
	case WindowDaysAgo:
		start := midnight.AddDate(0, 0, -w.Days)
		return start, start.AddDate(0, 0, 1)
	default:
		return time.Time{}, time.Time{}
	}
}

// Contains reports whether t falls inside the window computed relative to asOf: start is inclusive, end is exclusive
func (w Window) Contains(t time.Time, asOf time.Time) bool {
	if w.Kind == WindowAll {
		return true
	}

	start, end := w.Bounds(asOf)
	return !t.Before(start) && t.Before(end)
}

// String returns a readable form of the window
func (w Window) String() string {
	if w.Kind == WindowDaysAgo {
		return fmt.Sprintf("%s(%d)", w.Kind, w.Days)
	}

	return string(w.Kind)
}
