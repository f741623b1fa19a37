// Package analytics provides common types and utilities for the curve-fitting
// engine: point representations, calendar-day helpers and date windows shared by
// the timeseries, growth, fitter, accuracy and extrema packages.
package analytics

import (
	"math"
	"time"
)

// DateLayout is the calendar-day layout used on the wire and in CSV files
const DateLayout = "2006-01-02"

// TimeSeriesPoint represents a single time-series data point with time and value.
// This is the common type used across all analytics packages.
type TimeSeriesPoint struct {
	Time  time.Time
	Value float64
}

// TimeSeriesData represents a collection of time-series data points
type TimeSeriesData []TimeSeriesPoint

// Values extracts just the values from the time series
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// Times extracts just the times from the time series
func (ts TimeSeriesData) Times() []time.Time {
	times := make([]time.Time, len(ts))
	for i, p := range ts {
		times[i] = p.Time
	}
	return times
}

// Len returns the number of data points
func (ts TimeSeriesData) Len() int {
	return len(ts)
}

// Mean calculates the mean of all finite values
func (ts TimeSeriesData) Mean() float64 {
	sum := 0.0
	count := 0
	for _, p := range ts {
		if math.IsNaN(p.Value) {
			continue
		}
		sum += p.Value
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar day n days after d.
func AddDays(d time.Time, n int) time.Time {
	return Day(d).AddDate(0, 0, n)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the number of calendar days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	// Unix seconds, since time.Duration saturates after ~292 years
	return int((Day(b).Unix() - Day(a).Unix()) / secondsPerDay)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Window is an inclusive range of calendar days. A zero From or To leaves that
// side open.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewWindow builds a window normalised to calendar days.
func NewWindow(from, to time.Time) Window {
	w := Window{}
	if !from.IsZero() {
		w.From = Day(from)
	}
	if !to.IsZero() {
		w.To = Day(to)
	}
	return w
}

// Contains reports whether d lies inside the window.
func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	if !w.From.IsZero() && d.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && d.After(w.To) {
		return false
	}
	return true
}

// Clamp intersects the window with [lo, hi] and reports whether anything is left.
func (w Window) Clamp(lo, hi time.Time) (Window, bool) {
	from, to := Day(lo), Day(hi)
	if !w.From.IsZero() && w.From.After(from) {
		from = w.From
	}
	if !w.To.IsZero() && w.To.Before(to) {
		to = w.To
	}
	if to.Before(from) {
		return Window{}, false
	}
	return Window{From: from, To: to}, true
}

// Days returns the number of days covered by a closed window, or 0 if either side is open.
func (w Window) Days() int {
	if w.From.IsZero() || w.To.IsZero() || w.To.Before(w.From) {
		return 0
	}
	return DaysBetween(w.From, w.To) + 1
}
