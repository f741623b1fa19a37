package timeseries

import (
	"math"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
)

// TimeSeries is a gap-free daily series. values[i] belongs to Start()+i days.
type TimeSeries struct {
	start        time.Time
	values       []float64
	defaultValue float64
	isInteger    bool
}

// Option configures a series at construction time
type Option func(*TimeSeries)

// WithDefault sets the value returned for dates outside the stored range.
func WithDefault(v float64) Option {
	return func(s *TimeSeries) {
		s.defaultValue = v
	}
}

// AsInteger marks the series as holding whole counts.
func AsInteger() Option {
	return func(s *TimeSeries) {
		s.isInteger = true
	}
}

// New creates a series starting at start. The values slice is copied.
func New(start time.Time, values []float64, opts ...Option) *TimeSeries {
	s := &TimeSeries{
		start:  analytics.Day(start),
		values: append([]float64(nil), values...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Empty creates a series with no values.
func Empty(start time.Time, opts ...Option) *TimeSeries {
	return New(start, nil, opts...)
}

// FromPoints builds a series from points that may be unordered or have gaps.
// Missing days take the default value; for duplicate days the last point wins.
func FromPoints(points analytics.TimeSeriesData, opts ...Option) *TimeSeries {
	s := New(time.Time{}, nil, opts...)
	if len(points) == 0 {
		return s
	}

	first, last := analytics.Day(points[0].Time), analytics.Day(points[0].Time)
	for _, p := range points[1:] {
		d := analytics.Day(p.Time)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	values := make([]float64, analytics.DaysBetween(first, last)+1)
	for i := range values {
		values[i] = s.defaultValue
	}
	for _, p := range points {
		values[analytics.DaysBetween(first, p.Time)] = p.Value
	}

	s.start = first
	s.values = values
	return s
}

// derive builds a series that inherits the receiver's default and integer flag.
func (s *TimeSeries) derive(start time.Time, values []float64) *TimeSeries {
	return &TimeSeries{
		start:        analytics.Day(start),
		values:       values,
		defaultValue: s.defaultValue,
		isInteger:    s.isInteger,
	}
}

// Start returns the date of the first stored value
func (s *TimeSeries) Start() time.Time {
	return s.start
}

// End returns the date of the last stored value. For an empty series it is the day before Start.
func (s *TimeSeries) End() time.Time {
	return analytics.AddDays(s.start, len(s.values)-1)
}

// Len returns the number of stored values
func (s *TimeSeries) Len() int {
	return len(s.values)
}

// IsEmpty reports whether the series stores no values
func (s *TimeSeries) IsEmpty() bool {
	return len(s.values) == 0
}

// Default returns the value used for dates outside the stored range
func (s *TimeSeries) Default() float64 {
	return s.defaultValue
}

// IsInteger reports whether the series holds whole counts
func (s *TimeSeries) IsInteger() bool {
	return s.isInteger
}

// Values returns a copy of the stored values
func (s *TimeSeries) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// At returns the i-th stored value, or the default when i is out of range.
func (s *TimeSeries) At(i int) float64 {
	if i < 0 || i >= len(s.values) {
		return s.defaultValue
	}
	return s.values[i]
}

// DateAt returns the date of the i-th stored value.
func (s *TimeSeries) DateAt(i int) time.Time {
	return analytics.AddDays(s.start, i)
}

// Index returns the position of date relative to Start. It may be out of range.
func (s *TimeSeries) Index(date time.Time) int {
	return analytics.DaysBetween(s.start, date)
}

// Get returns the value at date, or the default when date is outside the stored range.
func (s *TimeSeries) Get(date time.Time) float64 {
	return s.At(s.Index(date))
}

// Lookup returns the value at date and whether date is inside the stored range.
func (s *TimeSeries) Lookup(date time.Time) (float64, bool) {
	i := s.Index(date)
	if i < 0 || i >= len(s.values) {
		return s.defaultValue, false
	}
	return s.values[i], true
}

// Last returns the final stored value and its date.
func (s *TimeSeries) Last() (time.Time, float64, bool) {
	if len(s.values) == 0 {
		return time.Time{}, s.defaultValue, false
	}
	return s.End(), s.values[len(s.values)-1], true
}

// Dates lists every stored date in order
func (s *TimeSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.values))
	for i := range s.values {
		dates[i] = analytics.AddDays(s.start, i)
	}
	return dates
}

// Points converts the series to dated points
func (s *TimeSeries) Points() analytics.TimeSeriesData {
	points := make(analytics.TimeSeriesData, len(s.values))
	for i, v := range s.values {
		points[i] = analytics.TimeSeriesPoint{
			Time:  analytics.AddDays(s.start, i),
			Value: v,
		}
	}
	return points
}

// isDefault treats NaN as equal to a NaN default.
func (s *TimeSeries) isDefault(v float64) bool {
	if math.IsNaN(s.defaultValue) {
		return math.IsNaN(v)
	}
	return v == s.defaultValue
}

// Domain returns the range from the first non-default value to the last stored
// date. ok is false when every stored value equals the default.
func (s *TimeSeries) Domain() (first, last time.Time, ok bool) {
	for i, v := range s.values {
		if !s.isDefault(v) {
			return analytics.AddDays(s.start, i), s.End(), true
		}
	}
	return time.Time{}, time.Time{}, false
}

// DomainWindow returns Domain as a window.
func (s *TimeSeries) DomainWindow() (analytics.Window, bool) {
	first, last, ok := s.Domain()
	if !ok {
		return analytics.Window{}, false
	}
	return analytics.Window{From: first, To: last}, true
}

// Slice restricts the series to [from, to]. A zero bound leaves that side open.
func (s *TimeSeries) Slice(from, to time.Time) *TimeSeries {
	if len(s.values) == 0 {
		return s.derive(s.start, nil)
	}
	w, ok := analytics.NewWindow(from, to).Clamp(s.start, s.End())
	if !ok {
		start := s.start
		if !from.IsZero() {
			start = analytics.Day(from)
		}
		return s.derive(start, nil)
	}
	lo := s.Index(w.From)
	hi := s.Index(w.To)
	return s.derive(w.From, append([]float64(nil), s.values[lo:hi+1]...))
}

// Shift moves every value n days later (earlier when n is negative).
func (s *TimeSeries) Shift(days int) *TimeSeries {
	return s.derive(analytics.AddDays(s.start, days), s.Values())
}

// Map applies fn to every value. The result is no longer flagged as integer.
func (s *TimeSeries) Map(fn func(float64) float64) *TimeSeries {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = fn(v)
	}
	r := s.derive(s.start, out)
	r.defaultValue = fn(s.defaultValue)
	r.isInteger = false
	return r
}
