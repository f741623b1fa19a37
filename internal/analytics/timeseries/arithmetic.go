package timeseries

import (
	"math"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
)

// Reducer folds two aligned values into one
type Reducer func(acc, v float64) float64

// Add returns s + other over the union of both date ranges.
func (s *TimeSeries) Add(other *TimeSeries) *TimeSeries {
	return reduce(func(a, b float64) float64 { return a + b }, true, s, other)
}

// Sub returns s - other over the union of both date ranges.
func (s *TimeSeries) Sub(other *TimeSeries) *TimeSeries {
	return reduce(func(a, b float64) float64 { return a - b }, true, s, other)
}

// Mul returns s * other over the union of both date ranges.
func (s *TimeSeries) Mul(other *TimeSeries) *TimeSeries {
	return reduce(func(a, b float64) float64 { return a * b }, true, s, other)
}

// Div returns s / other over the union of both date ranges. Zero divisors are not trapped.
func (s *TimeSeries) Div(other *TimeSeries) *TimeSeries {
	return reduce(func(a, b float64) float64 { return a / b }, false, s, other)
}

// Min returns the pointwise minimum of s and other.
func (s *TimeSeries) Min(other *TimeSeries) *TimeSeries {
	return reduce(math.Min, true, s, other)
}

// Max returns the pointwise maximum of s and other.
func (s *TimeSeries) Max(other *TimeSeries) *TimeSeries {
	return reduce(math.Max, true, s, other)
}

// Sum adds any number of series pointwise over their union range.
func Sum(series ...*TimeSeries) *TimeSeries {
	return reduce(func(a, b float64) float64 { return a + b }, true, series...)
}

// MaxOf takes the pointwise maximum across series.
func MaxOf(series ...*TimeSeries) *TimeSeries {
	return reduce(math.Max, true, series...)
}

// MinOf takes the pointwise minimum across series.
func MinOf(series ...*TimeSeries) *TimeSeries {
	return reduce(math.Min, true, series...)
}

// FirstNonZero picks, for each date, the first value in argument order that is
// neither zero nor NaN. Used when several feeds report the same quantity.
func FirstNonZero(series ...*TimeSeries) *TimeSeries {
	return reduce(func(acc, v float64) float64 {
		if acc != 0 && !math.IsNaN(acc) {
			return acc
		}
		return v
	}, true, series...)
}

// Reduce folds series pointwise with fn over the union of their date ranges.
// Values missing on a side resolve to that series' default.
func Reduce(fn Reducer, series ...*TimeSeries) *TimeSeries {
	return reduce(fn, false, series...)
}

func reduce(fn Reducer, keepInteger bool, series ...*TimeSeries) *TimeSeries {
	inputs := make([]*TimeSeries, 0, len(series))
	for _, s := range series {
		if s != nil {
			inputs = append(inputs, s)
		}
	}
	if len(inputs) == 0 {
		return Empty(time.Time{})
	}

	integer := keepInteger
	def := inputs[0].defaultValue
	for _, s := range inputs {
		integer = integer && s.isInteger
	}
	for _, s := range inputs[1:] {
		def = fn(def, s.defaultValue)
	}

	start, end, ok := unionRange(inputs)
	if !ok {
		return &TimeSeries{start: inputs[0].start, defaultValue: def, isInteger: integer}
	}

	out := make([]float64, analytics.DaysBetween(start, end)+1)
	for i := range out {
		d := analytics.AddDays(start, i)
		acc := inputs[0].Get(d)
		for _, s := range inputs[1:] {
			acc = fn(acc, s.Get(d))
		}
		out[i] = acc
	}

	return &TimeSeries{
		start:        start,
		values:       out,
		defaultValue: def,
		isInteger:    integer,
	}
}

// UnionSpan returns the window a reducer or binary operator over series would
// cover. ok is false when every series is empty.
func UnionSpan(series ...*TimeSeries) (analytics.Window, bool) {
	inputs := make([]*TimeSeries, 0, len(series))
	for _, s := range series {
		if s != nil {
			inputs = append(inputs, s)
		}
	}
	start, end, ok := unionRange(inputs)
	if !ok {
		return analytics.Window{}, false
	}
	return analytics.Window{From: start, To: end}, true
}

// unionRange spans the stored ranges of every non-empty series.
func unionRange(series []*TimeSeries) (start, end time.Time, ok bool) {
	for _, s := range series {
		if s.IsEmpty() {
			continue
		}
		if !ok || s.start.Before(start) {
			start = s.start
		}
		if !ok || s.End().After(end) {
			end = s.End()
		}
		ok = true
	}
	return start, end, ok
}
