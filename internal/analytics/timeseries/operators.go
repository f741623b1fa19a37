package timeseries

import (
	"math"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
)

// windowConfig holds the flags shared by the sliding-window operators
type windowConfig struct {
	nonZeroOnly    bool
	excludePartial bool
}

// WindowOption adjusts MovingAverage and MovingSum
type WindowOption func(*windowConfig)

// NonZeroOnly excludes zero values from a moving average. A window with only
// zeros averages to NaN.
func NonZeroOnly() WindowOption {
	return func(c *windowConfig) {
		c.nonZeroOnly = true
	}
}

// ExcludePartial drops the first bucket-1 outputs, whose windows are incomplete,
// and starts the result bucket-1 days later.
func ExcludePartial() WindowOption {
	return func(c *windowConfig) {
		c.excludePartial = true
	}
}

// Deltas returns result[i] = Get(date_i) - Get(date_i - offset). The first offset
// entries compare against the default value.
func (s *TimeSeries) Deltas(offset int) *TimeSeries {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v - s.At(i-offset)
	}
	return s.derive(s.start, out)
}

// MovingAverage averages a sliding window of bucket days ending at each date.
func (s *TimeSeries) MovingAverage(bucket int, opts ...WindowOption) *TimeSeries {
	cfg := applyWindowOptions(opts)
	r := s.slide(bucket, cfg.excludePartial, func(window []float64) float64 {
		sum := 0.0
		count := 0
		for _, v := range window {
			if cfg.nonZeroOnly && v == 0 {
				continue
			}
			sum += v
			count++
		}
		return sum / float64(count)
	})
	r.isInteger = false
	return r
}

// MovingSum sums a sliding window of bucket days ending at each date.
func (s *TimeSeries) MovingSum(bucket int, opts ...WindowOption) *TimeSeries {
	cfg := applyWindowOptions(opts)
	return s.slide(bucket, cfg.excludePartial, func(window []float64) float64 {
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		return sum
	})
}

func applyWindowOptions(opts []WindowOption) windowConfig {
	var cfg windowConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// slide evaluates fn over values[max(0, i-bucket+1) : i+1] for each i.
func (s *TimeSeries) slide(bucket int, excludePartial bool, fn func([]float64) float64) *TimeSeries {
	if bucket < 1 {
		bucket = 1
	}

	first := 0
	if excludePartial {
		first = bucket - 1
	}
	start := analytics.AddDays(s.start, first)
	if first >= len(s.values) {
		return s.derive(start, nil)
	}

	out := make([]float64, 0, len(s.values)-first)
	for i := first; i < len(s.values); i++ {
		lo := i - bucket + 1
		if lo < 0 {
			lo = 0
		}
		out = append(out, fn(s.values[lo:i+1]))
	}
	return s.derive(start, out)
}

// CumulativeSum returns the running total of the series.
func (s *TimeSeries) CumulativeSum() *TimeSeries {
	out := make([]float64, len(s.values))
	total := 0.0
	for i, v := range s.values {
		total += v
		out[i] = total
	}
	return s.derive(s.start, out)
}

// CumulativeSumSince returns the running total over [date, End].
func (s *TimeSeries) CumulativeSumSince(date time.Time) *TimeSeries {
	return s.Slice(date, time.Time{}).CumulativeSum()
}

// GrowthRate returns Get(date_i) / Get(date_i - 1 - laggedBy). Zero
// denominators yield ±Inf or NaN.
func (s *TimeSeries) GrowthRate(laggedBy int) *TimeSeries {
	if laggedBy < 0 {
		laggedBy = 0
	}
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v / s.At(i-1-laggedBy)
	}
	r := s.derive(s.start, out)
	r.defaultValue = s.defaultValue / s.defaultValue
	r.isInteger = false
	return r
}

// DoublingTime returns 1 / log2(growth rate) for each day. Rates at or below 1
// give negative, infinite or NaN results, which are preserved.
func (s *TimeSeries) DoublingTime() *TimeSeries {
	return s.GrowthRate(0).Map(func(r float64) float64 {
		return 1 / math.Log2(r)
	})
}

// CoerceMonotonic replaces each value with max(value, previous output) so that
// cumulative data never decreases. NaN values repeat the previous output.
func (s *TimeSeries) CoerceMonotonic() *TimeSeries {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		if i == 0 {
			out[i] = v
			continue
		}
		prev := out[i-1]
		switch {
		case math.IsNaN(v):
			out[i] = prev
		case math.IsNaN(prev) || v > prev:
			out[i] = v
		default:
			out[i] = prev
		}
	}
	return s.derive(s.start, out)
}
