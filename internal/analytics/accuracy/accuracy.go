// Package accuracy scores a predicted source against an observed series over an
// evaluation window.
package accuracy

import (
	"math"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// Source is anything that can predict a value for a date. Both
// *timeseries.TimeSeries and growth.Curve satisfy it.
type Source interface {
	Lookup(date time.Time) (float64, bool)
}

// pair is one scored observation
type pair struct {
	observed  float64
	predicted float64
}

// observedPoints returns the finite observed values inside window, in date
// order. ok is false when the window misses the observed domain, which starts
// at the first non-default value.
func observedPoints(observed *timeseries.TimeSeries, window analytics.Window) ([]time.Time, []float64, bool) {
	if observed == nil || observed.IsEmpty() {
		return nil, nil, false
	}
	domain, ok := observed.DomainWindow()
	if !ok {
		return nil, nil, false
	}
	w, ok := window.Clamp(domain.From, domain.To)
	if !ok {
		return nil, nil, false
	}

	n := w.Days()
	dates := make([]time.Time, 0, n)
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		d := analytics.AddDays(w.From, i)
		v, ok := observed.Lookup(d)
		if !ok || !finite(v) {
			continue
		}
		dates = append(dates, d)
		values = append(values, v)
	}
	return dates, values, len(values) > 0
}

func pairs(predicted Source, dates []time.Time, values []float64) []pair {
	out := make([]pair, 0, len(dates))
	for i, d := range dates {
		p, ok := predicted.Lookup(d)
		if !ok || !finite(p) {
			continue
		}
		out = append(out, pair{observed: values[i], predicted: p})
	}
	return out
}

// RMSE is sqrt(mean((observed - predicted)^2)) over the window. ok is false when
// no date in the window has both an observation and a prediction.
func RMSE(predicted Source, observed *timeseries.TimeSeries, window analytics.Window) (float64, bool) {
	dates, values, ok := observedPoints(observed, window)
	if !ok {
		return 0, false
	}
	ps := pairs(predicted, dates, values)
	if len(ps) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, p := range ps {
		diff := p.observed - p.predicted
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(ps))), true
}

// MASE is mean(|observed - predicted|) divided by the mean one-step naive error
// mean(|observed[i] - observed[i-1]|) over the window's observations 2..n.
// Values below 1 beat the naive forecast. A flat observed window gives +Inf
// (or NaN for a perfect prediction).
func MASE(predicted Source, observed *timeseries.TimeSeries, window analytics.Window) (float64, bool) {
	dates, values, ok := observedPoints(observed, window)
	if !ok || len(values) < 2 {
		return 0, false
	}
	ps := pairs(predicted, dates, values)
	if len(ps) == 0 {
		return 0, false
	}

	errSum := 0.0
	for _, p := range ps {
		errSum += math.Abs(p.observed - p.predicted)
	}

	naive := 0.0
	for i := 1; i < len(values); i++ {
		naive += math.Abs(values[i] - values[i-1])
	}

	return (errSum / float64(len(ps))) / (naive / float64(len(values)-1)), true
}

// Scores holds both metrics; nil means not enough data.
type Scores struct {
	RMSE *float64 `json:"rmse"`
	MASE *float64 `json:"mase"`
}

// Score computes RMSE and MASE together
func Score(predicted Source, observed *timeseries.TimeSeries, window analytics.Window) Scores {
	var s Scores
	if v, ok := RMSE(predicted, observed, window); ok {
		s.RMSE = &v
	}
	if v, ok := MASE(predicted, observed, window); ok {
		s.MASE = &v
	}
	return s
}

// CalculateMAE calculates Mean Absolute Error of two aligned slices
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error of two aligned slices
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
