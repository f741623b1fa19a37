package forecast

import (
	"math"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// AutoForecaster fits every sigmoid family and keeps the best fit
type AutoForecaster struct{}

// NewAutoForecaster creates a new Auto forecaster
func NewAutoForecaster() *AutoForecaster {
	return &AutoForecaster{}
}

func init() {
	RegisterForecaster("auto", NewAutoForecaster())
}

// autoCandidates are tried in order; ties keep the earlier kind
var autoCandidates = []growth.CurveKind{
	growth.Logistic,
	growth.Gompertz,
	growth.GeneralizedLogistic,
	growth.Gaussian,
}

// Name returns the algorithm name
func (f *AutoForecaster) Name() string {
	return "auto"
}

// Forecast selects the curve with the lowest in-window RMSE. A series without a
// trend in its fit window is fitted with a straight line instead.
func (f *AutoForecaster) Forecast(series *timeseries.TimeSeries, config Config) (*ForecastStats, error) {
	kinds := autoCandidates
	if !detectTrend(windowValues(series, config.FitWindow)) {
		kinds = []growth.CurveKind{growth.Linear}
	}

	var best *ForecastStats
	var firstErr error
	for _, kind := range kinds {
		config.Kind = kind
		stats, err := Run(series, config)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if best == nil || stats.FitRMSE < best.FitRMSE {
			best = stats
		}
	}
	if best == nil {
		return nil, firstErr
	}

	best.Algorithm = best.Params.Kind.String() + " (auto-selected)"
	return best, nil
}

// windowValues returns the finite values of series inside window
func windowValues(series *timeseries.TimeSeries, window analytics.Window) []float64 {
	if series == nil {
		return nil
	}
	values := series.Slice(window.From, window.To).Values()
	out := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// detectTrend detects if data has a significant trend
func detectTrend(values []float64) bool {
	if len(values) < 5 {
		return false
	}

	// Simple linear regression to detect trend
	n := float64(len(values))
	sumX := 0.0
	sumY := 0.0
	sumXY := 0.0
	sumX2 := 0.0
	sumY2 := 0.0

	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
		sumY2 += v * v
	}

	// Calculate correlation coefficient
	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))

	if denominator == 0 {
		return false
	}

	r := numerator / denominator

	// Consider trend significant if |r| > 0.5
	return math.Abs(r) > 0.5
}
