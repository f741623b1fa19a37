// Package forecast assembles a fit, its peak, checkpoint projections and
// accuracy scores into ForecastStats.
package forecast

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/accuracy"
	"github.com/soltixdb/curvecast/internal/analytics/fitter"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// Checkpoint is the projection at one date
type Checkpoint struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
	Daily float64   `json:"daily"`
}

// Accuracy holds the four scores; nil means the evaluation window had no data.
type Accuracy struct {
	RMSETotal *float64 `json:"rmse_total"`
	MASETotal *float64 `json:"mase_total"`
	RMSEDaily *float64 `json:"rmse_daily"`
	MASEDaily *float64 `json:"mase_daily"`
}

// ForecastStats is the full outcome of one forecast
type ForecastStats struct {
	Algorithm        string           `json:"algorithm"`
	Params           growth.Params    `json:"params"`
	DayZero          time.Time        `json:"day_zero"`
	FitWindow        analytics.Window `json:"fit_window"`
	Mode             fitter.Mode      `json:"mode"`
	FitRMSE          float64          `json:"fit_rmse"`
	Observations     int              `json:"observations"`
	Peak             *fitter.Peak     `json:"peak,omitempty"`
	PeakError        string           `json:"peak_error,omitempty"`
	Checkpoints      []Checkpoint     `json:"checkpoints"`
	EvaluationWindow analytics.Window `json:"evaluation_window"`
	Accuracy         Accuracy         `json:"accuracy"`
	Iterations       int              `json:"iterations"`
	Evaluations      int              `json:"evaluations"`
}

// Curve returns the fitted curve
func (s *ForecastStats) Curve() growth.Curve {
	return growth.NewCurve(s.Params, s.DayZero)
}

// Config holds configuration for one forecast
type Config struct {
	Kind         growth.CurveKind
	FitWindow    analytics.Window
	Mode         fitter.Mode
	InitialGuess *growth.Params
	DayZero      time.Time
	Options      fitter.Options
	PeakBracket  fitter.Bracket

	// CheckpointDates are reported as given
	CheckpointDates []time.Time
	// CheckpointOffsets are days after the end of the fit window
	CheckpointOffsets []int

	// EvaluationWindow defaults to the day after the fit window through the
	// end of the series.
	EvaluationWindow analytics.Window
}

// DefaultConfig returns default forecast configuration
func DefaultConfig() Config {
	return Config{
		Kind:              growth.Logistic,
		Mode:              fitter.Cumulative,
		Options:           fitter.DefaultOptions(),
		PeakBracket:       fitter.DefaultBracket,
		CheckpointOffsets: []int{7, 14, 28},
	}
}

// Forecaster interface for all curve forecasters
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast fits the series and projects the fitted curve
	Forecast(series *timeseries.TimeSeries, config Config) (*ForecastStats, error)
}

// Registry holds available forecasters
var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name. Curve aliases such as "erf" resolve
// to their canonical forecaster.
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	if kind, err := growth.ParseCurveKind(name); err == nil {
		if forecaster, ok := forecasterRegistry[kind.String()]; ok {
			return forecaster, nil
		}
	}
	return nil, fmt.Errorf("unknown forecaster: %s", name)
}

// ListForecasters returns the sorted list of available forecaster names
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run fits config.Kind to series and derives the peak, checkpoints and accuracy.
// Only fit failures are returned as errors; a missing peak is recorded in
// PeakError.
func Run(series *timeseries.TimeSeries, config Config) (*ForecastStats, error) {
	fit, err := fitter.Fit(series, fitter.Request{
		Kind:         config.Kind,
		Window:       config.FitWindow,
		Mode:         config.Mode,
		InitialGuess: config.InitialGuess,
		DayZero:      config.DayZero,
	}, config.Options)
	if err != nil {
		return nil, err
	}

	stats := &ForecastStats{
		Algorithm:    config.Kind.String(),
		Params:       fit.Params,
		DayZero:      fit.DayZero,
		FitWindow:    fit.Window,
		Mode:         fit.Mode,
		FitRMSE:      fit.RMSE,
		Observations: fit.Observations,
		Iterations:   fit.Iterations,
		Evaluations:  fit.Evaluations,
	}
	curve := fit.Curve()

	peak, err := fitter.FindPeak(fit.Params, fit.DayZero, config.PeakBracket)
	switch {
	case err == nil:
		stats.Peak = peak
	case errors.Is(err, fitter.ErrPeakNotBracketed):
		stats.PeakError = err.Error()
	default:
		return nil, err
	}

	stats.Checkpoints = checkpoints(curve, fit.Window.To, config)

	evalWindow := config.EvaluationWindow
	if evalWindow.From.IsZero() && evalWindow.To.IsZero() {
		evalWindow = analytics.NewWindow(analytics.AddDays(fit.Window.To, 1), series.End())
	}
	stats.EvaluationWindow = evalWindow
	stats.Accuracy = score(curve, series, evalWindow)

	return stats, nil
}

// checkpoints projects the curve at the explicit dates and at the configured
// offsets after fitEnd, ordered by date without duplicates.
func checkpoints(curve growth.Curve, fitEnd time.Time, config Config) []Checkpoint {
	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0, len(config.CheckpointDates)+len(config.CheckpointOffsets))
	add := func(d time.Time) {
		d = analytics.Day(d)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for _, d := range config.CheckpointDates {
		add(d)
	}
	for _, off := range config.CheckpointOffsets {
		add(analytics.AddDays(fitEnd, off))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]Checkpoint, len(dates))
	for i, d := range dates {
		out[i] = Checkpoint{Date: d, Total: curve.Total(d), Daily: curve.Daily(d)}
	}
	return out
}

// score rates the curve against the cumulative and daily observations.
func score(curve growth.Curve, series *timeseries.TimeSeries, window analytics.Window) Accuracy {
	total := accuracy.Score(curve, series, window)

	// the first difference has no predecessor
	daily := series.Deltas(1).Slice(analytics.AddDays(series.Start(), 1), time.Time{})
	perDay := accuracy.Score(curve.DailyLookup(), daily, window)

	return Accuracy{
		RMSETotal: total.RMSE,
		MASETotal: total.MASE,
		RMSEDaily: perDay.RMSE,
		MASEDaily: perDay.MASE,
	}
}
