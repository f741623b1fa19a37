package models

import (
	"github.com/soltixdb/curvecast/internal/analytics/fitter"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
)

// FitRequest represents a curve fit request
type FitRequest struct {
	Series        SeriesPayload  `json:"series"`
	Curve         string         `json:"curve,omitempty"` // curve kind; "auto" is accepted by forecasts only
	Mode          string         `json:"mode,omitempty"`  // cumulative (default) or daily
	Window        *WindowPayload `json:"window,omitempty"`
	DayZero       string         `json:"day_zero,omitempty"` // defaults to the series start
	InitialGuess  *growth.Params `json:"initial_guess,omitempty"`
	MaxIterations int            `json:"max_iterations,omitempty"`
	Tolerance     float64        `json:"tolerance,omitempty"`
}

// ForecastRequest represents a fit plus peak, checkpoints and accuracy
type ForecastRequest struct {
	FitRequest
	PeakBracket       *fitter.Bracket `json:"peak_bracket,omitempty"`
	CheckpointDates   []string        `json:"checkpoint_dates,omitempty"`
	CheckpointOffsets []int           `json:"checkpoint_offsets,omitempty"`
	EvaluationWindow  *WindowPayload  `json:"evaluation_window,omitempty"`
	NoCache           bool            `json:"no_cache,omitempty"`
}

// EvaluateRequest asks for curve values at x coordinates, dates or a date range
type EvaluateRequest struct {
	Params  growth.Params `json:"params"`
	DayZero string        `json:"day_zero"`
	X       []float64     `json:"x,omitempty"`
	Dates   []string      `json:"dates,omitempty"`
	From    string        `json:"from,omitempty"`
	To      string        `json:"to,omitempty"`
}

// PeakRequest asks for the peak of given parameters
type PeakRequest struct {
	Params  growth.Params   `json:"params"`
	DayZero string          `json:"day_zero"`
	Bracket *fitter.Bracket `json:"bracket,omitempty"`
}

// AccuracyRequest scores a curve or a candidate series against observations.
// Exactly one of Params and Predicted must be set.
type AccuracyRequest struct {
	Observed  SeriesPayload  `json:"observed"`
	Params    *growth.Params `json:"params,omitempty"`
	DayZero   string         `json:"day_zero,omitempty"`
	Predicted *SeriesPayload `json:"predicted,omitempty"`
	Window    *WindowPayload `json:"window,omitempty"`
	Daily     bool           `json:"daily,omitempty"` // compare first differences
}

// ExtremaRequest asks for the extrema summary of a series
type ExtremaRequest struct {
	Series       SeriesPayload `json:"series"`
	SampleWindow int           `json:"sample_window,omitempty"`
}

// SeriesOperation is one step of a derive pipeline
type SeriesOperation struct {
	Op             string `json:"op"`
	Lag            int    `json:"lag,omitempty"`    // deltas, growth_rate
	Window         int    `json:"window,omitempty"` // moving_average, moving_sum
	NonZeroOnly    bool   `json:"non_zero_only,omitempty"`
	ExcludePartial bool   `json:"exclude_partial,omitempty"`
	Since          string `json:"since,omitempty"` // cumulative_sum
	Days           int    `json:"days,omitempty"`  // shift
	From           string `json:"from,omitempty"`  // slice
	To             string `json:"to,omitempty"`    // slice
}

// DeriveRequest applies operations to a series in order
type DeriveRequest struct {
	Series     SeriesPayload     `json:"series"`
	Operations []SeriesOperation `json:"operations"`
}

// CombineRequest merges several series with one reducer
type CombineRequest struct {
	Series  []SeriesPayload `json:"series"`
	Reducer string          `json:"reducer"`
}
