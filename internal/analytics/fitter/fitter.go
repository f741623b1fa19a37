// Package fitter estimates growth-curve parameters from an observed series with
// a bounded Levenberg-Marquardt optimizer and locates the fitted curve's peak.
//
// Fits are pure functions of their inputs: no solver state survives a call.
package fitter

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// Mode selects which series the curve is fitted against
type Mode int

const (
	// Cumulative fits f(x) to the observed values
	Cumulative Mode = iota
	// Daily fits f(x) - f(x-1) to the observed first differences
	Daily
)

// String returns the wire name of the mode
func (m Mode) String() string {
	switch m {
	case Cumulative:
		return "cumulative"
	case Daily:
		return "daily"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a mode name; the empty string means Cumulative.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cumulative", "total":
		return Cumulative, nil
	case "daily", "delta", "deltas":
		return Daily, nil
	}
	return 0, fmt.Errorf("unknown fit mode: %s", s)
}

// MarshalJSON encodes the mode by name
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode name
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fit mode must be a string: %w", err)
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Request describes one fit
type Request struct {
	Kind growth.CurveKind
	// Window restricts the observations; open sides extend to the series bounds.
	Window analytics.Window
	Mode   Mode
	// InitialGuess seeds the optimizer. Nil derives a guess from the data.
	InitialGuess *growth.Params
	// DayZero anchors x = 0. Zero means the series start.
	DayZero time.Time
}

// Options bound the optimizer
type Options struct {
	Tolerance      float64
	MaxIterations  int
	MaxEvaluations int
}

// DefaultOptions returns the default optimizer budget
func DefaultOptions() Options {
	return Options{
		Tolerance:      1e-9,
		MaxIterations:  10000,
		MaxEvaluations: 50000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.MaxEvaluations <= 0 {
		o.MaxEvaluations = d.MaxEvaluations
	}
	return o
}

// FitResult is the outcome of a successful fit
type FitResult struct {
	Params       growth.Params    `json:"params"`
	DayZero      time.Time        `json:"day_zero"`
	Window       analytics.Window `json:"window"`
	Mode         Mode             `json:"mode"`
	Observations int              `json:"observations"`
	Iterations   int              `json:"iterations"`
	Evaluations  int              `json:"evaluations"`
	Cost         float64          `json:"cost"` // sum of squared residuals
	RMSE         float64          `json:"rmse"`
}

// Curve returns the fitted curve anchored at the fit's day zero
func (r *FitResult) Curve() growth.Curve {
	return growth.NewCurve(r.Params, r.DayZero)
}

// observations is the optimization target
type observations struct {
	x []float64
	y []float64
}

// Fit estimates the parameters of req.Kind that best explain series inside
// req.Window.
func Fit(series *timeseries.TimeSeries, req Request, opts Options) (*FitResult, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("fit: invalid curve kind %d", int(req.Kind))
	}
	if series == nil || series.IsEmpty() {
		return nil, fmt.Errorf("fit: empty series: %w", ErrInvalidWindow)
	}
	opts = opts.withDefaults()

	domain, ok := series.DomainWindow()
	if !ok {
		return nil, fmt.Errorf("fit: series holds only default values: %w", ErrInvalidWindow)
	}
	window, ok := req.Window.Clamp(domain.From, domain.To)
	if !ok {
		return nil, fmt.Errorf("fit: window does not overlap domain [%s, %s]: %w",
			domain.From.Format(analytics.DateLayout), domain.To.Format(analytics.DateLayout), ErrInvalidWindow)
	}

	dayZero := req.DayZero
	if dayZero.IsZero() {
		dayZero = series.Start()
	}
	dayZero = analytics.Day(dayZero)

	obs := collect(series, window, req.Mode, dayZero)
	if len(obs.x) == 0 {
		return nil, fmt.Errorf("fit: no finite %s observations in window: %w", req.Mode, ErrInvalidWindow)
	}

	var guess growth.Params
	if req.InitialGuess != nil {
		guess = *req.InitialGuess
		guess.Kind = req.Kind
	} else {
		guess = initialGuess(req.Kind, obs, req.Mode)
	}
	guess = Validate(guess)

	model := modelFunc(req.Mode)
	sol, err := levenbergMarquardt(guess, obs, model, opts)
	if err != nil {
		return nil, err
	}

	return &FitResult{
		Params:       sol.params,
		DayZero:      dayZero,
		Window:       window,
		Mode:         req.Mode,
		Observations: len(obs.x),
		Iterations:   sol.iterations,
		Evaluations:  sol.evaluations,
		Cost:         sol.cost,
		RMSE:         math.Sqrt(sol.cost / float64(len(obs.x))),
	}, nil
}

// collect gathers the finite observations inside window. In Daily mode a date
// contributes only when its predecessor is also inside the series.
func collect(series *timeseries.TimeSeries, window analytics.Window, mode Mode, dayZero time.Time) observations {
	n := window.Days()
	obs := observations{x: make([]float64, 0, n), y: make([]float64, 0, n)}
	for i := 0; i < n; i++ {
		d := analytics.AddDays(window.From, i)
		v, ok := series.Lookup(d)
		if !ok {
			continue
		}
		if mode == Daily {
			prev, ok := series.Lookup(analytics.AddDays(d, -1))
			if !ok {
				continue
			}
			v -= prev
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		obs.x = append(obs.x, float64(analytics.DaysBetween(dayZero, d)))
		obs.y = append(obs.y, v)
	}
	return obs
}

// modelFunc returns the function compared against the observations
func modelFunc(mode Mode) func(p growth.Params, x float64) float64 {
	if mode == Daily {
		return func(p growth.Params, x float64) float64 {
			return growth.Evaluate(p, x) - growth.Evaluate(p, x-1)
		}
	}
	return growth.Evaluate
}

// initialGuess derives a starting point from the observations; Validate
// brings it inside the admissible region afterwards.
func initialGuess(kind growth.CurveKind, obs observations, mode Mode) growth.Params {
	if kind.Degenerate() {
		return growth.NewParams(kind, 0, 1, 0, 0)
	}

	peak, total := 0.0, 0.0
	for _, v := range obs.y {
		peak = math.Max(peak, v)
		total += v
	}
	capacity := 2 * peak
	if mode == Daily {
		capacity = 2 * total
	}
	mid := (obs.x[0] + obs.x[len(obs.x)-1]) / 2
	return growth.NewParams(kind, capacity, 0.1, mid, 1)
}
