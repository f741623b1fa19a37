package accuracy

import (
	"math"
	"testing"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

var day0 = analytics.Date(2020, time.March, 1)

func TestRMSE(t *testing.T) {
	observed := timeseries.New(day0, []float64{1, 2, 3, 4})
	predicted := timeseries.New(day0, []float64{1, 2, 3, 6})

	got, ok := RMSE(predicted, observed, analytics.Window{})
	if !ok {
		t.Fatal("Expected a score")
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected RMSE 1, got %v", got)
	}
}

func TestMASE(t *testing.T) {
	observed := timeseries.New(day0, []float64{1, 2, 3, 4})
	predicted := timeseries.New(day0, []float64{1, 2, 3, 6})

	// mean abs error 0.5, naive error 1
	got, ok := MASE(predicted, observed, analytics.Window{})
	if !ok {
		t.Fatal("Expected a score")
	}
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected MASE 0.5, got %v", got)
	}
}

func TestMetrics_EmptyWindow(t *testing.T) {
	observed := timeseries.New(day0, []float64{1, 2, 3})
	predicted := timeseries.New(day0, []float64{1, 2, 3})

	tests := []struct {
		name     string
		observed *timeseries.TimeSeries
		window   analytics.Window
	}{
		{"window after data", observed, analytics.NewWindow(day0.AddDate(0, 0, 10), day0.AddDate(0, 0, 20))},
		{"empty observed", timeseries.Empty(day0), analytics.Window{}},
		{"nil observed", nil, analytics.Window{}},
		{"only NaN observations", timeseries.New(day0, []float64{math.NaN()}), analytics.Window{}},
		{"only default values", timeseries.New(day0, []float64{0, 0, 0, 0}), analytics.Window{}},
		{"window before first reported value", timeseries.New(day0, []float64{0, 0, 0, 5, 9, 14}),
			analytics.NewWindow(day0, day0.AddDate(0, 0, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := RMSE(predicted, tt.observed, tt.window); ok {
				t.Error("Expected RMSE to be undefined")
			}
			if _, ok := MASE(predicted, tt.observed, tt.window); ok {
				t.Error("Expected MASE to be undefined")
			}
			s := Score(predicted, tt.observed, tt.window)
			if s.RMSE != nil || s.MASE != nil {
				t.Errorf("Expected empty scores, got %+v", s)
			}
		})
	}
}

func TestMetrics_PredictionOutsideRange(t *testing.T) {
	observed := timeseries.New(day0, []float64{1, 2, 3})
	predicted := timeseries.New(day0.AddDate(0, 0, 5), []float64{1})

	if _, ok := RMSE(predicted, observed, analytics.Window{}); ok {
		t.Error("Expected no paired points")
	}
}

func TestMASE_SinglePoint(t *testing.T) {
	observed := timeseries.New(day0, []float64{5})
	if _, ok := MASE(observed, observed, analytics.Window{}); ok {
		t.Error("MASE needs at least two observations")
	}
	if v, ok := RMSE(observed, observed, analytics.Window{}); !ok || v != 0 {
		t.Errorf("Expected RMSE (0, true), got (%v, %v)", v, ok)
	}
}

func TestMetrics_CurveSource(t *testing.T) {
	curve := growth.NewCurve(growth.NewParams(growth.Linear, 0, 1, 0, 0), day0)
	observed := timeseries.New(day0, []float64{0, 1, 2, 3, 4, 5})
	window := analytics.NewWindow(day0.AddDate(0, 0, 2), day0.AddDate(0, 0, 4))

	s := Score(curve, observed, window)
	if s.RMSE == nil || *s.RMSE != 0 {
		t.Errorf("Expected zero RMSE for an exact curve, got %v", s.RMSE)
	}
	if s.MASE == nil || *s.MASE != 0 {
		t.Errorf("Expected zero MASE for an exact curve, got %v", s.MASE)
	}

	daily := observed.Deltas(1)
	if v, ok := RMSE(curve.DailyLookup(), daily, window); !ok || v != 0 {
		t.Errorf("Expected daily RMSE (0, true), got (%v, %v)", v, ok)
	}
}

func TestMASE_FlatObservations(t *testing.T) {
	observed := timeseries.New(day0, []float64{2, 2, 2})
	predicted := timeseries.New(day0, []float64{3, 3, 3})

	got, ok := MASE(predicted, observed, analytics.Window{})
	if !ok || !math.IsInf(got, 1) {
		t.Errorf("Expected (+Inf, true), got (%v, %v)", got, ok)
	}
}

func TestCalculateRMSE(t *testing.T) {
	tests := []struct {
		name      string
		actual    []float64
		predicted []float64
		expected  float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"constant error", []float64{1, 2, 3}, []float64{2, 3, 4}, 1},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateRMSE(tt.actual, tt.predicted); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCalculateMAE(t *testing.T) {
	if got := CalculateMAE([]float64{1, 2, 3}, []float64{2, 2, 1}); math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected MAE 1, got %v", got)
	}
	if got := CalculateMAE(nil, nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
}

func TestMetrics_ScoreOnlyTheDomain(t *testing.T) {
	// leading zeros are the default, not observations
	observed := timeseries.New(day0, []float64{0, 0, 5, 9})
	predicted := timeseries.New(day0, []float64{1, 1, 5, 9})

	got, ok := RMSE(predicted, observed, analytics.Window{})
	if !ok {
		t.Fatal("Expected a score")
	}
	if got != 0 {
		t.Errorf("Expected leading defaults to be skipped, got RMSE %v", got)
	}

	window := analytics.NewWindow(day0, day0.AddDate(0, 0, 2))
	if got, ok := RMSE(predicted, observed, window); !ok || got != 0 {
		t.Errorf("Expected the window clamped to the domain, got (%v, %v)", got, ok)
	}
}
