package services

import (
	"context"
	"math"
	"testing"

	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

func assertSeries(t *testing.T, got models.SeriesPayload, start string, want ...float64) {
	t.Helper()
	if got.Start != start {
		t.Errorf("Expected start %s, got %s", start, got.Start)
	}
	if len(got.Values) != len(want) {
		t.Fatalf("Expected %d values, got %v", len(want), got.Values)
	}
	for i, w := range want {
		if float64(got.Values[i]) != w {
			t.Errorf("index %d: expected %v, got %v", i, w, got.Values[i])
		}
	}
}

func TestSeriesService_Derive(t *testing.T) {
	svc := NewSeriesService(logging.NewNop())
	cumulative := payload(testStart, 1, 3, 6, 10)

	tests := []struct {
		name  string
		ops   []models.SeriesOperation
		start string
		want  []float64
	}{
		{"deltas", []models.SeriesOperation{{Op: "deltas"}}, testStart, []float64{1, 2, 3, 4}},
		{"deltas lag 2", []models.SeriesOperation{{Op: "deltas", Lag: 2}}, testStart, []float64{1, 3, 5, 7}},
		{"smoothed daily", []models.SeriesOperation{
			{Op: "deltas"},
			{Op: "moving_average", Window: 2, ExcludePartial: true},
		}, "2020-03-02", []float64{1.5, 2.5, 3.5}},
		{"moving sum", []models.SeriesOperation{{Op: "moving_sum", Window: 2}}, testStart, []float64{1, 4, 9, 16}},
		{"cumulative since", []models.SeriesOperation{{Op: "cumulative_sum", Since: "2020-03-03"}}, "2020-03-03", []float64{6, 16}},
		{"shift", []models.SeriesOperation{{Op: "shift", Days: 2}}, "2020-03-03", []float64{1, 3, 6, 10}},
		{"slice", []models.SeriesOperation{{Op: "slice", From: "2020-03-02", To: "2020-03-03"}}, "2020-03-02", []float64{3, 6}},
		{"growth rate", []models.SeriesOperation{{Op: "slice", From: "2020-03-02"}, {Op: "growth_rate"}}, "2020-03-02", []float64{math.Inf(1), 2, 10.0 / 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Derive(context.Background(), &models.DeriveRequest{Series: cumulative, Operations: tt.ops})
			if err != nil {
				t.Fatalf("Derive failed: %v", err)
			}
			assertSeries(t, resp.Series, tt.start, tt.want...)
		})
	}
}

func TestSeriesService_DeriveErrors(t *testing.T) {
	svc := NewSeriesService(logging.NewNop())
	series := payload(testStart, 1, 2, 3)

	tests := []struct {
		name string
		req  models.DeriveRequest
	}{
		{"no operations", models.DeriveRequest{Series: series}},
		{"unknown op", models.DeriveRequest{Series: series, Operations: []models.SeriesOperation{{Op: "fft"}}}},
		{"missing window", models.DeriveRequest{Series: series, Operations: []models.SeriesOperation{{Op: "moving_average"}}}},
		{"negative lag", models.DeriveRequest{Series: series, Operations: []models.SeriesOperation{{Op: "deltas", Lag: -1}}}},
		{"bad since", models.DeriveRequest{Series: series, Operations: []models.SeriesOperation{{Op: "cumulative_sum", Since: "x"}}}},
		{"bad series", models.DeriveRequest{Series: payload("", 1), Operations: []models.SeriesOperation{{Op: "deltas"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Derive(context.Background(), &tt.req)
			assertCode(t, err, CodeInvalidRequest)
		})
	}
}

func TestSeriesService_DeriveReportsFailingStep(t *testing.T) {
	svc := NewSeriesService(logging.NewNop())

	_, err := svc.Derive(context.Background(), &models.DeriveRequest{
		Series:     payload(testStart, 1, 2, 3),
		Operations: []models.SeriesOperation{{Op: "deltas"}, {Op: "median"}},
	})
	assertCode(t, err, CodeInvalidRequest)
	if svcErr := err.(*ServiceError); svcErr.Details["operation"] != 1 {
		t.Errorf("Expected failing operation 1, got %v", svcErr.Details)
	}
}

func TestSeriesService_Combine(t *testing.T) {
	svc := NewSeriesService(logging.NewNop())

	a := payload(testStart, 1, 2)
	b := payload("2020-03-02", 10)

	tests := []struct {
		reducer string
		want    []float64
	}{
		{"sum", []float64{1, 12}},
		{"", []float64{1, 12}},
		{"max", []float64{1, 10}},
		{"min", []float64{0, 2}},
		{"first_nonzero", []float64{1, 2}},
		{"sub", []float64{1, -8}},
	}

	for _, tt := range tests {
		t.Run("reducer "+tt.reducer, func(t *testing.T) {
			resp, err := svc.Combine(context.Background(), &models.CombineRequest{
				Series:  []models.SeriesPayload{a, b},
				Reducer: tt.reducer,
			})
			if err != nil {
				t.Fatalf("Combine failed: %v", err)
			}
			assertSeries(t, resp.Series, testStart, tt.want...)
		})
	}
}

func TestSeriesService_CombineErrors(t *testing.T) {
	svc := NewSeriesService(logging.NewNop())
	a := payload(testStart, 1, 2)

	_, err := svc.Combine(context.Background(), &models.CombineRequest{Reducer: "sum"})
	assertCode(t, err, CodeInvalidRequest)

	_, err = svc.Combine(context.Background(), &models.CombineRequest{Series: []models.SeriesPayload{a}, Reducer: "div"})
	assertCode(t, err, CodeInvalidRequest)

	_, err = svc.Combine(context.Background(), &models.CombineRequest{Series: []models.SeriesPayload{a, a}, Reducer: "avg"})
	assertCode(t, err, CodeInvalidRequest)

	// two short series three centuries apart
	far := []models.SeriesPayload{payload("1900-01-01", 1), payload("2199-12-31", 2)}
	_, err = svc.Combine(context.Background(), &models.CombineRequest{Series: far, Reducer: "sum"})
	assertCode(t, err, CodeInvalidRequest)
}
