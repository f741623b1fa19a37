package services

import (
	"context"
	"math"
	"testing"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

func TestAccuracyService_PredictedSeries(t *testing.T) {
	svc := NewAccuracyService(logging.NewNop())
	predicted := payload(testStart, 1, 2, 3, 6)

	resp, err := svc.Score(context.Background(), &models.AccuracyRequest{
		Observed:  payload(testStart, 1, 2, 3, 4),
		Predicted: &predicted,
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if resp.RMSE == nil || math.Abs(float64(*resp.RMSE)-1) > 1e-12 {
		t.Errorf("Expected RMSE 1, got %v", resp.RMSE)
	}
	if resp.MASE == nil || math.Abs(float64(*resp.MASE)-0.5) > 1e-12 {
		t.Errorf("Expected MASE 0.5, got %v", resp.MASE)
	}
	if resp.Daily {
		t.Error("Expected cumulative scoring")
	}
}

func TestAccuracyService_DailyPredictedSeries(t *testing.T) {
	svc := NewAccuracyService(logging.NewNop())
	predicted := payload(testStart, 1, 2, 3, 6)

	// daily observed [1 1 1], daily predicted [1 1 3]
	resp, err := svc.Score(context.Background(), &models.AccuracyRequest{
		Observed:  payload(testStart, 1, 2, 3, 4),
		Predicted: &predicted,
		Daily:     true,
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if resp.RMSE == nil || math.Abs(float64(*resp.RMSE)-math.Sqrt(4.0/3)) > 1e-12 {
		t.Errorf("Expected RMSE sqrt(4/3), got %v", resp.RMSE)
	}
}

func TestAccuracyService_Curve(t *testing.T) {
	svc := NewAccuracyService(logging.NewNop())
	// f(x) = x + 1
	params := growth.NewParams(growth.Linear, 0, 1, -1, 0)

	for _, daily := range []bool{false, true} {
		resp, err := svc.Score(context.Background(), &models.AccuracyRequest{
			Observed: payload(testStart, 1, 2, 3, 4, 5),
			Params:   &params,
			DayZero:  testStart,
			Daily:    daily,
		})
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if resp.RMSE == nil || math.Abs(float64(*resp.RMSE)) > 1e-12 {
			t.Errorf("daily=%v: expected zero RMSE, got %v", daily, resp.RMSE)
		}
	}
}

func TestAccuracyService_Window(t *testing.T) {
	svc := NewAccuracyService(logging.NewNop())
	predicted := payload(testStart, 1, 2, 3, 6)

	resp, err := svc.Score(context.Background(), &models.AccuracyRequest{
		Observed:  payload(testStart, 1, 2, 3, 4),
		Predicted: &predicted,
		Window:    &models.WindowPayload{From: "2020-04-01"},
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if resp.RMSE != nil || resp.MASE != nil {
		t.Errorf("Expected no scores outside the data, got %+v", resp)
	}
	if resp.Window.From != "2020-04-01" {
		t.Errorf("Expected the window echoed back, got %+v", resp.Window)
	}
}

func TestAccuracyService_Errors(t *testing.T) {
	svc := NewAccuracyService(logging.NewNop())
	observed := payload(testStart, 1, 2, 3)
	params := testLogistic()

	tests := []struct {
		name string
		req  models.AccuracyRequest
		code string
	}{
		{"neither source", models.AccuracyRequest{Observed: observed}, CodeInvalidRequest},
		{"both sources", models.AccuracyRequest{Observed: observed, Params: &params, Predicted: &observed}, CodeInvalidRequest},
		{"curve without day zero", models.AccuracyRequest{Observed: observed, Params: &params}, CodeInvalidRequest},
		{"bad observed", models.AccuracyRequest{Observed: payload(""), Predicted: &observed}, CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Score(context.Background(), &tt.req)
			assertCode(t, err, tt.code)
		})
	}
}
