package services

import (
	"context"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/accuracy"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

// AccuracyService scores predictions against observations
type AccuracyService struct {
	logger *logging.Logger
}

// NewAccuracyService creates a new AccuracyService
func NewAccuracyService(logger *logging.Logger) *AccuracyService {
	return &AccuracyService{logger: logger}
}

// Score computes RMSE and MASE of a curve or a predicted series over a window.
// In daily mode both sides are compared on first differences.
func (s *AccuracyService) Score(_ context.Context, req *models.AccuracyRequest) (*models.AccuracyResponse, error) {
	if (req.Params == nil) == (req.Predicted == nil) {
		return nil, invalidRequest("exactly one of params and predicted is required")
	}

	observed, err := req.Observed.ToTimeSeries()
	if err != nil {
		return nil, invalidRequest("observed: %v", err)
	}
	window, err := req.Window.ToWindow()
	if err != nil {
		return nil, invalidRequest("%v", err)
	}

	var source accuracy.Source
	if req.Params != nil {
		curve, svcErr := anchoredCurve(*req.Params, req.DayZero)
		if svcErr != nil {
			return nil, svcErr
		}
		source = curve
		if req.Daily {
			source = curve.DailyLookup()
		}
	} else {
		predicted, err := req.Predicted.ToTimeSeries()
		if err != nil {
			return nil, invalidRequest("predicted: %v", err)
		}
		if req.Daily {
			predicted = dailyOf(predicted)
		}
		source = predicted
	}

	if req.Daily {
		observed = dailyOf(observed)
	}

	start := time.Now()
	scores := accuracy.Score(source, observed, window)

	s.logger.Debug("Accuracy scored",
		"daily", req.Daily,
		"observations", observed.Len(),
		"scored", scores.RMSE != nil,
		"latency_ms", time.Since(start).Milliseconds())

	return &models.AccuracyResponse{
		Window: models.NewWindowPayload(window),
		Daily:  req.Daily,
		RMSE:   models.FloatPtr(scores.RMSE),
		MASE:   models.FloatPtr(scores.MASE),
	}, nil
}

// dailyOf returns the first differences of s without the leading day, which
// has no predecessor.
func dailyOf(s *timeseries.TimeSeries) *timeseries.TimeSeries {
	if s.IsEmpty() {
		return s
	}
	return s.Deltas(1).Slice(analytics.AddDays(s.Start(), 1), time.Time{})
}
