package services

import (
	"context"
	"fmt"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/utils"
)

// SeriesService applies time series algebra to wire series
type SeriesService struct {
	logger *logging.Logger
}

// NewSeriesService creates a new SeriesService
func NewSeriesService(logger *logging.Logger) *SeriesService {
	return &SeriesService{logger: logger}
}

// Derive runs the operations in order and returns the final series
func (s *SeriesService) Derive(_ context.Context, req *models.DeriveRequest) (*models.SeriesResponse, error) {
	series, err := req.Series.ToTimeSeries()
	if err != nil {
		return nil, invalidRequest("%v", err)
	}
	if len(req.Operations) == 0 {
		return nil, invalidRequest("operations must not be empty")
	}

	for i, op := range req.Operations {
		series, err = applyOperation(series, op)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
				map[string]interface{}{"operation": i, "op": op.Op})
		}
	}

	return &models.SeriesResponse{Series: models.NewSeriesPayload(series)}, nil
}

// applyOperation runs one derive step
func applyOperation(s *timeseries.TimeSeries, op models.SeriesOperation) (*timeseries.TimeSeries, error) {
	var windowOpts []timeseries.WindowOption
	if op.NonZeroOnly {
		windowOpts = append(windowOpts, timeseries.NonZeroOnly())
	}
	if op.ExcludePartial {
		windowOpts = append(windowOpts, timeseries.ExcludePartial())
	}

	switch op.Op {
	case "deltas":
		lag := op.Lag
		if lag == 0 {
			lag = 1
		}
		if lag < 0 {
			return nil, fmt.Errorf("lag must be positive")
		}
		return s.Deltas(lag), nil

	case "moving_average", "moving_sum":
		if op.Window < 1 {
			return nil, fmt.Errorf("%s requires window >= 1", op.Op)
		}
		if op.Op == "moving_sum" {
			return s.MovingSum(op.Window, windowOpts...), nil
		}
		return s.MovingAverage(op.Window, windowOpts...), nil

	case "cumulative_sum":
		if op.Since == "" {
			return s.CumulativeSum(), nil
		}
		since, err := models.ParseOptionalDate(op.Since)
		if err != nil {
			return nil, fmt.Errorf("since: %w", err)
		}
		return s.CumulativeSumSince(since), nil

	case "growth_rate":
		if op.Lag < 0 {
			return nil, fmt.Errorf("lag cannot be negative")
		}
		return s.GrowthRate(op.Lag), nil

	case "doubling_time":
		return s.DoublingTime(), nil

	case "coerce_monotonic":
		return s.CoerceMonotonic(), nil

	case "shift":
		return s.Shift(op.Days), nil

	case "slice":
		from, err := models.ParseOptionalDate(op.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to, err := models.ParseOptionalDate(op.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		return s.Slice(from, to), nil

	default:
		return nil, fmt.Errorf("unknown operation: %q", op.Op)
	}
}

// Combine merges several series over the union of their date ranges
func (s *SeriesService) Combine(_ context.Context, req *models.CombineRequest) (*models.SeriesResponse, error) {
	if len(req.Series) == 0 {
		return nil, invalidRequest("series must not be empty")
	}

	all := make([]*timeseries.TimeSeries, len(req.Series))
	for i, p := range req.Series {
		ts, err := p.ToTimeSeries()
		if err != nil {
			return nil, invalidRequest("series[%d]: %v", i, err)
		}
		all[i] = ts
	}
	if span, ok := timeseries.UnionSpan(all...); ok {
		if days := analytics.DaysBetween(span.From, span.To) + 1; days > utils.MaxSeriesLength {
			return nil, invalidRequest("combined range %s..%s spans %d days, the limit is %d",
				span.From.Format(analytics.DateLayout), span.To.Format(analytics.DateLayout), days, utils.MaxSeriesLength)
		}
	}

	start := time.Now()
	var out *timeseries.TimeSeries
	switch req.Reducer {
	case "sum", "":
		out = timeseries.Sum(all...)
	case "max":
		out = timeseries.MaxOf(all...)
	case "min":
		out = timeseries.MinOf(all...)
	case "first_nonzero":
		out = timeseries.FirstNonZero(all...)
	case "sub", "mul", "div":
		if len(all) < 2 {
			return nil, invalidRequest("reducer %s needs at least two series", req.Reducer)
		}
		out = foldBinary(req.Reducer, all)
	default:
		return nil, invalidRequest("unknown reducer: %q", req.Reducer)
	}

	s.logger.Debug("Series combined",
		"reducer", req.Reducer,
		"inputs", len(all),
		"length", out.Len(),
		"latency_ms", time.Since(start).Milliseconds())

	return &models.SeriesResponse{Series: models.NewSeriesPayload(out)}, nil
}

// foldBinary applies a binary operator left to right
func foldBinary(name string, all []*timeseries.TimeSeries) *timeseries.TimeSeries {
	acc := all[0]
	for _, next := range all[1:] {
		switch name {
		case "sub":
			acc = acc.Sub(next)
		case "mul":
			acc = acc.Mul(next)
		case "div":
			acc = acc.Div(next)
		}
	}
	return acc
}
