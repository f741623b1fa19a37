package services

import (
	"context"
	"strings"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/fitter"
	"github.com/soltixdb/curvecast/internal/analytics/forecast"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/utils"
)

// CurveService evaluates and inspects known curve parameters
type CurveService struct {
	logger    *logging.Logger
	fitterCfg config.FitterConfig
}

// NewCurveService creates a new CurveService
func NewCurveService(logger *logging.Logger, fitterCfg config.FitterConfig) *CurveService {
	return &CurveService{
		logger:    logger,
		fitterCfg: fitterCfg,
	}
}

var paramNames = map[growth.Param]string{
	growth.ParamL:  "l",
	growth.ParamK:  "k",
	growth.ParamX0: "x0",
	growth.ParamV:  "v",
}

// List describes every curve kind and forecaster
func (s *CurveService) List() *models.CurveListResponse {
	kinds := growth.Kinds()
	curves := make([]models.CurveInfo, len(kinds))
	for i, k := range kinds {
		active := k.ActiveParams()
		params := make([]string, len(active))
		for j, p := range active {
			params[j] = paramNames[p]
		}
		curves[i] = models.CurveInfo{
			Name:       k.String(),
			Params:     params,
			Degenerate: k.Degenerate(),
		}
	}
	return &models.CurveListResponse{
		Curves:      curves,
		Forecasters: forecast.ListForecasters(),
	}
}

// anchoredCurve parses params and day zero into a curve
func anchoredCurve(p growth.Params, dayZero string) (growth.Curve, *ServiceError) {
	if !p.Kind.Valid() {
		return growth.Curve{}, invalidCurve(p.Kind.String(), curveNames())
	}
	if strings.TrimSpace(dayZero) == "" {
		return growth.Curve{}, invalidRequest("day_zero is required")
	}
	d, err := models.ParseOptionalDate(dayZero)
	if err != nil {
		return growth.Curve{}, invalidRequest("day_zero: %v", err)
	}
	return growth.NewCurve(p.Normalize(), d), nil
}

// Evaluate returns the curve at the requested x values, dates and date range
func (s *CurveService) Evaluate(_ context.Context, req *models.EvaluateRequest) (*models.EvaluateResponse, error) {
	curve, svcErr := anchoredCurve(req.Params, req.DayZero)
	if svcErr != nil {
		return nil, svcErr
	}

	xs := append([]float64(nil), req.X...)
	for _, d := range req.Dates {
		date, err := models.ParseOptionalDate(d)
		if err != nil || date.IsZero() {
			return nil, invalidRequest("dates: %q is not a YYYY-MM-DD date", d)
		}
		xs = append(xs, curve.X(date))
	}

	if req.From != "" || req.To != "" {
		from, errFrom := models.ParseOptionalDate(req.From)
		to, errTo := models.ParseOptionalDate(req.To)
		if errFrom != nil || errTo != nil || from.IsZero() || to.IsZero() {
			return nil, invalidRequest("from and to must both be YYYY-MM-DD dates")
		}
		if to.Before(from) {
			return nil, invalidRequest("to is before from")
		}
		if analytics.DaysBetween(from, to) >= utils.MaxSeriesLength {
			return nil, invalidRequest("range exceeds %d days", utils.MaxSeriesLength)
		}
		for d := from; !d.After(to); d = analytics.AddDays(d, 1) {
			xs = append(xs, curve.X(d))
		}
	}

	if len(xs) == 0 {
		return nil, invalidRequest("one of x, dates or from/to is required")
	}
	if len(xs) > utils.MaxSeriesLength {
		return nil, invalidRequest("at most %d points can be evaluated", utils.MaxSeriesLength)
	}

	points := make([]models.EvaluatePoint, len(xs))
	for i, x := range xs {
		points[i] = models.EvaluatePoint{
			X:          models.Float(x),
			Date:       models.FormatDate(curve.Date(x)),
			Total:      models.Float(growth.Evaluate(curve.Params, x)),
			Daily:      models.Float(growth.Evaluate(curve.Params, x) - growth.Evaluate(curve.Params, x-1)),
			Derivative: models.Float(growth.Derivative(curve.Params, x)),
		}
	}

	return &models.EvaluateResponse{
		Params:  curve.Params,
		DayZero: models.FormatDate(curve.DayZero),
		Points:  points,
	}, nil
}

// Peak locates the day of fastest growth of the given curve
func (s *CurveService) Peak(_ context.Context, req *models.PeakRequest) (*models.PeakResponse, error) {
	curve, svcErr := anchoredCurve(req.Params, req.DayZero)
	if svcErr != nil {
		return nil, svcErr
	}

	bracket := s.fitterCfg.Bracket()
	if req.Bracket != nil {
		bracket = *req.Bracket
	}
	if bracket == (fitter.Bracket{}) {
		bracket = fitter.DefaultBracket
	}

	start := time.Now()
	peak, err := fitter.FindPeak(curve.Params, curve.DayZero, bracket)
	if err != nil {
		return nil, fromAnalyticsError(err)
	}

	s.logger.Debug("Peak located",
		"curve", curve.Params.Kind.String(),
		"x", peak.X,
		"latency_ms", time.Since(start).Milliseconds())

	return &models.PeakResponse{
		Params:  curve.Params,
		DayZero: models.FormatDate(curve.DayZero),
		Bracket: bracket,
		Peak:    newPeakView(peak),
	}, nil
}
