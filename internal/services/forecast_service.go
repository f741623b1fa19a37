package services

import (
	"context"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/fitter"
	"github.com/soltixdb/curvecast/internal/analytics/forecast"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/utils"
)

// ForecastService handles fitting and forecasting business logic
type ForecastService struct {
	logger      *logging.Logger
	fitterCfg   config.FitterConfig
	forecastCfg config.ForecastConfig
	store       *cache.Store // optional forecast cache
}

// NewForecastService creates a new ForecastService. store may be nil to
// disable caching.
func NewForecastService(
	logger *logging.Logger,
	fitterCfg config.FitterConfig,
	forecastCfg config.ForecastConfig,
	store *cache.Store,
) *ForecastService {
	return &ForecastService{
		logger:      logger,
		fitterCfg:   fitterCfg,
		forecastCfg: forecastCfg,
		store:       store,
	}
}

// fitInputs is a parsed and defaulted FitRequest
type fitInputs struct {
	series  *timeseries.TimeSeries
	curve   string
	mode    fitter.Mode
	window  analytics.Window
	dayZero time.Time
	guess   *growth.Params
	options fitter.Options
}

// parseFit validates the fields shared by fits and forecasts
func (s *ForecastService) parseFit(req *models.FitRequest) (*fitInputs, *ServiceError) {
	series, err := req.Series.ToTimeSeries()
	if err != nil {
		return nil, invalidRequest("%v", err)
	}

	in := &fitInputs{
		series:  series,
		curve:   req.Curve,
		options: s.fitterCfg.Options(),
		guess:   req.InitialGuess,
	}
	if in.curve == "" {
		in.curve = s.forecastCfg.DefaultCurve
	}

	modeName := req.Mode
	if modeName == "" {
		modeName = s.forecastCfg.DefaultMode
	}
	if in.mode, err = fitter.ParseMode(modeName); err != nil {
		return nil, invalidRequest("%v", err)
	}

	if in.window, err = req.Window.ToWindow(); err != nil {
		return nil, invalidRequest("%v", err)
	}
	if in.dayZero, err = models.ParseOptionalDate(req.DayZero); err != nil {
		return nil, invalidRequest("day_zero: %v", err)
	}

	if req.MaxIterations < 0 || req.Tolerance < 0 {
		return nil, invalidRequest("max_iterations and tolerance cannot be negative")
	}
	if req.MaxIterations > 0 {
		in.options.MaxIterations = req.MaxIterations
	}
	if req.Tolerance > 0 {
		in.options.Tolerance = req.Tolerance
	}

	return in, nil
}

// invalidCurve reports an unknown curve with the accepted names
func invalidCurve(name string, available []string) *ServiceError {
	return NewServiceErrorWithDetails(CodeInvalidCurve, "unknown curve: "+name,
		map[string]interface{}{"available": available})
}

// curveNames lists the concrete curve kinds
func curveNames() []string {
	kinds := growth.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// Fit fits one concrete curve kind and returns the parameters
func (s *ForecastService) Fit(ctx context.Context, req *models.FitRequest) (*models.FitResponse, error) {
	in, svcErr := s.parseFit(req)
	if svcErr != nil {
		return nil, svcErr
	}
	kind, err := growth.ParseCurveKind(in.curve)
	if err != nil {
		return nil, invalidCurve(in.curve, curveNames())
	}
	if err := ctx.Err(); err != nil {
		return nil, NewServiceError(CodeInternal, err.Error())
	}

	start := time.Now()
	result, err := fitter.Fit(in.series, fitter.Request{
		Kind:         kind,
		Window:       in.window,
		Mode:         in.mode,
		InitialGuess: in.guess,
		DayZero:      in.dayZero,
	}, in.options)
	if err != nil {
		s.logger.Warn("Fit failed", "curve", kind.String(), "mode", in.mode.String(), "error", err)
		return nil, fromAnalyticsError(err)
	}

	s.logger.Info("Fit completed",
		"curve", kind.String(),
		"mode", result.Mode.String(),
		"observations", result.Observations,
		"iterations", result.Iterations,
		"rmse", result.RMSE,
		"latency_ms", time.Since(start).Milliseconds())

	return &models.FitResponse{
		Params:       result.Params,
		DayZero:      models.FormatDate(result.DayZero),
		FitWindow:    models.NewWindowPayload(result.Window),
		Mode:         result.Mode.String(),
		Observations: result.Observations,
		Iterations:   result.Iterations,
		Evaluations:  result.Evaluations,
		Cost:         models.Float(result.Cost),
		RMSE:         models.Float(result.RMSE),
	}, nil
}

// Validate checks a forecast request without running it
func (s *ForecastService) Validate(req *models.ForecastRequest) error {
	_, _, svcErr := s.prepare(req)
	if svcErr != nil {
		return svcErr
	}
	return nil
}

// prepare resolves the forecaster and the forecast configuration
func (s *ForecastService) prepare(req *models.ForecastRequest) (forecast.Forecaster, *forecastJob, *ServiceError) {
	in, svcErr := s.parseFit(&req.FitRequest)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	forecaster, err := forecast.GetForecaster(in.curve)
	if err != nil {
		return nil, nil, invalidCurve(in.curve, forecast.ListForecasters())
	}

	cfg := forecast.DefaultConfig()
	cfg.FitWindow = in.window
	cfg.Mode = in.mode
	cfg.InitialGuess = in.guess
	cfg.DayZero = in.dayZero
	cfg.Options = in.options
	cfg.PeakBracket = s.fitterCfg.Bracket()
	if req.PeakBracket != nil {
		cfg.PeakBracket = *req.PeakBracket
	}

	cfg.CheckpointOffsets = s.forecastCfg.CheckpointOffsets
	if req.CheckpointOffsets != nil {
		cfg.CheckpointOffsets = req.CheckpointOffsets
	}
	for _, d := range req.CheckpointDates {
		date, err := models.ParseOptionalDate(d)
		if err != nil || date.IsZero() {
			return nil, nil, invalidRequest("checkpoint_dates: %q is not a YYYY-MM-DD date", d)
		}
		cfg.CheckpointDates = append(cfg.CheckpointDates, date)
	}

	if cfg.EvaluationWindow, err = req.EvaluationWindow.ToWindow(); err != nil {
		return nil, nil, invalidRequest("evaluation_%v", err)
	}

	return forecaster, &forecastJob{series: in.series, config: cfg}, nil
}

// forecastJob is a prepared forecast
type forecastJob struct {
	series *timeseries.TimeSeries
	config forecast.Config
}

// Execute runs a full forecast. Results are cached by request content unless
// the request sets no_cache.
func (s *ForecastService) Execute(ctx context.Context, req *models.ForecastRequest) (*models.ForecastResponse, error) {
	startExec := time.Now()

	forecaster, job, svcErr := s.prepare(req)
	if svcErr != nil {
		return nil, svcErr
	}

	key := s.cacheKey(req)
	if key != "" {
		var cached models.ForecastResponse
		found, err := s.store.Fetch(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Forecast cache read failed", "key", key, "error", err)
		} else if found {
			cached.Cached = true
			return &cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, NewServiceError(CodeInternal, err.Error())
	}

	stats, err := forecaster.Forecast(job.series, job.config)
	if err != nil {
		s.logger.Warn("Forecast failed", "method", forecaster.Name(), "error", err)
		return nil, fromAnalyticsError(err)
	}
	resp := newForecastResponse(stats)

	if key != "" {
		if err := s.store.Put(ctx, key, resp); err != nil {
			s.logger.Warn("Forecast cache write failed", "key", key, "error", err)
		}
	}

	s.logger.Info("Forecast completed",
		"method", forecaster.Name(),
		"algorithm", stats.Algorithm,
		"observations", stats.Observations,
		"iterations", stats.Iterations,
		"peak", resp.Peak != nil,
		"checkpoints", len(stats.Checkpoints),
		"latency_ms", time.Since(startExec).Milliseconds())

	return resp, nil
}

// cacheKey returns the cache key of req, or "" when caching is off
func (s *ForecastService) cacheKey(req *models.ForecastRequest) string {
	if s.store == nil || req.NoCache {
		return ""
	}
	key, err := cache.Key(utils.ForecastKeyPrefix, req)
	if err != nil {
		s.logger.Warn("Failed to build forecast cache key", "error", err)
		return ""
	}
	return key
}

// newForecastResponse converts forecast stats to the wire form
func newForecastResponse(stats *forecast.ForecastStats) *models.ForecastResponse {
	resp := &models.ForecastResponse{
		Algorithm:        stats.Algorithm,
		Params:           stats.Params,
		DayZero:          models.FormatDate(stats.DayZero),
		FitWindow:        models.NewWindowPayload(stats.FitWindow),
		Mode:             stats.Mode.String(),
		FitRMSE:          models.Float(stats.FitRMSE),
		Observations:     stats.Observations,
		Iterations:       stats.Iterations,
		Evaluations:      stats.Evaluations,
		PeakError:        stats.PeakError,
		Checkpoints:      make([]models.CheckpointView, len(stats.Checkpoints)),
		EvaluationWindow: models.NewWindowPayload(stats.EvaluationWindow),
		Accuracy: models.AccuracyView{
			RMSETotal: models.FloatPtr(stats.Accuracy.RMSETotal),
			MASETotal: models.FloatPtr(stats.Accuracy.MASETotal),
			RMSEDaily: models.FloatPtr(stats.Accuracy.RMSEDaily),
			MASEDaily: models.FloatPtr(stats.Accuracy.MASEDaily),
		},
	}
	if stats.Peak != nil {
		view := newPeakView(stats.Peak)
		resp.Peak = &view
	}
	for i, c := range stats.Checkpoints {
		resp.Checkpoints[i] = models.CheckpointView{
			Date:  models.FormatDate(c.Date),
			Total: models.Float(c.Total),
			Daily: models.Float(c.Daily),
		}
	}
	return resp
}

// newPeakView converts a located peak to the wire form
func newPeakView(p *fitter.Peak) models.PeakView {
	return models.PeakView{
		Date:  models.FormatDate(p.Date),
		X:     models.Float(p.X),
		Value: models.Float(p.Value),
	}
}
