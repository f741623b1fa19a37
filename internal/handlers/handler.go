package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger *logging.Logger
	// Services
	forecastService *services.ForecastService
	curveService    *services.CurveService
	seriesService   *services.SeriesService
	extremaService  *services.ExtremaService
	accuracyService *services.AccuracyService
	jobService      *services.JobService
}

// New creates a new handler instance. store and publisher may be nil: the
// forecast cache is then disabled and job endpoints answer 503.
func New(logger *logging.Logger, cfg *config.Config, store *cache.Store, publisher queue.Publisher) *Handler {
	forecastService := services.NewForecastService(logger, cfg.Fitter, cfg.Forecast, store)

	return &Handler{
		logger:          logger,
		forecastService: forecastService,
		curveService:    services.NewCurveService(logger, cfg.Fitter),
		seriesService:   services.NewSeriesService(logger),
		extremaService:  services.NewExtremaService(logger, cfg.Extrema),
		accuracyService: services.NewAccuracyService(logger),
		jobService:      services.NewJobService(logger, publisher, store, forecastService, cfg.Queue.JobSubject),
	}
}

// JobService returns the job service for use by the fit worker
func (h *Handler) JobService() *services.JobService {
	return h.jobService
}

// statusForCode maps service error codes to HTTP statuses
func statusForCode(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidCurve:
		return fiber.StatusBadRequest
	case services.CodeInvalidWindow, services.CodeNonConvergence, services.CodePeakNotBracketed:
		return fiber.StatusUnprocessableEntity
	case services.CodeJobNotFound:
		return fiber.StatusNotFound
	case services.CodeQueueUnavailable, services.CodeCacheUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError writes err as an error response
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	if svcErr, ok := err.(*services.ServiceError); ok {
		status := statusForCode(svcErr.Code)
		if status >= fiber.StatusInternalServerError {
			h.logger.Error("Request failed",
				"path", c.Path(),
				"code", svcErr.Code,
				"error", svcErr.Message)
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}

	h.logger.Error("Request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: err.Error(),
		},
	})
}

// invalidJSON writes the response for an unparsable body
func invalidJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_JSON",
			Message: "Failed to parse JSON body",
			Details: map[string]interface{}{"error": err.Error()},
		},
	})
}
