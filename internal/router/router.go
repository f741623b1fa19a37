package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/handlers"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/middleware"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/utils"
)

// Setup configures all routes and middlewares. store and publisher may be nil.
func Setup(app *fiber.App, logger *logging.Logger, store *cache.Store, publisher queue.Publisher, cfg *config.Config) *handlers.Handler {
	h := handlers.New(logger, cfg, store, publisher)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)
	v1 := app.Group("/v1", authMiddleware)

	// Fitting and forecasting; bounded by the request timeout
	v1.Post("/fit", timeout.NewWithContext(h.Fit, utils.DefaultRequestTimeout))
	v1.Post("/forecast", timeout.NewWithContext(h.Forecast, utils.DefaultRequestTimeout))

	// Curve routes
	v1.Get("/curves", h.ListCurves)
	v1.Post("/curves/evaluate", h.EvaluateCurve)
	v1.Post("/curves/peak", h.CurvePeak)

	// Analysis routes
	v1.Post("/accuracy", h.Accuracy)
	v1.Post("/extrema", h.Extrema)
	v1.Post("/series/derive", h.DeriveSeries)
	v1.Post("/series/combine", h.CombineSeries)

	// Background job routes
	v1.Post("/jobs/fit", h.SubmitJob)
	v1.Post("/jobs/batch", h.SubmitJobBatch)
	v1.Get("/jobs/:job_id", h.GetJob)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, store *cache.Store, publisher queue.Publisher, cfg *config.Config) (*fiber.App, *handlers.Handler) {
	fiberCfg := fiber.Config{
		AppName:               "Curvecast",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	}
	if cfg.Server.BodyLimit > 0 {
		fiberCfg.BodyLimit = cfg.Server.BodyLimit
	}
	app := fiber.New(fiberCfg)

	h := Setup(app, logger, store, publisher, cfg)

	return app, h
}
