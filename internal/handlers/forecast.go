package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/curvecast/internal/models"
)

// Fit handles curve fitting requests
// POST /v1/fit
func (h *Handler) Fit(c *fiber.Ctx) error {
	var req models.FitRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.forecastService.Fit(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// Forecast handles full forecast requests: fit, peak, checkpoints and accuracy
// POST /v1/forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.forecastService.Execute(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}
