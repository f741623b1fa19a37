package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/curvecast/internal/models"
)

// Accuracy scores a curve or a candidate series against observations
// POST /v1/accuracy
func (h *Handler) Accuracy(c *fiber.Ctx) error {
	var req models.AccuracyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.accuracyService.Score(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// Extrema finds the local extrema and monotone segments of a series
// POST /v1/extrema
func (h *Handler) Extrema(c *fiber.Ctx) error {
	var req models.ExtremaRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.extremaService.Find(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// DeriveSeries applies an operation pipeline to a series
// POST /v1/series/derive
func (h *Handler) DeriveSeries(c *fiber.Ctx) error {
	var req models.DeriveRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.seriesService.Derive(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// CombineSeries merges several series with one reducer
// POST /v1/series/combine
func (h *Handler) CombineSeries(c *fiber.Ctx) error {
	var req models.CombineRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.seriesService.Combine(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}
