package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/curvecast/internal/models"
)

// ListCurves lists curve kinds and forecasters
// GET /v1/curves
func (h *Handler) ListCurves(c *fiber.Ctx) error {
	return c.JSON(h.curveService.List())
}

// EvaluateCurve evaluates known parameters
// POST /v1/curves/evaluate
func (h *Handler) EvaluateCurve(c *fiber.Ctx) error {
	var req models.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.curveService.Evaluate(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// CurvePeak locates the peak of known parameters
// POST /v1/curves/peak
func (h *Handler) CurvePeak(c *fiber.Ctx) error {
	var req models.PeakRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	result, err := h.curveService.Peak(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}
