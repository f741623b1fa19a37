package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/curvecast/internal/models"
)

// SubmitJob queues a forecast to run in the background
// POST /v1/jobs/fit
func (h *Handler) SubmitJob(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}

	record, err := h.jobService.Submit(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(record)
}

// SubmitJobBatch queues several forecasts at once
// POST /v1/jobs/batch
func (h *Handler) SubmitJobBatch(c *fiber.Ctx) error {
	var body struct {
		Jobs []models.ForecastRequest `json:"jobs"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	records, err := h.jobService.SubmitBatch(c.UserContext(), body.Jobs)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"jobs":  records,
		"count": len(records),
	})
}

// GetJob returns the status and result of a job
// GET /v1/jobs/:job_id
func (h *Handler) GetJob(c *fiber.Ctx) error {
	record, err := h.jobService.Get(c.UserContext(), c.Params("job_id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(record)
}
