package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/yaxinw04/hackai/internal/worker"
	"github.com/yaxinw04/hackai/models"
	"github.com/yaxinw04/hackai/utils"
)

// ProcessVideoPayload is the request body for starting a new job.
type ProcessVideoPayload struct {
	URL    string `json:"url" validate:"required,url"`
	Prompt string `json:"prompt"`
}

// HandleProcessVideo accepts a video URL and a natural-language prompt,
// creates a pending job and queues it for background processing.
func (h *ApplicationHandler) HandleProcessVideo(c *fiber.Ctx) error {
	var payload ProcessVideoPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	payload.URL = utils.SanitizeInput(payload.URL)
	payload.Prompt = utils.SanitizeInput(payload.Prompt)

	if err := h.Validate.Struct(payload); err != nil {
		h.Logger.WithField("validation_errors", utils.FormatValidationErrors(err)).Warn("Process request failed validation")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobStatusPending,
		Message:   "Queued for processing",
		URL:       payload.URL,
		Prompt:    payload.Prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Store.Create(c.Context(), job); err != nil {
		h.Logger.WithError(err).Error("Failed to create job record")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to create job")
	}

	task := worker.TaskFunc{
		TaskID: job.ID,
		Fn: func(ctx context.Context) error {
			return h.Orchestrator.Run(ctx, job.ID)
		},
	}
	if err := h.Pool.Submit(task); err != nil {
		h.Logger.WithError(err).WithField("job_id", job.ID).Error("Failed to queue job")
		_, _ = h.Store.Update(c.Context(), job.ID, func(j *models.Job) error {
			msg := "worker queue full"
			j.Status = models.JobStatusFailed
			j.Message = "Could not queue job"
			j.Error = &msg
			return nil
		})
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Server busy, try again later")
	}

	h.Logger.WithField("job_id", job.ID).Info("Job queued")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": job.Message,
	})
}
