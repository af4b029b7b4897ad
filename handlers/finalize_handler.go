package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yaxinw04/hackai/internal/apperr"
	"github.com/yaxinw04/hackai/models"
	"github.com/yaxinw04/hackai/utils"
)

// FinalizeClipsPayload carries the client's edited clip windows.
type FinalizeClipsPayload struct {
	Clips []models.EditedClip `json:"clips" validate:"required,min=1,dive"`
}

// HandleFinalizeClips reconciles edited clip windows against the rendered
// files and replaces the job's finalized set.
func (h *ApplicationHandler) HandleFinalizeClips(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	var payload FinalizeClipsPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := h.Validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	finalized, err := h.Finalizer.Run(c.Context(), jobID, payload.Clips)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, apperr.ErrInvalidState):
			return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
		default:
			h.Logger.WithError(err).WithField("job_id", jobID).Error("Finalize failed")
			return utils.RespondWithError(c, fiber.StatusInternalServerError, "Finalize failed")
		}
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"job_id":          jobID,
		"finalized_clips": finalized,
		"count":           len(finalized),
	})
}
