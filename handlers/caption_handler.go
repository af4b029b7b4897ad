package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/yaxinw04/hackai/internal/captions"
	"github.com/yaxinw04/hackai/models"
	"github.com/yaxinw04/hackai/utils"
)

// GenerateCaptionsPayload tunes caption generation for one clip.
type GenerateCaptionsPayload struct {
	WordByWord bool `json:"word_by_word"`
}

// ApplyCaptionsPayload carries the caption lines and style to burn into a clip.
type ApplyCaptionsPayload struct {
	Segments []models.CaptionSegment `json:"segments" validate:"required,min=1,dive"`
	Style    *models.CaptionStyle    `json:"style" validate:"omitempty"`
}

// HandleGenerateCaptions derives timed caption segments from a clip's
// transcript text. The result is editable client-side before it is applied.
func (h *ApplicationHandler) HandleGenerateCaptions(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	clipID := c.Params("clipId")

	var payload GenerateCaptionsPayload
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
		}
	}

	job, err := h.Store.Load(c.Context(), jobID)
	if err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Failed to load job")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load job")
	}
	if job == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found: "+jobID)
	}

	var rec *models.ClipRecord
	for i := range job.Results {
		if job.Results[i].ID == clipID {
			rec = &job.Results[i]
			break
		}
	}
	if rec == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Clip not found: "+clipID)
	}
	if rec.Text == "" {
		return utils.RespondWithError(c, fiber.StatusConflict, "Clip has no transcript text to caption")
	}

	segments := captions.SegmentsFromText(rec.Text, rec.DurationSeconds)
	if payload.WordByWord {
		segments = captions.WordByWord(segments)
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"job_id":   jobID,
		"clip_id":  clipID,
		"segments": segments,
		"style":    models.DefaultCaptionStyle(),
	})
}

// HandleApplyCaptions burns the submitted caption segments into the clip's
// original render and records the captioned file for later finalize calls.
func (h *ApplicationHandler) HandleApplyCaptions(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	clipID := c.Params("clipId")

	var payload ApplyCaptionsPayload
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
	style := models.DefaultCaptionStyle()
	if payload.Style != nil {
		style = *payload.Style
	}

	job, err := h.Store.Load(c.Context(), jobID)
	if err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Failed to load job")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load job")
	}
	if job == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found: "+jobID)
	}
	if job.Status != models.JobStatusComplete {
		return utils.RespondWithError(c, fiber.StatusConflict,
			fmt.Sprintf("Job %s is %s, captions require a complete job", jobID, job.Status))
	}

	sourcePath := job.ClipPaths[clipID]
	if sourcePath == "" {
		return utils.RespondWithError(c, fiber.StatusConflict, "No rendered file for clip "+clipID)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, "Rendered file for clip "+clipID+" is missing")
	}

	captionedDir := filepath.Join(h.Settings.OutputDir, jobID, "captioned")
	if err := os.MkdirAll(captionedDir, 0o755); err != nil {
		h.Logger.WithError(err).Error("Failed to create captioned dir")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to prepare output directory")
	}
	outPath := filepath.Join(captionedDir, clipID+"_captioned.mp4")

	if err := h.Burner.Apply(c.Context(), sourcePath, outPath, payload.Segments, style); err != nil {
		h.Logger.WithError(err).WithField("clip_id", clipID).Error("Caption burn failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Caption burn failed")
	}

	urlPath, err := h.Storage.Upload(outPath, fmt.Sprintf("%s/captioned/%s_captioned.mp4", jobID, clipID))
	if err != nil {
		h.Logger.WithError(err).WithField("clip_id", clipID).Error("Captioned clip upload failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Captioned clip upload failed")
	}

	if _, err := h.Store.Update(c.Context(), jobID, func(j *models.Job) error {
		if j.CaptionedPaths == nil {
			j.CaptionedPaths = map[string]string{}
		}
		j.CaptionedPaths[clipID] = outPath
		return nil
	}); err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Failed to record captioned path")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to record captioned clip")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"job_id":   jobID,
		"clip_id":  clipID,
		"url_path": urlPath,
		"path":     outPath,
	})
}
