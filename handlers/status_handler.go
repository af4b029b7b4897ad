package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/yaxinw04/hackai/utils"
)

// HandleJobStatus returns the full record for one job.
func (h *ApplicationHandler) HandleJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	job, err := h.Store.Load(c.Context(), jobID)
	if err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Failed to load job")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load job")
	}
	if job == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found: "+jobID)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// HandleListJobs returns every known job, newest first.
func (h *ApplicationHandler) HandleListJobs(c *fiber.Ctx) error {
	jobs, err := h.Store.List(c.Context())
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list jobs")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list jobs")
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
