package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yaxinw04/hackai/utils"
)

// HandleHealthCheck reports service liveness.
func (h *ApplicationHandler) HandleHealthCheck(c *fiber.Ctx) error {
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"service": "hackai",
		"healthy": true,
	})
}
