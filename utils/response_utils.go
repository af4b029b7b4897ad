package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RespondWithError sends a JSON error response.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// FormatValidationErrors turns validator/v10 errors into readable strings.
func FormatValidationErrors(err error) []string {
	var msgs []string
	if err == nil {
		return msgs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	for _, fe := range verrs {
		msg := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// SanitizeInput trims surrounding whitespace from user-provided strings.
func SanitizeInput(input string) string {
	return strings.TrimSpace(input)
}
