package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mailpilot/pkg/logger"
)

// RequestID assigns every request a unique id, exposed in the response
// header and error payloads.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}

// Recover converts panics into 500 responses instead of killing the
// process.
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("panic", r).Error("recovered from panic")
				err = fiber.NewError(fiber.StatusInternalServerError, "internal server error")
			}
		}()
		return c.Next()
	}
}
