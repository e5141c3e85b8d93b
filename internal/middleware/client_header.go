package middleware

import (
	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// ClientHeaderName is the identifying header app clients must send.
const ClientHeaderName = "X-Checkin-App"

// ClientHeader rejects JSON-only clients that do not identify themselves
// with the app header. Browser traffic (anything accepting HTML) passes
// through untouched.
func ClientHeader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		acceptsJSONOnly := c.Accepts("application/json") != "" && c.Accepts("text/html") == ""
		if acceptsJSONOnly && c.Get(ClientHeaderName) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}
