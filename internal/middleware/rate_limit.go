package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/codecoach-api/internal/observability"
)

// RateLimit throttles a route group per caller. Authenticated callers are
// keyed by user id, everyone else by IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	limit := limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			caller := c.IP()
			if userID, ok := c.Locals("user_id").(uint); ok && userID != 0 {
				caller = fmt.Sprintf("user:%d", userID)
			}
			return fmt.Sprintf("%s:%s", identifier, caller)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "rate limit exceeded"})
		},
	})

	return func(c *fiber.Ctx) error {
		observability.GenerationRequests().WithLabelValues(identifier).Inc()
		return limit(c)
	}
}
