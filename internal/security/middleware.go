package security

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RateLimitMiddleware returns a rate limiting middleware keyed by client IP.
func RateLimitMiddleware(rl *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.IP()

		if !rl.Allow(clientID) {
			resetAt := rl.ResetAt(clientID)

			c.Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit()))
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			c.Set("Retry-After", strconv.FormatInt(int64(time.Until(resetAt).Seconds()), 10))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":     false,
				"error":       "Rate limit exceeded",
				"retry_after": int64(time.Until(resetAt).Seconds()),
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(clientID)))

		return c.Next()
	}
}

// HeadersMiddleware adds security headers and a request ID.
func HeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("X-Request-ID", requestID)
		c.Locals("requestID", requestID)

		return c.Next()
	}
}
