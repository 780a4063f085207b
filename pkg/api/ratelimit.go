package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raildeck/raildeck/pkg/raildata"
)

// rateLimited guards a route with the fixed window limiter, keyed on the
// forwarded caller identity and the logical operation.
func (s *Server) rateLimited(operation string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.Limiter == nil {
			return c.Next()
		}

		result := s.Limiter.Allow(c.Context(), callerIdentity(c), operation)

		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))

			return respondError(c, raildata.NewError(raildata.CodeRateLimited,
				fmt.Sprintf("rate limit exceeded, retry in %ds", retryAfter), nil))
		}

		return c.Next()
	}
}
