package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const APIVersion = "1.0.0"

func (s *Server) getVersion(c *fiber.Ctx) error {
	return respondSuccess(c, fiber.Map{"version": APIVersion})
}

// getHealth reports per adapter status from the health sweep plus the
// movement feed consumer's status.
func (s *Server) getHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	response := fiber.Map{
		"adapters": s.Manager.CheckHealth(ctx),
	}

	if s.Broker != nil {
		response["feed"] = s.Broker.Status()
	}

	return respondSuccess(c, response)
}
