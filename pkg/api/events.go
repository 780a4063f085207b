package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/raildeck/raildeck/pkg/raildata"
)

// getStationEvents serves the recent cached movement events for a station.
func (s *Server) getStationEvents(c *fiber.Ctx) error {
	crs := strings.ToUpper(c.Params("crs"))
	if !raildata.ValidCRS(crs) {
		return respondError(c, raildata.NewError(raildata.CodeParseError, "invalid CRS code", nil))
	}

	events := s.Events.Recent(crs)

	return c.JSON(fiber.Map{
		"code":  crs,
		"count": len(events),
		"data":  events,
	})
}
