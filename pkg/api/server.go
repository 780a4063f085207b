package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/raildeck/raildeck/pkg/aggregator"
	"github.com/raildeck/raildeck/pkg/ratelimit"
	"github.com/raildeck/raildeck/pkg/realtime/movements"
	"github.com/raildeck/raildeck/pkg/sourcemanager"
)

// Server is the HTTP query surface. Every collaborator is injected by the
// composition root so the server can be exercised with fakes.
type Server struct {
	Aggregator *aggregator.Aggregator
	Manager    *sourcemanager.Manager

	Events *movements.StationEventCache
	Hub    *movements.Hub
	Broker *movements.Consumer

	Limiter *ratelimit.Limiter
}

func (s *Server) Router() *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("/version", s.getVersion)
	group.Get("/health", s.getHealth)

	group.Get("/boards/:crs", s.rateLimited("boards"), s.getStationBoard)
	group.Get("/services/:id", s.rateLimited("services"), s.getServiceDetails)
	group.Get("/events/:crs", s.rateLimited("events"), s.getStationEvents)

	s.liveRouter(group)

	return webApp
}

func (s *Server) Listen(listen string) error {
	return s.Router().Listen(listen)
}
