package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

// liveRouter exposes the outbound live interface: a websocket endpoint
// that sends a handshake frame and then streams movement frames. No
// inbound protocol beyond connection teardown is supported.
func (s *Server) liveRouter(router fiber.Router) {
	router.Use("/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}

		return fiber.ErrUpgradeRequired
	})

	router.Get("/live", websocket.New(func(conn *websocket.Conn) {
		subscriber := s.Hub.Subscribe()
		defer subscriber.Close()

		// Drain inbound reads so close frames are noticed, discarding
		// everything else.
		closed := make(chan struct{})
		go func() {
			defer close(closed)

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case frame, ok := <-subscriber.Frames:
				if !ok {
					return
				}

				if err := conn.WriteJSON(frame); err != nil {
					log.Debug().Err(err).Msg("Live subscriber write failed, disconnecting")
					return
				}
			case <-closed:
				return
			}
		}
	}))
}
