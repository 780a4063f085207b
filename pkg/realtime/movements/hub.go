package movements

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 64

// Frame is the envelope streamed to live subscribers.
type Frame struct {
	Type    string          `json:"type"`
	Code    string          `json:"code,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans movement frames out to an open ended set of subscribers. Each
// subscriber has its own bounded buffer so one slow client cannot block
// ingestion; frames to a full buffer are dropped.
type Hub struct {
	mutex       sync.RWMutex
	subscribers map[*Subscriber]struct{}
}

type Subscriber struct {
	Frames chan Frame

	hub *Hub
}

func NewHub() *Hub {
	return &Hub{
		subscribers: map[*Subscriber]struct{}{},
	}
}

// Subscribe attaches a new live client. The handshake frame is already
// queued on the returned channel.
func (h *Hub) Subscribe() *Subscriber {
	subscriber := &Subscriber{
		Frames: make(chan Frame, subscriberBuffer),

		hub: h,
	}
	subscriber.Frames <- Frame{Type: "connected"}

	h.mutex.Lock()
	h.subscribers[subscriber] = struct{}{}
	h.mutex.Unlock()

	return subscriber
}

// Close detaches the subscriber and closes its frame channel.
func (s *Subscriber) Close() {
	s.hub.mutex.Lock()
	defer s.hub.mutex.Unlock()

	if _, ok := s.hub.subscribers[s]; !ok {
		return
	}

	delete(s.hub.subscribers, s)
	close(s.Frames)
}

// Broadcast delivers a frame to every connected subscriber without ever
// blocking the caller.
func (h *Hub) Broadcast(frame Frame) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for subscriber := range h.subscribers {
		select {
		case subscriber.Frames <- frame:
		default:
			log.Debug().Str("code", frame.Code).Msg("Dropping frame for slow subscriber")
		}
	}
}

// Subscribers returns the current connection count.
func (h *Hub) Subscribers() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers)
}
