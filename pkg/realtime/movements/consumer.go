// Package movements is the real-time ingestion broker. It consumes the
// train movement feed, resolves provider location identifiers to station
// codes, maintains a bounded per station event cache and fans events out to
// live subscribers.
package movements

import (
	"context"
	"sync"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/raildeck/raildeck/pkg/stanox"
	"github.com/rs/zerolog/log"
)

const (
	// A single consumer keeps events applied strictly in delivery order.
	batchSize   = 100
	pollTimeout = 1 * time.Second
)

// Status is the broker's health report for the status endpoint.
type Status struct {
	Consuming      bool      `json:"consuming" groups:"basic"`
	LastMessageAt  time.Time `json:"lastMessageAt" groups:"basic"`
	MessagesSeen   int64     `json:"messagesSeen" groups:"basic"`
	EventsAccepted int64     `json:"eventsAccepted" groups:"basic"`
	EventsSkipped  int64     `json:"eventsSkipped" groups:"basic"`
}

type Consumer struct {
	QueueName string

	Resolver *stanox.Resolver
	Events   *StationEventCache
	Hub      *Hub

	statusMutex sync.RWMutex
	status      Status
}

func NewConsumer(queueName string, resolver *stanox.Resolver, events *StationEventCache, hub *Hub) *Consumer {
	return &Consumer{
		QueueName: queueName,

		Resolver: resolver,
		Events:   events,
		Hub:      hub,
	}
}

// Start attaches the consumer to the movement queue under a durable
// consumer identity, so restarts resume where the previous instance
// stopped rather than replaying from the start.
func (c *Consumer) Start(connection rmq.Connection) error {
	queue, err := connection.OpenQueue(c.QueueName)
	if err != nil {
		return err
	}

	if err := queue.StartConsuming(batchSize, pollTimeout); err != nil {
		return err
	}

	if _, err := queue.AddBatchConsumer(c.QueueName+"-consumer", batchSize, 2*time.Second, c); err != nil {
		return err
	}

	c.statusMutex.Lock()
	c.status.Consuming = true
	c.statusMutex.Unlock()

	log.Info().Str("queue", c.QueueName).Msg("Started movement feed consumer")

	return nil
}

// Consume handles one delivery batch. A malformed message is logged and
// skipped; it never stops consumption of subsequent messages.
func (c *Consumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		c.processMessage([]byte(payload))
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack movement message")
		}
	}
}

func (c *Consumer) processMessage(payload []byte) {
	c.statusMutex.Lock()
	c.status.MessagesSeen += 1
	c.status.LastMessageAt = time.Now()
	c.statusMutex.Unlock()

	events, err := DecodeEvents(payload)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping undecodable movement message")
		return
	}

	for _, event := range events {
		c.processEvent(event)
	}
}

func (c *Consumer) processEvent(event FeedEvent) {
	locationStanox := event.LocationStanox()
	if locationStanox == "" {
		c.skip("event carries no location identifier", nil)
		return
	}

	crs, err := c.Resolver.Resolve(context.Background(), locationStanox)
	if err != nil {
		c.skip("failed to resolve location identifier", err)
		return
	}
	if crs == "" {
		c.skip("location identifier has no known station code", nil)
		return
	}

	movement := raildata.MovementEvent{
		LocationID: locationStanox,
		CRS:        crs,
		Timestamp:  event.Timestamp(),
		Payload:    event.Body,
	}

	c.Events.Append(movement)

	c.Hub.Broadcast(Frame{
		Type:    "movement",
		Code:    crs,
		Payload: event.Body,
	})

	c.statusMutex.Lock()
	c.status.EventsAccepted += 1
	c.statusMutex.Unlock()
}

func (c *Consumer) skip(reason string, err error) {
	log.Debug().Err(err).Msg("Skipping movement event: " + reason)

	c.statusMutex.Lock()
	c.status.EventsSkipped += 1
	c.statusMutex.Unlock()
}

func (c *Consumer) Status() Status {
	c.statusMutex.RLock()
	defer c.statusMutex.RUnlock()

	return c.status
}
