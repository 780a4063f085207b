package movements

import (
	"github.com/adjust/rmq/v5"
	"github.com/go-stomp/stomp/v3"
	"github.com/rs/zerolog/log"
)

// FeedBridge subscribes to the provider's push feed topic over STOMP and
// republishes raw message bodies onto the movement queue. The durable
// client identity means a restart resumes the subscription instead of
// replaying the topic from the start.
//
// Reconnection is deliberately not handled here: on a broken connection the
// bridge fails loudly and the supervising process decides whether to
// restart it.
type FeedBridge struct {
	Address  string
	Username string
	Password string
	Topic    string
	ClientID string

	QueueName string
}

func (b *FeedBridge) Run(connection rmq.Connection) {
	queue, err := connection.OpenQueue(b.QueueName)
	if err != nil {
		log.Fatal().Err(err).Str("queue", b.QueueName).Msg("cannot open movement queue")
	}

	stompOptions := []func(*stomp.Conn) error{
		stomp.ConnOpt.Login(b.Username, b.Password),
		stomp.ConnOpt.Header("client-id", b.ClientID),
		stomp.ConnOpt.HeartBeat(0, 0),
	}
	conn, err := stomp.Dial("tcp", b.Address, stompOptions...)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to push feed")
	}

	sub, err := conn.Subscribe(b.Topic, stomp.AckAuto,
		stomp.SubscribeOpt.Header("activemq.subscriptionName", b.ClientID),
	)
	if err != nil {
		log.Fatal().Str("topic", b.Topic).Err(err).Msg("cannot subscribe to push feed topic")
	}

	log.Info().Str("topic", b.Topic).Str("queue", b.QueueName).Msg("Bridging push feed into movement queue")

	for msg := range sub.C {
		if msg.Err != nil {
			log.Fatal().Err(msg.Err).Msg("push feed subscription failed")
		}

		if err := queue.PublishBytes(msg.Body); err != nil {
			log.Error().Err(err).Msg("Failed to publish movement message")
		}
	}

	log.Fatal().Msg("push feed subscription closed")
}
