package events

import (
	"github.com/rs/zerolog/log"
)

// Publisher encodes events onto a Destination. Delivery failures are logged
// and swallowed so a broken sink never fails a spin.
type Publisher struct {
	dest Destination
}

func NewPublisher(dest Destination) *Publisher {
	return &Publisher{dest: dest}
}

func (p *Publisher) Publish(topic string, event any) {
	if p == nil || p.dest == nil {
		return
	}
	msg, err := Encode(topic, event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to encode event")
		return
	}
	if err := p.dest.WriteMessage(msg.Topic, msg.Message); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.dest == nil {
		return nil
	}
	return p.dest.Close()
}
