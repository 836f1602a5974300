package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LoggingPublisher records events in the log instead of a broker. It is the
// fallback when no brokers are configured.
type LoggingPublisher struct{}

func NewLoggingPublisher() *LoggingPublisher {
	return &LoggingPublisher{}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	log.Info().
		Str("event_type", eventType).
		Str("partition_key", partitionKey).
		Int("payload_bytes", len(payload)).
		Msg("event published")
	return nil
}

func (p *LoggingPublisher) Close() error {
	return nil
}
