// Package events publishes approval and quantity events to downstream
// consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	OrderApproved   = "order.approved"
	QuantityChanged = "order.quantity_changed"
)

const schemaVersion = "1.0"

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
	Close() error
}

// Envelope wraps every event payload.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	Source        string    `json:"source_service"`
	SchemaVersion string    `json:"schema_version"`
	PartitionKey  string    `json:"partition_key"`
	Data          any       `json:"data"`
}

// Encode builds the envelope for data and returns its JSON encoding.
func Encode(eventType, source, partitionKey string, data any) ([]byte, error) {
	payload, err := json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		SchemaVersion: schemaVersion,
		PartitionKey:  partitionKey,
		Data:          data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return payload, nil
}
