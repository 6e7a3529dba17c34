package domain

import (
	"encoding/json"
	"time"

	"github.com/emailam/Petzania-sub000/pkg/events"
)

type OutboxEvent struct {
	Id           int64           `db:"id"`
	EventID      string          `db:"event_id"`
	EntityID     string          `db:"entity_id"`
	EntityType   string          `db:"entity_type"`
	EventType    string          `db:"event_type"`
	Topic        string          `db:"topic"`
	Payload      json.RawMessage `db:"payload"`
	CreatedAt    time.Time       `db:"created_at"`
	Processed    bool            `db:"processed"`
	ProcessedAt  *time.Time      `db:"processed_at"`
	RetryCount   int64           `db:"retry_count"`
	ErrorMessage *string         `db:"error_message"`
}

// FromEnvelope stores the whole envelope as the row payload so the relay can
// republish it byte-for-byte, keeping the original event_id on the wire.
func FromEnvelope(env *events.Envelope) (*OutboxEvent, error) {
	raw, err := env.Marshal()
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:    env.EventID,
		EntityID:   env.EntityID,
		EntityType: env.EntityType,
		EventType:  env.EventType,
		Topic:      events.TopicFor(env.EventType),
		Payload:    raw,
	}, nil
}
