package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical message every service puts on the wire.
// EventID is generated once, when the envelope is built, so retries and
// outbox republishes carry the same id and consumers can dedupe on it.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EntityID     string          `json:"entity_id"`
	EntityType   string          `json:"entity_type"`
	Payload      json.RawMessage `json:"payload"`
	OccurredAt   time.Time       `json:"occurred_at"`
	SourceModule string          `json:"source_module"`
}

func NewEnvelope(eventType, entityType, entityID, sourceModule string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", eventType, err)
	}

	return &Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EntityID:     entityID,
		EntityType:   entityType,
		Payload:      raw,
		OccurredAt:   time.Now().UTC(),
		SourceModule: sourceModule,
	}, nil
}

func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	if env.EventID == "" || env.EventType == "" {
		return nil, fmt.Errorf("envelope missing event_id or event_type")
	}

	return &env, nil
}

func (e *Envelope) DecodePayload(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
