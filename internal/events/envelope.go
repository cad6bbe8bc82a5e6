package events

import (
	"fmt"
	"time"
)

// EventEnvelope is the common wrapper around every published payload.
type EventEnvelope[T any] struct {
	EventID      string    `json:"eventId"`
	EventName    string    `json:"eventName"`
	EventVersion int       `json:"eventVersion"`
	Producer     string    `json:"producer"`
	PartitionKey string    `json:"partitionKey"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      T         `json:"payload"`
}

// Validate ensures the envelope carries the expected event identity.
func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	return nil
}
