package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeUpdated EventType = "updated"
	EventTypeCorrect EventType = "correct"
	EventTypeBlur    EventType = "blur"
)

// EntityType represents the entity an event is about
type EntityType string

const (
	EntityTypeBudget  EntityType = "budget"
	EntityTypeSurface EntityType = "surface"
)

// Event represents a message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "budget.updated"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "budget"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BudgetUpdated creates a budget.updated event carrying the full summary
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// SurfaceCorrect creates a surface.correct event instructing the editing
// client to replace a cell's content with the sanitized text
func SurfaceCorrect(text string) Event {
	return NewEvent(EventTypeCorrect, EntityTypeSurface, map[string]string{"text": text})
}

// SurfaceBlur creates a surface.blur event instructing the editing client
// to force focus loss on the active cell
func SurfaceBlur() Event {
	return NewEvent(EventTypeBlur, EntityTypeSurface, nil)
}
