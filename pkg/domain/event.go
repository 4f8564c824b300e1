package domain

import "time"

// EventType identifies what happened
type EventType string

const (
	EventTypeUserCreated EventType = "user.created"
	EventTypeItemCreated EventType = "item.created"
)

// Event is published whenever a record is created
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}
