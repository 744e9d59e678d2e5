package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ExpenseCreated Type = "expense.created"
	ExpenseUpdated Type = "expense.updated"
	ExpenseDeleted Type = "expense.deleted"
	HabitToggled   Type = "habit.toggled"
	GoalCreated    Type = "goal.created"
	ReceiptScanned Type = "receipt.scanned"
)

// Event is the envelope put on the wire. Payload carries the ids and the few
// fields a consumer needs; consumers load the rest themselves.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      Type           `json:"type"`
	UserID    uuid.UUID      `json:"user_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func New(t Type, userID uuid.UUID, payload map[string]any) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      t,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher emits domain events after a successful write.
type Publisher interface {
	Publish(ctx context.Context, event *Event)
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) {}

func (NopPublisher) Close() error { return nil }
