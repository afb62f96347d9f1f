package app

import (
	"time"

	"lightlab/domain/core"
)

// EventType defines the run lifecycle events published to the UI.
type EventType string

const (
	EventTypeRunStarted   EventType = "run_started"
	EventTypeRunCompleted EventType = "run_completed"
	EventTypeRunFailed    EventType = "run_failed"
)

// Event is one run lifecycle notification.
type Event struct {
	Type       EventType   `json:"type"`
	RunID      core.RunID  `json:"run_id"`
	Identifier string      `json:"identifier"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       interface{} `json:"data,omitempty"`
}

// RunCompletedData rides on run_completed events.
type RunCompletedData struct {
	Outcome          string  `json:"outcome"`
	PeriodAtMaxPower float64 `json:"period_at_max_power,omitempty"`
	DurationMS       int64   `json:"duration_ms"`
}

// RunFailedData rides on run_failed events.
type RunFailedData struct {
	Error string `json:"error"`
}

// EventPublisher receives run lifecycle events. Implementations must
// not block; a slow consumer is the publisher's problem to shed.
type EventPublisher interface {
	Publish(Event)
}

// nopPublisher drops events when no publisher is wired.
type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
