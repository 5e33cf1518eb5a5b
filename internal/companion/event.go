package companion

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the kind of editor activity reported by the extension
type EventType string

const (
	EventTyping     EventType = "typing"
	EventIdle       EventType = "idle"
	EventSaving     EventType = "saving"
	EventError      EventType = "error"
	EventGitPush    EventType = "git_push"
	EventGitPull    EventType = "git_pull"
	EventDebugStart EventType = "debug_start"
	EventDebugStop  EventType = "debug_stop"
)

var knownEvents = map[EventType]bool{
	EventTyping: true, EventIdle: true, EventSaving: true, EventError: true,
	EventGitPush: true, EventGitPull: true, EventDebugStart: true, EventDebugStop: true,
}

// EventData carries the optional details of an event
type EventData struct {
	Language   string `json:"language,omitempty"`
	Filename   string `json:"filename,omitempty"`
	ErrorCount *int   `json:"errorCount,omitempty"`
}

// Event is one message from the extension
type Event struct {
	Type       EventType  `json:"type"`
	Data       *EventData `json:"data,omitempty"`
	ReceivedAt time.Time  `json:"receivedAt"`
}

// ParseEvent decodes a wire message and rejects unknown event types
func ParseEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if !knownEvents[ev.Type] {
		return Event{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}
