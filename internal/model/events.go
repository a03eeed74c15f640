package model

import "fmt"

// EventType identifies the type of event pushed to connected clients
type EventType string

const (
	// EventSystem is a broadcast to every connected session regardless of room
	EventSystem EventType = "system"
	// EventNotice is scoped to the members of a single room
	EventNotice EventType = "room_notice"
	// EventMessage carries a chat message to the members of a room
	EventMessage EventType = "message"
)

// Event is the unit of delivery to a session handle
type Event struct {
	Type      EventType `json:"type"`
	Room      string    `json:"room,omitempty"`
	From      string    `json:"from,omitempty"`
	Body      string    `json:"body"`
	Timestamp int64     `json:"timestamp"`
}

// SystemEvent builds a broadcast event for all connected sessions
func SystemEvent(body string, ts int64) Event {
	return Event{
		Type:      EventSystem,
		Body:      body,
		Timestamp: ts,
	}
}

// NoticeEvent builds a room-scoped notice. The body carries the
// "[<room>] <text>" presentation so thin clients can print it directly.
func NoticeEvent(room, text string, ts int64) Event {
	return Event{
		Type:      EventNotice,
		Room:      room,
		Body:      fmt.Sprintf("[%s] %s", room, text),
		Timestamp: ts,
	}
}

// ChatEvent builds the delivery event for an appended chat message
func ChatEvent(room string, msg Message) Event {
	return Event{
		Type:      EventMessage,
		Room:      room,
		From:      msg.From,
		Body:      msg.Body,
		Timestamp: msg.Timestamp,
	}
}
