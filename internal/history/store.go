package history

import (
	"log/slog"

	"github.com/YisusLuligo/chat/internal/model"
)

// Store owns per-room message history. Logs are append-only and stored
// internally most-recent-first; readers always see chronological order.
//
// The store is not safe for concurrent use; the coordinator serializes all
// access to it.
type Store struct {
	logger *slog.Logger
	logs   map[string][]model.Message
}

// NewStore creates an empty message store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger: logger.With(slog.String("component", "message-store")),
		logs:   make(map[string][]model.Message),
	}
}

// Append inserts the message at the head of the room's log, initializing the
// log if the room has none yet.
func (s *Store) Append(room string, msg model.Message) {
	s.logs[room] = append([]model.Message{msg}, s.logs[room]...)
}

// History returns the room's messages oldest-first. A room with no log
// yields an empty sequence, not an error.
func (s *Store) History(room string) []model.Message {
	log := s.logs[room]
	out := make([]model.Message, len(log))
	for i, msg := range log {
		out[len(log)-1-i] = msg
	}
	return out
}

// EnsureLog guarantees the room has a (possibly empty) log entry. Used to
// back-fill rooms that exist but predate the persisted message record.
func (s *Store) EnsureLog(room string) {
	if _, ok := s.logs[room]; !ok {
		s.logs[room] = []model.Message{}
	}
}

// Len returns the number of messages in the room's log
func (s *Store) Len(room string) int {
	return len(s.logs[room])
}

// Snapshot returns a copy of the store's state for persistence, in the
// internal most-recent-first order.
func (s *Store) Snapshot() map[string][]model.Message {
	out := make(map[string][]model.Message, len(s.logs))
	for room, log := range s.logs {
		msgs := make([]model.Message, len(log))
		copy(msgs, log)
		out[room] = msgs
	}
	return out
}

// Restore replaces the store's state with a loaded snapshot
func (s *Store) Restore(logs map[string][]model.Message) {
	s.logs = make(map[string][]model.Message, len(logs))
	for room, log := range logs {
		msgs := make([]model.Message, len(log))
		copy(msgs, log)
		s.logs[room] = msgs
	}
}
