package memory

import (
	"context"
	"sync"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/snapshot"
)

// Store is an in-memory snapshot store. State does not survive the process;
// it exists for tests and for running the server fully ephemeral.
type Store struct {
	mu sync.RWMutex

	users map[string]model.User
	rooms map[string]model.Room
	logs  map[string][]model.Message
}

// New creates an empty in-memory snapshot store
func New() *Store {
	return &Store{}
}

// Ensure Store implements the interface
var _ snapshot.Store = (*Store)(nil)

func (s *Store) SaveUsers(ctx context.Context, users map[string]model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = copyUsers(users)
	return nil
}

func (s *Store) LoadUsers(ctx context.Context) (map[string]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.users == nil {
		return nil, model.ErrNoSnapshot
	}
	return copyUsers(s.users), nil
}

func (s *Store) SaveRooms(ctx context.Context, rooms map[string]model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = copyRooms(rooms)
	return nil
}

func (s *Store) LoadRooms(ctx context.Context) (map[string]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rooms == nil {
		return nil, model.ErrNoSnapshot
	}
	return copyRooms(s.rooms), nil
}

func (s *Store) SaveMessages(ctx context.Context, logs map[string][]model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = copyLogs(logs)
	return nil
}

func (s *Store) LoadMessages(ctx context.Context) (map[string][]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logs == nil {
		return nil, model.ErrNoSnapshot
	}
	return copyLogs(s.logs), nil
}

func (s *Store) Close() error {
	return nil
}

func copyUsers(in map[string]model.User) map[string]model.User {
	out := make(map[string]model.User, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyRooms(in map[string]model.Room) map[string]model.Room {
	out := make(map[string]model.Room, len(in))
	for k, v := range in {
		members := make([]string, len(v.Members))
		copy(members, v.Members)
		v.Members = members
		out[k] = v
	}
	return out
}

func copyLogs(in map[string][]model.Message) map[string][]model.Message {
	out := make(map[string][]model.Message, len(in))
	for k, v := range in {
		msgs := make([]model.Message, len(v))
		copy(msgs, v)
		out[k] = msgs
	}
	return out
}
