package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/snapshot"
)

// Record file names, one per state slice
const (
	usersFile    = "users.json"
	roomsFile    = "rooms.json"
	messagesFile = "messages.json"
)

// Store is a file-backed snapshot store: one JSON file per slice under a
// data directory. Writes go through a temp file and an atomic rename so a
// crash mid-write never corrupts the prior record.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a file snapshot store rooted at dir, creating it if needed
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "file-snapshot")),
	}, nil
}

// Ensure Store implements the interface
var _ snapshot.Store = (*Store)(nil)

func (s *Store) SaveUsers(ctx context.Context, users map[string]model.User) error {
	return s.write(usersFile, users)
}

func (s *Store) LoadUsers(ctx context.Context) (map[string]model.User, error) {
	var users map[string]model.User
	if err := s.read(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) SaveRooms(ctx context.Context, rooms map[string]model.Room) error {
	return s.write(roomsFile, rooms)
}

func (s *Store) LoadRooms(ctx context.Context) (map[string]model.Room, error) {
	var rooms map[string]model.Room
	if err := s.read(roomsFile, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Store) SaveMessages(ctx context.Context, logs map[string][]model.Message) error {
	return s.write(messagesFile, logs)
}

func (s *Store) LoadMessages(ctx context.Context) (map[string][]model.Message, error) {
	var logs map[string][]model.Message
	if err := s.read(messagesFile, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) Close() error {
	return nil
}

// write serializes the value and atomically replaces the record file
func (s *Store) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// read loads and deserializes a record file. A missing file is reported as
// model.ErrNoSnapshot; a malformed file is logged and reported the same way
// so the caller falls back to its defaults.
func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.ErrNoSnapshot
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("malformed snapshot record, treating as absent",
			slog.String("record", name),
			slog.String("error", err.Error()))
		return model.ErrNoSnapshot
	}
	return nil
}
