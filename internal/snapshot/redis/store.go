package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/snapshot"
)

// Store is a Redis-backed snapshot store. Each state slice lives under its
// own key as a JSON value; saves replace the whole value.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a new Redis snapshot store and verifies the connection
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, logger), nil
}

// NewWithClient creates a Redis snapshot store with an existing client (for testing)
func NewWithClient(client *redis.Client, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		logger: logger.With(slog.String("component", "redis-snapshot")),
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ snapshot.Store = (*Store)(nil)

func (s *Store) SaveUsers(ctx context.Context, users map[string]model.User) error {
	return s.set(ctx, "users", users)
}

func (s *Store) LoadUsers(ctx context.Context) (map[string]model.User, error) {
	var users map[string]model.User
	if err := s.get(ctx, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) SaveRooms(ctx context.Context, rooms map[string]model.Room) error {
	return s.set(ctx, "rooms", rooms)
}

func (s *Store) LoadRooms(ctx context.Context) (map[string]model.Room, error) {
	var rooms map[string]model.Room
	if err := s.get(ctx, "rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Store) SaveMessages(ctx context.Context, logs map[string][]model.Message) error {
	return s.set(ctx, "messages", logs)
}

func (s *Store) LoadMessages(ctx context.Context) (map[string][]model.Message, error) {
	var logs map[string][]model.Message
	if err := s.get(ctx, "messages", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// set serializes the slice value and replaces its record. No TTL: chat
// state is durable until the next save.
func (s *Store) set(ctx context.Context, slice string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", slice, err)
	}
	return s.client.Set(ctx, sliceKey(slice), data, 0).Err()
}

// get loads and deserializes a slice record. redis.Nil maps to
// model.ErrNoSnapshot; a malformed value is logged and treated as absent.
func (s *Store) get(ctx context.Context, slice string, v any) error {
	data, err := s.client.Get(ctx, sliceKey(slice)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ErrNoSnapshot
		}
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("malformed snapshot record, treating as absent",
			slog.String("record", slice),
			slog.String("error", err.Error()))
		return model.ErrNoSnapshot
	}
	return nil
}
