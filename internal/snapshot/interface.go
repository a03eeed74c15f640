package snapshot

import (
	"context"

	"github.com/YisusLuligo/chat/internal/model"
)

// Store persists the three durable state slices as whole-state snapshots.
// Each save writes the entire current value of that slice; there is no
// incremental log.
//
// Load returns model.ErrNoSnapshot when no prior record exists. A malformed
// record is treated the same way so the caller's defaulting rules apply.
type Store interface {
	// User slice
	SaveUsers(ctx context.Context, users map[string]model.User) error
	LoadUsers(ctx context.Context) (map[string]model.User, error)

	// Room slice
	SaveRooms(ctx context.Context, rooms map[string]model.Room) error
	LoadRooms(ctx context.Context) (map[string]model.Room, error)

	// Message slice, keyed by room, most-recent-first as stored in memory
	SaveMessages(ctx context.Context, logs map[string][]model.Message) error
	LoadMessages(ctx context.Context) (map[string][]model.Message, error)

	Close() error
}
