package room

import (
	"log/slog"
	"sort"

	"github.com/YisusLuligo/chat/internal/model"
)

// Directory owns room creation and membership. Room names are case-sensitive
// and rooms, once created, are permanent.
//
// The directory is not safe for concurrent use; the coordinator serializes
// all access to it.
type Directory struct {
	logger *slog.Logger
	rooms  map[string]*model.Room
}

// NewDirectory creates an empty room directory
func NewDirectory(logger *slog.Logger) *Directory {
	return &Directory{
		logger: logger.With(slog.String("component", "room-directory")),
		rooms:  make(map[string]*model.Room),
	}
}

// Create creates a room with the creator as its only member.
// Fails with model.ErrRoomExists if the name is already taken.
func (d *Directory) Create(creator, name string) error {
	if _, ok := d.rooms[name]; ok {
		return model.ErrRoomExists
	}
	d.rooms[name] = &model.Room{
		Name:    name,
		Creator: creator,
		Members: []string{creator},
	}
	d.logger.Info("room created",
		slog.String("room", name),
		slog.String("creator", creator))
	return nil
}

// Join adds the user to the room's membership. Joining a room the user is
// already a member of succeeds as a no-op; the return reports whether the
// membership actually changed. Fails with model.ErrRoomNotFound if the room
// does not exist.
func (d *Directory) Join(username, name string) (joined bool, err error) {
	r, ok := d.rooms[name]
	if !ok {
		return false, model.ErrRoomNotFound
	}
	if r.HasMember(username) {
		return false, nil
	}
	r.AddMember(username)
	return true, nil
}

// EnsureMember silently adds the user to the room if not already a member.
// This backs the send-message path: sending to a room you have not joined
// auto-joins you. It reports whether the membership actually changed.
func (d *Directory) EnsureMember(username, name string) (joined bool, err error) {
	r, ok := d.rooms[name]
	if !ok {
		return false, model.ErrRoomNotFound
	}
	if r.HasMember(username) {
		return false, nil
	}
	r.AddMember(username)
	d.logger.Debug("user auto-joined room",
		slog.String("room", name),
		slog.String("username", username))
	return true, nil
}

// Exists reports whether the room exists
func (d *Directory) Exists(name string) bool {
	_, ok := d.rooms[name]
	return ok
}

// Rooms returns all room names, sorted
func (d *Directory) Rooms() []string {
	names := make([]string, 0, len(d.rooms))
	for name := range d.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns the room's membership, or model.ErrRoomNotFound
func (d *Directory) Members(name string) ([]string, error) {
	r, ok := d.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	members := make([]string, len(r.Members))
	copy(members, r.Members)
	return members, nil
}

// Snapshot returns a copy of the directory's state for persistence
func (d *Directory) Snapshot() map[string]model.Room {
	out := make(map[string]model.Room, len(d.rooms))
	for name, r := range d.rooms {
		members := make([]string, len(r.Members))
		copy(members, r.Members)
		out[name] = model.Room{Name: r.Name, Creator: r.Creator, Members: members}
	}
	return out
}

// Restore replaces the directory's state with a loaded snapshot
func (d *Directory) Restore(rooms map[string]model.Room) {
	d.rooms = make(map[string]*model.Room, len(rooms))
	for name, r := range rooms {
		room := r
		d.rooms[name] = &room
	}
}
