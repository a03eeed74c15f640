package model

// DefaultRoom is created on first startup when no rooms were persisted.
const DefaultRoom = "General"

// Room is a named, permanent message channel with open membership.
// Membership never contains duplicates; the creator is a member from the
// moment the room exists.
type Room struct {
	Name    string   `json:"name"`
	Creator string   `json:"creator"`
	Members []string `json:"members"`
}

// HasMember reports whether the given user is a member of the room.
func (r *Room) HasMember(username string) bool {
	for _, m := range r.Members {
		if m == username {
			return true
		}
	}
	return false
}

// AddMember adds the user to the room's membership. No-op if already present.
func (r *Room) AddMember(username string) {
	if r.HasMember(username) {
		return
	}
	r.Members = append(r.Members, username)
}
