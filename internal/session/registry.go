package session

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/YisusLuligo/chat/internal/dependencies/clock"
)

// Session is one user's live connection. At most one exists per username at
// any instant; a new authentication replaces the prior one.
type Session struct {
	Username      string
	Handle        Handle
	LivenessToken string
	ConnectedAt   time.Time
}

// Registry tracks which users are currently reachable and via what handle.
//
// Sessions are transient and process-local: the registry starts empty on
// every boot and is never persisted. The registry is not safe for concurrent
// use; the coordinator serializes all access to it.
type Registry struct {
	clock  clock.Clock
	logger *slog.Logger

	sessions map[string]*Session // by username
	byToken  map[string]string   // liveness token -> username
}

// NewRegistry creates an empty session registry
func NewRegistry(clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		clock:    clk,
		logger:   logger.With(slog.String("component", "session-registry")),
		sessions: make(map[string]*Session),
		byToken:  make(map[string]string),
	}
}

// Install registers a session for the user, replacing and invalidating any
// prior session for the same username. It returns the liveness token the
// transport must present when reporting the handle unreachable, and whether
// a prior session was replaced. Install never fails.
func (r *Registry) Install(username string, h Handle) (token string, replaced bool) {
	if prior, ok := r.sessions[username]; ok {
		delete(r.byToken, prior.LivenessToken)
		replaced = true
	}

	token = uuid.NewString()
	r.sessions[username] = &Session{
		Username:      username,
		Handle:        h,
		LivenessToken: token,
		ConnectedAt:   r.clock.Now(),
	}
	r.byToken[token] = username

	r.logger.Debug("session installed",
		slog.String("username", username),
		slog.Bool("replaced", replaced))
	return token, replaced
}

// Remove deregisters the user's session if present and cancels its liveness
// watch. Idempotent: removing an absent session is a no-op.
func (r *Registry) Remove(username string) bool {
	s, ok := r.sessions[username]
	if !ok {
		return false
	}
	delete(r.byToken, s.LivenessToken)
	delete(r.sessions, username)
	r.logger.Debug("session removed", slog.String("username", username))
	return true
}

// Lookup returns the user's current session, if any
func (r *Registry) Lookup(username string) (*Session, bool) {
	s, ok := r.sessions[username]
	return s, ok
}

// ResolveToken maps a liveness token back to the owning username. Tokens of
// replaced or removed sessions no longer resolve, so a stale unreachable
// report for a retired handle is ignored harmlessly.
func (r *Registry) ResolveToken(token string) (string, bool) {
	username, ok := r.byToken[token]
	return username, ok
}

// Connected returns the usernames of all current sessions, sorted
func (r *Registry) Connected() []string {
	users := make([]string, 0, len(r.sessions))
	for username := range r.sessions {
		users = append(users, username)
	}
	sort.Strings(users)
	return users
}

// All returns every current session
func (r *Registry) All() []*Session {
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Count returns the number of current sessions
func (r *Registry) Count() int {
	return len(r.sessions)
}

// Sweep health-checks every session's handle and removes the unreachable
// ones, returning the usernames removed. This backs the periodic cleanup and
// may be called repeatedly.
func (r *Registry) Sweep() []string {
	var removed []string
	for username, s := range r.sessions {
		if s.Handle.Alive() {
			continue
		}
		delete(r.byToken, s.LivenessToken)
		delete(r.sessions, username)
		removed = append(removed, username)
	}
	if len(removed) > 0 {
		sort.Strings(removed)
		r.logger.Info("swept dead sessions",
			slog.Int("removed", len(removed)),
			slog.Any("usernames", removed))
	}
	return removed
}
