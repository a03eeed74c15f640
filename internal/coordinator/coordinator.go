package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YisusLuligo/chat/internal/delivery"
	"github.com/YisusLuligo/chat/internal/dependencies/clock"
	"github.com/YisusLuligo/chat/internal/history"
	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/room"
	"github.com/YisusLuligo/chat/internal/session"
	"github.com/YisusLuligo/chat/internal/snapshot"
)

// ErrStopped is returned for operations submitted after shutdown began
var ErrStopped = errors.New("coordinator stopped")

// Seed accounts installed on first run, when no user record exists yet
var seedAccounts = map[string]string{
	"admin":    "admin123",
	"usuario1": "pass123",
	"invitado": "guest123",
}

// Config holds coordinator behavior settings
type Config struct {
	// SweepInterval is how often dead sessions are swept
	SweepInterval time.Duration
	// SaveTimeout bounds each snapshot write
	SaveTimeout time.Duration
}

// DefaultConfig returns the default coordinator configuration
func DefaultConfig() Config {
	return Config{
		SweepInterval: 60 * time.Second,
		SaveTimeout:   5 * time.Second,
	}
}

type op struct {
	name string
	fn   func()
}

// Coordinator is the single authoritative owner of chat state: users,
// sessions, rooms and message history. Every mutating operation is executed
// by one goroutine draining an op queue, so operations run to completion in
// arrival order with no interleaving. Request/response operations block the
// caller until their turn completes; fire-and-forget operations (Logout,
// SendMessage, HandleUnreachable) only enqueue.
type Coordinator struct {
	cfg    Config
	logger *slog.Logger
	clock  clock.Clock
	store  snapshot.Store

	// State below is touched only from the run loop (and from Start, which
	// happens-before the loop begins).
	users    map[string]model.User
	registry *session.Registry
	rooms    *room.Directory
	history  *history.Store
	delivery *delivery.Engine

	ops      chan op
	quit     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a coordinator. Start must be called before any operation.
func New(store snapshot.Store, clk clock.Clock, cfg Config, logger *slog.Logger) *Coordinator {
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	if cfg.SaveTimeout == 0 {
		cfg.SaveTimeout = DefaultConfig().SaveTimeout
	}

	log := logger.With(slog.String("component", "coordinator"))
	return &Coordinator{
		cfg:      cfg,
		logger:   log,
		clock:    clk,
		store:    store,
		users:    make(map[string]model.User),
		registry: session.NewRegistry(clk, logger),
		rooms:    room.NewDirectory(logger),
		history:  history.NewStore(logger),
		delivery: delivery.NewEngine(logger),
		ops:      make(chan op, 128),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start loads the persisted state slices, applies the defaulting rules, and
// begins serving operations. The session registry always starts empty: all
// users are considered disconnected until they re-authenticate.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.loadOrDefault(ctx); err != nil {
		return err
	}

	go c.run()

	c.logger.Info("coordinator started",
		slog.Int("users", len(c.users)),
		slog.Int("rooms", len(c.rooms.Rooms())),
		slog.Duration("sweep_interval", c.cfg.SweepInterval))
	return nil
}

// Stop drains the coordinator and performs one final save of all three
// state slices before returning. Safe to call more than once.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.quit) })
	select {
	case <-c.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run() {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case o := <-c.ops:
			o.fn()
		case <-ticker.C:
			c.sweep()
		case <-c.quit:
			c.finalSave()
			close(c.stopped)
			return
		}
	}
}

// submit enqueues a fire-and-forget operation
func (c *Coordinator) submit(name string, fn func()) bool {
	select {
	case c.ops <- op{name: name, fn: fn}:
		return true
	case <-c.stopped:
		c.logger.Debug("operation dropped, coordinator stopped", slog.String("op", name))
		return false
	}
}

// call enqueues a request/response operation and blocks until it completes
func (c *Coordinator) call(name string, fn func()) bool {
	done := make(chan struct{})
	if !c.submit(name, func() {
		fn()
		close(done)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-c.stopped:
		return false
	}
}

// Register creates an account, installs a session for it, and announces the
// new user to everyone connected. It returns the liveness token the
// transport must present when reporting the handle unreachable.
func (c *Coordinator) Register(username, password string, h session.Handle) (string, error) {
	var (
		token string
		err   error
	)
	ok := c.call("register", func() {
		if _, exists := c.users[username]; exists {
			err = model.ErrUserExists
			return
		}

		c.users[username] = model.User{
			Username:     username,
			PasswordHash: HashPassword(password),
		}
		c.saveUsers()

		token = c.installSession(username, h)
		c.broadcastSystem(fmt.Sprintf("%s has registered and joined the chat", username))
		c.logger.Info("user registered", slog.String("username", username))
	})
	if !ok {
		return "", ErrStopped
	}
	return token, err
}

// Authenticate verifies credentials and (re)installs a session for the
// user, retiring any prior session. An empty password is the reconnect
// shortcut: it skips the hash comparison for any known username. This is a
// deliberate trust decision, not an oversight.
func (c *Coordinator) Authenticate(username, password string, h session.Handle) (string, error) {
	var (
		token string
		err   error
	)
	ok := c.call("authenticate", func() {
		u, exists := c.users[username]
		if !exists {
			err = model.ErrAuthFailed
			return
		}
		if password != "" && !VerifyPassword(password, u.PasswordHash) {
			err = model.ErrAuthFailed
			return
		}

		token = c.installSession(username, h)
		c.broadcastSystem(fmt.Sprintf("%s has joined the chat", username))
		c.logger.Info("user authenticated",
			slog.String("username", username),
			slog.Bool("reconnect", password == ""))
	})
	if !ok {
		return "", ErrStopped
	}
	return token, err
}

// Logout removes the user's session. Fire-and-forget and idempotent.
func (c *Coordinator) Logout(username string) {
	c.submit("logout", func() {
		if c.registry.Remove(username) {
			c.broadcastSystem(fmt.Sprintf("%s has left the chat", username))
			c.logger.Info("user logged out", slog.String("username", username))
		}
	})
}

// CreateRoom creates a room with the user as creator and sole member
func (c *Coordinator) CreateRoom(username, roomName string) error {
	var err error
	ok := c.call("create_room", func() {
		if err = c.rooms.Create(username, roomName); err != nil {
			return
		}
		c.history.EnsureLog(roomName)
		c.saveRooms()
		c.saveMessages()
		c.broadcastSystem(fmt.Sprintf("%s created room %s", username, roomName))
	})
	if !ok {
		return ErrStopped
	}
	return err
}

// JoinRoom adds the user to an existing room. Joining a room the user is
// already in succeeds without changing anything.
func (c *Coordinator) JoinRoom(username, roomName string) error {
	var err error
	ok := c.call("join_room", func() {
		var joined bool
		joined, err = c.rooms.Join(username, roomName)
		if err != nil || !joined {
			return
		}
		c.saveRooms()
		c.notifyRoom(roomName, fmt.Sprintf("%s has joined the room", username))
	})
	if !ok {
		return ErrStopped
	}
	return err
}

// SendMessage appends a message to the room's log and delivers it to the
// room's connected members, including the sender. Fire-and-forget: a message
// to a nonexistent room is silently dropped, and unreachable recipients are
// never surfaced to the sender. The sender is silently auto-joined if not
// yet a member.
func (c *Coordinator) SendMessage(username, roomName, body string) {
	c.submit("send_message", func() {
		if !c.rooms.Exists(roomName) {
			c.logger.Debug("message to unknown room dropped",
				slog.String("username", username),
				slog.String("room", roomName))
			return
		}

		joined, _ := c.rooms.EnsureMember(username, roomName)

		msg := model.Message{
			From:      username,
			Body:      body,
			Timestamp: clock.Millis(c.clock),
		}
		c.history.Append(roomName, msg)

		if joined {
			c.saveRooms()
		}
		c.saveMessages()

		c.deliverToRoom(roomName, model.ChatEvent(roomName, msg))
	})
}

// ConnectedUsers returns the usernames with a live session
func (c *Coordinator) ConnectedUsers() []string {
	var users []string
	c.call("list_users", func() {
		users = c.registry.Connected()
	})
	return users
}

// Rooms returns all room names
func (c *Coordinator) Rooms() []string {
	var rooms []string
	c.call("list_rooms", func() {
		rooms = c.rooms.Rooms()
	})
	return rooms
}

// History returns the room's messages in chronological order. A room with
// no messages, or no room at all, yields an empty sequence.
func (c *Coordinator) History(roomName string) []model.Message {
	var msgs []model.Message
	c.call("history", func() {
		msgs = c.history.History(roomName)
	})
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs
}

// SessionCount returns the number of live sessions
func (c *Coordinator) SessionCount() int {
	var n int
	c.call("session_count", func() {
		n = c.registry.Count()
	})
	return n
}

// HandleUnreachable reports that a handle became permanently unreachable,
// identified by the liveness token issued when its session was installed.
// The out-of-band signal is funneled through the op queue like any other
// operation. Tokens of already-replaced sessions resolve to nothing and are
// ignored, so a late report cannot tear down a newer session.
func (c *Coordinator) HandleUnreachable(token string) {
	c.submit("handle_unreachable", func() {
		username, ok := c.registry.ResolveToken(token)
		if !ok {
			return
		}
		c.registry.Remove(username)
		c.broadcastSystem(fmt.Sprintf("%s has left the chat", username))
		c.logger.Info("session dropped, handle unreachable", slog.String("username", username))
	})
}

// internal helpers, run-loop only

func (c *Coordinator) installSession(username string, h session.Handle) string {
	token, replaced := c.registry.Install(username, h)
	if replaced {
		c.logger.Info("prior session replaced", slog.String("username", username))
	}
	return token
}

func (c *Coordinator) broadcastSystem(text string) {
	ev := model.SystemEvent(text, clock.Millis(c.clock))
	c.delivery.Deliver(ev, c.registry.All())
}

func (c *Coordinator) notifyRoom(roomName, text string) {
	ev := model.NoticeEvent(roomName, text, clock.Millis(c.clock))
	c.deliverToRoom(roomName, ev)
}

func (c *Coordinator) deliverToRoom(roomName string, ev model.Event) {
	members, err := c.rooms.Members(roomName)
	if err != nil {
		return
	}
	var targets []*session.Session
	for _, member := range members {
		if s, ok := c.registry.Lookup(member); ok {
			targets = append(targets, s)
		}
	}
	c.delivery.Deliver(ev, targets)
}

func (c *Coordinator) sweep() {
	for _, username := range c.registry.Sweep() {
		c.broadcastSystem(fmt.Sprintf("%s has left the chat", username))
	}
}

func (c *Coordinator) loadOrDefault(ctx context.Context) error {
	users, err := c.store.LoadUsers(ctx)
	switch {
	case err == nil:
		c.users = users
	case errors.Is(err, model.ErrNoSnapshot):
		c.users = make(map[string]model.User, len(seedAccounts))
		for username, password := range seedAccounts {
			c.users[username] = model.User{
				Username:     username,
				PasswordHash: HashPassword(password),
			}
		}
		c.logger.Info("no user record, seeded default accounts",
			slog.Int("count", len(seedAccounts)))
	default:
		return fmt.Errorf("loading users: %w", err)
	}

	rooms, err := c.store.LoadRooms(ctx)
	switch {
	case err == nil:
		c.rooms.Restore(rooms)
	case errors.Is(err, model.ErrNoSnapshot):
		c.rooms.Restore(map[string]model.Room{
			model.DefaultRoom: {
				Name:    model.DefaultRoom,
				Creator: "admin",
				Members: []string{"admin"},
			},
		})
		c.logger.Info("no room record, created default room",
			slog.String("room", model.DefaultRoom))
	default:
		return fmt.Errorf("loading rooms: %w", err)
	}

	logs, err := c.store.LoadMessages(ctx)
	switch {
	case err == nil:
		c.history.Restore(logs)
	case errors.Is(err, model.ErrNoSnapshot):
		c.history.Restore(map[string][]model.Message{})
	default:
		return fmt.Errorf("loading messages: %w", err)
	}

	// Every room is guaranteed a log entry, even when the persisted message
	// record predates the room.
	for _, name := range c.rooms.Rooms() {
		c.history.EnsureLog(name)
	}

	return nil
}

// Snapshot writes are best-effort: a failure is logged and in-memory state
// is retained; the next save attempt is independent.

func (c *Coordinator) saveUsers() {
	ctx, cancel := c.saveContext()
	defer cancel()
	users := make(map[string]model.User, len(c.users))
	for k, v := range c.users {
		users[k] = v
	}
	if err := c.store.SaveUsers(ctx, users); err != nil {
		c.logger.Error("user snapshot save failed, state kept in memory",
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) saveRooms() {
	ctx, cancel := c.saveContext()
	defer cancel()
	if err := c.store.SaveRooms(ctx, c.rooms.Snapshot()); err != nil {
		c.logger.Error("room snapshot save failed, state kept in memory",
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) saveMessages() {
	ctx, cancel := c.saveContext()
	defer cancel()
	if err := c.store.SaveMessages(ctx, c.history.Snapshot()); err != nil {
		c.logger.Error("message snapshot save failed, state kept in memory",
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) saveContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.cfg.SaveTimeout)
}

func (c *Coordinator) finalSave() {
	c.saveUsers()
	c.saveRooms()
	c.saveMessages()
	c.logger.Info("final snapshot saved")
}
