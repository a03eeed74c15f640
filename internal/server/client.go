package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YisusLuligo/chat/internal/coordinator"
	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/session"
)

const (
	// writeWait bounds a single write to the peer
	writeWait = 10 * time.Second
	// pongWait is how long the read side tolerates silence from the peer
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait
	pingPeriod = 54 * time.Second
	// maxMessageSize limits inbound command frames
	maxMessageSize = 8192
	// sendBuffer is the per-client outbound queue; a full queue drops events
	sendBuffer = 256
)

var (
	errClientClosed = errors.New("client connection closed")
	errBufferFull   = errors.New("client send buffer full")
)

// client is one WebSocket connection. It doubles as the coordinator's
// session handle: the coordinator health-checks it via Alive and pushes
// events to it via Push.
type client struct {
	conn   *websocket.Conn
	coord  *coordinator.Coordinator
	logger *slog.Logger
	send   chan []byte

	mu       sync.Mutex
	closed   bool
	username string
	token    string
}

// Ensure the connection satisfies the session handle contract
var _ session.Handle = (*client)(nil)

func newClient(conn *websocket.Conn, coord *coordinator.Coordinator, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		coord:  coord,
		logger: logger.With(slog.String("remote", conn.RemoteAddr().String())),
		send:   make(chan []byte, sendBuffer),
	}
}

// Alive reports whether the connection is still usable. It never blocks;
// actual peer liveness is driven by the ping/pong deadlines on the pumps.
func (c *client) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Push queues an event frame for the client. Send-or-drop: a full buffer
// is an error for the caller to count, never a stall.
func (c *client) Push(ev model.Event) error {
	data, err := json.Marshal(EventFrame{Kind: KindEvent, Event: ev})
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *client) enqueue(data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errClientClosed
	}
	c.mu.Unlock()

	select {
	case c.send <- data:
		return nil
	default:
		return errBufferFull
	}
}

// run starts the write pump and blocks on the read pump until the
// connection dies.
func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		c.handleCommand(data)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown marks the handle dead and reports it unreachable so the
// coordinator retires the session through its own queue.
func (c *client) teardown() {
	c.mu.Lock()
	c.closed = true
	token := c.token
	c.mu.Unlock()

	_ = c.conn.Close()

	if token != "" {
		c.coord.HandleUnreachable(token)
	}
}

func (c *client) identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *client) setIdentity(username, token string) {
	c.mu.Lock()
	c.username = username
	c.token = token
	c.mu.Unlock()
}

func (c *client) clearIdentity() {
	c.mu.Lock()
	c.username = ""
	c.token = ""
	c.mu.Unlock()
}

func (c *client) handleCommand(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.respondError("", "invalid command frame")
		return
	}

	switch cmd.Op {
	case OpRegister:
		token, err := c.coord.Register(cmd.Username, cmd.Password, c)
		if err != nil {
			c.respondError(cmd.Op, err.Error())
			return
		}
		c.setIdentity(cmd.Username, token)
		c.respond(Response{Op: cmd.Op, OK: true})

	case OpLogin:
		token, err := c.coord.Authenticate(cmd.Username, cmd.Password, c)
		if err != nil {
			c.respondError(cmd.Op, err.Error())
			return
		}
		c.setIdentity(cmd.Username, token)
		c.respond(Response{Op: cmd.Op, OK: true})

	case OpLogout:
		if username := c.identity(); username != "" {
			c.coord.Logout(username)
			c.clearIdentity()
		}

	case OpSend:
		username := c.identity()
		if username == "" {
			c.respondError(cmd.Op, "not authenticated")
			return
		}
		c.coord.SendMessage(username, cmd.Room, cmd.Body)

	case OpCreateRoom:
		username := c.identity()
		if username == "" {
			c.respondError(cmd.Op, "not authenticated")
			return
		}
		if err := c.coord.CreateRoom(username, cmd.Room); err != nil {
			c.respondError(cmd.Op, err.Error())
			return
		}
		c.respond(Response{Op: cmd.Op, OK: true})

	case OpJoinRoom:
		username := c.identity()
		if username == "" {
			c.respondError(cmd.Op, "not authenticated")
			return
		}
		if err := c.coord.JoinRoom(username, cmd.Room); err != nil {
			c.respondError(cmd.Op, err.Error())
			return
		}
		c.respond(Response{Op: cmd.Op, OK: true})

	case OpUsers:
		c.respond(Response{Op: cmd.Op, OK: true, Users: c.coord.ConnectedUsers()})

	case OpRooms:
		c.respond(Response{Op: cmd.Op, OK: true, Rooms: c.coord.Rooms()})

	case OpHistory:
		c.respond(Response{Op: cmd.Op, OK: true, Messages: c.coord.History(cmd.Room)})

	default:
		c.respondError(cmd.Op, "unknown operation")
	}
}

func (c *client) respond(resp Response) {
	resp.Kind = KindResponse
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.enqueue(data); err != nil {
		c.logger.Debug("response dropped", slog.String("error", err.Error()))
	}
}

func (c *client) respondError(op, msg string) {
	c.respond(Response{Op: op, OK: false, Error: msg})
}
