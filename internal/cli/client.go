package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YisusLuligo/chat/internal/server"
)

// Client is a WebSocket client for the coordinator's command protocol
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the coordinator's /ws endpoint
func Dial(serverURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", u.String(), err)
	}

	return &Client{conn: conn}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends a command and waits for its response frame, skipping any event
// frames that arrive in between.
func (c *Client) Do(cmd server.Command) (*server.Response, error) {
	if err := c.Send(cmd); err != nil {
		return nil, err
	}

	for {
		frame, err := c.next()
		if err != nil {
			return nil, err
		}
		if frame.kind == server.KindResponse {
			return frame.response, nil
		}
	}
}

// Send writes a command without waiting for anything back (fire-and-forget
// operations produce no response frame).
func (c *Client) Send(cmd server.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// NextEvent blocks until the next pushed event frame
func (c *Client) NextEvent() (*server.EventFrame, error) {
	for {
		frame, err := c.next()
		if err != nil {
			return nil, err
		}
		if frame.kind == server.KindEvent {
			return frame.event, nil
		}
	}
}

type frame struct {
	kind     string
	response *server.Response
	event    *server.EventFrame
}

func (c *Client) next() (*frame, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch probe.Kind {
	case server.KindResponse:
		var resp server.Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		return &frame{kind: probe.Kind, response: &resp}, nil
	case server.KindEvent:
		var ev server.EventFrame
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return &frame{kind: probe.Kind, event: &ev}, nil
	default:
		return nil, fmt.Errorf("unknown frame kind %q", probe.Kind)
	}
}

// login authenticates the configured user on a fresh connection
func login(c *Client) error {
	if cfg.Username == "" {
		return fmt.Errorf("--user is required")
	}
	resp, err := c.Do(server.Command{
		Op:       server.OpLogin,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("login failed: %s", resp.Error)
	}
	return nil
}
