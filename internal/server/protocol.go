package server

import "github.com/YisusLuligo/chat/internal/model"

// Operation names accepted on the WebSocket command channel
const (
	OpRegister   = "register"
	OpLogin      = "login"
	OpLogout     = "logout"
	OpCreateRoom = "create_room"
	OpJoinRoom   = "join_room"
	OpSend       = "send"
	OpUsers      = "users"
	OpRooms      = "rooms"
	OpHistory    = "history"
)

// Frame kinds distinguish responses from pushed events on the wire
const (
	KindResponse = "response"
	KindEvent    = "event"
)

// Command is one request frame from a client. Unused fields are omitted
// per operation.
type Command struct {
	Op       string `json:"op"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Room     string `json:"room,omitempty"`
	Body     string `json:"body,omitempty"`
}

// Response is the reply frame for a request/response operation.
// Fire-and-forget operations (logout, send) produce no response.
type Response struct {
	Kind     string          `json:"kind"`
	Op       string          `json:"op"`
	OK       bool            `json:"ok"`
	Error    string          `json:"error,omitempty"`
	Users    []string        `json:"users,omitempty"`
	Rooms    []string        `json:"rooms,omitempty"`
	Messages []model.Message `json:"messages,omitempty"`
}

// EventFrame wraps an event pushed to the client outside any request
type EventFrame struct {
	Kind  string      `json:"kind"`
	Event model.Event `json:"event"`
}
