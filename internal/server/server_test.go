package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/YisusLuligo/chat/internal/coordinator"
	"github.com/YisusLuligo/chat/internal/dependencies/clock"
	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/snapshot/memory"
	"github.com/YisusLuligo/chat/internal/testutil"
)

// frame is the union of everything the server can write, for test decoding
type frame struct {
	Kind     string          `json:"kind"`
	Op       string          `json:"op"`
	OK       bool            `json:"ok"`
	Error    string          `json:"error"`
	Users    []string        `json:"users"`
	Rooms    []string        `json:"rooms"`
	Messages []model.Message `json:"messages"`
	Event    model.Event     `json:"event"`
}

// wsConn wraps a test-side websocket connection
type wsConn struct {
	s    *TransportSuite
	conn *websocket.Conn
}

type TransportSuite struct {
	suite.Suite
	coord *coordinator.Coordinator
	srv   *httptest.Server
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	s.coord = coordinator.New(memory.New(), clock.New(), coordinator.DefaultConfig(), testutil.NopLogger())
	s.Require().NoError(s.coord.Start(context.Background()))

	s.srv = httptest.NewServer(NewRouter(RouterConfig{
		Logger:      testutil.NopLogger(),
		Coordinator: s.coord,
	}))
}

func (s *TransportSuite) TearDownTest() {
	s.srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.coord.Stop(ctx)
}

func (s *TransportSuite) dial() *wsConn {
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return &wsConn{s: s, conn: conn}
}

func (c *wsConn) send(cmd Command) {
	c.s.Require().NoError(c.conn.WriteJSON(cmd))
}

// response reads frames until the next response, discarding pushed events
func (c *wsConn) response() frame {
	for {
		f := c.next()
		if f.Kind == KindResponse {
			return f
		}
	}
}

// event reads frames until an event whose body contains the fragment
func (c *wsConn) event(fragment string) model.Event {
	for {
		f := c.next()
		if f.Kind == KindEvent && strings.Contains(f.Event.Body, fragment) {
			return f.Event
		}
	}
}

func (c *wsConn) next() frame {
	c.s.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	var f frame
	c.s.Require().NoError(c.conn.ReadJSON(&f))
	return f
}

func (c *wsConn) login(username, password string) {
	c.send(Command{Op: OpLogin, Username: username, Password: password})
	resp := c.response()
	c.s.Require().True(resp.OK, "login failed: %s", resp.Error)
}

func (s *TransportSuite) TestRegisterAndAnnounce() {
	c := s.dial()
	c.send(Command{Op: OpRegister, Username: "alice", Password: "s3cret"})

	resp := c.response()
	s.True(resp.OK)
	s.Equal(OpRegister, resp.Op)

	ev := c.event("alice has registered")
	s.Equal(model.EventSystem, ev.Type)
}

func (s *TransportSuite) TestLoginWithBadPasswordFails() {
	c := s.dial()
	c.send(Command{Op: OpLogin, Username: "admin", Password: "wrong"})

	resp := c.response()
	s.False(resp.OK)
	s.NotEmpty(resp.Error)
}

func (s *TransportSuite) TestSendRequiresAuthentication() {
	c := s.dial()
	c.send(Command{Op: OpSend, Room: model.DefaultRoom, Body: "hi"})

	resp := c.response()
	s.False(resp.OK)
	s.Equal("not authenticated", resp.Error)
}

func (s *TransportSuite) TestUnknownOperationIsRejected() {
	c := s.dial()
	c.send(Command{Op: "frobnicate"})

	resp := c.response()
	s.False(resp.OK)
	s.Equal("unknown operation", resp.Error)
}

func (s *TransportSuite) TestMessageFansOutToRoomMembers() {
	alice := s.dial()
	alice.send(Command{Op: OpRegister, Username: "alice", Password: "pw"})
	alice.response()

	admin := s.dial()
	admin.login("admin", "admin123")

	// alice is not yet a member of General; the send auto-joins the sender.
	alice.send(Command{Op: OpSend, Room: model.DefaultRoom, Body: "hello everyone"})

	ev := alice.event("hello everyone")
	s.Equal(model.EventMessage, ev.Type)
	s.Equal(model.DefaultRoom, ev.Room)
	s.Equal("alice", ev.From)

	// admin is a member of General and receives it too
	adminEv := admin.event("hello everyone")
	s.Equal("alice", adminEv.From)
}

func (s *TransportSuite) TestCreateJoinAndHistoryOverSocket() {
	admin := s.dial()
	admin.login("admin", "admin123")

	admin.send(Command{Op: OpCreateRoom, Room: "gaming"})
	s.True(admin.response().OK)

	user := s.dial()
	user.login("usuario1", "pass123")
	user.send(Command{Op: OpJoinRoom, Room: "gaming"})
	s.True(user.response().OK)

	admin.send(Command{Op: OpSend, Room: "gaming", Body: "first post"})
	user.event("first post")

	user.send(Command{Op: OpHistory, Room: "gaming"})
	resp := user.response()
	s.Require().True(resp.OK)
	s.Require().Len(resp.Messages, 1)
	s.Equal("admin", resp.Messages[0].From)
	s.Equal("first post", resp.Messages[0].Body)
}

func (s *TransportSuite) TestUsersAndRoomsQueries() {
	admin := s.dial()
	admin.login("admin", "admin123")

	admin.send(Command{Op: OpUsers})
	resp := admin.response()
	s.Require().True(resp.OK)
	s.Equal([]string{"admin"}, resp.Users)

	admin.send(Command{Op: OpRooms})
	resp = admin.response()
	s.Require().True(resp.OK)
	s.Equal([]string{model.DefaultRoom}, resp.Rooms)
}

func (s *TransportSuite) TestDisconnectRetiresSession() {
	admin := s.dial()
	admin.login("admin", "admin123")

	user := s.dial()
	user.login("usuario1", "pass123")
	_ = user.conn.Close()

	// The read pump notices the closed peer and reports the handle
	// unreachable; everyone else sees the departure.
	ev := admin.event("usuario1 has left the chat")
	s.Equal(model.EventSystem, ev.Type)

	s.Eventually(func() bool {
		return s.coord.SessionCount() == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *TransportSuite) TestHealthEndpoint() {
	resp, err := http.Get(s.srv.URL + "/healthz")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("ok", body["status"])
}

func (s *TransportSuite) TestRestViews() {
	admin := s.dial()
	admin.login("admin", "admin123")
	admin.send(Command{Op: OpSend, Room: model.DefaultRoom, Body: "rest visible"})
	admin.event("rest visible")

	resp, err := http.Get(s.srv.URL + "/api/v1/rooms")
	s.Require().NoError(err)
	var rooms struct {
		Rooms []string `json:"rooms"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&rooms))
	resp.Body.Close()
	s.Equal([]string{model.DefaultRoom}, rooms.Rooms)

	resp, err = http.Get(fmt.Sprintf("%s/api/v1/rooms/%s/history", s.srv.URL, model.DefaultRoom))
	s.Require().NoError(err)
	var history struct {
		Room     string          `json:"room"`
		Messages []model.Message `json:"messages"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&history))
	resp.Body.Close()
	s.Equal(model.DefaultRoom, history.Room)
	s.Require().Len(history.Messages, 1)
	s.Equal("rest visible", history.Messages[0].Body)

	resp, err = http.Get(s.srv.URL + "/api/v1/users")
	s.Require().NoError(err)
	var users struct {
		Users []string `json:"users"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()
	s.Equal([]string{"admin"}, users.Users)
}
