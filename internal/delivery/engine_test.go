package delivery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/session"
	"github.com/YisusLuligo/chat/internal/testutil"
)

type fakeHandle struct {
	alive   bool
	pushErr error
	events  []model.Event
}

func (h *fakeHandle) Alive() bool { return h.alive }

func (h *fakeHandle) Push(ev model.Event) error {
	if h.pushErr != nil {
		return h.pushErr
	}
	h.events = append(h.events, ev)
	return nil
}

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.engine = NewEngine(testutil.NopLogger())
}

func (s *EngineSuite) target(username string, h *fakeHandle) *session.Session {
	return &session.Session{Username: username, Handle: h}
}

func (s *EngineSuite) TestDeliverReachesLiveHandles() {
	alice := &fakeHandle{alive: true}
	bob := &fakeHandle{alive: true}
	ev := model.SystemEvent("hello", 1000)

	failed := s.engine.Deliver(ev, []*session.Session{
		s.target("alice", alice),
		s.target("bob", bob),
	})

	s.Empty(failed)
	s.Require().Len(alice.events, 1)
	s.Require().Len(bob.events, 1)
	s.Equal("hello", alice.events[0].Body)
}

func (s *EngineSuite) TestDeadHandleIsSkippedNotPushed() {
	dead := &fakeHandle{alive: false}
	live := &fakeHandle{alive: true}

	failed := s.engine.Deliver(model.SystemEvent("hello", 1000), []*session.Session{
		s.target("alice", dead),
		s.target("bob", live),
	})

	s.Equal([]string{"alice"}, failed)
	s.Empty(dead.events)
	s.Len(live.events, 1)
}

func (s *EngineSuite) TestPushFailureIsCollected() {
	failing := &fakeHandle{alive: true, pushErr: errors.New("buffer full")}
	live := &fakeHandle{alive: true}

	failed := s.engine.Deliver(model.SystemEvent("hello", 1000), []*session.Session{
		s.target("alice", failing),
		s.target("bob", live),
	})

	s.Equal([]string{"alice"}, failed)
	s.Len(live.events, 1)
}

func (s *EngineSuite) TestDeliverToNobodySucceeds() {
	failed := s.engine.Deliver(model.SystemEvent("hello", 1000), nil)
	s.Empty(failed)
}
