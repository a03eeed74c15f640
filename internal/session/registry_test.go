package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/YisusLuligo/chat/internal/dependencies/mocks"
	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/testutil"
)

type fakeHandle struct {
	alive  bool
	events []model.Event
}

func (h *fakeHandle) Alive() bool { return h.alive }

func (h *fakeHandle) Push(ev model.Event) error {
	h.events = append(h.events, ev)
	return nil
}

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = NewRegistry(s.clock, testutil.NopLogger())
}

func (s *RegistrySuite) TestInstallCreatesSession() {
	h := &fakeHandle{alive: true}

	token, replaced := s.registry.Install("alice", h)

	s.NotEmpty(token)
	s.False(replaced)

	sess, ok := s.registry.Lookup("alice")
	s.Require().True(ok)
	s.Equal("alice", sess.Username)
	s.Equal(token, sess.LivenessToken)
	s.Equal(s.clock.Now(), sess.ConnectedAt)
}

func (s *RegistrySuite) TestInstallReplacesPriorSession() {
	first := &fakeHandle{alive: true}
	second := &fakeHandle{alive: true}

	oldToken, _ := s.registry.Install("alice", first)
	newToken, replaced := s.registry.Install("alice", second)

	s.True(replaced)
	s.NotEqual(oldToken, newToken)
	s.Equal(1, s.registry.Count())

	// Old token must no longer resolve
	_, ok := s.registry.ResolveToken(oldToken)
	s.False(ok)

	username, ok := s.registry.ResolveToken(newToken)
	s.Require().True(ok)
	s.Equal("alice", username)
}

func (s *RegistrySuite) TestRemoveIsIdempotent() {
	s.registry.Install("alice", &fakeHandle{alive: true})

	s.True(s.registry.Remove("alice"))
	s.False(s.registry.Remove("alice"))
	s.False(s.registry.Remove("never-existed"))
	s.Equal(0, s.registry.Count())
}

func (s *RegistrySuite) TestRemoveInvalidatesToken() {
	token, _ := s.registry.Install("alice", &fakeHandle{alive: true})
	s.registry.Remove("alice")

	_, ok := s.registry.ResolveToken(token)
	s.False(ok)
}

func (s *RegistrySuite) TestConnectedIsSorted() {
	s.registry.Install("carol", &fakeHandle{alive: true})
	s.registry.Install("alice", &fakeHandle{alive: true})
	s.registry.Install("bob", &fakeHandle{alive: true})

	s.Equal([]string{"alice", "bob", "carol"}, s.registry.Connected())
}

func (s *RegistrySuite) TestSweepRemovesDeadSessions() {
	dead := &fakeHandle{alive: false}
	live := &fakeHandle{alive: true}
	deadToken, _ := s.registry.Install("alice", dead)
	s.registry.Install("bob", live)

	removed := s.registry.Sweep()

	s.Equal([]string{"alice"}, removed)
	s.Equal([]string{"bob"}, s.registry.Connected())

	_, ok := s.registry.ResolveToken(deadToken)
	s.False(ok)
}

func (s *RegistrySuite) TestSweepIsRepeatable() {
	s.registry.Install("alice", &fakeHandle{alive: true})

	s.Empty(s.registry.Sweep())
	s.Empty(s.registry.Sweep())
	s.Equal(1, s.registry.Count())
}

func (s *RegistrySuite) TestAllReturnsEverySession() {
	s.registry.Install("alice", &fakeHandle{alive: true})
	s.registry.Install("bob", &fakeHandle{alive: true})

	s.Len(s.registry.All(), 2)
}
