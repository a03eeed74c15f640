package history

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = NewStore(testutil.NopLogger())
}

func (s *StoreSuite) TestHistoryIsChronological() {
	s.store.Append("general", model.Message{From: "alice", Body: "first", Timestamp: 1000})
	s.store.Append("general", model.Message{From: "bob", Body: "second", Timestamp: 2000})
	s.store.Append("general", model.Message{From: "alice", Body: "third", Timestamp: 3000})

	msgs := s.store.History("general")
	s.Require().Len(msgs, 3)
	s.Equal("first", msgs[0].Body)
	s.Equal("second", msgs[1].Body)
	s.Equal("third", msgs[2].Body)
}

func (s *StoreSuite) TestHistoryOfUnknownRoomIsEmpty() {
	msgs := s.store.History("nowhere")
	s.NotNil(msgs)
	s.Empty(msgs)
}

func (s *StoreSuite) TestHistoryReturnsCopy() {
	s.store.Append("general", model.Message{From: "alice", Body: "hello", Timestamp: 1000})

	msgs := s.store.History("general")
	msgs[0].Body = "tampered"

	s.Equal("hello", s.store.History("general")[0].Body)
}

func (s *StoreSuite) TestAppendInitializesLog() {
	s.Equal(0, s.store.Len("general"))
	s.store.Append("general", model.Message{From: "alice", Body: "hello", Timestamp: 1000})
	s.Equal(1, s.store.Len("general"))
}

func (s *StoreSuite) TestEnsureLogCreatesEmptyLog() {
	s.store.EnsureLog("general")

	snap := s.store.Snapshot()
	log, ok := snap["general"]
	s.Require().True(ok)
	s.Empty(log)
}

func (s *StoreSuite) TestEnsureLogKeepsExistingMessages() {
	s.store.Append("general", model.Message{From: "alice", Body: "hello", Timestamp: 1000})
	s.store.EnsureLog("general")
	s.Equal(1, s.store.Len("general"))
}

func (s *StoreSuite) TestSnapshotIsMostRecentFirst() {
	s.store.Append("general", model.Message{From: "alice", Body: "first", Timestamp: 1000})
	s.store.Append("general", model.Message{From: "bob", Body: "second", Timestamp: 2000})

	snap := s.store.Snapshot()
	s.Require().Len(snap["general"], 2)
	s.Equal("second", snap["general"][0].Body)
	s.Equal("first", snap["general"][1].Body)
}

func (s *StoreSuite) TestRestoreRoundTrip() {
	s.store.Append("general", model.Message{From: "alice", Body: "first", Timestamp: 1000})
	s.store.Append("general", model.Message{From: "bob", Body: "second", Timestamp: 2000})

	restored := NewStore(testutil.NopLogger())
	restored.Restore(s.store.Snapshot())

	msgs := restored.History("general")
	s.Require().Len(msgs, 2)
	s.Equal("first", msgs[0].Body)
	s.Equal("second", msgs[1].Body)
}
