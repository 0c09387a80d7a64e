package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	mu     sync.Mutex
	writes []PollRecord
	closed bool
}

func (b *recordingBackend) Search(Query) ([]Result, int, error) { return nil, 0, nil }

func (b *recordingBackend) Healthy() bool { return true }

func (b *recordingBackend) IndexPoll(rec PollRecord) error {
	return b.IndexPolls([]PollRecord{rec})
}

func (b *recordingBackend) IndexPolls(recs []PollRecord) error {
	// The first write is slow so a concurrent worker would overtake it.
	b.mu.Lock()
	first := len(b.writes) == 0
	b.mu.Unlock()
	if first {
		time.Sleep(20 * time.Millisecond)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = append(b.writes, recs...)
	return nil
}

func (b *recordingBackend) Close() { b.closed = true }

func TestServiceRemoteWritesKeepSubmissionOrder(t *testing.T) {
	remote := &recordingBackend{}
	s := newService(remote, nil)

	s.IndexPoll(PollRecord{ID: "p1", Tier: "Assembly"})
	s.IndexPoll(PollRecord{ID: "p1", Tier: "Trending"})
	s.ReindexAll([]PollRecord{{ID: "p1", Tier: "Trending"}, {ID: "p2", Tier: "Assembly"}})
	s.Close()

	require.True(t, remote.closed)
	require.Len(t, remote.writes, 4)
	require.Equal(t, "Assembly", remote.writes[0].Tier)
	require.Equal(t, "Trending", remote.writes[1].Tier)
	require.Equal(t, "p1", remote.writes[2].ID)
	require.Equal(t, "p2", remote.writes[3].ID)
}

func TestNewServiceWithoutMeiliHasNoRemote(t *testing.T) {
	s := NewService(nil, nil)
	defer s.Close()
	require.Nil(t, s.meili)
	require.True(t, s.Healthy())
}
