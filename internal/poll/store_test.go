package poll

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore()
	n := 0
	s.newID = func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func TestCreate(t *testing.T) {
	s := newTestStore()

	created, err := s.Create("  Best scheme?  ", []string{" A ", "", "B", "   "}, "")
	require.NoError(t, err)
	require.Equal(t, "poll-1", created.ID)
	require.Equal(t, "Best scheme?", created.Question)
	require.Equal(t, TierAssembly, created.Tier)
	require.Equal(t, OriginLocal, created.Origin())
	require.Equal(t, []Option{{ID: "opt-2", Label: "A"}, {ID: "opt-3", Label: "B"}}, created.Options)
	require.Equal(t, LocalSource{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}, created.Source)

	second, err := s.Create("Another", []string{"x", "y"}, TierTrending)
	require.NoError(t, err)
	require.Equal(t, TierTrending, second.Tier)

	local := s.Local()
	require.Len(t, local, 2)
	require.Equal(t, second.ID, local[0].ID, "newest local poll comes first")
	require.Equal(t, created.ID, local[1].ID)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		question string
		labels   []string
		tier     Tier
	}{
		{name: "blank question", question: "   ", labels: []string{"A", "B"}},
		{name: "no options", question: "Q", labels: nil},
		{name: "one option", question: "Q", labels: []string{"A"}},
		{name: "one non-empty option", question: "Q", labels: []string{"A", "  ", ""}},
		{name: "unknown tier", question: "Q", labels: []string{"A", "B"}, tier: Tier("Hidden")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			_, err := s.Create(tt.question, tt.labels, tt.tier)
			require.ErrorIs(t, err, ErrValidation)
			require.Zero(t, s.Len(), "rejected create must not add a poll")
		})
	}
}

func TestApplyVoteDelta(t *testing.T) {
	s := newTestStore()
	p, err := s.Create("Best scheme?", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)
	a, b := p.Options[0].ID, p.Options[1].ID

	votes := func() (int, int) {
		got, err := s.Get(p.ID)
		require.NoError(t, err)
		return got.Options[0].Votes, got.Options[1].Votes
	}

	require.NoError(t, s.ApplyVoteDelta(p.ID, a, ""))
	va, vb := votes()
	require.Equal(t, 1, va)
	require.Equal(t, 0, vb)

	require.NoError(t, s.ApplyVoteDelta(p.ID, b, a))
	va, vb = votes()
	require.Equal(t, 0, va)
	require.Equal(t, 1, vb)

	require.NoError(t, s.ApplyVoteDelta(p.ID, b, b), "same option revote is a no-op")
	va, vb = votes()
	require.Equal(t, 0, va)
	require.Equal(t, 1, vb)
}

func TestApplyVoteDeltaClampsAtZero(t *testing.T) {
	s := newTestStore()
	p, err := s.Create("Q", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)
	a, b := p.Options[0].ID, p.Options[1].ID

	for i := 0; i < 3; i++ {
		require.NoError(t, s.ApplyVoteDelta(p.ID, b, a))
	}
	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Options[0].Votes)
	require.Equal(t, 3, got.Options[1].Votes)
}

func TestApplyVoteDeltaUnknownReferences(t *testing.T) {
	s := newTestStore()
	p, err := s.Create("Q", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)
	a := p.Options[0].ID

	require.ErrorIs(t, s.ApplyVoteDelta("missing", a, ""), ErrUnknownReference)
	require.ErrorIs(t, s.ApplyVoteDelta(p.ID, "missing", ""), ErrUnknownReference)
	require.ErrorIs(t, s.ApplyVoteDelta(p.ID, a, "missing"), ErrUnknownReference)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Zero(t, got.TotalVotes(), "failed deltas must not touch counters")
}

func TestPromote(t *testing.T) {
	s := newTestStore()
	p, err := s.Create("Q", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)

	changed, err := s.Promote(p.ID)
	require.NoError(t, err)
	require.True(t, changed)
	once, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, TierTrending, once.Tier)

	changed, err = s.Promote(p.ID)
	require.NoError(t, err)
	require.False(t, changed)
	twice, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, once, twice)

	_, err = s.Promote("missing")
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestApplyReactionDelta(t *testing.T) {
	s := newTestStore()
	p, err := s.Create("Q", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)

	require.NoError(t, s.ApplyReactionDelta(p.ID, ReactionLike, true))
	require.NoError(t, s.ApplyReactionDelta(p.ID, ReactionDislike, true))
	require.NoError(t, s.ApplyReactionDelta(p.ID, ReactionDislike, false))
	require.NoError(t, s.ApplyReactionDelta(p.ID, ReactionDislike, false))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Likes)
	require.Equal(t, 0, got.Dislikes)

	require.ErrorIs(t, s.ApplyReactionDelta(p.ID, ReactionKind("love"), true), ErrValidation)
	require.ErrorIs(t, s.ApplyReactionDelta("missing", ReactionLike, true), ErrUnknownReference)
}

func TestSeed(t *testing.T) {
	s := newTestStore()
	err := s.Seed([]Poll{
		{ID: "c1", Question: "Roads?", Options: []Option{{ID: "o1", Label: "Yes", Votes: -4}}, Likes: -1},
		{ID: "c2", Question: "Water?", Tier: TierTrending, Source: CatalogSource{AreaScope: "Ward 3"}},
	})
	require.NoError(t, err)
	_, err = s.Create("Local", []string{"A", "B"}, "")
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, 3)
	require.Equal(t, "c1", all[0].ID)
	require.Equal(t, "c2", all[1].ID)
	require.Equal(t, OriginLocal, all[2].Origin())

	require.Equal(t, TierAssembly, all[0].Tier)
	require.Equal(t, OriginCatalog, all[0].Origin())
	require.Zero(t, all[0].Options[0].Votes, "seeded counters are clamped")
	require.Zero(t, all[0].Likes)
	require.Equal(t, CatalogSource{AreaScope: "Ward 3"}, all[1].Source)

	require.ErrorIs(t, s.Seed([]Poll{{ID: "c1"}}), ErrValidation)
	require.ErrorIs(t, s.Seed([]Poll{{ID: "c3"}, {ID: "c3"}}), ErrValidation)
	require.ErrorIs(t, s.Seed([]Poll{{ID: " "}}), ErrValidation)
	require.Len(t, s.Catalog(), 2, "rejected batches add nothing")
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := newTestStore()
	p, err := s.Create("Q", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)

	p.Options[0].Votes = 99
	all := s.All()
	all[0].Options[0].Votes = 42

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Zero(t, got.Options[0].Votes)
}

func TestReset(t *testing.T) {
	s := newTestStore()
	_, err := s.Create("Q", []string{"A", "B"}, TierAssembly)
	require.NoError(t, err)
	s.Reset()
	require.Zero(t, s.Len())
	require.Empty(t, s.All())
}
