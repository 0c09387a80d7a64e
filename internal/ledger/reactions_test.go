package ledger

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"townhall/api/internal/poll"
)

func reactionCounts(t *testing.T, store *poll.Store, pollID string) (int, int) {
	t.Helper()
	p, err := store.Get(pollID)
	require.NoError(t, err)
	return p.Likes, p.Dislikes
}

func TestToggleScenario(t *testing.T) {
	store := poll.NewStore()
	reactions := NewReactions(store)
	p := newPoll(t, store, "A", "B")

	res, err := reactions.Toggle("user1", p.ID, poll.ReactionLike)
	require.NoError(t, err)
	require.True(t, res.Active())
	likes, dislikes := reactionCounts(t, store, p.ID)
	require.Equal(t, 1, likes)
	require.Equal(t, 0, dislikes)

	res, err = reactions.Toggle("user1", p.ID, poll.ReactionLike)
	require.NoError(t, err)
	require.False(t, res.Active())
	require.Equal(t, poll.ReactionLike, res.Previous)
	likes, dislikes = reactionCounts(t, store, p.ID)
	require.Equal(t, 0, likes)
	require.Equal(t, 0, dislikes)
	_, ok := reactions.Current("user1", p.ID)
	require.False(t, ok, "clearing deletes the ledger entry")

	_, err = reactions.Toggle("user1", p.ID, poll.ReactionDislike)
	require.NoError(t, err)
	likes, dislikes = reactionCounts(t, store, p.ID)
	require.Equal(t, 0, likes)
	require.Equal(t, 1, dislikes)
}

func TestToggleSwitchMovesReaction(t *testing.T) {
	store := poll.NewStore()
	reactions := NewReactions(store)
	p := newPoll(t, store, "A", "B")

	_, err := reactions.Toggle("user1", p.ID, poll.ReactionLike)
	require.NoError(t, err)
	_, err = reactions.Toggle("user2", p.ID, poll.ReactionLike)
	require.NoError(t, err)

	res, err := reactions.Toggle("user1", p.ID, poll.ReactionDislike)
	require.NoError(t, err)
	require.Equal(t, poll.ReactionDislike, res.Kind)
	require.Equal(t, poll.ReactionLike, res.Previous)

	likes, dislikes := reactionCounts(t, store, p.ID)
	require.Equal(t, 1, likes)
	require.Equal(t, 1, dislikes)
}

func TestToggleRejections(t *testing.T) {
	store := poll.NewStore()
	reactions := NewReactions(store)
	p := newPoll(t, store, "A", "B")

	_, err := reactions.Toggle("user1", p.ID, poll.ReactionKind("wow"))
	require.ErrorIs(t, err, poll.ErrValidation)
	_, err = reactions.Toggle("user1", "missing", poll.ReactionLike)
	require.ErrorIs(t, err, poll.ErrUnknownReference)

	_, ok := reactions.Current("user1", p.ID)
	require.False(t, ok)
}

type recordingReactionStore struct {
	target poll.Poll
	calls  []string
}

func (r *recordingReactionStore) Get(string) (poll.Poll, error) { return r.target, nil }

func (r *recordingReactionStore) ApplyReactionDelta(_ string, kind poll.ReactionKind, increment bool) error {
	sign := "-"
	if increment {
		sign = "+"
	}
	r.calls = append(r.calls, sign+string(kind))
	return nil
}

func TestToggleUndoesBeforeApplying(t *testing.T) {
	fake := &recordingReactionStore{target: poll.Poll{ID: "p"}}
	reactions := NewReactions(fake)

	for _, kind := range []poll.ReactionKind{poll.ReactionLike, poll.ReactionDislike, poll.ReactionDislike} {
		_, err := reactions.Toggle("u", "p", kind)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"+like", "-like", "+dislike", "-dislike"}, fake.calls)
}

func TestReactionExclusivityProperty(t *testing.T) {
	store := poll.NewStore()
	reactions := NewReactions(store)
	p := newPoll(t, store, "A", "B")
	users := []string{"u1", "u2", "u3"}
	kinds := []poll.ReactionKind{poll.ReactionLike, poll.ReactionDislike}
	rng := rand.New(rand.NewSource(11))

	for step := 0; step < 300; step++ {
		_, err := reactions.Toggle(users[rng.Intn(len(users))], p.ID, kinds[rng.Intn(2)])
		require.NoError(t, err)

		wantLikes, wantDislikes := 0, 0
		for _, u := range users {
			switch kind, _ := reactions.Current(u, p.ID); kind {
			case poll.ReactionLike:
				wantLikes++
			case poll.ReactionDislike:
				wantDislikes++
			}
		}
		likes, dislikes := reactionCounts(t, store, p.ID)
		require.Equal(t, wantLikes, likes)
		require.Equal(t, wantDislikes, dislikes)
	}
}
