package ledger

import (
	"fmt"

	"townhall/api/internal/poll"
)

type reactionStore interface {
	Get(pollID string) (poll.Poll, error)
	ApplyReactionDelta(pollID string, kind poll.ReactionKind, increment bool) error
}

// ReactionResult describes the reaction state after a toggle. Kind is empty
// when the toggle cleared the user's reaction.
type ReactionResult struct {
	PollID   string
	Kind     poll.ReactionKind
	Previous poll.ReactionKind
}

// Active reports whether the user holds a reaction after the toggle.
func (r ReactionResult) Active() bool {
	return r.Kind != ""
}

// Reactions holds at most one of like/dislike per (user, poll).
type Reactions struct {
	store   reactionStore
	entries map[entryKey]poll.ReactionKind
}

func NewReactions(store reactionStore) *Reactions {
	return &Reactions{store: store, entries: make(map[entryKey]poll.ReactionKind)}
}

// Toggle applies kind for userKey. Repeating the held reaction clears it;
// switching undoes the old reaction before applying the new one.
func (r *Reactions) Toggle(userKey, pollID string, kind poll.ReactionKind) (ReactionResult, error) {
	if kind != poll.ReactionLike && kind != poll.ReactionDislike {
		return ReactionResult{}, fmt.Errorf("%w: reaction must be 'like' or 'dislike'", poll.ErrValidation)
	}
	if _, err := r.store.Get(pollID); err != nil {
		return ReactionResult{}, err
	}

	key := entryKey{userKey: userKey, pollID: pollID}
	current := r.entries[key]
	if current == kind {
		if err := r.store.ApplyReactionDelta(pollID, kind, false); err != nil {
			return ReactionResult{}, fmt.Errorf("clear reaction: %w", err)
		}
		delete(r.entries, key)
		return ReactionResult{PollID: pollID, Previous: current}, nil
	}

	if current != "" {
		if err := r.store.ApplyReactionDelta(pollID, current, false); err != nil {
			return ReactionResult{}, fmt.Errorf("undo reaction: %w", err)
		}
	}
	if err := r.store.ApplyReactionDelta(pollID, kind, true); err != nil {
		return ReactionResult{}, fmt.Errorf("apply reaction: %w", err)
	}
	r.entries[key] = kind
	return ReactionResult{PollID: pollID, Kind: kind, Previous: current}, nil
}

// Current returns the reaction userKey holds in pollID.
func (r *Reactions) Current(userKey, pollID string) (poll.ReactionKind, bool) {
	kind, ok := r.entries[entryKey{userKey: userKey, pollID: pollID}]
	return kind, ok
}

// Reset forgets every reaction. Poll counters are left untouched.
func (r *Reactions) Reset() {
	r.entries = make(map[entryKey]poll.ReactionKind)
}
