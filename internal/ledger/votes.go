// Package ledger tracks which option and which reaction each user currently
// holds per poll, and turns user intents into counter deltas on the poll store.
package ledger

import (
	"fmt"

	"townhall/api/internal/poll"
)

type voteStore interface {
	Get(pollID string) (poll.Poll, error)
	ApplyVoteDelta(pollID, optionID, previousOptionID string) error
}

type entryKey struct {
	userKey string
	pollID  string
}

// VoteResult describes the effect of one cast.
type VoteResult struct {
	PollID           string
	OptionID         string
	PreviousOptionID string
	Fresh            bool
}

// Message is the user-facing confirmation for the cast.
func (r VoteResult) Message() string {
	if r.Fresh {
		return "Vote recorded"
	}
	return "Vote updated"
}

// Votes holds at most one live option per (user, poll).
type Votes struct {
	store   voteStore
	entries map[entryKey]string
}

func NewVotes(store voteStore) *Votes {
	return &Votes{store: store, entries: make(map[entryKey]string)}
}

// Cast records userKey's choice of optionID, moving a previous vote if there
// was one. No state changes when the poll or option is rejected.
func (v *Votes) Cast(userKey, pollID, optionID string) (VoteResult, error) {
	current, err := v.store.Get(pollID)
	if err != nil {
		return VoteResult{}, err
	}
	if !current.HasOption(optionID) {
		return VoteResult{}, fmt.Errorf("%w: option %q, poll %q", poll.ErrInvalidOption, optionID, pollID)
	}

	key := entryKey{userKey: userKey, pollID: pollID}
	previous, voted := v.entries[key]
	if err := v.store.ApplyVoteDelta(pollID, optionID, previous); err != nil {
		return VoteResult{}, fmt.Errorf("apply vote: %w", err)
	}
	v.entries[key] = optionID

	return VoteResult{
		PollID:           pollID,
		OptionID:         optionID,
		PreviousOptionID: previous,
		Fresh:            !voted,
	}, nil
}

// Current returns the option userKey holds in pollID.
func (v *Votes) Current(userKey, pollID string) (string, bool) {
	optionID, ok := v.entries[entryKey{userKey: userKey, pollID: pollID}]
	return optionID, ok
}

// Reset forgets every vote. Poll counters are left untouched.
func (v *Votes) Reset() {
	v.entries = make(map[entryKey]string)
}
