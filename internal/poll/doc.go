// Package poll holds the poll data model and the in-memory Store that owns
// every poll and option counter.
//
// The Store applies deltas but does not know who voted or reacted. The
// single-active-vote and single-active-reaction rules live in package ledger,
// which is the only intended caller of ApplyVoteDelta and ApplyReactionDelta.
package poll
