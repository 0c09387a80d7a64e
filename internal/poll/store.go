package poll

import (
	"fmt"
	"strings"
	"time"

	"townhall/api/internal/util"
)

// Store is the mutable collection of catalog and local polls.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	catalog []*Poll
	local   []*Poll // most recent first
	byID    map[string]*Poll
	newID   func(prefix string) string
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		byID:  make(map[string]*Poll),
		newID: util.NewID,
		now:   time.Now,
	}
}

// Seed appends catalog polls in the given order. The whole batch is rejected
// when any id is blank or already present.
func (s *Store) Seed(polls []Poll) error {
	seen := make(map[string]struct{}, len(polls))
	for i, p := range polls {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: catalog poll %d has no id", ErrValidation, i)
		}
		if _, exists := s.byID[p.ID]; exists {
			return fmt.Errorf("%w: duplicate poll id %q", ErrValidation, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate poll id %q", ErrValidation, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	for _, p := range polls {
		item := p.clone()
		if _, ok := item.Source.(CatalogSource); !ok {
			item.Source = CatalogSource{}
		}
		if item.Tier == "" {
			item.Tier = TierAssembly
		}
		for i := range item.Options {
			item.Options[i].Votes = max(item.Options[i].Votes, 0)
		}
		item.Likes = max(item.Likes, 0)
		item.Dislikes = max(item.Dislikes, 0)
		s.catalog = append(s.catalog, &item)
		s.byID[item.ID] = &item
	}
	return nil
}

// Create validates and prepends a new local poll. Blank labels are dropped;
// at least two must remain.
func (s *Store) Create(question string, optionLabels []string, tier Tier) (Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Poll{}, fmt.Errorf("%w: question is required", ErrValidation)
	}
	labels := make([]string, 0, len(optionLabels))
	for _, label := range optionLabels {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	if len(labels) < 2 {
		return Poll{}, fmt.Errorf("%w: at least two non-empty options are required", ErrValidation)
	}
	if tier == "" {
		tier = TierAssembly
	}
	if tier != TierAssembly && tier != TierTrending {
		return Poll{}, fmt.Errorf("%w: unknown tier %q", ErrValidation, tier)
	}

	item := &Poll{
		ID:       s.newID("poll"),
		Question: question,
		Tier:     tier,
		Options:  make([]Option, 0, len(labels)),
		Source:   LocalSource{CreatedAt: s.now().UTC()},
	}
	for _, label := range labels {
		item.Options = append(item.Options, Option{ID: s.newID("opt"), Label: label})
	}

	s.local = append([]*Poll{item}, s.local...)
	s.byID[item.ID] = item
	return item.clone(), nil
}

// ApplyVoteDelta moves one vote from previousOptionID (when set and different)
// to optionID. Every id is checked before any counter changes.
func (s *Store) ApplyVoteDelta(pollID, optionID, previousOptionID string) error {
	item, err := s.lookup(pollID)
	if err != nil {
		return err
	}
	next := item.optionIndex(optionID)
	if next < 0 {
		return fmt.Errorf("%w: option %q in poll %q", ErrUnknownReference, optionID, pollID)
	}
	prev := -1
	if previousOptionID != "" && previousOptionID != optionID {
		prev = item.optionIndex(previousOptionID)
		if prev < 0 {
			return fmt.Errorf("%w: option %q in poll %q", ErrUnknownReference, previousOptionID, pollID)
		}
	}

	if prev >= 0 {
		item.Options[prev].Votes = max(item.Options[prev].Votes-1, 0)
		item.Options[next].Votes++
		return nil
	}
	if previousOptionID == "" {
		item.Options[next].Votes++
	}
	return nil
}

// Promote moves an Assembly poll to Trending. changed is false when the poll
// was already Trending.
func (s *Store) Promote(pollID string) (changed bool, err error) {
	item, err := s.lookup(pollID)
	if err != nil {
		return false, err
	}
	if item.Tier == TierTrending {
		return false, nil
	}
	item.Tier = TierTrending
	return true, nil
}

// ApplyReactionDelta adds or removes one like or dislike, clamped at zero.
// The counters are independent here; exclusivity is enforced by the caller.
func (s *Store) ApplyReactionDelta(pollID string, kind ReactionKind, increment bool) error {
	if kind != ReactionLike && kind != ReactionDislike {
		return fmt.Errorf("%w: unknown reaction %q", ErrValidation, kind)
	}
	item, err := s.lookup(pollID)
	if err != nil {
		return err
	}
	counter := &item.Likes
	if kind == ReactionDislike {
		counter = &item.Dislikes
	}
	if increment {
		*counter++
	} else {
		*counter = max(*counter-1, 0)
	}
	return nil
}

func (s *Store) Get(pollID string) (Poll, error) {
	item, err := s.lookup(pollID)
	if err != nil {
		return Poll{}, err
	}
	return item.clone(), nil
}

// Catalog returns catalog polls in load order.
func (s *Store) Catalog() []Poll {
	return snapshot(s.catalog)
}

// Local returns session-created polls, most recent first.
func (s *Store) Local() []Poll {
	return snapshot(s.local)
}

// All returns catalog polls followed by local polls.
func (s *Store) All() []Poll {
	out := make([]Poll, 0, len(s.catalog)+len(s.local))
	out = append(out, snapshot(s.catalog)...)
	return append(out, snapshot(s.local)...)
}

func (s *Store) Len() int {
	return len(s.byID)
}

// Reset drops every poll.
func (s *Store) Reset() {
	s.catalog = nil
	s.local = nil
	s.byID = make(map[string]*Poll)
}

func (s *Store) lookup(pollID string) (*Poll, error) {
	item, ok := s.byID[pollID]
	if !ok {
		return nil, fmt.Errorf("%w: poll %q", ErrUnknownReference, pollID)
	}
	return item, nil
}

func snapshot(items []*Poll) []Poll {
	out := make([]Poll, 0, len(items))
	for _, item := range items {
		out = append(out, item.clone())
	}
	return out
}
