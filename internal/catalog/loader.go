package catalog

import (
	"fmt"
	"math/rand"
	"strings"

	"townhall/api/internal/poll"
	"townhall/api/internal/util"
)

const (
	// Upper bounds (exclusive) for synthesized demo counters.
	maxSeedOptionVotes = 200
	maxSeedReactions   = 100
)

// Fallback labels used when a record carries no option list.
var fallbackLabels = [2]string{"Support", "Neutral"}

// Loader canonicalizes raw records. Without a seed every synthesized counter
// is zero; WithSeed makes them bounded pseudo-random and reproducible.
type Loader struct {
	rng   *rand.Rand
	newID func(prefix string) string
}

type LoaderOption func(*Loader)

// WithSeed enables reproducible random counts for sparse records.
func WithSeed(seed int64) LoaderOption {
	return func(l *Loader) {
		l.rng = rand.New(rand.NewSource(seed))
	}
}

// WithIDGenerator replaces the id source for records without ids.
func WithIDGenerator(newID func(prefix string) string) LoaderOption {
	return func(l *Loader) {
		l.newID = newID
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{newID: util.NewID}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load converts records into catalog polls, preserving order. The tier is
// Trending exactly when likes exceed dislikes.
func (l *Loader) Load(records []RawRecord) ([]poll.Poll, error) {
	out := make([]poll.Poll, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		p, err := l.canonicalize(rec)
		if err != nil {
			return nil, fmt.Errorf("catalog record %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("catalog record %d: %w: duplicate id %q", i, poll.ErrValidation, p.ID)
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func (l *Loader) canonicalize(rec RawRecord) (poll.Poll, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return poll.Poll{}, fmt.Errorf("%w: title is required", poll.ErrValidation)
	}
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = l.newID("poll")
	}

	options, err := l.options(rec.Options)
	if err != nil {
		return poll.Poll{}, err
	}
	likes := l.counter(rec.Likes, maxSeedReactions)
	dislikes := l.counter(rec.Dislikes, maxSeedReactions)

	tier := poll.TierAssembly
	if likes > dislikes {
		tier = poll.TierTrending
	}

	return poll.Poll{
		ID:       id,
		Question: title,
		Tier:     tier,
		Options:  options,
		Likes:    likes,
		Dislikes: dislikes,
		Source:   poll.CatalogSource{AreaScope: strings.TrimSpace(rec.AreaScope)},
	}, nil
}

func (l *Loader) options(raw []RawOption) ([]poll.Option, error) {
	if len(raw) == 0 {
		out := make([]poll.Option, len(fallbackLabels))
		for i, label := range fallbackLabels {
			out[i] = poll.Option{ID: l.newID("opt"), Label: label, Votes: l.random(maxSeedOptionVotes)}
		}
		return out, nil
	}

	out := make([]poll.Option, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, opt := range raw {
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: option %d has no label", poll.ErrValidation, i)
		}
		id := strings.TrimSpace(opt.ID)
		if id == "" {
			id = l.newID("opt")
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate option id %q", poll.ErrValidation, id)
		}
		seen[id] = struct{}{}
		votes := 0
		if opt.Votes != nil {
			votes = max(*opt.Votes, 0)
		}
		out = append(out, poll.Option{ID: id, Label: label, Votes: votes})
	}
	return out, nil
}

// counter returns the supplied value clamped at zero, or a synthesized one.
func (l *Loader) counter(value *int, bound int) int {
	if value != nil {
		return max(*value, 0)
	}
	return l.random(bound)
}

func (l *Loader) random(bound int) int {
	if l.rng == nil {
		return 0
	}
	return l.rng.Intn(bound)
}
