package poll

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the visibility classification of a poll.
type Tier string

const (
	TierAssembly Tier = "Assembly"
	TierTrending Tier = "Trending"
)

// ParseTier normalizes a tier name. An empty string yields TierAssembly.
func ParseTier(value string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "assembly":
		return TierAssembly, nil
	case "trending":
		return TierTrending, nil
	default:
		return "", fmt.Errorf("%w: unknown tier %q", ErrValidation, value)
	}
}

type Origin string

const (
	OriginCatalog Origin = "catalog"
	OriginLocal   Origin = "local"
)

// ReactionKind is one side of the like/dislike pair.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// ParseReactionKind accepts "like" or "dislike" in any case.
func ParseReactionKind(value string) (ReactionKind, error) {
	switch ReactionKind(strings.ToLower(strings.TrimSpace(value))) {
	case ReactionLike:
		return ReactionLike, nil
	case ReactionDislike:
		return ReactionDislike, nil
	default:
		return "", fmt.Errorf("%w: reaction must be 'like' or 'dislike'", ErrValidation)
	}
}

// Opposite returns the other reaction kind.
func (k ReactionKind) Opposite() ReactionKind {
	if k == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

// Source records where a poll came from. It is either CatalogSource or LocalSource.
type Source interface {
	origin() Origin
}

// CatalogSource marks a poll ingested from the seed catalog.
type CatalogSource struct {
	AreaScope string
}

func (CatalogSource) origin() Origin { return OriginCatalog }

// LocalSource marks a poll created in this session.
type LocalSource struct {
	CreatedAt time.Time
}

func (LocalSource) origin() Origin { return OriginLocal }

type Option struct {
	ID    string
	Label string
	Votes int
}

type Poll struct {
	ID       string
	Question string
	Tier     Tier
	Options  []Option
	Likes    int
	Dislikes int
	Source   Source
}

// Origin reports the provenance tag. Polls without a source count as catalog polls.
func (p Poll) Origin() Origin {
	if p.Source == nil {
		return OriginCatalog
	}
	return p.Source.origin()
}

// TotalVotes sums the votes of every option.
func (p Poll) TotalVotes() int {
	total := 0
	for _, opt := range p.Options {
		total += opt.Votes
	}
	return total
}

// HasOption reports whether optionID belongs to the poll.
func (p Poll) HasOption(optionID string) bool {
	return p.optionIndex(optionID) >= 0
}

// Option returns the option with the given id.
func (p Poll) Option(optionID string) (Option, bool) {
	idx := p.optionIndex(optionID)
	if idx < 0 {
		return Option{}, false
	}
	return p.Options[idx], true
}

func (p Poll) optionIndex(optionID string) int {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

func (p Poll) clone() Poll {
	out := p
	out.Options = append([]Option(nil), p.Options...)
	return out
}
