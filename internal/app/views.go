package app

import (
	"time"

	"townhall/api/internal/poll"
	"townhall/api/internal/ranking"
	"townhall/api/internal/search"
)

type CreatePollInput struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Tier     string   `json:"tier"`
}

type VoteInput struct {
	OptionID string `json:"optionId"`
}

type ReactInput struct {
	Kind string `json:"kind"`
}

// PollView is a poll with its tally, as presented to clients. MyVote and
// MyReaction are filled only when the viewer is known.
type PollView struct {
	ID         string                `json:"id"`
	Question   string                `json:"question"`
	Tier       poll.Tier             `json:"tier"`
	Origin     poll.Origin           `json:"origin"`
	AreaScope  string                `json:"areaScope,omitempty"`
	CreatedAt  *time.Time            `json:"createdAt,omitempty"`
	Options    []ranking.OptionTally `json:"options"`
	TotalVotes int                   `json:"totalVotes"`
	Likes      int                   `json:"likes"`
	Dislikes   int                   `json:"dislikes"`
	Rank       int                   `json:"rank,omitempty"`
	MyVote     string                `json:"myVote,omitempty"`
	MyReaction poll.ReactionKind     `json:"myReaction,omitempty"`
}

type VoteOutcome struct {
	Message          string   `json:"message"`
	Fresh            bool     `json:"fresh"`
	PreviousOptionID string   `json:"previousOptionId,omitempty"`
	Poll             PollView `json:"poll"`
}

type MyVote struct {
	PollID   string `json:"pollId"`
	OptionID string `json:"optionId,omitempty"`
	Voted    bool   `json:"voted"`
}

type PromoteOutcome struct {
	Changed bool     `json:"changed"`
	Poll    PollView `json:"poll"`
}

type ReactionOutcome struct {
	Active   bool              `json:"active"`
	Kind     poll.ReactionKind `json:"kind,omitempty"`
	Previous poll.ReactionKind `json:"previous,omitempty"`
	Poll     PollView          `json:"poll"`
}

type TrendingView struct {
	Featured *PollView  `json:"featured"`
	Polls    []PollView `json:"polls"`
}

func viewOf(t ranking.Tally) PollView {
	v := PollView{
		ID:         t.Poll.ID,
		Question:   t.Poll.Question,
		Tier:       t.Poll.Tier,
		Origin:     t.Poll.Origin(),
		Options:    t.Options,
		TotalVotes: t.Total,
		Likes:      t.Poll.Likes,
		Dislikes:   t.Poll.Dislikes,
		Rank:       t.Rank,
	}
	switch src := t.Poll.Source.(type) {
	case poll.CatalogSource:
		v.AreaScope = src.AreaScope
	case poll.LocalSource:
		created := src.CreatedAt
		v.CreatedAt = &created
	}
	return v
}

func searchRecordOf(p poll.Poll) search.PollRecord {
	labels := make([]string, 0, len(p.Options))
	for _, opt := range p.Options {
		labels = append(labels, opt.Label)
	}
	rec := search.PollRecord{
		ID:       p.ID,
		Question: p.Question,
		Options:  labels,
		Tier:     string(p.Tier),
		Origin:   string(p.Origin()),
	}
	if src, ok := p.Source.(poll.CatalogSource); ok {
		rec.AreaScope = src.AreaScope
	}
	return rec
}
