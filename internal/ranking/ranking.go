// Package ranking computes vote tallies, option percentages and the orderings
// used by feed and trending surfaces.
package ranking

import (
	"math"
	"sort"

	"townhall/api/internal/poll"
)

type OptionTally struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Votes   int    `json:"votes"`
	Percent int    `json:"percent"`
}

// Tally is a poll together with its aggregated counts. Rank is 1-indexed and
// zero when the tally was not produced by RankPolls.
type Tally struct {
	Poll    poll.Poll
	Total   int
	Options []OptionTally
	Rank    int
}

// TotalVotes sums every option's votes.
func TotalVotes(p poll.Poll) int {
	return p.TotalVotes()
}

// Percentages returns round(votes/total*100) per option, in option order.
// Every entry is 0 when the poll has no votes.
func Percentages(p poll.Poll) []int {
	total := p.TotalVotes()
	out := make([]int, len(p.Options))
	if total <= 0 {
		return out
	}
	for i, opt := range p.Options {
		out[i] = int(math.Round(float64(opt.Votes) / float64(total) * 100))
	}
	return out
}

// Tallies aggregates a single poll.
func Tallies(p poll.Poll) Tally {
	percents := Percentages(p)
	options := make([]OptionTally, len(p.Options))
	for i, opt := range p.Options {
		options[i] = OptionTally{ID: opt.ID, Label: opt.Label, Votes: opt.Votes, Percent: percents[i]}
	}
	return Tally{Poll: p, Total: p.TotalVotes(), Options: options}
}

// RankPolls merges catalog polls followed by local polls and orders them by
// total votes, highest first. Equal totals keep their merged order.
func RankPolls(catalog, local []poll.Poll) []Tally {
	out := make([]Tally, 0, len(catalog)+len(local))
	for _, p := range catalog {
		out = append(out, Tallies(p))
	}
	for _, p := range local {
		out = append(out, Tallies(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// TopTrending picks the Trending poll with the most votes. The first poll wins ties.
func TopTrending(polls []poll.Poll) (Tally, bool) {
	var best Tally
	found := false
	for _, p := range polls {
		if p.Tier != poll.TierTrending {
			continue
		}
		total := p.TotalVotes()
		if !found || total > best.Total {
			best = Tallies(p)
			found = true
		}
	}
	return best, found
}

// TopByLikes orders polls by likes, highest first, and keeps the first n.
// n <= 0 keeps all of them.
func TopByLikes(polls []poll.Poll, n int) []poll.Poll {
	out := append([]poll.Poll(nil), polls...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Likes > out[j].Likes
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FilterTier keeps tallies in the given tier without re-ranking them.
func FilterTier(tallies []Tally, tier poll.Tier) []Tally {
	out := make([]Tally, 0, len(tallies))
	for _, t := range tallies {
		if t.Poll.Tier == tier {
			out = append(out, t)
		}
	}
	return out
}
