package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"townhall/api/internal/poll"
)

func intPtr(v int) *int { return &v }

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestLoadExplicitOptions(t *testing.T) {
	loader := NewLoader(WithIDGenerator(sequentialIDs()))
	polls, err := loader.Load([]RawRecord{{
		ID:    "roads",
		Title: "  Fix the ring road?  ",
		Options: []RawOption{
			{ID: "yes", Label: "Yes", Votes: intPtr(12)},
			{Label: "No"},
			{ID: "later", Label: "Later", Votes: intPtr(-3)},
		},
		Likes:     intPtr(4),
		Dislikes:  intPtr(9),
		AreaScope: "Ward 7",
	}})
	require.NoError(t, err)
	require.Len(t, polls, 1)

	p := polls[0]
	require.Equal(t, "roads", p.ID)
	require.Equal(t, "Fix the ring road?", p.Question)
	require.Equal(t, poll.OriginCatalog, p.Origin())
	require.Equal(t, poll.CatalogSource{AreaScope: "Ward 7"}, p.Source)
	require.Equal(t, []poll.Option{
		{ID: "yes", Label: "Yes", Votes: 12},
		{ID: "opt-1", Label: "No", Votes: 0},
		{ID: "later", Label: "Later", Votes: 0},
	}, p.Options)
	require.Equal(t, 4, p.Likes)
	require.Equal(t, 9, p.Dislikes)
	require.Equal(t, poll.TierAssembly, p.Tier)
}

func TestLoadFallbackOptions(t *testing.T) {
	loader := NewLoader(WithIDGenerator(sequentialIDs()))
	polls, err := loader.Load([]RawRecord{{Title: "Parks budget"}})
	require.NoError(t, err)

	p := polls[0]
	require.Equal(t, "poll-1", p.ID)
	require.Equal(t, []poll.Option{
		{ID: "opt-2", Label: "Support"},
		{ID: "opt-3", Label: "Neutral"},
	}, p.Options)
	require.Zero(t, p.Likes)
	require.Zero(t, p.Dislikes)
	require.Equal(t, poll.TierAssembly, p.Tier, "0 likes do not exceed 0 dislikes")
}

func TestLoadTierClassification(t *testing.T) {
	tests := []struct {
		name     string
		likes    *int
		dislikes *int
		want     poll.Tier
	}{
		{name: "more likes", likes: intPtr(5), dislikes: intPtr(4), want: poll.TierTrending},
		{name: "equal", likes: intPtr(5), dislikes: intPtr(5), want: poll.TierAssembly},
		{name: "more dislikes", likes: intPtr(1), dislikes: intPtr(8), want: poll.TierAssembly},
		{name: "likes only", likes: intPtr(1), want: poll.TierTrending},
		{name: "neither", want: poll.TierAssembly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polls, err := NewLoader().Load([]RawRecord{{Title: "Q", Likes: tt.likes, Dislikes: tt.dislikes}})
			require.NoError(t, err)
			require.Equal(t, tt.want, polls[0].Tier)
		})
	}
}

func TestLoadSeededIsDeterministicAndBounded(t *testing.T) {
	records := []RawRecord{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C", Likes: intPtr(2)}}

	first, err := NewLoader(WithSeed(99), WithIDGenerator(sequentialIDs())).Load(records)
	require.NoError(t, err)
	second, err := NewLoader(WithSeed(99), WithIDGenerator(sequentialIDs())).Load(records)
	require.NoError(t, err)
	require.Equal(t, first, second)

	for _, p := range first {
		require.Len(t, p.Options, 2)
		for _, opt := range p.Options {
			require.GreaterOrEqual(t, opt.Votes, 0)
			require.Less(t, opt.Votes, maxSeedOptionVotes)
		}
		require.GreaterOrEqual(t, p.Likes, 0)
		require.Less(t, p.Likes, maxSeedReactions)
		require.GreaterOrEqual(t, p.Dislikes, 0)
		require.Less(t, p.Dislikes, maxSeedReactions)
		require.Equal(t, p.Likes > p.Dislikes, p.Tier == poll.TierTrending)
	}
	require.Equal(t, 2, first[2].Likes, "supplied counters are never randomized")
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []RawRecord
	}{
		{name: "blank title", records: []RawRecord{{Title: "  "}}},
		{name: "blank option label", records: []RawRecord{{Title: "Q", Options: []RawOption{{Label: "A"}, {Label: ""}}}}},
		{name: "duplicate option id", records: []RawRecord{{Title: "Q", Options: []RawOption{{ID: "x", Label: "A"}, {ID: "x", Label: "B"}}}}},
		{name: "duplicate poll id", records: []RawRecord{{ID: "p", Title: "Q"}, {ID: "p", Title: "R"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Load(tt.records)
			require.ErrorIs(t, err, poll.ErrValidation)
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{{Title: "A"}, {Title: "B"}}
	records, err := src.LoadSeedPolls(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	records[0].Title = "changed"
	require.Equal(t, "A", src[0].Title)
}
