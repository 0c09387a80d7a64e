package search

import (
	"encoding/json"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/require"
)

func TestHitToResultPrefersHighlightedQuestion(t *testing.T) {
	hit := meili.Hit{
		"id":         json.RawMessage(`"p1"`),
		"question":   json.RawMessage(`"Extend library hours?"`),
		"areaScope":  json.RawMessage(`"District 4"`),
		"tier":       json.RawMessage(`"Assembly"`),
		"origin":     json.RawMessage(`"catalog"`),
		"_formatted": json.RawMessage(`{"question":"Extend <mark>library</mark> hours?","options":["a"]}`),
	}

	r := hitToResult(hit)
	require.Equal(t, "p1", r.ID)
	require.Equal(t, "Extend library hours?", r.Question)
	require.Equal(t, "Extend <mark>library</mark> hours?", r.Snippet)
	require.Equal(t, "District 4", r.AreaScope)
	require.Equal(t, "Assembly", r.Tier)
	require.Equal(t, "catalog", r.Origin)
}

func TestHitToResultWithoutFormatted(t *testing.T) {
	hit := meili.Hit{
		"id":       json.RawMessage(`"p2"`),
		"question": json.RawMessage(`"Night bus?"`),
		"tier":     json.RawMessage(`42`),
	}

	r := hitToResult(hit)
	require.Equal(t, "Night bus?", r.Snippet)
	require.Empty(t, r.Tier)
}
