// Package catalog turns raw seed records from a catalog source into canonical
// catalog-origin polls.
package catalog

import (
	"context"
	"encoding/json"
)

// RawOption is an option as supplied by a catalog. Votes is nil when absent.
type RawOption struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Votes *int   `json:"votes,omitempty"`
}

// RawRecord is a poll-like record as supplied by a catalog. Options, Likes and
// Dislikes are optional.
type RawRecord struct {
	ID        string      `json:"id,omitempty"`
	Title     string      `json:"title"`
	Options   []RawOption `json:"options,omitempty"`
	Likes     *int        `json:"likes,omitempty"`
	Dislikes  *int        `json:"dislikes,omitempty"`
	AreaScope string      `json:"areaScope,omitempty"`
}

// UnmarshalJSON accepts "question" as an alias for "title".
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	type plain RawRecord
	var aux struct {
		plain
		Question string `json:"question"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = RawRecord(aux.plain)
	if r.Title == "" {
		r.Title = aux.Question
	}
	return nil
}

// Source supplies seed records.
type Source interface {
	LoadSeedPolls(ctx context.Context) ([]RawRecord, error)
}

// StaticSource serves a fixed slice of records.
type StaticSource []RawRecord

func (s StaticSource) LoadSeedPolls(context.Context) ([]RawRecord, error) {
	return append([]RawRecord(nil), s...), nil
}
