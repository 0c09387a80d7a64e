// Package search finds polls by question text. Meilisearch is used when
// configured and healthy; an in-memory index answers otherwise.
package search

// PollRecord is the data we index for a poll.
type PollRecord struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	AreaScope string   `json:"areaScope"`
	Tier      string   `json:"tier"`
	Origin    string   `json:"origin"`
}

// Result is a single search hit returned to the caller.
type Result struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Snippet   string `json:"snippet"`
	AreaScope string `json:"areaScope,omitempty"`
	Tier      string `json:"tier"`
	Origin    string `json:"origin"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Tier   string // empty = all tiers
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a poll search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push polls into a search index.
type Indexer interface {
	IndexPoll(rec PollRecord) error
	IndexPolls(recs []PollRecord) error
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (q Query) limit() int {
	if q.Limit <= 0 {
		return defaultLimit
	}
	return min(q.Limit, maxLimit)
}
