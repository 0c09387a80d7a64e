package search

import (
	"strings"
	"sync"
)

// Memory is a substring index over poll records, kept in insertion order.
type Memory struct {
	mu      sync.RWMutex
	order   []string
	records map[string]PollRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]PollRecord)}
}

func (m *Memory) Healthy() bool { return true }

func (m *Memory) IndexPoll(rec PollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(rec)
	return nil
}

func (m *Memory) IndexPolls(recs []PollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.put(rec)
	}
	return nil
}

func (m *Memory) put(rec PollRecord) {
	if _, ok := m.records[rec.ID]; !ok {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec
}

// Replace swaps the whole index for recs in one step.
func (m *Memory) Replace(recs []PollRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.records = make(map[string]PollRecord, len(recs))
	for _, rec := range recs {
		m.put(rec)
	}
}

// Search matches the query case-insensitively against the question, option
// labels and area scope. A blank query matches everything.
func (m *Memory) Search(q Query) ([]Result, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q.Text))
	var matched []Result
	for _, id := range m.order {
		rec := m.records[id]
		if q.Tier != "" && rec.Tier != q.Tier {
			continue
		}
		snippet, ok := matchRecord(rec, needle)
		if !ok {
			continue
		}
		matched = append(matched, Result{
			ID:        rec.ID,
			Question:  rec.Question,
			Snippet:   snippet,
			AreaScope: rec.AreaScope,
			Tier:      rec.Tier,
			Origin:    rec.Origin,
		})
	}

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.limit() < total-start {
		end = start + q.limit()
	}
	return matched[start:end], total, nil
}

func matchRecord(rec PollRecord, needle string) (string, bool) {
	if needle == "" || strings.Contains(strings.ToLower(rec.Question), needle) {
		return rec.Question, true
	}
	for _, label := range rec.Options {
		if strings.Contains(strings.ToLower(label), needle) {
			return label, true
		}
	}
	if strings.Contains(strings.ToLower(rec.AreaScope), needle) {
		return rec.AreaScope, true
	}
	return "", false
}
