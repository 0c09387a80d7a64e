package search

import (
	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// backend is the remote index behind the memory fallback. *Meili is the
// only production implementation.
type backend interface {
	Searcher
	Indexer
	Close()
}

// Service tries Meilisearch first and falls back to the in-memory index.
// The memory index is always written so the fallback never goes stale.
// Remote writes run on a single worker so they land in submission order.
type Service struct {
	meili  backend
	memory *Memory
	pool   pond.Pool
	logger *zap.Logger
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, logger *zap.Logger) *Service {
	if meili == nil {
		return newService(nil, logger)
	}
	return newService(meili, logger)
}

func newService(remote backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		meili:  remote,
		memory: NewMemory(),
		pool:   pond.NewPool(1),
		logger: logger.Named("search"),
	}
}

func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.logger.Warn("meilisearch error, falling back to memory index", zap.Error(err))
	}

	results, total, err := s.memory.Search(q)
	if err != nil {
		s.logger.Error("memory search", zap.Error(err))
		return Response{Results: []Result{}, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexPoll records a poll locally and queues it for Meilisearch.
func (s *Service) IndexPoll(rec PollRecord) {
	_ = s.memory.IndexPoll(rec)
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	s.pool.Submit(func() {
		if err := s.meili.IndexPoll(rec); err != nil {
			s.logger.Warn("index poll", zap.String("poll_id", rec.ID), zap.Error(err))
		}
	})
}

// ReindexAll replaces the local index and queues a bulk push to
// Meilisearch behind any writes already queued.
func (s *Service) ReindexAll(recs []PollRecord) {
	s.memory.Replace(recs)
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	s.pool.Submit(func() {
		if err := s.meili.IndexPolls(recs); err != nil {
			s.logger.Warn("reindex polls", zap.Int("count", len(recs)), zap.Error(err))
		}
	})
}

// Healthy reports whether the primary backend is serving queries.
func (s *Service) Healthy() bool {
	return s.meili == nil || s.meili.Healthy()
}

// Close drains pending index writes and stops the health monitor.
func (s *Service) Close() {
	s.pool.StopAndWait()
	if s.meili != nil {
		s.meili.Close()
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
