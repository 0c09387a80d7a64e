package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"townhall/api/internal/catalog"
	"townhall/api/internal/ledger"
	"townhall/api/internal/notify"
	"townhall/api/internal/poll"
	"townhall/api/internal/ranking"
	"townhall/api/internal/search"
)

const defaultTrendingLimit = 5

// Service is the single entry point for poll intents. One mutex guards the
// store and both ledgers so that a vote or reaction and the tally it
// produces form one critical section. Search index updates are queued
// under the same lock so they apply in mutation order; events leave the
// process after it is released.
type Service struct {
	mu        sync.Mutex
	polls     *poll.Store
	votes     *ledger.Votes
	reactions *ledger.Reactions

	loader        *catalog.Loader
	notifier      notify.Publisher
	search        *search.Service
	checks        map[string]func(context.Context) error
	version       func(context.Context) (int64, error)
	trendingLimit int
	logger        *zap.Logger
}

type Option func(*Service)

func WithLoader(loader *catalog.Loader) Option {
	return func(s *Service) { s.loader = loader }
}

func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.notifier = p }
}

func WithSearch(svc *search.Service) Option {
	return func(s *Service) { s.search = svc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTrendingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trendingLimit = n
		}
	}
}

// WithReadinessCheck registers a dependency probe reported by Ready.
func WithReadinessCheck(name string, check func(context.Context) error) Option {
	return func(s *Service) { s.checks[name] = check }
}

// WithVersionSource exposes the change-feed counter through StateVersion.
func WithVersionSource(version func(context.Context) (int64, error)) Option {
	return func(s *Service) { s.version = version }
}

func New(store *poll.Store, opts ...Option) *Service {
	s := &Service{
		polls:         store,
		votes:         ledger.NewVotes(store),
		reactions:     ledger.NewReactions(store),
		loader:        catalog.NewLoader(),
		notifier:      notify.Nop{},
		checks:        make(map[string]func(context.Context) error),
		trendingLimit: defaultTrendingLimit,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.search == nil {
		s.search = search.NewService(nil, s.logger)
	}
	return s
}

// LoadCatalog pulls seed records from src, canonicalizes them and seeds the
// store. It returns the number of catalog polls loaded.
func (s *Service) LoadCatalog(ctx context.Context, src catalog.Source) (int, error) {
	records, err := src.LoadSeedPolls(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	seeded, err := s.loader.Load(records)
	if err != nil {
		return 0, classify(err)
	}

	s.mu.Lock()
	err = s.polls.Seed(seeded)
	s.mu.Unlock()
	if err != nil {
		return 0, classify(err)
	}

	s.Reindex()
	s.logger.Info("catalog loaded", zap.Int("polls", len(seeded)))
	s.publish(ctx, notify.EventCatalogLoaded, "")
	return len(seeded), nil
}

// Reindex rebuilds the search index from the current store contents.
func (s *Service) Reindex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.polls.All()
	recs := make([]search.PollRecord, 0, len(all))
	for _, p := range all {
		recs = append(recs, searchRecordOf(p))
	}
	s.search.ReindexAll(recs)
	return len(recs)
}

// Feed returns every poll ranked by total votes. An empty tier keeps all
// tiers; ranks are assigned before filtering.
func (s *Service) Feed(viewer, tier string) ([]PollView, error) {
	var want poll.Tier
	if strings.TrimSpace(tier) != "" {
		parsed, err := poll.ParseTier(tier)
		if err != nil {
			return nil, classify(err)
		}
		want = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tallies := ranking.RankPolls(s.polls.Catalog(), s.polls.Local())
	if want != "" {
		tallies = ranking.FilterTier(tallies, want)
	}
	out := make([]PollView, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, s.viewFor(viewer, t))
	}
	return out, nil
}

func (s *Service) Poll(viewer, pollID string) (PollView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.polls.Get(pollID)
	if err != nil {
		return PollView{}, classify(err)
	}
	return s.viewFor(viewer, ranking.Tallies(p)), nil
}

func (s *Service) CreatePoll(ctx context.Context, input CreatePollInput) (PollView, error) {
	tier, err := poll.ParseTier(input.Tier)
	if err != nil {
		return PollView{}, classify(err)
	}

	s.mu.Lock()
	created, err := s.polls.Create(input.Question, input.Options, tier)
	if err != nil {
		s.mu.Unlock()
		return PollView{}, classify(err)
	}
	s.search.IndexPoll(searchRecordOf(created))
	s.mu.Unlock()

	s.logger.Info("poll created", zap.String("poll_id", created.ID), zap.Int("options", len(created.Options)))
	s.publish(ctx, notify.EventPollCreated, created.ID)
	return viewOf(ranking.Tallies(created)), nil
}

func (s *Service) CastVote(ctx context.Context, userKey, pollID string, input VoteInput) (VoteOutcome, error) {
	optionID := strings.TrimSpace(input.OptionID)

	s.mu.Lock()
	result, err := s.votes.Cast(userKey, pollID, optionID)
	if err != nil {
		s.mu.Unlock()
		return VoteOutcome{}, classify(err)
	}
	p, err := s.polls.Get(pollID)
	if err != nil {
		s.mu.Unlock()
		return VoteOutcome{}, classify(err)
	}
	view := s.viewFor(userKey, ranking.Tallies(p))
	s.mu.Unlock()

	s.logger.Debug("vote cast",
		zap.String("poll_id", pollID),
		zap.String("option_id", result.OptionID),
		zap.Bool("fresh", result.Fresh),
	)
	s.publish(ctx, notify.EventVoteCast, pollID)
	return VoteOutcome{
		Message:          result.Message(),
		Fresh:            result.Fresh,
		PreviousOptionID: result.PreviousOptionID,
		Poll:             view,
	}, nil
}

func (s *Service) CurrentVote(userKey, pollID string) (MyVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.polls.Get(pollID); err != nil {
		return MyVote{}, classify(err)
	}
	optionID, ok := s.votes.Current(userKey, pollID)
	return MyVote{PollID: pollID, OptionID: optionID, Voted: ok}, nil
}

func (s *Service) Promote(ctx context.Context, pollID string) (PromoteOutcome, error) {
	s.mu.Lock()
	changed, err := s.polls.Promote(pollID)
	if err != nil {
		s.mu.Unlock()
		return PromoteOutcome{}, classify(err)
	}
	p, err := s.polls.Get(pollID)
	if err != nil {
		s.mu.Unlock()
		return PromoteOutcome{}, classify(err)
	}
	if changed {
		s.search.IndexPoll(searchRecordOf(p))
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info("poll promoted", zap.String("poll_id", pollID))
		s.publish(ctx, notify.EventPollPromoted, pollID)
	}
	return PromoteOutcome{Changed: changed, Poll: viewOf(ranking.Tallies(p))}, nil
}

func (s *Service) ToggleReaction(ctx context.Context, userKey, pollID string, input ReactInput) (ReactionOutcome, error) {
	kind, err := poll.ParseReactionKind(input.Kind)
	if err != nil {
		return ReactionOutcome{}, classify(err)
	}

	s.mu.Lock()
	result, err := s.reactions.Toggle(userKey, pollID, kind)
	if err != nil {
		s.mu.Unlock()
		return ReactionOutcome{}, classify(err)
	}
	p, err := s.polls.Get(pollID)
	if err != nil {
		s.mu.Unlock()
		return ReactionOutcome{}, classify(err)
	}
	view := s.viewFor(userKey, ranking.Tallies(p))
	s.mu.Unlock()

	s.publish(ctx, notify.EventReactionToggled, pollID)
	return ReactionOutcome{
		Active:   result.Active(),
		Kind:     result.Kind,
		Previous: result.Previous,
		Poll:     view,
	}, nil
}

// Trending returns the featured trending poll (most votes among Trending
// polls) and the most-liked polls across both origins.
func (s *Service) Trending(limit int) TrendingView {
	if limit <= 0 {
		limit = s.trendingLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.polls.All()
	out := TrendingView{Polls: make([]PollView, 0, min(limit, len(all)))}
	if top, ok := ranking.TopTrending(all); ok {
		featured := viewOf(top)
		out.Featured = &featured
	}
	for _, p := range ranking.TopByLikes(all, limit) {
		out.Polls = append(out.Polls, viewOf(ranking.Tallies(p)))
	}
	return out
}

func (s *Service) Search(q search.Query) search.Response {
	if q.Tier != "" {
		if tier, err := poll.ParseTier(q.Tier); err == nil {
			q.Tier = string(tier)
		}
	}
	return s.search.Search(q)
}

// StateVersion reports the change-feed counter. ok is false when no change
// feed is configured.
func (s *Service) StateVersion(ctx context.Context) (version int64, ok bool, err error) {
	if s.version == nil {
		return 0, false, nil
	}
	version, err = s.version(ctx)
	if err != nil {
		return 0, true, fmt.Errorf("state version: %w", err)
	}
	return version, true, nil
}

// Ready runs every registered dependency probe and returns the failures by
// name. An empty map means ready.
func (s *Service) Ready(ctx context.Context) map[string]error {
	failed := make(map[string]error)
	for _, name := range s.CheckNames() {
		if err := s.checks[name](ctx); err != nil {
			failed[name] = err
		}
	}
	return failed
}

// CheckNames lists registered readiness probes in sorted order.
func (s *Service) CheckNames() []string {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every poll, vote and reaction.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls.Reset()
	s.votes.Reset()
	s.reactions.Reset()
}

func (s *Service) viewFor(viewer string, t ranking.Tally) PollView {
	v := viewOf(t)
	if viewer == "" {
		return v
	}
	if optionID, ok := s.votes.Current(viewer, t.Poll.ID); ok {
		v.MyVote = optionID
	}
	if kind, ok := s.reactions.Current(viewer, t.Poll.ID); ok {
		v.MyReaction = kind
	}
	return v
}

// publish is best effort: a failed event never fails the intent.
func (s *Service) publish(ctx context.Context, kind notify.EventKind, pollID string) {
	event := notify.Event{Kind: kind, PollID: pollID, At: time.Now().UTC()}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("publish state change",
			zap.String("kind", string(kind)),
			zap.String("poll_id", pollID),
			zap.Error(err),
		)
	}
}
