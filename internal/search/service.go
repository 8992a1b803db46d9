// Package search runs the searches behind one results page: the primary search, the
// generative answer and autocomplete suggestions.
package search

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hyperjump/snfront/internal/cache"
	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/query"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/hyperjump/snfront/internal/storage"
	"github.com/hyperjump/snfront/internal/view"
)

// Backend is the SN search API.
type Backend interface {
	Search(ctx context.Context, site string, state models.QueryState) (*models.SearchResult, error)
	AutoComplete(ctx context.Context, site string, state models.QueryState) ([]string, error)
	Chat(ctx context.Context, site, q, locale string) (*models.ChatAnswer, error)
}

// UpstreamFunc returns the backend for a site-specific API base URL.
type UpstreamFunc func(baseURL string) Backend

// Service runs searches against the backend.
type Service struct {
	backend    Backend
	upstream   UpstreamFunc
	logger     *zap.Logger
	cache      cache.Cache
	suggestTTL time.Duration
	chatTTL    time.Duration
	limiter    *rate.Limiter
	queryLog   storage.QueryLog

	mu        sync.Mutex
	upstreams map[string]Backend
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches suggestions and chat answers in c.
func WithCache(c cache.Cache, suggestTTL, chatTTL time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.suggestTTL = suggestTTL
		s.chatTTL = chatTTL
	}
}

// WithLimiter throttles autocomplete calls to the backend.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithQueryLog records every primary search in l.
func WithQueryLog(l storage.QueryLog) Option {
	return func(s *Service) { s.queryLog = l }
}

// WithUpstreams lets sites with their own upstream use a backend built by fn.
func WithUpstreams(fn UpstreamFunc) Option {
	return func(s *Service) { s.upstream = fn }
}

// NewService creates a service over backend. A nil logger discards logs.
func NewService(backend Backend, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		backend:   backend,
		logger:    logger,
		upstreams: make(map[string]Backend),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the primary search and, unless the query is match-all, the generative answer
// in parallel. A failed search gives a failed page; a failed answer only leaves the chat
// panel empty.
func (s *Service) Run(ctx context.Context, site sites.Site, state models.QueryState) *view.Page {
	state = ProcessQuery(state)
	backend := s.backendFor(site)

	var (
		res  *models.SearchResult
		chat *models.ChatAnswer
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := backend.Search(gctx, site.Name, state)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if wantsChat(state) {
		g.Go(func() error {
			chat = s.chat(gctx, backend, site, state)
			return nil
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)

	var page *view.Page
	if err != nil {
		s.logger.Warn("search failed",
			zap.String("site", site.Name),
			zap.String("query", query.Build(state)),
			zap.Error(err),
		)
		page = view.Failed(site.Name, state, err)
	} else {
		page = view.Build(site.Name, state, res, chat)
	}
	s.record(ctx, site, state, page, elapsed)
	return page
}

// Suggest returns autocomplete suggestions for the typed query. Queries of two characters or
// fewer, throttled calls and backend failures all give nil.
func (s *Service) Suggest(ctx context.Context, site sites.Site, state models.QueryState) []string {
	if !wantsSuggestions(state.Q) {
		return nil
	}
	state = ProcessQuery(state)
	key := cache.Key("ac", site.Name, query.Build(state))
	var out []string
	if s.cached(ctx, key, &out) {
		return out
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Debug("autocomplete throttled", zap.String("site", site.Name))
		return nil
	}
	out, err := s.backendFor(site).AutoComplete(ctx, site.Name, state)
	if err != nil {
		s.logger.Debug("autocomplete failed", zap.String("site", site.Name), zap.Error(err))
		return nil
	}
	s.store(ctx, key, out, s.suggestTTL)
	return out
}

// Chat returns the generative answer for the state, or nil for match-all and on failure.
func (s *Service) Chat(ctx context.Context, site sites.Site, state models.QueryState) *models.ChatAnswer {
	state = ProcessQuery(state)
	if !wantsChat(state) {
		return nil
	}
	return s.chat(ctx, s.backendFor(site), site, state)
}

func (s *Service) chat(ctx context.Context, backend Backend, site sites.Site, state models.QueryState) *models.ChatAnswer {
	key := cache.Key("chat", site.Name, query.BuildChat(state.Q, state.Locale))
	var out models.ChatAnswer
	if s.cached(ctx, key, &out) {
		return &out
	}
	answer, err := backend.Chat(ctx, site.Name, state.Q, state.Locale)
	if err != nil {
		s.logger.Warn("chat failed", zap.String("site", site.Name), zap.Error(err))
		return nil
	}
	if answer == nil || answer.Text == "" {
		return nil
	}
	s.store(ctx, key, answer, s.chatTTL)
	return answer
}

func (s *Service) backendFor(site sites.Site) Backend {
	if site.Upstream == "" || s.upstream == nil {
		return s.backend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.upstreams[site.Upstream]
	if !ok {
		b = s.upstream(site.Upstream)
		s.upstreams[site.Upstream] = b
	}
	return b
}

func (s *Service) cached(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *Service) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, data, ttl)
}

func (s *Service) record(ctx context.Context, site sites.Site, state models.QueryState, page *view.Page, elapsed time.Duration) {
	if s.queryLog == nil {
		return
	}
	entry := storage.Entry{
		Site:     site.Name,
		Query:    state.Q,
		Page:     state.Page,
		Total:    page.Total,
		Failed:   page.Status == view.StatusFailed,
		Duration: elapsed,
	}
	if err := s.queryLog.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to record search", zap.Error(err))
	}
}
