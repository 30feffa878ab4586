// Package listing drives a paginated, searchable list of index records.
//
// A Controller owns the list state for one page: the decoded items, the
// pagination position and the query. Every action issues a request with a
// fresh id; only the response to the most recent request is applied, so
// overlapping searches can finish in any order without an older response
// overwriting a newer one.
package listing

import (
	"context"
	"sync"

	"github.com/owasp/nestsearch"
	"go.uber.org/zap"
)

// Config names the index a listing reads and how it pages.
type Config struct {
	Index       string
	PageTitle   string
	HitsPerPage int
}

// Option customizes a Controller.
type Option func(*settings)

type settings struct {
	logger       *zap.Logger
	scroller     Scroller
	filters      []nestsearch.Expression
	initialQuery string
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScroller sets the receiver of scroll-to-top requests.
func WithScroller(scroller Scroller) Option {
	return func(s *settings) {
		s.scroller = scroller
	}
}

// WithFilters adds filter expressions to every search the controller issues.
func WithFilters(exprs ...nestsearch.Expression) Option {
	return func(s *settings) {
		s.filters = append(s.filters, exprs...)
	}
}

// WithInitialQuery sets the query Initialize searches for.
func WithInitialQuery(q string) Option {
	return func(s *settings) {
		s.initialQuery = q
	}
}

// Controller holds the state of one listing page. It is safe for concurrent use.
type Controller[T any] struct {
	searcher nestsearch.Searcher
	cfg      Config
	settings

	mu    sync.Mutex
	seq   uint64 // id of the latest issued request
	state State[T]
}

// New creates an idle controller for cfg.Index.
func New[T any](searcher nestsearch.Searcher, cfg Config, opts ...Option) *Controller[T] {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	return &Controller[T]{
		searcher: searcher,
		cfg:      cfg,
		settings: s,
		state: State[T]{
			Index:       cfg.Index,
			Title:       cfg.PageTitle,
			Status:      StatusIdle,
			CurrentPage: 1,
			SearchQuery: s.initialQuery,
		},
	}
}

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialize fetches the first page for the initial query.
func (c *Controller[T]) Initialize(ctx context.Context) State[T] {
	return c.fetch(ctx, c.initialQuery, 1, false)
}

// HandleSearch replaces the query and fetches its first page.
func (c *Controller[T]) HandleSearch(ctx context.Context, query string) State[T] {
	return c.fetch(ctx, query, 1, false)
}

// HandlePageChange fetches page for the current query. Out of range pages are
// clamped to the known page count. Once the response is applied the scroller
// is asked to return to the top.
func (c *Controller[T]) HandlePageChange(ctx context.Context, page int) State[T] {
	c.mu.Lock()
	query := c.state.SearchQuery
	clamped := clampPage(page, c.state.TotalPages)
	c.mu.Unlock()

	if clamped != page {
		c.logger.Debug("page out of range, clamped",
			zap.String("index", c.cfg.Index),
			zap.Int("requested", page),
			zap.Int("page", clamped))
	}
	return c.fetch(ctx, query, clamped, true)
}

func (c *Controller[T]) fetch(ctx context.Context, query string, page int, scroll bool) State[T] {
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.state.Status = StatusLoading
	c.state.IsLoaded = false
	c.state.SearchQuery = query
	c.state.CurrentPage = page
	c.state.Version++
	c.mu.Unlock()

	opts := make([]nestsearch.SearchOption, 0, len(c.filters)+2)
	opts = append(opts, nestsearch.WithPage(page))
	if c.cfg.HitsPerPage > 0 {
		opts = append(opts, nestsearch.WithHitsPerPage(c.cfg.HitsPerPage))
	}
	for _, f := range c.filters {
		opts = append(opts, f)
	}

	res, err := c.searcher.Search(ctx, query, opts...)
	var items []T
	if err == nil {
		items, err = nestsearch.Decode[T](res.Hits)
	}

	c.mu.Lock()
	if latest := c.seq; id != latest {
		snapshot := c.state
		c.mu.Unlock()
		c.logger.Debug("dropping stale response",
			zap.String("index", c.cfg.Index),
			zap.Uint64("request", id),
			zap.Uint64("latest", latest))
		return snapshot
	}

	c.state.IsLoaded = true
	if err != nil {
		c.state.Status = StatusFailed
		c.state.Err = err
		c.logger.Error("search failed",
			zap.String("index", c.cfg.Index),
			zap.String("query", query),
			zap.Int("page", page),
			zap.Error(err))
	} else {
		c.state.Status = StatusLoaded
		c.state.Err = nil
		c.state.Items = items
		c.state.TotalPages = res.TotalPages
		c.state.Total = res.Total
		c.state.CurrentPage = clampPage(page, res.TotalPages)
	}
	c.state.Version++
	snapshot := c.state
	c.mu.Unlock()

	if scroll && c.scroller != nil {
		c.scroller.ScrollTo(ScrollToTop)
	}
	return snapshot
}
