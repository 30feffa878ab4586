package tui

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/internal/listing"
	"github.com/owasp/nestsearch/internal/model"
	"github.com/owasp/nestsearch/internal/present"
	"go.uber.org/zap"
)

// snapshot is the type-erased listing state a tab hands to the view.
type snapshot struct {
	Status      listing.Status
	Cards       []present.Card
	CurrentPage int
	TotalPages  int
	Total       int64
	Query       string
	Err         error
	Empty       bool
	Version     uint64
}

// tab is one listing of the browser.
type tab interface {
	Listing() present.Listing
	Initialize(ctx context.Context) snapshot
	Search(ctx context.Context, query string) snapshot
	PageChange(ctx context.Context, page int) snapshot
	State() snapshot

	// TakeScroll reports, once, that a page change asked to scroll to the top.
	TakeScroll() bool
}

type listingTab[T any] struct {
	listing  present.Listing
	ctrl     *listing.Controller[T]
	card     func(T, time.Time) present.Card
	now      func() time.Time
	scrolled *atomic.Bool
}

func newTab[T any](opener nestsearch.Opener, l present.Listing, card func(T, time.Time) present.Card, hitsPerPage int, logger *zap.Logger, now func() time.Time) tab {
	scrolled := &atomic.Bool{}
	ctrl := listing.New[T](opener.Open(l.Index),
		listing.Config{Index: l.Index, PageTitle: l.Title, HitsPerPage: hitsPerPage},
		listing.WithLogger(logger.With(zap.String("tab", l.Index))),
		listing.WithScroller(listing.ScrollerFunc(func(listing.ScrollOptions) {
			scrolled.Store(true)
		})),
	)
	return &listingTab[T]{listing: l, ctrl: ctrl, card: card, now: now, scrolled: scrolled}
}

func (t *listingTab[T]) Listing() present.Listing { return t.listing }

func (t *listingTab[T]) Initialize(ctx context.Context) snapshot {
	return t.snapshot(t.ctrl.Initialize(ctx))
}

func (t *listingTab[T]) Search(ctx context.Context, query string) snapshot {
	return t.snapshot(t.ctrl.HandleSearch(ctx, query))
}

func (t *listingTab[T]) PageChange(ctx context.Context, page int) snapshot {
	return t.snapshot(t.ctrl.HandlePageChange(ctx, page))
}

func (t *listingTab[T]) State() snapshot {
	return t.snapshot(t.ctrl.State())
}

func (t *listingTab[T]) TakeScroll() bool {
	return t.scrolled.Swap(false)
}

func (t *listingTab[T]) snapshot(st listing.State[T]) snapshot {
	now := t.now()
	cards := make([]present.Card, 0, len(st.Items))
	for _, item := range st.Items {
		cards = append(cards, t.card(item, now))
	}
	return snapshot{
		Status:      st.Status,
		Cards:       cards,
		CurrentPage: st.CurrentPage,
		TotalPages:  st.TotalPages,
		Total:       st.Total,
		Query:       st.SearchQuery,
		Err:         st.Err,
		Empty:       st.Empty(),
		Version:     st.Version,
	}
}

func defaultTabs(opener nestsearch.Opener, hitsPerPage int, logger *zap.Logger, now func() time.Time) []tab {
	var tabs []tab
	for _, l := range present.Listings {
		switch l.Index {
		case model.IndexProjects:
			tabs = append(tabs, newTab(opener, l, present.ProjectCard, hitsPerPage, logger, now))
		case model.IndexChapters:
			tabs = append(tabs, newTab(opener, l, present.ChapterCard, hitsPerPage, logger, now))
		case model.IndexCommittees:
			tabs = append(tabs, newTab(opener, l, present.CommitteeCard, hitsPerPage, logger, now))
		case model.IndexUsers:
			tabs = append(tabs, newTab(opener, l, present.UserCard, hitsPerPage, logger, now))
		case model.IndexIssues:
			tabs = append(tabs, newTab(opener, l, present.IssueCard, hitsPerPage, logger, now))
		}
	}
	return tabs
}
