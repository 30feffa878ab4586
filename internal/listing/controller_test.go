package listing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/inmemory"
	"github.com/owasp/nestsearch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixtureStore(t *testing.T) *inmemory.Store {
	t.Helper()
	store := inmemory.NewStore()
	require.NoError(t, store.LoadFile("../../inmemory/testdata/fixtures.json"))
	return store
}

func manyProjects(n int) nestsearch.Searcher {
	idx := inmemory.NewIndex(model.IndexProjects)
	for i := 1; i <= n; i++ {
		idx.AddDocument(inmemory.Document{
			ID:     fmt.Sprintf("p-%02d", i),
			Fields: map[string]any{"idx_name": fmt.Sprintf("Project %02d", i)},
		})
	}
	return idx
}

type recordingScroller struct {
	mu    sync.Mutex
	calls []ScrollOptions
}

func (r *recordingScroller) ScrollTo(opts ScrollOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, opts)
}

func TestInitialize(t *testing.T) {
	store := fixtureStore(t)
	c := New[model.Chapter](store.Open(model.IndexChapters), Config{Index: model.IndexChapters, PageTitle: "OWASP Chapters"})

	before := c.State()
	assert.Equal(t, StatusIdle, before.Status)
	assert.False(t, before.IsLoaded)
	assert.Equal(t, 1, before.CurrentPage)

	st := c.Initialize(context.Background())
	require.Equal(t, StatusLoaded, st.Status)
	assert.True(t, st.IsLoaded)
	assert.Equal(t, "OWASP Chapters", st.Title)
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 1, st.TotalPages)
	require.Len(t, st.Items, 1)

	chapter := st.Items[0]
	assert.Equal(t, "ch-1", chapter.ObjectID)
	assert.Equal(t, "Chapter 1", chapter.Name)
	assert.Equal(t, "This is a summary of Chapter 1.", chapter.Summary)
	assert.Len(t, chapter.Leaders, 3)
	assert.Greater(t, st.Version, before.Version)
}

func TestInitialQuery(t *testing.T) {
	store := fixtureStore(t)
	c := New[model.Project](store.Open(model.IndexProjects), Config{Index: model.IndexProjects}, WithInitialQuery("juice"))

	assert.Equal(t, "juice", c.State().SearchQuery)
	st := c.Initialize(context.Background())
	require.Len(t, st.Items, 1)
	assert.Equal(t, "OWASP Juice Shop", st.Items[0].Name)
}

func TestHandleSearchResetsPage(t *testing.T) {
	c := New[model.Project](manyProjects(60), Config{Index: model.IndexProjects, HitsPerPage: 25})
	c.Initialize(context.Background())

	st := c.HandlePageChange(context.Background(), 3)
	require.Equal(t, 3, st.CurrentPage)
	require.Len(t, st.Items, 10)

	st = c.HandleSearch(context.Background(), "project 1")
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, "project 1", st.SearchQuery)
	assert.Equal(t, int64(60), st.Total)
}

func TestHandlePageChangeClamps(t *testing.T) {
	scroller := &recordingScroller{}
	c := New[model.Project](manyProjects(60), Config{Index: model.IndexProjects, HitsPerPage: 25}, WithScroller(scroller))
	c.Initialize(context.Background())

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"in range", 2, 2},
		{"last", 3, 3},
		{"past the end", 99, 3},
		{"zero", 0, 1},
		{"negative", -4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := c.HandlePageChange(context.Background(), tt.requested)
			assert.Equal(t, tt.want, st.CurrentPage)
			assert.Equal(t, 3, st.TotalPages)
			assert.GreaterOrEqual(t, st.CurrentPage, 1)
			assert.LessOrEqual(t, st.CurrentPage, max(st.TotalPages, 1))
			assert.NotEmpty(t, st.Items)
		})
	}

	require.Len(t, scroller.calls, len(tests))
	for _, call := range scroller.calls {
		assert.Equal(t, ScrollOptions{Top: 0, Behavior: "auto"}, call)
	}
}

func TestSearchAndInitializeDoNotScroll(t *testing.T) {
	scroller := &recordingScroller{}
	c := New[model.Project](manyProjects(5), Config{Index: model.IndexProjects}, WithScroller(scroller))

	c.Initialize(context.Background())
	c.HandleSearch(context.Background(), "02")
	assert.Empty(t, scroller.calls)
}

func TestEmptyResult(t *testing.T) {
	store := fixtureStore(t)
	c := New[model.Project](store.Open(model.IndexProjects), Config{Index: model.IndexProjects})

	st := c.HandleSearch(context.Background(), "no such project anywhere")
	assert.True(t, st.Empty())
	assert.Equal(t, 0, st.TotalPages)
	assert.Equal(t, 1, st.CurrentPage)
	assert.Empty(t, st.Items)

	st = c.HandlePageChange(context.Background(), 5)
	assert.Equal(t, 1, st.CurrentPage)
}

func TestFiltersApplied(t *testing.T) {
	store := fixtureStore(t)
	c := New[model.Project](store.Open(model.IndexProjects), Config{Index: model.IndexProjects},
		WithFilters(nestsearch.Eq("idx_level", "incubator")))

	st := c.Initialize(context.Background())
	require.Len(t, st.Items, 1)
	assert.Equal(t, "OWASP Nest", st.Items[0].Name)
}

func TestStaleResponseIsDropped(t *testing.T) {
	store := fixtureStore(t)
	projects := store.Open(model.IndexProjects)

	started := make(chan struct{})
	release := make(chan struct{})
	searcher := nestsearch.SearcherFunc(func(ctx context.Context, query string, opts ...nestsearch.SearchOption) (*nestsearch.Page, error) {
		if query == "owasp" {
			close(started)
			<-release
		}
		return projects.Search(ctx, query, opts...)
	})

	core, logs := observer.New(zapcore.DebugLevel)
	c := New[model.Project](searcher, Config{Index: model.IndexProjects}, WithLogger(zap.New(core)))

	slow := make(chan State[model.Project])
	go func() {
		slow <- c.HandleSearch(context.Background(), "owasp")
	}()
	<-started

	fast := c.HandleSearch(context.Background(), "juice")
	require.Equal(t, StatusLoaded, fast.Status)
	require.Len(t, fast.Items, 1)

	close(release)
	late := <-slow

	assert.Equal(t, "juice", late.SearchQuery)
	final := c.State()
	assert.Equal(t, "juice", final.SearchQuery)
	require.Len(t, final.Items, 1)
	assert.Equal(t, "OWASP Juice Shop", final.Items[0].Name)
	assert.Equal(t, fast.Version, final.Version)
	assert.Equal(t, 1, logs.FilterMessage("dropping stale response").Len())
}

func TestFailureKeepsPreviousItems(t *testing.T) {
	store := fixtureStore(t)
	projects := store.Open(model.IndexProjects)

	fail := false
	searcher := nestsearch.SearcherFunc(func(ctx context.Context, query string, opts ...nestsearch.SearchOption) (*nestsearch.Page, error) {
		if fail {
			return nil, errors.WithSecondaryError(nestsearch.ErrBackendUnavailable, errors.New("connection refused"))
		}
		return projects.Search(ctx, query, opts...)
	})

	core, logs := observer.New(zapcore.ErrorLevel)
	c := New[model.Project](searcher, Config{Index: model.IndexProjects}, WithLogger(zap.New(core)))

	loaded := c.Initialize(context.Background())
	require.Len(t, loaded.Items, 3)

	fail = true
	st := c.HandleSearch(context.Background(), "zap")
	assert.Equal(t, StatusFailed, st.Status)
	assert.True(t, st.IsLoaded)
	assert.True(t, errors.Is(st.Err, nestsearch.ErrBackendUnavailable))
	assert.Equal(t, loaded.Items, st.Items)
	assert.Equal(t, loaded.TotalPages, st.TotalPages)
	assert.False(t, st.Empty())
	assert.Equal(t, 1, logs.FilterMessage("search failed").Len())

	fail = false
	st = c.HandleSearch(context.Background(), "zap")
	assert.Equal(t, StatusLoaded, st.Status)
	assert.NoError(t, st.Err)
}

func TestDecodeFailureIsReported(t *testing.T) {
	idx := inmemory.NewIndex(model.IndexProjects)
	idx.AddDocument(inmemory.Document{ID: "bad", Fields: map[string]any{"idx_name": 42}})

	st := New[model.Project](idx, Config{Index: model.IndexProjects}).Initialize(context.Background())
	assert.Equal(t, StatusFailed, st.Status)
	assert.Error(t, st.Err)
}

func TestFractionalNumbersDecode(t *testing.T) {
	idx := inmemory.NewIndex(model.IndexProjects)
	idx.AddDocument(inmemory.Document{ID: "p1", Fields: map[string]any{
		"idx_name":        "OWASP Nest",
		"idx_updated_at":  1727740800.123456,
		"idx_stars_count": 12.0,
	}})

	st := New[model.Project](idx, Config{Index: model.IndexProjects}).Initialize(context.Background())
	require.Equal(t, StatusLoaded, st.Status, "err: %v", st.Err)
	require.Len(t, st.Items, 1)
	require.NotNil(t, st.Items[0].UpdatedAt)
	assert.Equal(t, int64(1727740800), st.Items[0].UpdatedAt.Int64())
	assert.Equal(t, model.Number(12), *st.Items[0].StarsCount)
}

func TestConcurrentActionsKeepInvariant(t *testing.T) {
	c := New[model.Project](manyProjects(80), Config{Index: model.IndexProjects, HitsPerPage: 10})
	c.Initialize(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.HandleSearch(context.Background(), fmt.Sprintf("%d", i%7))
				return
			}
			c.HandlePageChange(context.Background(), i)
		}(i)
	}
	wg.Wait()

	st := c.State()
	assert.Equal(t, StatusLoaded, st.Status)
	assert.GreaterOrEqual(t, st.CurrentPage, 1)
	assert.LessOrEqual(t, st.CurrentPage, max(st.TotalPages, 1))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "unknown", Status(42).String())
}
