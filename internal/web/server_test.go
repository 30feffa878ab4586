package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/inmemory"
	"github.com/owasp/nestsearch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.October, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opener nestsearch.Opener, opts ...Option) http.Handler {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := NewServer(opener, opts...)
	require.NoError(t, err)
	return s.Handler()
}

func fixtureOpener(t *testing.T) nestsearch.Opener {
	t.Helper()
	store := inmemory.NewStore()
	require.NoError(t, store.LoadFile("../../inmemory/testdata/fixtures.json"))
	return store
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestChapterListing(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	res, body := get(t, h, "/chapters")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Chapter 1")
	assert.Contains(t, body, "This is a summary of Chapter 1.")
	for _, leader := range []string{"Isanori Sakanashi", "Takeshi Murai", "Yukiharu Niwa"} {
		assert.Contains(t, body, leader)
	}
	assert.Equal(t, 3, strings.Count(body, `class="leader"`))
	assert.Contains(t, body, "Join</a>")
	assert.Contains(t, body, `href="https://www.meetup.com/owasp-chapter-1"`)
	assert.NotContains(t, body, "window.scrollTo")
}

func TestListingEmptyMessageOnce(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	res, body := get(t, h, "/projects?q=nothing-matches-this")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, strings.Count(body, "No projects found"))
	assert.NotContains(t, body, `class="card"`)
	assert.NotContains(t, body, `class="pagination"`)
}

func TestProjectListing(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	_, body := get(t, h, "/projects?q=zap")
	assert.Contains(t, body, "OWASP ZAP")
	assert.Contains(t, body, "Flagship")
	assert.Contains(t, body, "12,800")
	assert.Contains(t, body, `href="/projects/contribute?q=OWASP`)
	assert.Contains(t, body, `value="zap"`)
}

func TestContributeListing(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	res, body := get(t, h, "/projects/contribute?q="+url.QueryEscape("OWASP Juice Shop"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "New challenge: broken access control")
	assert.Contains(t, body, "Read More")
}

func TestUserListingLinksToDetails(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	_, body := get(t, h, "/users")
	assert.Contains(t, body, `href="/users/ahmedtest"`)
	assert.Contains(t, body, "View Details")
}

func pagedOpener(n int) nestsearch.Opener {
	store := inmemory.NewStore()
	idx := store.Index(model.IndexProjects)
	for i := 1; i <= n; i++ {
		idx.AddDocument(inmemory.Document{
			ID:     fmt.Sprintf("p-%02d", i),
			Fields: map[string]any{"idx_name": fmt.Sprintf("Project %02d", i)},
		})
	}
	return store
}

func TestPageChange(t *testing.T) {
	h := newTestServer(t, pagedOpener(30), WithHitsPerPage(10))

	t.Run("SecondPage", func(t *testing.T) {
		res, body := get(t, h, "/projects?page=2")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "window.scrollTo({top: 0, behavior: 'auto'})")
		assert.Contains(t, body, `<span aria-current="page">2</span>`)
		assert.Contains(t, body, "Project 11")
		assert.NotContains(t, body, "Project 10<")
	})

	t.Run("PastTheEndClamps", func(t *testing.T) {
		_, body := get(t, h, "/projects?page=99")
		assert.Contains(t, body, `<span aria-current="page">3</span>`)
		assert.Contains(t, body, "Project 30")
	})

	t.Run("FirstPageDoesNotScroll", func(t *testing.T) {
		_, body := get(t, h, "/projects?page=1")
		assert.NotContains(t, body, "window.scrollTo")
		assert.Contains(t, body, `href="/projects?page=2"`)
	})

	t.Run("InvalidPageIgnored", func(t *testing.T) {
		res, body := get(t, h, "/projects?page=abc")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, `<span aria-current="page">1</span>`)
	})
}

func TestUserDetails(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	res, body := get(t, h, "/users/ahmedtest")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Ahmed Test")
	assert.Contains(t, body, "@ahmedtest")
	assert.Contains(t, body, `href="https://www.github.com/ahmedtest"`)
	assert.Contains(t, body, "Visit GitHub Profile")
	assert.Contains(t, body, "Cairo")
	assert.Contains(t, body, "mailto:ahmed@example.org")
	assert.Contains(t, body, "<strong>120</strong> Followers")
	assert.Contains(t, body, "Joined January 1, 2015")
}

func TestUserNotFound(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	res, body := get(t, h, "/users/nobody")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "<h1>User not found</h1>")
	assert.NotContains(t, body, "spinner")
	assert.NotContains(t, body, "Loading")
}

func failingOpener() nestsearch.Opener {
	return nestsearch.OpenerFunc(func(string) nestsearch.Searcher {
		return nestsearch.SearcherFunc(func(context.Context, string, ...nestsearch.SearchOption) (*nestsearch.Page, error) {
			return nil, nestsearch.ErrBackendUnavailable
		})
	})
}

func TestBackendFailure(t *testing.T) {
	h := newTestServer(t, failingOpener())

	res, body := get(t, h, "/committees")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, body, `role="alert"`)
	assert.NotContains(t, body, "No committees found")

	res, body = get(t, h, "/users/ahmedtest")
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, body, `role="alert"`)
	assert.NotContains(t, body, "User not found")
}

func TestThemeToggleSurvivesReload(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	_, body := get(t, h, "/chapters")
	assert.Contains(t, body, `<body class="light">`)

	toggle := func(cookies ...*http.Cookie) *http.Response {
		form := url.Values{"return": {"/chapters"}}
		req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Result()
	}

	res := toggle()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/chapters", res.Header.Get("Location"))
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "dark", cookies[0].Value)

	// Reload with the stored cookie.
	_, body = get(t, h, "/chapters", cookies[0])
	assert.Contains(t, body, `<body class="dark">`)

	res = toggle(cookies[0])
	require.Len(t, res.Cookies(), 1)
	assert.Equal(t, "light", res.Cookies()[0].Value)
}

func TestSafeReturn(t *testing.T) {
	tests := map[string]string{
		"/chapters?q=x":   "/chapters?q=x",
		"":                "/",
		"https://evil.io": "/",
		"//evil.io":       "/",
		`/\evil.io`:       "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeReturn(in), "safeReturn(%q)", in)
	}
}

func TestRootAndHealth(t *testing.T) {
	h := newTestServer(t, fixtureOpener(t))

	res, _ := get(t, h, "/")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/projects", res.Header.Get("Location"))

	res, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
