package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/internal/detail"
	"github.com/owasp/nestsearch/internal/listing"
	"github.com/owasp/nestsearch/internal/model"
	"github.com/owasp/nestsearch/internal/present"
	"github.com/owasp/nestsearch/internal/theme"
	"go.uber.org/zap"
)

type navItem struct {
	Title  string
	Path   string
	Active bool
}

type chrome struct {
	Title string
	Theme theme.Theme
	Nav   []navItem
	Path  string
	Error string
}

func (s *Server) chrome(r *http.Request, title, active string) chrome {
	nav := make([]navItem, 0, len(present.Listings))
	for _, l := range present.Listings {
		nav = append(nav, navItem{Title: l.Title, Path: l.Path, Active: l.Path == active})
	}
	return chrome{
		Title: title,
		Theme: theme.FromRequest(r),
		Nav:   nav,
		Path:  r.URL.RequestURI(),
	}
}

type listingView struct {
	chrome
	Listing     present.Listing
	Query       string
	Cards       []present.Card
	Empty       bool
	Total       int64
	CurrentPage int
	TotalPages  int
	Pagination  present.Pagination
	Scroll      template.JS
}

// listingHandler serves one listing page. Each request builds its own
// controller, initializes it with the submitted query and, when another page
// was asked for, changes to that page.
func listingHandler[T any](s *Server, l present.Listing, card func(T, time.Time) present.Card) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		query := strings.TrimSpace(params.Get("q"))

		var scroll *listing.ScrollOptions
		ctrl := listing.New[T](s.opener.Open(l.Index),
			listing.Config{Index: l.Index, PageTitle: l.Title, HitsPerPage: s.hitsPerPage},
			listing.WithLogger(s.logger),
			listing.WithInitialQuery(query),
			listing.WithScroller(listing.ScrollerFunc(func(opts listing.ScrollOptions) {
				scroll = &opts
			})),
		)

		st := ctrl.Initialize(r.Context())
		if raw := params.Get("page"); raw != "" && st.Status == listing.StatusLoaded {
			if page, err := strconv.Atoi(raw); err == nil && page != 1 {
				st = ctrl.HandlePageChange(r.Context(), page)
			}
		}

		view := listingView{
			chrome:      s.chrome(r, l.Title, l.Path),
			Listing:     l,
			Query:       st.SearchQuery,
			Empty:       st.Empty(),
			Total:       st.Total,
			CurrentPage: st.CurrentPage,
			TotalPages:  st.TotalPages,
			Pagination:  present.PageLinks(st.CurrentPage, st.TotalPages),
		}
		now := s.now()
		for _, item := range st.Items {
			view.Cards = append(view.Cards, card(item, now))
		}
		if scroll != nil {
			view.Scroll = scrollScript(*scroll)
		}

		status := http.StatusOK
		if st.Status == listing.StatusFailed {
			status = http.StatusBadGateway
			view.Error = "The search service is unavailable. Please try again later."
		}
		s.render(w, "listing.html", status, view)
	}
}

func scrollScript(opts listing.ScrollOptions) template.JS {
	return template.JS(fmt.Sprintf("window.scrollTo({top: %d, behavior: '%s'})", opts.Top, template.JSEscapeString(opts.Behavior)))
}

type userView struct {
	chrome
	User     *model.UserDetails
	NotFound bool
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	view := userView{chrome: s.chrome(r, "OWASP Community", "/users")}

	user, err := detail.LookupUser(r.Context(), s.opener, key)
	switch {
	case errors.Is(err, nestsearch.ErrNotFound):
		view.NotFound = true
		view.Title = "User not found"
		s.render(w, "user.html", http.StatusNotFound, view)
	case err != nil:
		s.logger.Error("user lookup failed", zap.String("key", key), zap.Error(err))
		view.Error = "The search service is unavailable. Please try again later."
		s.render(w, "user.html", http.StatusBadGateway, view)
	default:
		view.User = user
		view.Title = user.DisplayName()
		s.render(w, "user.html", http.StatusOK, view)
	}
}

// handleTheme flips the stored theme and sends the client back where it was.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := theme.FromRequest(r).Toggle()
	theme.SetCookie(w, next)

	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// safeReturn only accepts local paths.
func safeReturn(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
