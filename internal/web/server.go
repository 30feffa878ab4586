// Package web serves the listing and detail pages as server-rendered HTML.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/internal/model"
	"github.com/owasp/nestsearch/internal/present"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.html
var templateFS embed.FS

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs and failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHitsPerPage sets the page size of every listing.
func WithHitsPerPage(n int) Option {
	return func(s *Server) {
		s.hitsPerPage = n
	}
}

// WithClock replaces time.Now for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// Server renders pages from the indexes opener serves.
type Server struct {
	opener      nestsearch.Opener
	logger      *zap.Logger
	hitsPerPage int
	now         func() time.Time
	templates   map[string]*template.Template
}

// NewServer parses the page templates and returns a Server.
func NewServer(opener nestsearch.Opener, opts ...Option) (*Server, error) {
	s := &Server{
		opener:      opener,
		logger:      zap.NewNop(),
		hitsPerPage: nestsearch.DefaultHitsPerPage,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	funcs := template.FuncMap{
		"pageURL":   pageURL,
		"githubURL": present.GitHubProfileURL,
		"joined":    present.Joined,
		"comma":     humanize.Comma,
	}

	s.templates = make(map[string]*template.Template)
	for _, page := range []string{"listing.html", "user.html"} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/partials.html", "templates/"+page)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse template %s", page)
		}
		s.templates[page] = tmpl
	}
	return s, nil
}

// Handler returns the router with every page mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/projects", http.StatusFound)
	})

	projects, _ := present.ListingFor(model.IndexProjects)
	chapters, _ := present.ListingFor(model.IndexChapters)
	committees, _ := present.ListingFor(model.IndexCommittees)
	users, _ := present.ListingFor(model.IndexUsers)
	issues, _ := present.ListingFor(model.IndexIssues)

	r.Get(projects.Path, listingHandler(s, projects, present.ProjectCard))
	r.Get(chapters.Path, listingHandler(s, chapters, present.ChapterCard))
	r.Get(committees.Path, listingHandler(s, committees, present.CommitteeCard))
	r.Get(users.Path, listingHandler(s, users, present.UserCard))
	r.Get(issues.Path, listingHandler(s, issues, present.IssueCard))
	r.Get("/users/{key}", s.handleUser)

	r.Post("/theme", s.handleTheme)
	r.Get("/healthz", s.handleHealth)

	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) render(w http.ResponseWriter, page string, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates[page].ExecuteTemplate(w, page, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
	}
}

// pageURL links to page of a listing, keeping the query.
func pageURL(path, query string, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	v.Set("page", strconv.Itoa(page))
	return path + "?" + v.Encode()
}
