package nestsearch

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

func TestThrottle(t *testing.T) {
	calls := 0
	base := SearcherFunc(func(ctx context.Context, query string, opts ...SearchOption) (*Page, error) {
		calls++
		return &Page{Query: query, CurrentPage: 1}, nil
	})

	t.Run("NilLimiter", func(t *testing.T) {
		if _, err := Throttle(base, nil).Search(context.Background(), "zap"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("PassesThrough", func(t *testing.T) {
		s := Throttle(base, rate.NewLimiter(rate.Inf, 1))
		page, err := s.Search(context.Background(), "zap")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if page.Query != "zap" {
			t.Errorf("Expected query to pass through, got %q", page.Query)
		}
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		before := calls
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		limiter.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Throttle(base, limiter).Search(ctx, "zap")
		if !errors.Is(err, ErrCanceled) {
			t.Errorf("Expected ErrCanceled, got %v", err)
		}
		if calls != before {
			t.Error("Searcher must not be called when the limiter rejects")
		}
	})

	t.Run("DeadlineBeyondReservation", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		limiter.Allow()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := Throttle(base, limiter).Search(ctx, "zap")
		if CodeOf(err) == 0 {
			t.Errorf("Expected a coded error, got %v", err)
		}
	})
}

func TestThrottleOpener(t *testing.T) {
	opened := ""
	o := OpenerFunc(func(index string) Searcher {
		opened = index
		return SearcherFunc(func(ctx context.Context, query string, opts ...SearchOption) (*Page, error) {
			return &Page{}, nil
		})
	})

	s := ThrottleOpener(o, rate.NewLimiter(rate.Inf, 1)).Open("chapters")
	if _, err := s.Search(context.Background(), ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if opened != "chapters" {
		t.Errorf("Expected chapters to be opened, got %q", opened)
	}
}
