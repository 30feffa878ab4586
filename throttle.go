package nestsearch

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// Throttle wraps s so that every call first waits for a token from limiter.
// A nil limiter returns s unchanged.
func Throttle(s Searcher, limiter *rate.Limiter) Searcher {
	if limiter == nil {
		return s
	}
	return SearcherFunc(func(ctx context.Context, query string, opts ...SearchOption) (*Page, error) {
		if err := limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			if errors.Is(err, context.Canceled) {
				return nil, ErrCanceled
			}
			return nil, errors.WithSecondaryError(ErrBackendUnavailable, errors.Wrap(err, "rate limiter"))
		}
		return s.Search(ctx, query, opts...)
	})
}

// ThrottleOpener applies one shared limiter to every Searcher o opens.
func ThrottleOpener(o Opener, limiter *rate.Limiter) Opener {
	if limiter == nil {
		return o
	}
	return OpenerFunc(func(index string) Searcher {
		return Throttle(o.Open(index), limiter)
	})
}
