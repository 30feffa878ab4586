// Package nestsearch defines the search abstraction used by every OWASP Nest
// front end: a Searcher bound to one index, the options it accepts, the pages it
// returns and the errors it reports.
package nestsearch

import "context"

// Searcher runs queries against a single index.
type Searcher interface {
	// Search executes query with the given options and returns one page of hits.
	Search(ctx context.Context, query string, opts ...SearchOption) (*Page, error)
}

// SearcherFunc is a function type that implements the Searcher interface.
// This allows using a function as a Searcher, similar to http.HandlerFunc.
type SearcherFunc func(context.Context, string, ...SearchOption) (*Page, error)

// Search implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) Search(ctx context.Context, query string, opts ...SearchOption) (*Page, error) {
	return f(ctx, query, opts...)
}

// Opener hands out Searchers by index name ("projects", "chapters", "users", ...).
type Opener interface {
	Open(index string) Searcher
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(index string) Searcher

// Open implements Opener.
func (f OpenerFunc) Open(index string) Searcher {
	return f(index)
}
