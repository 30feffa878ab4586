package nestsearch

// Hit is one record returned by a search.
type Hit struct {
	// ID is the backend object identifier.
	ID string

	// Fields holds the raw record, keys carry the idx_ prefix.
	Fields map[string]any
}

// Page is the result of one search call. Each call produces a fresh Page that
// replaces whatever the caller held before.
type Page struct {
	// Hits are the records on this page, in backend order.
	Hits []Hit

	// CurrentPage is the 1-based page number that was served.
	CurrentPage int

	// TotalPages is the number of pages available for the query; 0 when nothing matched.
	TotalPages int

	// Total is the number of matching records across all pages.
	Total int64

	// HitsPerPage is the page size the backend applied.
	HitsPerPage int

	// Query is the query string that produced this page.
	Query string

	// Took is the time taken to execute the search in milliseconds.
	Took int64
}

// Empty reports whether the search matched nothing.
func (p *Page) Empty() bool {
	return p == nil || p.TotalPages == 0 || len(p.Hits) == 0
}

// TotalPagesFor returns the number of pages needed to hold total records.
func TotalPagesFor(total int64, hitsPerPage int) int {
	if total <= 0 || hitsPerPage <= 0 {
		return 0
	}
	return int((total + int64(hitsPerPage) - 1) / int64(hitsPerPage))
}
