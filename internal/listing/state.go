package listing

// Status is the lifecycle position of a listing.
type Status int

const (
	// StatusIdle is the state before the first fetch.
	StatusIdle Status = iota
	// StatusLoading means a fetch is outstanding.
	StatusLoading
	// StatusLoaded means the latest fetch succeeded.
	StatusLoaded
	// StatusFailed means the latest fetch failed; the previous items are kept.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a listing page.
type State[T any] struct {
	Index string
	Title string

	Status   Status
	Items    []T
	IsLoaded bool

	// CurrentPage is 1-based and never exceeds max(TotalPages, 1).
	CurrentPage int
	TotalPages  int
	Total       int64

	SearchQuery string

	// Err is the error of the latest fetch when Status is StatusFailed.
	Err error

	// Version increases with every applied transition.
	Version uint64
}

// Empty reports whether a finished fetch matched nothing.
func (s State[T]) Empty() bool {
	return s.Status == StatusLoaded && s.TotalPages == 0
}

// ScrollOptions mirrors the browser's window.scrollTo argument.
type ScrollOptions struct {
	Top      int
	Behavior string
}

// ScrollToTop is what a page change requests.
var ScrollToTop = ScrollOptions{Top: 0, Behavior: "auto"}

// Scroller receives the scroll-to-top request issued after a page change.
type Scroller interface {
	ScrollTo(ScrollOptions)
}

// ScrollerFunc adapts a function to the Scroller interface.
type ScrollerFunc func(ScrollOptions)

// ScrollTo calls f(opts).
func (f ScrollerFunc) ScrollTo(opts ScrollOptions) {
	f(opts)
}

// clampPage pins page into [1, max(totalPages, 1)].
func clampPage(page, totalPages int) int {
	upper := max(totalPages, 1)
	switch {
	case page < 1:
		return 1
	case page > upper:
		return upper
	default:
		return page
	}
}
