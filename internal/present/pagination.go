package present

// PageLink is one entry of the pagination control. Ellipsis entries have no page.
type PageLink struct {
	Page     int
	Current  bool
	Ellipsis bool
}

// Pagination is the control shown under a listing.
type Pagination struct {
	Links    []PageLink
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// Visible reports whether the control has anything to show.
func (p Pagination) Visible() bool {
	return len(p.Links) > 0
}

// PageLinks builds the control for current of total pages: the first and last
// pages, the neighbours of current, and an ellipsis for every gap.
func PageLinks(current, total int) Pagination {
	if total <= 1 {
		return Pagination{}
	}
	current = min(max(current, 1), total)

	var pages []int
	for _, p := range []int{1, current - 1, current, current + 1, total} {
		if p < 1 || p > total {
			continue
		}
		if n := len(pages); n > 0 && pages[n-1] >= p {
			continue
		}
		pages = append(pages, p)
	}

	links := make([]PageLink, 0, len(pages)+2)
	for i, p := range pages {
		if i > 0 && p-pages[i-1] > 1 {
			links = append(links, PageLink{Ellipsis: true})
		}
		links = append(links, PageLink{Page: p, Current: p == current})
	}

	return Pagination{
		Links:    links,
		HasPrev:  current > 1,
		HasNext:  current < total,
		PrevPage: max(current-1, 1),
		NextPage: min(current+1, total),
	}
}
