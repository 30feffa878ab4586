package present

import "github.com/owasp/nestsearch/internal/model"

// Listing describes one searchable page.
type Listing struct {
	Index        string
	Title        string
	Path         string
	EmptyMessage string
	Placeholder  string
}

// Listings in navigation order.
var Listings = []Listing{
	{
		Index:        model.IndexProjects,
		Title:        "OWASP Projects",
		Path:         "/projects",
		EmptyMessage: "No projects found",
		Placeholder:  "Search for OWASP projects...",
	},
	{
		Index:        model.IndexChapters,
		Title:        "OWASP Chapters",
		Path:         "/chapters",
		EmptyMessage: "No chapters found",
		Placeholder:  "Search for OWASP chapters...",
	},
	{
		Index:        model.IndexCommittees,
		Title:        "OWASP Committees",
		Path:         "/committees",
		EmptyMessage: "No committees found",
		Placeholder:  "Search for OWASP committees...",
	},
	{
		Index:        model.IndexUsers,
		Title:        "OWASP Community",
		Path:         "/users",
		EmptyMessage: "No users found",
		Placeholder:  "Search for OWASP users...",
	},
	{
		Index:        model.IndexIssues,
		Title:        "Contribute to OWASP",
		Path:         "/projects/contribute",
		EmptyMessage: "No issues found",
		Placeholder:  "Search for issues...",
	},
}

// ListingFor returns the listing that reads index.
func ListingFor(index string) (Listing, bool) {
	for _, l := range Listings {
		if l.Index == index {
			return l, true
		}
	}
	return Listing{}, false
}
