// Package model holds the typed records served by the OWASP indexes. Field
// tags follow the indexed layout: every attribute carries the idx_ prefix,
// except objectID. Optional numeric attributes are pointers so that a missing
// attribute can be told apart from a zero.
package model

// Number is a numeric index attribute: a count or a unix timestamp in
// seconds. The indexes store plain JSON numbers, which may carry a fraction.
type Number float64

// Int64 truncates n toward zero.
func (n Number) Int64() int64 { return int64(n) }

// Index names.
const (
	IndexProjects   = "projects"
	IndexChapters   = "chapters"
	IndexCommittees = "committees"
	IndexUsers      = "users"
	IndexIssues     = "issues"
)

// TopContributor is one entry of a project's or chapter's contributor list.
type TopContributor struct {
	Login              string `json:"login"`
	Name               string `json:"name,omitempty"`
	AvatarURL          string `json:"avatar_url,omitempty"`
	ContributionsCount Number `json:"contributions_count,omitempty"`
}

// DisplayName prefers the full name and falls back to the login.
func (c TopContributor) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Login
}

// Project is a record of the projects index.
type Project struct {
	ObjectID          string           `json:"objectID"`
	Key               string           `json:"idx_key,omitempty"`
	Name              string           `json:"idx_name"`
	Summary           string           `json:"idx_summary,omitempty"`
	URL               string           `json:"idx_url,omitempty"`
	Level             string           `json:"idx_level,omitempty"`
	Leaders           []string         `json:"idx_leaders,omitempty"`
	Topics            []string         `json:"idx_topics,omitempty"`
	TopContributors   []TopContributor `json:"idx_top_contributors,omitempty"`
	UpdatedAt         *Number          `json:"idx_updated_at,omitempty"`
	ForksCount        *Number          `json:"idx_forks_count,omitempty"`
	StarsCount        *Number          `json:"idx_stars_count,omitempty"`
	ContributorsCount *Number          `json:"idx_contributors_count,omitempty"`
}

// IconFields returns the icon-eligible attributes the record carries.
func (p Project) IconFields() map[string]any {
	return present(map[string]*Number{
		"idx_updated_at":         p.UpdatedAt,
		"idx_forks_count":        p.ForksCount,
		"idx_stars_count":        p.StarsCount,
		"idx_contributors_count": p.ContributorsCount,
	})
}

// Chapter is a record of the chapters index.
type Chapter struct {
	ObjectID        string           `json:"objectID"`
	Key             string           `json:"idx_key,omitempty"`
	Name            string           `json:"idx_name"`
	Summary         string           `json:"idx_summary,omitempty"`
	URL             string           `json:"idx_url,omitempty"`
	Country         string           `json:"idx_country,omitempty"`
	Region          string           `json:"idx_region,omitempty"`
	Leaders         []string         `json:"idx_leaders,omitempty"`
	RelatedURLs     []string         `json:"idx_related_urls,omitempty"`
	TopContributors []TopContributor `json:"idx_top_contributors,omitempty"`
	UpdatedAt       *Number          `json:"idx_updated_at,omitempty"`
}

// IconFields returns the icon-eligible attributes the record carries.
func (c Chapter) IconFields() map[string]any {
	return present(map[string]*Number{"idx_updated_at": c.UpdatedAt})
}

// Committee is a record of the committees index.
type Committee struct {
	ObjectID    string   `json:"objectID"`
	Key         string   `json:"idx_key,omitempty"`
	Name        string   `json:"idx_name"`
	Summary     string   `json:"idx_summary,omitempty"`
	URL         string   `json:"idx_url,omitempty"`
	Leaders     []string `json:"idx_leaders,omitempty"`
	RelatedURLs []string `json:"idx_related_urls,omitempty"`
	CreatedAt   *Number  `json:"idx_created_at,omitempty"`
	UpdatedAt   *Number  `json:"idx_updated_at,omitempty"`
}

// IconFields returns the icon-eligible attributes the record carries.
func (c Committee) IconFields() map[string]any {
	return present(map[string]*Number{
		"idx_created_at": c.CreatedAt,
		"idx_updated_at": c.UpdatedAt,
	})
}

// Issue is a record of the issues index, listed on the contribute page.
type Issue struct {
	ObjectID      string  `json:"objectID"`
	Title         string  `json:"idx_title"`
	Summary       string  `json:"idx_summary,omitempty"`
	URL           string  `json:"idx_url,omitempty"`
	ProjectName   string  `json:"idx_project_name,omitempty"`
	ProjectURL    string  `json:"idx_project_url,omitempty"`
	CreatedAt     *Number `json:"idx_created_at,omitempty"`
	CommentsCount *Number `json:"idx_comments_count,omitempty"`
}

// IconFields returns the icon-eligible attributes the record carries.
func (i Issue) IconFields() map[string]any {
	return present(map[string]*Number{
		"idx_created_at":     i.CreatedAt,
		"idx_comments_count": i.CommentsCount,
	})
}

// User is a record of the users index as listed on the users page.
type User struct {
	ObjectID              string `json:"objectID"`
	Key                   string `json:"idx_key"`
	Login                 string `json:"idx_login"`
	Name                  string `json:"idx_name,omitempty"`
	AvatarURL             string `json:"idx_avatar_url,omitempty"`
	Bio                   string `json:"idx_bio,omitempty"`
	Company               string `json:"idx_company,omitempty"`
	Location              string `json:"idx_location,omitempty"`
	Email                 string `json:"idx_email,omitempty"`
	URL                   string `json:"idx_url,omitempty"`
	FollowersCount        Number `json:"idx_followers_count,omitempty"`
	FollowingCount        Number `json:"idx_following_count,omitempty"`
	PublicRepositoryCount Number `json:"idx_public_repositories_count,omitempty"`
	CreatedAt             Number `json:"idx_created_at,omitempty"`
}

// DisplayName prefers the full name and falls back to the login.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// UserDetails is a users record after the idx_ prefix has been stripped; it is
// what the detail view renders.
type UserDetails struct {
	Key                   string `json:"key"`
	Login                 string `json:"login"`
	Name                  string `json:"name,omitempty"`
	AvatarURL             string `json:"avatar_url,omitempty"`
	Bio                   string `json:"bio,omitempty"`
	Company               string `json:"company,omitempty"`
	Location              string `json:"location,omitempty"`
	Email                 string `json:"email,omitempty"`
	URL                   string `json:"url,omitempty"`
	FollowersCount        Number `json:"followers_count"`
	FollowingCount        Number `json:"following_count"`
	PublicRepositoryCount Number `json:"public_repositories_count"`
	CreatedAt             Number `json:"created_at,omitempty"`
}

// DisplayName prefers the full name and falls back to the login.
func (u UserDetails) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

func present(values map[string]*Number) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if v != nil {
			out[k] = float64(*v)
		}
	}
	return out
}
