// Package present turns index records into view models shared by the web
// pages and the terminal browser.
package present

import (
	"net/url"
	"time"

	"github.com/owasp/nestsearch/internal/model"
)

// Button is the call to action of a card.
type Button struct {
	Label string
	Icon  string
	URL   string
}

// Card is the view model of one listing entry.
type Card struct {
	Title           string
	URL             string
	Subtitle        string
	Summary         string
	Avatar          string
	Level           *Level
	Icons           []Icon
	Leaders         []string
	TopContributors []model.TopContributor
	Topics          []string
	Social          []SocialLink
	Button          Button
}

// ProjectCard builds the card of a project.
func ProjectCard(p model.Project, now time.Time) Card {
	return Card{
		Title:   p.Name,
		URL:     p.URL,
		Summary: p.Summary,
		Level:   LevelOf(p.Level),
		Icons: FilteredIcons(nonZero(p.IconFields()), []string{
			"idx_updated_at",
			"idx_forks_count",
			"idx_stars_count",
			"idx_contributors_count",
		}, now),
		Leaders:         p.Leaders,
		TopContributors: p.TopContributors,
		Topics:          p.Topics,
		Button: Button{
			Label: "Contribute",
			Icon:  "fa-solid fa-code-fork",
			URL:   ContributeURL(p.Name),
		},
	}
}

// ChapterCard builds the card of a chapter.
func ChapterCard(c model.Chapter, now time.Time) Card {
	return Card{
		Title:           c.Name,
		URL:             c.URL,
		Subtitle:        joinNonEmpty(c.Region, c.Country),
		Summary:         c.Summary,
		Icons:           FilteredIcons(nonZero(c.IconFields()), []string{"idx_updated_at"}, now),
		Leaders:         c.Leaders,
		TopContributors: c.TopContributors,
		Social:          SocialLinks(c.RelatedURLs),
		Button: Button{
			Label: "Join",
			Icon:  "fa-solid fa-right-to-bracket",
			URL:   c.URL,
		},
	}
}

// CommitteeCard builds the card of a committee.
func CommitteeCard(c model.Committee, now time.Time) Card {
	return Card{
		Title:   c.Name,
		URL:     c.URL,
		Summary: c.Summary,
		Icons:   FilteredIcons(nonZero(c.IconFields()), []string{"idx_created_at", "idx_updated_at"}, now),
		Leaders: c.Leaders,
		Social:  SocialLinks(c.RelatedURLs),
		Button: Button{
			Label: "Learn More",
			Icon:  "fa-solid fa-people-group",
			URL:   c.URL,
		},
	}
}

// IssueCard builds the card of a contribution issue.
func IssueCard(i model.Issue, now time.Time) Card {
	return Card{
		Title:    i.Title,
		URL:      i.URL,
		Subtitle: i.ProjectName,
		Summary:  i.Summary,
		Icons:    FilteredIcons(nonZero(i.IconFields()), []string{"idx_created_at", "idx_comments_count"}, now),
		Button: Button{
			Label: "Read More",
			Icon:  "fa-brands fa-github",
			URL:   i.URL,
		},
	}
}

// UserCard builds the card of a user. now is unused; it keeps the builder
// signature shared by all cards.
func UserCard(u model.User, _ time.Time) Card {
	return Card{
		Title:    u.DisplayName(),
		URL:      u.URL,
		Subtitle: u.Company,
		Summary:  u.Bio,
		Avatar:   u.AvatarURL,
		Button: Button{
			Label: "View Details",
			Icon:  "fa-solid fa-user",
			URL:   UserURL(u.Key),
		},
	}
}

// ContributeURL is the issues listing prefilled with a project name.
func ContributeURL(projectName string) string {
	return "/projects/contribute?q=" + url.QueryEscape(projectName)
}

// UserURL is the detail page of the user with key.
func UserURL(key string) string {
	return "/users/" + url.PathEscape(key)
}

// GitHubProfileURL is the profile page of login.
func GitHubProfileURL(login string) string {
	return "https://www.github.com/" + url.PathEscape(login)
}

// Joined formats a unix timestamp the way the profile footer shows it.
func Joined(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("January 2, 2006")
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
