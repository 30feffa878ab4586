package present

import "strings"

// SocialLink is a related URL with the title and icon of the site it points to.
type SocialLink struct {
	Title string
	Icon  string
	URL   string
}

type urlMapping struct {
	key   string
	title string
	icon  string
}

// First match wins.
var urlMappings = []urlMapping{
	{key: "facebook.com", title: "Facebook", icon: "fa-brands fa-facebook"},
	{key: "instagram.com", title: "Instagram", icon: "fa-brands fa-instagram"},
	{key: "linkedin.com", title: "LinkedIn", icon: "fa-brands fa-linkedin"},
	{key: "youtube.com", title: "YouTube", icon: "fa-brands fa-youtube"},
	{key: "twitter.com", title: "Twitter", icon: "fa-brands fa-twitter"},
	{key: "github.com", title: "GitHub", icon: "fa-brands fa-github"},
	{key: "meetup.com", title: "Meetup", icon: "fa-brands fa-meetup"},
	{key: "slack.com", title: "Slack", icon: "fa-brands fa-slack"},
}

// SocialLinks maps each url to its site. Unknown sites get a generic globe.
func SocialLinks(urls []string) []SocialLink {
	links := make([]SocialLink, 0, len(urls))
	for _, u := range urls {
		link := SocialLink{Title: "Social Links", Icon: "fa-solid fa-globe", URL: u}
		for _, m := range urlMappings {
			if strings.Contains(u, m.key) {
				link.Title, link.Icon = m.title, m.icon
				break
			}
		}
		links = append(links, link)
	}
	return links
}
