package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/rpupo63/blogroll/models"
)

const feedTitle = "Hacker School Blogroll"

// ItemURL is the absolute address of a post's comment page.
func ItemURL(siteURL, slug string) string {
	return strings.TrimRight(siteURL, "/") + "/item/" + slug
}

// RenderAtom renders every post of feed as an Atom document. Entries point at
// the local comment page; the source URL is kept in the summary.
func RenderAtom(feed models.Feed) (string, error) {
	site := strings.TrimRight(feed.SiteURL, "/")

	out := &feeds.Feed{
		Title:       feedTitle,
		Link:        &feeds.Link{Href: site + "/"},
		Description: "New posts from the blogroll",
		Id:          site + "/feed",
	}

	for _, p := range feed.Posts {
		link := ItemURL(site, p.Slug)
		out.Items = append(out.Items, &feeds.Item{
			Id:          link,
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Source:      &feeds.Link{Href: p.URL},
			Author:      &feeds.Author{Name: p.Author},
			Description: fmt.Sprintf(`Posted by %s at <a href="%s">%s</a>`, html.EscapeString(p.Author), html.EscapeString(p.URL), html.EscapeString(p.URL)),
			Created:     p.DateUpdated,
			Updated:     p.DateUpdated,
		})
		if p.DateUpdated.After(out.Updated) {
			out.Updated = p.DateUpdated
		}
	}
	if out.Updated.IsZero() {
		out.Updated = time.Now().UTC()
	}

	return out.ToAtom()
}
