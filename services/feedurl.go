package services

import (
	"regexp"
	"strings"
)

var (
	atomSuffix = regexp.MustCompile(`atom\.xml/*$`)
	rssSuffix  = regexp.MustCompile(`rss/*$`)
)

// EnsureScheme prefixes http:// to anything that does not already start with
// "http".
func EnsureScheme(feedURL string) string {
	if strings.HasPrefix(feedURL, "http") {
		return feedURL
	}
	return "http://" + feedURL
}

// DisplayURL guesses the human readable blog address from its feed URL by
// dropping a trailing atom.xml or rss segment. Anything else is returned
// unchanged.
func DisplayURL(feedURL string) string {
	switch {
	case atomSuffix.MatchString(feedURL):
		return atomSuffix.ReplaceAllString(feedURL, "")
	case rssSuffix.MatchString(feedURL):
		return rssSuffix.ReplaceAllString(feedURL, "")
	default:
		return feedURL
	}
}
