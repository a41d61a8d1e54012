package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	feedUserAgent   = "blogroll/1.0 (+feed fetcher)"
	maxFeedBodySize = 10 << 20
)

// FeedEntry is one usable item of a feed. All three fields are always set.
type FeedEntry struct {
	Link      string
	Title     string
	Published time.Time
}

// FeedFetcher downloads and parses RSS, Atom and JSON feeds.
type FeedFetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

func NewFeedFetcher(timeout time.Duration) *FeedFetcher {
	return &FeedFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		parser: gofeed.NewParser(),
	}
}

// Fetch returns the complete entries of the feed at feedURL together with one
// error per problem found. When the document itself cannot be retrieved or
// parsed the entry list is empty. If feedURL points at an HTML page that
// advertises a feed through <link rel="alternate">, that feed is used instead.
func (f *FeedFetcher) Fetch(ctx context.Context, feedURL string) ([]FeedEntry, []error) {
	body, err := f.get(ctx, feedURL)
	if err != nil {
		return nil, []error{err}
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		alternate, derr := DiscoverFeedURL(feedURL, body)
		if derr != nil {
			return nil, []error{fmt.Errorf("%s is not a feed: %w", feedURL, derr)}
		}
		if body, err = f.get(ctx, alternate); err != nil {
			return nil, []error{err}
		}
		feed, err = f.parser.Parse(bytes.NewReader(body))
		feedURL = alternate
	}
	if err != nil {
		return nil, []error{fmt.Errorf("parse feed %s: %w", feedURL, err)}
	}

	return collectEntries(feed)
}

func (f *FeedFetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/atom+xml, application/rss+xml, application/feed+json, application/xml;q=0.9, text/html;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return body, nil
}

func collectEntries(feed *gofeed.Feed) ([]FeedEntry, []error) {
	var (
		entries []FeedEntry
		errs    []error
	)
	for i, item := range feed.Items {
		if item == nil {
			continue
		}

		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		title := strings.TrimSpace(item.Title)

		var published *time.Time
		switch {
		case item.PublishedParsed != nil:
			published = item.PublishedParsed
		case item.UpdatedParsed != nil:
			published = item.UpdatedParsed
		}

		switch {
		case link == "":
			errs = append(errs, fmt.Errorf("entry %d (%q): no link", i, title))
		case title == "":
			errs = append(errs, fmt.Errorf("entry %d (%s): no title", i, link))
		case published == nil:
			errs = append(errs, fmt.Errorf("entry %d (%s): no date", i, link))
		default:
			entries = append(entries, FeedEntry{
				Link:      link,
				Title:     title,
				Published: published.UTC(),
			})
		}
	}
	return entries, errs
}

// DiscoverFeedURL finds the first RSS or Atom feed an HTML page links to and
// resolves it against pageURL.
func DiscoverFeedURL(pageURL string, page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var href string
	doc.Find(`link[rel="alternate"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		kind := strings.ToLower(sel.AttrOr("type", ""))
		if !strings.Contains(kind, "rss") && !strings.Contains(kind, "atom") {
			return true
		}
		href = strings.TrimSpace(sel.AttrOr("href", ""))
		return href == ""
	})
	if href == "" {
		return "", errors.New("no feed link found in page")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse feed link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
