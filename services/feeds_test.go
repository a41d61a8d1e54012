package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <id>urn:example</id>
  <updated>2024-01-03T00:00:00Z</updated>
  <entry>
    <title>First</title>
    <link href="http://example.com/first"/>
    <id>urn:1</id>
    <updated>2024-01-02T00:00:00Z</updated>
  </entry>
  <entry>
    <title>Second</title>
    <link href="http://example.com/second"/>
    <id>urn:2</id>
    <published>2024-01-01T00:00:00Z</published>
    <updated>2024-01-03T00:00:00Z</updated>
  </entry>
</feed>`

const rssFixture = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <link>http://example.com/</link>
    <description>posts</description>
    <item>
      <title>Dated</title>
      <link>http://example.com/dated</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Undated</title>
      <link>http://example.com/undated</link>
    </item>
    <item>
      <link>http://example.com/untitled</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/atom.xml", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, atomFixture)
	})
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFixture)
	})
	mux.HandleFunc("/blog/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html><head>
<title>My blog</title>
<link rel="stylesheet" href="/style.css">
<link rel="alternate" type="application/atom+xml" href="../atom.xml">
</head><body>hello</body></html>`)
	})
	mux.HandleFunc("/plain/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html><html><head><title>nothing</title></head><body></body></html>`)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, atomFixture)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFeedFetcher(t *testing.T) {
	server := newFeedServer(t)
	fetcher := NewFeedFetcher(5 * time.Second)
	ctx := context.Background()

	t.Run("atom entries fall back to the updated date", func(t *testing.T) {
		entries, errs := fetcher.Fetch(ctx, server.URL+"/atom.xml")
		assert.Empty(t, errs)
		require.Len(t, entries, 2)

		assert.Equal(t, FeedEntry{
			Link:      "http://example.com/first",
			Title:     "First",
			Published: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		}, entries[0])
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), entries[1].Published)
	})

	t.Run("incomplete rss items are reported, not returned", func(t *testing.T) {
		entries, errs := fetcher.Fetch(ctx, server.URL+"/rss")
		require.Len(t, entries, 1)
		assert.Equal(t, "Dated", entries[0].Title)
		assert.Len(t, errs, 2)
	})

	t.Run("html page advertising a feed is followed", func(t *testing.T) {
		entries, errs := fetcher.Fetch(ctx, server.URL+"/blog/")
		assert.Empty(t, errs)
		assert.Len(t, entries, 2)
	})

	t.Run("html page without a feed fails", func(t *testing.T) {
		entries, errs := fetcher.Fetch(ctx, server.URL+"/plain/")
		assert.Empty(t, entries)
		assert.NotEmpty(t, errs)
	})

	t.Run("http errors yield no entries", func(t *testing.T) {
		entries, errs := fetcher.Fetch(ctx, server.URL+"/missing")
		assert.Empty(t, entries)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "404")
	})

	t.Run("unreachable hosts yield no entries", func(t *testing.T) {
		entries, errs := fetcher.Fetch(ctx, "http://127.0.0.1:1/atom.xml")
		assert.Empty(t, entries)
		assert.NotEmpty(t, errs)
	})

	t.Run("timeouts count as failures", func(t *testing.T) {
		entries, errs := NewFeedFetcher(50*time.Millisecond).Fetch(ctx, server.URL+"/slow")
		assert.Empty(t, entries)
		assert.NotEmpty(t, errs)
	})
}

func TestDiscoverFeedURL(t *testing.T) {
	page := []byte(`<html><head>
<link rel="alternate" type="text/html" href="/other">
<link rel="alternate" type="application/rss+xml" href="/feed/rss">
</head></html>`)

	found, err := DiscoverFeedURL("http://example.com/blog/", page)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/feed/rss", found)

	_, err = DiscoverFeedURL("http://example.com/", []byte("<html></html>"))
	assert.Error(t, err)
}
