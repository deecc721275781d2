package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matheuskafuri/stockwire/internal/config"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Markets</title>
<item>
  <title>Apple rallies after earnings</title>
  <link>https://example.com/apple-rallies</link>
  <description>AAPL shares jumped in after-hours trading.</description>
  <pubDate>Mon, 02 Jun 2025 14:00:00 GMT</pubDate>
</item>
<item>
  <title>Fed holds rates steady</title>
  <link>https://example.com/fed-holds</link>
  <description>No change this quarter.</description>
  <atom:updated xmlns:atom="http://www.w3.org/2005/Atom">2025-06-01T10:00:00Z</atom:updated>
</item>
<item>
  <title>Undated market note</title>
  <link>https://example.com/undated</link>
  <description>No date on this one.</description>
</item>
</channel>
</rss>`

func rssServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchParsesEntries(t *testing.T) {
	srv := rssServer(t, sampleRSS)

	f := NewRSSFetcher()
	articles, err := f.Fetch(context.Background(), config.Source{Name: "Test Markets", URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Apple rallies after earnings" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Source != "Test Markets" {
		t.Errorf("unexpected source %q", first.Source)
	}
	if first.Published.IsZero() {
		t.Error("expected parsed pubDate")
	}
	if first.Tickers != nil || first.PrimaryTicker != "" || first.Prices != nil {
		t.Error("feed stage must leave tickers and prices unset")
	}
}

func TestFetchMissingDateStaysZero(t *testing.T) {
	srv := rssServer(t, sampleRSS)

	f := NewRSSFetcher()
	articles, err := f.Fetch(context.Background(), config.Source{Name: "Test Markets", URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	undated := articles[2]
	if undated.Title != "Undated market note" {
		t.Fatalf("unexpected article order: %q", undated.Title)
	}
	if !undated.Published.IsZero() {
		t.Errorf("undated entry must keep a zero publish time, got %v", undated.Published)
	}
}

func TestFetchBadFeed(t *testing.T) {
	srv := rssServer(t, "this is not xml at all")

	f := NewRSSFetcher()
	_, err := f.Fetch(context.Background(), config.Source{Name: "Broken", URL: srv.URL})
	if err == nil {
		t.Fatal("expected error for unparseable feed")
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	good := rssServer(t, sampleRSS)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	sources := []config.Source{
		{Name: "Good", URL: good.URL},
		{Name: "Bad", URL: bad.URL},
	}

	result := FetchAll(context.Background(), sources)
	if len(result.Articles) != 3 {
		t.Errorf("expected 3 articles from the healthy source, got %d", len(result.Articles))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error from the failing source, got %d", len(result.Errors))
	}
}

func TestArticleID(t *testing.T) {
	a := articleID("https://example.com/post-1")
	b := articleID("https://example.com/post-2")
	if a == b {
		t.Error("different URLs should produce different IDs")
	}
	if a != articleID("https://example.com/post-1") {
		t.Error("same URL should produce same ID")
	}
	if len(a) != 32 {
		t.Errorf("expected 32-char hex string, got %d chars", len(a))
	}
}
