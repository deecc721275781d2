package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matheuskafuri/stockwire/internal/cache"
	"github.com/matheuskafuri/stockwire/internal/config"
	"github.com/mmcdole/gofeed"
)

// maxWorkers caps concurrent in-flight feed fetches so a long source list
// does not open an unbounded number of outbound connections.
const maxWorkers = 10

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]cache.Article, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	p := gofeed.NewParser()
	p.UserAgent = "stockwire/1.0"
	return &RSSFetcher{parser: p}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]cache.Article, error) {
	parsed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	now := time.Now()
	articles := make([]cache.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		// Published falls back to updated; if neither parses the date stays
		// zero so the reverse-chronological sort ranks the article last.
		// Never default to "now".
		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		articles = append(articles, cache.Article{
			ID:        articleID(item.Link),
			Source:    source.Name,
			Title:     item.Title,
			Link:      item.Link,
			Summary:   summary,
			Published: pub,
			FetchedAt: now,
		})
	}
	return articles, nil
}

func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

type FetchResult struct {
	Articles []cache.Article
	Errors   []error
}

// FetchAll fans out over the sources with at most maxWorkers concurrent
// fetches. A failing source contributes an error, never aborts the batch.
func FetchAll(ctx context.Context, sources []config.Source) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	fetcher := NewRSSFetcher()
	sem := make(chan struct{}, maxWorkers)

	for _, src := range sources {
		wg.Add(1)
		go func(s config.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			articles, err := fetcher.Fetch(ctx, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Feed fetch failed", "source", s.Name, "error", err)
				result.Errors = append(result.Errors, err)
				return
			}
			slog.Debug("Feed fetched", "source", s.Name, "articles", len(articles))
			result.Articles = append(result.Articles, articles...)
		}(src)
	}

	wg.Wait()
	return result
}
