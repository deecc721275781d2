package ticker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// catalogTTL is how long the on-disk ticker map stays fresh, judged by file
// modification time.
const catalogTTL = 7 * 24 * time.Hour

const (
	sp500URL     = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	nasdaq100URL = "https://en.wikipedia.org/wiki/Nasdaq-100"
)

// Column header aliases tried when locating the ticker and company columns.
// The second index's table layout is not fixed across revisions.
var (
	symbolHeaders  = []string{"symbol", "ticker", "ticker symbol"}
	companyHeaders = []string{"security", "company", "company name"}
)

type Catalog struct {
	cachePath string
	client    *http.Client

	// Overridable in tests.
	primaryURL   string
	secondaryURL string
}

func NewCatalog(cachePath string) *Catalog {
	return &Catalog{
		cachePath:    cachePath,
		client:       &http.Client{Timeout: 20 * time.Second},
		primaryURL:   sp500URL,
		secondaryURL: nasdaq100URL,
	}
}

// MajorStocks returns the ticker -> company name map. Cache-first: a fresh
// on-disk map short-circuits any network fetch. On refresh failure it falls
// back to the stale cache, and only with no cache at all to the hardcoded
// large-cap set. Never returns an empty map.
func (c *Catalog) MajorStocks(ctx context.Context) map[string]string {
	if cached, ok := c.loadCache(catalogTTL); ok {
		return cached
	}

	stocks, err := c.refresh(ctx)
	if err == nil && len(stocks) > 0 {
		if err := c.saveCache(stocks); err != nil {
			slog.Warn("Saving ticker catalog cache failed", "path", c.cachePath, "error", err)
		}
		return stocks
	}
	slog.Warn("Ticker catalog refresh failed", "error", err)

	// Stale cache beats the hardcoded fallback.
	if cached, ok := c.loadCache(0); ok {
		return cached
	}
	return fallbackStocks()
}

// refresh pulls the S&P 500 membership table plus the Nasdaq-100 table and
// merges them. A full-map replace, never a partial merge.
func (c *Catalog) refresh(ctx context.Context) (map[string]string, error) {
	stocks := make(map[string]string)

	sp, err := c.fetchIndex(ctx, c.primaryURL)
	if err != nil {
		return nil, fmt.Errorf("fetching S&P 500 members: %w", err)
	}
	for sym, name := range sp {
		stocks[sym] = name
	}

	// The second index is best-effort: its absence degrades coverage, not
	// correctness.
	nd, err := c.fetchIndex(ctx, c.secondaryURL)
	if err != nil {
		slog.Warn("Fetching Nasdaq-100 members failed", "error", err)
	} else {
		for sym, name := range nd {
			stocks[sym] = name
		}
	}

	return stocks, nil
}

func (c *Catalog) fetchIndex(ctx context.Context, url string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "stockwire/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing index page: %w", err)
	}
	return parseIndexTables(doc)
}

// parseIndexTables walks the document's tables and returns members from the
// first table that supplies both a ticker column and a company column,
// resolving varying column names through the header alias lists.
func parseIndexTables(doc *goquery.Document) (map[string]string, error) {
	var (
		stocks map[string]string
		found  bool
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		symCol, companyCol := -1, -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			header := strings.ToLower(strings.TrimSpace(th.Text()))
			if symCol < 0 && matchesHeader(header, symbolHeaders) {
				symCol = i
			}
			if companyCol < 0 && matchesHeader(header, companyHeaders) {
				companyCol = i
			}
		})
		if symCol < 0 || companyCol < 0 {
			return true // try the next table
		}

		stocks = make(map[string]string)
		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := tr.Find("td")
			sym := strings.ToUpper(strings.TrimSpace(cells.Eq(symCol).Text()))
			company := strings.TrimSpace(cells.Eq(companyCol).Text())
			if sym == "" || company == "" {
				return
			}
			stocks[sym] = company
		})
		found = len(stocks) > 0
		return !found
	})

	if !found {
		return nil, fmt.Errorf("no table with ticker and company columns")
	}
	return stocks, nil
}

func matchesHeader(header string, aliases []string) bool {
	for _, a := range aliases {
		if header == a || strings.HasPrefix(header, a) {
			return true
		}
	}
	return false
}

func (c *Catalog) loadCache(maxAge time.Duration) (map[string]string, bool) {
	info, err := os.Stat(c.cachePath)
	if err != nil {
		return nil, false
	}
	if maxAge > 0 && time.Since(info.ModTime()) > maxAge {
		return nil, false
	}

	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil, false
	}
	var stocks map[string]string
	if err := json.Unmarshal(data, &stocks); err != nil {
		// Corrupt cache is a miss, never fatal.
		slog.Warn("Ticker catalog cache unreadable", "path", c.cachePath, "error", err)
		return nil, false
	}
	if len(stocks) == 0 {
		return nil, false
	}
	return stocks, true
}

func (c *Catalog) saveCache(stocks map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(stocks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.cachePath, data, 0o644)
}

// fallbackStocks is the last-resort catalog when no cache exists at all and
// every fetch failed.
func fallbackStocks() map[string]string {
	return map[string]string{
		"AAPL":  "Apple Inc.",
		"MSFT":  "Microsoft Corporation",
		"GOOGL": "Alphabet Inc.",
		"GOOG":  "Alphabet Inc.",
		"AMZN":  "Amazon.com, Inc.",
		"META":  "Meta Platforms, Inc.",
		"TSLA":  "Tesla, Inc.",
		"NVDA":  "NVIDIA Corporation",
		"NFLX":  "Netflix, Inc.",
		"AMD":   "Advanced Micro Devices, Inc.",
		"INTC":  "Intel Corporation",
		"JPM":   "JPMorgan Chase & Co.",
		"V":     "Visa Inc.",
		"WMT":   "Walmart Inc.",
		"DIS":   "The Walt Disney Company",
		"BA":    "The Boeing Company",
		"XOM":   "Exxon Mobil Corporation",
		"KO":    "The Coca-Cola Company",
		"PFE":   "Pfizer Inc.",
		"BAC":   "Bank of America Corporation",
	}
}
