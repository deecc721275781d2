package tui

import (
	"sort"
	"strings"

	"github.com/matheuskafuri/stockwire/internal/cache"
)

// tickerFilter is the filter modal state: the selectable tickers, an explicit
// selection index, and the active filter ("" means all articles).
type tickerFilter struct {
	tickers []string
	cursor  int
	active  string
}

func newTickerFilter(articles []cache.Article) tickerFilter {
	seen := make(map[string]bool)
	var tickers []string
	for _, a := range articles {
		for _, t := range a.Tickers {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	sort.Strings(tickers)
	return tickerFilter{tickers: tickers}
}

func (f *tickerFilter) selectCurrent() {
	if f.cursor < len(f.tickers) {
		f.active = f.tickers[f.cursor]
	}
}

func (f *tickerFilter) apply(articles []cache.Article) []cache.Article {
	if f.active == "" {
		return articles
	}
	var out []cache.Article
	for _, a := range articles {
		for _, t := range a.Tickers {
			if t == f.active {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func (f *tickerFilter) render() string {
	var b strings.Builder
	b.WriteString(filterTitleStyle.Render("Filter by ticker"))
	b.WriteString("\n\n")
	for i, t := range f.tickers {
		line := "  " + t
		if t == f.active {
			line += " (active)"
		}
		if i == f.cursor {
			b.WriteString(itemSelectedStyle.Render("> " + strings.TrimLeft(line, " ")))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpDimStyle.Render("enter select  esc cancel"))
	return filterCardStyle.Render(b.String())
}
