package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/stockwire/internal/cache"
)

func renderPreview(article *cache.Article, related []cache.Article, width, height int) string {
	if article == nil {
		return centerText("Select an article", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(article.Title)

	dateStr := "no date"
	if !article.Published.IsZero() {
		dateStr = article.Published.Format("Jan 2, 2006 15:04")
	}
	source := previewSourceStyle.Render(fmt.Sprintf("%s · %s", article.Source, dateStr))

	sections := []string{title, source}

	if len(article.Tickers) > 0 {
		sections = append(sections, renderTickerLine(article, contentWidth))
	}

	body := stripHTML(article.Summary)
	if body == "" {
		body = "(No summary available)"
	}
	sections = append(sections, "", previewBodyStyle.Width(contentWidth).Render(wrapText(body, contentWidth)))
	sections = append(sections, "", previewLinkStyle.Width(contentWidth).Render("Read more: "+article.Link))

	if len(related) > 0 {
		sections = append(sections, "", previewRelatedHeadStyle.Render("Related"))
		for _, r := range related {
			line := fmt.Sprintf("%s %s (%s)",
				itemTimeStyle.Render(relativeTime(r.Published)),
				truncateStr(r.Title, contentWidth-20),
				strings.Join(r.Tickers, ", "))
			sections = append(sections, line)
		}
	}

	// The viewport owns scrolling and height clipping.
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTickerLine shows the article's tickers with prices where known, the
// primary ticker first and highlighted.
func renderTickerLine(article *cache.Article, width int) string {
	var parts []string
	appendTicker := func(sym string) {
		label := sym
		if price, ok := article.Prices[sym]; ok {
			label = fmt.Sprintf("%s $%.2f", sym, price)
		}
		if sym == article.PrimaryTicker {
			parts = append(parts, tickerPrimaryStyle.Render(label))
		} else {
			parts = append(parts, tickerStyle.Render(label))
		}
	}

	if article.PrimaryTicker != "" {
		appendTicker(article.PrimaryTicker)
	}
	for _, sym := range article.Tickers {
		if sym != article.PrimaryTicker {
			appendTicker(sym)
		}
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "  "))
}
