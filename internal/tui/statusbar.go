package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(articleCount int, activeFilter string, width int) string {
	left := fmt.Sprintf(" %d articles", articleCount)
	if activeFilter != "" {
		left += " · " + activeFilter
	}

	right := " o open  f filter  r reset  ? help  q quit "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
