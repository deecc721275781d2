package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/stockwire/internal/browser"
	"github.com/matheuskafuri/stockwire/internal/cache"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

// mode is the UI state machine: listing, the ticker filter modal, or help.
type mode int

const (
	modeNormal mode = iota
	modeFilter
	modeHelp
)

type App struct {
	all      []cache.Article // full set handed to the TUI
	articles []cache.Article // view after ticker filtering
	cursor   int
	focus    focusPane
	mode     mode

	width  int
	height int

	preview viewport.Model
	filter  tickerFilter
	err     error
}

func NewApp(articles []cache.Article) *App {
	return &App{
		all:      articles,
		articles: articles,
		preview:  viewport.New(0, 0),
		filter:   newTickerFilter(articles),
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.refreshPreview()
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case openErrMsg:
		a.err = msg.err
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if s := msg.String(); s == "?" || s == "esc" || s == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList {
			if a.cursor < len(a.articles)-1 {
				a.cursor++
				a.refreshPreview()
			}
		} else {
			a.preview.LineDown(1)
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList {
			if a.cursor > 0 {
				a.cursor--
				a.refreshPreview()
			}
		} else {
			a.preview.LineUp(1)
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if len(a.articles) > 0 && a.cursor < len(a.articles) {
			return a, openBrowserCmd(a.articles[a.cursor].Link)
		}
		return a, nil
	case "f":
		if len(a.filter.tickers) > 0 {
			a.mode = modeFilter
		}
		return a, nil
	case "r":
		a.filter.active = ""
		a.applyFilter()
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		return a, nil
	case "j", "down":
		if a.filter.cursor < len(a.filter.tickers)-1 {
			a.filter.cursor++
		}
		return a, nil
	case "k", "up":
		if a.filter.cursor > 0 {
			a.filter.cursor--
		}
		return a, nil
	case "enter", " ":
		a.filter.selectCurrent()
		a.applyFilter()
		a.mode = modeNormal
		return a, nil
	}
	return a, nil
}

// applyFilter rebuilds the visible article list for the active ticker.
func (a *App) applyFilter() {
	a.cursor = 0
	a.articles = a.filter.apply(a.all)
	a.refreshPreview()
}

// layout splits the terminal into the list pane, preview pane, and content
// rows between header and status bar.
func (a *App) layout() (listWidth, previewWidth, contentHeight int) {
	contentHeight = a.height - 4 // header + status + borders
	if contentHeight < 3 {
		contentHeight = 3
	}
	listWidth = int(float64(a.width) * 0.38)
	previewWidth = a.width - listWidth - 1
	return listWidth, previewWidth, contentHeight
}

// refreshPreview re-renders the preview viewport for the current selection
// and scrolls back to the top.
func (a *App) refreshPreview() {
	_, previewWidth, contentHeight := a.layout()
	a.preview.Width = previewWidth - 4 // border + padding
	a.preview.Height = contentHeight

	var selected *cache.Article
	var related []cache.Article
	if len(a.articles) > 0 && a.cursor < len(a.articles) {
		selected = &a.articles[a.cursor]
		related = a.relatedArticles(*selected, 3)
	}
	a.preview.SetContent(renderPreview(selected, related, a.preview.Width, a.preview.Height))
	a.preview.GotoTop()
}

// relatedArticles returns up to limit other articles sharing a ticker with
// the given one.
func (a *App) relatedArticles(art cache.Article, limit int) []cache.Article {
	current := make(map[string]bool, len(art.Tickers))
	for _, t := range art.Tickers {
		current[t] = true
	}
	if len(current) == 0 {
		return nil
	}

	var out []cache.Article
	for _, other := range a.all {
		if other.ID == art.ID {
			continue
		}
		for _, t := range other.Tickers {
			if current[t] {
				out = append(out, other)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  stockwire")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	if a.mode == modeFilter {
		return a.renderFilterModal()
	}

	listWidth, previewWidth, contentHeight := a.layout()

	header := renderHeader(a.width, a.filter.active)

	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.articles, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	previewContent := a.preview.View()

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(len(a.articles), a.filter.active, a.width)
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, status)
}

func (a *App) renderFilterModal() string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		a.filter.render())
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("stockwire")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate article list\n" +
		"  tab           Switch focus between list and detail\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open article in browser\n" +
		"  f             Filter by ticker\n" +
		"  r             Reset filter\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI over the given article set.
func Run(articles []cache.Article) error {
	app := NewApp(articles)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
