package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/readout/internal/presenter"
	"github.com/five82/readout/internal/reddit"
)

// renderMain renders the header, the phase body, the optional log pane and
// the key hints.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	sections := []string{m.renderHeader(styles), ""}
	switch m.phase.Phase {
	case presenter.PhaseSplash:
		sections = append(sections, m.renderSplash(styles))
	case presenter.PhaseRunning:
		sections = append(sections, m.renderThreads(styles))
	case presenter.PhaseFinished:
		sections = append(sections, m.renderFinished(styles))
	}
	if m.showLog {
		sections = append(sections, "", m.renderLogPane(styles))
	}
	sections = append(sections, "", styles.Footer.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles) string {
	failed := m.result != nil && m.result.Err != nil
	badge := styles.Badge(m.phase.Phase, m.phase.Paused, failed)
	title := styles.Text.Bold(true).Render("readout")
	source := styles.MutedText.Render("r/" + m.config.Subreddit)
	return styles.Header.Render(lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, "  ", source))
}

func (m Model) renderSplash(styles Styles) string {
	logo := m.logo
	if m.width > 0 && m.width < LayoutCompactWidth {
		logo = strings.ToUpper(logoText)
	}
	var b strings.Builder
	b.WriteString(styles.Logo.Render(logo))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(styles.MutedText.Render("Warming up..."))
	return b.String()
}

func (m Model) renderThreads(styles Styles) string {
	threads := m.snapshot.Threads
	if len(threads) == 0 {
		return m.spinner.View() + " " + styles.MutedText.Render("Fetching threads...")
	}

	var b strings.Builder
	for i, thread := range threads {
		line := m.threadLine(styles, i, thread)
		if i == m.snapshot.Current {
			line = styles.Selected.Render(line)
		}
		b.WriteString(line)
		if i < len(threads)-1 {
			b.WriteString("\n")
		}
	}
	if m.phase.Paused {
		b.WriteString("\n\n")
		b.WriteString(styles.WarningText.Render("Paused. Press space to resume."))
	}
	return b.String()
}

func (m Model) threadLine(styles Styles, index int, thread reddit.Summary) string {
	marker := "  "
	if index == m.snapshot.Current {
		marker = "▶ "
	}
	title := thread.Title
	if m.width > LayoutTitleMargin {
		title = truncate(title, m.width-LayoutTitleMargin)
	}
	line := fmt.Sprintf("%s%2d. %s", marker, index+1, title)
	if label := thumbnailLabel(thread.Thumbnail, m.config.ResolveThumbnail); label != "" {
		line += " " + styles.FaintText.Render("["+label+"]")
	}
	return line
}

func (m Model) renderFinished(styles Styles) string {
	var b strings.Builder
	switch {
	case m.result == nil:
		b.WriteString(styles.SuccessText.Render("Done."))
	case m.result.Err != nil:
		b.WriteString(styles.DangerText.Render("Narration stopped: " + m.result.Err.Error()))
	case m.result.Cancelled:
		b.WriteString(styles.WarningText.Render("Narration cancelled."))
	default:
		b.WriteString(styles.SuccessText.Render(fmt.Sprintf("Read %d threads.", m.result.Total)))
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Press esc to close."))
	return b.String()
}

func (m Model) renderLogPane(styles Styles) string {
	var body string
	switch {
	case m.logErr != nil:
		body = styles.DangerText.Render("log unavailable: " + m.logErr.Error())
	case len(m.logLines) == 0:
		body = styles.FaintText.Render("(no log output)")
	default:
		body = styles.MutedText.Render(strings.Join(m.logLines, "\n"))
	}
	pane := styles.Panel
	if m.width > 4 {
		pane = pane.Width(m.width - 2)
	}
	return pane.Render(body)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 1 || len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func matches(b key.Binding, msg tea.KeyMsg) bool {
	return key.Matches(msg, b)
}

func isClose(k keyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Close)
}
