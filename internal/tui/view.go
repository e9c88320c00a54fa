package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/lectern/internal/guide"
	"github.com/csheth/lectern/internal/search"
)

func (m *model) View() string {
	switch m.stage {
	case stageLoading:
		return m.viewLoading()
	case stageSearch:
		return joinNonEmpty([]string{m.headerView(), m.searchOverlay(), m.panesView(), m.footerView()})
	case stageAnnotate:
		return joinNonEmpty([]string{m.headerView(), m.annotateOverlay(), m.panesView(), m.footerView()})
	default:
		return joinNonEmpty([]string{m.headerView(), m.panesView(), m.overviewView(), m.guideView(), m.toolbarView(), m.commandView(), m.footerView()})
	}
}

func (m *model) viewLoading() string {
	body := fmt.Sprintf("%s Opening %s…", m.spinner.View(), m.config.DocumentPath)
	if m.errorMessage != "" {
		body = errorStyle.Render(m.errorMessage)
	}
	return joinNonEmpty([]string{m.headerView(), body})
}

func (m *model) headerView() string {
	title := "Lectern"
	if m.document != nil {
		title = m.document.Name
	}
	parts := []string{heroTitleStyle.Render(title)}
	if m.document != nil {
		stats := []string{
			fmt.Sprintf("Page %d/%d", m.page, m.document.PageCount()),
			fmt.Sprintf("Annotations %d", len(m.annotations)),
		}
		if m.config.LLM != nil {
			if m.notesLoading {
				stats = append(stats, "LLM working…")
			} else {
				stats = append(stats, m.config.LLM.Name())
			}
		}
		if m.highlightTerm != "" {
			stats = append(stats, fmt.Sprintf("Highlighting %q", m.highlightTerm))
		}
		parts = append(parts, statusBarStyle.Render(strings.Join(stats, "  •  ")))
	} else {
		parts = append(parts, taglineStyle.Render(heroTagline))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) panesView() string {
	if m.document == nil {
		return ""
	}
	m.docPane.render(m.focus == paneDocument)
	m.notesPane.render(m.focus == paneNotes)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.paneView(m.docPane),
		m.paneView(m.notesPane),
	)
}

func (m *model) paneView(p *pane) string {
	header := paneTitleStyle.Render(p.title)
	if p.caption != "" {
		header += "\n" + helperStyle.Render(p.caption)
	}
	body := header + "\n" + p.viewport.View()
	if m.focus == p.id {
		return focusedBorderStyle.Render(body)
	}
	return paneBorderStyle.Render(body)
}

func (m *model) searchOverlay() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Search"))
	b.WriteRune('\n')
	b.WriteString(m.searchInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render(m.searchScopeLine()))
	b.WriteRune('\n')
	b.WriteRune('\n')
	b.WriteString(m.resultsView())
	return b.String()
}

func (m *model) searchScopeLine() string {
	scope := "all pages"
	if m.searchScope == search.ScopeCurrentPage {
		scope = fmt.Sprintf("page %d", m.page)
	}
	flags := []string{}
	if m.searchFlags.Document {
		flags = append(flags, "document")
	}
	if m.searchFlags.Notes {
		flags = append(flags, "notes")
	}
	if m.searchFlags.Annotations {
		flags = append(flags, "annotations")
	}
	if len(flags) == 0 {
		flags = append(flags, "nothing")
	}
	return fmt.Sprintf("Scope: %s (Tab)  •  Sources: %s (^D/^N/^O)  •  Enter jumps, Esc closes", scope, strings.Join(flags, "+"))
}

func (m *model) resultsView() string {
	if strings.TrimSpace(m.searchInput.Value()) == "" {
		return helperStyle.Render("Type at least two characters to search.")
	}
	if len(m.results) == 0 {
		return helperStyle.Render("No matches.")
	}
	var b strings.Builder
	b.WriteString(helperStyle.Render(fmt.Sprintf("%d match(es)", len(m.results))))
	b.WriteRune('\n')
	limit := len(m.results)
	if limit > 12 {
		limit = 12
	}
	for i := 0; i < limit; i++ {
		match := m.results[i]
		line := fmt.Sprintf("p%-3d %-10s %s", match.Page, kindLabel(match.Kind), renderMatchContext(match.Context, match.HighlightStart, match.HighlightEnd))
		if i == m.resultIdx {
			b.WriteString(resultCurrentStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteRune('\n')
	}
	if len(m.results) > limit {
		b.WriteString(helperStyle.Render(fmt.Sprintf("…and %d more", len(m.results)-limit)))
	}
	return b.String()
}

func renderMatchContext(context string, start, end int) string {
	if start < 0 || end > len(context) || start >= end {
		return context
	}
	return context[:start] + searchHighlightStyle.Render(context[start:end]) + context[end:]
}

func (m *model) annotateOverlay() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Annotate Selection"))
	b.WriteRune('\n')
	if m.toolbar != nil {
		b.WriteString(helperStyle.Render(previewText(m.toolbar.Text, 120)))
		b.WriteRune('\n')
	}
	b.WriteString(m.annotateInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Enter saves, Esc cancels."))
	return b.String()
}

func (m *model) overviewView() string {
	if !m.showOverview || m.overview == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Document Overview"))
	b.WriteRune('\n')
	caption := []string{}
	if m.overview.DocumentType != "" {
		caption = append(caption, strings.ReplaceAll(m.overview.DocumentType, "_", " "))
	}
	if m.overview.VisualizationType != "" {
		caption = append(caption, strings.ReplaceAll(m.overview.VisualizationType, "_", " "))
	}
	caption = append(caption, "Esc closes")
	b.WriteString(helperStyle.Render(strings.Join(caption, "  •  ")))
	b.WriteRune('\n')
	width := m.width - 8
	if width < 40 {
		width = 40
	}
	b.WriteRune('\n')
	b.WriteString(wordwrap.String(m.overview.Content, width))
	return b.String()
}

func (m *model) guideView() string {
	if !m.showGuide {
		return ""
	}
	name := ""
	pages := 0
	if m.document != nil {
		name = m.document.Name
		pages = m.document.PageCount()
	}
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Study Guide"))
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("h/l pages  •  tab panes  •  v select  •  / search  •  n/N results  •  g notes  •  o overview  •  Esc closes"))
	b.WriteRune('\n')
	width := m.width - 8
	if width < 40 {
		width = 40
	}
	for _, step := range guide.Build(m.config.Profile, name, pages) {
		b.WriteRune('\n')
		b.WriteString(emphasisMarkStyle.Render(step.Title))
		b.WriteRune('\n')
		b.WriteString(wordwrap.String(step.Description, width))
		b.WriteRune('\n')
	}
	return b.String()
}

func (m *model) toolbarView() string {
	if m.toolbar == nil {
		return ""
	}
	label := "Selection"
	if m.toolbarPane == paneNotes {
		label = "Selection (notes)"
	}
	body := fmt.Sprintf("%s %s\n%s",
		emphasisMarkStyle.Render(label),
		helperStyle.Render(fmt.Sprintf("%d chars @ line %d", len(m.toolbar.Text), m.toolbar.Box.Y+1)),
		previewText(m.toolbar.Text, 160),
	)
	body += "\n" + helperStyle.Render("c copy  •  a annotate  •  e elaborate  •  s simplify  •  x analogy  •  ! emphasize")
	return toolbarStyle.Render(body)
}

func (m *model) commandView() string {
	if m.commandOutput == "" {
		return ""
	}
	width := m.width - 4
	if width < 40 {
		width = 40
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(commandLabel(m.commandKind)),
		wordwrap.String(m.commandOutput, width),
		helperStyle.Render("Esc dismisses."),
	})
}

func (m *model) footerView() string {
	parts := []string{}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.notesLoading {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
