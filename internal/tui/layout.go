package tui

// paneLayout splits the window into two reading panes plus chrome.
type paneLayout struct {
	paneWidth  int
	paneHeight int
}

func computeLayout(width, height int) paneLayout {
	paneWidth := (width - paneHorizontalPadding) / 2
	if paneWidth < minPaneWidth {
		paneWidth = minPaneWidth
	}
	const chrome = 9
	paneHeight := height - chrome
	if paneHeight < 8 {
		paneHeight = 8
	}
	return paneLayout{paneWidth: paneWidth, paneHeight: paneHeight}
}

func (m *model) applyLayout() {
	l := computeLayout(m.width, m.height)
	m.docPane.viewport.Width = l.paneWidth
	m.docPane.viewport.Height = l.paneHeight
	m.notesPane.viewport.Width = l.paneWidth
	m.notesPane.viewport.Height = l.paneHeight
	m.docPane.dirty = true
	m.notesPane.dirty = true
}
