package tui

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/lectern/internal/doc"
	"github.com/csheth/lectern/internal/selection"
)

// pane is one reading surface: the document text or the generated notes. It
// owns a fragment container and implements selection.Host so a tracker can
// snapshot and restore selections across page rebuilds.
type pane struct {
	id       paneID
	title    string
	caption  string
	document *doc.Container
	viewport viewport.Model

	// split cuts source text into fragment texts; sentences for the document
	// pane, markdown blocks for the notes pane.
	split func(string) []string

	// cursor and anchor are byte offsets into the container's linear text.
	cursor    int
	anchor    int
	selecting bool
	touch     bool
	dirty     bool
}

func newPane(id paneID, title, containerID string, split func(string) []string) *pane {
	vp := viewport.New(40, 20)
	vp.MouseWheelEnabled = true
	return &pane{
		id:       id,
		title:    title,
		document: doc.NewContainer(containerID),
		viewport: vp,
		split:    split,
		dirty:    true,
	}
}

// SetText rebuilds the pane's fragment arena from fresh source text. The
// splits are lossless, so the linear text stays identical to the source and
// offsets taken before a rebuild stay meaningful afterwards.
func (p *pane) SetText(text string) {
	p.document.Rebuild(p.split(text))
	total := p.document.Len()
	if p.cursor > total {
		p.cursor = total
	}
	if p.anchor > total {
		p.anchor = total
	}
	p.dirty = true
}

func (p *pane) Container() *doc.Container {
	return p.document
}

func (p *pane) CurrentSelection() (selection.Live, bool) {
	if !p.selecting || p.anchor == p.cursor {
		return selection.Live{}, false
	}
	start, end := p.anchor, p.cursor
	if start > end {
		start, end = end, start
	}
	frag, local, ok := p.document.Locate(start)
	if !ok {
		return selection.Live{}, false
	}
	idx := p.fragmentIndex(frag)
	if idx < 0 {
		return selection.Live{}, false
	}
	text := p.document.Text()[start:end]
	return selection.Live{
		Start: selection.Point{Fragment: idx, Offset: local},
		Text:  text,
		Box:   p.selectionBox(start, text),
	}, true
}

func (p *pane) SetSelection(start, end selection.Point) bool {
	fragments := p.document.Fragments()
	if start.Fragment < 0 || start.Fragment >= len(fragments) {
		return false
	}
	if end.Fragment < 0 || end.Fragment >= len(fragments) {
		return false
	}
	startOff, err := p.document.OffsetOf(fragments[start.Fragment], start.Offset)
	if err != nil {
		return false
	}
	endOff, err := p.document.OffsetOf(fragments[end.Fragment], end.Offset)
	if err != nil {
		return false
	}
	p.anchor = startOff
	p.cursor = endOff
	p.selecting = true
	p.dirty = true
	return true
}

func (p *pane) TouchCapable() bool {
	return p.touch
}

// BeginSelection anchors a keyboard selection at the cursor.
func (p *pane) BeginSelection() {
	p.anchor = p.cursor
	p.selecting = true
	p.dirty = true
}

// EndSelection collapses the selection without moving the cursor.
func (p *pane) EndSelection() {
	p.selecting = false
	p.dirty = true
}

// MoveCursor shifts the cursor by delta runes, clamped to the text.
func (p *pane) MoveCursor(delta int) {
	text := p.document.Text()
	pos := p.cursor
	for delta > 0 && pos < len(text) {
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
		delta--
	}
	for delta < 0 && pos > 0 {
		_, size := utf8.DecodeLastRuneInString(text[:pos])
		pos -= size
		delta++
	}
	p.cursor = pos
	p.dirty = true
}

// MoveCursorLine shifts the cursor roughly one wrapped line up or down.
func (p *pane) MoveCursorLine(delta int) {
	width := p.viewport.Width
	if width <= 0 {
		width = 40
	}
	p.MoveCursor(delta * width)
}

// selectionBox approximates the selection's screen placement from the wrapped
// layout: the line it starts on and the cell width of its first line.
func (p *pane) selectionBox(start int, text string) selection.Box {
	wrapped := wordwrap.String(p.document.Text()[:start], p.wrapWidth())
	y := strings.Count(wrapped, "\n")
	firstLine := text
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	width := runewidth.StringWidth(firstLine)
	if width > p.wrapWidth() {
		width = p.wrapWidth()
	}
	height := strings.Count(wordwrap.String(text, p.wrapWidth()), "\n") + 1
	return selection.Box{X: 0, Y: y, Width: width, Height: height}
}

func (p *pane) wrapWidth() int {
	width := p.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	return width
}

func (p *pane) fragmentIndex(target *doc.Fragment) int {
	for i, f := range p.document.Fragments() {
		if f == target {
			return i
		}
	}
	return -1
}

// render refreshes the viewport content from the fragment arena. Highlighted
// segments get the search style; the selection overlays its lines.
func (p *pane) render(focused bool) {
	if !p.dirty {
		return
	}
	var b strings.Builder
	for _, f := range p.document.Fragments() {
		for _, seg := range f.Segments() {
			if seg.Highlighted {
				b.WriteString(searchHighlightStyle.Render(seg.Text))
			} else {
				b.WriteString(seg.Text)
			}
		}
	}
	content := wordwrap.String(b.String(), p.wrapWidth())
	if focused && p.selecting {
		content = p.overlaySelection(content)
	}
	p.viewport.SetContent(content)
	p.dirty = false
}

// overlaySelection styles the wrapped lines the selection covers. Line-level
// granularity keeps the overlay robust against ANSI sequences from the
// highlight styling.
func (p *pane) overlaySelection(content string) string {
	start, end := p.anchor, p.cursor
	if start > end {
		start, end = end, start
	}
	if start == end {
		return content
	}
	plain := p.document.Text()
	width := p.wrapWidth()
	firstLine := strings.Count(wordwrap.String(plain[:start], width), "\n")
	lastLine := strings.Count(wordwrap.String(plain[:end], width), "\n")

	lines := strings.Split(content, "\n")
	for i := firstLine; i <= lastLine && i < len(lines); i++ {
		if i == firstLine {
			lines[i] = cursorLineStyle.Render(stripANSI(lines[i]))
			continue
		}
		lines[i] = selectionLineStyle.Render(stripANSI(lines[i]))
	}
	return strings.Join(lines, "\n")
}

var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiSequence.ReplaceAllString(s, "")
}
