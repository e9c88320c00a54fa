package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/lectern/internal/doc"
	"github.com/csheth/lectern/internal/highlight"
	"github.com/csheth/lectern/internal/llm"
	"github.com/csheth/lectern/internal/pdfdoc"
	"github.com/csheth/lectern/internal/profile"
	"github.com/csheth/lectern/internal/sched"
	"github.com/csheth/lectern/internal/search"
	"github.com/csheth/lectern/internal/selection"
	"github.com/csheth/lectern/internal/study"
)

// Config wires runtime options into the TUI program.
type Config struct {
	DocumentPath string
	SessionPath  string
	Profile      profile.Profile
	LLM          llm.Client
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search document, notes, annotations…"
	searchInput.CharLimit = 120
	searchInput.Width = 60

	annotateInput := textinput.New()
	annotateInput.Placeholder = "Attach a note to the selected passage…"
	annotateInput.CharLimit = 280
	annotateInput.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:        config,
		stage:         stageLoading,
		jobs:          newJobBus(),
		spinner:       spin,
		searchInput:   searchInput,
		annotateInput: annotateInput,
		docPane:       newPane(paneDocument, "Document", "document", doc.SplitSentences),
		notesPane:     newPane(paneNotes, "Study Notes", "notes", doc.SplitBlocks),
		focus:         paneDocument,
		debounce:      sched.New(),
		scanner:       search.NewScanner(),
		searchScope:   search.ScopeAllPages,
		searchFlags:   search.Flags{Document: true, Notes: true, Annotations: true},
		resultIdx:     -1,
		pageNotes:     map[int]study.PageNotes{},
		infoMessage:   "Loading document…",
	}
	m.docTracker = selection.NewTracker(m.docPane, m.onSelectionChange(paneDocument))
	m.notesTracker = selection.NewTracker(m.notesPane, m.onSelectionChange(paneNotes))
	return m
}

type model struct {
	config Config
	stage  stage

	jobs          *jobBus
	spinner       spinner.Model
	searchInput   textinput.Model
	annotateInput textinput.Model

	document    *pdfdoc.Document
	pageNotes   map[int]study.PageNotes
	annotations []study.Annotation
	overview    *study.Overview
	page        int

	docPane      *pane
	notesPane    *pane
	focus        paneID
	docTracker   *selection.Tracker
	notesTracker *selection.Tracker
	toolbar      *selection.Span
	toolbarPane  paneID

	debounce      *sched.Debouncer
	scanner       search.Scanner
	searchQuery   string
	searchScope   search.Scope
	searchFlags   search.Flags
	results       []search.Match
	resultIdx     int
	highlightTerm string
	expiryToken   int

	commandKind   llm.CommandKind
	commandOutput string

	showGuide    bool
	showOverview bool
	notesLoading bool
	infoMessage  string
	errorMessage string
	width        int
	height       int
}

type loadResultMsg struct {
	document    *pdfdoc.Document
	notes       []study.PageNotes
	annotations []study.Annotation
	overview    study.Overview
	hasOverview bool
	err         error
}

type overviewResultMsg struct {
	overview study.Overview
	err      error
}

type notesResultMsg struct {
	page  int
	notes study.PageNotes
	err   error
}

type commandResultMsg struct {
	kind     llm.CommandKind
	selected string
	answer   string
	err      error
}

type emphasisResultMsg struct {
	page     int
	markdown string
	err      error
}

type annotationSavedMsg struct {
	annotation study.Annotation
	err        error
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindLoad, loadDocumentJob(m.config.DocumentPath, m.config.SessionPath)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading || m.notesLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil
	case jobSignalMsg:
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case searchTickMsg:
		if !m.debounce.Due(debounceKeySearch, msg.token) {
			return m, nil
		}
		m.runSearch()
		return m, nil
	case restoreTickMsg:
		if !m.debounce.Due(debounceKeyHighlight, msg.token) {
			return m, nil
		}
		m.applyHighlights()
		m.docTracker.Tick()
		m.notesTracker.Tick()
		return m, nil
	case highlightExpiryMsg:
		if msg.token != m.expiryToken {
			return m, nil
		}
		m.clearHighlights()
		return m, nil
	case loadResultMsg:
		return m.handleLoadResult(msg)
	case notesResultMsg:
		return m.handleNotesResult(msg)
	case overviewResultMsg:
		return m.handleOverviewResult(msg)
	case commandResultMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			m.infoMessage = "Inline command failed. Select a passage and retry."
			return m, nil
		}
		m.errorMessage = ""
		m.commandKind = msg.kind
		m.commandOutput = msg.answer
		m.infoMessage = fmt.Sprintf("%s ready below the notes pane.", commandLabel(msg.kind))
		return m, nil
	case emphasisResultMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		entry := m.pageNotes[msg.page]
		entry.Page = msg.page
		entry.Markdown = msg.markdown
		m.pageNotes[msg.page] = entry
		if msg.page == m.page {
			m.refreshNotesPane()
		}
		m.errorMessage = ""
		m.infoMessage = "Passage emphasized in the notes."
		return m, nil
	case annotationSavedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.annotations = append(m.annotations, msg.annotation)
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Annotation saved (%d total).", len(m.annotations))
		return m, nil
	}
	return m, nil
}

func (m *model) handleLoadResult(msg loadResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Could not open the document."
		return m, tea.Quit
	}
	m.document = msg.document
	m.annotations = msg.annotations
	for _, n := range msg.notes {
		m.pageNotes[n.Page] = n
	}
	m.stage = stageReading
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Loaded %s (%d pages). Press ? for keys.", m.document.Name, m.document.PageCount())
	m.setPage(1)
	var cmd tea.Cmd
	if msg.hasOverview {
		overview := msg.overview
		m.overview = &overview
	} else if m.config.LLM != nil {
		cmd = m.startOverviewGeneration()
	}
	return m, cmd
}

func (m *model) handleOverviewResult(msg overviewResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.infoMessage = "Document overview unavailable."
		return m, nil
	}
	overview := msg.overview
	m.overview = &overview
	m.infoMessage = "Overview ready. Press o to view."
	return m, nil
}

func (m *model) handleNotesResult(msg notesResultMsg) (tea.Model, tea.Cmd) {
	m.notesLoading = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Note generation failed. Press g to retry."
		return m, nil
	}
	m.pageNotes[msg.page] = msg.notes
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Notes ready for page %d.", msg.page)
	if msg.page == m.page {
		m.refreshNotesPane()
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.stage {
	case stageLoading:
		return m, nil
	case stageSearch:
		return m.handleSearchKey(key)
	case stageAnnotate:
		return m.handleAnnotateKey(key)
	default:
		return m.handleReadingKey(key)
	}
}

func (m *model) handleReadingKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	pane, tracker := m.focusedPane()
	switch key.String() {
	case "esc":
		if pane.selecting {
			pane.EndSelection()
			tracker.KeyboardExtended()
			return m, nil
		}
		if m.showGuide {
			m.showGuide = false
			return m, nil
		}
		if m.showOverview {
			m.showOverview = false
			return m, nil
		}
		if m.commandOutput != "" {
			m.commandOutput = ""
			return m, nil
		}
		return m, tea.Quit
	case "tab":
		if m.focus == paneDocument {
			m.focus = paneNotes
		} else {
			m.focus = paneDocument
		}
		m.docPane.dirty = true
		m.notesPane.dirty = true
		return m, nil
	case "left", "h":
		return m, m.gotoPage(m.page - 1)
	case "right", "l":
		return m, m.gotoPage(m.page + 1)
	case "up", "k":
		pane.MoveCursorLine(-1)
		if pane.selecting {
			tracker.KeyboardExtended()
		}
		return m, nil
	case "down", "j":
		pane.MoveCursorLine(1)
		if pane.selecting {
			tracker.KeyboardExtended()
		}
		return m, nil
	case "b":
		pane.MoveCursor(-1)
		if pane.selecting {
			tracker.KeyboardExtended()
		}
		return m, nil
	case "w":
		pane.MoveCursor(1)
		if pane.selecting {
			tracker.KeyboardExtended()
		}
		return m, nil
	case "v":
		if pane.selecting {
			pane.EndSelection()
			tracker.KeyboardExtended()
			m.infoMessage = "Selection cleared."
			return m, nil
		}
		pane.BeginSelection()
		tracker.Begin()
		m.infoMessage = "Selecting. Move to extend, Enter to settle."
		return m, nil
	case "enter":
		if pane.selecting {
			tracker.KeyboardExtended()
			if span, ok := tracker.Span(); ok {
				m.infoMessage = fmt.Sprintf("Selected %d characters. c copy, a annotate, e/s/x explain, ! emphasize.", len(span.Text))
			}
			return m, nil
		}
		return m, nil
	case "/":
		m.stage = stageSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.Focus()
		return m, textinput.Blink
	case "n":
		return m, m.stepResult(1)
	case "N":
		return m, m.stepResult(-1)
	case "g":
		return m, m.startNotesGeneration()
	case "c":
		return m, m.copySelection()
	case "a":
		if m.toolbar == nil {
			m.infoMessage = "Select a passage first (v, move, Enter)."
			return m, nil
		}
		m.stage = stageAnnotate
		m.annotateInput.SetValue("")
		m.annotateInput.Focus()
		return m, textinput.Blink
	case "e":
		return m, m.startInlineCommand(llm.CommandElaborate)
	case "s":
		return m, m.startInlineCommand(llm.CommandSimplify)
	case "x":
		return m, m.startInlineCommand(llm.CommandAnalogy)
	case "!":
		return m, m.startEmphasis()
	case "o":
		if m.overview == nil {
			m.infoMessage = "No overview for this session yet."
			return m, nil
		}
		m.showOverview = !m.showOverview
		return m, nil
	case "?":
		m.showGuide = !m.showGuide
		return m, nil
	}
	var cmd tea.Cmd
	pane.viewport, cmd = pane.viewport.Update(key)
	return m, cmd
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.stage != stageReading {
		return m, nil
	}
	pane, _ := m.focusedPane()
	var cmd tea.Cmd
	pane.viewport, cmd = pane.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleSearchKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.stage = stageReading
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.stage = stageReading
		m.searchInput.Blur()
		if len(m.results) == 0 {
			m.infoMessage = "No matches to jump to."
			return m, nil
		}
		if m.resultIdx < 0 {
			m.resultIdx = 0
		}
		return m, m.jumpToResult(m.resultIdx)
	case tea.KeyUp:
		m.moveResultCursor(-1)
		return m, nil
	case tea.KeyDown:
		m.moveResultCursor(1)
		return m, nil
	case tea.KeyTab:
		if m.searchScope == search.ScopeAllPages {
			m.searchScope = search.ScopeCurrentPage
		} else {
			m.searchScope = search.ScopeAllPages
		}
		return m, m.triggerSearch()
	case tea.KeyCtrlD:
		m.searchFlags.Document = !m.searchFlags.Document
		return m, m.triggerSearch()
	case tea.KeyCtrlN:
		m.searchFlags.Notes = !m.searchFlags.Notes
		return m, m.triggerSearch()
	case tea.KeyCtrlO:
		m.searchFlags.Annotations = !m.searchFlags.Annotations
		return m, m.triggerSearch()
	}
	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(key)
	if m.searchInput.Value() != before {
		return m, tea.Batch(cmd, m.triggerSearch())
	}
	return m, cmd
}

func (m *model) handleAnnotateKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.stage = stageReading
		m.annotateInput.Blur()
		m.infoMessage = "Annotation canceled."
		return m, nil
	case tea.KeyEnter:
		m.stage = stageReading
		m.annotateInput.Blur()
		if m.toolbar == nil {
			m.infoMessage = "Selection vanished; nothing annotated."
			return m, nil
		}
		ann := study.NewAnnotation(m.page, m.toolbar.Text, m.annotateInput.Value())
		m.annotateInput.SetValue("")
		m.infoMessage = "Saving annotation…"
		return m, m.jobs.Start(jobKindSave, saveAnnotationJob(m.config.SessionPath, ann))
	}
	var cmd tea.Cmd
	m.annotateInput, cmd = m.annotateInput.Update(key)
	return m, cmd
}

// triggerSearch arms the debounce timer; the scan only runs once the latest
// token comes due.
func (m *model) triggerSearch() tea.Cmd {
	token := m.debounce.Trigger(debounceKeySearch)
	return tea.Tick(searchDebounceInterval, func(time.Time) tea.Msg {
		return searchTickMsg{token: token}
	})
}

func (m *model) runSearch() {
	query := strings.TrimSpace(m.searchInput.Value())
	m.searchQuery = query
	if m.document == nil {
		return
	}
	sources := study.Sources(m.document, m.notesList(), m.annotations)
	m.results = m.scanner.Scan(query, m.searchScope, m.page, m.searchFlags, sources)
	if len(m.results) == 0 {
		m.resultIdx = -1
		return
	}
	m.resultIdx = 0
}

func (m *model) moveResultCursor(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.resultIdx += delta
	if m.resultIdx < 0 {
		m.resultIdx = len(m.results) - 1
	}
	if m.resultIdx >= len(m.results) {
		m.resultIdx = 0
	}
}

func (m *model) stepResult(delta int) tea.Cmd {
	if len(m.results) == 0 {
		m.infoMessage = "No search results. Press / to search."
		return nil
	}
	m.moveResultCursor(delta)
	return m.jumpToResult(m.resultIdx)
}

// jumpToResult navigates to the match's page and lights up every occurrence
// of the query. The highlight fades on its own after a few seconds.
func (m *model) jumpToResult(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.results) {
		return nil
	}
	match := m.results[idx]
	m.highlightTerm = m.searchQuery
	pageCmd := m.gotoPage(match.Page)
	m.expiryToken++
	token := m.expiryToken
	expiry := tea.Tick(highlightLifetime, func(time.Time) tea.Msg {
		return highlightExpiryMsg{token: token}
	})
	m.infoMessage = fmt.Sprintf("Match %d/%d on page %d (%s).", idx+1, len(m.results), match.Page, kindLabel(match.Kind))
	if pageCmd == nil {
		m.applyHighlights()
		return expiry
	}
	return tea.Batch(pageCmd, expiry)
}

// gotoPage rebuilds both panes for the target page. Selections are restored
// from offsets and highlights re-applied after a short debounce.
func (m *model) gotoPage(page int) tea.Cmd {
	if m.document == nil || page < 1 || page > m.document.PageCount() {
		return nil
	}
	if page == m.page {
		return nil
	}
	m.page = page
	m.commandOutput = ""
	m.setPage(page)
	// Always arm the settle tick: even without an active highlight the
	// trackers enter Restoring on rebuild and need a tick to settle.
	token := m.debounce.Trigger(debounceKeyHighlight)
	return tea.Tick(restoreDebounceDelay, func(time.Time) tea.Msg {
		return restoreTickMsg{token: token}
	})
}

func (m *model) setPage(page int) {
	m.page = page
	m.docPane.SetText(m.document.PageText(page))
	m.docPane.caption = fmt.Sprintf("Page %d of %d", page, m.document.PageCount())
	m.refreshNotesPane()
	m.docTracker.TreeRebuilt()
	m.notesTracker.TreeRebuilt()
}

func (m *model) refreshNotesPane() {
	entry, ok := m.pageNotes[m.page]
	if !ok || strings.TrimSpace(entry.Markdown) == "" {
		m.notesPane.SetText("No notes for this page yet. Press g to generate them.")
		m.notesPane.caption = ""
		return
	}
	m.notesPane.SetText(entry.Markdown)
	caption := ""
	if len(entry.TopicLabels) > 0 {
		caption = "Topics: " + strings.Join(entry.TopicLabels, ", ")
	}
	if len(entry.PageReferences) > 0 {
		if caption != "" {
			caption += "  •  "
		}
		caption += fmt.Sprintf("References pages %s", joinInts(entry.PageReferences))
	}
	m.notesPane.caption = caption
}

func (m *model) applyHighlights() {
	highlight.Apply(m.docPane.Container(), m.highlightTerm)
	highlight.Apply(m.notesPane.Container(), m.highlightTerm)
	m.docPane.dirty = true
	m.notesPane.dirty = true
}

func (m *model) clearHighlights() {
	m.highlightTerm = ""
	highlight.Clear(m.docPane.Container())
	highlight.Clear(m.notesPane.Container())
	m.docPane.dirty = true
	m.notesPane.dirty = true
}

func (m *model) startNotesGeneration() tea.Cmd {
	if m.config.LLM == nil {
		m.infoMessage = "Configure OpenAI or Ollama to generate notes."
		return nil
	}
	if m.notesLoading {
		m.infoMessage = "Notes already generating."
		return nil
	}
	m.notesLoading = true
	m.infoMessage = fmt.Sprintf("Generating notes for page %d…", m.page)
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindNotes, generateNotesJob(m.config.LLM, m.config.SessionPath, m.notesRequest())),
	)
}

// notesRequest assembles the generation request for the current page,
// including the per-topic mastery derived from every notes entry so far.
func (m *model) notesRequest() llm.NotesRequest {
	req := llm.NotesRequest{
		DocumentName: m.document.Name,
		Page:         m.page,
		PageText:     m.document.PageText(m.page),
		PreviousText: m.document.PageText(m.page - 1),
		Profile:      m.config.Profile,
	}
	if prev, ok := m.pageNotes[m.page-1]; ok {
		req.PreviousNotes = prev.Markdown
	}
	if mastery := study.MasteryByTopic(m.notesList()); mastery != nil {
		req.TopicMastery = make(map[string]llm.TopicMastery, len(mastery))
		for topic, level := range mastery {
			req.TopicMastery[topic] = llm.TopicMastery{Score: level.Score, Attempts: level.Attempts}
		}
	}
	return req
}

func (m *model) startOverviewGeneration() tea.Cmd {
	texts := make([]string, m.document.PageCount())
	for i := range texts {
		texts[i] = m.document.PageText(i + 1)
	}
	req := llm.OverviewRequest{
		DocumentName: m.document.Name,
		PageTexts:    texts,
		Profile:      m.config.Profile,
	}
	return m.jobs.Start(jobKindOverview, generateOverviewJob(m.config.LLM, m.config.SessionPath, req))
}

func (m *model) startInlineCommand(kind llm.CommandKind) tea.Cmd {
	if m.toolbar == nil {
		m.infoMessage = "Select a passage first (v, move, Enter)."
		return nil
	}
	if m.config.LLM == nil {
		m.infoMessage = "Configure OpenAI or Ollama to use inline commands."
		return nil
	}
	m.infoMessage = fmt.Sprintf("Running %s on the selection…", commandLabel(kind))
	return m.jobs.Start(jobKindCommand, inlineCommandJob(
		m.config.LLM, kind, m.toolbar.Text, m.document.PageText(m.page), m.config.Profile,
	))
}

func (m *model) startEmphasis() tea.Cmd {
	if m.toolbar == nil {
		m.infoMessage = "Select a passage first (v, move, Enter)."
		return nil
	}
	if m.config.LLM == nil {
		m.infoMessage = "Configure OpenAI or Ollama to emphasize passages."
		return nil
	}
	req := llm.EmphasisRequest{
		NotesMarkdown: m.pageNotes[m.page].Markdown,
		Selected:      m.toolbar.Text,
		Page:          m.page,
		Profile:       m.config.Profile,
	}
	m.infoMessage = "Weaving the passage into the notes…"
	return m.jobs.Start(jobKindEmphasis, integrateEmphasisJob(m.config.LLM, m.config.SessionPath, m.pageNotes[m.page], req))
}

func (m *model) copySelection() tea.Cmd {
	if m.toolbar == nil {
		m.infoMessage = "Select a passage first (v, move, Enter)."
		return nil
	}
	if err := clipboard.WriteAll(m.toolbar.Text); err != nil {
		m.errorMessage = fmt.Sprintf("clipboard: %v", err)
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Copied %d characters.", len(m.toolbar.Text))
	return nil
}

func (m *model) onSelectionChange(id paneID) func(*selection.Span) {
	return func(span *selection.Span) {
		m.toolbar = span
		m.toolbarPane = id
	}
}

func (m *model) focusedPane() (*pane, *selection.Tracker) {
	if m.focus == paneNotes {
		return m.notesPane, m.notesTracker
	}
	return m.docPane, m.docTracker
}

func (m *model) notesList() []study.PageNotes {
	list := make([]study.PageNotes, 0, len(m.pageNotes))
	for _, n := range m.pageNotes {
		list = append(list, n)
	}
	return list
}

func commandLabel(kind llm.CommandKind) string {
	switch kind {
	case llm.CommandElaborate:
		return "Elaboration"
	case llm.CommandSimplify:
		return "Simplification"
	case llm.CommandAnalogy:
		return "Analogy"
	default:
		return string(kind)
	}
}

func kindLabel(kind search.Kind) string {
	switch kind {
	case search.KindDocument:
		return "document"
	case search.KindNotes:
		return "notes"
	case search.KindAnnotation:
		return "annotation"
	default:
		return "source"
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
