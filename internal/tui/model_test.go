package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/lectern/internal/pdfdoc"
	"github.com/csheth/lectern/internal/profile"
	"github.com/csheth/lectern/internal/selection"
	"github.com/csheth/lectern/internal/study"
)

var errOverviewTest = errors.New("overview backend unavailable")

func newTestModel(t *testing.T) *model {
	t.Helper()
	m := New(Config{
		DocumentPath: "fixture.pdf",
		SessionPath:  t.TempDir() + "/session.json",
		Profile:      profile.Default(),
	}).(*model)
	m.width = 120
	m.height = 40
	m.applyLayout()

	document := &pdfdoc.Document{
		Name: "fixture",
		Path: "fixture.pdf",
		Pages: []pdfdoc.Page{
			{Number: 1, Text: "Alpha beta gamma delta. Second sentence here."},
			{Number: 2, Text: "The gradient descent step shrinks the loss."},
		},
	}
	if _, cmd := m.handleLoadResult(loadResultMsg{document: document}); cmd != nil {
		t.Fatalf("load should not schedule work, got %T", cmd)
	}
	return m
}

func TestLoadOpensFirstPage(t *testing.T) {
	m := newTestModel(t)
	if m.stage != stageReading {
		t.Fatalf("stage = %v, want stageReading", m.stage)
	}
	if m.page != 1 {
		t.Fatalf("page = %d, want 1", m.page)
	}
	if got := m.docPane.Container().Text(); got != "Alpha beta gamma delta. Second sentence here." {
		t.Fatalf("document pane text = %q", got)
	}
}

func TestSearchDebounceDropsStaleTokens(t *testing.T) {
	m := newTestModel(t)
	m.searchInput.SetValue("gradient")

	stale := m.debounce.Trigger(debounceKeySearch)
	fresh := m.debounce.Trigger(debounceKeySearch)

	m.Update(searchTickMsg{token: stale})
	if len(m.results) != 0 {
		t.Fatal("superseded tick must not run the scan")
	}
	m.Update(searchTickMsg{token: fresh})
	if len(m.results) != 1 {
		t.Fatalf("expected 1 match for %q, got %d", "gradient", len(m.results))
	}
	if m.results[0].Page != 2 {
		t.Fatalf("match page = %d, want 2", m.results[0].Page)
	}
}

func TestJumpToResultNavigatesAndHighlights(t *testing.T) {
	m := newTestModel(t)
	m.searchInput.SetValue("gradient")
	m.runSearch()
	if len(m.results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(m.results))
	}

	if cmd := m.jumpToResult(0); cmd == nil {
		t.Fatal("jump should schedule highlight restore and expiry")
	}
	if m.page != 2 {
		t.Fatalf("page = %d, want 2", m.page)
	}
	if m.highlightTerm != "gradient" {
		t.Fatalf("highlight term = %q", m.highlightTerm)
	}

	// The rebuilt pane lights up after the restore tick.
	m.applyHighlights()
	found := false
	for _, f := range m.docPane.Container().Fragments() {
		for _, seg := range f.Segments() {
			if seg.Highlighted && strings.EqualFold(seg.Text, "gradient") {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("document pane should carry a highlighted segment for the query")
	}
}

func TestHighlightExpiryClearsOnlyLatestToken(t *testing.T) {
	m := newTestModel(t)
	m.searchInput.SetValue("gradient")
	m.runSearch()
	m.jumpToResult(0)
	m.applyHighlights()

	m.Update(highlightExpiryMsg{token: m.expiryToken - 1})
	if m.highlightTerm == "" {
		t.Fatal("stale expiry must not clear the highlight")
	}
	m.Update(highlightExpiryMsg{token: m.expiryToken})
	if m.highlightTerm != "" {
		t.Fatal("expiry should clear the highlight term")
	}
	for _, f := range m.docPane.Container().Fragments() {
		for _, seg := range f.Segments() {
			if seg.Highlighted {
				t.Fatal("highlights should be cleared after expiry")
			}
		}
	}
}

func TestKeyboardSelectionRaisesToolbar(t *testing.T) {
	m := newTestModel(t)
	press := func(s string) {
		m.handleReadingKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}

	press("v")
	for i := 0; i < 5; i++ {
		press("w")
	}
	m.handleReadingKey(tea.KeyMsg{Type: tea.KeyEnter})

	if m.toolbar == nil {
		t.Fatal("settled selection should raise the toolbar")
	}
	if m.toolbar.Text != "Alpha" {
		t.Fatalf("toolbar text = %q, want %q", m.toolbar.Text, "Alpha")
	}
	if m.toolbarPane != paneDocument {
		t.Fatalf("toolbar pane = %v, want document", m.toolbarPane)
	}

	// Toggling selection off tells the toolbar the selection is gone.
	press("v")
	if m.toolbar != nil {
		t.Fatalf("cleared selection should drop the toolbar, got %+v", m.toolbar)
	}
}

func TestEnterKeyOnSelectionUsesDisplayedText(t *testing.T) {
	m := newTestModel(t)
	m.docPane.BeginSelection()
	m.docPane.MoveCursor(10)
	m.docTracker.Begin()
	m.docTracker.KeyboardExtended()

	span, ok := m.docTracker.Span()
	if !ok {
		t.Fatal("selection should settle")
	}
	if span.End-span.Start != len(span.Text) {
		t.Fatalf("span width %d != text length %d", span.End-span.Start, len(span.Text))
	}
}

func TestNotesResultRefreshesCurrentPage(t *testing.T) {
	m := newTestModel(t)
	m.notesLoading = true

	entry := study.PageNotes{Page: 1, Markdown: "# Page one\nKey ideas."}
	m.handleNotesResult(notesResultMsg{page: 1, notes: entry})

	if m.notesLoading {
		t.Fatal("result should clear the loading flag")
	}
	if got := m.notesPane.Container().Text(); got != entry.Markdown {
		t.Fatalf("notes pane text = %q", got)
	}
}

func TestNotesResultForOtherPageDoesNotClobberPane(t *testing.T) {
	m := newTestModel(t)
	before := m.notesPane.Container().Text()

	m.handleNotesResult(notesResultMsg{page: 2, notes: study.PageNotes{Page: 2, Markdown: "later page"}})
	if got := m.notesPane.Container().Text(); got != before {
		t.Fatalf("pane should keep showing page 1 placeholder, got %q", got)
	}
	if m.pageNotes[2].Markdown != "later page" {
		t.Fatal("notes must still be stored for the other page")
	}
}

func TestAnnotationBecomesSearchable(t *testing.T) {
	m := newTestModel(t)
	ann := study.NewAnnotation(1, "beta gamma", "check this against the lecture")
	m.Update(annotationSavedMsg{annotation: ann})

	m.searchInput.SetValue("lecture")
	m.runSearch()
	if len(m.results) != 1 {
		t.Fatalf("expected the annotation note to match, got %d results", len(m.results))
	}
	if m.results[0].AnnotationID != ann.ID {
		t.Fatalf("match annotation id = %q, want %q", m.results[0].AnnotationID, ann.ID)
	}
}

func TestOverviewOverlayTogglesOnceReady(t *testing.T) {
	m := newTestModel(t)
	press := func(s string) {
		m.handleReadingKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}

	press("o")
	if m.showOverview {
		t.Fatal("overlay must not open before an overview exists")
	}

	m.Update(overviewResultMsg{err: errOverviewTest})
	if m.overview != nil {
		t.Fatal("a failed overview must not be stored")
	}

	m.Update(overviewResultMsg{overview: study.Overview{Content: "# Overview\nTwo short pages.", DocumentType: "textbook", VisualizationType: "outline"}})
	if m.overview == nil {
		t.Fatal("overview result should be stored")
	}

	press("o")
	if !m.showOverview {
		t.Fatal("o should open the overlay")
	}
	view := m.View()
	if !strings.Contains(view, "Document Overview") || !strings.Contains(view, "Two short pages.") {
		t.Fatalf("overlay missing from view:\n%s", view)
	}
	m.handleReadingKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showOverview {
		t.Fatal("esc should close the overlay")
	}
}

func TestLoadRestoresStoredOverview(t *testing.T) {
	source := newTestModel(t)
	m := New(Config{
		DocumentPath: "fixture.pdf",
		SessionPath:  t.TempDir() + "/session.json",
		Profile:      profile.Default(),
	}).(*model)
	m.width = 120
	m.height = 40
	m.applyLayout()

	overview := study.Overview{Content: "# Stored", DocumentType: "textbook"}
	if _, cmd := m.handleLoadResult(loadResultMsg{document: source.document, overview: overview, hasOverview: true}); cmd != nil {
		t.Fatalf("a stored overview must not trigger regeneration, got %T", cmd)
	}
	if m.overview == nil || m.overview.Content != "# Stored" {
		t.Fatalf("overview not restored: %+v", m.overview)
	}
}

func TestNotesRequestCarriesTopicMastery(t *testing.T) {
	m := newTestModel(t)
	m.pageNotes[1] = study.PageNotes{Page: 1, TopicLabels: []string{"gradients"}}
	m.pageNotes[2] = study.PageNotes{Page: 2, TopicLabels: []string{"gradients", "loss"}}
	m.gotoPage(2)

	req := m.notesRequest()
	if req.Page != 2 {
		t.Fatalf("request page = %d, want 2", req.Page)
	}
	if req.TopicMastery["gradients"].Attempts != 2 {
		t.Fatalf("gradients attempts = %d, want 2", req.TopicMastery["gradients"].Attempts)
	}
	if req.TopicMastery["loss"].Attempts != 1 {
		t.Fatalf("loss attempts = %d, want 1", req.TopicMastery["loss"].Attempts)
	}
	if req.TopicMastery["gradients"].Score <= req.TopicMastery["loss"].Score {
		t.Fatalf("repeated topic should score higher: %+v", req.TopicMastery)
	}
}

func TestPageTurnSettlesCarriedSelection(t *testing.T) {
	m := newTestModel(t)
	m.docPane.BeginSelection()
	m.docPane.MoveCursor(5)
	m.docTracker.Begin()
	m.docTracker.KeyboardExtended()
	if got := m.docTracker.State(); got != selection.Settled {
		t.Fatalf("state = %v, want Settled", got)
	}

	// No highlight is active, so only the scheduled tick can settle the
	// restored selection.
	cmd := m.gotoPage(2)
	if cmd == nil {
		t.Fatal("page turn must schedule the settle tick even without a highlight")
	}
	if got := m.docTracker.State(); got != selection.Restoring {
		t.Fatalf("state after rebuild = %v, want Restoring", got)
	}

	token := m.debounce.Trigger(debounceKeyHighlight)
	m.Update(restoreTickMsg{token: token})
	if got := m.docTracker.State(); got != selection.Settled {
		t.Fatalf("state after tick = %v, want Settled", got)
	}
}

func TestPageNavigationRebuildsPanes(t *testing.T) {
	m := newTestModel(t)
	m.gotoPage(2)
	if m.page != 2 {
		t.Fatalf("page = %d", m.page)
	}
	if got := m.docPane.Container().Text(); !strings.Contains(got, "gradient descent") {
		t.Fatalf("document pane not rebuilt: %q", got)
	}
	if m.gotoPage(3) != nil || m.page != 2 {
		t.Fatal("navigation past the last page must be a no-op")
	}
	if m.gotoPage(0) != nil || m.page != 2 {
		t.Fatal("navigation before the first page must be a no-op")
	}
}
