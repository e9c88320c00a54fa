package tui

import "time"

type stage int

const (
	stageLoading stage = iota
	stageReading
	stageSearch
	stageAnnotate
)

type paneID int

const (
	paneDocument paneID = iota
	paneNotes
)

const heroTagline = "Read, search, and annotate with Lectern."

const (
	minPaneWidth           = 30
	paneHorizontalPadding  = 6
	searchDebounceInterval = 300 * time.Millisecond
	restoreDebounceDelay   = 100 * time.Millisecond
	highlightLifetime      = 6 * time.Second
)

const (
	debounceKeySearch    = "search"
	debounceKeyHighlight = "highlight"
)

// searchTickMsg fires after the search debounce interval; stale tokens are
// dropped in Update.
type searchTickMsg struct {
	token int
}

// restoreTickMsg re-applies highlights shortly after a pane rebuild.
type restoreTickMsg struct {
	token int
}

// highlightExpiryMsg clears search highlights some time after the reader
// jumped to a result.
type highlightExpiryMsg struct {
	token int
}
