// Package sched provides the keyed debounce bookkeeping the reader uses for
// its two timers: the search scan after the last query edit, and the
// highlight re-apply after a pane rebuild settles. Scheduling a key replaces
// whatever was previously scheduled under it; a superseded timer is simply
// never due.
//
// The bookkeeping is timer-agnostic: Trigger hands out a token and Due
// reports whether a token is still the latest one for its key. Callers pair
// tokens with whatever clock they have (the TUI uses tea.Tick, tests call
// Due directly), so debounce behavior is testable without real timers.
package sched

// Debouncer coalesces bursts of triggers per key.
//
// The zero value is not usable; call New.
type Debouncer struct {
	seq map[string]int
}

// New returns an empty debouncer.
func New() *Debouncer {
	return &Debouncer{seq: map[string]int{}}
}

// Trigger registers a new pending action under key, superseding any earlier
// one, and returns its token.
func (d *Debouncer) Trigger(key string) int {
	d.seq[key]++
	return d.seq[key]
}

// Due reports whether token is still the latest trigger for key. A token
// observed after a newer Trigger, or after Reset, is stale and its action
// must not run.
func (d *Debouncer) Due(key string, token int) bool {
	return token == d.seq[key]
}

// Reset invalidates every outstanding token for key without arming a new
// one.
func (d *Debouncer) Reset(key string) {
	d.seq[key]++
}
