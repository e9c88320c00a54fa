// Package selection tracks a user's text selection over a fragment
// container and keeps it alive across arena rebuilds. All cross-rebuild
// state is held as linear offsets; live fragment references never outlast a
// render pass.
package selection

import "github.com/csheth/lectern/internal/doc"

// State is the tracker's position in its lifecycle.
type State int

const (
	// Idle: no selection.
	Idle State = iota
	// Selecting: a pointer drag or keyboard extension is in progress.
	Selecting
	// Settled: a non-empty selection has been snapshotted into offsets.
	Settled
	// Restoring: the arena was rebuilt under a settled selection and the
	// tracker has just reconstructed it; the first selection-changed signal
	// in this state is the tracker's own echo and gets absorbed.
	Restoring
)

// Point addresses a position in the arena by fragment index and local
// offset. Indexes are only meaningful against the arena generation they were
// computed for.
type Point struct {
	Fragment int
	Offset   int
}

// Box is the selection's bounding box in the host's display coordinates,
// used by the toolbar collaborator for positioning.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Span is a selection snapshotted for survival across rebuilds: pure offsets
// plus the displayed text and bounding box handed to the toolbar.
type Span struct {
	Start int
	End   int
	Text  string
	Box   Box
}

// Live is the host's raw view of the in-progress selection: where it starts
// in the current arena, what text it displays, and where it sits on screen.
type Live struct {
	Start Point
	Text  string
	Box   Box
}

// Host is the narrow capability the tracker needs from the rendering layer.
// The tracker never learns how the host represents selection internally.
type Host interface {
	Container() *doc.Container
	// CurrentSelection returns the live selection, or false when it is
	// empty, collapsed, or lies outside the host's container.
	CurrentSelection() (Live, bool)
	// SetSelection reconstructs a live selection over the given points in
	// the current arena. It reports whether the host accepted it.
	SetSelection(start, end Point) bool
	// TouchCapable reports whether the host lacks precise pointing, in
	// which case selection-changed signals are treated as live updates.
	TouchCapable() bool
}

// Tracker converts live selections into offset spans and restores them after
// arena rebuilds. onChange receives the settled span, or nil when the
// selection is gone; it feeds the external toolbar.
type Tracker struct {
	host     Host
	onChange func(*Span)
	state    State
	span     Span
}

// NewTracker returns an idle tracker bound to one host.
func NewTracker(host Host, onChange func(*Span)) *Tracker {
	return &Tracker{host: host, onChange: onChange}
}

// State returns the tracker's current state.
func (t *Tracker) State() State {
	return t.state
}

// Span returns the settled selection, if any.
func (t *Tracker) Span() (Span, bool) {
	if t.state != Settled && t.state != Restoring {
		return Span{}, false
	}
	return t.span, true
}

// Begin marks the start of a pointer drag or keyboard extension.
func (t *Tracker) Begin() {
	t.state = Selecting
}

// PointerReleased reads the live selection at the end of a pointer gesture
// and settles or drops it.
func (t *Tracker) PointerReleased() {
	t.settle()
}

// KeyboardExtended reads the live selection after a keyboard-driven
// extension and settles or drops it.
func (t *Tracker) KeyboardExtended() {
	t.settle()
}

// SelectionChanged handles the host's selection-changed signal. During
// Restoring the first signal is the tracker's own reconstruction echo and is
// absorbed (fire-once). Outside of that, the signal is a live update only on
// touch-capable hosts; on pointer hosts intermediate drag states are noise
// and get ignored.
func (t *Tracker) SelectionChanged() {
	if t.state == Restoring {
		t.state = Settled
		return
	}
	if t.host.TouchCapable() {
		t.settle()
	}
}

// Tick closes the absorption window: if no selection-changed signal arrived
// since the restore, the tracker settles anyway. The coordinator calls it on
// the scheduling tick after a rebuild.
func (t *Tracker) Tick() {
	if t.state == Restoring {
		t.state = Settled
	}
}

// TreeRebuilt restores a settled selection over the freshly rebuilt arena.
// If either offset no longer resolves, or the host refuses the
// reconstruction, the selection is dropped silently: the text it covered no
// longer exists.
func (t *Tracker) TreeRebuilt() {
	if t.state != Settled && t.state != Restoring {
		return
	}
	c := t.host.Container()

	startFrag, startLocal, okStart := c.Locate(t.span.Start)
	endFrag, endLocal, okEnd := c.Locate(t.span.End)
	if !okStart || !okEnd {
		t.drop()
		return
	}
	start := Point{Fragment: fragmentIndex(c, startFrag), Offset: startLocal}
	end := Point{Fragment: fragmentIndex(c, endFrag), Offset: endLocal}
	if start.Fragment < 0 || end.Fragment < 0 {
		t.drop()
		return
	}
	if !t.host.SetSelection(start, end) {
		t.drop()
		return
	}
	t.state = Restoring
}

// settle reads the host's live selection and snapshots it into offsets. A
// collapsed or out-of-container selection invalidates whatever was settled
// before.
func (t *Tracker) settle() {
	live, ok := t.host.CurrentSelection()
	if !ok || live.Text == "" {
		t.drop()
		return
	}
	c := t.host.Container()
	fragments := c.Fragments()
	if live.Start.Fragment < 0 || live.Start.Fragment >= len(fragments) {
		t.drop()
		return
	}
	start, err := c.OffsetOf(fragments[live.Start.Fragment], live.Start.Offset)
	if err != nil {
		t.drop()
		return
	}
	// End is derived from the displayed text length, not from the host's raw
	// end point: multi-click selection can report an end past the visible
	// text.
	t.span = Span{Start: start, End: start + len(live.Text), Text: live.Text, Box: live.Box}
	t.state = Settled
	t.emit(&t.span)
}

// drop invalidates the selection without surfacing an error.
func (t *Tracker) drop() {
	notify := t.state != Idle
	t.state = Idle
	t.span = Span{}
	if notify {
		t.emit(nil)
	}
}

func (t *Tracker) emit(span *Span) {
	if t.onChange != nil {
		t.onChange(span)
	}
}

func fragmentIndex(c *doc.Container, target *doc.Fragment) int {
	for i, f := range c.Fragments() {
		if f == target {
			return i
		}
	}
	return -1
}
