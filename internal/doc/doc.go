// Package doc models the fragment arena that pane renderers own: a Container
// with an ordered sequence of text Fragments, plus the offset arithmetic that
// converts between a linear character offset and a (fragment, local offset)
// pair. Fragments are rebuilt wholesale on every render pass, so everything
// that must survive a rebuild is expressed in offsets, never in held
// fragment references.
package doc

import "strings"

// Segment is one run of text inside a fragment. Highlighted segments are the
// wrappers the highlight applier injects; clearing a highlight collapses a
// fragment back to a single plain segment.
type Segment struct {
	Text        string
	Highlighted bool
}

// Fragment is an atomic span of text owned by the renderer. Its content can
// be replaced atomically with a mixed plain/highlighted segment sequence.
type Fragment struct {
	segments []Segment
}

func newFragment(text string) *Fragment {
	return &Fragment{segments: []Segment{{Text: text}}}
}

// Text returns the fragment's full text, concatenating all segments.
func (f *Fragment) Text() string {
	if len(f.segments) == 1 {
		return f.segments[0].Text
	}
	var b strings.Builder
	for _, seg := range f.segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Segments returns the fragment's current content. The returned slice must
// not be mutated; use SetSegments to replace content.
func (f *Fragment) Segments() []Segment {
	return f.segments
}

// SetSegments replaces the fragment's content in one step. Empty segments are
// dropped so cleared highlights leave no zero-width residue.
func (f *Fragment) SetSegments(segments []Segment) {
	filtered := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		filtered = append(filtered, seg)
	}
	if len(filtered) == 0 {
		filtered = []Segment{{Text: ""}}
	}
	f.segments = filtered
}

// Highlighted reports whether any segment of the fragment carries a
// highlight wrapper.
func (f *Fragment) Highlighted() bool {
	for _, seg := range f.segments {
		if seg.Highlighted {
			return true
		}
	}
	return false
}

// Container is the root scope for offset computation: one per rendered
// page/pane. The container identity is stable for as long as the pane is
// mounted; the fragment sequence is torn down and rebuilt on every render
// pass.
type Container struct {
	id         string
	fragments  []*Fragment
	generation int
}

// NewContainer returns an empty container with a stable identity.
func NewContainer(id string) *Container {
	return &Container{id: id}
}

// ID returns the container's stable identity.
func (c *Container) ID() string {
	return c.id
}

// Rebuild discards the current fragment sequence and installs a fresh one,
// one fragment per entry. Callers holding fragment pointers from before the
// rebuild must drop them.
func (c *Container) Rebuild(texts []string) {
	fragments := make([]*Fragment, 0, len(texts))
	for _, text := range texts {
		fragments = append(fragments, newFragment(text))
	}
	c.fragments = fragments
	c.generation++
}

// Fragments returns the current fragment sequence in order.
func (c *Container) Fragments() []*Fragment {
	return c.fragments
}

// Generation counts rebuilds. A change in generation tells observers that any
// fragment references they held are stale.
func (c *Container) Generation() int {
	return c.generation
}

// Text returns the container's full linear text: every fragment's text
// concatenated in order.
func (c *Container) Text() string {
	var b strings.Builder
	for _, f := range c.fragments {
		b.WriteString(f.Text())
	}
	return b.String()
}

// Len returns the total length of the container's linear text.
func (c *Container) Len() int {
	total := 0
	for _, f := range c.fragments {
		total += len(f.Text())
	}
	return total
}
