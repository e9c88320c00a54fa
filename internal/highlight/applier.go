// Package highlight rewrites fragment content to wrap query matches in
// highlighted segments. Highlighting is best-effort decoration over primary
// content: every failure mode degrades to "this fragment stays plain", never
// to corrupted text.
package highlight

import (
	"sort"
	"strings"

	"github.com/csheth/lectern/internal/doc"
)

// span is a half-open [start, end) interval.
type span struct {
	start int
	end   int
}

// Clear unwraps every highlighted segment in the container, coalescing each
// fragment back to a single plain segment. It is a no-op on fragments that
// carry no highlights, and it is always safe to run.
func Clear(c *doc.Container) {
	for _, f := range c.Fragments() {
		if !f.Highlighted() {
			continue
		}
		f.SetSegments([]doc.Segment{{Text: f.Text()}})
	}
}

// Apply clears any previous highlights and then wraps every case-insensitive
// occurrence of term across the container's linear text, including matches
// that straddle fragment boundaries. An empty term is a pure clear. Applying
// the same term twice yields the same fragment content as applying it once.
func Apply(c *doc.Container, term string) {
	Clear(c)
	if term == "" {
		return
	}

	fragments := c.Fragments()
	if len(fragments) == 0 {
		return
	}

	// Snapshot the linear text and each fragment's span inside it. The
	// snapshot is what gets matched; fragments that change before their
	// rewrite are skipped below.
	texts := make([]string, len(fragments))
	spans := make([]span, len(fragments))
	var b strings.Builder
	for i, f := range fragments {
		texts[i] = f.Text()
		spans[i] = span{start: b.Len(), end: b.Len() + len(texts[i])}
		b.WriteString(texts[i])
	}
	linear := b.String()

	matches := findAll(linear, term)
	if len(matches) == 0 {
		return
	}

	for i, f := range fragments {
		ranges := localRanges(matches, spans[i])
		if len(ranges) == 0 {
			continue
		}
		if f.Text() != texts[i] {
			// The fragment mutated between snapshot and rewrite; leave it
			// unhighlighted rather than risk garbling it.
			continue
		}
		f.SetSegments(segmentize(texts[i], ranges))
	}
}

// findAll returns every non-overlapping case-insensitive occurrence of term,
// left to right, the cursor advancing past each match.
func findAll(text, term string) []span {
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)
	var matches []span
	searchIdx := 0
	for searchIdx < len(lowerText) {
		idx := strings.Index(lowerText[searchIdx:], lowerTerm)
		if idx < 0 {
			break
		}
		start := searchIdx + idx
		end := start + len(lowerTerm)
		matches = append(matches, span{start: start, end: end})
		searchIdx = end
	}
	return matches
}

// localRanges translates the parts of each match that overlap the fragment
// span into fragment-local coordinates and merges the result.
func localRanges(matches []span, frag span) []span {
	if frag.start == frag.end {
		return nil
	}
	var ranges []span
	for _, m := range matches {
		if m.end <= frag.start || m.start >= frag.end {
			continue
		}
		start := m.start
		if start < frag.start {
			start = frag.start
		}
		end := m.end
		if end > frag.end {
			end = frag.end
		}
		ranges = append(ranges, span{start: start - frag.start, end: end - frag.start})
	}
	return mergeRanges(ranges)
}

// mergeRanges sorts ranges by start and folds forward, extending the current
// range whenever the next one starts at or before its end. Overlapping and
// adjacent ranges collapse into one, so the result is sorted,
// non-overlapping, and non-adjacent.
func mergeRanges(ranges []span) []span {
	if len(ranges) <= 1 {
		return ranges
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start == ranges[j].start {
			return ranges[i].end < ranges[j].end
		}
		return ranges[i].start < ranges[j].start
	})
	merged := []span{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// segmentize rebuilds a fragment's content as an ordered sequence of plain
// and highlighted segments covering text exactly once.
func segmentize(text string, ranges []span) []doc.Segment {
	segments := make([]doc.Segment, 0, 2*len(ranges)+1)
	pos := 0
	for _, r := range ranges {
		if r.start > pos {
			segments = append(segments, doc.Segment{Text: text[pos:r.start]})
		}
		segments = append(segments, doc.Segment{Text: text[r.start:r.end], Highlighted: true})
		pos = r.end
	}
	if pos < len(text) {
		segments = append(segments, doc.Segment{Text: text[pos:]})
	}
	return segments
}
