// Package search scans heterogeneous page content (document text, generated
// notes, user annotations) for literal substring matches and returns ranked,
// context-windowed results. It is not a general search engine: no
// tokenization, no stemming, no scoring beyond left-to-right order.
package search

import (
	"strings"
	"unicode/utf8"
)

// Kind names one scannable content source for a page.
type Kind string

const (
	KindDocument   Kind = "document"
	KindNotes      Kind = "notes"
	KindAnnotation Kind = "annotation"
)

const (
	defaultMinQueryLen   = 2
	defaultContextRadius = 50

	ellipsisMark = "…"
)

// Match is one located occurrence of a query. Context holds a bounded window
// of surrounding text; HighlightStart/HighlightEnd bound the matched
// substring inside Context, not inside the full source text.
type Match struct {
	Page           int
	Kind           Kind
	AnnotationID   string
	Context        string
	HighlightStart int
	HighlightEnd   int
}

// Finder locates query occurrences in a single text source. The zero value
// is unusable; use NewFinder for the standard limits.
type Finder struct {
	// MinQueryLen is the minimum query length in runes; shorter queries
	// return no matches rather than an error.
	MinQueryLen int
	// ContextRadius is the maximum number of runes kept on each side of a
	// match in the context window.
	ContextRadius int
}

// NewFinder returns a finder with the standard limits.
func NewFinder() Finder {
	return Finder{MinQueryLen: defaultMinQueryLen, ContextRadius: defaultContextRadius}
}

// Find returns every non-overlapping occurrence of query in text, in order.
// Matching is case-insensitive and the scan cursor advances past each match,
// so adjacent identical occurrences are separate matches but overlapping
// occurrences inside one are not.
func (f Finder) Find(text, query string, page int, kind Kind, annotationID string) []Match {
	if utf8.RuneCountInString(query) < f.MinQueryLen {
		return nil
	}
	if text == "" || len(text) < len(query) {
		return nil
	}

	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	var matches []Match
	searchIdx := 0
	for searchIdx < len(lowerText) {
		idx := strings.Index(lowerText[searchIdx:], lowerQuery)
		if idx < 0 {
			break
		}
		start := searchIdx + idx
		end := start + len(lowerQuery)
		context, hlStart, hlEnd := f.contextWindow(text, start, end)
		matches = append(matches, Match{
			Page:           page,
			Kind:           kind,
			AnnotationID:   annotationID,
			Context:        context,
			HighlightStart: hlStart,
			HighlightEnd:   hlEnd,
		})
		searchIdx = end
	}
	return matches
}

// contextWindow slices up to ContextRadius runes on each side of the match,
// clipped at the string boundaries, with an ellipsis marker on every clipped
// side. The returned offsets bound the match inside the context string.
func (f Finder) contextWindow(text string, start, end int) (string, int, int) {
	ctxStart := backupRunes(text, start, f.ContextRadius)
	ctxEnd := advanceRunes(text, end, f.ContextRadius)

	var b strings.Builder
	if ctxStart > 0 {
		b.WriteString(ellipsisMark)
	}
	hlStart := b.Len() + (start - ctxStart)
	b.WriteString(text[ctxStart:ctxEnd])
	if ctxEnd < len(text) {
		b.WriteString(ellipsisMark)
	}
	return b.String(), hlStart, hlStart + (end - start)
}

// backupRunes steps at most n runes backwards from byte offset off.
func backupRunes(text string, off, n int) int {
	for i := 0; i < n && off > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:off])
		off -= size
	}
	return off
}

// advanceRunes steps at most n runes forward from byte offset off.
func advanceRunes(text string, off, n int) int {
	for i := 0; i < n && off < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[off:])
		off += size
	}
	return off
}
