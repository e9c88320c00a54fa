package llm

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"
)

// Text extracted from PDFs carries running headers, footers, page numbers,
// and license boilerplate that repeat on every page and waste prompt budget.
// digestPageText drops those fragments and deduplicates repeated sentences
// before the text reaches a model.
func digestPageText(text string) string {
	segments := splitSentenceSegments(text)
	seen := map[string]bool{}
	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" || isBoilerplateSegment(trimmed) {
			continue
		}
		if wordCount(trimmed) >= 4 {
			hash := hashSegment(canonicalSegment(trimmed))
			if seen[hash] {
				continue
			}
			seen[hash] = true
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}

func splitSentenceSegments(text string) []string {
	var segments []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			segments = append(segments, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

func isBoilerplateSegment(segment string) bool {
	lower := strings.ToLower(segment)
	switch {
	case strings.Contains(lower, "all rights reserved"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "doi:"):
		return true
	case strings.Contains(lower, "arxiv:"):
		return true
	case strings.Contains(lower, "isbn"):
		return true
	}
	letters, digits := 0, 0
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	// Bare page numbers and figure labels survive extraction as short
	// letterless fragments.
	if letters == 0 {
		return true
	}
	if letters*5 < len(lower) && digits > 0 {
		return true
	}
	return false
}

func canonicalSegment(segment string) string {
	segment = strings.ToLower(strings.TrimSpace(segment))
	return whitespaceRe.ReplaceAllString(segment, " ")
}

func hashSegment(segment string) string {
	sum := sha1.Sum([]byte(segment))
	return hex.EncodeToString(sum[:])
}

func wordCount(segment string) int {
	return len(strings.Fields(segment))
}
