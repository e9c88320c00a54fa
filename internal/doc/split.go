package doc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences cuts page text into sentence-level fragment texts. The split
// is lossless: trailing whitespace stays attached to the sentence it follows,
// so concatenating the pieces reproduces the input exactly. Renderers use
// this to build a page container whose linear text equals the page text.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	start := 0
	for idx, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := idx + utf8.RuneLen(r)
		// Absorb the run of whitespace after the terminator so the next
		// sentence starts on a visible character.
		for end < len(text) {
			next, size := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				break
			}
			end += size
		}
		if end <= start {
			continue
		}
		pieces = append(pieces, text[start:end])
		start = end
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// SplitBlocks cuts notes markdown into block-level fragment texts on blank
// lines, keeping the separators attached so the split is lossless.
func SplitBlocks(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], "\n\n")
		if idx < 0 {
			pieces = append(pieces, text[start:])
			break
		}
		end := start + idx + 2
		for end < len(text) && text[end] == '\n' {
			end++
		}
		pieces = append(pieces, text[start:end])
		start = end
	}
	return pieces
}
