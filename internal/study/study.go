// Package study persists per-page notes and annotations for a reading
// session and assembles the searchable sources for each page.
package study

import (
	"fmt"
	"strings"
	"time"
)

// PageNotes is the generated study-notes entry for one document page.
type PageNotes struct {
	EntryType      string    `json:"entryType,omitempty"`
	Page           int       `json:"page"`
	Markdown       string    `json:"markdown"`
	TopicLabels    []string  `json:"topicLabels,omitempty"`
	PageReferences []int     `json:"pageReferences,omitempty"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// Overview is the document-level orientation entry, generated once per
// session right after the document loads.
type Overview struct {
	EntryType         string    `json:"entryType,omitempty"`
	Content           string    `json:"content"`
	VisualizationType string    `json:"visualizationType,omitempty"`
	DocumentType      string    `json:"documentType,omitempty"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// Annotation is a reader-attached note on a selected passage.
type Annotation struct {
	EntryType string    `json:"entryType,omitempty"`
	ID        string    `json:"id"`
	Page      int       `json:"page"`
	Text      string    `json:"text"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAnnotation builds an annotation for the selected passage.
func NewAnnotation(page int, text, note string) Annotation {
	now := time.Now()
	return Annotation{
		ID:        fmt.Sprintf("ann-%d", now.UnixNano()),
		Page:      page,
		Text:      strings.TrimSpace(text),
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
	}
}
