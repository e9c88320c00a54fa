package study

import (
	"github.com/csheth/lectern/internal/pdfdoc"
	"github.com/csheth/lectern/internal/search"
)

// Sources assembles the per-page search sources for the document and session.
// Pages come back in page order; annotations keep their creation order.
func Sources(doc *pdfdoc.Document, notes []PageNotes, annotations []Annotation) []search.PageSources {
	notesByPage := make(map[int]string, len(notes))
	for _, n := range notes {
		notesByPage[n.Page] = n.Markdown
	}
	annsByPage := make(map[int][]search.AnnotationSource)
	for _, a := range annotations {
		text := a.Text
		if a.Note != "" {
			text += "\n" + a.Note
		}
		annsByPage[a.Page] = append(annsByPage[a.Page], search.AnnotationSource{ID: a.ID, Text: text})
	}

	sources := make([]search.PageSources, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		sources = append(sources, search.PageSources{
			Page:        page.Number,
			Document:    page.Text,
			Notes:       notesByPage[page.Number],
			Annotations: annsByPage[page.Number],
		})
	}
	return sources
}
