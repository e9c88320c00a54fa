// Package pdfdoc loads a local PDF into per-page text for the reader. Page
// text is whitespace-normalized; layout is the panes' concern.
package pdfdoc

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Page is the text content of a single PDF page.
type Page struct {
	Number int
	Text   string
}

// Document is a loaded study document.
type Document struct {
	Name  string
	Path  string
	Pages []Page
}

// Load extracts per-page plain text from the PDF at path.
func Load(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for num := 1; num <= total; num++ {
		p := reader.Page(num)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: num})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			pages = append(pages, Page{Number: num})
			continue
		}
		pages = append(pages, Page{Number: num, Text: normalizeWhitespace(text)})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf has no pages: %s", path)
	}

	return &Document{
		Name:  documentName(path),
		Path:  path,
		Pages: pages,
	}, nil
}

// PageText returns the text of the 1-based page number, or "" when the page
// does not exist.
func (d *Document) PageText(number int) string {
	for _, p := range d.Pages {
		if p.Number == number {
			return p.Text
		}
	}
	return ""
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

func documentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalizeWhitespace(s string) string {
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
