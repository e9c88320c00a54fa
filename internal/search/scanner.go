package search

// Scope selects which pages a scan visits.
type Scope int

const (
	ScopeCurrentPage Scope = iota
	ScopeAllPages
)

// Flags enables or disables individual source kinds for a scan.
type Flags struct {
	Document    bool
	Notes       bool
	Annotations bool
}

// Any reports whether at least one source kind is enabled.
func (f Flags) Any() bool {
	return f.Document || f.Notes || f.Annotations
}

// AnnotationSource is one user annotation attached to a page, in creation
// order.
type AnnotationSource struct {
	ID   string
	Text string
}

// PageSources bundles every scannable text source for one page. The scanner
// does not decide which sources exist; the state layer supplies them.
type PageSources struct {
	Page        int
	Document    string
	Notes       string
	Annotations []AnnotationSource
}

const defaultResultCap = 100

// Scanner runs a finder across the configured sources of a page sequence,
// accumulating results up to a fixed cap.
type Scanner struct {
	Finder Finder
	// Cap bounds the total number of results across all pages and sources;
	// the scan short-circuits once it is reached.
	Cap int
}

// NewScanner returns a scanner with the standard finder limits and result
// cap.
func NewScanner() Scanner {
	return Scanner{Finder: NewFinder(), Cap: defaultResultCap}
}

// Scan visits candidate pages in order and, within each page, the enabled
// sources in a fixed order: document text, then notes text, then each
// annotation in creation order. Scanning stops entirely once the result cap
// is reached, bounding work on large documents.
func (s Scanner) Scan(query string, scope Scope, currentPage int, flags Flags, pages []PageSources) []Match {
	if !flags.Any() {
		return nil
	}

	var results []Match
	full := func() bool { return len(results) >= s.Cap }
	take := func(found []Match) {
		for _, m := range found {
			if full() {
				return
			}
			results = append(results, m)
		}
	}

	for _, page := range pages {
		if scope == ScopeCurrentPage && page.Page != currentPage {
			continue
		}
		if flags.Document {
			take(s.Finder.Find(page.Document, query, page.Page, KindDocument, ""))
		}
		if full() {
			break
		}
		if flags.Notes {
			take(s.Finder.Find(page.Notes, query, page.Page, KindNotes, ""))
		}
		if full() {
			break
		}
		if flags.Annotations {
			for _, ann := range page.Annotations {
				take(s.Finder.Find(ann.Text, query, page.Page, KindAnnotation, ann.ID))
				if full() {
					break
				}
			}
		}
		if full() {
			break
		}
	}
	return results
}
