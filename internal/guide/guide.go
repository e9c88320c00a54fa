// Package guide builds a short study workflow checklist tailored to the
// reader's profile. The reader surfaces it as an in-app overlay.
package guide

import (
	"fmt"
	"strings"

	"github.com/csheth/lectern/internal/profile"
)

// Step is one actionable recommendation in the study workflow.
type Step struct {
	Title       string
	Description string
}

// Build returns a reading checklist for the open document, adjusted to the
// reader's stated comfort and goal.
func Build(prof profile.Profile, documentName string, pageCount int) []Step {
	name := strings.TrimSpace(documentName)
	if name == "" {
		name = "the document"
	}

	skim := fmt.Sprintf("Page through %s once (h/l) without stopping. Note the structure and flag unfamiliar terms; %d pages go faster than you expect when you are not reading closely.", name, pageCount)
	if pageCount <= 1 {
		skim = fmt.Sprintf("Read %s once top to bottom without stopping and flag unfamiliar terms.", name)
	}

	notes := "Work page by page: read the text pane, then press g and compare the generated notes against your own understanding."
	detail := strings.ToLower(prof.DetailLevel)
	switch {
	case strings.Contains(detail, "thorough"):
		notes = "Work page by page: read the text pane closely, press g, and check every claim in the generated notes against the page before moving on."
	case strings.Contains(detail, "overview"):
		notes = "Move through the pages quickly, pressing g where the material is new; skim the generated notes for the shape of the argument rather than the details."
	}

	engage := "When a passage resists you, select it (v, move, Enter) and ask for an elaboration (e), a plainer restatement (s), or an analogy (x)."
	if strings.Contains(strings.ToLower(prof.MathComfort), "low") {
		engage = "Skip derivations on the first pass. When one matters, select it (v, move, Enter) and press s for a plainer restatement before attempting the symbols."
	}

	steps := []Step{
		{Title: "First pass: skim", Description: skim},
		{Title: "Second pass: notes", Description: notes},
		{Title: "Stuck passages", Description: engage},
		{Title: "Capture", Description: "Annotate (a) the passages you will want to find again and emphasize (!) the ones that must survive into the notes. Both become searchable with /."},
	}

	if goal := strings.TrimSpace(prof.PrimaryGoal); goal != "" {
		steps = append(steps, Step{
			Title:       "Close the loop",
			Description: fmt.Sprintf("Before closing, reread your notes and annotations and ask whether they move you toward your goal: %s.", goal),
		})
	}
	return steps
}
