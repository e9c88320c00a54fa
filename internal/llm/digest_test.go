package llm

import (
	"strings"
	"testing"
)

func TestDigestDropsRepeatedHeaders(t *testing.T) {
	t.Parallel()
	text := "Chapter 3 Linear Maps and Their Matrices. A linear map preserves addition and scaling. Chapter 3 Linear Maps and Their Matrices. Composition of linear maps is again linear."
	got := digestPageText(text)
	if strings.Count(got, "Chapter 3 Linear Maps and Their Matrices.") != 1 {
		t.Fatalf("repeated header should appear once, got %q", got)
	}
	if !strings.Contains(got, "preserves addition") || !strings.Contains(got, "Composition of linear maps") {
		t.Fatalf("body sentences lost: %q", got)
	}
}

func TestDigestDropsBoilerplate(t *testing.T) {
	t.Parallel()
	text := "42. The derivative measures instantaneous change. Copyright 2021 Example Press. doi:10.1000/xyz123. All rights reserved."
	got := digestPageText(text)
	if !strings.Contains(got, "derivative measures instantaneous change") {
		t.Fatalf("real sentence lost: %q", got)
	}
	for _, banned := range []string{"42.", "Copyright", "doi:", "rights reserved"} {
		if strings.Contains(got, banned) {
			t.Fatalf("boilerplate %q survived: %q", banned, got)
		}
	}
}

func TestDigestKeepsShortRepeats(t *testing.T) {
	t.Parallel()
	text := "Is the map invertible? Yes. Is the kernel trivial? Yes."
	got := digestPageText(text)
	if strings.Count(got, "Yes.") != 2 {
		t.Fatalf("short answers should not be deduplicated: %q", got)
	}
}

func TestDigestFeedsNotesPrompt(t *testing.T) {
	t.Parallel()
	req := NotesRequest{
		DocumentName: "calculus",
		Page:         2,
		PageText:     "Calculus Early Transcendentals Chapter Two. The limit of a sum is the sum of the limits. Calculus Early Transcendentals Chapter Two. Products behave the same way.",
	}
	prompt, err := notesPrompt(req)
	if err != nil {
		t.Fatalf("notesPrompt: %v", err)
	}
	if strings.Count(prompt, "Calculus Early Transcendentals Chapter Two.") != 1 {
		t.Fatalf("header should be deduplicated before prompting:\n%s", prompt)
	}
}
