package highlight

import (
	"reflect"
	"testing"

	"github.com/csheth/lectern/internal/doc"
)

func buildContainer(t *testing.T, texts ...string) *doc.Container {
	t.Helper()
	c := doc.NewContainer("pane")
	c.Rebuild(texts)
	return c
}

func highlightedRuns(c *doc.Container) []string {
	var runs []string
	for _, f := range c.Fragments() {
		for _, seg := range f.Segments() {
			if seg.Highlighted {
				runs = append(runs, seg.Text)
			}
		}
	}
	return runs
}

func snapshotSegments(c *doc.Container) [][]doc.Segment {
	var snap [][]doc.Segment
	for _, f := range c.Fragments() {
		snap = append(snap, append([]doc.Segment(nil), f.Segments()...))
	}
	return snap
}

func TestApplyWrapsMatchesWithinOneFragment(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "the gradient descent algorithm")
	Apply(c, "gradient")
	if got := highlightedRuns(c); !reflect.DeepEqual(got, []string{"gradient"}) {
		t.Fatalf("highlighted runs = %#v", got)
	}
	if c.Text() != "the gradient descent algorithm" {
		t.Fatalf("linear text changed: %q", c.Text())
	}
}

func TestApplyHighlightsCrossFragmentMatch(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "the grad", "ient desc", "ent algorithm")
	Apply(c, "gradient descent")
	if got := highlightedRuns(c); !reflect.DeepEqual(got, []string{"grad", "ient desc", "ent"}) {
		t.Fatalf("cross-fragment match should span three fragments, got %#v", got)
	}
	if c.Text() != "the gradient descent algorithm" {
		t.Fatalf("linear text changed: %q", c.Text())
	}
}

func TestApplyMergesAdjacentMatchesInOneFragment(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "aaaa")
	Apply(c, "aa")
	// Two adjacent matches coalesce into one highlighted run.
	if got := highlightedRuns(c); !reflect.DeepEqual(got, []string{"aaaa"}) {
		t.Fatalf("adjacent ranges should merge, got %#v", got)
	}
}

func TestApplyEmptyTermIsPureClear(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "alpha beta", "beta gamma")
	Apply(c, "beta")
	if len(highlightedRuns(c)) != 2 {
		t.Fatalf("setup: expected 2 highlighted runs, got %d", len(highlightedRuns(c)))
	}

	Apply(c, "")
	if runs := highlightedRuns(c); runs != nil {
		t.Fatalf("empty term should clear everything, still highlighted: %#v", runs)
	}
	for i, f := range c.Fragments() {
		if len(f.Segments()) != 1 {
			t.Fatalf("fragment %d not coalesced after clear: %#v", i, f.Segments())
		}
	}
	if c.Text() != "alpha betabeta gamma" {
		t.Fatalf("clear lost text: %q", c.Text())
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "one two ", "two three two")
	Apply(c, "two")
	once := snapshotSegments(c)
	Apply(c, "two")
	twice := snapshotSegments(c)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("double apply diverged:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestApplyIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "Beta beta BETA")
	Apply(c, "beta")
	if got := highlightedRuns(c); !reflect.DeepEqual(got, []string{"Beta", "beta", "BETA"}) {
		t.Fatalf("case-insensitive apply failed: %#v", got)
	}
}

func TestApplyNewTermReplacesOldHighlights(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "alpha beta gamma")
	Apply(c, "alpha")
	Apply(c, "gamma")
	if got := highlightedRuns(c); !reflect.DeepEqual(got, []string{"gamma"}) {
		t.Fatalf("stale highlights must be cleared before reapply, got %#v", got)
	}
}

func TestMergeRanges(t *testing.T) {
	t.Parallel()

	got := mergeRanges([]span{{0, 5}, {3, 8}, {10, 12}})
	want := []span{{0, 8}, {10, 12}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mergeRanges = %#v, want %#v", got, want)
	}

	got = mergeRanges([]span{{4, 6}, {0, 2}, {2, 4}})
	want = []span{{0, 6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("adjacent ranges should chain-merge, got %#v", got)
	}
}
