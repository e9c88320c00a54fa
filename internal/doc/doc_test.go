package doc

import (
	"strings"
	"testing"
)

func buildContainer(t *testing.T, texts ...string) *Container {
	t.Helper()
	c := NewContainer("page-1")
	c.Rebuild(texts)
	return c
}

func TestContainerLinearText(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "The gradient ", "descent algorithm ", "converges.")
	if got := c.Text(); got != "The gradient descent algorithm converges." {
		t.Fatalf("linear text mismatch: %q", got)
	}
	if got := c.Len(); got != len(c.Text()) {
		t.Fatalf("Len() = %d, want %d", got, len(c.Text()))
	}
}

func TestRebuildBumpsGeneration(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "one", "two")
	gen := c.Generation()
	old := c.Fragments()[0]

	c.Rebuild([]string{"one", "two"})
	if c.Generation() != gen+1 {
		t.Fatalf("generation not bumped: %d -> %d", gen, c.Generation())
	}
	if _, err := c.OffsetOf(old, 0); err != ErrNotFound {
		t.Fatalf("stale fragment should report ErrNotFound, got %v", err)
	}
}

func TestOffsetOfAccumulatesPriorFragments(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "abc", "defg", "hi")
	frags := c.Fragments()

	off, err := c.OffsetOf(frags[1], 2)
	if err != nil {
		t.Fatalf("OffsetOf() error = %v", err)
	}
	if off != 5 {
		t.Fatalf("OffsetOf(frag1, 2) = %d, want 5", off)
	}

	off, err = c.OffsetOf(frags[2], 0)
	if err != nil {
		t.Fatalf("OffsetOf() error = %v", err)
	}
	if off != 7 {
		t.Fatalf("OffsetOf(frag2, 0) = %d, want 7", off)
	}
}

func TestLocateBeyondTotalLengthFails(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "abc", "de")
	if _, _, ok := c.Locate(6); ok {
		t.Fatal("Locate past total length should fail")
	}
	if _, _, ok := c.Locate(-1); ok {
		t.Fatal("Locate with negative offset should fail")
	}
	if f, local, ok := c.Locate(5); !ok || local != 2 || f != c.Fragments()[1] {
		t.Fatalf("Locate(total) should land at end of last fragment, got (%v, %d, %v)", f, local, ok)
	}
}

func TestLocateOnEmptyContainer(t *testing.T) {
	t.Parallel()

	c := NewContainer("page-empty")
	if _, _, ok := c.Locate(0); ok {
		t.Fatal("Locate(0) on an empty container has no fragment to return")
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "The quick ", "", "brown fox ", "jumps.")
	for off := 0; off <= c.Len(); off++ {
		f, local, ok := c.Locate(off)
		if !ok {
			t.Fatalf("Locate(%d) failed inside range", off)
		}
		back, err := c.OffsetOf(f, local)
		if err != nil {
			t.Fatalf("OffsetOf after Locate(%d): %v", off, err)
		}
		if back != off {
			t.Fatalf("round trip broke: %d -> %d", off, back)
		}
	}
}

func TestSetSegmentsDropsEmptyRuns(t *testing.T) {
	t.Parallel()

	c := buildContainer(t, "hello world")
	f := c.Fragments()[0]
	f.SetSegments([]Segment{
		{Text: ""},
		{Text: "hello ", Highlighted: false},
		{Text: "world", Highlighted: true},
	})
	if got := len(f.Segments()); got != 2 {
		t.Fatalf("expected empty segment dropped, got %d segments", got)
	}
	if f.Text() != "hello world" {
		t.Fatalf("fragment text changed: %q", f.Text())
	}
	if !f.Highlighted() {
		t.Fatal("fragment should report highlighted content")
	}
}

func TestSplitSentencesIsLossless(t *testing.T) {
	t.Parallel()

	text := "First sentence. Second one!  Third?Fourth without trailing stop"
	pieces := SplitSentences(text)
	if len(pieces) != 4 {
		t.Fatalf("expected 4 sentence pieces, got %d: %#v", len(pieces), pieces)
	}
	if strings.Join(pieces, "") != text {
		t.Fatalf("sentence split lost text: %#v", pieces)
	}
	if pieces[0] != "First sentence. " {
		t.Fatalf("trailing whitespace should stay with its sentence, got %q", pieces[0])
	}
}

func TestSplitBlocksIsLossless(t *testing.T) {
	t.Parallel()

	text := "# Heading\n\nFirst paragraph.\n\n\n- bullet one\n- bullet two"
	pieces := SplitBlocks(text)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %#v", len(pieces), pieces)
	}
	if strings.Join(pieces, "") != text {
		t.Fatalf("block split lost text: %#v", pieces)
	}
}
