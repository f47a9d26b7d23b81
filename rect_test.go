package pageview

import "testing"

func TestDeduplicateEmptyAndSingle(t *testing.T) {
	if got := DeduplicateOverlappingRects(nil); len(got) != 0 {
		t.Errorf("nil input: got %d rects, want 0", len(got))
	}
	if got := DeduplicateOverlappingRects([]Rect{}); len(got) != 0 {
		t.Errorf("empty input: got %d rects, want 0", len(got))
	}

	single := []Rect{{X: 10, Y: 20, Width: 100, Height: 18}}
	got := DeduplicateOverlappingRects(single)
	if len(got) != 1 || got[0] != single[0] {
		t.Errorf("single rect: got %v, want unchanged input", got)
	}
}

func TestDeduplicateDoesNotMutateInput(t *testing.T) {
	input := []Rect{
		{X: 50, Y: 100, Width: 80, Height: 18},
		{X: 10, Y: 20, Width: 100, Height: 18},
	}
	saved := make([]Rect, len(input))
	copy(saved, input)

	DeduplicateOverlappingRects(input)

	for i := range input {
		if input[i] != saved[i] {
			t.Fatalf("input mutated at %d: got %v, want %v", i, input[i], saved[i])
		}
	}
}

func TestDeduplicateExactDuplicates(t *testing.T) {
	// Sub-pixel jitter within tolerance: one line box reported twice.
	got := DeduplicateOverlappingRects([]Rect{
		{X: 10, Y: 100, Width: 200, Height: 18},
		{X: 10.5, Y: 101, Width: 200.3, Height: 18.2},
	})
	if len(got) != 1 {
		t.Fatalf("got %d rects, want 1 (duplicates collapse to first)", len(got))
	}
	if got[0].X != 10 {
		t.Errorf("kept rect X: got %v, want the first encountered", got[0].X)
	}
}

func TestDeduplicateContainerDroppedForContent(t *testing.T) {
	// Line box fully containing the text-content rect with >80% overlap:
	// the smaller content rect wins.
	container := Rect{X: 8, Y: 99, Width: 220, Height: 22}
	content := Rect{X: 10, Y: 100, Width: 200, Height: 18}
	got := DeduplicateOverlappingRects([]Rect{container, content})
	if len(got) != 1 {
		t.Fatalf("got %d rects, want 1", len(got))
	}
	if got[0] != content {
		t.Errorf("got %v, want the smaller text-content rect", got[0])
	}
}

func TestDeduplicateZeroHeightContainerWins(t *testing.T) {
	// Degenerate native quirk: a zero-height container box is kept over
	// the rect it contains horizontally.
	zero := Rect{X: 8, Y: 100, Width: 220, Height: 0}
	content := Rect{X: 10, Y: 100, Width: 200, Height: 0}
	got := DeduplicateOverlappingRects([]Rect{zero, content})
	if len(got) != 1 {
		t.Fatalf("got %d rects, want 1", len(got))
	}
	if got[0] != zero {
		t.Errorf("got %v, want the zero-height container", got[0])
	}
}

func TestDeduplicateDifferentLinesBothKept(t *testing.T) {
	// Same x-extent but more than 3px apart vertically: separate lines.
	got := DeduplicateOverlappingRects([]Rect{
		{X: 10, Y: 100, Width: 200, Height: 18},
		{X: 10, Y: 120, Width: 200, Height: 18},
	})
	if len(got) != 2 {
		t.Errorf("got %d rects, want 2 (different lines never collapse)", len(got))
	}
}

func TestDeduplicateLowOverlapBothKept(t *testing.T) {
	// Same line, side by side: below the 80% overlap threshold.
	got := DeduplicateOverlappingRects([]Rect{
		{X: 10, Y: 100, Width: 100, Height: 18},
		{X: 105, Y: 100, Width: 100, Height: 16},
	})
	if len(got) != 2 {
		t.Errorf("got %d rects, want 2 (insufficient overlap)", len(got))
	}
}

func TestDeduplicateSortsByYThenX(t *testing.T) {
	got := DeduplicateOverlappingRects([]Rect{
		{X: 300, Y: 120, Width: 50, Height: 18},
		{X: 10, Y: 100, Width: 50, Height: 18},
		{X: 10, Y: 120, Width: 50, Height: 18},
	})
	if len(got) != 3 {
		t.Fatalf("got %d rects, want 3", len(got))
	}
	if got[0].Y != 100 || got[1] != (Rect{X: 10, Y: 120, Width: 50, Height: 18}) || got[2].X != 300 {
		t.Errorf("result not ordered by (y, x): %v", got)
	}
}

func TestDeduplicateNativeTriplePattern(t *testing.T) {
	// The common real-world shape: content rect, exact duplicate, and a
	// slightly larger line box, all one visual line.
	content := Rect{X: 122, Y: 112, Width: 80, Height: 20}
	got := DeduplicateOverlappingRects([]Rect{
		content,
		content,
		{X: 122, Y: 112, Width: 86, Height: 22},
	})
	if len(got) != 1 {
		t.Fatalf("got %d rects, want 1", len(got))
	}
	if got[0] != content {
		t.Errorf("got %v, want the content rect", got[0])
	}
}
