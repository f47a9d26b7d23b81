package pageview

import "sort"

// Rect is an axis-aligned rectangle in pixel space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Top returns the top edge (accounting for negative height).
func (r Rect) Top() float64 {
	if r.Height < 0 {
		return r.Y + r.Height
	}
	return r.Y
}

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 {
	if r.Height < 0 {
		return r.Y
	}
	return r.Y + r.Height
}

// Left returns the left edge (accounting for negative width).
func (r Rect) Left() float64 {
	if r.Width < 0 {
		return r.X + r.Width
	}
	return r.X
}

// Right returns the right edge.
func (r Rect) Right() float64 {
	if r.Width < 0 {
		return r.X
	}
	return r.X + r.Width
}

// Deduplication tolerances. Native text geometry queries report a line box
// and its text content as separate, nearly identical rectangles; these
// thresholds decide when two reported rects describe the same ink.
const (
	sameLineToleranceY   = 3.0 // rects within this y distance sit on one line
	duplicateToleranceX  = 1.0
	duplicateSizeEpsilon = 0.5
	containerOverlapMin  = 0.8 // horizontal overlap ratio for container drop
)

// DeduplicateOverlappingRects collapses redundant rectangles returned by
// native text-range geometry queries into a minimal covering set.
//
// Exact near-duplicates collapse to the first encountered. When two rects on
// the same line overlap by more than 80% of the narrower width and one fully
// contains the other, the container is dropped in favor of the smaller
// text-content rect — unless the smaller rect has zero height, in which case
// the zero-height rect wins. The input is never mutated; the result is
// ordered by (y, x).
func DeduplicateOverlappingRects(rects []Rect) []Rect {
	if len(rects) == 0 {
		return []Rect{}
	}

	sorted := make([]Rect, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	dropped := make([]bool, len(sorted))
	for i := 0; i < len(sorted); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			if dropped[j] {
				continue
			}
			// Sorted by y, so once past the line tolerance no later rect
			// can share a line with rect i.
			if sorted[j].Y-sorted[i].Y > sameLineToleranceY {
				break
			}
			a, b := sorted[i], sorted[j]

			if isExactDuplicate(a, b) {
				dropped[j] = true
				continue
			}

			if horizontalOverlapRatio(a, b) <= containerOverlapMin {
				continue
			}
			switch {
			case containsRect(a, b):
				// Keep the smaller text-content rect, unless the container
				// is a degenerate zero-height box, which wins.
				if a.Height == 0 {
					dropped[j] = true
				} else {
					dropped[i] = true
				}
			case containsRect(b, a):
				if b.Height == 0 {
					dropped[i] = true
				} else {
					dropped[j] = true
				}
			}
			if dropped[i] {
				break
			}
		}
	}

	out := make([]Rect, 0, len(sorted))
	for i, r := range sorted {
		if !dropped[i] {
			out = append(out, r)
		}
	}
	return out
}

// isExactDuplicate reports whether two rects describe the same box within
// sub-pixel tolerances.
func isExactDuplicate(a, b Rect) bool {
	return abs(a.X-b.X) <= duplicateToleranceX &&
		abs(a.Y-b.Y) <= sameLineToleranceY &&
		abs(a.Width-b.Width) <= duplicateSizeEpsilon &&
		abs(a.Height-b.Height) <= duplicateSizeEpsilon
}

// horizontalOverlapRatio returns overlap width relative to the narrower rect.
func horizontalOverlapRatio(a, b Rect) float64 {
	overlap := min64(a.Right(), b.Right()) - max64(a.Left(), b.Left())
	if overlap <= 0 {
		return 0
	}
	narrower := min64(a.Width, b.Width)
	if narrower <= 0 {
		return 0
	}
	return overlap / narrower
}

// containsRect reports whether outer is at least as large as inner in both
// dimensions, strictly larger in at least one beyond the size epsilon.
func containsRect(outer, inner Rect) bool {
	if outer.Width < inner.Width-duplicateSizeEpsilon {
		return false
	}
	if outer.Height < inner.Height-duplicateSizeEpsilon {
		return false
	}
	return outer.Width > inner.Width+duplicateSizeEpsilon ||
		outer.Height > inner.Height+duplicateSizeEpsilon
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
