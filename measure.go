package pageview

import "golang.org/x/net/html"

// Measurer abstracts the rendering substrate's text geometry queries
// (bounding rectangles, range client rectangles, caret anchors). The host
// embedding this package supplies an implementation backed by its actual
// renderer; tests supply a synthetic one.
//
// All rectangles a Measurer returns are in viewport space, unscaled by
// zoom. Queries against detached or inconsistent DOM may fail: boolean
// results report "no geometry available", and RangeRects may return an
// error for ranges the substrate cannot resolve at all — callers treat
// that as a per-range failure, never a fatal condition.
type Measurer interface {
	// BoundingRect returns the border-box rectangle of an element.
	BoundingRect(n *html.Node) (Rect, bool)

	// RangeRects returns the client rectangles covering a text range.
	// The result may contain duplicates and overlapping line boxes;
	// callers deduplicate.
	RangeRects(r *TextRange) ([]Rect, error)

	// CaretRect returns a collapsed (zero or near-zero width) rectangle
	// anchored at the given character offset within a text node.
	CaretRect(textNode *html.Node, offset int) (Rect, bool)

	// RangeIntersectsNode reports whether the range touches the node.
	// Mirrors the native "does this range intersect this node" check the
	// primary selection strategy uses to detect that per-line
	// reconstruction is needed.
	RangeIntersectsNode(r *TextRange, n *html.Node) bool
}
