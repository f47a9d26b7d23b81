package pageview

import "golang.org/x/net/html"

// IndexEntry maps a model-position range to a painted element. The element
// is a back-reference only: the painter may detach it at any time under
// virtualization, so consumers recheck isConnected before trusting cached
// geometry across a frame boundary.
type IndexEntry struct {
	Start   int
	End     int
	Element *html.Node
}

// RebuildOptions configures an index rebuild.
type RebuildOptions struct {
	// LeafOnly keeps only the deepest range-bearing element on each path.
	// Ancestors carrying ranges are superseded by qualifying descendants.
	LeafOnly bool
}

// DefaultRebuildOptions returns the standard rebuild configuration.
func DefaultRebuildOptions() RebuildOptions {
	return RebuildOptions{LeafOnly: true}
}

// PositionIndex maps [start,end] model-position ranges to live painted
// elements, ordered by start ascending with ties broken by document order.
// The entry list is immutable between Rebuild calls; queries are read-only
// and never panic.
type PositionIndex struct {
	entries []IndexEntry
}

// NewPositionIndex creates an empty index.
func NewPositionIndex() *PositionIndex {
	return &PositionIndex{}
}

// Size returns the entry count.
func (x *PositionIndex) Size() int {
	return len(x.entries)
}

// Entries returns a copy of the entry list in document order.
func (x *PositionIndex) Entries() []IndexEntry {
	out := make([]IndexEntry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Rebuild replaces the index wholesale from the subtree rooted at root.
//
// Elements contribute an entry only when both position markers parse as
// finite, non-inverted numbers. Header and footer regions are pruned at
// any depth. The structured-content wrapper itself never contributes but
// its descendants do. Rebuilding an unchanged tree yields identical
// entries in identical order. The DOM is never mutated.
func (x *PositionIndex) Rebuild(root *html.Node, opts RebuildOptions) {
	x.entries = nil
	if root == nil {
		return
	}
	x.entries, _ = collectEntries(root, opts.LeafOnly)
	if x.entries == nil {
		x.entries = []IndexEntry{}
	}
}

// collectEntries walks the subtree in document order. The second return
// reports whether anything below n (inclusive) qualified, which is what
// supersedes a range-bearing ancestor in leaf-only mode.
func collectEntries(n *html.Node, leafOnly bool) ([]IndexEntry, bool) {
	if n.Type == html.ElementNode && isRegionMarker(n) {
		return nil, false
	}

	var childEntries []IndexEntry
	childQualified := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		entries, qualified := collectEntries(c, leafOnly)
		childEntries = append(childEntries, entries...)
		childQualified = childQualified || qualified
	}

	if n.Type != html.ElementNode {
		return childEntries, childQualified
	}

	// The structured-content wrapper is not a range-bearing leaf even
	// when it carries its own markers.
	if hasClass(n, ClassStructuredContent) {
		return childEntries, childQualified
	}

	start, end, ok := parsePosRange(n)
	if !ok {
		return childEntries, childQualified
	}

	self := IndexEntry{Start: start, End: end, Element: n}
	if leafOnly {
		if childQualified {
			return childEntries, true
		}
		return []IndexEntry{self}, true
	}
	// Document order: the ancestor precedes its descendants.
	return append([]IndexEntry{self}, childEntries...), true
}

// FindElementAtPosition returns the element of the first entry containing
// pos, inclusive at both boundaries, or nil. Adjacent abutting ranges both
// match their shared boundary; the earlier entry in document order wins.
func (x *PositionIndex) FindElementAtPosition(pos int) *html.Node {
	for i := range x.entries {
		if x.entries[i].Start <= pos && pos <= x.entries[i].End {
			return x.entries[i].Element
		}
	}
	return nil
}

// FindElementsInRange returns, in document order, every element whose
// range intersects [from,to]. Reversed bounds are normalized by swapping;
// a collapsed range matches nothing.
func (x *PositionIndex) FindElementsInRange(from, to int) []*html.Node {
	if from > to {
		from, to = to, from
	}
	if from == to {
		return []*html.Node{}
	}
	out := []*html.Node{}
	for i := range x.entries {
		if x.entries[i].Start <= to && x.entries[i].End >= from {
			out = append(out, x.entries[i].Element)
		}
	}
	return out
}

// entriesInRange is FindElementsInRange returning full entries.
func (x *PositionIndex) entriesInRange(from, to int) []IndexEntry {
	if from > to {
		from, to = to, from
	}
	if from == to {
		return nil
	}
	var out []IndexEntry
	for i := range x.entries {
		if x.entries[i].Start <= to && x.entries[i].End >= from {
			out = append(out, x.entries[i])
		}
	}
	return out
}

// FindEntryClosestToPosition returns the entry containing pos, or the
// nearest entry by boundary distance. Exact distance ties prefer the
// earlier entry; this tie-break is a behavioral contract relied on for
// caret placement stability. Returns nil for an empty index.
func (x *PositionIndex) FindEntryClosestToPosition(pos int) *IndexEntry {
	if len(x.entries) == 0 {
		return nil
	}

	var best *IndexEntry
	bestDist := -1
	for i := range x.entries {
		e := &x.entries[i]
		if e.Start <= pos && pos <= e.End {
			return e
		}
		var d int
		if pos < e.Start {
			d = e.Start - pos
		} else {
			d = pos - e.End
		}
		// Strict less keeps the earlier entry on ties.
		if bestDist < 0 || d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}
