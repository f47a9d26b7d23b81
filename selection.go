package pageview

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// SelectionRect is one selection highlight rectangle in overlay
// coordinates, tagged with the page it belongs to.
type SelectionRect struct {
	PageIndex int
	X         float64
	Y         float64
	Width     float64
	Height    float64
}

// GeometryOptions bundles everything selection and caret geometry needs.
// RebuildIndex is invoked at most once per computation when the index
// looks stale (entries missing or disconnected); the layout may lag the
// document and is tolerated via that rebuild-and-retry, never by blocking.
type GeometryOptions struct {
	PainterHost  *html.Node
	ViewportHost *html.Node
	Layout       *Layout
	Index        *PositionIndex
	RebuildIndex func()
	Measurer     Measurer
	Zoom         float64
	PageHeight   float64
	PageGap      float64
	Log          *zap.Logger
}

func (o *GeometryOptions) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// pageMetrics falls back to the layout's own page size when the caller
// did not override the stacking metrics.
func (o *GeometryOptions) pageMetrics() (height, gap float64) {
	height, gap = o.PageHeight, o.PageGap
	if height == 0 && o.Layout != nil {
		height = o.Layout.PageSize.Height
	}
	if gap == 0 && o.Layout != nil {
		gap = o.Layout.PageGap
	}
	return height, gap
}

// ComputeSelectionRects produces the overlay rectangles highlighting the
// model range [from,to].
//
// Returns nil when the painter host, layout, index or measurer is absent;
// an empty slice for a collapsed selection. Each page contributes
// rectangles derived only from elements physically inside its own painted
// subtree, so ranges duplicated across pages (repeated table headers)
// highlight on every page they appear on. A page that cannot resolve even
// after an index rebuild contributes nothing; it never fails the whole
// computation.
func ComputeSelectionRects(o GeometryOptions, from, to int) []SelectionRect {
	if o.PainterHost == nil || o.Layout == nil || o.Index == nil || o.Measurer == nil {
		return nil
	}
	if to < from {
		from, to = to, from
	}
	if from == to {
		return []SelectionRect{}
	}

	zoom := normalizeZoom(o.Zoom)
	pageHeight, pageGap := o.pageMetrics()
	rebuilt := false

	out := []SelectionRect{}
	for pageIdx := range o.Layout.Pages {
		pageStart, pageEnd, ok := o.Layout.Pages[pageIdx].Range()
		if !ok {
			continue
		}
		clampedFrom, clampedTo := from, to
		if pageStart > clampedFrom {
			clampedFrom = pageStart
		}
		if pageEnd < clampedTo {
			clampedTo = pageEnd
		}
		if clampedFrom >= clampedTo {
			continue
		}

		pageEl := findPageElement(o.PainterHost, pageIdx)
		if pageEl == nil {
			continue // virtualized out
		}

		entries := pageEntries(o.Index, pageEl, clampedFrom, clampedTo)
		if staleEntries(entries) && !rebuilt && o.RebuildIndex != nil {
			o.logger().Debug("position index stale, rebuilding",
				zap.Int("page", pageIdx),
				zap.Int("from", clampedFrom),
				zap.Int("to", clampedTo))
			o.RebuildIndex()
			rebuilt = true
			entries = pageEntries(o.Index, pageEl, clampedFrom, clampedTo)
		}
		if len(entries) == 0 || staleEntries(entries) {
			o.logger().Debug("page contributes no selection rects", zap.Int("page", pageIdx))
			continue
		}

		rects := pageSelectionRects(&o, entries, clampedFrom, clampedTo)
		if len(rects) == 0 {
			continue
		}

		pageRect, ok := o.Measurer.BoundingRect(pageEl)
		if !ok {
			continue
		}
		for _, r := range rects {
			overlay, ok := ConvertPageLocalToOverlayCoords(ConvertOptions{
				PainterHost:  o.PainterHost,
				ViewportHost: o.ViewportHost,
				Measurer:     o.Measurer,
				Zoom:         zoom,
				PageIndex:    pageIdx,
				PageLocalX:   (r.Left() - pageRect.Left()) / zoom,
				PageLocalY:   (r.Top() - pageRect.Top()) / zoom,
				PageHeight:   pageHeight,
				PageGap:      pageGap,
			})
			if !ok {
				continue
			}
			out = append(out, SelectionRect{
				PageIndex: pageIdx,
				X:         overlay.X,
				Y:         overlay.Y,
				Width:     r.Width / zoom,
				Height:    r.Height / zoom,
			})
		}
	}
	return out
}

// pageEntries returns the index entries intersecting [from,to] whose
// elements live inside the given page's painted subtree.
func pageEntries(index *PositionIndex, pageEl *html.Node, from, to int) []IndexEntry {
	var out []IndexEntry
	for _, e := range index.entriesInRange(from, to) {
		if contains(pageEl, e.Element) {
			out = append(out, e)
		}
	}
	return out
}

// staleEntries reports whether the set is unusable: empty, or any element
// detached since the index was built.
func staleEntries(entries []IndexEntry) bool {
	if len(entries) == 0 {
		return true
	}
	for _, e := range entries {
		if !isConnected(e.Element) {
			return true
		}
	}
	return false
}

// pageSelectionRects measures one page's contribution. The primary
// strategy spans all entries with a single range; when the measurer
// reports the constructed range does not actually cover every entry, the
// per-line fallback takes over.
func pageSelectionRects(o *GeometryOptions, entries []IndexEntry, from, to int) []Rect {
	tr := entrySpanRange(entries, from, to)
	if tr == nil {
		return nil
	}

	covered := true
	for _, e := range entries {
		if !o.Measurer.RangeIntersectsNode(tr, e.Element) {
			covered = false
			break
		}
	}
	if covered {
		rects, err := o.Measurer.RangeRects(tr)
		if err == nil {
			return DeduplicateOverlappingRects(rects)
		}
		o.logger().Debug("primary range measurement failed, using per-line fallback",
			zap.Error(err))
	}
	return perLineRects(o, entries, from, to)
}

// perLineRects groups entries by their containing line element and measures
// one sub-range per line, clamped to the line's own bounds. Entries with no
// line ancestor form single-entry loose groups. A line whose range cannot
// be measured contributes nothing; failures never abort the computation.
func perLineRects(o *GeometryOptions, entries []IndexEntry, from, to int) []Rect {
	var groups [][]IndexEntry
	byLine := map[*html.Node]int{}
	for _, e := range entries {
		line := enclosingLine(e.Element)
		if line == nil {
			groups = append(groups, []IndexEntry{e})
			continue
		}
		if gi, ok := byLine[line]; ok {
			groups[gi] = append(groups[gi], e)
			continue
		}
		byLine[line] = len(groups)
		groups = append(groups, []IndexEntry{e})
	}

	var out []Rect
	for _, group := range groups {
		lineFrom, lineTo := group[0].Start, group[0].End
		for _, e := range group[1:] {
			if e.Start < lineFrom {
				lineFrom = e.Start
			}
			if e.End > lineTo {
				lineTo = e.End
			}
		}
		if from > lineFrom {
			lineFrom = from
		}
		if to < lineTo {
			lineTo = to
		}
		if lineFrom >= lineTo {
			continue
		}

		tr := entrySpanRange(group, lineFrom, lineTo)
		if tr == nil {
			continue
		}
		rects, err := o.Measurer.RangeRects(tr)
		if err != nil {
			continue
		}
		out = append(out, DeduplicateOverlappingRects(rects)...)
	}
	return out
}

// entrySpanRange builds a static range from the first entry's resolved
// start boundary to the last entry's resolved end boundary. Text-bearing
// elements anchor inside their text node at the character offset the model
// position maps to; atomic elements anchor on the element itself.
func entrySpanRange(entries []IndexEntry, from, to int) *TextRange {
	if len(entries) == 0 {
		return nil
	}
	first, last := entries[0], entries[len(entries)-1]

	startNode, startOffset := boundaryPoint(first, from)
	endNode, endOffset := boundaryPoint(last, to)

	tr, err := NewTextRange(TextRangeInit{
		StartContainer: startNode,
		StartOffset:    startOffset,
		EndContainer:   endNode,
		EndOffset:      endOffset,
	})
	if err != nil {
		return nil
	}
	return tr
}

// boundaryPoint resolves a model position inside an entry to a concrete
// container/offset pair.
func boundaryPoint(e IndexEntry, pos int) (*html.Node, int) {
	text := firstTextNode(e.Element)
	if text == nil {
		return e.Element, 0
	}
	offset := pos - e.Start
	if offset < 0 {
		offset = 0
	}
	if n := len([]rune(text.Data)); offset > n {
		offset = n
	}
	return text, offset
}
