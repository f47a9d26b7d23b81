package pageview

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// CaretPoint is a caret anchor in page-local coordinates.
type CaretPoint struct {
	PageIndex int
	X         float64
	Y         float64
}

// CaretOptions bundles the inputs for caret geometry.
type CaretOptions struct {
	PainterHost  *html.Node
	Index        *PositionIndex
	RebuildIndex func()
	Measurer     Measurer
	Zoom         float64
	Log          *zap.Logger
}

func (o *CaretOptions) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// ComputeCaretPoint resolves a model position to a page-local caret anchor.
//
// The exact element is preferred; a missing or disconnected element
// triggers one index rebuild and retry, then degrades to the closest entry
// rather than failing. Nil is reserved for a missing painter host, index
// or measurer, and for an element with no enclosing page.
func ComputeCaretPoint(o CaretOptions, pos int) *CaretPoint {
	if o.PainterHost == nil || o.Index == nil || o.Measurer == nil {
		return nil
	}

	entry := caretEntry(&o, pos)
	if entry == nil {
		return nil
	}

	pageEl := enclosingPage(entry.Element)
	if pageEl == nil {
		return nil
	}
	pageRect, ok := o.Measurer.BoundingRect(pageEl)
	if !ok {
		return nil
	}

	anchor, ok := caretAnchor(&o, entry, pos)
	if !ok {
		return nil
	}

	zoom := normalizeZoom(o.Zoom)
	return &CaretPoint{
		PageIndex: pageIndexOf(pageEl),
		X:         (anchor.X - pageRect.Left()) / zoom,
		Y:         (anchor.Y - pageRect.Top()) / zoom,
	}
}

// caretEntry finds the index entry to anchor on: exact containment first,
// one rebuild-and-retry when stale, closest entry as the final fallback.
func caretEntry(o *CaretOptions, pos int) *IndexEntry {
	entry := containingEntry(o.Index, pos)
	if (entry == nil || !isConnected(entry.Element)) && o.RebuildIndex != nil {
		o.logger().Debug("caret lookup stale, rebuilding index", zap.Int("pos", pos))
		o.RebuildIndex()
		entry = containingEntry(o.Index, pos)
	}
	if entry != nil && isConnected(entry.Element) {
		return entry
	}
	return o.Index.FindEntryClosestToPosition(pos)
}

func containingEntry(index *PositionIndex, pos int) *IndexEntry {
	for i := range index.entries {
		e := &index.entries[i]
		if e.Start <= pos && pos <= e.End {
			return e
		}
	}
	return nil
}

// caretAnchor computes the viewport-space anchor point for a caret at pos
// within the entry. Text leaves anchor a collapsed rect at the mapped
// character; the containing line's top supplies the y so carets on one
// line share a baseline. Atomic elements anchor on their own box.
func caretAnchor(o *CaretOptions, entry *IndexEntry, pos int) (OverlayCoords, bool) {
	text := firstTextNode(entry.Element)
	if text == nil {
		rect, ok := o.Measurer.BoundingRect(entry.Element)
		if !ok {
			return OverlayCoords{}, false
		}
		return OverlayCoords{X: rect.Left(), Y: rect.Top()}, true
	}

	offset := pos - entry.Start
	if offset < 0 {
		offset = 0
	}
	if n := len([]rune(text.Data)); offset > n {
		offset = n
	}
	rect, ok := o.Measurer.CaretRect(text, offset)
	if !ok {
		return OverlayCoords{}, false
	}

	y := rect.Top()
	if line := enclosingLine(entry.Element); line != nil {
		if lineRect, ok := o.Measurer.BoundingRect(line); ok {
			y = lineRect.Top()
		}
	}
	return OverlayCoords{X: rect.Left(), Y: y}, true
}
