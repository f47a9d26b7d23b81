package pageview

import (
	"errors"
	"strconv"
	"testing"

	"golang.org/x/net/html"
)

// Synthetic geometry for the painted fixture. Letter-ish page metrics with
// a fixed text grid keep expected coordinates easy to derive by hand.
const (
	fixturePageX      = 50.0
	fixturePageTop    = 40.0
	fixturePageWidth  = 612.0
	fixturePageHeight = 792.0
	fixturePageGap    = 10.0
	fixtureMarginX    = 72.0
	fixtureMarginY    = 72.0
	fixtureLineHeight = 20.0
	fixtureLinePitch  = 22.0
	fixtureSpanWidth  = 80.0
	fixtureCharWidth  = 8.0
)

var errFixtureRange = errors.New("fixture range measurement failure")

// fakeMeasurer is a map-backed Measurer. Range queries resolve the painted
// spans a range covers in document order and report their stored rects,
// optionally duplicated the way native line-box geometry is.
type fakeMeasurer struct {
	root  *html.Node
	rects map[*html.Node]Rect

	// duplicateRects makes RangeRects report each span rect twice plus a
	// wider line-box container, mimicking native API redundancy.
	duplicateRects bool

	// noIntersect forces RangeIntersectsNode to report false for these
	// elements, driving the per-line fallback.
	noIntersect map[*html.Node]bool

	// failRangesFor makes RangeRects fail when the range starts inside
	// one of these elements.
	failRangesFor map[*html.Node]bool
}

func newFakeMeasurer(root *html.Node) *fakeMeasurer {
	return &fakeMeasurer{
		root:          root,
		rects:         make(map[*html.Node]Rect),
		noIntersect:   make(map[*html.Node]bool),
		failRangesFor: make(map[*html.Node]bool),
	}
}

func (m *fakeMeasurer) BoundingRect(n *html.Node) (Rect, bool) {
	r, ok := m.rects[n]
	return r, ok
}

func (m *fakeMeasurer) RangeRects(tr *TextRange) ([]Rect, error) {
	spans := m.coveredSpans(tr)
	if len(spans) == 0 {
		return nil, errFixtureRange
	}
	if m.failRangesFor[spans[0]] {
		return nil, errFixtureRange
	}
	var out []Rect
	for _, s := range spans {
		r := m.rects[s]
		out = append(out, r)
		if m.duplicateRects {
			out = append(out, r)
			out = append(out, Rect{X: r.X, Y: r.Y, Width: r.Width + 6, Height: r.Height + 2})
		}
	}
	return out, nil
}

func (m *fakeMeasurer) CaretRect(textNode *html.Node, offset int) (Rect, bool) {
	owner := m.ownerSpan(textNode)
	if owner == nil {
		return Rect{}, false
	}
	r, ok := m.rects[owner]
	if !ok {
		return Rect{}, false
	}
	return Rect{X: r.X + fixtureCharWidth*float64(offset), Y: r.Y, Width: 0, Height: r.Height}, true
}

func (m *fakeMeasurer) RangeIntersectsNode(tr *TextRange, n *html.Node) bool {
	return !m.noIntersect[n]
}

// ownerSpan walks up to the nearest range-bearing element.
func (m *fakeMeasurer) ownerSpan(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			if _, _, ok := parsePosRange(n); ok {
				return n
			}
		}
	}
	return nil
}

// coveredSpans lists the ranged elements between the range's start and end
// owners, inclusive, in document order.
func (m *fakeMeasurer) coveredSpans(tr *TextRange) []*html.Node {
	startOwner := m.ownerSpan(tr.StartContainer())
	endOwner := m.ownerSpan(tr.EndContainer())
	if startOwner == nil || endOwner == nil {
		return nil
	}

	var all []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, _, ok := parsePosRange(n); ok {
				all = append(all, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(m.root)

	startIdx, endIdx := -1, -1
	for i, s := range all {
		if s == startOwner {
			startIdx = i
		}
		if s == endOwner {
			endIdx = i
		}
	}
	if startIdx < 0 || endIdx < 0 || endIdx < startIdx {
		return nil
	}
	return all[startIdx : endIdx+1]
}

// fixture assembles painted DOM trees the way the painter does, with
// synthetic geometry registered in a fakeMeasurer.
type fixture struct {
	t        *testing.T
	doc      *html.Node
	viewport *html.Node
	painter  *html.Node
	m        *fakeMeasurer

	pages     []*html.Node
	lineCount map[*html.Node]int
	spanCount map[*html.Node]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc := &html.Node{Type: html.DocumentNode}
	viewport := elem("div", "class", "viewport")
	painter := elem("div", "class", "painter")
	doc.AppendChild(viewport)
	viewport.AppendChild(painter)

	f := &fixture{
		t:         t,
		doc:       doc,
		viewport:  viewport,
		painter:   painter,
		m:         newFakeMeasurer(painter),
		lineCount: make(map[*html.Node]int),
		spanCount: make(map[*html.Node]int),
	}
	f.m.rects[viewport] = Rect{X: 0, Y: 0, Width: 800, Height: 4000}
	f.m.rects[painter] = Rect{X: 20, Y: 20, Width: 700, Height: 3900}
	return f
}

// addPage appends the next page element with its index attribute and
// rendered geometry.
func (f *fixture) addPage() *html.Node {
	idx := len(f.pages)
	page := elem("div",
		"class", ClassPage,
		AttrPageIndex, strconv.Itoa(idx))
	f.painter.AppendChild(page)
	f.pages = append(f.pages, page)
	f.m.rects[page] = Rect{
		X:      fixturePageX,
		Y:      fixturePageTop + float64(idx)*(fixturePageHeight+fixturePageGap),
		Width:  fixturePageWidth,
		Height: fixturePageHeight,
	}
	return page
}

// addHeader appends a header region to a page.
func (f *fixture) addHeader(page *html.Node) *html.Node {
	header := elem("div", "class", ClassHeader)
	page.AppendChild(header)
	pageRect := f.m.rects[page]
	f.m.rects[header] = Rect{X: pageRect.X + fixtureMarginX, Y: pageRect.Y + 20, Width: 468, Height: 30}
	return header
}

// addLine appends the next line container to a page.
func (f *fixture) addLine(page *html.Node) *html.Node {
	lineIdx := f.lineCount[page]
	f.lineCount[page] = lineIdx + 1
	line := elem("div", "class", ClassLine)
	page.AppendChild(line)
	pageRect := f.m.rects[page]
	f.m.rects[line] = Rect{
		X:      pageRect.X + fixtureMarginX,
		Y:      pageRect.Y + fixtureMarginY + float64(lineIdx)*fixtureLinePitch,
		Width:  fixturePageWidth - 2*fixtureMarginX,
		Height: fixtureLineHeight,
	}
	return line
}

// addSpan appends a ranged span with text to a parent (usually a line) and
// registers its geometry, advancing left-to-right within the parent.
func (f *fixture) addSpan(parent *html.Node, start, end int, text string) *html.Node {
	spanIdx := f.spanCount[parent]
	f.spanCount[parent] = spanIdx + 1

	span := elem("span",
		AttrStart, strconv.Itoa(start),
		AttrEnd, strconv.Itoa(end))
	if text != "" {
		span.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	parent.AppendChild(span)

	parentRect, ok := f.m.rects[parent]
	if !ok {
		parentRect = Rect{X: fixturePageX, Y: fixturePageTop}
	}
	f.m.rects[span] = Rect{
		X:      parentRect.X + float64(spanIdx)*fixtureSpanWidth,
		Y:      parentRect.Y,
		Width:  fixtureSpanWidth,
		Height: fixtureLineHeight,
	}
	return span
}

// detach removes a node from its parent, simulating painter virtualization.
func (f *fixture) detach(n *html.Node) {
	n.Parent.RemoveChild(n)
}

// layoutFor builds a Layout with one single-fragment page per given range.
func layoutFor(ranges ...[2]int) *Layout {
	l := &Layout{
		PageSize: PageSize{Width: fixturePageWidth, Height: fixturePageHeight},
		PageGap:  fixturePageGap,
	}
	for i, r := range ranges {
		l.Pages = append(l.Pages, Page{
			Number:    i + 1,
			Fragments: []Fragment{{PmStart: r[0], PmEnd: r[1]}},
		})
	}
	return l
}

// rebuildIndex builds a fresh leaf-only index over the painter host.
func (f *fixture) rebuildIndex() *PositionIndex {
	index := NewPositionIndex()
	index.Rebuild(f.painter, DefaultRebuildOptions())
	return index
}

// geometryOptions assembles standard options over the fixture.
func (f *fixture) geometryOptions(index *PositionIndex, layout *Layout) GeometryOptions {
	return GeometryOptions{
		PainterHost:  f.painter,
		ViewportHost: f.viewport,
		Layout:       layout,
		Index:        index,
		RebuildIndex: func() { index.Rebuild(f.painter, DefaultRebuildOptions()) },
		Measurer:     f.m,
		Zoom:         1,
		PageHeight:   fixturePageHeight,
		PageGap:      fixturePageGap,
	}
}

func (f *fixture) caretOptions(index *PositionIndex) CaretOptions {
	return CaretOptions{
		PainterHost:  f.painter,
		Index:        index,
		RebuildIndex: func() { index.Rebuild(f.painter, DefaultRebuildOptions()) },
		Measurer:     f.m,
		Zoom:         1,
	}
}

// elem builds an element node with alternating attribute key/value pairs.
func elem(tag string, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

// framePump is a manual animation-frame loop for scheduler tests.
type framePump struct {
	queue []func()
}

func (p *framePump) request(cb func()) {
	p.queue = append(p.queue, cb)
}

func (p *framePump) pending() int {
	return len(p.queue)
}

// step runs exactly one granted frame.
func (p *framePump) step() {
	if len(p.queue) == 0 {
		return
	}
	cb := p.queue[0]
	p.queue = p.queue[1:]
	cb()
}

// flush runs frames until none remain.
func (p *framePump) flush() {
	for len(p.queue) > 0 {
		p.step()
	}
}
