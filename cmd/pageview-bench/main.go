// pageview-bench is a benchmark and stress test for the pageview library.
// It generates a synthetic painted document and measures index rebuilds,
// position queries, rect deduplication and decoration sync.
package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	pageview "github.com/scribeworks/pageview"
)

const (
	pageCount     = 50
	linesPerPage  = 40
	spansPerLine  = 8
	queryCount    = 100000
	dedupRects    = 2000
	decorationSet = 500
)

type BenchResult struct {
	Name     string
	Duration time.Duration
	Ops      int
	Extra    string
}

func (r BenchResult) String() string {
	if r.Ops > 0 {
		opsPerSec := float64(r.Ops) / r.Duration.Seconds()
		return fmt.Sprintf("%-40s %12v  (%d ops, %.2f ops/sec)", r.Name, r.Duration.Round(time.Microsecond), r.Ops, opsPerSec)
	}
	if r.Extra != "" {
		return fmt.Sprintf("%-40s %12v  %s", r.Name, r.Duration.Round(time.Microsecond), r.Extra)
	}
	return fmt.Sprintf("%-40s %12v", r.Name, r.Duration.Round(time.Microsecond))
}

func main() {
	fmt.Println("Pageview Benchmark and Stress Test")
	fmt.Println("===================================")
	fmt.Printf("Pages: %d, lines/page: %d, spans/line: %d\n", pageCount, linesPerPage, spansPerLine)
	fmt.Printf("Go version: %s, GOMAXPROCS: %d\n", runtime.Version(), runtime.GOMAXPROCS(0))
	fmt.Println()

	doc, maxPos := buildPaintedDocument()
	var results []BenchResult

	index := pageview.NewPositionIndex()

	start := time.Now()
	index.Rebuild(doc, pageview.DefaultRebuildOptions())
	results = append(results, BenchResult{
		Name:     "Index rebuild (leaf-only)",
		Duration: time.Since(start),
		Extra:    fmt.Sprintf("%d entries", index.Size()),
	})

	start = time.Now()
	index.Rebuild(doc, pageview.RebuildOptions{LeafOnly: false})
	results = append(results, BenchResult{
		Name:     "Index rebuild (all elements)",
		Duration: time.Since(start),
		Extra:    fmt.Sprintf("%d entries", index.Size()),
	})
	index.Rebuild(doc, pageview.DefaultRebuildOptions())

	rng := rand.New(rand.NewSource(42))

	start = time.Now()
	for i := 0; i < queryCount; i++ {
		index.FindElementAtPosition(rng.Intn(maxPos))
	}
	results = append(results, BenchResult{Name: "FindElementAtPosition", Duration: time.Since(start), Ops: queryCount})

	start = time.Now()
	for i := 0; i < queryCount; i++ {
		from := rng.Intn(maxPos)
		index.FindElementsInRange(from, from+40)
	}
	results = append(results, BenchResult{Name: "FindElementsInRange (span 40)", Duration: time.Since(start), Ops: queryCount})

	start = time.Now()
	for i := 0; i < queryCount; i++ {
		index.FindEntryClosestToPosition(rng.Intn(maxPos * 2))
	}
	results = append(results, BenchResult{Name: "FindEntryClosestToPosition", Duration: time.Since(start), Ops: queryCount})

	rects := make([]pageview.Rect, dedupRects)
	for i := range rects {
		rects[i] = pageview.Rect{
			X:      float64(rng.Intn(600)),
			Y:      float64(rng.Intn(200)) * 4,
			Width:  20 + float64(rng.Intn(400)),
			Height: 18,
		}
	}
	start = time.Now()
	deduped := pageview.DeduplicateOverlappingRects(rects)
	results = append(results, BenchResult{
		Name:     "DeduplicateOverlappingRects",
		Duration: time.Since(start),
		Extra:    fmt.Sprintf("%d -> %d rects", len(rects), len(deduped)),
	})

	bridge := pageview.NewDecorationBridge(index, zap.NewNop())
	specs := make([]pageview.DecorationSpec, decorationSet)
	for i := range specs {
		from := rng.Intn(maxPos - 50)
		specs[i] = pageview.DecorationSpec{
			From:  from,
			To:    from + 50,
			Attrs: map[string]string{"class": "hl", "data-deco": strconv.Itoa(i)},
		}
	}
	if err := bridge.RegisterProvider(pageview.DecorationProviderFunc(func() []pageview.DecorationSpec {
		return specs
	})); err != nil {
		panic(err)
	}

	start = time.Now()
	bridge.Sync()
	results = append(results, BenchResult{Name: "Decoration sync (cold)", Duration: time.Since(start), Extra: fmt.Sprintf("%d specs", decorationSet)})

	start = time.Now()
	bridge.Sync()
	results = append(results, BenchResult{Name: "Decoration sync (idempotent pass)", Duration: time.Since(start), Extra: fmt.Sprintf("%d specs", decorationSet)})

	fmt.Println("Results:")
	fmt.Println("--------")
	for _, r := range results {
		fmt.Println(r)
	}
}

// buildPaintedDocument assembles a synthetic painted DOM the way the
// painter would: pages containing lines containing ranged spans, with a
// header region per page that must never be indexed.
func buildPaintedDocument() (*html.Node, int) {
	doc := &html.Node{Type: html.DocumentNode}
	host := element("div", attr("class", "painter"))
	doc.AppendChild(host)

	pos := 0
	for p := 0; p < pageCount; p++ {
		page := element("div",
			attr("class", pageview.ClassPage),
			attr(pageview.AttrPageIndex, strconv.Itoa(p)))
		host.AppendChild(page)

		header := element("div", attr("class", pageview.ClassHeader))
		headerSpan := element("span",
			attr(pageview.AttrStart, "0"),
			attr(pageview.AttrEnd, "10"))
		headerSpan.AppendChild(&html.Node{Type: html.TextNode, Data: "Header"})
		header.AppendChild(headerSpan)
		page.AppendChild(header)

		for l := 0; l < linesPerPage; l++ {
			line := element("div", attr("class", pageview.ClassLine))
			page.AppendChild(line)
			for s := 0; s < spansPerLine; s++ {
				span := element("span",
					attr(pageview.AttrStart, strconv.Itoa(pos)),
					attr(pageview.AttrEnd, strconv.Itoa(pos+10)))
				span.AppendChild(&html.Node{Type: html.TextNode, Data: "0123456789"})
				line.AppendChild(span)
				pos += 10
			}
		}
	}
	return doc, pos
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}
