package pageview

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Fragment is one laid-out run of document content on a page, addressed by
// its model-position range.
type Fragment struct {
	PmStart int `json:"pmStart"`
	PmEnd   int `json:"pmEnd"`
}

// Page is one laid-out page. Number is 1-based as produced by the layout
// engine; the page binds to its painted element through the zero-based
// data-page-index attribute.
type Page struct {
	Number    int        `json:"number"`
	Fragments []Fragment `json:"fragments"`
}

// PageSize is the page dimensions in CSS pixels.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout is the result of one asynchronous layout pass, consumed read-only.
type Layout struct {
	Pages    []Page   `json:"pages"`
	PageSize PageSize `json:"pageSize"`
	PageGap  float64  `json:"pageGap"`
}

// Range derives the page's own model-position range from its fragments:
// the minimum fragment start and maximum fragment end. ok is false for a
// page with no fragments.
func (p *Page) Range() (start, end int, ok bool) {
	if len(p.Fragments) == 0 {
		return 0, 0, false
	}
	start = p.Fragments[0].PmStart
	end = p.Fragments[0].PmEnd
	for _, f := range p.Fragments[1:] {
		if f.PmStart < start {
			start = f.PmStart
		}
		if f.PmEnd > end {
			end = f.PmEnd
		}
	}
	return start, end, true
}

// ParseLayoutSnapshot decodes a layout snapshot delivered by the layout
// engine. Snapshots with no pages are rejected: a layout always covers at
// least one page, so an empty list means the producer is mid-recompute and
// the previous layout should stay in effect.
func ParseLayoutSnapshot(data []byte) (*Layout, error) {
	var layout Layout
	if err := sonic.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}
	if len(layout.Pages) == 0 {
		return nil, ErrNoPages
	}
	return &layout, nil
}
