package pageview

import (
	"math"

	"golang.org/x/net/html"
)

// PageOffsetOptions locates one painted page relative to the viewport.
type PageOffsetOptions struct {
	PainterHost  *html.Node
	ViewportHost *html.Node
	Measurer     Measurer
	Zoom         float64
	PageIndex    int
}

// OverlayCoords is a point in the overlay coordinate space: a virtual pixel
// space stacking every page sequentially at pageHeight+pageGap intervals,
// defined independently of which pages are currently mounted.
type OverlayCoords struct {
	X float64
	Y float64
}

// ConvertOptions bundles the inputs for a page-local to overlay conversion.
type ConvertOptions struct {
	PainterHost  *html.Node
	ViewportHost *html.Node
	Measurer     Measurer
	Zoom         float64
	PageIndex    int
	PageLocalX   float64
	PageLocalY   float64
	PageHeight   float64
	PageGap      float64
}

// GetPageOffsetX returns the page's unzoomed horizontal offset from the
// viewport host. ok is false when either host is nil, the measurer is
// absent, or the page is not currently mounted.
func GetPageOffsetX(o PageOffsetOptions) (float64, bool) {
	pageRect, viewportRect, ok := pageAndViewportRects(o)
	if !ok {
		return 0, false
	}
	return (pageRect.Left() - viewportRect.Left()) / normalizeZoom(o.Zoom), true
}

// GetPageOffsetY is the vertical counterpart of GetPageOffsetX.
func GetPageOffsetY(o PageOffsetOptions) (float64, bool) {
	pageRect, viewportRect, ok := pageAndViewportRects(o)
	if !ok {
		return 0, false
	}
	return (pageRect.Top() - viewportRect.Top()) / normalizeZoom(o.Zoom), true
}

func pageAndViewportRects(o PageOffsetOptions) (pageRect, viewportRect Rect, ok bool) {
	if o.PainterHost == nil || o.ViewportHost == nil || o.Measurer == nil {
		return Rect{}, Rect{}, false
	}
	page := findPageElement(o.PainterHost, o.PageIndex)
	if page == nil {
		return Rect{}, Rect{}, false
	}
	pageRect, ok = o.Measurer.BoundingRect(page)
	if !ok {
		return Rect{}, Rect{}, false
	}
	viewportRect, ok = o.Measurer.BoundingRect(o.ViewportHost)
	if !ok {
		return Rect{}, Rect{}, false
	}
	return pageRect, viewportRect, true
}

// ConvertPageLocalToOverlayCoords maps a page-local point into the overlay
// coordinate space. The vertical axis is pure arithmetic over the stacked
// page model, so it stays stable under virtualization; the horizontal axis
// uses the live page offset, falling back to zero when the page is
// currently unmounted. ok is false only for non-finite inputs or a
// negative page index.
func ConvertPageLocalToOverlayCoords(o ConvertOptions) (OverlayCoords, bool) {
	if o.PageIndex < 0 {
		return OverlayCoords{}, false
	}
	for _, v := range []float64{o.PageLocalX, o.PageLocalY, o.PageHeight, o.PageGap} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return OverlayCoords{}, false
		}
	}

	y := float64(o.PageIndex)*(o.PageHeight+o.PageGap) + o.PageLocalY

	offsetX, ok := GetPageOffsetX(PageOffsetOptions{
		PainterHost:  o.PainterHost,
		ViewportHost: o.ViewportHost,
		Measurer:     o.Measurer,
		Zoom:         o.Zoom,
		PageIndex:    o.PageIndex,
	})
	if !ok {
		offsetX = 0
	}
	return OverlayCoords{X: offsetX + o.PageLocalX, Y: y}, true
}

// normalizeZoom guards against an unset or degenerate zoom factor.
func normalizeZoom(zoom float64) float64 {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return 1
	}
	return zoom
}
