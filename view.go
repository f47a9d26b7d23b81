package pageview

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ViewOptions configures a View.
type ViewOptions struct {
	// PainterHost is the painted-DOM container owned by the painter.
	// Required.
	PainterHost *html.Node

	// ViewportHost is the scrollable viewport container. Optional; page
	// offset measurement degrades to zero without it.
	ViewportHost *html.Node

	// Measurer supplies text geometry. Required.
	Measurer Measurer

	// Zoom is the current zoom factor. Zero means 1.
	Zoom float64

	// PageHeight and PageGap override the overlay stacking metrics.
	// Zero values fall back to the current layout's page size and gap.
	PageHeight float64
	PageGap    float64

	// RequestFrame is the host's animation-frame callback. Nil degrades
	// to synchronous decoration sync.
	RequestFrame func(func())

	// Logger receives diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// View owns the position index, the current layout, the decoration bridge
// and the resync scheduler for one painted editor surface. It is the only
// component that mutates the index; every query method is read-only.
type View struct {
	opts ViewOptions
	log  *zap.Logger

	index     *PositionIndex
	bridge    *DecorationBridge
	scheduler *FrameScheduler

	mu        sync.Mutex
	layout    *Layout
	destroyed bool
}

// NewView creates a view over a painted surface.
func NewView(o ViewOptions) (*View, error) {
	if o.PainterHost == nil {
		return nil, ErrNoPainterHost
	}
	if o.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	if o.Zoom <= 0 {
		o.Zoom = 1
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	v := &View{
		opts:  o,
		log:   log,
		index: NewPositionIndex(),
	}
	v.bridge = NewDecorationBridge(v.index, log)
	v.scheduler = NewFrameScheduler(o.RequestFrame, v.syncPass)
	v.RebuildIndex()
	return v, nil
}

// Index exposes the position index for read-only queries.
func (v *View) Index() *PositionIndex {
	return v.index
}

// RebuildIndex rebuilds the position index from the painter host.
func (v *View) RebuildIndex() {
	v.index.Rebuild(v.opts.PainterHost, DefaultRebuildOptions())
	v.log.Debug("position index rebuilt", zap.Int("entries", v.index.Size()))
}

// SetLayout installs a layout produced by the layout engine. The layout is
// consumed read-only and may lag the painted DOM; geometry queries heal
// staleness via rebuild-and-retry.
func (v *View) SetLayout(layout *Layout) {
	v.mu.Lock()
	v.layout = layout
	v.mu.Unlock()
}

// Layout returns the currently installed layout, or nil.
func (v *View) Layout() *Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

// ApplyLayoutSnapshot decodes and installs a JSON layout snapshot as
// delivered by the asynchronous layout engine.
func (v *View) ApplyLayoutSnapshot(data []byte) error {
	v.mu.Lock()
	destroyed := v.destroyed
	v.mu.Unlock()
	if destroyed {
		return ErrViewDestroyed
	}
	layout, err := ParseLayoutSnapshot(data)
	if err != nil {
		return err
	}
	v.SetLayout(layout)
	return nil
}

// RegisterDecorationProvider adds a decoration provider to the bridge.
func (v *View) RegisterDecorationProvider(p DecorationProvider) error {
	v.mu.Lock()
	destroyed := v.destroyed
	v.mu.Unlock()
	if destroyed {
		return ErrViewDestroyed
	}
	return v.bridge.RegisterProvider(p)
}

// NotifyDOMMutated reports that the painted DOM changed. Bursts within one
// frame coalesce into a single rebuild-and-sync pass.
func (v *View) NotifyDOMMutated() {
	v.scheduler.Trigger()
}

// NotifyTransaction reports a document transaction: plugin decoration
// state may have changed even though the painted DOM did not.
func (v *View) NotifyTransaction() {
	v.scheduler.Trigger()
}

// SyncDecorations runs one reconciliation pass immediately, bypassing the
// frame scheduler.
func (v *View) SyncDecorations() {
	v.syncPass()
}

// syncPass is the frame callback: the DOM may have mutated since the index
// was built, so rebuild before reconciling decorations.
func (v *View) syncPass() {
	v.mu.Lock()
	destroyed := v.destroyed
	v.mu.Unlock()
	if destroyed {
		return
	}
	v.RebuildIndex()
	v.bridge.Sync()
}

// SelectionRects computes overlay selection rectangles for [from,to].
// Returns nil when no layout is installed or the view is destroyed.
func (v *View) SelectionRects(from, to int) []SelectionRect {
	o, ok := v.geometryOptions()
	if !ok {
		return nil
	}
	return ComputeSelectionRects(o, from, to)
}

// CaretPoint computes the page-local caret anchor for a model position.
func (v *View) CaretPoint(pos int) *CaretPoint {
	v.mu.Lock()
	destroyed := v.destroyed
	v.mu.Unlock()
	if destroyed {
		return nil
	}
	return ComputeCaretPoint(CaretOptions{
		PainterHost:  v.opts.PainterHost,
		Index:        v.index,
		RebuildIndex: v.RebuildIndex,
		Measurer:     v.opts.Measurer,
		Zoom:         v.opts.Zoom,
		Log:          v.log,
	}, pos)
}

func (v *View) geometryOptions() (GeometryOptions, bool) {
	v.mu.Lock()
	layout := v.layout
	destroyed := v.destroyed
	v.mu.Unlock()
	if destroyed || layout == nil {
		return GeometryOptions{}, false
	}
	return GeometryOptions{
		PainterHost:  v.opts.PainterHost,
		ViewportHost: v.opts.ViewportHost,
		Layout:       layout,
		Index:        v.index,
		RebuildIndex: v.RebuildIndex,
		Measurer:     v.opts.Measurer,
		Zoom:         v.opts.Zoom,
		PageHeight:   v.opts.PageHeight,
		PageGap:      v.opts.PageGap,
		Log:          v.log,
	}, true
}

// Destroy stops the scheduler and detaches the view. Further lifecycle
// calls return ErrViewDestroyed; queries return nil.
func (v *View) Destroy() {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return
	}
	v.destroyed = true
	v.layout = nil
	v.mu.Unlock()
	v.scheduler.Stop()
}
