// Package pageview provides the position index and geometry reconciliation
// layer for a paginated rich-text editor view: mapping between abstract model
// positions, painted DOM elements, and overlay pixel rectangles, plus the
// decoration sync bridge that reconciles plugin decoration state onto painted
// elements without a repaint.
package pageview

import "errors"

// Text range errors
var (
	// ErrNilContainer indicates that a range container node was nil.
	ErrNilContainer = errors.New("range container is nil")

	// ErrInvalidNodeType indicates that a range container has a node type
	// that cannot hold a range boundary (doctype, comment).
	ErrInvalidNodeType = errors.New("invalid range container node type")
)

// Layout snapshot errors
var (
	// ErrMalformedLayout indicates that a layout snapshot could not be decoded.
	ErrMalformedLayout = errors.New("malformed layout snapshot")

	// ErrNoPages indicates that a layout snapshot contains no pages.
	ErrNoPages = errors.New("layout snapshot has no pages")
)

// View lifecycle errors
var (
	// ErrNoPainterHost indicates that a view was created without a painter host.
	ErrNoPainterHost = errors.New("no painter host provided")

	// ErrNoMeasurer indicates that a view was created without a measurer.
	ErrNoMeasurer = errors.New("no measurer provided")

	// ErrViewDestroyed indicates that an operation was attempted on a
	// destroyed view.
	ErrViewDestroyed = errors.New("view has been destroyed")

	// ErrNilProvider indicates that a nil decoration provider was registered.
	ErrNilProvider = errors.New("decoration provider is nil")
)
