package pageview

import "golang.org/x/net/html"

// TextRange is a static range over the painted DOM: a start and end
// container with character offsets. Like a DOM StaticRange it does not
// track subsequent mutations; consumers revalidate connectedness before
// trusting it.
type TextRange struct {
	startContainer *html.Node
	startOffset    int
	endContainer   *html.Node
	endOffset      int
}

// TextRangeInit carries the initialization parameters for NewTextRange.
type TextRangeInit struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// NewTextRange creates a static range. Containers must be element or text
// nodes; offsets are not bounds-checked (a measurer clamps as needed).
func NewTextRange(init TextRangeInit) (*TextRange, error) {
	if init.StartContainer == nil || init.EndContainer == nil {
		return nil, ErrNilContainer
	}
	if !validContainer(init.StartContainer) || !validContainer(init.EndContainer) {
		return nil, ErrInvalidNodeType
	}
	return &TextRange{
		startContainer: init.StartContainer,
		startOffset:    init.StartOffset,
		endContainer:   init.EndContainer,
		endOffset:      init.EndOffset,
	}, nil
}

func validContainer(n *html.Node) bool {
	return n.Type == html.ElementNode || n.Type == html.TextNode
}

// StartContainer returns the node where the range starts.
func (r *TextRange) StartContainer() *html.Node { return r.startContainer }

// StartOffset returns the offset within the start container.
func (r *TextRange) StartOffset() int { return r.startOffset }

// EndContainer returns the node where the range ends.
func (r *TextRange) EndContainer() *html.Node { return r.endContainer }

// EndOffset returns the offset within the end container.
func (r *TextRange) EndOffset() int { return r.endOffset }

// Collapsed reports whether start and end are the same boundary point.
func (r *TextRange) Collapsed() bool {
	return r.startContainer == r.endContainer && r.startOffset == r.endOffset
}
