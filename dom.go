package pageview

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Painter contract. These attribute and class names are the data contract
// between the external painter and this package; an element painted by an
// unmodified painter carries its model-position range in AttrStart/AttrEnd
// and its structural role in the class list.
const (
	// AttrStart and AttrEnd carry a painted element's model-position range.
	AttrStart = "data-pm-start"
	AttrEnd   = "data-pm-end"

	// AttrPageIndex carries a page element's zero-based index.
	AttrPageIndex = "data-page-index"

	// ClassPage marks a painted page container.
	ClassPage = "pv-page"

	// ClassHeader and ClassFooter mark non-body page regions. Elements
	// anywhere below these markers are never indexed.
	ClassHeader = "pv-page-header"
	ClassFooter = "pv-page-footer"

	// ClassLine marks a painted line container.
	ClassLine = "pv-line"

	// ClassStructuredContent marks the inline structured-content wrapper.
	// The wrapper itself is never indexed; its descendants are.
	ClassStructuredContent = "pv-structured-content"
)

// attrVal returns the value of the named attribute, or "" when absent.
func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasAttr reports whether the named attribute is present.
func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// setAttr sets an attribute, replacing any existing value.
func setAttr(n *html.Node, name, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

// removeAttr deletes an attribute if present.
func removeAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// classList returns the element's classes in order.
func classList(n *html.Node) []string {
	return strings.Fields(attrVal(n, "class"))
}

// hasClass reports whether the element carries the given class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range classList(n) {
		if c == class {
			return true
		}
	}
	return false
}

// addClass appends a class unless already present. Unrelated classes are
// never disturbed.
func addClass(n *html.Node, class string) {
	if class == "" || hasClass(n, class) {
		return
	}
	cur := attrVal(n, "class")
	if cur == "" {
		setAttr(n, "class", class)
		return
	}
	setAttr(n, "class", cur+" "+class)
}

// removeClass removes one class, preserving the order of the rest.
func removeClass(n *html.Node, class string) {
	if class == "" {
		return
	}
	classes := classList(n)
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(classes) {
		return
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// parsePosRange extracts the model-position range from a painted element.
// Markers must both be present, finite, and non-inverted; anything else
// means the element contributes no index entry.
func parsePosRange(n *html.Node) (start, end int, ok bool) {
	if n.Type != html.ElementNode {
		return 0, 0, false
	}
	if !hasAttr(n, AttrStart) || !hasAttr(n, AttrEnd) {
		return 0, 0, false
	}
	s, err := strconv.ParseFloat(attrVal(n, AttrStart), 64)
	if err != nil || math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, 0, false
	}
	e, err := strconv.ParseFloat(attrVal(n, AttrEnd), 64)
	if err != nil || math.IsNaN(e) || math.IsInf(e, 0) {
		return 0, 0, false
	}
	if e < s {
		return 0, 0, false
	}
	return int(s), int(e), true
}

// isConnected reports whether the node is still attached to a document.
// The painter detaches virtualized subtrees, so index entries revalidate
// with this before trusting cached geometry.
func isConnected(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

// isRegionMarker reports whether an element opens an excluded region.
func isRegionMarker(n *html.Node) bool {
	return n.Type == html.ElementNode && (hasClass(n, ClassHeader) || hasClass(n, ClassFooter))
}

// closestByClass walks up from n (inclusive) to the nearest element
// carrying the given class, or nil.
func closestByClass(n *html.Node, class string) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasClass(n, class) {
			return n
		}
	}
	return nil
}

// enclosingPage returns the page element containing n, or nil.
func enclosingPage(n *html.Node) *html.Node {
	return closestByClass(n, ClassPage)
}

// enclosingLine returns the line element containing n, or nil.
func enclosingLine(n *html.Node) *html.Node {
	return closestByClass(n, ClassLine)
}

// pageIndexOf reads a page element's index attribute, defaulting to 0
// when absent or unparseable.
func pageIndexOf(page *html.Node) int {
	if page == nil {
		return 0
	}
	idx, err := strconv.Atoi(attrVal(page, AttrPageIndex))
	if err != nil || idx < 0 {
		return 0
	}
	return idx
}

// findPageElement locates the page element with the given index within the
// painter host, or nil when that page is not currently mounted.
func findPageElement(painterHost *html.Node, pageIndex int) *html.Node {
	if painterHost == nil || pageIndex < 0 {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		// A page painted without an index attribute counts as page 0.
		if n.Type == html.ElementNode && hasClass(n, ClassPage) && pageIndexOf(n) == pageIndex {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(painterHost)
	return found
}

// firstTextNode returns the first text node below n in document order,
// or nil when the element carries no text (atomic/embedded content).
func firstTextNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.TextNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := firstTextNode(c); t != nil {
			return t
		}
	}
	return nil
}

// contains reports whether ancestor contains n (inclusive).
func contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}
