package pageview

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DecorationSpec is one plugin-declared annotation over a model range.
// Attrs may carry a "class" entry (space-separated class names), "data-*"
// entries, and a "style" entry holding a CSS property list. Any other key
// is rejected at the safety boundary.
type DecorationSpec struct {
	From  int
	To    int
	Attrs map[string]string
}

// DecorationProvider is any component that can report its current
// decoration set. Providers are polymorphic: plugins, tracked-changes
// overlays and search highlighters all participate through this one
// query method.
type DecorationProvider interface {
	Decorations() []DecorationSpec
}

// DecorationProviderFunc adapts a function to the DecorationProvider
// interface.
type DecorationProviderFunc func() []DecorationSpec

// Decorations implements DecorationProvider.
func (f DecorationProviderFunc) Decorations() []DecorationSpec { return f() }

// appliedDecorations records exactly what the bridge wrote onto one
// element, so a later sync can remove precisely that and nothing else.
type appliedDecorations struct {
	classes    []string
	dataAttrs  map[string]string
	styleProps map[string]string
}

func (a *appliedDecorations) empty() bool {
	return len(a.classes) == 0 && len(a.dataAttrs) == 0 && len(a.styleProps) == 0
}

// desiredDecorations is the union of all matching specs for one element.
type desiredDecorations struct {
	classes    []string // encounter order, deduplicated
	classSet   map[string]bool
	dataAttrs  map[string]string
	styleProps []styleProp // encounter order, later writes win per property
}

// DecorationBridge reconciles provider-owned decoration state onto painted
// leaf elements without a repaint. It writes only class, data-* and style
// attributes (the single write path this package has into painter-owned
// DOM) and tracks what it wrote so sync is idempotent and removals are
// exact.
type DecorationBridge struct {
	index     *PositionIndex
	providers []DecorationProvider
	applied   map[*html.Node]*appliedDecorations
	log       *zap.Logger
}

// NewDecorationBridge creates a bridge over the given index. A nil logger
// defaults to a no-op logger.
func NewDecorationBridge(index *PositionIndex, log *zap.Logger) *DecorationBridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &DecorationBridge{
		index:   index,
		applied: make(map[*html.Node]*appliedDecorations),
		log:     log,
	}
}

// RegisterProvider appends a decoration provider. Application order
// follows registration order.
func (b *DecorationBridge) RegisterProvider(p DecorationProvider) error {
	if p == nil {
		return ErrNilProvider
	}
	b.providers = append(b.providers, p)
	return nil
}

// Sync reconciles current decoration state onto every indexed leaf
// element. Running it twice with unchanged providers and DOM produces no
// further mutation; decorations whose ranges no longer cover an element
// are removed from it.
func (b *DecorationBridge) Sync() {
	specs := b.collectSpecs()

	touched := make(map[*html.Node]bool)
	for _, entry := range b.index.entries {
		if !isConnected(entry.Element) {
			continue
		}
		desired := matchSpecs(specs, entry, b.log)
		prior := b.applied[entry.Element]
		if desired == nil && prior == nil {
			// Untouched elements stay untouched.
			continue
		}
		touched[entry.Element] = true
		b.reconcile(entry.Element, desired, prior)
	}

	// Elements the bridge decorated earlier but that no index entry covers
	// anymore get their applied state stripped.
	for el, prior := range b.applied {
		if touched[el] {
			continue
		}
		if isConnected(el) {
			b.reconcile(el, nil, prior)
		} else {
			delete(b.applied, el)
		}
	}
}

// collectSpecs gathers every provider's current set in registration order.
func (b *DecorationBridge) collectSpecs() []DecorationSpec {
	var specs []DecorationSpec
	for _, p := range b.providers {
		specs = append(specs, p.Decorations()...)
	}
	return specs
}

// matchSpecs unions the specs intersecting the entry's range. Overlap is
// inclusive with the same semantics as FindElementsInRange: reversed
// bounds normalize, collapsed specs match nothing. Returns nil when no
// spec matches.
func matchSpecs(specs []DecorationSpec, entry IndexEntry, log *zap.Logger) *desiredDecorations {
	var desired *desiredDecorations
	for _, spec := range specs {
		from, to := spec.From, spec.To
		if from > to {
			from, to = to, from
		}
		if from == to {
			continue
		}
		if from > entry.End || to < entry.Start {
			continue
		}
		if desired == nil {
			desired = &desiredDecorations{
				classSet:  make(map[string]bool),
				dataAttrs: make(map[string]string),
			}
		}
		desired.merge(spec.Attrs, log)
	}
	return desired
}

// merge folds one spec's attrs into the union. Only class, data-* and
// style keys pass; everything else (id, event handlers, arbitrary
// attributes) is dropped at the safety boundary.
func (d *desiredDecorations) merge(attrs map[string]string, log *zap.Logger) {
	for _, key := range sortedKeys(attrs) {
		val := attrs[key]
		switch {
		case key == "class":
			for _, c := range strings.Fields(val) {
				if !d.classSet[c] {
					d.classSet[c] = true
					d.classes = append(d.classes, c)
				}
			}
		case key == "style":
			for _, p := range parseStyle(val) {
				d.setStyleProp(p.name, p.value)
			}
		case strings.HasPrefix(key, "data-"):
			d.dataAttrs[key] = val
		default:
			log.Debug("decoration attr rejected at safety boundary", zap.String("attr", key))
		}
	}
}

func (d *desiredDecorations) setStyleProp(name, value string) {
	for i := range d.styleProps {
		if d.styleProps[i].name == name {
			d.styleProps[i].value = value // last write wins
			return
		}
	}
	d.styleProps = append(d.styleProps, styleProp{name: name, value: value})
}

// reconcile applies the desired state, removing exactly what the bridge
// previously wrote and is no longer wanted.
func (b *DecorationBridge) reconcile(el *html.Node, desired *desiredDecorations, prior *appliedDecorations) {
	next := &appliedDecorations{
		dataAttrs:  make(map[string]string),
		styleProps: make(map[string]string),
	}

	desiredClasses := map[string]bool{}
	if desired != nil {
		for _, c := range desired.classes {
			desiredClasses[c] = true
		}
	}
	if prior != nil {
		for _, c := range prior.classes {
			if !desiredClasses[c] {
				removeClass(el, c)
			}
		}
		for key := range prior.dataAttrs {
			wanted := false
			if desired != nil {
				_, wanted = desired.dataAttrs[key]
			}
			if !wanted {
				removeAttr(el, key)
			}
		}
	}
	if desired != nil {
		for _, c := range desired.classes {
			addClass(el, c)
			next.classes = append(next.classes, c)
		}
		for key, val := range desired.dataAttrs {
			setAttr(el, key, val)
			next.dataAttrs[key] = val
		}
	}

	b.reconcileStyle(el, desired, prior, next)

	if next.empty() {
		delete(b.applied, el)
		return
	}
	b.applied[el] = next
}

// reconcileStyle merges style contributions property-by-property into the
// element's style attribute. Properties the bridge never wrote are left
// alone, so decoration styles compose with painter-authored styles.
func (b *DecorationBridge) reconcileStyle(el *html.Node, desired *desiredDecorations, prior *appliedDecorations, next *appliedDecorations) {
	props := parseStyle(attrVal(el, "style"))

	if prior != nil {
		for name := range prior.styleProps {
			wanted := false
			if desired != nil {
				for _, p := range desired.styleProps {
					if p.name == name {
						wanted = true
						break
					}
				}
			}
			if !wanted {
				props = removeStyleProp(props, name)
			}
		}
	}
	if desired != nil {
		for _, p := range desired.styleProps {
			props = setStylePropIn(props, p.name, p.value)
			next.styleProps[p.name] = p.value
		}
	}

	serialized := serializeStyle(props)
	if serialized == "" {
		removeAttr(el, "style")
		return
	}
	if attrVal(el, "style") != serialized {
		setAttr(el, "style", serialized)
	}
}

// sortedKeys gives map iteration a stable order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// styleProp is one CSS declaration.
type styleProp struct {
	name  string
	value string
}

// parseStyle splits a CSS property list ("color: red; top: 1px") into
// ordered declarations. Malformed segments are skipped.
func parseStyle(s string) []styleProp {
	var props []styleProp
	for _, decl := range strings.Split(s, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		props = setStylePropIn(props, name, value)
	}
	return props
}

// setStylePropIn updates a declaration in place or appends it, preserving
// declaration order.
func setStylePropIn(props []styleProp, name, value string) []styleProp {
	for i := range props {
		if props[i].name == name {
			props[i].value = value
			return props
		}
	}
	return append(props, styleProp{name: name, value: value})
}

func removeStyleProp(props []styleProp, name string) []styleProp {
	for i := range props {
		if props[i].name == name {
			return append(props[:i], props[i+1:]...)
		}
	}
	return props
}

// serializeStyle renders declarations back to a property list.
func serializeStyle(props []styleProp) string {
	if len(props) == 0 {
		return ""
	}
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p.name + ": " + p.value
	}
	return strings.Join(parts, "; ")
}
