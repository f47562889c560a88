package picosvg

import (
	"fmt"
	"strings"
)

// nonRendering elements are dropped outside text and opaque content.
var nonRendering = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
}

// definitionTags are opaque elements that only render through references, or not at all.
var definitionTags = map[string]bool{
	"pattern": true,
	"mask":    true,
	"filter":  true,
	"marker":  true,
	"symbol":  true,
	"style":   true,
}

// preservedTags are rendered opaque elements that are kept verbatim when all definitions are allowed.
var preservedTags = map[string]bool{
	"image":  true,
	"switch": true,
}

// keptAttrs are the attributes other than presentation attributes that survive on normalized elements.
var keptAttrs = map[Kind]map[string]bool{
	GroupKind:    {"id": true, "class": true, "transform": true},
	PathKind:     {"id": true, "class": true, "transform": true, "d": true},
	ShapeKind:    {"id": true, "class": true, "transform": true},
	ClipPathKind: {"id": true, "transform": true, "clipPathUnits": true},
	DefsKind:     {"id": true},
}

var rootAttrs = map[string]bool{
	"id":                  true,
	"class":               true,
	"viewBox":             true,
	"width":               true,
	"height":              true,
	"preserveAspectRatio": true,
}

// filterAttrs drops attributes without meaning for the element's kind. Opaque, text and gradient elements keep all attributes.
func filterAttrs(el *Element, isRoot bool) {
	kept, ok := keptAttrs[el.Kind]
	if !ok {
		return
	}
	attrs := el.Attrs[:0]
	for _, attr := range el.Attrs {
		if strings.HasPrefix(attr.Name, "xml:") || presentationAttrs[attr.Name] || kept[attr.Name] {
			attrs = append(attrs, attr)
		} else if isRoot && rootAttrs[attr.Name] {
			attrs = append(attrs, attr)
		} else if el.Kind == ShapeKind {
			for _, name := range shapeAttrs[el.Shape] {
				if attr.Name == name {
					attrs = append(attrs, attr)
					break
				}
			}
		}
	}
	el.Attrs = attrs
}

// viewBoxTransform maps a viewBox onto a viewport of size w×h following preserveAspectRatio. It returns false when the viewBox disables rendering.
func viewBoxTransform(vb Rect, w, h float64, par string) (Matrix, bool) {
	if vb.W <= 0.0 || vb.H <= 0.0 {
		return Identity, false
	}
	align, slice := "xMidYMid", false
	fields := strings.Fields(par)
	if 0 < len(fields) && fields[0] == "defer" {
		fields = fields[1:]
	}
	if 0 < len(fields) {
		align = fields[0]
	}
	if 1 < len(fields) {
		slice = fields[1] == "slice"
	}

	sx, sy := w/vb.W, h/vb.H
	var ax, ay float64
	if align != "none" {
		if slice == (sx < sy) {
			sx = sy
		} else {
			sy = sx
		}
		if strings.HasPrefix(align, "xMid") {
			ax = (w - vb.W*sx) / 2.0
		} else if strings.HasPrefix(align, "xMax") {
			ax = w - vb.W*sx
		}
		if strings.HasSuffix(align, "YMid") {
			ay = (h - vb.H*sy) / 2.0
		} else if strings.HasSuffix(align, "YMax") {
			ay = h - vb.H*sy
		}
	}
	return Identity.Translate(ax, ay).Scale(sx, sy).Translate(-vb.X, -vb.Y), true
}

// joinTransforms concatenates transform lists, the leftmost being the outermost.
func joinTransforms(ts ...string) string {
	parts := []string{}
	for _, t := range ts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func stripIDs(el *Element) {
	if el.Kind == CharDataKind {
		return
	}
	el.DelAttr("id")
	for _, child := range el.Children {
		stripIDs(child)
	}
}

type attrNormalizer struct {
	doc  *Document
	opts *Options
	ctx  UnitContext // root viewport, for lengths that are resolved before the unit resolver runs
}

// length resolves a length attribute early. Invalid values take the default.
func (n *attrNormalizer) length(el *Element, name string, axis Axis, def float64) float64 {
	v, ok := el.Attr(name)
	if !ok {
		return def
	}
	l, err := ParseLength(v)
	if err != nil {
		return def
	}
	return n.ctx.Resolve(l, axis)
}

func (n *attrNormalizer) rootContext() UnitContext {
	root := n.doc.Root
	ctx := UnitContext{FontSize: DefaultFontSize}
	if v, ok := root.Attr("viewBox"); ok {
		if vals, err := parsePoints(v); err == nil && len(vals) == 4 {
			ctx.Width, ctx.Height = vals[2], vals[3]
			return ctx
		}
	}
	ctx.Width = n.length(root, "width", HorizontalAxis, 0.0)
	ctx.Height = n.length(root, "height", VerticalAxis, 0.0)
	return ctx
}

// viewport converts the viewport attributes of a nested svg or instantiated symbol into a transform. It returns false when nothing is rendered.
func (n *attrNormalizer) viewport(el *Element, w, h float64) bool {
	m := Identity.Translate(n.length(el, "x", HorizontalAxis, 0.0), n.length(el, "y", VerticalAxis, 0.0))
	if v, ok := el.Attr("viewBox"); ok {
		vals, err := parsePoints(v)
		if err == nil && len(vals) == 4 {
			par, _ := el.Attr("preserveAspectRatio")
			vm, ok := viewBoxTransform(Rect{vals[0], vals[1], vals[2], vals[3]}, w, h, par)
			if !ok {
				return false
			}
			m = m.Mul(vm)
		}
	}
	el.Viewport = Rect{0.0, 0.0, w, h}
	if v, ok := el.Attr("viewBox"); ok {
		if vals, err := parsePoints(v); err == nil && len(vals) == 4 {
			el.Viewport = Rect{vals[0], vals[1], vals[2], vals[3]}
		}
	}

	t, _ := el.Attr("transform")
	if !m.IsIdentity() {
		t = joinTransforms(t, formatMatrix(m, -1))
	}
	el.DelAttr("x", "y", "width", "height", "viewBox", "preserveAspectRatio", "refX", "refY")
	if t != "" {
		el.SetAttr("transform", t)
	}
	el.Tag = "g"
	return true
}

// nestedSVG turns a nested svg element into a group carrying its viewport transform.
func (n *attrNormalizer) nestedSVG(stack []*Element) {
	el := stack[len(stack)-1]
	w := n.length(el, "width", HorizontalAxis, n.ctx.Width)
	h := n.length(el, "height", VerticalAxis, n.ctx.Height)
	if !n.viewport(el, w, h) || w <= 0.0 || h <= 0.0 {
		n.opts.logger().Debug("drop empty viewport", "element", elementPath(stack))
		el.Children = nil
		el.Tag = "g"
	}
}

// use expands a use element into a group holding a copy of its target. Inside clip paths the copy replaces the use directly.
func (n *attrNormalizer) use(stack []*Element, uses []string) (*Element, []string, error) {
	u := stack[len(stack)-1]
	parent := stack[len(stack)-2]
	href, _ := u.Attr("href")
	id, ok := parseHref(href)
	if !ok {
		return nil, nil, &ReferenceError{Path: elementPath(stack), Attr: "href", Ref: href, Err: ErrMissingReference}
	}
	for _, prev := range uses {
		if prev == id {
			return nil, nil, &ReferenceError{Path: elementPath(stack), Attr: "href", Ref: id, Err: ErrReferenceCycle}
		}
	}
	if MaxReferenceDepth <= len(uses) {
		return nil, nil, &ReferenceError{Path: elementPath(stack), Attr: "href", Ref: id, Err: ErrReferenceDepth}
	}
	target, ok := n.doc.ids[id]
	if !ok {
		return nil, nil, &ReferenceError{Path: elementPath(stack), Attr: "href", Ref: id, Err: ErrMissingReference}
	}
	for _, ancestor := range stack {
		if ancestor == target {
			return nil, nil, &ReferenceError{Path: elementPath(stack), Attr: "href", Ref: id, Err: ErrReferenceCycle}
		}
	}
	uses = append(uses[:len(uses):len(uses)], id)

	c := target.Copy()
	stripIDs(c)
	switch c.Tag {
	case "symbol":
		w := n.length(u, "width", HorizontalAxis, n.ctx.Width)
		h := n.length(u, "height", VerticalAxis, n.ctx.Height)
		c.DelAttr("x", "y")
		if !n.viewport(c, w, h) {
			return nil, uses, nil
		}
	case "svg":
		for _, name := range []string{"width", "height"} {
			if v, ok := u.Attr(name); ok {
				c.SetAttr(name, v)
			}
		}
	}

	offset := ""
	if x, y := n.length(u, "x", HorizontalAxis, 0.0), n.length(u, "y", VerticalAxis, 0.0); x != 0.0 || y != 0.0 {
		offset = fmt.Sprintf("translate(%s %s)", formatLength(x), formatLength(y))
	}
	useTransform, _ := u.Attr("transform")

	if parent.Kind == ClipPathKind {
		reclassify(c, ClipPathKind)
		if c.Kind != PathKind && c.Kind != ShapeKind && c.Kind != TextKind {
			n.opts.logger().Debug("drop clip content that is not a shape", "element", elementPath(stack), "ref", id)
			return nil, uses, nil
		}
		own, _ := c.Attr("transform")
		if t := joinTransforms(useTransform, offset, own); t != "" {
			c.SetAttr("transform", t)
		}
		for _, attr := range u.Attrs {
			if _, ok := c.Attr(attr.Name); !ok && presentationAttrs[attr.Name] {
				c.SetAttr(attr.Name, attr.Value)
			}
		}
		return c, uses, nil
	}

	g := &Element{
		Kind:     GroupKind,
		Tag:      "g",
		CTM:      Identity,
		Children: []*Element{c},
	}
	for _, attr := range u.Attrs {
		switch attr.Name {
		case "x", "y", "width", "height", "href", "transform":
		default:
			g.Attrs = append(g.Attrs, attr)
		}
	}
	if t := joinTransforms(useTransform, offset); t != "" {
		g.SetAttr("transform", t)
	}
	reclassify(c, GroupKind)
	return g, uses, nil
}

// findText returns the path of the first text element in the subtree.
func findText(stack []*Element) (string, bool) {
	path, found := "", false
	walk(stack[:len(stack)-1], stack[len(stack)-1], func(stack []*Element) bool {
		if found {
			return false
		} else if el := stack[len(stack)-1]; el.Tag == "text" {
			path, found = elementPath(stack), true
			return false
		}
		return true
	})
	return path, found
}

// supported returns whether opaque content placed in a group is kept. Definitions are always kept, images and switches only when all definitions are allowed. Other elements are a StructuralError unless unsupported elements are dropped, and so is any text they contain unless text is allowed.
func (n *attrNormalizer) supported(stack []*Element) (bool, error) {
	el := stack[len(stack)-1]
	if definitionTags[el.Tag] {
		return true, nil
	} else if path, ok := findText(stack); ok && !n.opts.AllowText {
		return false, &StructuralError{Path: path, Msg: "BadElement"}
	} else if preservedTags[el.Tag] && n.opts.AllowAllDefs {
		return true, nil
	} else if n.opts.DropUnsupported {
		n.opts.logger().Debug("drop unsupported element", "element", elementPath(stack))
		return false, nil
	}
	return false, &StructuralError{Path: elementPath(stack), Msg: "BadElement"}
}

// element normalizes the attributes of el and its subtree, expanding uses and dropping non-rendering elements.
func (n *attrNormalizer) element(stack []*Element, uses []string) error {
	el := stack[len(stack)-1]
	if el.Kind != OpaqueKind {
		if err := applyStyle(el); err != nil {
			n.opts.logger().Warn("skip malformed style", "element", elementPath(stack), "err", err)
		}
	}
	if el.Kind == TextKind && !n.opts.AllowText {
		return &StructuralError{Path: elementPath(stack), Msg: "BadElement"}
	}
	isRoot := len(stack) == 1
	if !isRoot && el.Kind == GroupKind {
		if el.Tag == "svg" {
			n.nestedSVG(stack)
		} else if el.Tag == "a" {
			el.Tag = "g"
		}
	}
	filterAttrs(el, isRoot)

	// percentages of the content refer to the nearest viewport
	if !el.Viewport.Empty() {
		ctx := n.ctx
		n.ctx.Width, n.ctx.Height = el.Viewport.W, el.Viewport.H
		defer func() {
			n.ctx = ctx
		}()
	}

	expand := el.Kind == GroupKind || el.Kind == ClipPathKind
	children := make([]*Element, 0, len(el.Children))
	chains := make([][]string, 0, len(el.Children))
	for _, child := range el.Children {
		chain := uses
		if child.Kind != CharDataKind {
			if child.Tag == "foreignObject" || nonRendering[child.Tag] && el.Kind != TextKind && el.Kind != OpaqueKind {
				n.opts.logger().Debug("drop element", "element", elementPath(append(stack, child)))
				continue
			} else if child.Tag == "use" && expand {
				var err error
				if child, chain, err = n.use(append(stack, child), uses); err != nil {
					n.opts.logger().Warn("drop unresolvable use", "err", err)
					continue
				} else if child == nil {
					continue
				}
			} else if child.Kind == OpaqueKind && el.Kind == GroupKind {
				if keep, err := n.supported(append(stack, child)); err != nil {
					return err
				} else if !keep {
					continue
				}
			}
		}
		children = append(children, child)
		chains = append(chains, chain)
	}
	el.Children = children

	for i, child := range el.Children {
		if child.Kind == CharDataKind {
			continue
		}
		if err := n.element(append(stack, child), chains[i]); err != nil {
			return err
		}
	}
	return nil
}

// uniqueIDs removes ids that are already used by a preceding element.
func (n *attrNormalizer) uniqueIDs() {
	seen := map[string]string{}
	walk(nil, n.doc.Root, func(stack []*Element) bool {
		el := stack[len(stack)-1]
		if id := el.ID(); id != "" {
			if first, ok := seen[id]; ok {
				n.opts.logger().Warn("drop reused id", "element", elementPath(stack), "id", id, "first", first)
				el.DelAttr("id")
			} else {
				seen[id] = elementPath(stack)
			}
		}
		return true
	})
}

// normalizeAttributes moves inline styles to attributes, expands uses and nested viewports, drops non-rendering elements and builds the id registry. Text outside definitions is a StructuralError unless text is allowed, and so is unsupported rendered content unless it is dropped.
func normalizeAttributes(doc *Document, opts *Options) error {
	n := &attrNormalizer{doc: doc, opts: opts}
	n.uniqueIDs()
	doc.registerIDs()
	n.ctx = n.rootContext()
	if err := n.element([]*Element{doc.Root}, nil); err != nil {
		return err
	}
	doc.registerIDs()
	return nil
}
