package picosvg

import (
	"errors"
	"fmt"
	"strings"
)

// MaxReferenceDepth is the maximum length of a chain of references, such as gradients inheriting through href.
const MaxReferenceDepth = 8

// parseHref returns the id of a local reference such as #id.
func parseHref(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "#") || len(v) == 1 {
		return "", false
	}
	return v[1:], true
}

// parseURL returns the id and fallback of a paint or clip reference such as url(#id) red.
func parseURL(v string) (string, string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") {
		return "", "", false
	}
	end := strings.IndexByte(v, ')')
	if end == -1 {
		return "", "", false
	}
	ref := strings.Trim(strings.TrimSpace(v[4:end]), `"'`)
	id, ok := parseHref(ref)
	return id, strings.TrimSpace(v[end+1:]), ok
}

// references returns the ids referenced by url(#id) or href="#id" in the attributes of el.
func references(el *Element) []string {
	ids := []string{}
	for _, attr := range el.Attrs {
		if attr.Name == "href" {
			if id, ok := parseHref(attr.Value); ok {
				ids = append(ids, id)
			}
			continue
		}
		v := attr.Value
		for {
			i := strings.Index(v, "url(")
			if i == -1 {
				break
			}
			v = v[i:]
			if id, _, ok := parseURL(v); ok {
				ids = append(ids, id)
			}
			v = v[4:]
		}
	}
	return ids
}

type defsResolver struct {
	doc  *Document
	opts *Options

	defs      *Element        // generated definitions
	taken     map[string]bool // ids present in the output
	copies    map[string]int  // number of copies emitted per source id
	tolerance float64         // flattening tolerance for clipping and stroking
}

// consumer is the element a definition is resolved for.
type consumer struct {
	stack  []*Element
	ctm    Matrix
	bounds Rect
	known  bool // bounds are known

	userSpace bool // bounding box units are converted to user space even without transformation
}

func (r *defsResolver) name(id string) string {
	n := r.copies[id]
	for {
		n++
		name := id
		if 1 < n {
			name = fmt.Sprintf("%s-%d", id, n)
		}
		if !r.taken[name] {
			r.copies[id] = n
			r.taken[name] = true
			return name
		}
	}
}

func (r *defsResolver) target(id string, visited map[string]bool, depth int) (*Element, error) {
	if visited[id] {
		return nil, ErrReferenceCycle
	} else if MaxReferenceDepth < depth {
		return nil, ErrReferenceDepth
	}
	el, ok := r.doc.ids[id]
	if !ok {
		return nil, ErrMissingReference
	}
	visited[id] = true
	return el, nil
}

// gradient resolves a gradient and the chain of gradients it inherits from.
func (r *defsResolver) gradient(id string, visited map[string]bool, depth int) (*Gradient, error) {
	el, err := r.target(id, visited, depth)
	if err != nil {
		return nil, err
	} else if el.Tag != "linearGradient" && el.Tag != "radialGradient" {
		return nil, fmt.Errorf("%w: %s", ErrReferenceType, el.Tag)
	}
	g, err := parseGradient([]*Element{el})
	if err != nil {
		return nil, err
	}
	if href, ok := el.Attr("href"); ok {
		if ref, ok := parseHref(href); ok {
			parent, err := r.gradient(ref, visited, depth+1)
			if err != nil {
				return nil, err
			}
			g.inherit(parent)
		}
	}
	return g, nil
}

// paint resolves the value of a fill or stroke attribute for a consumer and returns the attribute value to write.
func (r *defsResolver) paint(c consumer, attr, val string) (Paint, string, error) {
	id, fallback, ok := parseURL(val)
	if !ok {
		return Paint{Color: val}, val, nil
	}
	if el, ok := r.doc.ids[id]; ok && el.Kind == OpaqueKind && r.opts.AllowAllDefs && el.Tag != "linearGradient" && el.Tag != "radialGradient" {
		// patterns are kept verbatim
		return Paint{Color: val}, val, nil
	}

	noPaint := "none"
	if fallback != "" {
		noPaint = fallback
	}
	g, err := r.gradient(id, map[string]bool{}, 0)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return Paint{}, "", err
		}
		r.opts.logger().Warn("drop unresolvable paint", "err", &ReferenceError{Path: elementPath(c.stack), Attr: attr, Ref: id, Err: err})
		return Paint{Color: noPaint}, noPaint, nil
	}

	if g.Units == ObjectBoundingBox && c.known && c.bounds.Empty() {
		r.opts.logger().Debug("drop gradient on zero-size bounding box", "element", elementPath(c.stack), "attr", attr)
		return Paint{Color: noPaint}, noPaint, nil
	} else if g.Units == ObjectBoundingBox && (!c.ctm.IsIdentity() || c.userSpace) {
		g.toUserSpace(c.bounds)
	}
	g.transform(c.ctm)

	name := r.name(id)
	r.defs.Children = append(r.defs.Children, g.element(name, r.opts.precision()))
	return Paint{Gradient: g}, "url(#" + name + ")", nil
}

// clip resolves the area of a clip path for a consumer in the root user space. It returns false when the clip is empty or missing, meaning no clipping.
func (r *defsResolver) clip(c consumer, id string, visited map[string]bool, depth int) (*Path, bool) {
	el, err := r.target(id, visited, depth)
	if err == nil && el.Tag != "clipPath" {
		err = fmt.Errorf("%w: %s", ErrReferenceType, el.Tag)
	}
	if err != nil {
		r.opts.logger().Warn("drop unresolvable clip", "err", &ReferenceError{Path: elementPath(c.stack), Attr: "clip-path", Ref: id, Err: err})
		return nil, false
	}

	m := c.ctm
	if units, _ := el.Attr("clipPathUnits"); strings.TrimSpace(units) == "objectBoundingBox" {
		if !c.known || c.bounds.Empty() {
			return nil, false
		}
		m = m.Mul(c.bounds.ToMatrix())
	}

	var region *Path
	for _, child := range el.Children {
		if child.Kind != PathKind || child.Path.Empty() {
			continue
		}
		p := child.Path.Transform(m)
		if p.Empty() {
			continue
		}
		rule, ok := child.Attr("clip-rule")
		if !ok {
			rule, _ = el.Attr("clip-rule")
		}
		p = p.Flatten(r.tolerance).Settle(ParseFillRule(strings.TrimSpace(rule)))
		if region == nil {
			region = p
		} else {
			region = region.Or(p)
		}
	}
	if region == nil {
		r.opts.logger().Debug("drop empty clip", "element", elementPath(c.stack), "ref", id)
		return nil, false
	}

	if v, ok := el.Attr("clip-path"); ok {
		if ref, _, ok := parseURL(v); ok {
			if nested, ok := r.clip(c, ref, visited, depth+1); ok {
				region = region.And(nested)
			}
		}
	}
	return region, true
}

// separate splits the stroke of a path element off into its own element, see splitStroke.
func (r *defsResolver) separate(stack []*Element) []*Element {
	els := []*Element{}
	fill, stroke := splitStroke(stack, r.tolerance)
	for _, e := range []*Element{fill, stroke} {
		if e != nil {
			els = append(els, e)
		}
	}
	return els
}

// clipPath intersects the geometry of a path element with a clip region. Painted strokes are converted to fills first, so that the result may consist of two elements. Nothing changes when the region is a rectangle containing the painted area, and nothing remains when they are disjoint.
func (r *defsResolver) clipPath(stack []*Element, region *Path) []*Element {
	el := stack[len(stack)-1]
	stroked := strokePainted(stack)
	if rect, ok := region.rect(); ok {
		bounds := el.Path.Bounds()
		if stroked {
			bounds = bounds.Expand(strokeExtent(stack))
		}
		if rect.Contains(bounds) {
			if stroked && r.opts.StrokeToFill {
				return r.separate(stack)
			}
			return []*Element{el}
		}
	}

	els := []*Element{el}
	if stroked {
		els = r.separate(stack)
	}
	clipped := els[:0]
	for _, e := range els {
		p := e.Path.Flatten(r.tolerance)
		if e == el {
			if rule, _ := inheritedAttr(stack, "fill-rule"); ParseFillRule(rule) == EvenOdd {
				p = p.Settle(EvenOdd)
			}
		}
		if e.Path = p.And(region); e.Path.Empty() {
			r.opts.logger().Debug("drop clipped out path", "element", elementPath(stack))
			continue
		}
		clipped = append(clipped, e)
	}
	return clipped
}

// localBounds returns the bounds of the flattened geometry below el in the user space of el.
func localBounds(el *Element) (Rect, bool) {
	inv, ok := el.CTM.Inv()
	if !ok {
		return Rect{}, false
	}
	bounds := Rect{}
	first := true
	var add func(*Element)
	add = func(e *Element) {
		if e.Kind == PathKind && !e.Path.Empty() {
			b := e.Path.Transform(inv).Bounds()
			if first {
				bounds, first = b, false
			} else {
				bounds = bounds.Add(b)
			}
		}
		if e.Kind == GroupKind || e == el {
			for _, child := range e.Children {
				add(child)
			}
		}
	}
	add(el)
	return bounds, true
}

// inherited holds the url-valued paints pushed down from groups, and the clip region of the ancestors in root user space.
type inherited struct {
	fill, stroke string
	clip         *Path
	clipRef      bool // the clip comes from a clip-path reference
}

// unsupportedRefs are the references to definitions that are kept verbatim, if at all.
var unsupportedRefs = []string{"mask", "filter", "marker-start", "marker-mid", "marker-end"}

// paints resolves the fill and stroke of an element, taking over the url-valued paints inherited from groups.
func (r *defsResolver) paints(c consumer, inh *inherited) error {
	el := c.stack[len(c.stack)-1]
	for _, attr := range []string{"fill", "stroke"} {
		v, ok := el.Attr(attr)
		pushed := &inh.fill
		if attr == "stroke" {
			pushed = &inh.stroke
		}
		if ok {
			if _, _, isURL := parseURL(v); isURL && el.Kind == GroupKind {
				*pushed = v
				el.DelAttr(attr)
				continue
			}
			*pushed = ""
		} else if *pushed == "" || el.Kind == GroupKind {
			continue
		} else {
			v = *pushed
		}

		if el.Kind == PathKind && el.Path.Empty() {
			if _, _, isURL := parseURL(v); isURL {
				el.SetAttr(attr, "none")
				continue
			}
		}
		paint, val, err := r.paint(c, attr, v)
		if err != nil {
			return err
		}
		if attr == "fill" {
			el.Style.Fill = paint
		} else {
			el.Style.Stroke = paint
		}
		el.SetAttr(attr, val)
	}
	return nil
}

// path resolves the paints and clips of a path element. The returned elements replace it.
func (r *defsResolver) path(stack []*Element, inh inherited) ([]*Element, error) {
	el := stack[len(stack)-1]
	c := consumer{stack: stack, ctm: el.CTM, bounds: el.Bounds, known: true}

	region := inh.clip
	if v, ok := el.Attr("clip-path"); ok {
		el.DelAttr("clip-path")
		if id, _, ok := parseURL(v); ok {
			if own, ok := r.clip(c, id, map[string]bool{}, 0); ok {
				if region == nil {
					region = own
				} else {
					region = region.And(own)
				}
			}
		}
	}

	// inherited url paints become explicit, so that a separated stroke takes them along
	for _, pushed := range []struct{ attr, v string }{{"fill", inh.fill}, {"stroke", inh.stroke}} {
		if _, ok := el.Attr(pushed.attr); !ok && pushed.v != "" {
			el.SetAttr(pushed.attr, pushed.v)
		}
	}
	inh.fill, inh.stroke = "", ""

	orig := el.Path
	els := []*Element{el}
	if region != nil {
		els = r.clipPath(stack, region)
	} else if r.opts.StrokeToFill && strokePainted(stack) {
		els = r.separate(stack)
	}

	for _, e := range els {
		ec := c
		ec.stack = append(stack[:len(stack)-1:len(stack)-1], e)
		// changed geometry is painted with the gradient of the original geometry
		ec.userSpace = e != el || e.Path != orig
		if err := r.paints(ec, &inh); err != nil {
			return nil, err
		}
		r.unsupported(ec.stack)
	}
	return els, nil
}

// unsupported removes references to masks, filters and markers unless definitions are kept, and references to missing definitions otherwise.
func (r *defsResolver) unsupported(stack []*Element) {
	el := stack[len(stack)-1]
	for _, attr := range unsupportedRefs {
		v, ok := el.Attr(attr)
		if !ok {
			continue
		} else if !r.opts.AllowAllDefs {
			r.opts.logger().Debug("drop reference to unsupported definition", "element", elementPath(stack), "attr", attr)
			el.DelAttr(attr)
		} else if id, _, ok := parseURL(v); ok {
			if _, ok := r.doc.ids[id]; !ok {
				r.opts.logger().Warn("drop unresolvable reference", "err", &ReferenceError{Path: elementPath(stack), Attr: attr, Ref: id, Err: ErrMissingReference})
				el.DelAttr(attr)
			}
		}
	}
}

// element resolves the definitions referenced by el and its subtree. It returns the elements that replace el.
func (r *defsResolver) element(stack []*Element, inh inherited) ([]*Element, error) {
	el := stack[len(stack)-1]
	switch el.Kind {
	case CharDataKind, DefsKind, GradientKind, ClipPathKind:
		return []*Element{el}, nil
	case OpaqueKind:
		if el.Tag != "image" && el.Tag != "switch" {
			return []*Element{el}, nil
		}
	case PathKind:
		return r.path(stack, inh)
	}

	c := consumer{stack: stack, ctm: el.CTM}
	if el.Kind == GroupKind {
		c.bounds, c.known = localBounds(el)
	} else {
		// not flattened, definitions stay in the local user space
		c.ctm = Identity
	}
	if err := r.paints(c, &inh); err != nil {
		return nil, err
	}

	// clip paths of preserved content are kept with it
	if v, ok := el.Attr("clip-path"); ok && el.Kind != OpaqueKind {
		el.DelAttr("clip-path")
		if id, _, ok := parseURL(v); ok && el.Kind == GroupKind {
			if region, ok := r.clip(c, id, map[string]bool{}, 0); ok {
				if inh.clip != nil {
					region = inh.clip.And(region)
				}
				inh.clip, inh.clipRef = region, true
			}
		} else if ok {
			r.opts.logger().Warn("unable to clip element", "element", elementPath(stack), "ref", id)
		}
	}
	if inh.clip != nil && el.Kind != GroupKind && inh.clipRef {
		r.opts.logger().Warn("unable to clip element", "element", elementPath(stack))
	}
	r.unsupported(stack)

	switch el.Kind {
	case GroupKind:
		children := make([]*Element, 0, len(el.Children))
		for _, child := range el.Children {
			els, err := r.element(append(stack, child), inh)
			if err != nil {
				return nil, err
			}
			children = append(children, els...)
		}
		el.Children = children
	case TextKind:
		for _, child := range el.Children {
			if _, err := r.element(append(stack, child), inherited{}); err != nil {
				return nil, err
			}
		}
	}
	return []*Element{el}, nil
}

// retain marks the gradients and clip paths referenced from kept opaque content, which must stay in place verbatim.
func (r *defsResolver) retain() {
	queue := []*Element{}
	var find func(*Element, bool)
	find = func(el *Element, opaque bool) {
		if el.Kind == CharDataKind {
			return
		}
		opaque = opaque || el.Kind == OpaqueKind
		if opaque {
			queue = append(queue, el)
		}
		for _, child := range el.Children {
			find(child, opaque)
		}
	}
	find(r.doc.Root, false)

	for len(queue) != 0 {
		el := queue[0]
		queue = queue[1:]
		for _, id := range references(el) {
			if target, ok := r.doc.ids[id]; ok && (target.Kind == GradientKind || target.Kind == ClipPathKind) {
				reclassify(target, OpaqueKind)
				queue = append(queue, target)
				for _, child := range target.Children {
					queue = append(queue, child)
				}
			}
		}
	}
}

// prune removes consumed definitions, and opaque content unless definitions are preserved.
func (r *defsResolver) prune(el *Element) {
	children := el.Children[:0]
	for _, child := range el.Children {
		switch child.Kind {
		case GradientKind, ClipPathKind:
			continue
		case DefsKind:
			if !r.opts.AllowAllDefs {
				continue
			}
		case OpaqueKind:
			if !r.opts.AllowAllDefs {
				r.opts.logger().Debug("drop unsupported element", "element", child.Tag)
				continue
			}
			children = append(children, child)
			continue
		}
		r.prune(child)
		children = append(children, child)
	}
	el.Children = children
}

// resolveDefs inlines a copy of every referenced gradient for each consumer into a leading defs element, intersects path geometry with the clip paths of the path and its ancestors, and removes the source definitions. Strokes are converted to fills where clipping requires it or the options ask for it. Unresolvable references are recovered.
func resolveDefs(doc *Document, opts *Options) error {
	r := &defsResolver{
		doc:  doc,
		opts: opts,
		defs: &Element{
			Kind: DefsKind,
			Tag:  "defs",
			CTM:  Identity,
		},
		taken:     map[string]bool{},
		copies:    map[string]int{},
		tolerance: doc.Tolerance(),
	}
	if opts.AllowAllDefs {
		r.retain()
	}
	walk(nil, doc.Root, func(stack []*Element) bool {
		el := stack[len(stack)-1]
		switch el.Kind {
		case GradientKind, ClipPathKind:
			return false
		case OpaqueKind:
			if opts.AllowAllDefs {
				if id := el.ID(); id != "" {
					r.taken[id] = true
				}
			}
			return opts.AllowAllDefs
		case DefsKind:
			return opts.AllowAllDefs
		}
		if id := el.ID(); id != "" {
			r.taken[id] = true
		}
		return true
	})

	inh := inherited{}
	if opts.ClipToViewBox && !doc.ViewBox.Empty() {
		vb := doc.ViewBox
		inh.clip = Rectangle(vb.X, vb.Y, vb.W, vb.H)
	}
	if _, err := r.element([]*Element{doc.Root}, inh); err != nil {
		return err
	}
	r.prune(doc.Root)
	if len(r.defs.Children) != 0 {
		doc.Root.Children = append([]*Element{r.defs}, doc.Root.Children...)
	}
	return nil
}
