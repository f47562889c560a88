package picosvg

import (
	"math"
	"strconv"
	"strings"
)

// SVGNamespace is the canonical namespace written on the root element.
const SVGNamespace = "http://www.w3.org/2000/svg"

// XLinkNamespace is the legacy namespace of xlink:href.
const XLinkNamespace = "http://www.w3.org/1999/xlink"

// Kind is the variant of an element. The set of kinds is closed, unknown tags are Opaque.
type Kind int

// Element kinds.
const (
	GroupKind Kind = iota
	PathKind
	ShapeKind
	GradientKind
	ClipPathKind
	DefsKind
	OpaqueKind
	TextKind
	CharDataKind
)

func (k Kind) String() string {
	switch k {
	case GroupKind:
		return "Group"
	case PathKind:
		return "Path"
	case ShapeKind:
		return "Shape"
	case GradientKind:
		return "Gradient"
	case ClipPathKind:
		return "ClipPath"
	case DefsKind:
		return "Defs"
	case OpaqueKind:
		return "Opaque"
	case TextKind:
		return "Text"
	case CharDataKind:
		return "CharData"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Shape is the kind of a basic shape.
type Shape int

// Basic shapes.
const (
	NoShape Shape = iota
	RectShape
	CircleShape
	EllipseShape
	LineShape
	PolylineShape
	PolygonShape
)

var shapeTags = map[string]Shape{
	"rect":     RectShape,
	"circle":   CircleShape,
	"ellipse":  EllipseShape,
	"line":     LineShape,
	"polyline": PolylineShape,
	"polygon":  PolygonShape,
}

// Attr is an attribute with its raw value.
type Attr struct {
	Name, Value string
}

// Paint is a resolved fill or stroke. Either Color is set (including "none") or Gradient is an inlined copy owned by this element.
type Paint struct {
	Color    string
	Gradient *Gradient
}

// Style holds the resolved paint of an element.
type Style struct {
	Fill, Stroke Paint
}

// Element is a node of the document tree. Children are exclusively owned by their parent.
type Element struct {
	Kind     Kind
	Shape    Shape
	Tag      string
	Attrs    []Attr
	Children []*Element
	Data     string // raw character data for CharDataKind

	Path     *Path  // geometry for PathKind
	CTM      Matrix // resolved transformation to the root's user space
	Bounds   Rect   // geometry bounds before flattening
	Viewport Rect   // user space of a nested viewport, for percentages of its content
	Style    Style
}

// Attr returns the value of an attribute.
func (el *Element) Attr(name string) (string, bool) {
	for _, attr := range el.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping its position when it exists.
func (el *Element) SetAttr(name, val string) {
	for i, attr := range el.Attrs {
		if attr.Name == name {
			el.Attrs[i].Value = val
			return
		}
	}
	el.Attrs = append(el.Attrs, Attr{name, val})
}

// DelAttr removes an attribute.
func (el *Element) DelAttr(names ...string) {
	attrs := el.Attrs[:0]
	for _, attr := range el.Attrs {
		keep := true
		for _, name := range names {
			if attr.Name == name {
				keep = false
				break
			}
		}
		if keep {
			attrs = append(attrs, attr)
		}
	}
	el.Attrs = attrs
}

// ID returns the id attribute.
func (el *Element) ID() string {
	id, _ := el.Attr("id")
	return strings.TrimSpace(id)
}

// Copy returns a deep copy of the subtree.
func (el *Element) Copy() *Element {
	c := *el
	c.Attrs = append([]Attr{}, el.Attrs...)
	c.Children = make([]*Element, 0, len(el.Children))
	for _, child := range el.Children {
		c.Children = append(c.Children, child.Copy())
	}
	if el.Path != nil {
		c.Path = el.Path.Copy()
	}
	if el.Style.Fill.Gradient != nil {
		c.Style.Fill.Gradient = el.Style.Fill.Gradient.Copy()
	}
	if el.Style.Stroke.Gradient != nil {
		c.Style.Stroke.Gradient = el.Style.Stroke.Gradient.Copy()
	}
	return &c
}

// classify returns the kind of an element with the given tag under a parent of the given kind.
func classify(tag string, parent Kind) (Kind, Shape) {
	switch parent {
	case OpaqueKind, GradientKind:
		return OpaqueKind, NoShape
	case TextKind:
		return TextKind, NoShape
	case DefsKind:
		switch tag {
		case "linearGradient", "radialGradient":
			return GradientKind, NoShape
		case "clipPath":
			return ClipPathKind, NoShape
		}
		return OpaqueKind, NoShape
	case ClipPathKind:
		if shape, ok := shapeTags[tag]; ok {
			return ShapeKind, shape
		}
		switch tag {
		case "path":
			return PathKind, NoShape
		case "text":
			return TextKind, NoShape
		}
		return OpaqueKind, NoShape
	}

	if shape, ok := shapeTags[tag]; ok {
		return ShapeKind, shape
	}
	switch tag {
	case "svg", "g", "a":
		return GroupKind, NoShape
	case "path":
		return PathKind, NoShape
	case "linearGradient", "radialGradient":
		return GradientKind, NoShape
	case "clipPath":
		return ClipPathKind, NoShape
	case "defs":
		return DefsKind, NoShape
	case "text":
		return TextKind, NoShape
	}
	return OpaqueKind, NoShape
}

// reclassify sets the kinds of a subtree as if it were placed under a parent of the given kind.
func reclassify(el *Element, parent Kind) {
	if el.Kind == CharDataKind {
		return
	}
	el.Kind, el.Shape = classify(el.Tag, parent)
	for _, child := range el.Children {
		reclassify(child, el.Kind)
	}
}

// elementPath returns a path such as /svg[0]/g[1]/text[0], where indices count siblings with the same tag.
func elementPath(stack []*Element) string {
	sb := strings.Builder{}
	for k, el := range stack {
		idx := 0
		if 0 < k {
			for _, sibling := range stack[k-1].Children {
				if sibling == el {
					break
				} else if sibling.Tag == el.Tag && sibling.Kind != CharDataKind {
					idx++
				}
			}
		}
		sb.WriteByte('/')
		sb.WriteString(el.Tag)
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(idx))
		sb.WriteByte(']')
	}
	return sb.String()
}

// walk calls f for every element in pre-order with the stack of its ancestors including itself. Returning false skips the children.
func walk(stack []*Element, el *Element, f func(stack []*Element) bool) {
	stack = append(stack, el)
	if !f(stack) {
		return
	}
	for _, child := range el.Children {
		if child.Kind != CharDataKind {
			walk(stack, child, f)
		}
	}
}

////////////////////////////////////////////////////////////////

// Document is a parsed SVG document.
type Document struct {
	Root    *Element
	ViewBox Rect

	ids map[string]*Element
}

// registerIDs builds the id registry. The first element with a given id wins.
func (doc *Document) registerIDs() {
	doc.ids = map[string]*Element{}
	walk(nil, doc.Root, func(stack []*Element) bool {
		el := stack[len(stack)-1]
		if id := el.ID(); id != "" {
			if _, ok := doc.ids[id]; !ok {
				doc.ids[id] = el
			}
		}
		return true
	})
}

// Tolerance returns the maximum deviation allowed when curves are flattened, which is a thousandth of the largest viewBox dimension.
func (doc *Document) Tolerance() float64 {
	if size := math.Max(doc.ViewBox.W, doc.ViewBox.H); 0.0 < size {
		return size / 1000.0
	}
	return DefaultTolerance
}

// Lookup returns the element registered under id.
func (doc *Document) Lookup(id string) (*Element, bool) {
	el, ok := doc.ids[id]
	return el, ok
}
