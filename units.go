package picosvg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
)

// DPI is the resolution used to convert absolute units to user units.
const DPI = 96.0

// DefaultFontSize is the font size in user units when no ancestor sets one.
const DefaultFontSize = 16.0

// Unit is a CSS length unit.
type Unit int

// Length units.
const (
	NoUnit Unit = iota
	PxUnit
	PtUnit
	PcUnit
	InUnit
	CmUnit
	MmUnit
	QUnit
	EmUnit
	PercentUnit
)

var unitNames = map[string]Unit{
	"":   NoUnit,
	"px": PxUnit,
	"pt": PtUnit,
	"pc": PcUnit,
	"in": InUnit,
	"cm": CmUnit,
	"mm": MmUnit,
	"q":  QUnit,
	"em": EmUnit,
	"%":  PercentUnit,
}

var (
	errEmptyLength   = errors.New("Empty CSS length value")
	errInvalidLength = errors.New("Invalid CSS length value")
	errUnknownUnit   = errors.New("unknown unit")
)

// Length is a number with a unit.
type Length struct {
	Value float64
	Unit  Unit
}

// ParseLength parses a CSS length such as 12, 1.5in or 50%.
func ParseLength(s string) (Length, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return Length{}, errEmptyLength
	}
	n, _ := parse.Dimension([]byte(v))
	if n == 0 {
		return Length{}, errInvalidLength
	}
	num, err := strconv.ParseFloat(v[:n], 64)
	if err != nil {
		return Length{}, errInvalidLength
	}
	unit, ok := unitNames[strings.ToLower(v[n:])]
	if !ok {
		return Length{}, fmt.Errorf("%w %q", errUnknownUnit, v[n:])
	}
	return Length{num, unit}, nil
}

// Axis selects the viewport dimension that percentages refer to.
type Axis int

// Axes.
const (
	HorizontalAxis Axis = iota
	VerticalAxis
	DiagonalAxis
	FontAxis
)

// UnitContext holds the values that relative units are resolved against.
type UnitContext struct {
	Width, Height float64 // viewport in user units
	FontSize      float64
	BoundingBox   bool // percentages are fractions of the object bounding box
}

// Resolve converts a length to user units.
func (ctx UnitContext) Resolve(l Length, axis Axis) float64 {
	switch l.Unit {
	case PtUnit:
		return l.Value * DPI / 72.0
	case PcUnit:
		return l.Value * DPI / 6.0
	case InUnit:
		return l.Value * DPI
	case CmUnit:
		return l.Value * DPI / 2.54
	case MmUnit:
		return l.Value * DPI / 25.4
	case QUnit:
		return l.Value * DPI / 101.6
	case EmUnit:
		return l.Value * ctx.FontSize
	case PercentUnit:
		if axis == FontAxis {
			return l.Value * ctx.FontSize / 100.0
		} else if ctx.BoundingBox {
			return l.Value / 100.0
		}
		switch axis {
		case HorizontalAxis:
			return l.Value * ctx.Width / 100.0
		case VerticalAxis:
			return l.Value * ctx.Height / 100.0
		}
		return l.Value * math.Sqrt((ctx.Width*ctx.Width+ctx.Height*ctx.Height)/2.0) / 100.0
	}
	return l.Value
}

var lengthAttrs = map[string]Axis{
	"x":                 HorizontalAxis,
	"cx":                HorizontalAxis,
	"x1":                HorizontalAxis,
	"x2":                HorizontalAxis,
	"width":             HorizontalAxis,
	"rx":                HorizontalAxis,
	"fx":                HorizontalAxis,
	"dx":                HorizontalAxis,
	"y":                 VerticalAxis,
	"cy":                VerticalAxis,
	"y1":                VerticalAxis,
	"y2":                VerticalAxis,
	"height":            VerticalAxis,
	"ry":                VerticalAxis,
	"fy":                VerticalAxis,
	"dy":                VerticalAxis,
	"r":                 DiagonalAxis,
	"fr":                DiagonalAxis,
	"stroke-width":      DiagonalAxis,
	"stroke-dashoffset": DiagonalAxis,
}

var lengthKeywords = map[string]bool{
	"auto":    true,
	"inherit": true,
	"initial": true,
	"none":    true,
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9.0,
	"x-small":  10.0,
	"small":    13.0,
	"medium":   16.0,
	"large":    18.0,
	"x-large":  24.0,
	"xx-large": 32.0,
}

// bboxUnitsAttr lists the elements whose own lengths may be in objectBoundingBox units, with the attribute that selects them.
var bboxUnitsAttr = map[string]string{
	"linearGradient": "gradientUnits",
	"radialGradient": "gradientUnits",
	"filter":         "filterUnits",
	"mask":           "maskUnits",
	"pattern":        "patternUnits",
}

// bboxContentAttr lists the elements whose content may be in objectBoundingBox units, with the attribute that selects them.
var bboxContentAttr = map[string]string{
	"clipPath": "clipPathUnits",
	"mask":     "maskContentUnits",
	"pattern":  "patternContentUnits",
	"filter":   "primitiveUnits",
}

func formatLength(f float64) string {
	if f == 0.0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type unitResolver struct {
	doc  *Document
	opts *Options
}

func (r *unitResolver) errorf(stack []*Element, attr, val string, err error) error {
	return &UnitError{Path: elementPath(stack), Attr: attr, Value: val, Msg: err.Error()}
}

// resolve returns the length in user units. In permissive mode unresolvable values become zero.
func (r *unitResolver) resolve(ctx UnitContext, stack []*Element, attr, val string, axis Axis) (float64, error) {
	l, err := ParseLength(val)
	if err != nil {
		if r.opts.PermissiveUnits {
			r.opts.logger().Warn("replace unresolvable length by zero", "element", elementPath(stack), "attr", attr, "value", val, "err", err)
			return 0.0, nil
		}
		return 0.0, r.errorf(stack, attr, val, err)
	}
	return ctx.Resolve(l, axis), nil
}

func (r *unitResolver) resolveList(ctx UnitContext, stack []*Element, attr, val string, axis Axis) (string, error) {
	fields := strings.FieldsFunc(val, func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
	})
	for i, field := range fields {
		f, err := r.resolve(ctx, stack, attr, field, axis)
		if err != nil {
			return "", err
		}
		fields[i] = formatLength(f)
	}
	return strings.Join(fields, " "), nil
}

// usesBoundingBox returns true when the attribute selecting the units, possibly inherited through href for gradients, is objectBoundingBox or absent.
func (r *unitResolver) usesBoundingBox(el *Element, unitsAttr string, content bool) bool {
	visited := map[*Element]bool{}
	for depth := 0; el != nil && depth <= MaxReferenceDepth && !visited[el]; depth++ {
		visited[el] = true
		if units, ok := el.Attr(unitsAttr); ok {
			return strings.TrimSpace(units) == "objectBoundingBox"
		}
		if el.Kind != GradientKind {
			break
		}
		href, _ := el.Attr("href")
		id, ok := parseHref(href)
		if !ok {
			break
		}
		el = r.doc.ids[id]
	}
	// content units default to userSpaceOnUse, region units to objectBoundingBox
	return !content
}

// viewport resolves the root viewBox, width and height and returns the context for its content.
func (r *unitResolver) viewport(stack []*Element) (UnitContext, error) {
	root := stack[0]
	ctx := UnitContext{FontSize: DefaultFontSize}

	hasViewBox := false
	if v, ok := root.Attr("viewBox"); ok {
		vals, err := parsePoints(v)
		if err != nil || len(vals) != 4 {
			return ctx, r.errorf(stack, "viewBox", v, fmt.Errorf("bad viewBox"))
		}
		r.doc.ViewBox = Rect{vals[0], vals[1], vals[2], vals[3]}
		hasViewBox = true
		ctx.Width, ctx.Height = vals[2], vals[3]
	}

	var size [2]float64
	var hasSize [2]bool
	for i, attr := range []string{"width", "height"} {
		v, ok := root.Attr(attr)
		if !ok || lengthKeywords[strings.TrimSpace(v)] {
			continue
		}
		l, err := ParseLength(v)
		if err == nil && l.Unit == PercentUnit {
			if !hasViewBox {
				return ctx, r.errorf(stack, attr, v, fmt.Errorf("percentage requires a viewBox"))
			}
			// relative to the embedding viewport, which is unknown
			root.DelAttr(attr)
			continue
		}
		f, err := r.resolve(ctx, stack, attr, v, Axis(i))
		if err != nil {
			return ctx, err
		}
		size[i], hasSize[i] = f, true
		root.SetAttr(attr, formatLength(f))
	}

	if !hasViewBox {
		if !hasSize[0] || !hasSize[1] {
			return ctx, &UnitError{Path: elementPath(stack), Msg: "root svg has neither viewBox nor width and height"}
		}
		r.doc.ViewBox = Rect{0.0, 0.0, size[0], size[1]}
		ctx.Width, ctx.Height = size[0], size[1]
	}
	vb := r.doc.ViewBox
	root.SetAttr("viewBox", strings.Join([]string{formatLength(vb.X), formatLength(vb.Y), formatLength(vb.W), formatLength(vb.H)}, " "))
	return ctx, nil
}

func (r *unitResolver) element(ctx UnitContext, stack []*Element) error {
	el := stack[len(stack)-1]
	if el.Kind == CharDataKind {
		return nil
	}

	isRoot := len(stack) == 1
	if isRoot {
		var err error
		if ctx, err = r.viewport(stack); err != nil {
			return err
		}
	}

	if v, ok := el.Attr("font-size"); ok {
		v = strings.TrimSpace(v)
		if size, ok := fontSizeKeywords[v]; ok {
			ctx.FontSize = size
		} else if v == "larger" {
			ctx.FontSize *= 1.2
		} else if v == "smaller" {
			ctx.FontSize /= 1.2
		} else if !lengthKeywords[v] {
			f, err := r.resolve(ctx, stack, "font-size", v, FontAxis)
			if err != nil {
				return err
			}
			ctx.FontSize = f
		}
		if !lengthKeywords[v] {
			el.SetAttr("font-size", formatLength(ctx.FontSize))
		}
	}

	own := ctx
	if unitsAttr, ok := bboxUnitsAttr[el.Tag]; ok {
		own.BoundingBox = r.usesBoundingBox(el, unitsAttr, false)
	}
	for i, attr := range el.Attrs {
		val := strings.TrimSpace(attr.Value)
		if lengthKeywords[val] || isRoot && (attr.Name == "width" || attr.Name == "height" || attr.Name == "x" || attr.Name == "y") {
			continue
		}
		if axis, ok := lengthAttrs[attr.Name]; ok {
			var err error
			if el.Kind == TextKind && (attr.Name == "x" || attr.Name == "y" || attr.Name == "dx" || attr.Name == "dy") {
				el.Attrs[i].Value, err = r.resolveList(own, stack, attr.Name, val, axis)
			} else {
				var f float64
				f, err = r.resolve(own, stack, attr.Name, val, axis)
				el.Attrs[i].Value = formatLength(f)
			}
			if err != nil {
				return err
			}
		} else if attr.Name == "stroke-dasharray" {
			v, err := r.resolveList(own, stack, attr.Name, val, DiagonalAxis)
			if err != nil {
				return err
			}
			el.Attrs[i].Value = v
		}
	}

	if unitsAttr, ok := bboxContentAttr[el.Tag]; ok {
		ctx.BoundingBox = r.usesBoundingBox(el, unitsAttr, true)
	}
	if !isRoot && !el.Viewport.Empty() {
		ctx.Width, ctx.Height = el.Viewport.W, el.Viewport.H
	}
	for _, child := range el.Children {
		if err := r.element(ctx, append(stack, child)); err != nil {
			return err
		}
	}
	return nil
}

// resolveUnits converts every length attribute to a unitless number in user units and sets the document's viewBox.
func resolveUnits(doc *Document, opts *Options) error {
	r := &unitResolver{doc: doc, opts: opts}
	return r.element(UnitContext{FontSize: DefaultFontSize}, []*Element{doc.Root})
}
