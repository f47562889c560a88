package picosvg

import (
	"math"
	"strings"
)

// strokeAttrs are the properties that only affect the stroke.
var strokeAttrs = []string{"stroke", "stroke-width", "stroke-opacity", "stroke-linecap", "stroke-linejoin", "stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset"}

// inheritedAttr returns the value of a property on the element or its nearest ancestor that sets it.
func inheritedAttr(stack []*Element, name string) (string, bool) {
	for k := len(stack) - 1; 0 <= k; k-- {
		if v, ok := stack[k].Attr(name); ok {
			if v = strings.TrimSpace(v); v != "inherit" {
				return v, true
			}
		}
	}
	return "", false
}

// inheritedNumber returns the numeric value of an inherited property, or def when it is unset or invalid.
func inheritedNumber(stack []*Element, name string, def float64) float64 {
	for k := len(stack) - 1; 0 <= k; k-- {
		if f, ok := stack[k].number(name); ok {
			return f
		}
	}
	return def
}

// fillPainted returns true if the fill of the element paints anything.
func fillPainted(stack []*Element) bool {
	if v, ok := inheritedAttr(stack, "fill"); ok && v == "none" {
		return false
	}
	return inheritedNumber(stack, "fill-opacity", 1.0) != 0.0
}

// strokePainted returns true if the element has a visible stroke. The stroke is none by default.
func strokePainted(stack []*Element) bool {
	if v, ok := inheritedAttr(stack, "stroke"); !ok || v == "none" {
		return false
	}
	return 0.0 < inheritedNumber(stack, "stroke-width", 1.0) && inheritedNumber(stack, "stroke-opacity", 1.0) != 0.0
}

// strokeExtent returns how far the stroke of a path element reaches beyond its geometry at most.
func strokeExtent(stack []*Element) float64 {
	hw := inheritedNumber(stack, "stroke-width", 1.0) / 2.0
	extent := hw * math.Sqrt2
	if v, _ := inheritedAttr(stack, "stroke-linejoin"); v != "round" && v != "bevel" {
		extent = math.Max(extent, hw*inheritedNumber(stack, "stroke-miterlimit", 4.0))
	}
	return extent
}

// strokeOutline returns the area covered by the stroke of a path element, following its width, caps, joins and dashes. Curves are flattened within tolerance.
func strokeOutline(stack []*Element, tolerance float64) *Path {
	el := stack[len(stack)-1]
	width := inheritedNumber(stack, "stroke-width", 1.0)

	var cr Capper = ButtCapper
	if v, _ := inheritedAttr(stack, "stroke-linecap"); v == "round" {
		cr = RoundCapper
	} else if v == "square" {
		cr = SquareCapper
	}

	var jr Joiner
	switch v, _ := inheritedAttr(stack, "stroke-linejoin"); v {
	case "round":
		jr = RoundJoiner
	case "bevel":
		jr = BevelJoiner
	default:
		limit := inheritedNumber(stack, "stroke-miterlimit", 4.0)
		if limit < 1.0 {
			limit = 4.0
		}
		jr = MiterJoiner(limit)
	}

	p := el.Path.Flatten(tolerance)
	if v, ok := inheritedAttr(stack, "stroke-dasharray"); ok && v != "none" {
		if dashes, err := parsePoints(v); err == nil && 0 < len(dashes) {
			p = p.Dash(inheritedNumber(stack, "stroke-dashoffset", 0.0), dashes...)
		}
	}
	return p.Stroke(width, cr, jr).Flatten(tolerance).Settle(NonZero)
}

// splitStroke separates the stroke of a path element into a new path element that fills the stroke outline with the stroke paint. The original element keeps the fill, its stroke is removed. Either return value is nil when it paints nothing, the first one painting element keeps the id.
func splitStroke(stack []*Element, tolerance float64) (*Element, *Element) {
	el := stack[len(stack)-1]
	paint, _ := inheritedAttr(stack, "stroke")
	opacity, hasOpacity := inheritedAttr(stack, "stroke-opacity")
	outline := strokeOutline(stack, tolerance)

	s := &Element{
		Kind:   PathKind,
		Tag:    "path",
		Path:   outline,
		CTM:    el.CTM,
		Bounds: el.Bounds,
	}
	for _, attr := range el.Attrs {
		switch attr.Name {
		case "id", "fill", "fill-opacity", "fill-rule":
			continue
		}
		if strings.HasPrefix(attr.Name, "stroke") {
			continue
		}
		s.Attrs = append(s.Attrs, attr)
	}
	s.SetAttr("fill", paint)
	if hasOpacity && opacity != "1" {
		s.SetAttr("fill-opacity", opacity)
	}

	fill := el
	fill.DelAttr(strokeAttrs...)
	if len(stack) > 1 {
		if _, ok := inheritedAttr(stack[:len(stack)-1], "stroke"); ok {
			fill.SetAttr("stroke", "none")
		}
	}
	if !fillPainted(stack) {
		if id, ok := el.Attr("id"); ok {
			s.Attrs = append([]Attr{{"id", id}}, s.Attrs...)
		}
		fill = nil
	}
	if outline.Empty() {
		s = nil
	}
	return fill, s
}
