package picosvg

import (
	"math"
	"strconv"
	"strings"
)

// GradientType is either linear or radial.
type GradientType int

// Gradient kinds.
const (
	LinearGradient GradientType = iota
	RadialGradient
)

// SpreadMethod defines how a gradient continues outside its vector.
type SpreadMethod int

// Spread methods.
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

var spreadNames = []string{"pad", "reflect", "repeat"}

// GradientUnits defines the coordinate system of the gradient vector.
type GradientUnits int

// Gradient units.
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// GradientStop is a color stop along the gradient vector.
type GradientStop struct {
	Offset  float64
	Color   string // empty is the default black
	Opacity float64
}

var gradientCoords = [2][]string{
	{"x1", "y1", "x2", "y2"},
	{"cx", "cy", "r", "fx", "fy", "fr"},
}

// Gradient is a resolved gradient. Attributes that are not set take their default or inherit from the referenced gradient.
type Gradient struct {
	Kind      GradientType
	Coords    [6]float64
	Set       [6]bool
	Stops     []GradientStop
	Spread    SpreadMethod
	Units     GradientUnits
	Transform Matrix

	hasSpread, hasUnits, hasTransform bool
}

// Copy returns a deep copy, so that consumers never share stops.
func (g *Gradient) Copy() *Gradient {
	c := *g
	c.Stops = append([]GradientStop{}, g.Stops...)
	return &c
}

func parseFraction(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	scale := 1.0
	if strings.HasSuffix(v, "%") {
		v = v[:len(v)-1]
		scale = 0.01
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0, false
	}
	return f * scale, true
}

func clamp01(f float64) float64 {
	return math.Max(0.0, math.Min(1.0, f))
}

// parseGradient reads the attributes and stops of a gradient element, without following its href.
func parseGradient(stack []*Element) (*Gradient, error) {
	el := stack[len(stack)-1]
	g := &Gradient{
		Transform: Identity,
	}
	if el.Tag == "radialGradient" {
		g.Kind = RadialGradient
	}
	for i, name := range gradientCoords[g.Kind] {
		if f, ok := el.number(name); ok {
			g.Coords[i], g.Set[i] = f, true
		}
	}
	if v, ok := el.Attr("gradientUnits"); ok {
		switch strings.TrimSpace(v) {
		case "userSpaceOnUse":
			g.Units, g.hasUnits = UserSpaceOnUse, true
		case "objectBoundingBox":
			g.Units, g.hasUnits = ObjectBoundingBox, true
		}
	}
	if v, ok := el.Attr("spreadMethod"); ok {
		for i, name := range spreadNames {
			if strings.TrimSpace(v) == name {
				g.Spread, g.hasSpread = SpreadMethod(i), true
			}
		}
	}
	if v, ok := el.Attr("gradientTransform"); ok {
		m, err := ParseTransform(v)
		if err != nil {
			return nil, &ParseError{Path: elementPath(stack), Attr: "gradientTransform", Err: err}
		}
		g.Transform, g.hasTransform = m, true
	}

	offset := 0.0
	for _, child := range el.Children {
		if child.Kind == CharDataKind || child.Tag != "stop" {
			continue
		}
		stop := GradientStop{Opacity: 1.0}
		if v, ok := child.Attr("offset"); ok {
			if f, ok := parseFraction(v); ok {
				stop.Offset = clamp01(f)
			}
		}
		// offsets never decrease
		stop.Offset = math.Max(stop.Offset, offset)
		offset = stop.Offset
		if v, ok := child.Attr("stop-color"); ok {
			stop.Color = strings.TrimSpace(v)
		}
		if v, ok := child.Attr("stop-opacity"); ok {
			if f, ok := parseFraction(v); ok {
				stop.Opacity = clamp01(f)
			}
		}
		g.Stops = append(g.Stops, stop)
	}
	return g, nil
}

// inherit takes the attributes not set on g from the referenced gradient.
func (g *Gradient) inherit(ref *Gradient) {
	if g.Kind == ref.Kind {
		for i := range g.Coords {
			if !g.Set[i] && ref.Set[i] {
				g.Coords[i], g.Set[i] = ref.Coords[i], true
			}
		}
	}
	if !g.hasUnits && ref.hasUnits {
		g.Units, g.hasUnits = ref.Units, true
	}
	if !g.hasSpread && ref.hasSpread {
		g.Spread, g.hasSpread = ref.Spread, true
	}
	if !g.hasTransform && ref.hasTransform {
		g.Transform, g.hasTransform = ref.Transform, true
	}
	if len(g.Stops) == 0 {
		g.Stops = append([]GradientStop{}, ref.Stops...)
	}
}

// toUserSpace converts a gradient in objectBoundingBox units to userSpaceOnUse for an element with the given bounds.
func (g *Gradient) toUserSpace(bounds Rect) {
	defaults := [2][]float64{
		{0.0, 0.0, 1.0, 0.0},
		{0.5, 0.5, 0.5},
	}
	for i, def := range defaults[g.Kind] {
		if !g.Set[i] {
			g.Coords[i], g.Set[i] = def, true
		}
	}
	g.Transform = bounds.ToMatrix().Mul(g.Transform)
	g.hasTransform = true
	g.Units, g.hasUnits = UserSpaceOnUse, true
}

// transform prepends the transformation of the consuming element.
func (g *Gradient) transform(m Matrix) {
	if m.IsIdentity() {
		return
	}
	g.Transform = m.Mul(g.Transform)
	g.hasTransform = true
}

// element returns the gradient as a definition element with the given id.
func (g *Gradient) element(id string, prec int) *Element {
	el := &Element{
		Kind: GradientKind,
		Tag:  "linearGradient",
		CTM:  Identity,
	}
	if g.Kind == RadialGradient {
		el.Tag = "radialGradient"
	}
	el.SetAttr("id", id)
	for i, name := range gradientCoords[g.Kind] {
		if g.Set[i] {
			el.SetAttr(name, formatNumber(g.Coords[i], prec))
		}
	}
	if g.Units == UserSpaceOnUse {
		el.SetAttr("gradientUnits", "userSpaceOnUse")
	}
	if g.hasTransform && !g.Transform.IsIdentity() {
		el.SetAttr("gradientTransform", formatMatrix(g.Transform, prec))
	}
	if g.Spread != PadSpread {
		el.SetAttr("spreadMethod", spreadNames[g.Spread])
	}
	for _, stop := range g.Stops {
		s := &Element{
			Kind: OpaqueKind,
			Tag:  "stop",
			CTM:  Identity,
		}
		s.SetAttr("offset", formatNumber(stop.Offset, prec))
		if stop.Color != "" {
			s.SetAttr("stop-color", stop.Color)
		}
		if stop.Opacity != 1.0 {
			s.SetAttr("stop-opacity", formatNumber(stop.Opacity, prec))
		}
		el.Children = append(el.Children, s)
	}
	return el
}
