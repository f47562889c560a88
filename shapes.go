package picosvg

import (
	"math"
	"strconv"
	"strings"
)

// kappa is the distance of the cubic Bézier control points that approximate a quarter circle of unit radius.
const kappa = 0.5522847498307936

// Rectangle returns a rectangle at (x,y) of width w and height h. Non-positive sizes result in an empty path.
func Rectangle(x, y, w, h float64) *Path {
	if w <= 0.0 || h <= 0.0 {
		return &Path{}
	}

	p := &Path{}
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
	return p
}

// RoundedRectangle returns a rectangle at (x,y) of width w and height h with elliptical corners of radii rx and ry, approximated by cubic Béziers. The radii are clamped to half the width and height.
func RoundedRectangle(x, y, w, h, rx, ry float64) *Path {
	if w <= 0.0 || h <= 0.0 {
		return &Path{}
	}
	rx = math.Min(math.Max(rx, 0.0), w/2.0)
	ry = math.Min(math.Max(ry, 0.0), h/2.0)
	if rx == 0.0 || ry == 0.0 {
		return Rectangle(x, y, w, h)
	}

	kx, ky := kappa*rx, kappa*ry
	p := &Path{}
	p.MoveTo(x+rx, y)
	if rx < w/2.0 {
		p.LineTo(x+w-rx, y)
	}
	p.CubeTo(x+w-rx+kx, y, x+w, y+ry-ky, x+w, y+ry)
	if ry < h/2.0 {
		p.LineTo(x+w, y+h-ry)
	}
	p.CubeTo(x+w, y+h-ry+ky, x+w-rx+kx, y+h, x+w-rx, y+h)
	if rx < w/2.0 {
		p.LineTo(x+rx, y+h)
	}
	p.CubeTo(x+rx-kx, y+h, x, y+h-ry+ky, x, y+h-ry)
	if ry < h/2.0 {
		p.LineTo(x, y+ry)
	}
	p.CubeTo(x, y+ry-ky, x+rx-kx, y, x+rx, y)
	p.Close()
	return p
}

// Ellipse returns an ellipse centered at (cx,cy) with radii rx and ry as four quarter arcs. Non-positive radii result in an empty path.
func Ellipse(cx, cy, rx, ry float64) *Path {
	if rx <= 0.0 || ry <= 0.0 {
		return &Path{}
	}

	p := &Path{}
	p.MoveTo(cx+rx, cy)
	p.ArcTo(rx, ry, 0.0, false, true, cx, cy+ry)
	p.ArcTo(rx, ry, 0.0, false, true, cx-rx, cy)
	p.ArcTo(rx, ry, 0.0, false, true, cx, cy-ry)
	p.ArcTo(rx, ry, 0.0, false, true, cx+rx, cy)
	p.Close()
	return p
}

// Circle returns a circle centered at (cx,cy) with radius r.
func Circle(cx, cy, r float64) *Path {
	return Ellipse(cx, cy, r, r)
}

// Line returns a line segment from (x1,y1) to (x2,y2).
func Line(x1, y1, x2, y2 float64) *Path {
	p := &Path{}
	p.MoveTo(x1, y1)
	p.LineTo(x2, y2)
	return p
}

// Polyline returns an open path through the points given as x,y pairs. A trailing odd coordinate is ignored.
func Polyline(points []float64) *Path {
	p := &Path{}
	for i := 0; i+1 < len(points); i += 2 {
		if i == 0 {
			p.MoveTo(points[0], points[1])
		} else {
			p.LineTo(points[i], points[i+1])
		}
	}
	return p
}

// Polygon returns a closed path through the points given as x,y pairs.
func Polygon(points []float64) *Path {
	p := Polyline(points)
	if !p.Empty() {
		p.Close()
	}
	return p
}

////////////////////////////////////////////////////////////////

var shapeAttrs = map[Shape][]string{
	RectShape:     {"x", "y", "width", "height", "rx", "ry"},
	CircleShape:   {"cx", "cy", "r"},
	EllipseShape:  {"cx", "cy", "rx", "ry"},
	LineShape:     {"x1", "y1", "x2", "y2"},
	PolylineShape: {"points"},
	PolygonShape:  {"points"},
}

// number returns the numeric value of a resolved attribute, and false if it is absent or not a number.
func (el *Element) number(name string) (float64, bool) {
	v, ok := el.Attr(name)
	if !ok {
		return 0.0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0, false
	}
	return f, true
}

func (el *Element) numberOr(name string, def float64) float64 {
	if f, ok := el.number(name); ok {
		return f
	}
	return def
}

// autoRadii resolves rx and ry of rects and ellipses, where an absent, auto or negative radius takes the value of the other.
func autoRadii(el *Element) (float64, float64) {
	rx, okx := el.number("rx")
	ry, oky := el.number("ry")
	okx = okx && 0.0 <= rx
	oky = oky && 0.0 <= ry
	if !okx && !oky {
		return 0.0, 0.0
	} else if !okx {
		rx = ry
	} else if !oky {
		ry = rx
	}
	return rx, ry
}

// shapePath returns the geometry of a basic shape element.
func shapePath(el *Element) (*Path, error) {
	switch el.Shape {
	case RectShape:
		x, y := el.numberOr("x", 0.0), el.numberOr("y", 0.0)
		w, h := el.numberOr("width", 0.0), el.numberOr("height", 0.0)
		rx, ry := autoRadii(el)
		return RoundedRectangle(x, y, w, h, rx, ry), nil
	case CircleShape:
		return Circle(el.numberOr("cx", 0.0), el.numberOr("cy", 0.0), el.numberOr("r", 0.0)), nil
	case EllipseShape:
		rx, ry := autoRadii(el)
		return Ellipse(el.numberOr("cx", 0.0), el.numberOr("cy", 0.0), rx, ry), nil
	case LineShape:
		return Line(el.numberOr("x1", 0.0), el.numberOr("y1", 0.0), el.numberOr("x2", 0.0), el.numberOr("y2", 0.0)), nil
	case PolylineShape, PolygonShape:
		v, _ := el.Attr("points")
		points, err := parsePoints(v)
		if el.Shape == PolygonShape {
			return Polygon(points), err
		}
		return Polyline(points), err
	}
	return &Path{}, nil
}

// shapesToPaths converts basic shapes to paths and parses the data of path elements. Malformed geometry keeps its valid prefix.
func shapesToPaths(doc *Document, opts *Options) error {
	logger := opts.logger()
	walk(nil, doc.Root, func(stack []*Element) bool {
		el := stack[len(stack)-1]
		switch el.Kind {
		case ShapeKind:
			p, err := shapePath(el)
			if err != nil {
				logger.Warn("truncate malformed points", "element", elementPath(stack), "err", err)
			}
			el.DelAttr(shapeAttrs[el.Shape]...)
			el.Kind, el.Shape, el.Tag = PathKind, NoShape, "path"
			el.Path = p
		case PathKind:
			d, _ := el.Attr("d")
			p, err := ParsePath(d)
			if err != nil {
				logger.Warn("truncate malformed path data", "element", elementPath(stack), "err", err)
			}
			el.DelAttr("d")
			el.Path = p
		case OpaqueKind, TextKind:
			return false
		}
		return true
	})
	return nil
}
