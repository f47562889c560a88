package picosvg

import (
	"math"
)

// maxFlattenDepth bounds the recursive subdivision of curves.
const maxFlattenDepth = 16

// maxArcSegments bounds the number of line segments an arc is flattened into.
const maxArcSegments = 1024

// Closed returns true if the last subpath is closed.
func (p *Path) Closed() bool {
	return 0 < len(p.cmds) && p.cmds[len(p.cmds)-1] == CloseCmd
}

// Flat returns true if the path consists of lines only.
func (p *Path) Flat() bool {
	for _, cmd := range p.cmds {
		if cmd != MoveToCmd && cmd != LineToCmd && cmd != CloseCmd {
			return false
		}
	}
	return true
}

// Append adds the subpaths of q to p.
func (p *Path) Append(q *Path) *Path {
	if q.Empty() {
		return p
	}
	p.cmds = append(p.cmds, q.cmds...)
	p.d = append(p.d, q.d...)
	p.x0, p.y0 = q.x0, q.y0
	return p
}

// Join appends q to p without the leading MoveTo of q, continuing the current subpath.
func (p *Path) Join(q *Path) *Path {
	if q.Empty() {
		return p
	} else if p.Empty() || q.cmds[0] != MoveToCmd {
		return p.Append(q)
	}
	x, y := p.Pos()
	if !equal(x, q.d[0]) || !equal(y, q.d[1]) {
		p.LineTo(q.d[0], q.d[1])
	}
	p.cmds = append(p.cmds, q.cmds[1:]...)
	p.d = append(p.d, q.d[2:]...)
	return p
}

// Split returns the subpaths. Commands following a close without a MoveTo start a new subpath at the start of the closed one.
func (p *Path) Split() []*Path {
	ps := []*Path{}
	var q *Path
	var x0, y0 float64
	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		i += cmdLen(cmd)
		if cmd == MoveToCmd {
			x0, y0 = d[0], d[1]
			q = &Path{}
			ps = append(ps, q)
		} else if q == nil {
			q = &Path{}
			q.MoveTo(x0, y0)
			ps = append(ps, q)
		}
		q.cmds = append(q.cmds, cmd)
		q.d = append(q.d, d...)
		if cmd == MoveToCmd {
			q.x0, q.y0 = x0, y0
		} else if cmd == CloseCmd {
			q = nil
		}
	}
	return ps
}

// Reverse returns the path with the direction of every subpath reversed.
func (p *Path) Reverse() *Path {
	q := &Path{}
	for _, sub := range p.Split() {
		q.Append(sub.reverseSubpath())
	}
	return q
}

func (p *Path) reverseSubpath() *Path {
	type segment struct {
		cmd   PathCmd
		d     []float64
		start Point
	}
	segs := []segment{}
	var start, pos Point
	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		i += cmdLen(cmd)
		switch cmd {
		case MoveToCmd:
			start = Point{d[0], d[1]}
			pos = start
			continue
		case CloseCmd:
			if !pos.Equals(start) {
				segs = append(segs, segment{LineToCmd, []float64{start.X, start.Y}, pos})
			}
			pos = start
			continue
		}
		segs = append(segs, segment{cmd, d, pos})
		pos = Point{d[len(d)-2], d[len(d)-1]}
	}

	q := &Path{}
	q.MoveTo(pos.X, pos.Y)
	for k := len(segs) - 1; 0 <= k; k-- {
		seg := segs[k]
		end := seg.start
		if k == 0 && seg.cmd == LineToCmd && p.Closed() {
			break // Close returns to the start
		}
		switch seg.cmd {
		case LineToCmd:
			q.LineTo(end.X, end.Y)
		case QuadToCmd:
			q.QuadTo(seg.d[0], seg.d[1], end.X, end.Y)
		case CubeToCmd:
			q.CubeTo(seg.d[2], seg.d[3], seg.d[0], seg.d[1], end.X, end.Y)
		case ArcToCmd:
			q.ArcTo(seg.d[0], seg.d[1], seg.d[2], seg.d[3] == 1.0, seg.d[4] != 1.0, end.X, end.Y)
		}
	}
	if p.Closed() {
		q.Close()
	}
	return q
}

// Flatten returns the path with quadratic and cubic Béziers and arcs replaced by line segments, deviating at most tolerance from the curve.
func (p *Path) Flatten(tolerance float64) *Path {
	if p.Flat() {
		return p.Copy()
	}
	q := &Path{}
	var start, pos Point
	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		i += cmdLen(cmd)
		switch cmd {
		case MoveToCmd:
			q.MoveTo(d[0], d[1])
			start = Point{d[0], d[1]}
		case LineToCmd:
			q.LineTo(d[0], d[1])
		case QuadToCmd:
			cp1, cp2 := quadraticToCubicBezier(pos, Point{d[0], d[1]}, Point{d[2], d[3]})
			flattenCubicBezier(q, pos, cp1, cp2, Point{d[2], d[3]}, tolerance, maxFlattenDepth)
		case CubeToCmd:
			flattenCubicBezier(q, pos, Point{d[0], d[1]}, Point{d[2], d[3]}, Point{d[4], d[5]}, tolerance, maxFlattenDepth)
		case ArcToCmd:
			flattenEllipticArc(q, pos, d[0], d[1], d[2], d[3] == 1.0, d[4] == 1.0, Point{d[5], d[6]}, tolerance)
		case CloseCmd:
			q.Close()
			pos = start
			continue
		}
		pos = Point{d[len(d)-2], d[len(d)-1]}
	}
	return q
}

func quadraticToCubicBezier(p0, p1, p2 Point) (Point, Point) {
	c1 := p0.Interpolate(p1, 2.0/3.0)
	c2 := p2.Interpolate(p1, 2.0/3.0)
	return c1, c2
}

// splitCubicBezier splits the curve at t using de Casteljau's algorithm.
func splitCubicBezier(p0, p1, p2, p3 Point, t float64) (Point, Point, Point, Point, Point, Point, Point, Point) {
	pm := p1.Interpolate(p2, t)

	q0 := p0
	q1 := p0.Interpolate(p1, t)
	q2 := q1.Interpolate(pm, t)

	r3 := p3
	r2 := p2.Interpolate(p3, t)
	r1 := pm.Interpolate(r2, t)

	r0 := q2.Interpolate(r1, t)
	q3 := r0
	return q0, q1, q2, q3, r0, r1, r2, r3
}

// distanceToSegment returns the distance of p to the segment from a to b.
func distanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0.0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0.0, math.Min(1.0, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Interpolate(b, t)).Length()
}

// flattenCubicBezier subdivides the curve until its control points are within tolerance of the chord, which bounds the deviation of the curve.
func flattenCubicBezier(p *Path, p0, p1, p2, p3 Point, tolerance float64, depth int) {
	if depth == 0 || distanceToSegment(p1, p0, p3) <= tolerance && distanceToSegment(p2, p0, p3) <= tolerance {
		p.LineTo(p3.X, p3.Y)
		return
	}
	a0, a1, a2, a3, b0, b1, b2, b3 := splitCubicBezier(p0, p1, p2, p3, 0.5)
	flattenCubicBezier(p, a0, a1, a2, a3, tolerance, depth-1)
	flattenCubicBezier(p, b0, b1, b2, b3, tolerance, depth-1)
}

// flattenEllipticArc samples the arc at angles such that the sagitta of every segment stays within tolerance.
func flattenEllipticArc(p *Path, start Point, rx, ry, rot float64, large, sweep bool, end Point, tolerance float64) {
	if start.Equals(end) {
		return
	} else if equal(rx, 0.0) || equal(ry, 0.0) {
		p.LineTo(end.X, end.Y)
		return
	}
	rx, ry = arcRadii(start.X, start.Y, rx, ry, rot, end.X, end.Y)
	cx, cy, theta0, theta1 := arcToCenter(start.X, start.Y, rx, ry, rot, large, sweep, end.X, end.Y)
	theta0 *= math.Pi / 180.0
	theta1 *= math.Pi / 180.0

	r := math.Max(rx, ry)
	step := math.Pi / 2.0
	if tolerance < r {
		step = 2.0 * math.Acos(1.0-tolerance/r)
	}
	n := int(math.Ceil(math.Abs(theta1-theta0) / step))
	if n < 1 {
		n = 1
	} else if maxArcSegments < n {
		n = maxArcSegments
	}

	sinphi, cosphi := math.Sincos(rot * math.Pi / 180.0)
	for k := 1; k < n; k++ {
		theta := theta0 + (theta1-theta0)*float64(k)/float64(n)
		sintheta, costheta := math.Sincos(theta)
		x := cx + rx*costheta*cosphi - ry*sintheta*sinphi
		y := cy + rx*costheta*sinphi + ry*sintheta*cosphi
		p.LineTo(x, y)
	}
	p.LineTo(end.X, end.Y)
}

////////////////////////////////////////////////////////////////

// polygons returns the subpaths of a flattened path as closed polygons, open subpaths are closed implicitly. Repeated points are removed.
func (p *Path) polygons() [][]Point {
	polys := [][]Point{}
	var poly []Point
	var start Point
	flush := func() {
		if 1 < len(poly) && poly[0].Equals(poly[len(poly)-1]) {
			poly = poly[:len(poly)-1]
		}
		if 2 < len(poly) {
			polys = append(polys, poly)
		}
		poly = nil
	}
	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		i += cmdLen(cmd)
		switch cmd {
		case MoveToCmd:
			flush()
			start = Point{d[0], d[1]}
			poly = []Point{start}
		case CloseCmd:
			flush()
		default:
			if poly == nil {
				poly = []Point{start}
			}
			pt := Point{d[len(d)-2], d[len(d)-1]}
			if !pt.Equals(poly[len(poly)-1]) {
				poly = append(poly, pt)
			}
		}
	}
	flush()
	return polys
}

// polygonArea returns the signed area, positive for counter clockwise polygons in a y-up coordinate system.
func polygonArea(poly []Point) float64 {
	area := 0.0
	for k := range poly {
		a, b := poly[k], poly[(k+1)%len(poly)]
		area += a.PerpDot(b)
	}
	return area / 2.0
}

// CCW returns true if the flattened path encloses a positive area, that is if its filling subpaths run counter clockwise in a y-up coordinate system.
func (p *Path) CCW() bool {
	area := 0.0
	for _, poly := range p.Flatten(DefaultTolerance).polygons() {
		area += polygonArea(poly)
	}
	return 0.0 <= area
}

// rect returns the rectangle when the path is a single axis-aligned rectangle.
func (p *Path) rect() (Rect, bool) {
	if !p.Flat() {
		return Rect{}, false
	}
	polys := p.polygons()
	if len(polys) != 1 || len(polys[0]) != 4 {
		return Rect{}, false
	}
	poly := polys[0]
	horizontal := equal(poly[0].Y, poly[1].Y)
	for k := range poly {
		a, b := poly[k], poly[(k+1)%4]
		if horizontal && (!equal(a.Y, b.Y) || equal(a.X, b.X)) || !horizontal && (!equal(a.X, b.X) || equal(a.Y, b.Y)) {
			return Rect{}, false
		}
		horizontal = !horizontal
	}
	return p.Bounds(), true
}
