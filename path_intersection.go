package picosvg

import (
	"math"
	"sort"
)

// DefaultTolerance is the maximum deviation from the original curves when paths are flattened for boolean operations.
const DefaultTolerance = 0.01

// snapFactor is the inverse of the grid size intersection points are snapped to, so that coincident points compare equal.
const snapFactor = 1e9

const snapPrecision = 1.0 / snapFactor

// sampleOffset is the distance from an edge at which the inside of the operands is sampled.
const sampleOffset = 1e-6

// FillRule is the rule deciding which regions of a path are filled.
type FillRule int

// Fill rules.
const (
	NonZero FillRule = iota
	EvenOdd
)

// ParseFillRule parses the value of fill-rule and clip-rule.
func ParseFillRule(v string) FillRule {
	if v == "evenodd" {
		return EvenOdd
	}
	return NonZero
}

func (fillRule FillRule) Fills(windings int) bool {
	if fillRule == NonZero {
		return windings != 0
	}
	return windings%2 != 0
}

func (fillRule FillRule) String() string {
	if fillRule == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

type pathOp int

const (
	opSettle pathOp = iota
	opAND
	opOR
	opNOT
	opXOR
)

func (op pathOp) inResult(inP, inQ bool) bool {
	switch op {
	case opAND:
		return inP && inQ
	case opOR:
		return inP || inQ
	case opNOT:
		return inP && !inQ
	case opXOR:
		return inP != inQ
	}
	return inP
}

// Settle returns the outline of the filled area of p under the given fill rule. Filling subpaths run counter clockwise and holes clockwise in a y-up coordinate system, and subpaths do not overlap, so that the result fills identically under both fill rules. Curves are flattened.
func (p *Path) Settle(fillRule FillRule) *Path {
	return boolean(p, nil, opSettle, fillRule)
}

// And returns the intersection of the areas of p and q under the nonzero fill rule.
func (p *Path) And(q *Path) *Path {
	return boolean(p, q, opAND, NonZero)
}

// Or returns the union of the areas of p and q under the nonzero fill rule.
func (p *Path) Or(q *Path) *Path {
	return boolean(p, q, opOR, NonZero)
}

// Xor returns the areas covered by exactly one of p and q under the nonzero fill rule.
func (p *Path) Xor(q *Path) *Path {
	return boolean(p, q, opXOR, NonZero)
}

// Not returns the area of p not covered by q under the nonzero fill rule.
func (p *Path) Not(q *Path) *Path {
	return boolean(p, q, opNOT, NonZero)
}

// segment is a directed line segment of one of the operands.
type segment struct {
	a, b   Point
	ts     []float64 // positions of intersections along the segment
	minX   float64
	maxX   float64
	minY   float64
	maxY   float64
	isClip bool
}

func newSegment(a, b Point, isClip bool) *segment {
	return &segment{
		a:      a,
		b:      b,
		minX:   math.Min(a.X, b.X),
		maxX:   math.Max(a.X, b.X),
		minY:   math.Min(a.Y, b.Y),
		maxY:   math.Max(a.Y, b.Y),
		isClip: isClip,
	}
}

// edge is a piece of a segment between two consecutive intersections.
type edge struct {
	a, b Point
}

func snap(p Point) Point {
	return Point{
		math.Round(p.X*snapFactor) / snapFactor,
		math.Round(p.Y*snapFactor) / snapFactor,
	}
}

// pointLess orders points by X and then by Y.
func pointLess(p, q Point) bool {
	return p.X < q.X || p.X == q.X && p.Y < q.Y
}

// windings returns the winding number of the polygons around pt.
func windings(polys [][]Point, pt Point) int {
	n := 0
	for _, poly := range polys {
		for k := range poly {
			a, b := poly[k], poly[(k+1)%len(poly)]
			side := b.Sub(a).PerpDot(pt.Sub(a))
			if a.Y <= pt.Y {
				if pt.Y < b.Y && 0.0 < side {
					n++
				}
			} else if b.Y <= pt.Y && side < 0.0 {
				n--
			}
		}
	}
	return n
}

// intersectionLineLine appends the positions along both segments where they intersect, excluding their end points. Collinear overlaps yield the end points of the overlap.
func intersectionLineLine(a, b *segment) {
	da, db := a.b.Sub(a.a), b.b.Sub(b.a)
	la, lb := da.Length(), db.Length()
	if la == 0.0 || lb == 0.0 {
		return
	}
	const tEpsilon = 1e-9
	interior := func(t float64) bool {
		return tEpsilon < t && t < 1.0-tEpsilon
	}

	div := da.PerpDot(db)
	if math.Abs(div) <= Epsilon*la*lb {
		// parallel
		if snapPrecision < math.Abs(da.PerpDot(b.a.Sub(a.a)))/la {
			return
		}
		for _, pt := range []Point{b.a, b.b} {
			if t := pt.Sub(a.a).Dot(da) / (la * la); interior(t) {
				a.ts = append(a.ts, t)
			}
		}
		for _, pt := range []Point{a.a, a.b} {
			if t := pt.Sub(b.a).Dot(db) / (lb * lb); interior(t) {
				b.ts = append(b.ts, t)
			}
		}
		return
	}

	ta := db.PerpDot(a.a.Sub(b.a)) / div
	tb := da.PerpDot(a.a.Sub(b.a)) / div
	if ta < -tEpsilon || 1.0+tEpsilon < ta || tb < -tEpsilon || 1.0+tEpsilon < tb {
		return
	}
	if interior(ta) {
		a.ts = append(a.ts, ta)
	}
	if interior(tb) {
		b.ts = append(b.ts, tb)
	}
}

// boolean computes the outline of the area resulting from a boolean operation. Both operands are flattened and their subpaths implicitly closed. All segments are split at their mutual intersections, and every resulting edge is kept when the operation gives a different result on its two sides. The kept edges are oriented to have the result on their left and are chained into polygons.
func boolean(p, q *Path, op pathOp, fillRule FillRule) *Path {
	if op != opSettle {
		if p.Empty() {
			if op == opOR || op == opXOR {
				return q.Copy()
			}
			return &Path{}
		} else if q.Empty() {
			if op == opAND {
				return &Path{}
			}
			return p.Copy()
		}
	} else if p.Empty() {
		return &Path{}
	}

	ps := p.Flatten(DefaultTolerance).polygons()
	var qs [][]Point
	if q != nil {
		qs = q.Flatten(DefaultTolerance).polygons()
	}
	if op != opSettle && !polygonBounds(ps).Overlaps(polygonBounds(qs)) {
		switch op {
		case opAND:
			return &Path{}
		case opNOT:
			return boolean(p, nil, opSettle, fillRule)
		}
		return boolean(p.Copy().Append(q), nil, opSettle, fillRule)
	}

	segs := []*segment{}
	for _, poly := range ps {
		for k := range poly {
			segs = append(segs, newSegment(poly[k], poly[(k+1)%len(poly)], false))
		}
	}
	for _, poly := range qs {
		for k := range poly {
			segs = append(segs, newSegment(poly[k], poly[(k+1)%len(poly)], true))
		}
	}

	// sweep from left to right and only test segments with overlapping x-ranges
	sort.Slice(segs, func(i, j int) bool {
		return segs[i].minX < segs[j].minX
	})
	for i, a := range segs {
		for _, b := range segs[i+1:] {
			if a.maxX < b.minX {
				break
			} else if a.maxY < b.minY || b.maxY < a.minY {
				continue
			}
			intersectionLineLine(a, b)
		}
	}

	edges := []edge{}
	seen := map[edge]bool{}
	for _, seg := range segs {
		sort.Float64s(seg.ts)
		prev := snap(seg.a)
		for k := 0; k <= len(seg.ts); k++ {
			var pt Point
			if k == len(seg.ts) {
				pt = snap(seg.b)
			} else {
				pt = snap(seg.a.Interpolate(seg.b, seg.ts[k]))
			}
			if pt == prev {
				continue
			}
			e := edge{prev, pt}
			if pointLess(e.b, e.a) {
				e.a, e.b = e.b, e.a
			}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
			prev = pt
		}
	}

	inside := func(pt Point) bool {
		inP := fillRule.Fills(windings(ps, pt))
		inQ := false
		if op != opSettle {
			inQ = fillRule.Fills(windings(qs, pt))
		}
		return op.inResult(inP, inQ)
	}
	result := edges[:0]
	for _, e := range edges {
		mid := e.a.Interpolate(e.b, 0.5)
		n := e.b.Sub(e.a).Rot90CCW().Norm(sampleOffset)
		inLeft, inRight := inside(mid.Add(n)), inside(mid.Sub(n))
		if inLeft == inRight {
			continue
		} else if inRight {
			e.a, e.b = e.b, e.a
		}
		result = append(result, e)
	}
	return chainEdges(result)
}

func polygonBounds(polys [][]Point) Rect {
	first := true
	var x0, y0, x1, y1 float64
	for _, poly := range polys {
		for _, pt := range poly {
			if first {
				x0, y0, x1, y1 = pt.X, pt.Y, pt.X, pt.Y
				first = false
				continue
			}
			x0, y0 = math.Min(x0, pt.X), math.Min(y0, pt.Y)
			x1, y1 = math.Max(x1, pt.X), math.Max(y1, pt.Y)
		}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// chainEdges links directed edges into closed polygons. At vertices with several outgoing edges, the one turning most to the left is followed, which keeps polygons touching in a single point apart.
func chainEdges(edges []edge) *Path {
	sort.SliceStable(edges, func(i, j int) bool {
		return pointLess(edges[i].a, edges[j].a)
	})
	outgoing := map[Point][]int{}
	for i, e := range edges {
		outgoing[e.a] = append(outgoing[e.a], i)
	}

	p := &Path{}
	used := make([]bool, len(edges))
	for i := range edges {
		if used[i] {
			continue
		}
		start := edges[i].a
		poly := []Point{start}
		cur := i
		for {
			used[cur] = true
			end := edges[cur].b
			if end == start {
				break
			}
			poly = append(poly, end)

			dir := end.Sub(edges[cur].a)
			next, best := -1, math.Inf(-1)
			for _, j := range outgoing[end] {
				if used[j] {
					continue
				}
				if angle := dir.AngleBetween(edges[j].b.Sub(end)); best < angle {
					next, best = j, angle
				}
			}
			if next == -1 {
				break
			}
			cur = next
		}

		poly = removeCollinear(poly)
		if len(poly) < 3 {
			continue
		}
		p.MoveTo(poly[0].X, poly[0].Y)
		for _, pt := range poly[1:] {
			p.LineTo(pt.X, pt.Y)
		}
		p.Close()
	}
	return p
}

// removeCollinear removes vertices lying on the line through their neighbours, including spikes.
func removeCollinear(poly []Point) []Point {
	for changed := true; changed && 2 < len(poly); {
		changed = false
		for k := 0; k < len(poly) && 2 < len(poly); k++ {
			prev, cur, next := poly[(k+len(poly)-1)%len(poly)], poly[k], poly[(k+1)%len(poly)]
			d0, d1 := cur.Sub(prev), next.Sub(cur)
			if math.Abs(d0.PerpDot(d1)) <= Epsilon*d0.Length()*d1.Length() {
				poly = append(poly[:k:k], poly[k+1:]...)
				changed = true
				k--
			}
		}
	}
	return poly
}
