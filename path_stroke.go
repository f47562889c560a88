package picosvg

import (
	"math"
)

// Capper implements Cap, with p the path to append to, halfWidth the half width of the stroke, pivot the point around which to construct a cap, and n0 the normal at the end of the path. The length of n0 equals halfWidth.
type Capper interface {
	Cap(*Path, float64, Point, Point)
}

type CapperFunc func(*Path, float64, Point, Point)

func (f CapperFunc) Cap(p *Path, halfWidth float64, pivot, n0 Point) {
	f(p, halfWidth, pivot, n0)
}

// RoundCapper caps the start or end of a path by a round cap.
var RoundCapper Capper = CapperFunc(roundCapper)

func roundCapper(p *Path, halfWidth float64, pivot, n0 Point) {
	end := pivot.Sub(n0)
	p.ArcTo(halfWidth, halfWidth, 0.0, false, true, end.X, end.Y)
}

// ButtCapper caps the start or end of a path by a butt cap.
var ButtCapper Capper = CapperFunc(buttCapper)

func buttCapper(p *Path, halfWidth float64, pivot, n0 Point) {
	end := pivot.Sub(n0)
	p.LineTo(end.X, end.Y)
}

// SquareCapper caps the start or end of a path by a square cap.
var SquareCapper Capper = CapperFunc(squareCapper)

func squareCapper(p *Path, halfWidth float64, pivot, n0 Point) {
	e := n0.Rot90CCW()
	corner1 := pivot.Add(e).Add(n0)
	corner2 := pivot.Add(e).Sub(n0)
	end := pivot.Sub(n0)
	p.LineTo(corner1.X, corner1.Y)
	p.LineTo(corner2.X, corner2.Y)
	p.LineTo(end.X, end.Y)
}

////////////////

// Joiner implements Join, with rhs the right path and lhs the left path to append to, pivot the point shared by both segments, and n0 and n1 the normals at the end of the first and the start of the second segment. The length of n0 and n1 equals halfWidth.
type Joiner interface {
	Join(*Path, *Path, float64, Point, Point, Point)
}

type JoinerFunc func(*Path, *Path, float64, Point, Point, Point)

func (f JoinerFunc) Join(rhs, lhs *Path, halfWidth float64, pivot, n0, n1 Point) {
	f(rhs, lhs, halfWidth, pivot, n0, n1)
}

// BevelJoiner connects two segments by a linear join.
var BevelJoiner Joiner = JoinerFunc(bevelJoiner)

func bevelJoiner(rhs, lhs *Path, halfWidth float64, pivot, n0, n1 Point) {
	if n0.Equals(n1) {
		return
	}

	rEnd := pivot.Add(n1)
	lEnd := pivot.Sub(n1)
	rhs.LineTo(rEnd.X, rEnd.Y)
	lhs.LineTo(lEnd.X, lEnd.Y)
}

// RoundJoiner connects two segments by a round join.
var RoundJoiner Joiner = JoinerFunc(roundJoiner)

func roundJoiner(rhs, lhs *Path, halfWidth float64, pivot, n0, n1 Point) {
	if n0.Equals(n1) {
		return
	}

	rEnd := pivot.Add(n1)
	lEnd := pivot.Sub(n1)
	cw := n0.Rot90CW().Dot(n1) >= 0.0
	if cw { // bend to the right, ie. CW
		rhs.LineTo(rEnd.X, rEnd.Y)
		lhs.ArcTo(halfWidth, halfWidth, 0.0, false, false, lEnd.X, lEnd.Y)
	} else { // bend to the left, ie. CCW
		rhs.ArcTo(halfWidth, halfWidth, 0.0, false, true, rEnd.X, rEnd.Y)
		lhs.LineTo(lEnd.X, lEnd.Y)
	}
}

// MiterJoiner connects two segments by extending their outer edges until they meet. A miter longer than limit times the stroke width falls back to a bevel join, as the stroke-miterlimit property prescribes.
func MiterJoiner(limit float64) Joiner {
	return miterJoiner{BevelJoiner, limit}
}

type miterJoiner struct {
	gapJoiner Joiner
	limit     float64 // ratio of the miter length to the stroke width
}

func (j miterJoiner) Join(rhs, lhs *Path, halfWidth float64, pivot, n0, n1 Point) {
	if n0.Equals(n1) {
		return
	} else if n0.Equals(n1.Neg()) {
		bevelJoiner(rhs, lhs, halfWidth, pivot, n0, n1)
		return
	}

	cw := n0.Rot90CW().Dot(n1) >= 0.0
	hw := halfWidth
	if cw {
		hw = -hw // the miter lies on the left
	}

	theta := n0.AngleBetween(n1) / 2.0
	d := hw / math.Cos(theta)
	if halfWidth*j.limit < math.Abs(d) {
		j.gapJoiner.Join(rhs, lhs, halfWidth, pivot, n0, n1)
		return
	}
	mid := pivot.Add(n0.Add(n1).Norm(d))

	rEnd := pivot.Add(n1)
	lEnd := pivot.Sub(n1)
	if cw { // bend to the right, ie. CW
		lhs.LineTo(mid.X, mid.Y)
	} else {
		rhs.LineTo(mid.X, mid.Y)
	}
	rhs.LineTo(rEnd.X, rEnd.Y)
	lhs.LineTo(lEnd.X, lEnd.Y)
}

type pathStrokeState struct {
	p0, p1 Point // position of start and end
	n      Point // normal of the segment
}

// offsetSegment returns the rhs and lhs paths from offsetting a flattened subpath. For closed subpaths both are closed, otherwise rhs holds the complete outline including the caps and lhs is nil.
func offsetSegment(p *Path, halfWidth float64, cr Capper, jr Joiner) (*Path, *Path) {
	closed := false
	states := []pathStrokeState{}
	var start, end Point
	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		i += cmdLen(cmd)
		switch cmd {
		case MoveToCmd:
			end = Point{d[0], d[1]}
		case LineToCmd:
			end = Point{d[0], d[1]}
			if end.Equals(start) {
				continue
			}
			states = append(states, pathStrokeState{
				p0: start,
				p1: end,
				n:  end.Sub(start).Rot90CW().Norm(halfWidth),
			})
		case CloseCmd:
			if 0 < len(states) {
				end = states[0].p0
			}
			if !end.Equals(start) {
				states = append(states, pathStrokeState{
					p0: start,
					p1: end,
					n:  end.Sub(start).Rot90CW().Norm(halfWidth),
				})
			}
			closed = true
		}
		start = end
	}
	if len(states) == 0 {
		return nil, nil
	}

	rhs, lhs := &Path{}, &Path{}
	rStart := states[0].p0.Add(states[0].n)
	lStart := states[0].p0.Sub(states[0].n)
	rhs.MoveTo(rStart.X, rStart.Y)
	lhs.MoveTo(lStart.X, lStart.Y)

	for i, cur := range states {
		rEnd := cur.p1.Add(cur.n)
		lEnd := cur.p1.Sub(cur.n)
		rhs.LineTo(rEnd.X, rEnd.Y)
		lhs.LineTo(lEnd.X, lEnd.Y)

		// join the cur and next segments on the outside of the bend
		if i+1 < len(states) || closed {
			next := states[0]
			if i+1 < len(states) {
				next = states[i+1]
			}
			jr.Join(rhs, lhs, halfWidth, cur.p1, cur.n, next.n)
		}
	}

	if closed {
		rhs.Close()
		lhs.Close()
		return rhs, lhs
	}

	// default to CCW direction
	lhs = lhs.Reverse()
	cr.Cap(rhs, halfWidth, states[len(states)-1].p1, states[len(states)-1].n)
	rhs.Join(lhs)
	cr.Cap(rhs, halfWidth, states[0].p0, states[0].n.Neg())
	rhs.Close()
	return rhs, nil
}

// Stroke converts a flattened path into the outline of a stroke of width w. It uses cr to cap the start and end of open subpaths, and jr to join segments. Closed subpaths are joined at their start instead of capped. The outline may overlap itself, use Settle to remove the overlaps.
func (p *Path) Stroke(w float64, cr Capper, jr Joiner) *Path {
	sp := &Path{}
	halfWidth := w / 2.0
	if halfWidth <= 0.0 {
		return sp
	}
	for _, ps := range p.Split() {
		rhs, lhs := offsetSegment(ps, halfWidth, cr, jr)
		if rhs != nil && lhs != nil { // closed path
			// inner path should go opposite direction to cancel the outer path
			if ps.CCW() {
				lhs = lhs.Reverse()
			} else {
				rhs = rhs.Reverse()
			}
		}
		if rhs != nil {
			sp.Append(rhs)
		}
		if lhs != nil {
			sp.Append(lhs)
		}
	}
	return sp
}

// Dash returns the dashed version of a flattened path, where d alternates between the lengths of dashes and gaps and offset shifts the start of the pattern. An odd number of lengths is repeated once. Invalid patterns leave the path unchanged.
func (p *Path) Dash(offset float64, d ...float64) *Path {
	if len(d)%2 == 1 {
		d = append(d, d...)
	}
	total := 0.0
	for _, l := range d {
		if l < 0.0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return p
		}
		total += l
	}
	if total <= 0.0 {
		return p
	}
	offset = math.Mod(offset, total)
	if offset < 0.0 {
		offset += total
	}

	q := &Path{}
	for _, sub := range p.Split() {
		pts := []Point{}
		k := 0
		for _, cmd := range sub.cmds {
			if cmd == MoveToCmd || cmd == LineToCmd {
				pts = append(pts, Point{sub.d[k], sub.d[k+1]})
			}
			k += cmdLen(cmd)
		}
		if sub.Closed() {
			pts = append(pts, pts[0])
		}

		i, pos := 0, offset
		for d[i] <= pos {
			pos -= d[i]
			i = (i + 1) % len(d)
		}
		remaining := d[i] - pos
		on := i%2 == 0
		if on {
			q.MoveTo(pts[0].X, pts[0].Y)
		}
		for k := 1; k < len(pts); k++ {
			a, b := pts[k-1], pts[k]
			l := b.Sub(a).Length()
			t := 0.0
			for remaining < l-t {
				t += remaining
				pt := a.Interpolate(b, t/l)
				if on {
					q.LineTo(pt.X, pt.Y)
				} else {
					q.MoveTo(pt.X, pt.Y)
				}
				on = !on
				i = (i + 1) % len(d)
				remaining = d[i]
			}
			remaining -= l - t
			if on {
				q.LineTo(b.X, b.Y)
			}
		}
	}
	return q
}
