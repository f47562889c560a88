package picosvg

import (
	"math"
)

// roundTo rounds half away from zero to prec decimals. Negative zero becomes zero.
func roundTo(f float64, prec int) float64 {
	if prec < 0 {
		return f
	}
	pow := math.Pow(10.0, float64(prec))
	f = math.Round(f*pow) / pow
	if f == 0.0 {
		return 0.0
	}
	return f
}

// Round returns the path with all coordinates rounded to prec decimals. Arcs whose radii round to zero become lines.
func (p *Path) Round(prec int) *Path {
	q := &Path{}
	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		switch cmd {
		case MoveToCmd:
			q.MoveTo(roundTo(d[0], prec), roundTo(d[1], prec))
		case LineToCmd:
			q.LineTo(roundTo(d[0], prec), roundTo(d[1], prec))
		case QuadToCmd:
			q.QuadTo(roundTo(d[0], prec), roundTo(d[1], prec), roundTo(d[2], prec), roundTo(d[3], prec))
		case CubeToCmd:
			q.CubeTo(roundTo(d[0], prec), roundTo(d[1], prec), roundTo(d[2], prec), roundTo(d[3], prec), roundTo(d[4], prec), roundTo(d[5], prec))
		case ArcToCmd:
			rx, ry := roundTo(math.Abs(d[0]), prec), roundTo(math.Abs(d[1]), prec)
			x, y := roundTo(d[5], prec), roundTo(d[6], prec)
			if rx == 0.0 || ry == 0.0 {
				q.LineTo(x, y)
			} else {
				q.ArcTo(rx, ry, roundTo(d[2], prec), d[3] == 1.0, d[4] == 1.0, x, y)
			}
		case CloseCmd:
			q.Close()
		}
		i += cmdLen(cmd)
	}
	return q
}

// zeroLength returns true if the command does not move away from the current point (x,y).
func zeroLength(cmd PathCmd, d []float64, x, y float64) bool {
	if cmd == ArcToCmd {
		return d[5] == x && d[6] == y
	}
	for i := 0; i+1 < len(d); i += 2 {
		if d[i] != x || d[i+1] != y {
			return false
		}
	}
	return true
}

// compact drops zero-length segments and subpaths without segments, and merges consecutive line segments that continue in exactly the same direction. It reports whether anything changed.
func (p *Path) compact() (*Path, bool) {
	q := &Path{}
	changed := false

	var sub *Path // current subpath, starting with a moveto
	var x0, y0, x, y float64
	flush := func(close bool) {
		if sub != nil && 1 < len(sub.cmds) {
			q.cmds = append(q.cmds, sub.cmds...)
			q.d = append(q.d, sub.d...)
			if close {
				q.Close()
			}
			q.x0, q.y0 = sub.x0, sub.y0
		} else if sub != nil || close {
			changed = true
		}
		sub = nil
	}

	i := 0
	for _, cmd := range p.cmds {
		d := p.d[i : i+cmdLen(cmd)]
		i += cmdLen(cmd)
		switch cmd {
		case MoveToCmd:
			flush(false)
			sub = &Path{}
			sub.MoveTo(d[0], d[1])
			x0, y0, x, y = d[0], d[1], d[0], d[1]
			continue
		case CloseCmd:
			flush(true)
			x, y = x0, y0
			continue
		}

		if sub == nil {
			// drawing after a closepath starts at the subpath's start point
			sub = &Path{}
			sub.MoveTo(x, y)
			changed = true
		}
		if zeroLength(cmd, d, x, y) {
			changed = true
			continue
		}
		n := len(sub.cmds)
		if cmd == LineToCmd && 2 <= n && sub.cmds[n-1] == LineToCmd {
			k := len(sub.d)
			ax, ay := sub.d[k-4], sub.d[k-3]
			ab := Point{x - ax, y - ay}
			bc := Point{d[0] - x, d[1] - y}
			if ab.PerpDot(bc) == 0.0 && 0.0 < ab.Dot(bc) {
				sub.d[k-2], sub.d[k-1] = d[0], d[1]
				x, y = d[0], d[1]
				changed = true
				continue
			}
		}
		sub.cmds = append(sub.cmds, cmd)
		sub.d = append(sub.d, d...)
		x, y = d[len(d)-2], d[len(d)-1]
	}
	flush(false)
	return q, changed
}

// Simplify rounds the path to prec decimals, removes zero-length segments and subpaths, and merges collinear line segments. Applying it twice gives the same result.
func (p *Path) Simplify(prec int) *Path {
	q := p.Round(prec)
	for {
		var changed bool
		if q, changed = q.compact(); !changed {
			return q
		}
	}
}

func simplifyElement(el *Element, prec int) {
	if el.Kind == PathKind && el.Path != nil {
		el.Path = el.Path.Simplify(prec)
	}
	if el.Kind == PathKind || el.Kind == GroupKind {
		if w, ok := el.number("stroke-width"); ok {
			el.SetAttr("stroke-width", formatNumber(w, prec))
		}
	}
	if el.Kind == OpaqueKind || el.Kind == TextKind {
		return
	}

	children := el.Children[:0]
	for _, child := range el.Children {
		simplifyElement(child, prec)
		if (child.Kind == GroupKind || child.Kind == DefsKind) && len(child.Children) == 0 {
			continue
		}
		children = append(children, child)
	}
	el.Children = children
}

// simplifyPaths simplifies all path geometry and removes groups and definition containers that are left empty. Sibling order is preserved.
func simplifyPaths(doc *Document, opts *Options) error {
	simplifyElement(doc.Root, opts.precision())
	return nil
}
