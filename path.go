package picosvg

import (
	"math"
)

// PathCmd is a path command. All coordinates are absolute.
type PathCmd int

// Path commands.
const (
	MoveToCmd PathCmd = iota
	LineToCmd
	QuadToCmd
	CubeToCmd
	ArcToCmd
	CloseCmd
)

// cmdLen is the number of values a command consumes.
func cmdLen(cmd PathCmd) int {
	switch cmd {
	case MoveToCmd, LineToCmd:
		return 2
	case QuadToCmd:
		return 4
	case CubeToCmd:
		return 6
	case ArcToCmd:
		return 7
	}
	return 0
}

// Path is a sequence of absolute path commands. The zero value is an empty path.
type Path struct {
	cmds []PathCmd
	d    []float64
	x0   float64
	y0   float64
}

// Empty returns true if the path has no commands.
func (p *Path) Empty() bool {
	return p == nil || len(p.cmds) == 0
}

// Len returns the number of commands.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.cmds)
}

// Copy returns a deep copy.
func (p *Path) Copy() *Path {
	if p == nil {
		return &Path{}
	}
	q := &Path{x0: p.x0, y0: p.y0}
	q.cmds = append([]PathCmd{}, p.cmds...)
	q.d = append([]float64{}, p.d...)
	return q
}

// Pos returns the current point.
func (p *Path) Pos() (float64, float64) {
	if len(p.cmds) > 0 && p.cmds[len(p.cmds)-1] == CloseCmd {
		return p.x0, p.y0
	}
	if len(p.d) > 1 {
		return p.d[len(p.d)-2], p.d[len(p.d)-1]
	}
	return 0.0, 0.0
}

////////////////////////////////////////////////////////////////

func (p *Path) MoveTo(x, y float64) {
	p.cmds = append(p.cmds, MoveToCmd)
	p.d = append(p.d, x, y)
	p.x0, p.y0 = x, y
}

func (p *Path) LineTo(x, y float64) {
	p.cmds = append(p.cmds, LineToCmd)
	p.d = append(p.d, x, y)
}

func (p *Path) QuadTo(x1, y1, x, y float64) {
	p.cmds = append(p.cmds, QuadToCmd)
	p.d = append(p.d, x1, y1, x, y)
}

func (p *Path) CubeTo(x1, y1, x2, y2, x, y float64) {
	p.cmds = append(p.cmds, CubeToCmd)
	p.d = append(p.d, x1, y1, x2, y2, x, y)
}

// ArcTo defines an elliptical arc with radii rx and ry, with rot the rotation of the ellipse in degrees, to the end point (x,y). The large and sweep flags select one of the four possible arcs as in SVG.
func (p *Path) ArcTo(rx, ry, rot float64, large, sweep bool, x, y float64) {
	p.cmds = append(p.cmds, ArcToCmd)
	flarge := 0.0
	if large {
		flarge = 1.0
	}
	fsweep := 0.0
	if sweep {
		fsweep = 1.0
	}
	p.d = append(p.d, rx, ry, rot, flarge, fsweep, x, y)
}

func (p *Path) Close() {
	p.cmds = append(p.cmds, CloseCmd)
}

////////////////////////////////////////////////////////////////

// Transform returns the path transformed by m. A degenerate matrix yields an empty path.
func (p *Path) Transform(m Matrix) *Path {
	if m.IsDegenerate() {
		return &Path{}
	}
	flip := m.Det() < 0.0
	q := &Path{}
	i := 0
	for _, cmd := range p.cmds {
		switch cmd {
		case MoveToCmd:
			end := m.Dot(Point{p.d[i], p.d[i+1]})
			q.MoveTo(end.X, end.Y)
		case LineToCmd:
			end := m.Dot(Point{p.d[i], p.d[i+1]})
			q.LineTo(end.X, end.Y)
		case QuadToCmd:
			cp := m.Dot(Point{p.d[i], p.d[i+1]})
			end := m.Dot(Point{p.d[i+2], p.d[i+3]})
			q.QuadTo(cp.X, cp.Y, end.X, end.Y)
		case CubeToCmd:
			cp1 := m.Dot(Point{p.d[i], p.d[i+1]})
			cp2 := m.Dot(Point{p.d[i+2], p.d[i+3]})
			end := m.Dot(Point{p.d[i+4], p.d[i+5]})
			q.CubeTo(cp1.X, cp1.Y, cp2.X, cp2.Y, end.X, end.Y)
		case ArcToCmd:
			rx, ry, rot := m.transformEllipse(p.d[i], p.d[i+1], p.d[i+2])
			large := p.d[i+3] == 1.0
			sweep := p.d[i+4] == 1.0
			if flip {
				sweep = !sweep
			}
			end := m.Dot(Point{p.d[i+5], p.d[i+6]})
			q.ArcTo(rx, ry, rot, large, sweep, end.X, end.Y)
		case CloseCmd:
			q.Close()
		}
		i += cmdLen(cmd)
	}
	return q
}

// Bounds returns the exact bounding box of the path.
func (p *Path) Bounds() Rect {
	if p.Empty() {
		return Rect{}
	}
	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		xmin = math.Min(xmin, x)
		xmax = math.Max(xmax, x)
		ymin = math.Min(ymin, y)
		ymax = math.Max(ymax, y)
	}

	var x, y float64
	i := 0
	for _, cmd := range p.cmds {
		switch cmd {
		case MoveToCmd, LineToCmd:
			x, y = p.d[i], p.d[i+1]
			add(x, y)
		case QuadToCmd:
			for _, t := range quadExtrema(x, p.d[i], p.d[i+2]) {
				add(quadAt(x, p.d[i], p.d[i+2], t), quadAt(y, p.d[i+1], p.d[i+3], t))
			}
			for _, t := range quadExtrema(y, p.d[i+1], p.d[i+3]) {
				add(quadAt(x, p.d[i], p.d[i+2], t), quadAt(y, p.d[i+1], p.d[i+3], t))
			}
			x, y = p.d[i+2], p.d[i+3]
			add(x, y)
		case CubeToCmd:
			for _, t := range cubeExtrema(x, p.d[i], p.d[i+2], p.d[i+4]) {
				add(cubeAt(x, p.d[i], p.d[i+2], p.d[i+4], t), cubeAt(y, p.d[i+1], p.d[i+3], p.d[i+5], t))
			}
			for _, t := range cubeExtrema(y, p.d[i+1], p.d[i+3], p.d[i+5]) {
				add(cubeAt(x, p.d[i], p.d[i+2], p.d[i+4], t), cubeAt(y, p.d[i+1], p.d[i+3], p.d[i+5], t))
			}
			x, y = p.d[i+4], p.d[i+5]
			add(x, y)
		case ArcToCmd:
			rx, ry, rot := p.d[i], p.d[i+1], p.d[i+2]
			large, sweep := p.d[i+3] == 1.0, p.d[i+4] == 1.0
			x1, y1 := p.d[i+5], p.d[i+6]
			if rx != 0.0 && ry != 0.0 {
				cx, cy, theta0, theta1 := arcToCenter(x, y, rx, ry, rot, large, sweep, x1, y1)
				rx, ry = arcRadii(x, y, rx, ry, rot, x1, y1)
				sinphi, cosphi := math.Sincos(rot * math.Pi / 180.0)
				tx := math.Atan2(-ry*sinphi, rx*cosphi)
				ty := math.Atan2(ry*cosphi, rx*sinphi)
				for _, t := range []float64{tx, tx + math.Pi, ty, ty + math.Pi} {
					if angleBetween(t, theta0*math.Pi/180.0, theta1*math.Pi/180.0) {
						sint, cost := math.Sincos(t)
						add(cx+rx*cost*cosphi-ry*sint*sinphi, cy+rx*cost*sinphi+ry*sint*cosphi)
					}
				}
			}
			x, y = x1, y1
			add(x, y)
		case CloseCmd:
			x, y = p.x0, p.y0
		}
		i += cmdLen(cmd)
	}
	return Rect{xmin, ymin, xmax - xmin, ymax - ymin}
}

func quadAt(p0, p1, p2, t float64) float64 {
	s := 1.0 - t
	return s*s*p0 + 2.0*s*t*p1 + t*t*p2
}

func quadExtrema(p0, p1, p2 float64) []float64 {
	den := p0 - 2.0*p1 + p2
	if den == 0.0 {
		return nil
	}
	if t := (p0 - p1) / den; 0.0 < t && t < 1.0 {
		return []float64{t}
	}
	return nil
}

func cubeAt(p0, p1, p2, p3, t float64) float64 {
	s := 1.0 - t
	return s*s*s*p0 + 3.0*s*s*t*p1 + 3.0*s*t*t*p2 + t*t*t*p3
}

func cubeExtrema(p0, p1, p2, p3 float64) []float64 {
	// derivative is a quadratic a·t²+b·t+c
	a := -p0 + 3.0*p1 - 3.0*p2 + p3
	b := 2.0 * (p0 - 2.0*p1 + p2)
	c := p1 - p0
	var ts []float64
	if equal(a, 0.0) {
		if !equal(b, 0.0) {
			ts = append(ts, -c/b)
		}
	} else if disc := b*b - 4.0*a*c; 0.0 <= disc {
		sq := math.Sqrt(disc)
		ts = append(ts, (-b+sq)/(2.0*a), (-b-sq)/(2.0*a))
	}
	valid := ts[:0]
	for _, t := range ts {
		if 0.0 < t && t < 1.0 {
			valid = append(valid, t)
		}
	}
	return valid
}

// angleNorm returns the angle theta in the range [0,2PI).
func angleNorm(theta float64) float64 {
	theta = math.Mod(theta, 2.0*math.Pi)
	if theta < 0.0 {
		theta += 2.0 * math.Pi
	}
	return theta
}

// angleBetween is true when theta is in range [lower,upper] or [upper,lower], including the end points.
func angleBetween(theta, lower, upper float64) bool {
	if upper < lower {
		lower, upper = upper, lower
	}
	sweep := upper - lower
	if 2.0*math.Pi <= sweep {
		return true
	}
	theta = angleNorm(theta - lower)
	return theta <= sweep
}

// arcRadii scales up the radii when they are too small to span the end points, as SVG prescribes.
func arcRadii(x1, y1, rx, ry, rot, x2, y2 float64) (float64, float64) {
	rx, ry = math.Abs(rx), math.Abs(ry)
	sinphi, cosphi := math.Sincos(rot * math.Pi / 180.0)
	x1p := cosphi*(x1-x2)/2.0 + sinphi*(y1-y2)/2.0
	y1p := -sinphi*(x1-x2)/2.0 + cosphi*(y1-y2)/2.0
	if lambda := x1p*x1p/rx/rx + y1p*y1p/ry/ry; 1.0 < lambda {
		rx *= math.Sqrt(lambda)
		ry *= math.Sqrt(lambda)
	}
	return rx, ry
}

// arcToCenter converts the endpoint arc parametrization to the center parametrization, returning the center and the start and end angles in degrees.
func arcToCenter(x1, y1, rx, ry, rot float64, large, sweep bool, x2, y2 float64) (float64, float64, float64, float64) {
	// see https://www.w3.org/TR/SVG/implnote.html#ArcImplementationNotes
	if x1 == x2 && y1 == y2 {
		return x1, y1, 0, 0
	}
	rx, ry = arcRadii(x1, y1, rx, ry, rot, x2, y2)

	rot *= math.Pi / 180.0
	x1p := math.Cos(rot)*(x1-x2)/2 + math.Sin(rot)*(y1-y2)/2
	y1p := -math.Sin(rot)*(x1-x2)/2 + math.Cos(rot)*(y1-y2)/2

	sq := (rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p) / (rx*rx*y1p*y1p + ry*ry*x1p*x1p)
	if sq < 0 {
		sq = 0
	}
	coef := math.Sqrt(sq)
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := coef * -ry * x1p / rx
	cx := math.Cos(rot)*cxp - math.Sin(rot)*cyp + (x1+x2)/2
	cy := math.Sin(rot)*cxp + math.Cos(rot)*cyp + (y1+y2)/2

	// specify U and V vectors; theta = arccos(U*V / sqrt(U*U + V*V))
	ux := (x1p - cxp) / rx
	uy := (y1p - cyp) / ry
	vx := -(x1p + cxp) / rx
	vy := -(y1p + cyp) / ry

	theta := math.Acos(math.Max(-1.0, math.Min(1.0, ux/math.Sqrt(ux*ux+uy*uy))))
	if uy < 0 {
		theta = -theta
	}
	theta *= 180 / math.Pi

	delta := math.Acos(math.Max(-1.0, math.Min(1.0, (ux*vx+uy*vy)/math.Sqrt((ux*ux+uy*uy)*(vx*vx+vy*vy)))))
	if ux*vy-uy*vx < 0 {
		delta = -delta
	}
	delta *= 180 / math.Pi
	if !sweep && delta > 0 {
		delta -= 360
	} else if sweep && delta < 0 {
		delta += 360
	}
	return cx, cy, theta, theta + delta
}
