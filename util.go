package picosvg

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for floating point comparisons.
const Epsilon = 1e-10

// degenerateEpsilon is the determinant magnitude under which a transformation collapses geometry.
const degenerateEpsilon = 1e-9

// equal returns true if a and b are equal with tolerance Epsilon.
func equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

////////////////////////////////////////////////////////////////

// Point is a coordinate in user space.
type Point struct {
	X, Y float64
}

// Equals returns true if p and q are equal within Epsilon.
func (p Point) Equals(q Point) bool {
	return equal(p.X, q.X) && equal(p.Y, q.Y)
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Mul(f float64) Point {
	return Point{f * p.X, f * p.Y}
}

// Dot returns the dot product between p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// PerpDot returns the perp dot product between p and q, i.e. the z component of their cross product.
func (p Point) PerpDot(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

func (p Point) Neg() Point {
	return Point{-p.X, -p.Y}
}

// Rot90CW rotates the vector OP by 90 degrees clockwise in a y-up coordinate system.
func (p Point) Rot90CW() Point {
	return Point{p.Y, -p.X}
}

// Rot90CCW rotates the vector OP by 90 degrees counter clockwise in a y-up coordinate system.
func (p Point) Rot90CCW() Point {
	return Point{-p.Y, p.X}
}

func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Norm returns the vector OP scaled to the given length. The zero vector stays zero.
func (p Point) Norm(length float64) Point {
	d := p.Length()
	if equal(d, 0.0) {
		return Point{}
	}
	return Point{p.X / d * length, p.Y / d * length}
}

// AngleBetween returns the signed angle between OP and OQ in radians.
func (p Point) AngleBetween(q Point) float64 {
	return math.Atan2(p.PerpDot(q), p.Dot(q))
}

// Interpolate returns the point at t along the segment from p to q.
func (p Point) Interpolate(q Point, t float64) Point {
	return Point{(1.0-t)*p.X + t*q.X, (1.0-t)*p.Y + t*q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

////////////////////////////////////////////////////////////////

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Empty returns true if the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0.0 || r.H <= 0.0
}

// Add returns the union of both rectangles. Rectangles without area are ignored.
func (r Rect) Add(q Rect) Rect {
	if q.W == 0.0 && q.H == 0.0 && q.X == 0.0 && q.Y == 0.0 {
		return r
	} else if r.W == 0.0 && r.H == 0.0 && r.X == 0.0 && r.Y == 0.0 {
		return q
	}
	x0 := math.Min(r.X, q.X)
	y0 := math.Min(r.Y, q.Y)
	x1 := math.Max(r.X+r.W, q.X+q.W)
	y1 := math.Max(r.Y+r.H, q.Y+q.H)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Contains returns true if q lies within r.
func (r Rect) Contains(q Rect) bool {
	return r.X-Epsilon <= q.X && q.X+q.W <= r.X+r.W+Epsilon && r.Y-Epsilon <= q.Y && q.Y+q.H <= r.Y+r.H+Epsilon
}

// Overlaps returns true if r and q share an interior point.
func (r Rect) Overlaps(q Rect) bool {
	return q.X < r.X+r.W && r.X < q.X+q.W && q.Y < r.Y+r.H && r.Y < q.Y+q.H
}

// Expand grows the rectangle by d in all directions.
func (r Rect) Expand(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.W + 2.0*d, r.H + 2.0*d}
}

// ToMatrix returns the transformation that maps the unit square onto r, as used by objectBoundingBox units.
func (r Rect) ToMatrix() Matrix {
	return Matrix{
		{r.W, 0.0, r.X},
		{0.0, r.H, r.Y},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g; %g]--[%g; %g]", r.X, r.Y, r.X+r.W, r.Y+r.H)
}

////////////////////////////////////////////////////////////////

// Matrix is used for affine transformations. Concatenation is evaluated right-to-left, so that Identity.Translate(20,0).Scale(2,2) first scales and then translates, which matches the order of an SVG transform list.
type Matrix [2][3]float64

// Identity is the identity transformation.
var Identity = Matrix{
	{1.0, 0.0, 0.0},
	{0.0, 1.0, 0.0},
}

// Mul returns m×q.
func (m Matrix) Mul(q Matrix) Matrix {
	return Matrix{{
		m[0][0]*q[0][0] + m[0][1]*q[1][0],
		m[0][0]*q[0][1] + m[0][1]*q[1][1],
		m[0][0]*q[0][2] + m[0][1]*q[1][2] + m[0][2],
	}, {
		m[1][0]*q[0][0] + m[1][1]*q[1][0],
		m[1][0]*q[0][1] + m[1][1]*q[1][1],
		m[1][0]*q[0][2] + m[1][1]*q[1][2] + m[1][2],
	}}
}

// Dot applies the transformation to point p.
func (m Matrix) Dot(p Point) Point {
	return Point{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2],
	}
}

func (m Matrix) Translate(x, y float64) Matrix {
	return m.Mul(Matrix{
		{1.0, 0.0, x},
		{0.0, 1.0, y},
	})
}

// Rotate rotates by rot degrees, positive angles turn the x-axis towards the y-axis.
func (m Matrix) Rotate(rot float64) Matrix {
	sintheta, costheta := math.Sincos(rot * math.Pi / 180.0)
	return m.Mul(Matrix{
		{costheta, -sintheta, 0.0},
		{sintheta, costheta, 0.0},
	})
}

// RotateAt rotates by rot degrees around (x,y).
func (m Matrix) RotateAt(rot, x, y float64) Matrix {
	return m.Translate(x, y).Rotate(rot).Translate(-x, -y)
}

// Scale scales by x and y. Zero factors are allowed and result in a degenerate matrix.
func (m Matrix) Scale(x, y float64) Matrix {
	return m.Mul(Matrix{
		{x, 0.0, 0.0},
		{0.0, y, 0.0},
	})
}

// SkewX skews along the x-axis by rot degrees.
func (m Matrix) SkewX(rot float64) Matrix {
	return m.Mul(Matrix{
		{1.0, math.Tan(rot * math.Pi / 180.0), 0.0},
		{0.0, 1.0, 0.0},
	})
}

// SkewY skews along the y-axis by rot degrees.
func (m Matrix) SkewY(rot float64) Matrix {
	return m.Mul(Matrix{
		{1.0, 0.0, 0.0},
		{math.Tan(rot * math.Pi / 180.0), 1.0, 0.0},
	})
}

func (m Matrix) Det() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// IsIdentity returns true if m equals the identity within Epsilon.
func (m Matrix) IsIdentity() bool {
	return equal(m[0][0], 1.0) && equal(m[0][1], 0.0) && equal(m[0][2], 0.0) &&
		equal(m[1][0], 0.0) && equal(m[1][1], 1.0) && equal(m[1][2], 0.0)
}

// IsDegenerate returns true if m collapses the plane onto a line or point.
func (m Matrix) IsDegenerate() bool {
	return math.Abs(m.Det()) < degenerateEpsilon
}

// Inv returns the inverse of m. The second return value is false when m is degenerate.
func (m Matrix) Inv() (Matrix, bool) {
	det := m.Det()
	if math.Abs(det) < degenerateEpsilon {
		return Matrix{}, false
	}
	return Matrix{{
		m[1][1] / det,
		-m[0][1] / det,
		-(m[1][1]*m[0][2] - m[0][1]*m[1][2]) / det,
	}, {
		-m[1][0] / det,
		m[0][0] / det,
		-(-m[1][0]*m[0][2] + m[0][0]*m[1][2]) / det,
	}}, true
}

// scaleFactor returns the geometric mean scaling of m, used for stroke widths.
func (m Matrix) scaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

// transformEllipse maps an ellipse with radii rx,ry rotated by rot degrees through the linear part of m, and returns the radii and rotation of the resulting ellipse.
func (m Matrix) transformEllipse(rx, ry, rot float64) (float64, float64, float64) {
	sinphi, cosphi := math.Sincos(rot * math.Pi / 180.0)
	// columns of m·R(rot)·S(rx,ry)
	a := (m[0][0]*cosphi + m[0][1]*sinphi) * rx
	b := (m[1][0]*cosphi + m[1][1]*sinphi) * rx
	c := (-m[0][0]*sinphi + m[0][1]*cosphi) * ry
	d := (-m[1][0]*sinphi + m[1][1]*cosphi) * ry

	// eigen decomposition of the symmetric matrix E·Eᵀ
	p := a*a + c*c
	q := a*b + c*d
	r := b*b + d*d
	mid := (p + r) / 2.0
	diff := math.Sqrt((p-r)*(p-r)/4.0 + q*q)
	l1, l2 := mid+diff, math.Max(mid-diff, 0.0)
	theta := 0.5 * math.Atan2(2.0*q, p-r)
	if equal(q, 0.0) && equal(p, r) {
		theta = 0.0
	}
	return math.Sqrt(l1), math.Sqrt(l2), theta * 180.0 / math.Pi
}

// String returns the matrix in SVG transform syntax.
func (m Matrix) String() string {
	return fmt.Sprintf("matrix(%v %v %v %v %v %v)", m[0][0], m[1][0], m[0][1], m[1][1], m[0][2], m[1][2])
}
