package picosvg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tdewolff/test"
)

func TestParsePath(t *testing.T) {
	var tests = []struct {
		d        string
		expected string
	}{
		{"", ""},
		{"M10 20 L30 40", "M10,20 L30,40"},
		{"M10,20L30,40", "M10,20 L30,40"},
		{"m10 20 l10 10 h5 v-5 z", "M10,20 L20,30 L25,30 L25,25 Z"},
		{"M0 0 10 10 20 0", "M0,0 L10,10 L20,0"},
		{"m1 1 2 2", "M1,1 L3,3"},
		{"M0 0 H5 V5 h-5 Z m1 1 l1 0", "M0,0 L5,0 L5,5 L0,5 Z M1,1 L2,1"},
		{"M0,0 C1,1 2,2 3,3 S5,5 6,6", "M0,0 C1,1 2,2 3,3 C4,4 5,5 6,6"},
		{"M0,0 S1,1 2,2", "M0,0 C0,0 1,1 2,2"},
		{"M0 0 Q1 1 2 0 T4 0", "M0,0 Q1,1 2,0 Q3,-1 4,0"},
		{"M0 0 q1 1 2 0 t2 0", "M0,0 Q1,1 2,0 Q3,-1 4,0"},
		{"M0 0 A5 5 0 1 0 10 0", "M0,0 A5 5 0 1 0 10,0"},
		{"M0 0 a5,5 0 0110,0", "M0,0 A5 5 0 0 1 10,0"},
		{"M0 0 A-5 5 30 0 1 10 0", "M0,0 A5 5 30 0 1 10,0"},
		{"M0 0 A0 5 0 0 1 10 0", "M0,0 L10,0"},
		{"M.5-.5L1e1 0", "M.5,-.5 L10,0"},
	}
	for _, tt := range tests {
		t.Run(tt.d, func(t *testing.T) {
			p, err := ParsePath(tt.d)
			test.Error(t, err)
			test.String(t, p.String(), tt.expected)
		})
	}
}

func TestParsePathError(t *testing.T) {
	var tests = []struct {
		d      string
		prefix string
	}{
		{"L10 10", ""},
		{"M0 0 L10", "M0,0"},
		{"M0 0 L10 10 X", "M0,0 L10,10"},
		{"M0 0 Z 5 5", "M0,0 Z"},
		{"M0 0 A5 5 0 2 1 10 0", "M0,0"},
		{"M0 0 L1 1 L", "M0,0 L1,1"},
	}
	for _, tt := range tests {
		t.Run(tt.d, func(t *testing.T) {
			p, err := ParsePath(tt.d)
			test.That(t, err != nil)
			test.String(t, p.String(), tt.prefix)
		})
	}
}

func TestPathCommands(t *testing.T) {
	p, err := ParsePath("M0 0 L1 0 Q1 1 0 1 C0 2 1 2 1 3 A1 1 0 0 1 2 3 z")
	test.Error(t, err)
	if diff := cmp.Diff([]PathCmd{MoveToCmd, LineToCmd, QuadToCmd, CubeToCmd, ArcToCmd, CloseCmd}, p.cmds); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	test.T(t, p.Len(), 6)
	x, y := p.Pos()
	test.Float(t, x, 0.0)
	test.Float(t, y, 0.0)

	q := p.Copy()
	q.LineTo(5.0, 5.0)
	test.T(t, p.Len(), 6)
	test.T(t, q.Len(), 7)
}

func TestPathTransform(t *testing.T) {
	var tests = []struct {
		d        string
		m        Matrix
		expected string
	}{
		{"M0 0 L1 0 L1 1 L0 1 Z", Identity.Translate(1.0, 2.0).Scale(2.0, 2.0), "M1,2 L3,2 L3,4 L1,4 Z"},
		{"M0 0 Q1 1 2 0", Identity.Scale(1.0, -1.0), "M0,0 Q1,-1 2,0"},
		{"M0 0 A1 1 0 0 1 2 0", Identity.Scale(1.0, -1.0), "M0,0 A1 1 0 0 0 2,0"},
		{"M0 0 A1 2 0 0 1 2 0", Identity.Scale(3.0, 3.0), "M0,0 A6 3 90 0 1 6,0"},
		{"M0 0 L1 1", Identity.Scale(0.0, 1.0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.d, func(t *testing.T) {
			p, err := ParsePath(tt.d)
			test.Error(t, err)
			test.String(t, p.Transform(tt.m).ToSVG(3), tt.expected)
		})
	}
}

func TestPathBounds(t *testing.T) {
	var tests = []struct {
		d        string
		expected Rect
	}{
		{"", Rect{}},
		{"M0 0 L10 5", Rect{0, 0, 10, 5}},
		{"M0 0 Q5 10 10 0", Rect{0, 0, 10, 5}},
		{"M0 0 C0 10 10 10 10 0", Rect{0, 0, 10, 7.5}},
		{"M-1 0 A1 1 0 0 1 1 0", Rect{-1, -1, 2, 1}},
		{"M-1 0 A1 1 0 0 0 1 0", Rect{-1, 0, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.d, func(t *testing.T) {
			p, err := ParsePath(tt.d)
			test.Error(t, err)
			bounds := p.Bounds()
			test.Float(t, bounds.X, tt.expected.X)
			test.Float(t, bounds.Y, tt.expected.Y)
			test.Float(t, bounds.W, tt.expected.W)
			test.Float(t, bounds.H, tt.expected.H)
		})
	}
}

func TestParsePoints(t *testing.T) {
	points, err := parsePoints("1,2 3 4,,5")
	test.Error(t, err)
	test.T(t, points, []float64{1, 2, 3, 4, 5})

	points, err = parsePoints("1 2 x")
	test.That(t, err != nil)
	test.T(t, points, []float64{1, 2})
}
