package picosvg

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestShapes(t *testing.T) {
	test.T(t, Rectangle(0.0, 0.0, 0.0, 10.0).Empty(), true)
	test.String(t, Rectangle(10.0, 11.0, 17.0, 11.0).String(), "M10,11 L27,11 L27,22 L10,22 Z")
	test.String(t, RoundedRectangle(0.0, 0.0, 4.0, 4.0, 0.0, 1.0).String(), "M0,0 L4,0 L4,4 L0,4 Z")
	test.String(t, RoundedRectangle(0.0, 0.0, 4.0, 4.0, 1.0, 1.0).ToSVG(3), "M1,0 L3,0 C3.552,0 4,.448 4,1 L4,3 C4,3.552 3.552,4 3,4 L1,4 C.448,4 0,3.552 0,3 L0,1 C0,.448 .448,0 1,0 Z")
	test.String(t, RoundedRectangle(0.0, 0.0, 2.0, 2.0, 5.0, 5.0).ToSVG(3), "M1,0 C1.552,0 2,.448 2,1 C2,1.552 1.552,2 1,2 C.448,2 0,1.552 0,1 C0,.448 .448,0 1,0 Z")
	test.T(t, Circle(0.0, 0.0, 0.0).Empty(), true)
	test.String(t, Circle(5.0, 5.0, 2.0).String(), "M7,5 A2 2 0 0 1 5,7 A2 2 0 0 1 3,5 A2 2 0 0 1 5,3 A2 2 0 0 1 7,5 Z")
	test.String(t, Ellipse(0.0, 0.0, 2.0, 1.0).String(), "M2,0 A2 1 0 0 1 0,1 A2 1 0 0 1 -2,0 A2 1 0 0 1 0,-1 A2 1 0 0 1 2,0 Z")
	test.T(t, Ellipse(0.0, 0.0, 2.0, -1.0).Empty(), true)
	test.String(t, Line(1.0, 2.0, 3.0, 4.0).String(), "M1,2 L3,4")
	test.String(t, Polyline([]float64{1, 2, 3, 4, 5}).String(), "M1,2 L3,4")
	test.String(t, Polygon([]float64{0, 0, 1, 0, 1, 1}).String(), "M0,0 L1,0 L1,1 Z")
	test.T(t, Polygon(nil).Empty(), true)
}

func TestShapePath(t *testing.T) {
	var tests = []struct {
		tag      string
		attrs    []Attr
		expected string
	}{
		{"rect", []Attr{{"x", "10"}, {"y", "11"}, {"width", "17"}, {"height", "11"}}, "M10,11 L27,11 L27,22 L10,22 Z"},
		{"rect", []Attr{{"width", "10"}, {"height", "-1"}}, ""},
		{"rect", []Attr{{"width", "4"}, {"height", "2"}, {"ry", "auto"}, {"rx", "1"}}, "M1,0 L3,0 C3.552,0 4,.448 4,1 C4,1.552 3.552,2 3,2 L1,2 C.448,2 0,1.552 0,1 C0,.448 .448,0 1,0 Z"},
		{"circle", []Attr{{"cx", "1"}, {"cy", "1"}, {"r", "1"}}, "M2,1 A1 1 0 0 1 1,2 A1 1 0 0 1 0,1 A1 1 0 0 1 1,0 A1 1 0 0 1 2,1 Z"},
		{"ellipse", []Attr{{"rx", "2"}}, "M2,0 A2 2 0 0 1 0,2 A2 2 0 0 1 -2,0 A2 2 0 0 1 0,-2 A2 2 0 0 1 2,0 Z"},
		{"line", []Attr{{"x2", "5"}, {"y2", "5"}}, "M0,0 L5,5"},
		{"polyline", []Attr{{"points", "0,0 1,1 2"}}, "M0,0 L1,1"},
		{"polygon", []Attr{{"points", "0 0 1 0 1 1"}}, "M0,0 L1,0 L1,1 Z"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			el := &Element{Tag: tt.tag, Attrs: tt.attrs}
			el.Kind, el.Shape = classify(tt.tag, GroupKind)
			p, err := shapePath(el)
			test.Error(t, err)
			test.String(t, p.ToSVG(3), tt.expected)
		})
	}
}
