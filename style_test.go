package picosvg

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestParseDeclarations(t *testing.T) {
	var tests = []struct {
		style    string
		expected []Declaration
	}{
		{"", []Declaration{}},
		{"fill:red", []Declaration{{"fill", "red"}}},
		{"FILL: red; stroke-width: 2px;;", []Declaration{{"fill", "red"}, {"stroke-width", "2px"}}},
		{"fill: url(#a) blue", []Declaration{{"fill", "url(#a) blue"}}},
		{"color: red !important", []Declaration{{"color", "red"}}},
		{"/* comment */ opacity: .5", []Declaration{{"opacity", ".5"}}},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			decls, err := ParseDeclarations(tt.style)
			test.Error(t, err)
			test.T(t, decls, tt.expected)
		})
	}

	decls, err := ParseDeclarations("fill:red;stroke")
	test.T(t, err != nil, true)
	test.T(t, decls, []Declaration{{"fill", "red"}})
}

func TestApplyStyle(t *testing.T) {
	el := &Element{Tag: "path", Attrs: []Attr{{"fill", "blue"}, {"style", "fill:red;opacity:.5;mix-blend-mode:multiply"}}}
	test.Error(t, applyStyle(el))
	test.T(t, el.Attrs, []Attr{{"fill", "red"}, {"style", "mix-blend-mode:multiply"}, {"opacity", ".5"}})

	el = &Element{Tag: "path", Attrs: []Attr{{"style", "stroke:none"}}}
	test.Error(t, applyStyle(el))
	test.T(t, el.Attrs, []Attr{{"stroke", "none"}})

	el = &Element{Tag: "path", Attrs: []Attr{{"style", "fill:red;stroke"}}}
	test.That(t, applyStyle(el) != nil)
	fill, _ := el.Attr("fill")
	test.String(t, fill, "red")
}
