package picosvg

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/tdewolff/test"
)

func TestFormatNumber(t *testing.T) {
	var tests = []struct {
		f        float64
		prec     int
		expected string
	}{
		{0.0, 3, "0"},
		{-0.0001, 3, "0"},
		{0.5, 3, ".5"},
		{-0.5, 3, "-.5"},
		{12.0, 3, "12"},
		{100.0, 3, "100"},
		{1.23456, 3, "1.235"},
		{0.0001, 6, ".0001"},
		{1234.5678, -1, "1234.5678"},
		{2.5, 0, "3"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.f), func(t *testing.T) {
			test.String(t, formatNumber(tt.f, tt.prec), tt.expected)
		})
	}

	test.String(t, formatMatrix(Identity.Translate(1.5, -2.0), 3), "matrix(1 0 0 1 1.5 -2)")
}

func TestCanonicalAttrs(t *testing.T) {
	attrs := []Attr{{"fill", "red"}, {"d", "M0 0"}, {"id", "a"}, {"class", "b"}, {"viewBox", "0 0 1 1"}}
	test.T(t, canonicalAttrs(attrs), []Attr{{"id", "a"}, {"d", "M0 0"}, {"viewBox", "0 0 1 1"}, {"class", "b"}, {"fill", "red"}})
	test.T(t, attrs[0], Attr{"fill", "red"}, "input is not modified")
}

func TestWrite(t *testing.T) {
	p, err := ParsePath("M0 0 L1 1")
	test.Error(t, err)
	doc := &Document{Root: &Element{
		Kind:  GroupKind,
		Tag:   "svg",
		Attrs: []Attr{{"xmlns", "urn:other"}, {"class", `a"b`}},
		Children: []*Element{
			{Kind: PathKind, Tag: "path", Path: p, Attrs: []Attr{{"fill", "red"}}},
			{Kind: GroupKind, Tag: "g"},
			{Kind: TextKind, Tag: "text", Attrs: []Attr{{"y", "1"}, {"x", "2"}}, Children: []*Element{
				{Kind: CharDataKind, Data: "a &lt; b"},
			}},
		},
	}}

	w := &bytes.Buffer{}
	test.Error(t, doc.Write(w, nil))
	test.String(t, w.String(), `<svg xmlns="http://www.w3.org/2000/svg" class="a&quot;b"><path d="M0,0 L1,1" fill="red"/><g/><text y="1" x="2">a &lt; b</text></svg>`)

	w.Reset()
	test.Error(t, doc.Write(w, &Options{Pretty: true, Precision: -1}))
	test.String(t, w.String(), "<svg xmlns=\"http://www.w3.org/2000/svg\" class=\"a&quot;b\">\n  <path d=\"M0,0 L1,1\" fill=\"red\"/>\n  <g/>\n  <text y=\"1\" x=\"2\">a &lt; b</text>\n</svg>")
}
