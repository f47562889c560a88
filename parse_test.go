package picosvg

import (
	"errors"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<?xml version="1.0"?>
<!DOCTYPE svg>
<!-- comment -->
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
	<g id="a"><rect width="1" height="1"/></g>
	<path d="M0 0"/>
	<text x="1"> hello <tspan>world</tspan>!</text>
</svg>`))
	test.Error(t, err)

	root := doc.Root
	test.String(t, root.Tag, "svg")
	test.T(t, root.Kind, GroupKind)
	test.T(t, len(root.Attrs), 1)
	test.T(t, len(root.Children), 3)

	g := root.Children[0]
	test.T(t, g.Kind, GroupKind)
	test.String(t, g.ID(), "a")
	test.T(t, g.Children[0].Kind, ShapeKind)
	test.T(t, g.Children[0].Shape, RectShape)
	test.T(t, root.Children[1].Kind, PathKind)

	text := root.Children[2]
	test.T(t, text.Kind, TextKind)
	test.T(t, len(text.Children), 3)
	test.String(t, text.Children[0].Data, " hello ")
	test.T(t, text.Children[1].Kind, TextKind)
	test.T(t, text.Children[2].Kind, CharDataKind)
}

func TestParseNamespaces(t *testing.T) {
	var tests = []struct {
		name     string
		svg      string
		children int
		attrs    []Attr
	}{
		{"missing xmlns", `<svg><g/></svg>`, 1, nil},
		{"prefixed", `<svg:svg xmlns:svg="http://www.w3.org/2000/svg"><svg:g svg:fill="red"></svg:g></svg:svg>`, 1, []Attr{{"fill", "red"}}},
		{"foreign element", `<svg xmlns="http://www.w3.org/2000/svg" xmlns:foo="urn:foo"><foo:bar><g/></foo:bar><g/></svg>`, 1, nil},
		{"foreign default namespace", `<svg xmlns="http://www.w3.org/2000/svg"><bar xmlns="urn:foo"><g/></bar><g/></svg>`, 1, nil},
		{"xlink", `<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#a"/></svg>`, 1, []Attr{{"href", "#a"}}},
		{"href wins", `<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use href="#b" xlink:href="#a"/></svg>`, 1, []Attr{{"href", "#b"}}},
		{"foreign attributes", `<svg xmlns:inkscape="urn:inkscape"><g inkscape:label="x" xml:space="preserve" id="g"/></svg>`, 1, []Attr{{"xml:space", "preserve"}, {"id", "g"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.svg))
			test.Error(t, err)
			test.String(t, doc.Root.Tag, "svg")
			test.T(t, len(doc.Root.Attrs), 0)
			test.T(t, len(doc.Root.Children), tt.children)
			if tt.attrs != nil {
				test.T(t, doc.Root.Children[0].Attrs, tt.attrs)
			}
		})
	}
}

func TestParseCharset(t *testing.T) {
	doc, err := Parse(strings.NewReader("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><text>caf\xe9</text></svg>"))
	test.Error(t, err)
	test.String(t, doc.Root.Children[0].Children[0].Data, "café")
}

func TestParseError(t *testing.T) {
	var tests = []struct {
		name string
		svg  string
	}{
		{"empty", ``},
		{"no root", `<!-- only a comment -->`},
		{"wrong root", `<g/>`},
		{"unclosed", `<svg><g>`},
		{"mismatched", `<svg><g></svg>`},
		{"unexpected end tag", `<svg/></g>`},
		{"multiple roots", `<svg/><svg/>`},
		{"text outside root", `<svg/>text`},
		{"attribute without value", `<svg a/>`},
		{"unquoted attribute", `<svg a=1/>`},
		{"duplicate attribute", `<svg a="1" a="2"/>`},
		{"control character", "<svg>\x01</svg>"},
		{"unknown encoding", `<?xml version="1.0" encoding="klingon"?><svg/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.svg))
			var perr *ParseError
			test.That(t, errors.As(err, &perr), err)
		})
	}
}

func TestElementPath(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg><g/><g><rect/><text/></g></svg>`))
	test.Error(t, err)
	g := doc.Root.Children[1]
	test.String(t, elementPath([]*Element{doc.Root, g, g.Children[1]}), "/svg[0]/g[1]/text[0]")
}
