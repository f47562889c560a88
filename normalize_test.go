package picosvg

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

const header = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">`

func normalizeString(svg string, opts *Options) (string, error) {
	b, err := NormalizeBytes([]byte(svg), opts)
	return string(b), err
}

func TestNormalize(t *testing.T) {
	var tests = []struct {
		name     string
		svg      string
		expected string
	}{
		{"rect",
			`<svg viewBox="0 0 100 100"><rect x="10" y="11" width="17" height="11" fill="red"/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><path d="M10,11 L27,11 L27,22 L10,22 Z" fill="red"/></svg>`},
		{"size without viewBox",
			`<svg width="20" height="10"><circle cx="5" cy="5" r="5"/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10" width="20" height="10"><path d="M10,5 A5 5 0 0 1 5,10 A5 5 0 0 1 0,5 A5 5 0 0 1 5,0 A5 5 0 0 1 10,5 Z"/></svg>`},
		{"style",
			`<svg viewBox="0 0 10 10"><rect width="1" height="1" style="fill:red; stroke : blue"/></svg>`,
			header + `<path d="M0,0 L1,0 L1,1 L0,1 Z" fill="red" stroke="blue"/></svg>`},
		{"non-rendering",
			`<svg viewBox="0 0 10 10"><title>t</title><desc>d</desc><metadata><x/></metadata><foreignObject><div/></foreignObject><g/></svg>`,
			header[:len(header)-1] + `/>`},
		{"malformed path data",
			`<svg viewBox="0 0 10 10"><path d="M0 0 L10 10 L"/></svg>`,
			header + `<path d="M0,0 L10,10"/></svg>`},
		{"unknown attributes",
			`<svg viewBox="0 0 10 10" version="1.1" data-x="1"><g data-name="a" opacity=".5"><path d="M0 0 L1 1" pathLength="5"/></g></svg>`,
			header + `<g opacity=".5"><path d="M0,0 L1,1"/></g></svg>`},
		{"use",
			`<svg viewBox="0 0 10 10"><defs><rect id="r" width="2" height="2"/></defs><use href="#r" x="3" y="4"/><use href="#r" transform="scale(2)"/></svg>`,
			header + `<g><path d="M3,4 L5,4 L5,6 L3,6 Z"/></g><g><path d="M0,0 L4,0 L4,4 L0,4 Z"/></g></svg>`},
		{"use cycle",
			`<svg viewBox="0 0 10 10"><g id="a"><use href="#a"/><rect width="1" height="1"/></g></svg>`,
			header + `<g id="a"><path d="M0,0 L1,0 L1,1 L0,1 Z"/></g></svg>`},
		{"use missing",
			`<svg viewBox="0 0 10 10"><use href="#nope"/><rect width="1" height="1"/></svg>`,
			header + `<path d="M0,0 L1,0 L1,1 L0,1 Z"/></svg>`},
		{"use symbol",
			`<svg viewBox="0 0 10 10"><symbol id="s" viewBox="0 0 1 1"><rect width="1" height="1"/></symbol><use href="#s" width="4" height="4"/></svg>`,
			header + `<g><g><path d="M0,0 L4,0 L4,4 L0,4 Z"/></g></g></svg>`},
		{"nested svg",
			`<svg viewBox="0 0 100 100"><svg x="10" y="10" width="20" height="20" viewBox="0 0 10 10"><rect width="10" height="10"/></svg></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><g><path d="M10,10 L30,10 L30,30 L10,30 Z"/></g></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := normalizeString(tt.svg, nil)
			test.Error(t, err)
			test.String(t, out, tt.expected)
		})
	}
}

func TestNormalizeMissingNamespace(t *testing.T) {
	a, err := normalizeString(`<svg viewBox="0 0 10 10"><rect width="5" height="5"/></svg>`, nil)
	test.Error(t, err)
	b, err := normalizeString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="5" height="5"/></svg>`, nil)
	test.Error(t, err)
	test.String(t, a, b)
}

func TestNormalizeText(t *testing.T) {
	_, err := normalizeString(`<svg viewBox="0 0 10 10"><g><text>hi</text></g></svg>`, nil)
	var serr *StructuralError
	test.That(t, errors.As(err, &serr))
	test.String(t, err.Error(), "Unable to convert to picosvg: BadElement: /svg[0]/g[0]/text[0]")

	out, err := normalizeString(`<svg viewBox="0 0 10 10"><g transform="translate(5 5)"><text x="1">a &amp; <tspan>b</tspan></text></g></svg>`, &Options{AllowText: true})
	test.Error(t, err)
	test.String(t, out, header+`<g><text x="1" transform="matrix(1 0 0 1 5 5)">a &amp; <tspan>b</tspan></text></g></svg>`)

	// text in preserved definitions is not rendered directly
	out, err = normalizeString(`<svg viewBox="0 0 10 10"><defs><pattern id="p"><text>a</text></pattern></defs></svg>`, &Options{AllowAllDefs: true})
	test.Error(t, err)
	test.String(t, out, header+`<defs><pattern id="p"><text>a</text></pattern></defs></svg>`)
}

func TestNormalizeOptions(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><g fill="red"><path d="M0.12345 0 L1 1"/></g></svg>`
	out, err := normalizeString(svg, nil)
	test.Error(t, err)
	test.String(t, out, header+`<g fill="red"><path d="M.123,0 L1,1"/></g></svg>`)

	out, err = normalizeString(svg, &Options{Precision: 2})
	test.Error(t, err)
	test.String(t, out, header+`<g fill="red"><path d="M.12,0 L1,1"/></g></svg>`)

	out, err = normalizeString(svg, &Options{Precision: -1, Pretty: true})
	test.Error(t, err)
	test.String(t, out, header+"\n  <g fill=\"red\">\n    <path d=\"M.123,0 L1,1\"/>\n  </g>\n</svg>")
}

func TestNormalizeErrors(t *testing.T) {
	var tests = []struct {
		name string
		svg  string
		err  interface{}
	}{
		{"parse", `<svg><g></svg>`, &ParseError{}},
		{"transform", `<svg viewBox="0 0 10 10"><g transform="rotate(1 2)"/></svg>`, &ParseError{}},
		{"gradient transform", `<svg viewBox="0 0 10 10"><linearGradient id="a" gradientTransform="skewX()"/><rect width="1" height="1" fill="url(#a)"/></svg>`, &ParseError{}},
		{"unit", `<svg viewBox="0 0 10 10"><rect width="1parsec" height="1"/></svg>`, &UnitError{}},
		{"no viewport", `<svg><rect width="1" height="1"/></svg>`, &UnitError{}},
		{"text", `<svg viewBox="0 0 10 10"><text/></svg>`, &StructuralError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &bytes.Buffer{}
			err := Normalize(strings.NewReader(tt.svg), w, nil)
			test.That(t, err != nil)
			test.T(t, w.Len(), 0, "no partial output")
			switch tt.err.(type) {
			case *ParseError:
				var perr *ParseError
				test.That(t, errors.As(err, &perr), err)
			case *UnitError:
				var uerr *UnitError
				test.That(t, errors.As(err, &uerr), err)
			case *StructuralError:
				var serr *StructuralError
				test.That(t, errors.As(err, &serr), err)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	var tests = []string{
		`<svg viewBox="0 0 100 100"><rect x="10" y="11" width="17" height="11" rx="2"/></svg>`,
		`<svg width="2in" height="1in"><g transform="rotate(30 10 10)" stroke="black" stroke-width="1pt"><ellipse cx="20" cy="20" rx="10" ry="5"/><polyline points="0,0 5,5 10,0"/></g></svg>`,
		`<svg viewBox="0 0 10 10"><defs><linearGradient id="g" x2="1"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient></defs><rect width="10" height="10" fill="url(#g)"/><rect x="5" width="5" height="5" fill="url(#g)" transform="translate(1 1)"/></svg>`,
		`<svg viewBox="0 0 10 10"><clipPath id="c"><rect width="5" height="5"/></clipPath><g clip-path="url(#c)" transform="translate(1 0)"><rect width="10" height="10"/></g></svg>`,
		`<svg viewBox="0 0 10 10"><radialGradient id="r" gradientUnits="userSpaceOnUse" cx="5" cy="5" r="5" spreadMethod="reflect"><stop offset="50%" stop-color="red" stop-opacity=".5"/></radialGradient><g fill="url(#r)" transform="scale(.5)"><circle cx="5" cy="5" r="5"/><path d="m0 0 h10 v10 h-10 z"/></g></svg>`,
		`<svg viewBox="0 0 10 10"><g transform="scale(0)"><rect width="10" height="10"/></g></svg>`,
		`<svg viewBox="0 0 10 10"><path d="M0 0 L1 0 L2 0 L2 0 L2 2 M5 5 Z"/></svg>`,
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			for _, opts := range []*Options{nil, {AllowAllDefs: true, Pretty: true, Precision: -1}} {
				once, err := normalizeString(tt, opts)
				test.Error(t, err)
				twice, err := normalizeString(once, opts)
				test.Error(t, err)
				test.String(t, twice, once)
			}
		})
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><g transform="translate(1 1)"><rect width="5" height="5"/></g></svg>`
	expected, err := normalizeString(svg, nil)
	test.Error(t, err)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			out, err := normalizeString(svg, nil)
			if err == nil && out != expected {
				err = errors.New("output differs: " + out)
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		test.Error(t, <-errs)
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	var tests = []struct {
		name string
		svg  string
		err  string
	}{
		{"unknown", `<svg viewBox="0 0 10 10"><donkey/></svg>`, "Unable to convert to picosvg: BadElement: /svg[0]/donkey[0]"},
		{"image", `<svg viewBox="0 0 10 10"><image href="a.png"/></svg>`, "Unable to convert to picosvg: BadElement: /svg[0]/image[0]"},
		{"text in switch", `<svg viewBox="0 0 10 10"><switch><text>hello</text></switch></svg>`, "Unable to convert to picosvg: BadElement: /svg[0]/switch[0]/text[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeString(tt.svg, nil)
			var serr *StructuralError
			test.That(t, errors.As(err, &serr), err)
			test.String(t, err.Error(), tt.err)
		})
	}

	out, err := normalizeString(`<svg viewBox="0 0 10 10"><donkey/><image href="a.png"/><rect width="1" height="1"/></svg>`, &Options{DropUnsupported: true, Precision: -1})
	test.Error(t, err)
	test.String(t, out, header+`<path d="M0,0 L1,0 L1,1 L0,1 Z"/></svg>`)

	// dropping never hides text
	_, err = normalizeString(`<svg viewBox="0 0 10 10"><switch><text>hello</text></switch></svg>`, &Options{DropUnsupported: true, Precision: -1})
	test.That(t, err != nil)

	out, err = normalizeString(`<svg viewBox="0 0 10 10"><switch><text>hello</text></switch></svg>`, &Options{AllowAllDefs: true, AllowText: true, Precision: -1})
	test.Error(t, err)
	test.String(t, out, header+`<switch><text>hello</text></switch></svg>`)
}

func TestNormalizeNestedPercentages(t *testing.T) {
	out, err := normalizeString(`<svg viewBox="0 0 100 100"><svg width="50" height="50" viewBox="0 0 10 10"><rect width="50%" height="50%"/></svg></svg>`, nil)
	test.Error(t, err)
	test.String(t, out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><g><path d="M0,0 L25,0 L25,25 L0,25 Z"/></g></svg>`)

	// the root viewport applies again after the nested one
	out, err = normalizeString(`<svg viewBox="0 0 100 100"><svg width="50" height="50" viewBox="0 0 10 10"/><rect width="10%" height="10%"/></svg>`, nil)
	test.Error(t, err)
	test.String(t, out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><path d="M0,0 L10,0 L10,10 L0,10 Z"/></svg>`)
}

func TestNormalizeReusedIDs(t *testing.T) {
	out, err := normalizeString(`<svg viewBox="0 0 10 10"><rect id="a" width="1" height="1"/><rect id="a" x="2" width="1" height="1"/></svg>`, nil)
	test.Error(t, err)
	test.String(t, out, header+`<path id="a" d="M0,0 L1,0 L1,1 L0,1 Z"/><path d="M2,0 L3,0 L3,1 L2,1 Z"/></svg>`)
}

func TestNormalizeStrokeToFill(t *testing.T) {
	var tests = []struct {
		name     string
		svg      string
		expected string
	}{
		{"line",
			`<svg viewBox="0 0 10 10"><path d="M0 5 L10 5" fill="none" stroke="red" stroke-width="2"/></svg>`,
			header + `<path d="M0,4 L10,4 L10,6 L0,6 Z" fill="red"/></svg>`},
		{"filled rect",
			`<svg viewBox="0 0 10 10"><rect id="r" x="2" y="2" width="6" height="6" fill="blue" stroke="red" stroke-width="2" stroke-opacity=".5"/></svg>`,
			header + `<path id="r" d="M2,2 L8,2 L8,8 L2,8 Z" fill="blue"/><path d="M1,1 L9,1 L9,9 L1,9 Z M3,3 L3,7 L7,7 L7,3 Z" fill="red" fill-opacity=".5"/></svg>`},
		{"unstroked",
			`<svg viewBox="0 0 10 10"><rect width="1" height="1" stroke="none"/></svg>`,
			header + `<path d="M0,0 L1,0 L1,1 L0,1 Z" stroke="none"/></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := normalizeString(tt.svg, &Options{StrokeToFill: true, Precision: -1})
			test.Error(t, err)
			test.String(t, out, tt.expected)
		})
	}
}

func TestNormalizeEvenOddToNonZero(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><path d="M0 0 L10 0 L10 10 L0 10 Z M2 2 L8 2 L8 8 L2 8 Z" fill-rule="evenodd"/></svg>`
	out, err := normalizeString(svg, nil)
	test.Error(t, err)
	test.String(t, out, header+`<path d="M0,0 L10,0 L10,10 L0,10 Z M2,2 L8,2 L8,8 L2,8 Z" fill-rule="evenodd"/></svg>`)

	out, err = normalizeString(svg, &Options{EvenOddToNonZero: true, Precision: -1})
	test.Error(t, err)
	test.String(t, out, header+`<path d="M0,0 L10,0 L10,10 L0,10 Z M2,2 L2,8 L8,8 L8,2 Z"/></svg>`)

	// the stroke follows the original outline
	out, err = normalizeString(`<svg viewBox="0 0 10 10"><g fill-rule="evenodd"><path d="M0 0 L10 0 L10 10 Z" stroke="red"/></g></svg>`, &Options{EvenOddToNonZero: true, Precision: -1})
	test.Error(t, err)
	test.String(t, out, header+`<g><path d="M0,0 L10,0 L10,10 Z" fill-rule="evenodd" stroke="red"/></g></svg>`)
}

func TestNormalizeClipToViewBox(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><rect x="5" y="5" width="10" height="10"/><rect x="20" width="1" height="1"/><rect x="1" y="1" width="1" height="1"/></svg>`
	out, err := normalizeString(svg, &Options{ClipToViewBox: true, Precision: -1})
	test.Error(t, err)
	test.String(t, out, header+`<path d="M5,5 L10,5 L10,10 L5,10 Z"/><path d="M1,1 L2,1 L2,2 L1,2 Z"/></svg>`)
}

func TestNormalizeRemoveUnpainted(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><rect width="1" height="1" fill="none"/><rect width="2" height="2" opacity="0"/><g display="none"><rect width="1" height="1"/></g><rect width="3" height="3" fill="none" stroke="red"/><rect width="3" height="3"/></svg>`
	out, err := normalizeString(svg, &Options{RemoveUnpainted: true, Precision: -1})
	test.Error(t, err)
	test.String(t, out, header+`<path d="M0,0 L3,0 L3,3 L0,3 Z" fill="none" stroke="red"/><path d="M0,0 L3,0 L3,3 L0,3 Z"/></svg>`)
}

func TestCheck(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg viewBox="0 0 10 10"><rect width="1" height="1"/><g><path id="not_so_unique" d="M0 0 L1 1"/></g><path id="not_so_unique" d="M0 0 L1 1"/><clipPath id="c"/><text>a</text></svg>`))
	test.Error(t, err)
	vs := doc.Check(nil)
	strs := []string{}
	for _, v := range vs {
		strs = append(strs, v.String())
	}
	test.T(t, strs, []string{
		"BadElement: /svg[0]/rect[0]",
		`BadElement: /svg[0]/path[0] reuses id="not_so_unique", first seen at /svg[0]/g[0]/path[0]`,
		"BadElement: /svg[0]/clipPath[0]",
		"BadElement: /svg[0]/text[0]",
	})

	test.T(t, len(doc.Check(&Options{AllowText: true})), 3)

	// normalized output passes
	b, err := NormalizeBytes([]byte(`<svg viewBox="0 0 10 10"><clipPath id="c"><rect width="5" height="5"/></clipPath><g clip-path="url(#c)"><rect width="10" height="10" fill="url(#g)"/></g><linearGradient id="g"><stop offset="0"/></linearGradient></svg>`), nil)
	test.Error(t, err)
	doc, err = Parse(bytes.NewReader(b))
	test.Error(t, err)
	test.T(t, len(doc.Check(nil)), 0)
}
