package picosvg

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// presentationAttrs are the CSS properties that may be written as attributes.
var presentationAttrs = map[string]bool{
	"alignment-baseline":          true,
	"baseline-shift":              true,
	"clip":                        true,
	"clip-path":                   true,
	"clip-rule":                   true,
	"color":                       true,
	"color-interpolation":         true,
	"color-interpolation-filters": true,
	"color-rendering":             true,
	"cursor":                      true,
	"direction":                   true,
	"display":                     true,
	"dominant-baseline":           true,
	"fill":                        true,
	"fill-opacity":                true,
	"fill-rule":                   true,
	"filter":                      true,
	"flood-color":                 true,
	"flood-opacity":               true,
	"font-family":                 true,
	"font-size":                   true,
	"font-size-adjust":            true,
	"font-stretch":                true,
	"font-style":                  true,
	"font-variant":                true,
	"font-weight":                 true,
	"image-rendering":             true,
	"letter-spacing":              true,
	"lighting-color":              true,
	"marker-end":                  true,
	"marker-mid":                  true,
	"marker-start":                true,
	"mask":                        true,
	"opacity":                     true,
	"overflow":                    true,
	"paint-order":                 true,
	"pointer-events":              true,
	"shape-rendering":             true,
	"stop-color":                  true,
	"stop-opacity":                true,
	"stroke":                      true,
	"stroke-dasharray":            true,
	"stroke-dashoffset":           true,
	"stroke-linecap":              true,
	"stroke-linejoin":             true,
	"stroke-miterlimit":           true,
	"stroke-opacity":              true,
	"stroke-width":                true,
	"text-anchor":                 true,
	"text-decoration":             true,
	"text-rendering":              true,
	"unicode-bidi":                true,
	"vector-effect":               true,
	"visibility":                  true,
	"word-spacing":                true,
	"writing-mode":                true,
}

// Declaration is a CSS property and its value.
type Declaration struct {
	Property, Value string
}

// ParseDeclarations parses the contents of a style attribute. Declarations that cannot be parsed are skipped, and the returned error reports the first of them.
func ParseDeclarations(s string) ([]Declaration, error) {
	decls := []Declaration{}
	p := css.NewParser(parse.NewInputString(s), true)
	var perr error
	for {
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			if err := p.Err(); err != io.EOF {
				return decls, err
			}
			return decls, perr
		} else if gt == css.DeclarationGrammar {
			sb := strings.Builder{}
			for _, val := range p.Values() {
				sb.Write(val.Data)
			}
			value := strings.TrimSpace(sb.String())
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
			decls = append(decls, Declaration{strings.ToLower(string(data)), value})
		} else if gt != css.CommentGrammar && perr == nil {
			perr = errInvalidDeclaration
		}
	}
}

type cssError string

func (e cssError) Error() string {
	return string(e)
}

const errInvalidDeclaration = cssError("Invalid CSS declaration syntax")

// applyStyle moves presentation properties from the style attribute to attributes, where they override existing attributes. Other declarations remain in the style attribute.
func applyStyle(el *Element) error {
	style, ok := el.Attr("style")
	if !ok {
		return nil
	}
	decls, err := ParseDeclarations(style)

	rest := []string{}
	for _, decl := range decls {
		if presentationAttrs[decl.Property] && decl.Value != "" {
			el.SetAttr(decl.Property, decl.Value)
		} else {
			rest = append(rest, decl.Property+":"+decl.Value)
		}
	}
	if len(rest) == 0 {
		el.DelAttr("style")
	} else {
		el.SetAttr("style", strings.Join(rest, ";"))
	}
	return err
}
