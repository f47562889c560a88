package picosvg

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
	"golang.org/x/net/html/charset"
)

type svgParser struct {
	z   *parse.Input
	log *log.Logger

	root  *Element
	stack []*Element
	names []string            // qualified tag names of the open elements
	nss   []map[string]string // namespace prefix bindings per open element

	rootNS string
	skip   int // depth inside a dropped foreign element
}

func (svg *svgParser) errorf(format string, a ...interface{}) error {
	return &ParseError{Path: elementPath(svg.stack), Err: parse.NewErrorLexer(svg.z, format, a...)}
}

// decodeCharset converts the input to UTF-8 when the XML declaration names another encoding.
func decodeCharset(b []byte) ([]byte, error) {
	if !bytes.HasPrefix(b, []byte("<?xml")) {
		return b, nil
	}
	end := bytes.Index(b, []byte("?>"))
	if end == -1 {
		return b, nil
	}
	decl := b[:end]
	i := bytes.Index(decl, []byte("encoding"))
	if i == -1 {
		return b, nil
	}
	decl = bytes.TrimLeft(decl[i+len("encoding"):], " \t\r\n")
	if len(decl) == 0 || decl[0] != '=' {
		return b, nil
	}
	decl = bytes.TrimLeft(decl[1:], " \t\r\n")
	if len(decl) < 2 || decl[0] != '"' && decl[0] != '\'' {
		return b, nil
	}
	j := bytes.IndexByte(decl[1:], decl[0])
	if j == -1 {
		return b, nil
	}
	label := strings.ToLower(strings.TrimSpace(string(decl[1 : 1+j])))
	if label == "" || label == "utf-8" || label == "utf8" {
		return b, nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(b))
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("unsupported encoding %q: %w", label, err)}
	}
	return io.ReadAll(r)
}

// Parse reads an SVG document and builds its element tree. Missing namespace declarations are tolerated; malformed markup returns a *ParseError. Comments, processing instructions and doctype declarations are dropped.
func Parse(r io.Reader) (*Document, error) {
	return parseWithLogger(r, nil)
}

func parseWithLogger(r io.Reader, logger *log.Logger) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if b, err = decodeCharset(b); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = discardLogger()
	}

	z := parse.NewInputBytes(b)
	defer z.Restore()

	l := xml.NewLexer(z)
	svg := svgParser{
		z:   z,
		log: logger,
	}
	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return nil, &ParseError{Path: elementPath(svg.stack), Err: l.Err()}
			} else if svg.root == nil {
				return nil, svg.errorf("expected svg root element")
			} else if 0 < len(svg.stack) {
				return nil, svg.errorf("unclosed tag <%s>", svg.names[len(svg.names)-1])
			}
			return &Document{Root: svg.root}, nil
		case xml.StartTagPIToken:
			for {
				if tt, _ = l.Next(); tt != xml.AttributeToken {
					break
				}
			}
			if tt == xml.ErrorToken {
				return nil, &ParseError{Err: l.Err()}
			}
		case xml.StartTagToken:
			attrs := []Attr{}
			for {
				tt, _ = l.Next()
				if tt != xml.AttributeToken {
					break
				}
				name := string(l.Text())
				val := l.AttrVal()
				if len(val) == 0 {
					return nil, svg.errorf("attribute %s without value", name)
				} else if len(val) < 2 || val[0] != '"' && val[0] != '\'' || val[len(val)-1] != val[0] {
					return nil, svg.errorf("attribute %s without quoted value", name)
				}
				for _, attr := range attrs {
					if attr.Name == name {
						return nil, svg.errorf("duplicate attribute %s", name)
					}
				}
				attrs = append(attrs, Attr{name, string(val[1 : len(val)-1])})
			}
			if tt == xml.ErrorToken {
				if l.Err() == io.EOF {
					return nil, svg.errorf("unexpected end of input in tag %s", data[1:])
				}
				return nil, &ParseError{Path: elementPath(svg.stack), Err: l.Err()}
			}
			if err := svg.startElement(string(data[1:]), attrs, tt == xml.StartTagCloseVoidToken); err != nil {
				return nil, err
			}
		case xml.EndTagToken:
			name := strings.TrimSpace(string(bytes.TrimSuffix(bytes.TrimPrefix(data, []byte("</")), []byte(">"))))
			if 0 < svg.skip {
				svg.skip--
				continue
			} else if len(svg.stack) == 0 {
				return nil, svg.errorf("unexpected closing tag </%s>", name)
			} else if top := svg.names[len(svg.names)-1]; name != top {
				return nil, svg.errorf("unexpected closing tag </%s>, expected </%s>", name, top)
			}
			svg.stack = svg.stack[:len(svg.stack)-1]
			svg.names = svg.names[:len(svg.names)-1]
			svg.nss = svg.nss[:len(svg.nss)-1]
		case xml.TextToken, xml.CDATAToken:
			if 0 < svg.skip {
				continue
			}
			if err := svg.charData(data, tt == xml.CDATAToken); err != nil {
				return nil, err
			}
		}
	}
}

func splitName(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i != -1 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (svg *svgParser) startElement(name string, attrs []Attr, void bool) error {
	if 0 < svg.skip {
		if !void {
			svg.skip++
		}
		return nil
	}
	if svg.root != nil && len(svg.stack) == 0 {
		return svg.errorf("multiple root elements")
	}

	// namespace bindings
	nss := map[string]string{}
	if 0 < len(svg.nss) {
		nss = svg.nss[len(svg.nss)-1]
	}
	copied := false
	for _, attr := range attrs {
		if attr.Name == "xmlns" || strings.HasPrefix(attr.Name, "xmlns:") {
			if !copied {
				parent := nss
				nss = make(map[string]string, len(parent)+1)
				for k, v := range parent {
					nss[k] = v
				}
				copied = true
			}
			_, prefix := splitName(attr.Name)
			if attr.Name == "xmlns" {
				prefix = ""
			}
			nss[prefix] = strings.TrimSpace(attr.Value)
		}
	}

	prefix, tag := splitName(name)
	if svg.root == nil {
		if tag != "svg" {
			return svg.errorf("expected svg root element, got <%s>", name)
		}
		ns, ok := nss[prefix]
		if !ok || ns == "" {
			svg.log.Debug("inject missing namespace", "element", "svg")
		} else if ns != SVGNamespace {
			svg.log.Warn("replace root namespace", "element", "svg", "xmlns", ns)
		}
		svg.rootNS = ns
	} else {
		ns := nss[prefix]
		if prefix == "" && ns != "" && ns != SVGNamespace && ns != svg.rootNS || prefix != "" && ns != SVGNamespace {
			svg.log.Debug("drop foreign element", "element", elementPath(svg.stack)+"/"+name)
			if !void {
				svg.skip = 1
			}
			return nil
		}
	}

	el := &Element{
		Tag: tag,
		CTM: Identity,
	}
	hasHref := false
	for _, attr := range attrs {
		if attr.Name == "href" {
			hasHref = true
		}
	}
	for _, attr := range attrs {
		attrPrefix, local := splitName(attr.Name)
		switch {
		case attr.Name == "xmlns" || attrPrefix == "xmlns":
			continue
		case attrPrefix == "":
			el.Attrs = append(el.Attrs, attr)
		case attrPrefix == "xml":
			el.Attrs = append(el.Attrs, attr)
		case local == "href" && (attrPrefix == "xlink" || nss[attrPrefix] == XLinkNamespace):
			if !hasHref {
				el.Attrs = append(el.Attrs, Attr{"href", attr.Value})
				hasHref = true
			}
		case nss[attrPrefix] == SVGNamespace:
			el.Attrs = append(el.Attrs, Attr{local, attr.Value})
		default:
			svg.log.Debug("drop foreign attribute", "element", tag, "attr", attr.Name)
		}
	}

	if svg.root == nil {
		el.Kind = GroupKind
		svg.root = el
	} else {
		parent := svg.stack[len(svg.stack)-1]
		el.Kind, el.Shape = classify(tag, parent.Kind)
		parent.Children = append(parent.Children, el)
	}
	if !void {
		svg.stack = append(svg.stack, el)
		svg.names = append(svg.names, name)
		svg.nss = append(svg.nss, nss)
	}
	return nil
}

func (svg *svgParser) charData(data []byte, cdata bool) error {
	if len(svg.stack) == 0 {
		if cdata || len(bytes.TrimSpace(data)) != 0 {
			return svg.errorf("unexpected character data outside root element")
		}
		return nil
	}
	for _, c := range data {
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			return svg.errorf("invalid character 0x%02X", c)
		}
	}

	parent := svg.stack[len(svg.stack)-1]
	if !cdata && parent.Kind != TextKind && len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	parent.Children = append(parent.Children, &Element{
		Kind: CharDataKind,
		Data: string(data),
	})
	return nil
}
