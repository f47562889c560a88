package picosvg

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
)

// formatNumber formats f rounded to prec decimals in its shortest form, such as .5 or -12.
func formatNumber(f float64, prec int) string {
	if f = roundTo(f, prec); f == 0.0 {
		return "0"
	}
	b := strconv.AppendFloat(nil, f, 'f', -1, 64)
	return string(minify.Decimal(b, 0))
}

func formatMatrix(m Matrix, prec int) string {
	return "matrix(" + formatNumber(m[0][0], prec) + " " + formatNumber(m[1][0], prec) + " " + formatNumber(m[0][1], prec) + " " + formatNumber(m[1][1], prec) + " " + formatNumber(m[0][2], prec) + " " + formatNumber(m[1][2], prec) + ")"
}

// ToSVG returns the path data with numbers rounded to prec decimals, or without rounding when prec is negative.
func (p *Path) ToSVG(prec int) string {
	sb := strings.Builder{}
	num := func(f float64) {
		sb.WriteString(formatNumber(f, prec))
	}
	pair := func(x, y float64) {
		num(x)
		sb.WriteByte(',')
		num(y)
	}

	i := 0
	for k, cmd := range p.cmds {
		if 0 < k {
			sb.WriteByte(' ')
		}
		d := p.d[i : i+cmdLen(cmd)]
		switch cmd {
		case MoveToCmd:
			sb.WriteByte('M')
			pair(d[0], d[1])
		case LineToCmd:
			sb.WriteByte('L')
			pair(d[0], d[1])
		case QuadToCmd:
			sb.WriteByte('Q')
			pair(d[0], d[1])
			sb.WriteByte(' ')
			pair(d[2], d[3])
		case CubeToCmd:
			sb.WriteByte('C')
			pair(d[0], d[1])
			sb.WriteByte(' ')
			pair(d[2], d[3])
			sb.WriteByte(' ')
			pair(d[4], d[5])
		case ArcToCmd:
			sb.WriteByte('A')
			num(d[0])
			sb.WriteByte(' ')
			num(d[1])
			sb.WriteByte(' ')
			num(d[2])
			if d[3] == 1.0 {
				sb.WriteString(" 1")
			} else {
				sb.WriteString(" 0")
			}
			if d[4] == 1.0 {
				sb.WriteString(" 1 ")
			} else {
				sb.WriteString(" 0 ")
			}
			pair(d[5], d[6])
		case CloseCmd:
			sb.WriteByte('Z')
		}
		i += cmdLen(cmd)
	}
	return sb.String()
}

func (p *Path) String() string {
	return p.ToSVG(-1)
}

////////////////////////////////////////////////////////////////

// attrOrder is the position of attributes of generated elements, other attributes follow sorted by name.
var attrOrder = map[string]int{}

func init() {
	names := []string{
		"id", "d", "viewBox", "width", "height", "preserveAspectRatio",
		"x1", "y1", "x2", "y2", "cx", "cy", "r", "fx", "fy", "fr",
		"gradientUnits", "gradientTransform", "spreadMethod", "clipPathUnits",
	}
	for i, name := range names {
		attrOrder[name] = i + 1
	}
}

func canonicalAttrs(attrs []Attr) []Attr {
	sorted := append([]Attr{}, attrs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := attrOrder[sorted[i].Name], attrOrder[sorted[j].Name]
		if oi != 0 || oj != 0 {
			return oi != 0 && (oj == 0 || oi < oj)
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

type svgWriter struct {
	buf    *bytes.Buffer
	prec   int
	pretty bool
}

func (w *svgWriter) attr(name, val string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString(`="`)
	w.buf.WriteString(strings.ReplaceAll(val, `"`, "&quot;"))
	w.buf.WriteByte('"')
}

func (w *svgWriter) element(el *Element, depth int, inline bool) {
	if el.Kind == CharDataKind {
		w.buf.WriteString(el.Data)
		return
	}
	if w.pretty && !inline && 0 < depth {
		w.buf.WriteByte('\n')
		w.buf.WriteString(strings.Repeat("  ", depth))
	}

	w.buf.WriteByte('<')
	w.buf.WriteString(el.Tag)
	attrs := el.Attrs
	if el.Kind == PathKind && !el.Path.Empty() {
		attrs = append([]Attr{{"d", el.Path.ToSVG(w.prec)}}, attrs...)
	}
	if el.Kind != OpaqueKind && el.Kind != TextKind {
		attrs = canonicalAttrs(attrs)
	}
	if depth == 0 {
		w.attr("xmlns", SVGNamespace)
	}
	for _, attr := range attrs {
		if depth == 0 && attr.Name == "xmlns" {
			continue
		}
		w.attr(attr.Name, attr.Value)
	}

	if len(el.Children) == 0 {
		w.buf.WriteString("/>")
		return
	}
	w.buf.WriteByte('>')

	// mixed content is written as is
	childInline := inline || el.Kind == TextKind
	for _, child := range el.Children {
		if child.Kind == CharDataKind {
			childInline = true
		}
	}
	for _, child := range el.Children {
		w.element(child, depth+1, childInline)
	}
	if w.pretty && !childInline {
		w.buf.WriteByte('\n')
		w.buf.WriteString(strings.Repeat("  ", depth))
	}
	w.buf.WriteString("</")
	w.buf.WriteString(el.Tag)
	w.buf.WriteByte('>')
}

// Write serializes the document. The namespace is declared on the root only, generated elements have a canonical attribute order, and numbers are rounded to the precision of the options.
func (doc *Document) Write(w io.Writer, opts *Options) error {
	opts = withDefaults(opts)
	sw := &svgWriter{
		buf:    &bytes.Buffer{},
		prec:   opts.precision(),
		pretty: opts.Pretty,
	}
	sw.element(doc.Root, 0, false)
	_, err := w.Write(sw.buf.Bytes())
	return err
}
