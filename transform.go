package picosvg

import (
	"fmt"
	"strings"
)

// ParseTransform parses an SVG transform list such as "translate(10 20) rotate(45)". The functions are composed left to right, so the rightmost is applied first.
func ParseTransform(v string) (Matrix, error) {
	i, j := 0, 0
	m := Identity
	var fun string
	open := false
	for i < len(v) {
		if v[i] == '(' {
			if open {
				return Identity, fmt.Errorf("bad transform: unexpected '('")
			}
			fun = strings.TrimSpace(strings.Trim(strings.TrimSpace(v[j:i]), ","))
			j = i + 1
			open = true
		} else if v[i] == ')' {
			if !open {
				return Identity, fmt.Errorf("bad transform: unexpected ')'")
			}
			d, err := parsePoints(v[j:i])
			if err != nil {
				return Identity, fmt.Errorf("bad transform %s: %w", fun, err)
			}
			switch strings.ToLower(fun) {
			case "matrix":
				if len(d) != 6 {
					return Identity, fmt.Errorf("bad transform matrix")
				}
				m = m.Mul(Matrix{{d[0], d[2], d[4]}, {d[1], d[3], d[5]}})
			case "translate":
				if len(d) == 1 {
					m = m.Translate(d[0], 0.0)
				} else if len(d) == 2 {
					m = m.Translate(d[0], d[1])
				} else {
					return Identity, fmt.Errorf("bad transform translate")
				}
			case "scale":
				if len(d) == 1 {
					m = m.Scale(d[0], d[0])
				} else if len(d) == 2 {
					m = m.Scale(d[0], d[1])
				} else {
					return Identity, fmt.Errorf("bad transform scale")
				}
			case "rotate":
				if len(d) == 1 {
					m = m.Rotate(d[0])
				} else if len(d) == 3 {
					m = m.RotateAt(d[0], d[1], d[2])
				} else {
					return Identity, fmt.Errorf("bad transform rotate")
				}
			case "skewx":
				if len(d) != 1 {
					return Identity, fmt.Errorf("bad transform skewX")
				}
				m = m.SkewX(d[0])
			case "skewy":
				if len(d) != 1 {
					return Identity, fmt.Errorf("bad transform skewY")
				}
				m = m.SkewY(d[0])
			default:
				return Identity, fmt.Errorf("bad transform: unknown function %q", fun)
			}
			j = i + 1
			open = false
		}
		i++
	}
	if open || strings.Trim(v[j:], " \t\n\r,") != "" {
		return Identity, fmt.Errorf("bad transform: unexpected %q", v[j:])
	}
	return m, nil
}

// strokeState is the inherited stroke that determines whether stroke widths scale with the geometry.
type strokeState struct {
	stroked bool
	width   float64
}

type flattener struct {
	opts *Options
}

func (f *flattener) transform(stack []*Element) (Matrix, error) {
	el := stack[len(stack)-1]
	v, ok := el.Attr("transform")
	if !ok {
		return Identity, nil
	}
	m, err := ParseTransform(v)
	if err != nil {
		return Identity, &ParseError{Path: elementPath(stack), Attr: "transform", Err: err}
	}
	return m, nil
}

func (f *flattener) flatten(stack []*Element, parent Matrix, stroke strokeState) error {
	el := stack[len(stack)-1]
	if v, ok := el.Attr("stroke"); ok {
		stroke.stroked = strings.TrimSpace(v) != "none"
	}
	if w, ok := el.number("stroke-width"); ok {
		stroke.width = w
	}

	switch el.Kind {
	case CharDataKind, GradientKind:
		return nil
	case OpaqueKind, TextKind:
		if el.Kind == OpaqueKind && el.Tag != "image" && el.Tag != "switch" {
			return nil
		}
		m, err := f.transform(stack)
		if err != nil {
			return err
		}
		el.CTM = parent.Mul(m)
		if el.CTM.IsIdentity() {
			el.DelAttr("transform")
		} else {
			el.SetAttr("transform", formatMatrix(el.CTM, f.opts.precision()))
		}
		return nil
	case PathKind:
		m, err := f.transform(stack)
		if err != nil {
			return err
		}
		el.DelAttr("transform")
		el.CTM = parent.Mul(m)
		el.Bounds = el.Path.Bounds()
		if el.CTM.IsDegenerate() {
			f.opts.logger().Debug("collapse degenerate transform", "element", elementPath(stack))
			el.Path = &Path{}
		} else if !el.CTM.IsIdentity() {
			el.Path = el.Path.Transform(el.CTM)
			if scale := el.CTM.scaleFactor(); stroke.stroked && !equal(scale, 1.0) {
				el.SetAttr("stroke-width", formatLength(stroke.width*scale))
			}
		}
		return nil
	case ClipPathKind:
		// clip geometry is relative to the user space of the referencing element
		m, err := f.transform(stack)
		if err != nil {
			return err
		}
		el.DelAttr("transform")
		el.CTM = m
		parent = m
	case DefsKind:
		el.DelAttr("transform")
		el.CTM = Identity
		parent = Identity
	default:
		m, err := f.transform(stack)
		if err != nil {
			return err
		}
		el.DelAttr("transform")
		el.CTM = parent.Mul(m)
		parent = el.CTM
	}

	for _, child := range el.Children {
		if err := f.flatten(append(stack, child), parent, stroke); err != nil {
			return err
		}
	}
	return nil
}

// flattenTransforms composes the transformation chains, applies them to path geometry and removes the transform attributes. Elements that are not flattened, such as text, keep their total transformation as a single matrix.
func flattenTransforms(doc *Document, opts *Options) error {
	f := &flattener{opts: opts}
	return f.flatten([]*Element{doc.Root}, Identity, strokeState{width: 1.0})
}
