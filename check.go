package picosvg

import (
	"fmt"
)

// retainedTags are definitions that stay in place verbatim because preserved content references them.
var retainedTags = map[string]bool{
	"linearGradient": true,
	"radialGradient": true,
	"clipPath":       true,
}

// Violation is an element that is not allowed in a normalized document.
type Violation struct {
	Msg    string // BadElement
	Path   string
	Detail string
}

func (v Violation) String() string {
	if v.Detail != "" {
		return v.Msg + ": " + v.Path + " " + v.Detail
	}
	return v.Msg + ": " + v.Path
}

// Check returns the elements of a document that are not in normalized form, such as basic shapes, clip paths, nested viewports and reused ids. Text and preserved definitions are allowed as the options allow them. It does not modify the document.
func (doc *Document) Check(opts *Options) []Violation {
	opts = withDefaults(opts)
	vs := []Violation{}
	seen := map[string]string{}
	bad := func(stack []*Element) {
		vs = append(vs, Violation{Msg: "BadElement", Path: elementPath(stack)})
	}

	var check func([]*Element)
	check = func(stack []*Element) {
		el := stack[len(stack)-1]
		if id := el.ID(); id != "" {
			if first, ok := seen[id]; ok {
				vs = append(vs, Violation{"BadElement", elementPath(stack), fmt.Sprintf(`reuses id="%s", first seen at %s`, id, first)})
			} else {
				seen[id] = elementPath(stack)
			}
		}

		var parent *Element
		if 1 < len(stack) {
			parent = stack[len(stack)-2]
		}
		switch el.Kind {
		case GroupKind:
			if parent == nil && el.Tag != "svg" || parent != nil && el.Tag != "g" {
				bad(stack)
				return
			}
		case PathKind, DefsKind:
		case GradientKind:
			if parent == nil || parent.Kind != DefsKind {
				bad(stack)
				return
			}
			for _, child := range el.Children {
				if child.Kind != CharDataKind && child.Tag != "stop" {
					bad(append(stack, child))
				}
			}
			return
		case TextKind:
			if !opts.AllowText {
				bad(stack)
			}
			return
		case OpaqueKind:
			allowed := definitionTags[el.Tag] || preservedTags[el.Tag] || retainedTags[el.Tag] || parent != nil && parent.Kind == DefsKind
			if !opts.AllowAllDefs || !allowed {
				bad(stack)
			} else if path, ok := findText(stack); ok && preservedTags[el.Tag] && !opts.AllowText {
				vs = append(vs, Violation{Msg: "BadElement", Path: path})
			}
			return
		default:
			bad(stack)
			return
		}

		for _, child := range el.Children {
			if child.Kind != CharDataKind {
				check(append(stack, child))
			}
		}
	}
	check([]*Element{doc.Root})
	return vs
}

// checkNormalized fails when the normalized document still holds elements that are not allowed.
func checkNormalized(doc *Document, opts *Options) error {
	if vs := doc.Check(opts); 0 < len(vs) {
		for _, v := range vs {
			opts.logger().Debug("violation", "violation", v.String())
		}
		return &StructuralError{Path: vs[0].Path, Msg: vs[0].Msg}
	}
	return nil
}
