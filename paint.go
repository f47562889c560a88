package picosvg

// settleFillRules rewrites the geometry of paths filled with the evenodd rule so that it fills identically under the nonzero rule, and removes the fill-rule properties. Stroked paths keep their geometry and rule, since settling changes the outline the stroke follows.
func settleFillRules(doc *Document, opts *Options) error {
	if !opts.EvenOddToNonZero {
		return nil
	}
	tolerance := doc.Tolerance()
	walk(nil, doc.Root, func(stack []*Element) bool {
		el := stack[len(stack)-1]
		if el.Kind != PathKind {
			return el.Kind == GroupKind
		}
		rule, _ := inheritedAttr(stack, "fill-rule")
		if ParseFillRule(rule) != EvenOdd {
			el.DelAttr("fill-rule")
		} else if strokePainted(stack) {
			opts.logger().Debug("keep fill rule of stroked path", "element", elementPath(stack))
			el.SetAttr("fill-rule", "evenodd")
		} else {
			el.Path = el.Path.Flatten(tolerance).Settle(EvenOdd)
			el.DelAttr("fill-rule")
		}
		return false
	})
	walk(nil, doc.Root, func(stack []*Element) bool {
		el := stack[len(stack)-1]
		if el.Kind == GroupKind {
			el.DelAttr("fill-rule")
			return true
		}
		return false
	})
	return nil
}

// unpainted returns true if a path element paints nothing.
func unpainted(stack []*Element) bool {
	el := stack[len(stack)-1]
	if el.Path.Empty() {
		return true
	}
	for _, e := range stack {
		if f, ok := e.number("opacity"); ok && f == 0.0 {
			return true
		} else if v, _ := e.Attr("display"); v == "none" {
			return true
		}
	}
	return !fillPainted(stack) && !strokePainted(stack)
}

// removeUnpainted removes paths without visible fill or stroke. Groups left empty are removed when simplifying.
func removeUnpainted(doc *Document, opts *Options) error {
	if !opts.RemoveUnpainted {
		return nil
	}
	var remove func([]*Element)
	remove = func(stack []*Element) {
		el := stack[len(stack)-1]
		children := el.Children[:0]
		for _, child := range el.Children {
			if child.Kind == PathKind && unpainted(append(stack, child)) {
				opts.logger().Debug("remove unpainted shape", "element", elementPath(append(stack, child)))
				continue
			} else if child.Kind == GroupKind {
				remove(append(stack, child))
			}
			children = append(children, child)
		}
		el.Children = children
	}
	remove([]*Element{doc.Root})
	return nil
}
