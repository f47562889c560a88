package picosvg

import (
	"errors"
	"fmt"
)

// Sentinel causes of a ReferenceError.
var (
	ErrMissingReference = errors.New("missing reference")
	ErrReferenceCycle   = errors.New("reference cycle")
	ErrReferenceDepth   = errors.New("reference chain too deep")
	ErrReferenceType    = errors.New("unexpected reference target")
)

// ParseError is returned when the input cannot be built into an element tree. It is terminal.
type ParseError struct {
	Path string // element path, empty for lexer errors
	Attr string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	} else if e.Attr == "" {
		return fmt.Sprintf("parse error: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parse error: %s/@%s: %v", e.Path, e.Attr, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnitError is returned when a length cannot be resolved to user units. It is terminal unless permissive units are enabled.
type UnitError struct {
	Path  string
	Attr  string
	Value string
	Msg   string
}

func (e *UnitError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("unit error: %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("unit error: %s/@%s=%q: %s", e.Path, e.Attr, e.Value, e.Msg)
}

// ReferenceError describes a dangling, cyclic or too deep reference. It is recovered by the pipeline and only reported to the logger.
type ReferenceError struct {
	Path string
	Attr string
	Ref  string
	Err  error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference error: %s/@%s=#%s: %v", e.Path, e.Attr, e.Ref, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// StructuralError is returned when the document contains an element that cannot be normalized, such as text without AllowText. It is terminal.
type StructuralError struct {
	Path string
	Msg  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("Unable to convert to picosvg: %s: %s", e.Msg, e.Path)
}
