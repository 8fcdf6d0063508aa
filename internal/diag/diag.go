// Package diag implements the closed error taxonomy and diagnostic
// reporting shared by every compiler stage. Scanner and parser errors are
// embedded directly in the AST; everything from the AST checker
// onward is returned as an explicit, append-only list.
package diag

import (
	"fmt"

	"github.com/fluxlang/fluxc/internal/ast"
)

// Kind identifies one member of the closed error taxonomy.
type Kind string

const (
	IllegalToken         Kind = "IllegalToken"
	UnexpectedToken      Kind = "UnexpectedToken"
	InvalidExpression    Kind = "InvalidExpression"
	MissingPropertyKey   Kind = "MissingPropertyKey"
	MissingPropertyValue Kind = "MissingPropertyValue"

	InvalidOperator              Kind = "InvalidOperator"
	UnexpectedTokenForPropertyKey Kind = "UnexpectedTokenForPropertyKey"
	MissingComma                  Kind = "MissingComma"

	UnresolvedSymbol Kind = "UnresolvedSymbol"
	MalformedBlock   Kind = "MalformedBlock"
	InvalidDuration  Kind = "InvalidDuration"

	CannotUnify       Kind = "CannotUnify"
	OccursCheck       Kind = "OccursCheck"
	KindMismatch      Kind = "KindMismatch"
	MissingArgument   Kind = "MissingArgument"
	UnexpectedArgument Kind = "UnexpectedArgument"
	InvalidImportPath Kind = "InvalidImportPath"
	ImportCycle       Kind = "ImportCycle"
)

// Error is one diagnostic: a taxonomy member, a human-readable message, and
// the source location it applies to.
type Error struct {
	Kind     Kind
	Message  string
	Location ast.Location
}

func (e *Error) Error() string {
	if e.Location.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Location.File, e.Location.Start.Line, e.Location.Start.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Location.Start.Line, e.Location.Start.Column, e.Message)
}

func New(kind Kind, loc ast.Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// ImportCycleError names the exact cycle found during resolution, in
// traversal order.
type ImportCycleError struct {
	Package string
	Cycle   []string
}

func (e *ImportCycleError) Error() string {
	return fmt.Sprintf("import cycle through %q: %v", e.Package, e.Cycle)
}

func NewImportCycle(pkg string, cycle []string) *Error {
	return &Error{
		Kind:    ImportCycle,
		Message: (&ImportCycleError{Package: pkg, Cycle: cycle}).Error(),
	}
}

// Errors is an append-only diagnostic list: entries are never removed or
// reordered once added.
type Errors []*Error

func (e *Errors) Add(err *Error) { *e = append(*e, err) }

func (e Errors) HasErrors() bool { return len(e) > 0 }

// Salvage wraps a partial result alongside the errors encountered while
// producing it. Conversion (semantic.Converter.Convert) and inference
// (infer.Infer.File) do not return it: they hand back their partial result
// and their error list as separate values. No package in this module
// constructs a Salvage.
type Salvage[T any] struct {
	Value  T
	Errors Errors
}

func (s Salvage[T]) OK() bool { return !s.Errors.HasErrors() }
