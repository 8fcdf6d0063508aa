// Package types implements a Hindley-Milner-with-extensions type system:
// builtin/variable/record/function monotypes, row-polymorphic records,
// kind constraints, and polytypes. Substitution is a union-find over
// integer type-variable indices (see subst.go).
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fluxlang/fluxc/internal/config"
)

// TVar is a type variable: an index into a Substitution's union-find forest.
type TVar int

// Builtin enumerates the primitive monotypes.
type Builtin string

const (
	Bool    Builtin = "bool"
	Int     Builtin = "int"
	Uint    Builtin = "uint"
	Float   Builtin = "float"
	String  Builtin = "string"
	Duration Builtin = "duration"
	Time    Builtin = "time"
	Regexp  Builtin = "regexp"
	Bytes   Builtin = "bytes"
)

// CollectionKind distinguishes the three collection shapes that all share a
// single element-type argument.
type CollectionKind string

const (
	Array  CollectionKind = "Array"
	Vector CollectionKind = "Vector"
	Stream CollectionKind = "Stream"
)

// MonoType is a closed sum of concrete monotypes. Exactly one of the
// concrete types below implements it at a time; Apply, Unify and String
// handle every variant here.
type MonoType interface {
	monoType()
	String() string
}

type TBuiltin struct{ Name Builtin }

func (TBuiltin) monoType()         {}
func (t TBuiltin) String() string  { return string(t.Name) }

// TVarRef is a free (unsolved) type variable.
type TVarRef struct{ Var TVar }

func (TVarRef) monoType()        {}
func (t TVarRef) String() string { return t.Var.String() }

// String renders a type variable as "t0", "t1", ... normally. In test mode
// (config.IsTestMode) it renders as "A", "B", ..., "Z", "A1", ... instead,
// so golden fixtures stay stable across runs that happen to allocate
// variables through a different path but in the same relative order.
func (v TVar) String() string {
	if !config.IsTestMode {
		return fmt.Sprintf("t%d", int(v))
	}
	n := int(v)
	letter := string(rune('A' + n%26))
	if n < 26 {
		return letter
	}
	return fmt.Sprintf("%s%d", letter, n/26)
}

// TBoundVar is a variable universally quantified by an enclosing PolyType;
// it only ever appears inside a PolyType.Expr, never in the substitution.
type TBoundVar struct{ Var TVar }

func (TBoundVar) monoType()        {}
func (t TBoundVar) String() string { return fmt.Sprintf("a%d", int(t.Var)) }

// TLabel is a singleton string-literal kind, used for record field names
// that are themselves polymorphic (e.g. a generic accessor's key).
type TLabel struct{ Name string }

func (TLabel) monoType()        {}
func (t TLabel) String() string { return fmt.Sprintf("Label(%q)", t.Name) }

type TCollection struct {
	Kind CollectionKind
	Elem MonoType
}

func (TCollection) monoType() {}
func (t TCollection) String() string {
	return fmt.Sprintf("%s<%s>", t.Kind, t.Elem)
}

type TDict struct {
	Key MonoType
	Val MonoType
}

func (TDict) monoType()        {}
func (t TDict) String() string { return fmt.Sprintf("[%s:%s]", t.Key, t.Val) }

type TRecord struct{ Row Row }

func (TRecord) monoType()        {}
func (t TRecord) String() string { return t.Row.String() }

type TFunction struct{ Fun Fun }

func (TFunction) monoType()        {}
func (t TFunction) String() string { return t.Fun.String() }

// Row ::= Empty | Extension{head, tail} | Var | BoundVar.
type Row interface {
	rowType()
	String() string
}

type RowEmpty struct{}

func (RowEmpty) rowType()        {}
func (RowEmpty) String() string { return "{}" }

type Property struct {
	Key MonoType // TLabel for a known field name, TVarRef for a polymorphic one
	Val MonoType
}

type RowExtension struct {
	Head Property
	Tail Row
}

func (RowExtension) rowType() {}
func (r RowExtension) String() string {
	props, tail := flattenRow(r)
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range props {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.Key, p.Val)
	}
	switch t := tail.(type) {
	case RowEmpty:
	case RowVar:
		fmt.Fprintf(&b, " | t%d", int(t.Var))
	case RowBoundVar:
		fmt.Fprintf(&b, " | a%d", int(t.Var))
	}
	b.WriteByte('}')
	return b.String()
}

type RowVar struct{ Var TVar }

func (RowVar) rowType()        {}
func (r RowVar) String() string { return fmt.Sprintf("t%d", int(r.Var)) }

type RowBoundVar struct{ Var TVar }

func (RowBoundVar) rowType()        {}
func (r RowBoundVar) String() string { return fmt.Sprintf("a%d", int(r.Var)) }

// Fun is a function monotype: required, optional (with default-presence
// flag), an optional pipe parameter, and a return type.
type Fun struct {
	Req  map[string]MonoType
	Opt  map[string]OptParam
	Pipe *Property
	Retn MonoType
}

type OptParam struct {
	Type       MonoType
	HasDefault bool
}

func (f Fun) String() string {
	names := make([]string, 0, len(f.Req)+len(f.Opt))
	for n := range f.Req {
		names = append(names, n)
	}
	sort.Strings(names)
	optNames := make([]string, 0, len(f.Opt))
	for n := range f.Opt {
		optNames = append(optNames, n)
	}
	sort.Strings(optNames)

	var parts []string
	if f.Pipe != nil {
		parts = append(parts, fmt.Sprintf("<-%s: %s", f.Pipe.Key, f.Pipe.Val))
	}
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", n, f.Req[n]))
	}
	for _, n := range optNames {
		parts = append(parts, fmt.Sprintf("?%s: %s", n, f.Opt[n].Type))
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(parts, ", "), f.Retn)
}

// flattenRow walks a chain of RowExtensions into a stable-sorted property
// list plus its terminal tail, so row equality reduces to flatten-and-compare.
func flattenRow(r Row) ([]Property, Row) {
	var props []Property
	cur := r
	for {
		ext, ok := cur.(RowExtension)
		if !ok {
			break
		}
		props = append(props, ext.Head)
		cur = ext.Tail
	}
	sort.SliceStable(props, func(i, j int) bool { return keyName(props[i].Key) < keyName(props[j].Key) })
	return props, cur
}

func keyName(k MonoType) string {
	if l, ok := k.(TLabel); ok {
		return l.Name
	}
	return k.String()
}

// Kind is a constraint class restricting which monotypes may instantiate a
// type variable.
type Kind string

const (
	Addable      Kind = "Addable"
	Subtractable Kind = "Subtractable"
	Divisible    Kind = "Divisible"
	Numeric      Kind = "Numeric"
	Comparable   Kind = "Comparable"
	Equatable    Kind = "Equatable"
	KindLabel    Kind = "Label"
	Nullable     Kind = "Nullable"
	KindRecord   Kind = "Record"
	Negatable    Kind = "Negatable"
	Timeable     Kind = "Timeable"
	Stringable   Kind = "Stringable"
	Basic        Kind = "Basic"
)

// PolyType is a universally quantified type scheme with per-variable kind
// constraints: `∀ vars. expr where vars: cons[var]`.
type PolyType struct {
	Vars []TVar
	Cons map[TVar][]Kind
	Expr MonoType
}

func (p PolyType) String() string {
	if len(p.Vars) == 0 {
		return p.Expr.String()
	}
	names := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		names[i] = fmt.Sprintf("a%d", int(v))
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), p.Expr)
}
