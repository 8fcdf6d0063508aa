package types

import "fmt"

// ErrCannotUnify is returned when two monotypes cannot be made equal.
type ErrCannotUnify struct{ Left, Right MonoType }

func (e *ErrCannotUnify) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// ErrOccursCheck is returned when binding Var to Within would create an
// infinite type.
type ErrOccursCheck struct {
	Var    TVar
	Within MonoType
}

func (e *ErrOccursCheck) Error() string {
	return fmt.Sprintf("t%d occurs within %s", int(e.Var), e.Within)
}

// ErrKindMismatch is returned when a variable already carrying Kind is
// unified with a monotype that does not admit it.
type ErrKindMismatch struct {
	Var  TVar
	Kind Kind
}

func (e *ErrKindMismatch) Error() string {
	return fmt.Sprintf("t%d does not admit kind %s", int(e.Var), e.Kind)
}

// Unify makes a and b equal under s. It mutates s destructively
// (bind/union); on error s may already carry partial bindings from the
// sub-unifications that succeeded before the failure, matching the
// engine's "salvageable" failure policy: a caller keeps going and reports
// every unification error it hits rather than bailing out on the first.
func Unify(s *Substitution, a, b MonoType) error {
	a = s.Apply(a)
	b = s.Apply(b)

	if av, ok := a.(TVarRef); ok {
		return unifyVar(s, av.Var, b)
	}
	if bv, ok := b.(TVarRef); ok {
		return unifyVar(s, bv.Var, a)
	}

	switch at := a.(type) {
	case TBuiltin:
		bt, ok := b.(TBuiltin)
		if !ok || at.Name != bt.Name {
			return &ErrCannotUnify{a, b}
		}
		return nil
	case TLabel:
		switch bt := b.(type) {
		case TLabel:
			if at.Name != bt.Name {
				return &ErrCannotUnify{a, b}
			}
			return nil
		case TBuiltin:
			if bt.Name == String {
				return nil
			}
		}
		return &ErrCannotUnify{a, b}
	case TCollection:
		bt, ok := b.(TCollection)
		if !ok || at.Kind != bt.Kind {
			return &ErrCannotUnify{a, b}
		}
		return Unify(s, at.Elem, bt.Elem)
	case TDict:
		bt, ok := b.(TDict)
		if !ok {
			return &ErrCannotUnify{a, b}
		}
		if err := Unify(s, at.Key, bt.Key); err != nil {
			return err
		}
		return Unify(s, at.Val, bt.Val)
	case TRecord:
		bt, ok := b.(TRecord)
		if !ok {
			return &ErrCannotUnify{a, b}
		}
		return unifyRow(s, at.Row, bt.Row)
	case TFunction:
		bt, ok := b.(TFunction)
		if !ok {
			return &ErrCannotUnify{a, b}
		}
		return unifyFun(s, at.Fun, bt.Fun)
	case TBoundVar:
		bt, ok := b.(TBoundVar)
		if !ok || at.Var != bt.Var {
			return &ErrCannotUnify{a, b}
		}
		return nil
	default:
		return &ErrCannotUnify{a, b}
	}
}

func unifyVar(s *Substitution, v TVar, t MonoType) error {
	if tv, ok := t.(TVarRef); ok && tv.Var == v {
		return nil
	}
	if occursIn(s, v, t) {
		return &ErrOccursCheck{Var: v, Within: t}
	}
	if err := admitsAllKinds(s, v, t); err != nil {
		return err
	}
	if tv, ok := t.(TVarRef); ok {
		s.Union(v, tv.Var)
		return nil
	}
	s.Bind(v, t)
	return nil
}

func occursIn(s *Substitution, v TVar, t MonoType) bool {
	for _, fv := range s.FreeVars(t) {
		if fv == v {
			return true
		}
	}
	return false
}

// admitsAllKinds checks every kind already attached to v against t's
// built-in-type admission table.
func admitsAllKinds(s *Substitution, v TVar, t MonoType) error {
	for _, k := range s.KindsOf(v) {
		if !Admits(t, k) {
			return &ErrKindMismatch{Var: v, Kind: k}
		}
	}
	return nil
}

// Admits reports whether monotype t satisfies kind k. A still-free type
// variable admits everything (its own constraints, if any, are checked
// separately when it is eventually bound).
func Admits(t MonoType, k Kind) bool {
	if _, ok := t.(TVarRef); ok {
		return true
	}
	b, isBuiltin := t.(TBuiltin)
	switch k {
	case Addable:
		return isBuiltin && (b.Name == Int || b.Name == Uint || b.Name == Float || b.Name == String || b.Name == Duration)
	case Subtractable, Negatable:
		return isBuiltin && (b.Name == Int || b.Name == Uint || b.Name == Float || b.Name == Duration)
	case Divisible, Numeric:
		return isBuiltin && (b.Name == Int || b.Name == Uint || b.Name == Float)
	case Comparable:
		return isBuiltin && (b.Name == Int || b.Name == Uint || b.Name == Float || b.Name == String || b.Name == Duration || b.Name == Time)
	case Equatable:
		if isBuiltin {
			return true
		}
		switch v := t.(type) {
		case TCollection:
			return Admits(v.Elem, Equatable)
		case TDict:
			return Admits(v.Key, Equatable) && Admits(v.Val, Equatable)
		case TRecord:
			return rowAllSatisfy(v.Row, Equatable)
		}
		return false
	case Nullable:
		return isBuiltin
	case KindRecord:
		_, ok := t.(TRecord)
		return ok
	case Timeable:
		return isBuiltin && (b.Name == Time || b.Name == Duration)
	case Stringable:
		if _, ok := t.(TLabel); ok {
			return true
		}
		return isBuiltin && b.Name == String
	case KindLabel:
		_, ok := t.(TLabel)
		return ok
	case Basic:
		return isBuiltin
	default:
		return false
	}
}

func rowAllSatisfy(r Row, k Kind) bool {
	ext, ok := r.(RowExtension)
	if !ok {
		return true
	}
	if !Admits(ext.Head.Val, k) {
		return false
	}
	return rowAllSatisfy(ext.Tail, k)
}

func unifyFun(s *Substitution, a, b Fun) error {
	switch {
	case a.Pipe != nil && b.Pipe != nil:
		if err := Unify(s, a.Pipe.Val, b.Pipe.Val); err != nil {
			return err
		}
	case a.Pipe != nil || b.Pipe != nil:
		return &ErrCannotUnify{TFunction{a}, TFunction{b}}
	}

	for name, at := range a.Req {
		bt, ok := b.Req[name]
		if !ok {
			return &ErrCannotUnify{TFunction{a}, TFunction{b}}
		}
		if err := Unify(s, at, bt); err != nil {
			return err
		}
	}
	for name := range b.Req {
		if _, ok := a.Req[name]; !ok {
			return &ErrCannotUnify{TFunction{a}, TFunction{b}}
		}
	}

	for name, ap := range a.Opt {
		if bp, ok := b.Opt[name]; ok {
			if err := Unify(s, ap.Type, bp.Type); err != nil {
				return err
			}
		}
	}

	return Unify(s, a.Retn, b.Retn)
}

// unifyRow implements row unification: flatten both sides, unify shared
// labels, then unify the leftover fields
// of each side (plus the opposite tail) via a fresh shared tail variable
// when both tails are distinct open variables.
func unifyRow(s *Substitution, a, b Row) error {
	propsA, tailA := flattenRow(a)
	propsB, tailB := flattenRow(b)

	shared, onlyA, onlyB := splitProps(propsA, propsB)
	for _, pair := range shared {
		if err := Unify(s, pair[0].Val, pair[1].Val); err != nil {
			return err
		}
	}

	leftRemainder := rebuildRow(onlyA, tailA)
	rightRemainder := rebuildRow(onlyB, tailB)

	if len(onlyA) == 0 && len(onlyB) == 0 {
		return unifyTail(s, tailA, tailB)
	}
	if len(onlyA) == 0 {
		return unifyTail(s, tailA, rightRemainder)
	}
	if len(onlyB) == 0 {
		return unifyTail(s, leftRemainder, tailB)
	}

	avar, aOpen := tailA.(RowVar)
	bvar, bOpen := tailB.(RowVar)
	if !aOpen || !bOpen {
		return &ErrCannotUnify{TRecord{a}, TRecord{b}}
	}
	fresh := s.Fresh()
	s.BindRow(avar.Var, rebuildRow(onlyB, RowVar{Var: fresh}))
	s.BindRow(bvar.Var, rebuildRow(onlyA, RowVar{Var: fresh}))
	return nil
}

func unifyTail(s *Substitution, a, b Row) error {
	a = s.ApplyRow(a)
	b = s.ApplyRow(b)
	if av, ok := a.(RowVar); ok {
		return bindRowVar(s, av.Var, b)
	}
	if bv, ok := b.(RowVar); ok {
		return bindRowVar(s, bv.Var, a)
	}
	if _, ok := a.(RowEmpty); ok {
		if _, ok := b.(RowEmpty); ok {
			return nil
		}
	}
	if ae, ok := a.(RowExtension); ok {
		if be, ok := b.(RowExtension); ok {
			return unifyRow(s, ae, be)
		}
	}
	return &ErrCannotUnify{TRecord{a}, TRecord{b}}
}

func bindRowVar(s *Substitution, v TVar, r Row) error {
	if rv, ok := r.(RowVar); ok && rv.Var == v {
		return nil
	}
	if rv, ok := r.(RowVar); ok {
		s.Union(v, rv.Var)
		return nil
	}
	s.BindRow(v, r)
	return nil
}

func splitProps(a, b []Property) (shared [][2]Property, onlyA, onlyB []Property) {
	bi := map[string]Property{}
	for _, p := range b {
		bi[keyName(p.Key)] = p
	}
	used := map[string]bool{}
	for _, p := range a {
		if bp, ok := bi[keyName(p.Key)]; ok {
			shared = append(shared, [2]Property{p, bp})
			used[keyName(p.Key)] = true
		} else {
			onlyA = append(onlyA, p)
		}
	}
	for _, p := range b {
		if !used[keyName(p.Key)] {
			onlyB = append(onlyB, p)
		}
	}
	return
}

func rebuildRow(props []Property, tail Row) Row {
	row := tail
	for i := len(props) - 1; i >= 0; i-- {
		row = RowExtension{Head: props[i], Tail: row}
	}
	return row
}
