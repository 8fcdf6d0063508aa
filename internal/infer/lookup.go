package infer

import (
	"github.com/fluxlang/fluxc/internal/semantic"
	"github.com/fluxlang/fluxc/internal/types"
)

// FindVarType returns the inferred MonoType of the first binding or use
// site named name anywhere in f, or a fresh, unconstrained variable if
// name was never referenced.
func FindVarType(inf *Infer, f *semantic.File, name string) types.MonoType {
	fv := &varFinder{inf: inf, name: name}
	semantic.Walk(fv, f)
	if fv.found != nil {
		return fv.found
	}
	return types.TVarRef{Var: inf.sub.Fresh()}
}

type varFinder struct {
	inf   *Infer
	name  string
	found types.MonoType
}

func (v *varFinder) Visit(n semantic.Node) bool {
	if v.found != nil {
		return false
	}
	switch node := n.(type) {
	case *semantic.Variable:
		if node.Symbol.Name != v.name {
			return true
		}
		if node.Init != nil {
			v.found = semantic.TypeOf(node.Init).T
			return false
		}
		if poly, ok := v.inf.env.Lookup(node.Symbol.ID); ok {
			v.found = Instantiate(v.inf.sub, poly)
			return false
		}
	case *semantic.IdentifierExpr:
		if node.Symbol.Name == v.name {
			v.found = semantic.TypeOf(node).T
			return false
		}
	}
	return true
}

func (v *varFinder) Done(semantic.Node) {}
