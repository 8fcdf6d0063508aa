package infer

import (
	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/types"
)

var kindNames = map[string]types.Kind{
	"Addable":      types.Addable,
	"Subtractable": types.Subtractable,
	"Divisible":    types.Divisible,
	"Numeric":      types.Numeric,
	"Comparable":   types.Comparable,
	"Equatable":    types.Equatable,
	"Label":        types.KindLabel,
	"Nullable":     types.Nullable,
	"Record":       types.KindRecord,
	"Negatable":    types.Negatable,
	"Timeable":     types.Timeable,
	"Stringable":   types.Stringable,
	"Basic":        types.Basic,
}

var builtinNames = map[string]types.Builtin{
	"bool":     types.Bool,
	"int":      types.Int,
	"uint":     types.Uint,
	"float":    types.Float,
	"string":   types.String,
	"duration": types.Duration,
	"time":     types.Time,
	"regexp":   types.Regexp,
	"bytes":    types.Bytes,
}

// typeVarBinder threads one signature's named type variables (`A`, `B`, …)
// to a single shared TVar, so repeated mentions of the same letter in a
// builtin declaration resolve to the same variable.
type typeVarBinder struct {
	sub  *types.Substitution
	vars map[string]types.TVar
	cons map[types.TVar][]types.Kind
}

func newTypeVarBinder(sub *types.Substitution) *typeVarBinder {
	return &typeVarBinder{sub: sub, vars: map[string]types.TVar{}, cons: map[types.TVar][]types.Kind{}}
}

func (b *typeVarBinder) varFor(name string, constraints []string) types.TVar {
	v, ok := b.vars[name]
	if !ok {
		v = b.sub.Fresh()
		b.vars[name] = v
	}
	for _, cname := range constraints {
		k, ok := kindNames[cname]
		if !ok {
			continue
		}
		b.sub.AddKind(v, k)
		dup := false
		for _, existing := range b.cons[v] {
			if existing == k {
				dup = true
				break
			}
		}
		if !dup {
			b.cons[v] = append(b.cons[v], k)
		}
	}
	return v
}

// lowerType converts one ast.TypeExpr node to a types.MonoType, resolving
// named type variables through b so every occurrence of the same name
// within one signature shares a TVar.
func (b *typeVarBinder) lowerType(te ast.TypeExpr) types.MonoType {
	switch t := te.(type) {
	case *ast.NamedType:
		if bi, ok := builtinNames[t.Name]; ok {
			return types.TBuiltin{Name: bi}
		}
		// An unresolved alias (no type-alias table exists in this frontend's
		// scope) gets a fresh, unconstrained variable rather than a bogus
		// concrete type.
		return types.TVarRef{Var: b.sub.Fresh()}
	case *ast.TVarType:
		return types.TVarRef{Var: b.varFor(t.Name, t.Constraints)}
	case *ast.ArrayType:
		return types.TCollection{Kind: types.Array, Elem: b.lowerType(t.Element)}
	case *ast.DictType:
		return types.TDict{Key: b.lowerType(t.Key), Val: b.lowerType(t.Val)}
	case *ast.RecordType:
		var row types.Row = types.RowEmpty{}
		if t.Tail != "" {
			row = types.RowVar{Var: b.varFor(t.Tail, nil)}
		}
		for i := len(t.Properties) - 1; i >= 0; i-- {
			p := t.Properties[i]
			row = types.RowExtension{Head: types.Property{Key: types.TLabel{Name: p.Name}, Val: b.lowerType(p.Type)}, Tail: row}
		}
		return types.TRecord{Row: row}
	case *ast.FunctionType:
		fun := types.Fun{Req: map[string]types.MonoType{}, Opt: map[string]types.OptParam{}}
		for _, p := range t.Params {
			pt := b.lowerType(p.Type)
			switch {
			case p.Pipe:
				fun.Pipe = &types.Property{Key: types.TLabel{Name: p.Name}, Val: pt}
			case p.Optional:
				fun.Opt[p.Name] = types.OptParam{Type: pt}
			default:
				fun.Req[p.Name] = pt
			}
		}
		fun.Retn = b.lowerType(t.Return)
		return types.TFunction{Fun: fun}
	default:
		return types.TVarRef{Var: b.sub.Fresh()}
	}
}

// LowerBuiltinSignature converts a `builtin id : type-expression` into a
// fully generalized PolyType: every named type variable it mentions is
// universally quantified, carrying whatever kind constraints it declared.
// Builtins have no body to infer from, so their signature is their
// complete, as-written type scheme.
func LowerBuiltinSignature(sub *types.Substitution, te ast.TypeExpr) *types.PolyType {
	b := newTypeVarBinder(sub)
	mono := b.lowerType(te)

	bound := make(map[types.TVar]bool, len(b.vars))
	vars := make([]types.TVar, 0, len(b.vars))
	for _, v := range b.vars {
		bound[v] = true
		vars = append(vars, v)
	}
	return &types.PolyType{Vars: vars, Cons: b.cons, Expr: bindVars(mono, bound)}
}
