package infer

import "github.com/fluxlang/fluxc/internal/types"

// Generalize quantifies over every free type variable in t that is free
// neither in env nor in monomorphic (the variables belonging to an
// enclosing, not-yet-fully-solved function literal's parameters). The
// result replaces every quantified TVarRef with a TBoundVar carrying the
// same index, so
// Instantiate can later substitute each one for a fresh variable.
func Generalize(sub *types.Substitution, env *Env, monomorphic []types.TVar, t types.MonoType) *types.PolyType {
	applied := sub.Apply(t)
	envFree := env.freeVars(sub)

	mono := map[types.TVar]bool{}
	for _, v := range monomorphic {
		for _, fv := range sub.FreeVars(types.TVarRef{Var: v}) {
			mono[fv] = true
		}
	}

	var vars []types.TVar
	seen := map[types.TVar]bool{}
	for _, v := range sub.FreeVars(applied) {
		if envFree[v] || mono[v] || seen[v] {
			continue
		}
		seen[v] = true
		vars = append(vars, v)
	}

	bound := make(map[types.TVar]bool, len(vars))
	for _, v := range vars {
		bound[v] = true
	}
	cons := map[types.TVar][]types.Kind{}
	for _, v := range vars {
		if ks := sub.KindsOf(v); len(ks) > 0 {
			cons[v] = ks
		}
	}

	return &types.PolyType{Vars: vars, Cons: cons, Expr: bindVars(applied, bound)}
}

// Instantiate replaces every bound variable in p with a fresh type
// variable, carrying p's kind constraints onto the fresh variables —
// standard let-polymorphism instantiation, invoked at every use site of a
// generalized binding.
func Instantiate(sub *types.Substitution, p *types.PolyType) types.MonoType {
	fresh := make(map[types.TVar]types.TVar, len(p.Vars))
	for _, v := range p.Vars {
		nv := sub.Fresh()
		fresh[v] = nv
		for _, k := range p.Cons[v] {
			sub.AddKind(nv, k)
		}
	}
	return unbindVars(p.Expr, fresh)
}

func bindVars(t types.MonoType, bound map[types.TVar]bool) types.MonoType {
	switch v := t.(type) {
	case types.TVarRef:
		if bound[v.Var] {
			return types.TBoundVar{Var: v.Var}
		}
		return v
	case types.TCollection:
		return types.TCollection{Kind: v.Kind, Elem: bindVars(v.Elem, bound)}
	case types.TDict:
		return types.TDict{Key: bindVars(v.Key, bound), Val: bindVars(v.Val, bound)}
	case types.TRecord:
		return types.TRecord{Row: bindVarsRow(v.Row, bound)}
	case types.TFunction:
		return types.TFunction{Fun: bindVarsFun(v.Fun, bound)}
	default:
		return t
	}
}

func bindVarsRow(r types.Row, bound map[types.TVar]bool) types.Row {
	switch v := r.(type) {
	case types.RowVar:
		if bound[v.Var] {
			return types.RowBoundVar{Var: v.Var}
		}
		return v
	case types.RowExtension:
		return types.RowExtension{
			Head: types.Property{Key: bindVars(v.Head.Key, bound), Val: bindVars(v.Head.Val, bound)},
			Tail: bindVarsRow(v.Tail, bound),
		}
	default:
		return r
	}
}

func bindVarsFun(f types.Fun, bound map[types.TVar]bool) types.Fun {
	req := make(map[string]types.MonoType, len(f.Req))
	for n, t := range f.Req {
		req[n] = bindVars(t, bound)
	}
	opt := make(map[string]types.OptParam, len(f.Opt))
	for n, p := range f.Opt {
		opt[n] = types.OptParam{Type: bindVars(p.Type, bound), HasDefault: p.HasDefault}
	}
	var pipe *types.Property
	if f.Pipe != nil {
		pipe = &types.Property{Key: bindVars(f.Pipe.Key, bound), Val: bindVars(f.Pipe.Val, bound)}
	}
	return types.Fun{Req: req, Opt: opt, Pipe: pipe, Retn: bindVars(f.Retn, bound)}
}

func unbindVars(t types.MonoType, fresh map[types.TVar]types.TVar) types.MonoType {
	switch v := t.(type) {
	case types.TBoundVar:
		if nv, ok := fresh[v.Var]; ok {
			return types.TVarRef{Var: nv}
		}
		return v
	case types.TCollection:
		return types.TCollection{Kind: v.Kind, Elem: unbindVars(v.Elem, fresh)}
	case types.TDict:
		return types.TDict{Key: unbindVars(v.Key, fresh), Val: unbindVars(v.Val, fresh)}
	case types.TRecord:
		return types.TRecord{Row: unbindVarsRow(v.Row, fresh)}
	case types.TFunction:
		return types.TFunction{Fun: unbindVarsFun(v.Fun, fresh)}
	default:
		return t
	}
}

func unbindVarsRow(r types.Row, fresh map[types.TVar]types.TVar) types.Row {
	switch v := r.(type) {
	case types.RowBoundVar:
		if nv, ok := fresh[v.Var]; ok {
			return types.RowVar{Var: nv}
		}
		return v
	case types.RowExtension:
		return types.RowExtension{
			Head: types.Property{Key: unbindVars(v.Head.Key, fresh), Val: unbindVars(v.Head.Val, fresh)},
			Tail: unbindVarsRow(v.Tail, fresh),
		}
	default:
		return r
	}
}

func unbindVarsFun(f types.Fun, fresh map[types.TVar]types.TVar) types.Fun {
	req := make(map[string]types.MonoType, len(f.Req))
	for n, t := range f.Req {
		req[n] = unbindVars(t, fresh)
	}
	opt := make(map[string]types.OptParam, len(f.Opt))
	for n, p := range f.Opt {
		opt[n] = types.OptParam{Type: unbindVars(p.Type, fresh), HasDefault: p.HasDefault}
	}
	var pipe *types.Property
	if f.Pipe != nil {
		pipe = &types.Property{Key: unbindVars(f.Pipe.Key, fresh), Val: unbindVars(f.Pipe.Val, fresh)}
	}
	return types.Fun{Req: req, Opt: opt, Pipe: pipe, Retn: unbindVars(f.Retn, fresh)}
}
