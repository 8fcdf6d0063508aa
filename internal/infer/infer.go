package infer

import (
	"github.com/fluxlang/fluxc/internal/ast"
	"github.com/fluxlang/fluxc/internal/diag"
	"github.com/fluxlang/fluxc/internal/semantic"
	"github.com/fluxlang/fluxc/internal/types"
)

// Infer is the constraint generator: it walks a semantic.File in source
// order, emitting unification constraints against a single long-lived
// Substitution — it is never cloned or merged, only mutated in place for
// the duration of one package.
type Infer struct {
	sub     *types.Substitution
	env     *Env
	file    *semantic.File
	errs    diag.Errors
	imports map[string]map[string]*types.PolyType
}

// New starts a fresh inference run seeded with prelude — the Environment
// bindings available to every package without explicit import.
func New(prelude *Env) *Infer {
	return &Infer{sub: types.NewSubstitution(), env: prelude.Child(), imports: map[string]map[string]*types.PolyType{}}
}

func (inf *Infer) Substitution() *types.Substitution { return inf.sub }
func (inf *Infer) Env() *Env                         { return inf.env }

// BindImport registers the resolved exports of one import path, keyed by
// the path exactly as the converter records it on an import-identifier
// Symbol (local > import > prelude precedence is enforced earlier, at
// symbol-resolution time, by the converter itself).
func (inf *Infer) BindImport(path string, exports map[string]*types.PolyType) {
	inf.imports[path] = exports
}

// File infers every top-level binding in f and rewrites every visited
// node's type slot in place with its final, fully-applied MonoType.
// Failures are salvageable:
// whatever constraints did solve remain recorded, and the caller receives
// both the (partially rewritten) file and the accumulated errors.
func (inf *Infer) File(f *semantic.File) diag.Errors {
	inf.file = f
	inf.inferStmts(f.Body, nil)
	semantic.Walk(applyVisitor{sub: inf.sub}, f)
	return inf.errs
}

type applyVisitor struct{ sub *types.Substitution }

func (v applyVisitor) Visit(n semantic.Node) bool {
	if slot := semantic.TypeOf(n); slot != nil && slot.T != nil {
		slot.T = v.sub.Apply(slot.T)
	}
	return true
}

func (applyVisitor) Done(semantic.Node) {}

func (inf *Infer) unify(loc ast.Location, a, b types.MonoType) {
	if err := types.Unify(inf.sub, a, b); err != nil {
		inf.errs.Add(wrapUnifyErr(loc, err))
	}
}

func wrapUnifyErr(loc ast.Location, err error) *diag.Error {
	switch e := err.(type) {
	case *types.ErrCannotUnify:
		return diag.New(diag.CannotUnify, loc, "cannot unify %s with %s", e.Left, e.Right)
	case *types.ErrOccursCheck:
		return diag.New(diag.OccursCheck, loc, "t%d occurs within %s", int(e.Var), e.Within)
	case *types.ErrKindMismatch:
		return diag.New(diag.KindMismatch, loc, "%s does not admit kind %s", types.TVarRef{Var: e.Var}, e.Kind)
	default:
		return diag.New(diag.CannotUnify, loc, "%s", err.Error())
	}
}

func (inf *Infer) requireKind(loc ast.Location, t types.MonoType, k types.Kind) {
	t = inf.sub.Apply(t)
	if v, ok := t.(types.TVarRef); ok {
		inf.sub.AddKind(v.Var, k)
		return
	}
	if !types.Admits(t, k) {
		inf.errs.Add(diag.New(diag.KindMismatch, loc, "%s does not admit kind %s", t, k))
	}
}

func (inf *Infer) requireCollection(loc ast.Location, t types.MonoType) {
	t = inf.sub.Apply(t)
	if v, ok := t.(types.TVarRef); ok {
		elemVar := inf.sub.Fresh()
		inf.unify(loc, types.TVarRef{Var: v.Var}, types.TCollection{Kind: types.Array, Elem: types.TVarRef{Var: elemVar}})
		return
	}
	if _, ok := t.(types.TCollection); ok {
		return
	}
	inf.errs.Add(diag.New(diag.CannotUnify, loc, "expected a collection, found %s", t))
}

func loc(n semantic.Node) ast.Location { return semantic.LocOf(n).Loc }

func (inf *Infer) inferStmts(stmts []semantic.Statement, mono []types.TVar) {
	for _, s := range stmts {
		inf.inferStmt(s, mono)
	}
}

// inferStmt processes one statement, returning its Return type when s is a
// *semantic.Return (nil, false otherwise) so inferBlock can find the value
// the block's chain terminates in.
func (inf *Infer) inferStmt(s semantic.Statement, mono []types.TVar) (types.MonoType, bool) {
	switch st := s.(type) {
	case *semantic.Variable:
		inf.inferVariable(st, mono)
		return nil, false
	case *semantic.ExprStatement:
		inf.infer(st.Expr, mono)
		return nil, false
	case *semantic.Return:
		return inf.infer(st.Argument, mono), true
	case *semantic.TestCase:
		inf.inferBlock(st.Block, mono)
		return nil, false
	default:
		return nil, false
	}
}

func (inf *Infer) inferVariable(v *semantic.Variable, mono []types.TVar) {
	if v.Init == nil {
		// A `builtin id : type-expression` declaration: its signature, not
		// an inferred expression, is its complete type scheme.
		if te, ok := inf.file.Builtins[v.Symbol.ID]; ok {
			inf.env.Bind(v.Symbol.ID, LowerBuiltinSignature(inf.sub, te))
			return
		}
		inf.env.Bind(v.Symbol.ID, &types.PolyType{Expr: types.TVarRef{Var: inf.sub.Fresh()}})
		return
	}
	t := inf.infer(v.Init, mono)
	inf.env.Bind(v.Symbol.ID, Generalize(inf.sub, inf.env, mono, t))
}

// inferBlock walks a Block's linked chain, returning the type of the
// Return statement it terminates in (or a fresh, unconstrained variable if
// the chain never reaches one — the converter already reported
// MalformedBlock for that case; inference still needs something to unify
// against so the rest of the package can be checked).
func (inf *Infer) inferBlock(blk *semantic.Block, mono []types.TVar) types.MonoType {
	var retType types.MonoType
	for s := blk.Head; s != nil; s = s.Next() {
		if t, isReturn := inf.inferStmt(s, mono); isReturn {
			retType = t
		}
	}
	if retType == nil {
		retType = types.TVarRef{Var: inf.sub.Fresh()}
	}
	return retType
}

func (inf *Infer) infer(e semantic.Expression, mono []types.TVar) types.MonoType {
	var t types.MonoType
	switch ex := e.(type) {
	case *semantic.IdentifierExpr:
		t = inf.inferIdent(ex)
	case *semantic.IntegerLit:
		t = types.TBuiltin{Name: types.Int}
	case *semantic.UintLit:
		t = types.TBuiltin{Name: types.Uint}
	case *semantic.FloatLit:
		t = types.TBuiltin{Name: types.Float}
	case *semantic.StringLit:
		t = types.TBuiltin{Name: types.String}
	case *semantic.BooleanLit:
		t = types.TBuiltin{Name: types.Bool}
	case *semantic.RegexpLit:
		t = types.TBuiltin{Name: types.Regexp}
	case *semantic.DateTimeLit:
		t = types.TBuiltin{Name: types.Time}
	case *semantic.DurationLit:
		t = types.TBuiltin{Name: types.Duration}
	case *semantic.StringExpr:
		t = inf.inferStringExpr(ex, mono)
	case *semantic.ArrayExpr:
		t = inf.inferArray(ex, mono)
	case *semantic.DictExpr:
		t = inf.inferDict(ex, mono)
	case *semantic.ObjectExpr:
		t = inf.inferObject(ex, mono)
	case *semantic.FunctionExpr:
		t = inf.inferFunction(ex, mono)
	case *semantic.LogicalExpr:
		t = inf.inferLogical(ex, mono)
	case *semantic.MemberExpr:
		t = inf.inferMember(ex, mono)
	case *semantic.IndexExpr:
		t = inf.inferIndex(ex, mono)
	case *semantic.BinaryExpr:
		t = inf.inferBinary(ex, mono)
	case *semantic.UnaryExpr:
		t = inf.inferUnary(ex, mono)
	case *semantic.CallExpr:
		t = inf.inferCall(ex, mono)
	case *semantic.ConditionalExpr:
		t = inf.inferConditional(ex, mono)
	default:
		t = types.TVarRef{Var: inf.sub.Fresh()}
	}
	semantic.TypeOf(e).T = t
	return t
}

func (inf *Infer) inferIdent(ie *semantic.IdentifierExpr) types.MonoType {
	poly, ok := inf.env.Lookup(ie.Symbol.ID)
	if !ok {
		return types.TVarRef{Var: inf.sub.Fresh()}
	}
	return Instantiate(inf.sub, poly)
}

func (inf *Infer) inferStringExpr(se *semantic.StringExpr, mono []types.TVar) types.MonoType {
	for _, part := range se.Parts {
		if _, isText := part.(*semantic.TextPart); isText {
			inf.infer(part, mono)
			continue
		}
		t := inf.infer(part, mono)
		inf.requireKind(loc(part), t, types.Stringable)
	}
	return types.TBuiltin{Name: types.String}
}

func (inf *Infer) inferArray(ae *semantic.ArrayExpr, mono []types.TVar) types.MonoType {
	elemVar := inf.sub.Fresh()
	for _, el := range ae.Elements {
		t := inf.infer(el, mono)
		inf.unify(loc(el), t, types.TVarRef{Var: elemVar})
	}
	return types.TCollection{Kind: types.Array, Elem: types.TVarRef{Var: elemVar}}
}

func (inf *Infer) inferDict(de *semantic.DictExpr, mono []types.TVar) types.MonoType {
	keyVar, valVar := inf.sub.Fresh(), inf.sub.Fresh()
	for _, item := range de.Elements {
		kt := inf.infer(item.Key, mono)
		vt := inf.infer(item.Val, mono)
		inf.unify(loc(item.Key), kt, types.TVarRef{Var: keyVar})
		inf.unify(loc(item.Val), vt, types.TVarRef{Var: valVar})
	}
	return types.TDict{Key: types.TVarRef{Var: keyVar}, Val: types.TVarRef{Var: valVar}}
}

// inferObject builds the record's row from its properties, stacked on top
// of `with`'s row when present. An overridden field
// simply appears twice in the flattened row, nearer occurrence first; full
// row-lacks-label constraints are beyond this frontend's kind system.
func (inf *Infer) inferObject(oe *semantic.ObjectExpr, mono []types.TVar) types.MonoType {
	var tail types.Row = types.RowEmpty{}
	if oe.With != nil {
		withType := inf.infer(oe.With, mono)
		tailVar := inf.sub.Fresh()
		inf.unify(loc(oe.With), withType, types.TRecord{Row: types.RowVar{Var: tailVar}})
		tail = types.RowVar{Var: tailVar}
	}
	row := tail
	for i := len(oe.Properties) - 1; i >= 0; i-- {
		p := oe.Properties[i]
		if p.Value == nil {
			continue
		}
		vt := inf.infer(p.Value, mono)
		row = types.RowExtension{Head: types.Property{Key: types.TLabel{Name: p.Key}, Val: vt}, Tail: row}
	}
	return types.TRecord{Row: row}
}

// inferMember handles two distinct shapes under one surface syntax: plain
// record field access (row-unify a fresh field against the object's row),
// and access into an imported package (me.Object is the converter's
// import-identifier placeholder — Symbol{Package: path, ID: path,
// Name: ""} — whose members resolve directly against that package's
// PackageExports rather than through row unification, since an import
// isn't a value with a row-polymorphic type of its own).
func (inf *Infer) inferMember(me *semantic.MemberExpr, mono []types.TVar) types.MonoType {
	if id, ok := me.Object.(*semantic.IdentifierExpr); ok && id.Symbol.Name == "" && id.Symbol.ID == id.Symbol.Package {
		semantic.TypeOf(id).T = types.TVarRef{Var: inf.sub.Fresh()}
		if exports, ok := inf.imports[id.Symbol.Package]; ok {
			if poly, ok := exports[me.Property]; ok {
				return Instantiate(inf.sub, poly)
			}
			inf.errs.Add(diag.New(diag.UnresolvedSymbol, loc(me), "package %q has no member %q", id.Symbol.Package, me.Property))
		}
		return types.TVarRef{Var: inf.sub.Fresh()}
	}

	objType := inf.infer(me.Object, mono)
	fieldVar, tailVar := inf.sub.Fresh(), inf.sub.Fresh()
	expected := types.TRecord{Row: types.RowExtension{
		Head: types.Property{Key: types.TLabel{Name: me.Property}, Val: types.TVarRef{Var: fieldVar}},
		Tail: types.RowVar{Var: tailVar},
	}}
	inf.unify(loc(me), objType, expected)
	return types.TVarRef{Var: fieldVar}
}

func (inf *Infer) inferIndex(ie *semantic.IndexExpr, mono []types.TVar) types.MonoType {
	arrType := inf.sub.Apply(inf.infer(ie.Array, mono))
	idxType := inf.infer(ie.Index, mono)
	if dict, ok := arrType.(types.TDict); ok {
		inf.unify(loc(ie), idxType, dict.Key)
		return dict.Val
	}
	elemVar := inf.sub.Fresh()
	inf.unify(loc(ie.Index), idxType, types.TBuiltin{Name: types.Int})
	inf.unify(loc(ie), arrType, types.TCollection{Kind: types.Array, Elem: types.TVarRef{Var: elemVar}})
	return types.TVarRef{Var: elemVar}
}

func (inf *Infer) inferBinary(be *semantic.BinaryExpr, mono []types.TVar) types.MonoType {
	l := loc(be)
	lt := inf.infer(be.Left, mono)
	rt := inf.infer(be.Right, mono)
	switch be.Operator {
	case "+", "-", "*", "/", "%":
		inf.unify(l, lt, rt)
		kinds := map[string]types.Kind{"+": types.Addable, "-": types.Subtractable, "*": types.Divisible, "/": types.Divisible, "%": types.Divisible}
		inf.requireKind(l, lt, kinds[be.Operator])
		return inf.sub.Apply(lt)
	case "^":
		inf.unify(l, lt, rt)
		inf.requireKind(l, lt, types.Numeric)
		return inf.sub.Apply(lt)
	case "<", "<=", ">", ">=":
		inf.unify(l, lt, rt)
		inf.requireKind(l, lt, types.Comparable)
		return types.TBuiltin{Name: types.Bool}
	case "==", "!=":
		inf.unify(l, lt, rt)
		inf.requireKind(l, lt, types.Equatable)
		return types.TBuiltin{Name: types.Bool}
	case "=~", "!~":
		inf.unify(l, lt, types.TBuiltin{Name: types.String})
		inf.unify(l, rt, types.TBuiltin{Name: types.Regexp})
		return types.TBuiltin{Name: types.Bool}
	case "startswith":
		inf.unify(l, lt, types.TBuiltin{Name: types.String})
		inf.unify(l, rt, types.TBuiltin{Name: types.String})
		return types.TBuiltin{Name: types.Bool}
	case "in":
		elemVar := inf.sub.Fresh()
		inf.unify(l, lt, types.TVarRef{Var: elemVar})
		inf.unify(l, rt, types.TCollection{Kind: types.Array, Elem: types.TVarRef{Var: elemVar}})
		return types.TBuiltin{Name: types.Bool}
	default:
		return types.TVarRef{Var: inf.sub.Fresh()}
	}
}

func (inf *Infer) inferLogical(le *semantic.LogicalExpr, mono []types.TVar) types.MonoType {
	l := loc(le)
	lt := inf.infer(le.Left, mono)
	rt := inf.infer(le.Right, mono)
	inf.unify(l, lt, types.TBuiltin{Name: types.Bool})
	inf.unify(l, rt, types.TBuiltin{Name: types.Bool})
	return types.TBuiltin{Name: types.Bool}
}

func (inf *Infer) inferUnary(ue *semantic.UnaryExpr, mono []types.TVar) types.MonoType {
	l := loc(ue)
	t := inf.infer(ue.Argument, mono)
	switch ue.Operator {
	case "-":
		inf.requireKind(l, t, types.Negatable)
		return inf.sub.Apply(t)
	case "+":
		inf.requireKind(l, t, types.Numeric)
		return inf.sub.Apply(t)
	case "not":
		inf.unify(l, t, types.TBuiltin{Name: types.Bool})
		return types.TBuiltin{Name: types.Bool}
	case "exists":
		inf.requireKind(l, t, types.Nullable)
		return types.TBuiltin{Name: types.Bool}
	case "empty":
		inf.requireCollection(l, t)
		return types.TBuiltin{Name: types.Bool}
	default:
		return inf.sub.Apply(t)
	}
}

func (inf *Infer) inferConditional(ce *semantic.ConditionalExpr, mono []types.TVar) types.MonoType {
	l := loc(ce)
	tt := inf.infer(ce.Test, mono)
	ct := inf.infer(ce.Consequent, mono)
	at := inf.infer(ce.Alternate, mono)
	inf.unify(l, tt, types.TBuiltin{Name: types.Bool})
	inf.unify(l, ct, at)
	return inf.sub.Apply(ct)
}

// inferFunction infers a function literal's Fun type, treating every
// parameter's fresh variable as monomorphic for the duration of the body
// (standard value-restriction scoping) so the body cannot generalize over
// a parameter's own type.
func (inf *Infer) inferFunction(fe *semantic.FunctionExpr, mono []types.TVar) types.MonoType {
	fun := types.Fun{Req: map[string]types.MonoType{}, Opt: map[string]types.OptParam{}}
	childMono := append(append([]types.TVar{}, mono...))

	for _, p := range fe.Params {
		pv := inf.sub.Fresh()
		pt := types.TVarRef{Var: pv}
		inf.env.Bind(p.Symbol.ID, &types.PolyType{Expr: pt})
		childMono = append(childMono, pv)

		if p.Default != nil {
			dt := inf.infer(p.Default, mono)
			inf.unify(loc(fe), dt, pt)
			fun.Opt[p.Symbol.Name] = types.OptParam{Type: pt, HasDefault: true}
			continue
		}
		if p.Pipe {
			fun.Pipe = &types.Property{Key: types.TLabel{Name: p.Symbol.Name}, Val: pt}
			continue
		}
		fun.Req[p.Symbol.Name] = pt
	}

	fun.Retn = inf.inferBlock(fe.Body, childMono)
	return types.TFunction{Fun: fun}
}

// inferCall matches named arguments against the callee's function type.
// When the callee's type is already solved, argument names are checked
// directly against its declared Req/Opt sets (MissingArgument /
// UnexpectedArgument). When it is still an unsolved variable (a
// higher-order parameter, say), the observed call shape is unified against
// it wholesale, which binds the variable without needing to know in
// advance which names the eventual callee will call required vs. optional.
func (inf *Infer) inferCall(ce *semantic.CallExpr, mono []types.TVar) types.MonoType {
	l := loc(ce)
	calleeType := inf.sub.Apply(inf.infer(ce.Callee, mono))

	argTypes := map[string]types.MonoType{}
	for _, a := range ce.Arguments {
		if a.Value == nil || a.Key == "" {
			continue
		}
		argTypes[a.Key] = inf.infer(a.Value, mono)
	}
	var pipeType types.MonoType
	if ce.Pipe != nil {
		pipeType = inf.infer(ce.Pipe, mono)
	}

	retVar := inf.sub.Fresh()

	if fn, ok := calleeType.(types.TFunction); ok {
		for name, pt := range fn.Fun.Req {
			at, supplied := argTypes[name]
			if !supplied {
				inf.errs.Add(diag.New(diag.MissingArgument, l, "missing argument %q", name))
				continue
			}
			inf.unify(l, at, pt)
		}
		for name, at := range argTypes {
			if _, isReq := fn.Fun.Req[name]; isReq {
				continue
			}
			if opt, isOpt := fn.Fun.Opt[name]; isOpt {
				inf.unify(l, at, opt.Type)
				continue
			}
			inf.errs.Add(diag.New(diag.UnexpectedArgument, l, "unexpected argument %q", name))
		}
		switch {
		case fn.Fun.Pipe != nil && pipeType != nil:
			inf.unify(l, pipeType, fn.Fun.Pipe.Val)
		case fn.Fun.Pipe == nil && pipeType != nil:
			inf.errs.Add(diag.New(diag.UnexpectedArgument, l, "callee accepts no pipe argument"))
		case fn.Fun.Pipe != nil && pipeType == nil:
			inf.errs.Add(diag.New(diag.MissingArgument, l, "missing pipe argument"))
		}
		inf.unify(l, types.TVarRef{Var: retVar}, fn.Fun.Retn)
		return types.TVarRef{Var: retVar}
	}

	observed := types.Fun{Req: map[string]types.MonoType{}, Opt: map[string]types.OptParam{}, Retn: types.TVarRef{Var: retVar}}
	for name, t := range argTypes {
		observed.Req[name] = t
	}
	if pipeType != nil {
		observed.Pipe = &types.Property{Key: types.TLabel{Name: "<-"}, Val: pipeType}
	}
	inf.unify(l, calleeType, types.TFunction{Fun: observed})
	return types.TVarRef{Var: retVar}
}
