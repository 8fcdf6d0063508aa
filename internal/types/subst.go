package types

// Substitution is a union-find over type-variable indices: each variable is
// either its own representative root (optionally carrying kind
// constraints) or has been unioned into another root; a root may also be
// bound to a concrete MonoType or Row, union-find style, so that Apply is
// a read-only query rather than a destructive in-place type mutation.
type Substitution struct {
	parent   []TVar
	bound    []MonoType
	rowBound []Row
	kinds    [][]Kind
}

// NewSubstitution returns an empty substitution. Call Fresh to introduce
// variables into it.
func NewSubstitution() *Substitution {
	return &Substitution{}
}

// Fresh introduces a new, unbound type variable.
func (s *Substitution) Fresh() TVar {
	v := TVar(len(s.parent))
	s.parent = append(s.parent, v)
	s.bound = append(s.bound, nil)
	s.rowBound = append(s.rowBound, nil)
	s.kinds = append(s.kinds, nil)
	return v
}

// find returns v's representative root, compressing the path it walks.
func (s *Substitution) find(v TVar) TVar {
	for s.parent[v] != v {
		s.parent[v] = s.parent[s.parent[v]]
		v = s.parent[v]
	}
	return v
}

// Lookup resolves v to the monotype bound to its representative, or to a
// TVarRef naming that representative if it is still unbound.
func (s *Substitution) Lookup(v TVar) (MonoType, bool) {
	r := s.find(v)
	if s.bound[r] != nil {
		return s.bound[r], true
	}
	return TVarRef{Var: r}, false
}

// LookupRow is Lookup's row-typed counterpart.
func (s *Substitution) LookupRow(v TVar) (Row, bool) {
	r := s.find(v)
	if s.rowBound[r] != nil {
		return s.rowBound[r], true
	}
	return RowVar{Var: r}, false
}

// KindsOf returns the kind constraints accumulated on v's representative.
func (s *Substitution) KindsOf(v TVar) []Kind {
	return s.kinds[s.find(v)]
}

// HasKind reports whether v's representative already carries k.
func (s *Substitution) HasKind(v TVar, k Kind) bool {
	for _, existing := range s.KindsOf(v) {
		if existing == k {
			return true
		}
	}
	return false
}

// AddKind attaches k to v's representative. Kinds are monotone: once
// attached they are never removed.
func (s *Substitution) AddKind(v TVar, k Kind) {
	r := s.find(v)
	if s.HasKind(r, k) {
		return
	}
	s.kinds[r] = append(s.kinds[r], k)
}

// Bind records v ↦ t. Occurs-check is Unify's responsibility, not Bind's.
func (s *Substitution) Bind(v TVar, t MonoType) {
	s.bound[s.find(v)] = t
}

// BindRow is Bind's row-typed counterpart.
func (s *Substitution) BindRow(v TVar, r Row) {
	s.rowBound[s.find(v)] = r
}

// Union merges two still-unbound variables' roots, carrying constraints
// from both over to the surviving root.
func (s *Substitution) Union(a, b TVar) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	s.parent[rb] = ra
	for _, k := range s.kinds[rb] {
		s.AddKind(ra, k)
	}
}

// Apply resolves every free type variable reachable from t against s, to a
// fixed point. Because Lookup always walks to t's current representative
// and bound values are only ever set once per root, Apply(Apply(t)) =
// Apply(t).
func (s *Substitution) Apply(t MonoType) MonoType {
	switch v := t.(type) {
	case TVarRef:
		resolved, ok := s.Lookup(v.Var)
		if !ok {
			return resolved
		}
		return s.Apply(resolved)
	case TBuiltin, TBoundVar, TLabel:
		return v
	case TCollection:
		return TCollection{Kind: v.Kind, Elem: s.Apply(v.Elem)}
	case TDict:
		return TDict{Key: s.Apply(v.Key), Val: s.Apply(v.Val)}
	case TRecord:
		return TRecord{Row: s.ApplyRow(v.Row)}
	case TFunction:
		return TFunction{Fun: s.applyFun(v.Fun)}
	default:
		return t
	}
}

func (s *Substitution) applyFun(f Fun) Fun {
	req := make(map[string]MonoType, len(f.Req))
	for n, t := range f.Req {
		req[n] = s.Apply(t)
	}
	opt := make(map[string]OptParam, len(f.Opt))
	for n, p := range f.Opt {
		opt[n] = OptParam{Type: s.Apply(p.Type), HasDefault: p.HasDefault}
	}
	var pipe *Property
	if f.Pipe != nil {
		pipe = &Property{Key: s.Apply(f.Pipe.Key), Val: s.Apply(f.Pipe.Val)}
	}
	return Fun{Req: req, Opt: opt, Pipe: pipe, Retn: s.Apply(f.Retn)}
}

// ApplyRow is Apply's row-typed counterpart.
func (s *Substitution) ApplyRow(r Row) Row {
	switch v := r.(type) {
	case RowEmpty, RowBoundVar:
		return v
	case RowVar:
		resolved, ok := s.LookupRow(v.Var)
		if !ok {
			return resolved
		}
		return s.ApplyRow(resolved)
	case RowExtension:
		return RowExtension{
			Head: Property{Key: s.Apply(v.Head.Key), Val: s.Apply(v.Head.Val)},
			Tail: s.ApplyRow(v.Tail),
		}
	default:
		return r
	}
}

// FreeVars collects every unbound type variable reachable from t.
func (s *Substitution) FreeVars(t MonoType) []TVar {
	seen := map[TVar]bool{}
	var out []TVar
	var walk func(MonoType)
	var walkRow func(Row)
	walk = func(t MonoType) {
		switch v := t.(type) {
		case TVarRef:
			resolved, ok := s.Lookup(v.Var)
			if !ok {
				if rv, ok2 := resolved.(TVarRef); ok2 && !seen[rv.Var] {
					seen[rv.Var] = true
					out = append(out, rv.Var)
				}
				return
			}
			walk(resolved)
		case TCollection:
			walk(v.Elem)
		case TDict:
			walk(v.Key)
			walk(v.Val)
		case TRecord:
			walkRow(v.Row)
		case TFunction:
			if v.Fun.Pipe != nil {
				walk(v.Fun.Pipe.Val)
			}
			for _, t := range v.Fun.Req {
				walk(t)
			}
			for _, p := range v.Fun.Opt {
				walk(p.Type)
			}
			walk(v.Fun.Retn)
		}
	}
	walkRow = func(r Row) {
		switch v := r.(type) {
		case RowVar:
			resolved, ok := s.LookupRow(v.Var)
			if !ok {
				if !seen[v.Var] {
					seen[v.Var] = true
					out = append(out, v.Var)
				}
				return
			}
			walkRow(resolved)
		case RowExtension:
			walk(v.Head.Val)
			walkRow(v.Tail)
		}
	}
	walk(s.Apply(t))
	return out
}
