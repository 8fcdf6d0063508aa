// Package infer implements a constraint-based Hindley-Milner solver: a
// generator that walks the semantic graph in source order emitting
// unification constraints, backed by the union-find
// internal/types.Substitution.
package infer

import "github.com/fluxlang/fluxc/internal/types"

// Env binds every Symbol (by its unique ID, never by its possibly-shadowed
// name) to a PolyType. Because Symbol.ID is minted fresh at every binding
// site, one flat map suffices for an entire package — two bindings that
// share a surface name always carry distinct IDs, so there is no need to
// push and pop lexical scopes the way a name-keyed environment would.
type Env struct {
	byID map[string]*types.PolyType
}

func NewEnv() *Env { return &Env{byID: map[string]*types.PolyType{}} }

// Child returns a new Env seeded with everything in e — used to hand the
// prelude/import environment to a fresh per-package Infer without letting
// that package's bindings leak back into the shared parent.
func (e *Env) Child() *Env {
	c := NewEnv()
	for k, v := range e.byID {
		c.byID[k] = v
	}
	return c
}

func (e *Env) Bind(id string, p *types.PolyType) { e.byID[id] = p }

func (e *Env) Lookup(id string) (*types.PolyType, bool) {
	p, ok := e.byID[id]
	return p, ok
}

// freeVars returns every free type variable occurring anywhere in e's
// bindings, applied through s — this is the "enclosing environment" that
// Generalize must not quantify over.
func (e *Env) freeVars(s *types.Substitution) map[types.TVar]bool {
	out := map[types.TVar]bool{}
	for _, p := range e.byID {
		for _, v := range s.FreeVars(p.Expr) {
			bound := false
			for _, pv := range p.Vars {
				if pv == v {
					bound = true
					break
				}
			}
			if !bound {
				out[v] = true
			}
		}
	}
	return out
}
