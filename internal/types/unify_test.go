package types_test

import (
	"testing"

	"github.com/fluxlang/fluxc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyBindsFreeVariable(t *testing.T) {
	s := types.NewSubstitution()
	v := s.Fresh()

	err := types.Unify(s, types.TVarRef{Var: v}, types.TBuiltin{Name: types.Int})
	require.NoError(t, err)

	got, ok := s.Lookup(v)
	require.True(t, ok)
	assert.Equal(t, types.TBuiltin{Name: types.Int}, got)
}

func TestUnifyBuiltinMismatch(t *testing.T) {
	s := types.NewSubstitution()
	err := types.Unify(s, types.TBuiltin{Name: types.Int}, types.TBuiltin{Name: types.String})
	require.Error(t, err)
	assert.IsType(t, &types.ErrCannotUnify{}, err)
}

func TestUnifyOccursCheck(t *testing.T) {
	s := types.NewSubstitution()
	v := s.Fresh()
	self := types.TCollection{Kind: types.Array, Elem: types.TVarRef{Var: v}}

	err := types.Unify(s, types.TVarRef{Var: v}, self)
	require.Error(t, err)
	assert.IsType(t, &types.ErrOccursCheck{}, err)
}

func TestUnifyKindMismatch(t *testing.T) {
	s := types.NewSubstitution()
	v := s.Fresh()
	s.AddKind(v, types.Numeric)

	err := types.Unify(s, types.TVarRef{Var: v}, types.TBuiltin{Name: types.String})
	require.Error(t, err)
	assert.IsType(t, &types.ErrKindMismatch{}, err)
}

func TestUnifyRowsWithDisjointOpenTails(t *testing.T) {
	s := types.NewSubstitution()
	tailA := s.Fresh()
	tailB := s.Fresh()

	a := types.RowExtension{
		Head: types.Property{Key: types.TLabel{Name: "x"}, Val: types.TBuiltin{Name: types.Int}},
		Tail: types.RowVar{Var: tailA},
	}
	b := types.RowExtension{
		Head: types.Property{Key: types.TLabel{Name: "y"}, Val: types.TBuiltin{Name: types.Bool}},
		Tail: types.RowVar{Var: tailB},
	}

	err := types.Unify(s, types.TRecord{Row: a}, types.TRecord{Row: b})
	require.NoError(t, err)

	resolvedA := s.Apply(types.TRecord{Row: a}).(types.TRecord)
	row := resolvedA.Row.(types.RowExtension)
	assert.Equal(t, "x", row.Head.Key.(types.TLabel).Name)
}

func TestUnifySharedRowFieldsMustAgree(t *testing.T) {
	s := types.NewSubstitution()
	a := types.RowExtension{
		Head: types.Property{Key: types.TLabel{Name: "x"}, Val: types.TBuiltin{Name: types.Int}},
		Tail: types.RowEmpty{},
	}
	b := types.RowExtension{
		Head: types.Property{Key: types.TLabel{Name: "x"}, Val: types.TBuiltin{Name: types.String}},
		Tail: types.RowEmpty{},
	}

	err := types.Unify(s, types.TRecord{Row: a}, types.TRecord{Row: b})
	require.Error(t, err)
}

func TestAdmitsKindTable(t *testing.T) {
	assert.True(t, types.Admits(types.TBuiltin{Name: types.Int}, types.Addable))
	assert.True(t, types.Admits(types.TBuiltin{Name: types.String}, types.Addable))
	assert.False(t, types.Admits(types.TBuiltin{Name: types.Bool}, types.Addable))
	assert.True(t, types.Admits(types.TBuiltin{Name: types.Time}, types.Timeable))
	assert.False(t, types.Admits(types.TBuiltin{Name: types.Int}, types.Timeable))
}
