package wire_test

import (
	"testing"

	"github.com/fluxlang/fluxc/internal/types"
	"github.com/fluxlang/fluxc/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonoTypeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		t    types.MonoType
	}{
		{"builtin", types.TBuiltin{Name: types.Int}},
		{"var ref", types.TVarRef{Var: types.TVar(7)}},
		{"bound var", types.TBoundVar{Var: types.TVar(3)}},
		{"label", types.TLabel{Name: "_field"}},
		{"collection", types.TCollection{Kind: types.Array, Elem: types.TBuiltin{Name: types.String}}},
		{"dict", types.TDict{Key: types.TBuiltin{Name: types.String}, Val: types.TBuiltin{Name: types.Int}}},
		{"record", types.TRecord{Row: types.RowExtension{
			Head: types.Property{Key: types.TLabel{Name: "x"}, Val: types.TBuiltin{Name: types.Int}},
			Tail: types.RowVar{Var: types.TVar(2)},
		}}},
		{"function", types.TFunction{Fun: types.Fun{
			Req: map[string]types.MonoType{"a": types.TBuiltin{Name: types.Int}},
			Opt: map[string]types.OptParam{"b": {Type: types.TBuiltin{Name: types.Bool}, HasDefault: true}},
			Pipe: &types.Property{
				Key: types.TLabel{Name: "tables"},
				Val: types.TCollection{Kind: types.Stream, Elem: types.TBuiltin{Name: types.Float}},
			},
			Retn: types.TBuiltin{Name: types.String},
		}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded := wire.EncodeMonoType(nil, c.t)
			decoded, n, err := wire.DecodeMonoType(encoded)
			require.NoError(t, err)
			assert.Equal(t, len(encoded), n)
			assert.Equal(t, c.t.String(), decoded.String())
		})
	}
}

func TestRowEmptyRoundTrip(t *testing.T) {
	encoded := wire.EncodeRow(nil, types.RowEmpty{})
	decoded, _, err := wire.DecodeRow(encoded)
	require.NoError(t, err)
	assert.Equal(t, types.RowEmpty{}, decoded)
}

func TestPolyTypeRoundTrip(t *testing.T) {
	poly := &types.PolyType{
		Vars: []types.TVar{0, 1},
		Cons: map[types.TVar][]types.Kind{
			0: {types.Addable, types.Comparable},
		},
		Expr: types.TFunction{Fun: types.Fun{
			Req:  map[string]types.MonoType{"x": types.TBoundVar{Var: 0}, "y": types.TBoundVar{Var: 1}},
			Opt:  map[string]types.OptParam{},
			Retn: types.TBoundVar{Var: 0},
		}},
	}
	encoded := wire.EncodePolyType(nil, poly)
	decoded, _, err := wire.DecodePolyType(encoded)
	require.NoError(t, err)
	assert.Equal(t, poly.String(), decoded.String())
	assert.Equal(t, poly.Cons, decoded.Cons)
}

func TestExportsRoundTrip(t *testing.T) {
	exports := map[string]*types.PolyType{
		"identity": {
			Vars: []types.TVar{0},
			Cons: map[types.TVar][]types.Kind{},
			Expr: types.TFunction{Fun: types.Fun{
				Req:  map[string]types.MonoType{"x": types.TBoundVar{Var: 0}},
				Opt:  map[string]types.OptParam{},
				Retn: types.TBoundVar{Var: 0},
			}},
		},
		"pi": {Cons: map[types.TVar][]types.Kind{}, Expr: types.TBuiltin{Name: types.Float}},
	}

	encoded := wire.EncodeExports(exports)
	decoded, err := wire.DecodeExports(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(exports))
	for name, poly := range exports {
		got, ok := decoded[name]
		require.True(t, ok, "missing export %q", name)
		assert.Equal(t, poly.String(), got.String())
	}
}

func TestEncodeExportsIsDeterministic(t *testing.T) {
	exports := map[string]*types.PolyType{
		"b": {Cons: map[types.TVar][]types.Kind{}, Expr: types.TBuiltin{Name: types.Bool}},
		"a": {Cons: map[types.TVar][]types.Kind{}, Expr: types.TBuiltin{Name: types.Int}},
	}
	first := wire.EncodeExports(exports)
	second := wire.EncodeExports(exports)
	assert.Equal(t, first, second)
}
