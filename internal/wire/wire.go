// Package wire is a hand-written binary codec for the type-system values
// the resolver wants to persist across runs: MonoType, Row, Fun and
// PolyType. It is built directly on protobuf's wire primitives
// (google.golang.org/protobuf/encoding/protowire) rather than a
// schema-generated message: every monotype variant gets a fixed field
// number, and nested types are just length-delimited sub-messages, the
// same layering a .proto message compiles down to, without requiring a
// .proto file or a generated package.
package wire

import (
	"fmt"
	"sort"

	"github.com/fluxlang/fluxc/internal/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for the MonoType message. Field 1 always carries the
// variant discriminant; every other field is variant-specific, and only
// the fields of the tagged variant are populated (a collection uses 5 and
// 6, a dict 7 and 8, every other variant one field).
const (
	fMonoVariant   protowire.Number = 1
	fMonoBuiltin   protowire.Number = 2
	fMonoVarIndex  protowire.Number = 3
	fMonoLabel     protowire.Number = 4
	fMonoCollKind  protowire.Number = 5
	fMonoCollElem  protowire.Number = 6
	fMonoDictKey   protowire.Number = 7
	fMonoDictVal   protowire.Number = 8
	fMonoRecordRow protowire.Number = 9
	fMonoFunFun    protowire.Number = 10
)

// Variant tags, distinct from field numbers, stored under fMonoVariant.
const (
	vBuiltin int64 = iota + 1
	vVarRef
	vBoundVar
	vLabel
	vCollection
	vDict
	vRecord
	vFunction
)

// EncodeMonoType appends t's wire encoding to b and returns the result.
func EncodeMonoType(b []byte, t types.MonoType) []byte {
	b = appendVarintField(b, fMonoVariant, monoVariant(t))
	switch v := t.(type) {
	case types.TBuiltin:
		b = appendStringField(b, fMonoBuiltin, string(v.Name))
	case types.TVarRef:
		b = appendVarintField(b, fMonoVarIndex, int64(v.Var))
	case types.TBoundVar:
		b = appendVarintField(b, fMonoVarIndex, int64(v.Var))
	case types.TLabel:
		b = appendStringField(b, fMonoLabel, v.Name)
	case types.TCollection:
		b = appendStringField(b, fMonoCollKind, string(v.Kind))
		b = appendMessageField(b, fMonoCollElem, EncodeMonoType(nil, v.Elem))
	case types.TDict:
		b = appendMessageField(b, fMonoDictKey, EncodeMonoType(nil, v.Key))
		b = appendMessageField(b, fMonoDictVal, EncodeMonoType(nil, v.Val))
	case types.TRecord:
		b = appendMessageField(b, fMonoRecordRow, EncodeRow(nil, v.Row))
	case types.TFunction:
		b = appendMessageField(b, fMonoFunFun, EncodeFun(nil, v.Fun))
	default:
		panic(fmt.Sprintf("wire: unhandled MonoType %T", t))
	}
	return b
}

func monoVariant(t types.MonoType) int64 {
	switch t.(type) {
	case types.TBuiltin:
		return vBuiltin
	case types.TVarRef:
		return vVarRef
	case types.TBoundVar:
		return vBoundVar
	case types.TLabel:
		return vLabel
	case types.TCollection:
		return vCollection
	case types.TDict:
		return vDict
	case types.TRecord:
		return vRecord
	case types.TFunction:
		return vFunction
	default:
		panic(fmt.Sprintf("wire: unhandled MonoType %T", t))
	}
}

// DecodeMonoType parses b, which must hold exactly one MonoType message,
// returning the value and the number of bytes consumed (always len(b) on
// success).
func DecodeMonoType(b []byte) (types.MonoType, int, error) {
	fields, n, err := readFields(b)
	if err != nil {
		return nil, 0, err
	}
	variant, ok := fields.varint(fMonoVariant)
	if !ok {
		return nil, 0, fmt.Errorf("wire: MonoType message missing variant field")
	}
	switch variant {
	case vBuiltin:
		name, _ := fields.str(fMonoBuiltin)
		return types.TBuiltin{Name: types.Builtin(name)}, n, nil
	case vVarRef:
		idx, _ := fields.varint(fMonoVarIndex)
		return types.TVarRef{Var: types.TVar(idx)}, n, nil
	case vBoundVar:
		idx, _ := fields.varint(fMonoVarIndex)
		return types.TBoundVar{Var: types.TVar(idx)}, n, nil
	case vLabel:
		name, _ := fields.str(fMonoLabel)
		return types.TLabel{Name: name}, n, nil
	case vCollection:
		kind, _ := fields.str(fMonoCollKind)
		elemBytes, _ := fields.bytes(fMonoCollElem)
		elem, _, err := DecodeMonoType(elemBytes)
		if err != nil {
			return nil, 0, err
		}
		return types.TCollection{Kind: types.CollectionKind(kind), Elem: elem}, n, nil
	case vDict:
		keyBytes, _ := fields.bytes(fMonoDictKey)
		valBytes, _ := fields.bytes(fMonoDictVal)
		key, _, err := DecodeMonoType(keyBytes)
		if err != nil {
			return nil, 0, err
		}
		val, _, err := DecodeMonoType(valBytes)
		if err != nil {
			return nil, 0, err
		}
		return types.TDict{Key: key, Val: val}, n, nil
	case vRecord:
		rowBytes, _ := fields.bytes(fMonoRecordRow)
		row, _, err := DecodeRow(rowBytes)
		if err != nil {
			return nil, 0, err
		}
		return types.TRecord{Row: row}, n, nil
	case vFunction:
		funBytes, _ := fields.bytes(fMonoFunFun)
		fun, _, err := DecodeFun(funBytes)
		if err != nil {
			return nil, 0, err
		}
		return types.TFunction{Fun: fun}, n, nil
	default:
		return nil, 0, fmt.Errorf("wire: unknown MonoType variant %d", variant)
	}
}

// Row message fields and variant tags.
const (
	fRowVariant protowire.Number = 1
	fRowHeadKey protowire.Number = 2
	fRowHeadVal protowire.Number = 3
	fRowTail    protowire.Number = 4
	fRowVar     protowire.Number = 5
)

const (
	rEmpty int64 = iota + 1
	rExtension
	rVar
	rBoundVar
)

func EncodeRow(b []byte, r types.Row) []byte {
	switch v := r.(type) {
	case types.RowEmpty:
		return appendVarintField(b, fRowVariant, rEmpty)
	case types.RowExtension:
		b = appendVarintField(b, fRowVariant, rExtension)
		b = appendMessageField(b, fRowHeadKey, EncodeMonoType(nil, v.Head.Key))
		b = appendMessageField(b, fRowHeadVal, EncodeMonoType(nil, v.Head.Val))
		b = appendMessageField(b, fRowTail, EncodeRow(nil, v.Tail))
		return b
	case types.RowVar:
		b = appendVarintField(b, fRowVariant, rVar)
		return appendVarintField(b, fRowVar, int64(v.Var))
	case types.RowBoundVar:
		b = appendVarintField(b, fRowVariant, rBoundVar)
		return appendVarintField(b, fRowVar, int64(v.Var))
	default:
		panic(fmt.Sprintf("wire: unhandled Row %T", r))
	}
}

func DecodeRow(b []byte) (types.Row, int, error) {
	fields, n, err := readFields(b)
	if err != nil {
		return nil, 0, err
	}
	variant, ok := fields.varint(fRowVariant)
	if !ok {
		return nil, 0, fmt.Errorf("wire: Row message missing variant field")
	}
	switch variant {
	case rEmpty:
		return types.RowEmpty{}, n, nil
	case rExtension:
		keyBytes, _ := fields.bytes(fRowHeadKey)
		valBytes, _ := fields.bytes(fRowHeadVal)
		tailBytes, _ := fields.bytes(fRowTail)
		key, _, err := DecodeMonoType(keyBytes)
		if err != nil {
			return nil, 0, err
		}
		val, _, err := DecodeMonoType(valBytes)
		if err != nil {
			return nil, 0, err
		}
		tail, _, err := DecodeRow(tailBytes)
		if err != nil {
			return nil, 0, err
		}
		return types.RowExtension{Head: types.Property{Key: key, Val: val}, Tail: tail}, n, nil
	case rVar:
		idx, _ := fields.varint(fRowVar)
		return types.RowVar{Var: types.TVar(idx)}, n, nil
	case rBoundVar:
		idx, _ := fields.varint(fRowVar)
		return types.RowBoundVar{Var: types.TVar(idx)}, n, nil
	default:
		return nil, 0, fmt.Errorf("wire: unknown Row variant %d", variant)
	}
}

// Fun message: repeated required params, repeated optional params, an
// optional pipe parameter, and a return type.
const (
	fFunReq  protowire.Number = 1
	fFunOpt  protowire.Number = 2
	fFunPipe protowire.Number = 3
	fFunRetn protowire.Number = 4
)

// param/optParam sub-message fields, reused for both req and opt entries.
const (
	fParamName       protowire.Number = 1
	fParamType       protowire.Number = 2
	fParamHasDefault protowire.Number = 3
)

// pipe sub-message fields: a Property has no field numbers of its own,
// since it is only ever embedded, never round-tripped standalone.
const (
	fPipeKey protowire.Number = 1
	fPipeVal protowire.Number = 2
)

func EncodeFun(b []byte, f types.Fun) []byte {
	for _, name := range sortedKeys(f.Req) {
		entry := appendStringField(nil, fParamName, name)
		entry = appendMessageField(entry, fParamType, EncodeMonoType(nil, f.Req[name]))
		b = appendMessageField(b, fFunReq, entry)
	}
	for _, name := range sortedOptKeys(f.Opt) {
		opt := f.Opt[name]
		entry := appendStringField(nil, fParamName, name)
		entry = appendMessageField(entry, fParamType, EncodeMonoType(nil, opt.Type))
		if opt.HasDefault {
			entry = appendVarintField(entry, fParamHasDefault, 1)
		}
		b = appendMessageField(b, fFunOpt, entry)
	}
	if f.Pipe != nil {
		entry := appendMessageField(nil, fPipeKey, EncodeMonoType(nil, f.Pipe.Key))
		entry = appendMessageField(entry, fPipeVal, EncodeMonoType(nil, f.Pipe.Val))
		b = appendMessageField(b, fFunPipe, entry)
	}
	b = appendMessageField(b, fFunRetn, EncodeMonoType(nil, f.Retn))
	return b
}

func DecodeFun(b []byte) (types.Fun, int, error) {
	fields, n, err := readFieldsRepeated(b)
	if err != nil {
		return types.Fun{}, 0, err
	}
	f := types.Fun{Req: map[string]types.MonoType{}, Opt: map[string]types.OptParam{}}
	for _, entry := range fields.bytesAll(fFunReq) {
		pf, _, err := readFields(entry)
		if err != nil {
			return types.Fun{}, 0, err
		}
		name, _ := pf.str(fParamName)
		typBytes, _ := pf.bytes(fParamType)
		typ, _, err := DecodeMonoType(typBytes)
		if err != nil {
			return types.Fun{}, 0, err
		}
		f.Req[name] = typ
	}
	for _, entry := range fields.bytesAll(fFunOpt) {
		pf, _, err := readFields(entry)
		if err != nil {
			return types.Fun{}, 0, err
		}
		name, _ := pf.str(fParamName)
		typBytes, _ := pf.bytes(fParamType)
		typ, _, err := DecodeMonoType(typBytes)
		if err != nil {
			return types.Fun{}, 0, err
		}
		hasDefault, _ := pf.varint(fParamHasDefault)
		f.Opt[name] = types.OptParam{Type: typ, HasDefault: hasDefault != 0}
	}
	if pipeBytes, ok := fields.bytes(fFunPipe); ok {
		pf, _, err := readFields(pipeBytes)
		if err != nil {
			return types.Fun{}, 0, err
		}
		keyBytes, _ := pf.bytes(fPipeKey)
		valBytes, _ := pf.bytes(fPipeVal)
		key, _, err := DecodeMonoType(keyBytes)
		if err != nil {
			return types.Fun{}, 0, err
		}
		val, _, err := DecodeMonoType(valBytes)
		if err != nil {
			return types.Fun{}, 0, err
		}
		f.Pipe = &types.Property{Key: key, Val: val}
	}
	retnBytes, _ := fields.bytes(fFunRetn)
	retn, _, err := DecodeMonoType(retnBytes)
	if err != nil {
		return types.Fun{}, 0, err
	}
	f.Retn = retn
	return f, n, nil
}

// PolyType message: repeated quantified var indices, repeated (var,
// kind-list) constraint entries, then the body monotype.
const (
	fPolyVar  protowire.Number = 1
	fPolyCons protowire.Number = 2
	fPolyExpr protowire.Number = 3
)

const (
	fConsVar  protowire.Number = 1
	fConsKind protowire.Number = 2
)

func EncodePolyType(b []byte, p *types.PolyType) []byte {
	for _, v := range p.Vars {
		b = appendVarintField(b, fPolyVar, int64(v))
	}
	for _, v := range p.Vars {
		kinds, ok := p.Cons[v]
		if !ok {
			continue
		}
		entry := appendVarintField(nil, fConsVar, int64(v))
		for _, k := range kinds {
			entry = appendStringField(entry, fConsKind, string(k))
		}
		b = appendMessageField(b, fPolyCons, entry)
	}
	b = appendMessageField(b, fPolyExpr, EncodeMonoType(nil, p.Expr))
	return b
}

func DecodePolyType(b []byte) (*types.PolyType, int, error) {
	fields, n, err := readFieldsRepeated(b)
	if err != nil {
		return nil, 0, err
	}
	p := &types.PolyType{Cons: map[types.TVar][]types.Kind{}}
	for _, v := range fields.varintAll(fPolyVar) {
		p.Vars = append(p.Vars, types.TVar(v))
	}
	for _, entry := range fields.bytesAll(fPolyCons) {
		cf, _, err := readFieldsRepeated(entry)
		if err != nil {
			return nil, 0, err
		}
		v, _ := cf.varint(fConsVar)
		var kinds []types.Kind
		for _, k := range cf.strAll(fConsKind) {
			kinds = append(kinds, types.Kind(k))
		}
		p.Cons[types.TVar(v)] = kinds
	}
	exprBytes, _ := fields.bytes(fPolyExpr)
	expr, _, err := DecodeMonoType(exprBytes)
	if err != nil {
		return nil, 0, err
	}
	p.Expr = expr
	return p, n, nil
}

// Exports message: a flat repeated (name, PolyType) list, the on-disk
// shape of a resolved package's public surface.
const (
	fExportName protowire.Number = 1
	fExportPoly protowire.Number = 2
)

// EncodeExports serializes name -> PolyType in sorted key order so the
// same export set always produces identical bytes, which lets a cache
// compare files by content hash rather than decoding both sides.
func EncodeExports(exports map[string]*types.PolyType) []byte {
	names := make([]string, 0, len(exports))
	for n := range exports {
		names = append(names, n)
	}
	sort.Strings(names)

	var b []byte
	for _, name := range names {
		entry := appendStringField(nil, fExportName, name)
		entry = appendMessageField(entry, fExportPoly, EncodePolyType(nil, exports[name]))
		b = appendMessageField(b, fExportEntry, entry)
	}
	return b
}

const fExportEntry protowire.Number = 3

// DecodeExports parses the bytes EncodeExports produced back into a
// name -> PolyType map.
func DecodeExports(b []byte) (map[string]*types.PolyType, error) {
	fields, _, err := readFields(b)
	if err != nil {
		return nil, err
	}
	out := map[string]*types.PolyType{}
	for _, entry := range fields.bytesAll(fExportEntry) {
		ef, _, err := readFields(entry)
		if err != nil {
			return nil, err
		}
		name, _ := ef.str(fExportName)
		polyBytes, _ := ef.bytes(fExportPoly)
		poly, _, err := DecodePolyType(polyBytes)
		if err != nil {
			return nil, fmt.Errorf("wire: decoding export %q: %w", name, err)
		}
		out[name] = poly
	}
	return out, nil
}
