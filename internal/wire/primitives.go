package wire

import (
	"fmt"
	"sort"

	"github.com/fluxlang/fluxc/internal/types"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendVarintField(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// fieldSet is every tag/value pair a message body decoded to, grouped by
// field number. Every field is kept in arrival order so repeated fields
// (map entries, quantified variables) round-trip without a separate
// "repeated" marker in the wire format, the same way protobuf itself
// treats "repeated" as a property of the schema, not the wire bytes.
type fieldSet struct {
	varints map[protowire.Number][]int64
	bytesF  map[protowire.Number][][]byte
}

func (f fieldSet) varint(num protowire.Number) (int64, bool) {
	vs := f.varints[num]
	if len(vs) == 0 {
		return 0, false
	}
	return vs[0], true
}

func (f fieldSet) varintAll(num protowire.Number) []int64 {
	return f.varints[num]
}

func (f fieldSet) bytes(num protowire.Number) ([]byte, bool) {
	vs := f.bytesF[num]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

func (f fieldSet) bytesAll(num protowire.Number) [][]byte {
	return f.bytesF[num]
}

func (f fieldSet) str(num protowire.Number) (string, bool) {
	b, ok := f.bytes(num)
	if !ok {
		return "", false
	}
	return string(b), true
}

func (f fieldSet) strAll(num protowire.Number) []string {
	raw := f.bytesAll(num)
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = string(b)
	}
	return out
}

// readFields consumes every tag/value pair in b, which must hold exactly
// one message body with no trailing garbage, and returns the grouped
// fields plus the number of bytes consumed (always len(b) on success).
func readFields(b []byte) (fieldSet, int, error) {
	fields := fieldSet{varints: map[protowire.Number][]int64{}, bytesF: map[protowire.Number][][]byte{}}
	total := 0
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fieldSet{}, 0, fmt.Errorf("wire: invalid tag (code %d)", n)
		}
		b = b[n:]
		total += n
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fieldSet{}, 0, fmt.Errorf("wire: invalid varint (code %d)", n)
			}
			fields.varints[num] = append(fields.varints[num], int64(v))
			b = b[n:]
			total += n
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fieldSet{}, 0, fmt.Errorf("wire: invalid length-delimited field (code %d)", n)
			}
			cp := append([]byte(nil), v...)
			fields.bytesF[num] = append(fields.bytesF[num], cp)
			b = b[n:]
			total += n
		default:
			return fieldSet{}, 0, fmt.Errorf("wire: unsupported wire type %v", typ)
		}
	}
	return fields, total, nil
}

// readFieldsRepeated is readFields under a name that makes call sites
// decoding map-like (repeated) fields read naturally; the parser itself
// already groups every field by arrival order regardless of arity.
func readFieldsRepeated(b []byte) (fieldSet, int, error) {
	return readFields(b)
}

func sortedKeys(m map[string]types.MonoType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedOptKeys(m map[string]types.OptParam) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
