package jsonschema

import (
	"bytes"

	"github.com/valyala/fastjson"
)

// deepEqual compares two JSON values structurally. Numbers compare by
// numeric value, so 1 and 1.0 are equal; object key order is ignored.
// Used by enum, const and uniqueItems.
func deepEqual(a, b *fastjson.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a.Type() {
	case fastjson.TypeNull:
		return b.Type() == fastjson.TypeNull
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return a.Type() == b.Type()
	case fastjson.TypeNumber:
		if b.Type() != fastjson.TypeNumber {
			return false
		}
		af, _ := a.Float64()
		bf, _ := b.Float64()
		return af == bf
	case fastjson.TypeString:
		if b.Type() != fastjson.TypeString {
			return false
		}
		ab, _ := a.StringBytes()
		bb, _ := b.StringBytes()
		return bytes.Equal(ab, bb)
	case fastjson.TypeArray:
		if b.Type() != fastjson.TypeArray {
			return false
		}
		aa, _ := a.Array()
		ba, _ := b.Array()
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !deepEqual(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case fastjson.TypeObject:
		if b.Type() != fastjson.TypeObject {
			return false
		}
		ao, _ := a.Object()
		bo, _ := b.Object()
		if ao.Len() != bo.Len() {
			return false
		}
		eq := true
		ao.Visit(func(key []byte, av *fastjson.Value) {
			if !eq {
				return
			}
			bv := b.Get(string(key))
			if bv == nil || !deepEqual(av, bv) {
				eq = false
			}
		})
		return eq
	}
	return false
}
