package values

import (
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

// KeyCmp implements union-aware key comparison (spec §4.3 "Key
// comparison"): a union first orders by the concrete variant's TypeID,
// and only on a tie dispatches to that variant's own keyCmp against the
// extracted payloads.
func KeyCmp(desc *types.Type, reg *types.Registry, a, b []byte) int {
	if desc.Category.IsUnion() {
		va, pa := ExtractUnion(desc, reg, a)
		vb, pb := ExtractUnion(desc, reg, b)
		if va.TID != vb.TID {
			if va.TID < vb.TID {
				return -1
			}
			return 1
		}
		return KeyCmp(va, reg, pa, pb)
	}
	if desc.KeyCmp == nil {
		panic("values: KeyCmp called on a non-key-comparable type " + desc.Name)
	}
	return desc.KeyCmp(desc, reg, a, b)
}

// BoolKeyCmp, NatKeyCmp, IntKeyCmp are the Register-category comparators
// for the fixed-width scalar primitives, each reading its native Go value
// out of the slot's leading bytes.
func BoolKeyCmp(_ *types.Type, _ *types.Registry, a, b []byte) int {
	return cmpUint64(uint64(a[0]), uint64(b[0]))
}

func NatKeyCmp(_ *types.Type, _ *types.Registry, a, b []byte) int {
	return cmpUint64(readU64(a), readU64(b))
}

func IntKeyCmp(_ *types.Type, _ *types.Registry, a, b []byte) int {
	return cmpInt64(readI64(a), readI64(b))
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func readU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < layout.WordSize; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func readI64(b []byte) int64 { return int64(readU64(b)) }
