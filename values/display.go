package values

import (
	"fmt"
	"math"

	"github.com/stephengoldbaum/icppgo/bsqstring"
	"github.com/stephengoldbaum/icppgo/types"
)

// Display renders slot's value as the string the Debug opcode and the
// icppvm CLI's disasm/run -v output print (spec §4.4 "Debug(arg) prints
// the value's display form"). Union categories extract their runtime
// variant first, then delegate — the same discipline KeyCmp follows.
func Display(desc *types.Type, reg *types.Registry, slot []byte, mode types.DisplayMode) string {
	if desc.Category.IsUnion() {
		v, payload := ExtractUnion(desc, reg, slot)
		return Display(v, reg, payload, mode)
	}
	if desc.Display != nil {
		return desc.Display(desc, reg, slot, mode)
	}
	return fmt.Sprintf("<%s>", desc.Name)
}

// BoolDisplay, NatDisplay, IntDisplay render the fixed-width scalar
// primitives (spec §2 "String Engine ... display function").
func BoolDisplay(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
	if slot[0] != 0 {
		return "true"
	}
	return "false"
}

func NatDisplay(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
	return fmt.Sprintf("%dn", readU64(slot))
}

func IntDisplay(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
	return fmt.Sprintf("%di", readI64(slot))
}

func FloatDisplayFor() types.DisplayFunc {
	return func(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		bits := readU64(slot)
		return fmt.Sprintf("%gf", math.Float64frombits(bits))
	}
}

// BigNatDisplayFor, BigIntDisplayFor, RationalDisplayFor, DecimalDisplayFor
// close over the side-table the same way their KeyCmp counterparts do
// (values/bignum.go), since a BigNum slot is only an 8-byte handle (see
// DESIGN.md "BigNum as an 8-byte handle, not inline digits").
func BigNatDisplayFor(tbl *BigNumTable) types.DisplayFunc {
	return func(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		return tbl.BigNat(readU64(slot)).String() + "N"
	}
}

func BigIntDisplayFor(tbl *BigNumTable) types.DisplayFunc {
	return func(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		return tbl.BigInt(readU64(slot)).String() + "I"
	}
}

func RationalDisplayFor(tbl *BigNumTable) types.DisplayFunc {
	return func(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		return tbl.Rational(readU64(slot)).RatString() + "R"
	}
}

func DecimalDisplayFor(tbl *BigNumTable) types.DisplayFunc {
	return func(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		return tbl.Decimal(readU64(slot)).String() + "d"
	}
}

// StringDisplayFor renders a 16-byte string slot via bsqstring's own
// materialize-to-Go-string path.
func StringDisplayFor(tbl *bsqstring.Table) types.DisplayFunc {
	return func(_ *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		s := bsqstring.DecodeSlot(slot, tbl)
		return fmt.Sprintf("%q", s.String())
	}
}

// ScalarWordDisplay renders any other register scalar (DateTime,
// UUID4/UUID7, SHAContentHash, ...) as name(hex), where hex is the
// type's first HeapSize bytes (8 for the time scalars, 16 for UUIDs, 32
// for SHAContentHash). No richer type-specific rendering exists.
func ScalarWordDisplay(name string) types.DisplayFunc {
	return func(t *types.Type, _ *types.Registry, slot []byte, _ types.DisplayMode) string {
		n := int(t.Size.HeapSize)
		if n > len(slot) {
			n = len(slot)
		}
		return fmt.Sprintf("%s(%x)", name, slot[:n])
	}
}

func RefDisplay(desc *types.Type, _ *types.Registry, _ []byte, _ types.DisplayMode) string {
	return fmt.Sprintf("<%s@ref>", desc.Name)
}

func CollectionDisplay(desc *types.Type, _ *types.Registry, _ []byte, _ types.DisplayMode) string {
	return fmt.Sprintf("<%s@collection>", desc.Name)
}
