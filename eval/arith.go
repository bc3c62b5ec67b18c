package eval

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Checked fixed-width arithmetic (spec §4.4 "Primitive arithmetic": "perform
// the operation with overflow detection; on overflow abort with a kind-
// specific message"). Nat is unsigned 64-bit, Int is signed 64-bit.

func checkedNegateInt(m *Machine, v int64) int64 {
	if v == math.MinInt64 {
		raiseUser(m, "Int negation overflow")
	}
	return -v
}

func checkedAddNat(m *Machine, a, b uint64) uint64 {
	r := a + b
	if r < a {
		raiseUser(m, "Nat addition overflow")
	}
	return r
}

func checkedSubNat(m *Machine, a, b uint64) uint64 {
	if b > a {
		raiseUser(m, "Nat subtraction underflow")
	}
	return a - b
}

func checkedMulNat(m *Machine, a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	r := a * b
	if r/a != b {
		raiseUser(m, "Nat multiplication overflow")
	}
	return r
}

func checkedAddInt(m *Machine, a, b int64) int64 {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		raiseUser(m, "Int addition overflow/underflow")
	}
	return r
}

func checkedSubInt(m *Machine, a, b int64) int64 {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		raiseUser(m, "Int subtraction overflow/underflow")
	}
	return r
}

func checkedMulInt(m *Machine, a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	r := a * b
	if r/a != b || (a == -1 && b == math.MinInt64) {
		raiseUser(m, "Int multiplication overflow/underflow")
	}
	return r
}

// checkedDivNat/checkedDivInt implement "Checked divide on integer
// types: abort with Division by zero if divisor is zero".
func checkedDivNat(m *Machine, a, b uint64) uint64 {
	if b == 0 {
		raiseUser(m, "Division by zero")
	}
	return a / b
}

func checkedDivInt(m *Machine, a, b int64) int64 {
	if b == 0 {
		raiseUser(m, "Division by zero")
	}
	if a == math.MinInt64 && b == -1 {
		raiseUser(m, "Int division overflow")
	}
	return a / b
}

// safeAdd*/safeSub*/safeMul*/safeDivFloat perform the "Safe on big-numbers and floats: perform the
// raw operation" family — no overflow check, since big.Int/float64 both
// either grow unbounded or saturate per IEEE-754.

func safeAddFloat(a, b float64) float64 { return a + b }
func safeSubFloat(a, b float64) float64 { return a - b }
func safeMulFloat(a, b float64) float64 { return a * b }
func safeDivFloat(a, b float64) float64 { return a / b }

func safeAddBig(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
func safeSubBig(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func safeMulBig(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }

// floatOrder/decimalOrder implement "Float/Decimal order (less/le):
// abort if either operand is NaN; abort if both are opposite infinities;
// otherwise the native comparison" (spec §4.4).
func floatOrder(m *Machine, a, b float64, orEqual bool) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		raiseUser(m, "NaN cannot be ordered")
	}
	if math.IsInf(a, 1) && math.IsInf(b, -1) {
		raiseUser(m, "Infinite values cannot be ordered")
	}
	if math.IsInf(a, -1) && math.IsInf(b, 1) {
		raiseUser(m, "Infinite values cannot be ordered")
	}
	if orEqual {
		return a <= b
	}
	return a < b
}

func decimalOrder(m *Machine, a, b decimal.Decimal, orEqual bool) bool {
	// shopspring/decimal has no NaN/Inf states (every Decimal is a finite
	// rational), so only the native comparison applies; unlike floatOrder,
	// this function has no NaN/Infinity abort paths.
	c := a.Cmp(b)
	if orEqual {
		return c <= 0
	}
	return c < 0
}

// Equality on floats and decimals is bitwise native, no NaN special-case
// (spec §4.4 "Equality on floats and decimals is bitwise native ==/!=").
func floatEqual(a, b float64) bool       { return a == b }
func decimalEqual(a, b decimal.Decimal) bool { return a.Equal(b) }

func readNat(b []byte) uint64  { return binary.LittleEndian.Uint64(b[:8]) }
func writeNat(b []byte, v uint64) { binary.LittleEndian.PutUint64(b[:8], v) }
func readInt(b []byte) int64   { return int64(readNat(b)) }
func writeInt(b []byte, v int64) { writeNat(b, uint64(v)) }
func readFloat(b []byte) float64 { return math.Float64frombits(readNat(b)) }
func writeFloat(b []byte, v float64) { writeNat(b, math.Float64bits(v)) }
