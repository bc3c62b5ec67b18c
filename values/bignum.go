package values

import (
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stephengoldbaum/icppgo/types"
)

// BigNumTable is the external side-table backing the inline 8-byte handle
// a BigNum-category slot carries (see types.NewBigNumType and DESIGN.md
// "BigNum as an 8-byte handle, not inline digits"). One table instance is
// shared by every BigNat/BigInt/Rational/Decimal descriptor in a running
// program; entries are never compacted or reclaimed by the emulated GC,
// since the spec requires BigNum slots to be untraced.
type BigNumTable struct {
	mu      sync.Mutex
	bigNats []*big.Int
	bigInts []*big.Int
	rats    []*big.Rat
	decs    []decimal.Decimal
}

func NewBigNumTable() *BigNumTable {
	return &BigNumTable{}
}

func (t *BigNumTable) PutBigNat(v *big.Int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bigNats = append(t.bigNats, v)
	return uint64(len(t.bigNats) - 1)
}

func (t *BigNumTable) BigNat(h uint64) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bigNats[h]
}

func (t *BigNumTable) PutBigInt(v *big.Int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bigInts = append(t.bigInts, v)
	return uint64(len(t.bigInts) - 1)
}

func (t *BigNumTable) BigInt(h uint64) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bigInts[h]
}

func (t *BigNumTable) PutRational(v *big.Rat) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rats = append(t.rats, v)
	return uint64(len(t.rats) - 1)
}

func (t *BigNumTable) Rational(h uint64) *big.Rat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rats[h]
}

func (t *BigNumTable) PutDecimal(v decimal.Decimal) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.decs = append(t.decs, v)
	return uint64(len(t.decs) - 1)
}

func (t *BigNumTable) Decimal(h uint64) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.decs[h]
}

func writeHandle(slot []byte, h uint64) { binary.LittleEndian.PutUint64(slot[:8], h) }
func readHandle(slot []byte) uint64     { return binary.LittleEndian.Uint64(slot[:8]) }

// BigNatKeyCmpFor and BigIntKeyCmpFor close over table so the returned
// KeyCmpFunc can be installed directly onto a types.Type built by
// types.NewBigNumType.
func BigNatKeyCmpFor(table *BigNumTable) types.KeyCmpFunc {
	return func(_ *types.Type, _ *types.Registry, a, b []byte) int {
		return table.BigNat(readHandle(a)).Cmp(table.BigNat(readHandle(b)))
	}
}

func BigIntKeyCmpFor(table *BigNumTable) types.KeyCmpFunc {
	return func(_ *types.Type, _ *types.Registry, a, b []byte) int {
		return table.BigInt(readHandle(a)).Cmp(table.BigInt(readHandle(b)))
	}
}

// Decimal and Rational have keyCmp = ⊥ per spec §4.3 ("Float, Decimal,
// Rational, and non-comparable aggregates have keyCmp = ⊥"); they get no
// KeyCmpFunc at all (nil), matching types.Type.IsKeyComparable's contract.
