package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func natCmp(a, b Element) int {
	av, bv := natVal(a), natVal(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func strElem(s string) Element { return Element(s) }

// TestS5MapRoundTrip is spec §8 scenario S5.
func TestS5MapRoundTrip(t *testing.T) {
	m := EmptyMap(natCmp)
	m = m.Add(natElem(1), strElem("a"))
	m = m.Add(natElem(3), strElem("c"))
	m = m.Add(natElem(2), strElem("b"))

	entries := m.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, int64(1), natVal(entries[0].Key))
	require.Equal(t, int64(2), natVal(entries[1].Key))
	require.Equal(t, int64(3), natVal(entries[2].Key))

	require.Equal(t, int64(1), natVal(m.MinKey()))
	require.Equal(t, int64(3), natVal(m.MaxKey()))
	require.Equal(t, "b", string(m.Get(natElem(2))))

	m2 := m.Remove(natElem(2))
	require.False(t, m2.Has(natElem(2)))
	require.Equal(t, 2, m2.Count())
}

func TestAddRejectsDuplicateKey(t *testing.T) {
	m := EmptyMap(natCmp).Add(natElem(1), strElem("a"))
	require.Panics(t, func() { m.Add(natElem(1), strElem("b")) })
}

func TestSetReplacesExistingKey(t *testing.T) {
	m := EmptyMap(natCmp).Add(natElem(1), strElem("a"))
	m2 := m.Set(natElem(1), strElem("z"))
	require.Equal(t, "z", string(m2.Get(natElem(1))))
	require.Equal(t, "a", string(m.Get(natElem(1))))
}

func TestEntriesAreStrictlyAscending(t *testing.T) {
	m := EmptyMap(natCmp)
	for _, k := range []int64{5, 3, 9, 1, 7, 2, 8} {
		m = m.Set(natElem(k), strElem("v"))
	}
	entries := m.Entries()
	for i := 1; i < len(entries); i++ {
		require.Less(t, natVal(entries[i-1].Key), natVal(entries[i].Key))
	}
}

func TestFindReportsAbsence(t *testing.T) {
	m := EmptyMap(natCmp).Add(natElem(1), strElem("a"))
	_, ok := m.Find(natElem(2))
	require.False(t, ok)
	v, ok := m.Find(natElem(1))
	require.True(t, ok)
	require.Equal(t, "a", string(v))
}

func TestSubmapAndRemap(t *testing.T) {
	m := EmptyMap(natCmp)
	for i := int64(0); i < 10; i++ {
		m = m.Set(natElem(i), natElem(i*10))
	}
	evens := m.Submap(func(k, v Element) bool { return natVal(k)%2 == 0 })
	require.Equal(t, 5, evens.Count())

	remapped := m.Remap(func(k, v Element) Element { return natElem(natVal(v) + 1) })
	require.Equal(t, int64(1), natVal(remapped.Get(natElem(0))))
	require.Equal(t, int64(91), natVal(remapped.Get(natElem(9))))
}

func TestUnionFastDetectsCollisionInDebugMode(t *testing.T) {
	a := EmptyMap(natCmp).Add(natElem(1), strElem("a"))
	b := EmptyMap(natCmp).Add(natElem(1), strElem("b"))
	require.Panics(t, func() { a.UnionFast(b, true) })

	c := EmptyMap(natCmp).Add(natElem(2), strElem("c"))
	merged := a.UnionFast(c, true)
	require.Equal(t, 2, merged.Count())
}

func TestMapIteratorAscendingAndDescending(t *testing.T) {
	m := EmptyMap(natCmp)
	for _, k := range []int64{3, 1, 2} {
		m = m.Add(natElem(k), natElem(k*100))
	}
	fwd := NewMapIterator(m)
	var keys []int64
	for fwd.Next() {
		keys = append(keys, natVal(fwd.Current().Key))
	}
	require.Equal(t, []int64{1, 2, 3}, keys)

	rev := NewReverseMapIterator(m)
	keys = nil
	for rev.Next() {
		keys = append(keys, natVal(rev.Current().Key))
	}
	require.Equal(t, []int64{3, 2, 1}, keys)
}
