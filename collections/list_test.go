package collections

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func natElem(v int64) Element {
	b := make(Element, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func natVal(e Element) int64 { return int64(binary.LittleEndian.Uint64(e)) }

func natEq(a, b Element) bool { return natVal(a) == natVal(b) }

func TestEmptyListSize(t *testing.T) {
	require.Equal(t, 0, Empty().Size())
}

func TestPushBackGrowsSizeAndPreservesOrder(t *testing.T) {
	l := Empty()
	for i := int64(0); i < 20; i++ {
		l = l.PushBack(natElem(i))
	}
	require.Equal(t, 20, l.Size())
	for i := 0; i < 20; i++ {
		require.Equal(t, int64(i), natVal(l.Get(i)))
	}
}

func TestPushFrontPreservesOrder(t *testing.T) {
	l := Empty()
	for i := int64(0); i < 12; i++ {
		l = l.PushFront(natElem(i))
	}
	for i := 0; i < 12; i++ {
		require.Equal(t, int64(11-i), natVal(l.Get(i)))
	}
}

func TestSetDoesNotMutateOriginal(t *testing.T) {
	l := FromSlice([]Element{natElem(1), natElem(2), natElem(3)})
	l2 := l.Set(1, natElem(99))
	require.Equal(t, int64(2), natVal(l.Get(1)))
	require.Equal(t, int64(99), natVal(l2.Get(1)))
}

func TestInsertAndRemoveAlgebraicSizeLaw(t *testing.T) {
	l := FromSlice([]Element{natElem(1), natElem(2), natElem(3)})
	inserted := l.Insert(1, natElem(42))
	require.Equal(t, l.Size()+1, inserted.Size())
	require.Equal(t, int64(42), natVal(inserted.Get(1)))

	removed := inserted.Remove(1)
	require.Equal(t, inserted.Size()-1, removed.Size())
	require.Equal(t, int64(1), natVal(removed.Get(0)))
	require.Equal(t, int64(2), natVal(removed.Get(1)))
}

func TestReversePreservesSize(t *testing.T) {
	var in []Element
	for i := int64(0); i < 17; i++ {
		in = append(in, natElem(i))
	}
	l := FromSlice(in)
	r := l.Reverse()
	require.Equal(t, l.Size(), r.Size())
	for i := 0; i < l.Size(); i++ {
		require.Equal(t, natVal(l.Get(l.Size()-1-i)), natVal(r.Get(i)))
	}
}

func TestAppendSumsSizes(t *testing.T) {
	a := FromSlice([]Element{natElem(1), natElem(2)})
	b := FromSlice([]Element{natElem(3), natElem(4), natElem(5)})
	c := a.Append(b)
	require.Equal(t, a.Size()+b.Size(), c.Size())
	for i := 0; i < c.Size(); i++ {
		require.Equal(t, int64(i+1), natVal(c.Get(i)))
	}
}

func TestSliceBoundaryAtPromotionThreshold(t *testing.T) {
	var in []Element
	for i := int64(0); i < 9; i++ {
		in = append(in, natElem(i))
	}
	l := FromSlice(in)
	require.Equal(t, 9, l.Size())
	s := l.Slice(2, 7)
	require.Equal(t, 5, s.Size())
	require.Equal(t, int64(2), natVal(s.Get(0)))
	require.Equal(t, int64(6), natVal(s.Get(4)))
}

// TestS4ListPipeline is spec §8 scenario S4: range(0,10,1).map(x->x+1)
// .filter_pred(x->x%2==0).reduce((acc,x)->acc+x, 0) == 30.
func TestS4ListPipeline(t *testing.T) {
	r := Range(0, 10, 1, func(v int64) Element { return natElem(v) })
	mapped := r.Map(func(e Element) Element { return natElem(natVal(e) + 1) })
	filtered := mapped.FilterPred(func(e Element) bool { return natVal(e)%2 == 0 })
	sum := filtered.Reduce(natElem(0), func(acc, e Element) Element {
		return natElem(natVal(acc) + natVal(e))
	})
	require.Equal(t, int64(30), natVal(sum))
}

func TestFillProducesNCopies(t *testing.T) {
	l := Fill(5, natElem(7))
	require.Equal(t, 5, l.Size())
	l.ForEach(func(e Element) { require.Equal(t, int64(7), natVal(e)) })
}

func TestFindAndIndexOfFamily(t *testing.T) {
	l := FromSlice([]Element{natElem(1), natElem(2), natElem(3), natElem(2)})
	require.Equal(t, 1, l.FindPred(func(e Element) bool { return natVal(e) == 2 }))
	require.Equal(t, 3, l.FindPredLast(func(e Element) bool { return natVal(e) == 2 }))
	require.True(t, l.Has(natElem(3), natEq))
	require.Equal(t, 1, l.IndexOf(natElem(2), natEq))
	require.Equal(t, 3, l.LastIndexOf(natElem(2), natEq))
	require.Equal(t, -1, l.SingleIndexOf(natElem(2), natEq))
	require.Equal(t, 2, l.SingleIndexOf(natElem(3), natEq))
}

func TestMapSyncTruncatesToShorter(t *testing.T) {
	a := FromSlice([]Element{natElem(1), natElem(2), natElem(3)})
	b := FromSlice([]Element{natElem(10), natElem(20)})
	out := a.MapSync(b, func(x, y Element) Element { return natElem(natVal(x) + natVal(y)) })
	require.Equal(t, 2, out.Size())
	require.Equal(t, int64(11), natVal(out.Get(0)))
	require.Equal(t, int64(22), natVal(out.Get(1)))
}

func TestListIteratorForwardAndReverse(t *testing.T) {
	l := FromSlice([]Element{natElem(1), natElem(2), natElem(3)})
	fwd := NewListIterator(l)
	var seen []int64
	for fwd.Next() {
		seen = append(seen, natVal(fwd.Current()))
	}
	require.Equal(t, []int64{1, 2, 3}, seen)

	rev := NewReverseListIterator(l)
	seen = nil
	for rev.Next() {
		seen = append(seen, natVal(rev.Current()))
	}
	require.Equal(t, []int64{3, 2, 1}, seen)
}

func TestLargeListStaysConsistentAcrossPromotions(t *testing.T) {
	l := Empty()
	for i := int64(0); i < 500; i++ {
		l = l.PushBack(natElem(i))
	}
	require.Equal(t, 500, l.Size())
	for i := int64(0); i < 500; i += 37 {
		require.Equal(t, i, natVal(l.Get(int(i))))
	}
}
