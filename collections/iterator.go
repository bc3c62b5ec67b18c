package collections

// ListIterator walks a List forward or backward with an index cursor,
// reading each element through List.Get. It does not register itself
// with the allocator and is not a GC root: the list it holds is a plain
// Go value (not a heap-page slot), and gc.Collector keeps no iterator
// list.
type ListIterator struct {
	list    List
	idx     int
	reverse bool
}

// NewListIterator builds a forward iterator starting before the first
// element.
func NewListIterator(l List) *ListIterator {
	return &ListIterator{list: l, idx: -1}
}

// NewReverseListIterator builds a reverse iterator starting after the
// last element.
func NewReverseListIterator(l List) *ListIterator {
	return &ListIterator{list: l, idx: l.Size(), reverse: true}
}

// Next advances the cursor and reports whether a valid element is now
// current.
func (it *ListIterator) Next() bool {
	if it.reverse {
		it.idx--
		return it.idx >= 0
	}
	it.idx++
	return it.idx < it.list.Size()
}

// Current returns the element at the cursor; valid only after Next
// returned true.
func (it *ListIterator) Current() Element { return it.list.Get(it.idx) }

// Index returns the cursor's current logical position.
func (it *ListIterator) Index() int { return it.idx }

// MapIterator walks a Map's entries in ascending key order (descending
// when reverse), built once from Entries() since the underlying AVL tree
// has no parent pointers to resume a spine walk from arbitrary positions.
type MapIterator struct {
	entries []Entry
	idx     int
	reverse bool
}

func NewMapIterator(m Map) *MapIterator {
	return &MapIterator{entries: m.Entries(), idx: -1}
}

func NewReverseMapIterator(m Map) *MapIterator {
	entries := m.Entries()
	return &MapIterator{entries: entries, idx: len(entries), reverse: true}
}

func (it *MapIterator) Next() bool {
	if it.reverse {
		it.idx--
		return it.idx >= 0
	}
	it.idx++
	return it.idx < len(it.entries)
}

func (it *MapIterator) Current() Entry { return it.entries[it.idx] }
