package eval

import (
	"sync"

	"github.com/stephengoldbaum/icppgo/collections"
)

// CollectionTable is the handle side-table backing List/Map slots
// (CategoryCollection, a one-pointer-word slot per spec §3). Lists and
// Maps are plain immutable Go values (collections.List / collections.Map)
// with no byte-level heap representation of their own, so — the same
// adaptation as values.BigNumTable and bsqstring.Table — a slot's
// pointer word is really an index into this process-wide table rather
// than a literal heap address.
type CollectionTable struct {
	mu    sync.Mutex
	lists []collections.List
	maps  []collections.Map
}

func NewCollectionTable() *CollectionTable { return &CollectionTable{} }

func (t *CollectionTable) PutList(l collections.List) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lists = append(t.lists, l)
	return uint64(len(t.lists) - 1)
}

func (t *CollectionTable) List(h uint64) collections.List {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lists[h]
}

// ReplaceList overwrites an existing handle's value in place. The list
// primitives (push_back etc.) do not use it: they store their result
// under a fresh handle via PutList.
func (t *CollectionTable) ReplaceList(h uint64, l collections.List) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lists[h] = l
}

func (t *CollectionTable) PutMap(v collections.Map) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maps = append(t.maps, v)
	return uint64(len(t.maps) - 1)
}

func (t *CollectionTable) Map(h uint64) collections.Map {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maps[h]
}

func (t *CollectionTable) ReplaceMap(h uint64, v collections.Map) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maps[h] = v
}
