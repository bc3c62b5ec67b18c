// Package collections implements the persistent list and map
// representations of spec §4.5: lists as a tree of small partial vectors
// (k<=8), maps as an ordered tree keyed by a caller-supplied comparator,
// both pure-functional.
//
// Grounded on hive/ri.go (a fan-out list of pointers to leaf lists, the
// model for "a leaf promotes to an internal node once it is full") and
// hive/lf.go/li.go (fixed-capacity inline leaf entry arrays, the model
// for the PV4/PV8 partial-vector leaf). Every List value here is an
// immutable Go value; DESIGN.md documents how the evaluator publishes one
// through a Collection-category heap slot via a handle side-table, the
// same adaptation used for BigNum (see values/bignum.go).
package collections

// Element is one list slot's raw bytes, exactly as wide as the list's
// element type demands. Lists never interpret the bytes themselves;
// callers (values.Coerce/KeyCmp) do.
type Element []byte

func cloneElem(e Element) Element {
	out := make(Element, len(e))
	copy(out, e)
	return out
}

// maxLeaf is the widest partial-vector leaf (spec §4.5 "PV8 (<=8
// elements)"). PV4 and PV8 are unified into one leaf representation here:
// both are "a partial vector with count <= 8", and the spec's only
// observable promotion rule is "exceeds 8 elements promotes to a tree" —
// modeling PV4 as a distinct smaller-capacity type would add no
// observable behavior (see DESIGN.md).
const maxLeaf = 8

// node is one spine node of a List's backing tree: either a leaf (elems
// != nil, left == right == nil) or an internal fork.
type node struct {
	elems       []Element
	left, right *node
	count       int
	height      int
}

func leaf(elems []Element) *node {
	return &node{elems: elems, count: len(elems), height: 1}
}

func fork(l, r *node) *node {
	return &node{left: l, right: r, count: nodeCount(l) + nodeCount(r), height: 1 + max(nodeHeight(l), nodeHeight(r))}
}

func nodeCount(n *node) int {
	if n == nil {
		return 0
	}
	return n.count
}

func nodeHeight(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// balanceFactor returns left-height minus right-height for an internal node.
func balanceFactor(n *node) int { return nodeHeight(n.left) - nodeHeight(n.right) }

// rebalance restores the AVL height invariant at n after a single-element
// insertion or removal below it (spec §4.5: "implementations must keep it
// so that operations remain O(log n), e.g. by bounded-imbalance
// rebalancing on update").
func rebalance(n *node) *node {
	if n == nil || n.elems != nil {
		return n
	}
	bf := balanceFactor(n)
	switch {
	case bf > 1:
		if balanceFactor(n.left) < 0 {
			n = fork(rotateLeft(n.left), n.right)
		}
		return rotateRight(n)
	case bf < -1:
		if balanceFactor(n.right) > 0 {
			n = fork(n.left, rotateRight(n.right))
		}
		return rotateLeft(n)
	default:
		return n
	}
}

func rotateLeft(n *node) *node {
	r := n.right
	return fork(fork(n.left, r.left), r.right)
}

func rotateRight(n *node) *node {
	l := n.left
	return fork(l.left, fork(l.right, n.right))
}

func nodeGet(n *node, i int) Element {
	if n.elems != nil {
		return n.elems[i]
	}
	if i < n.left.count {
		return nodeGet(n.left, i)
	}
	return nodeGet(n.right, i-n.left.count)
}

func nodeSet(n *node, i int, v Element) *node {
	if n.elems != nil {
		out := make([]Element, len(n.elems))
		copy(out, n.elems)
		out[i] = cloneElem(v)
		return leaf(out)
	}
	if i < n.left.count {
		return fork(nodeSet(n.left, i, v), n.right)
	}
	return fork(n.left, nodeSet(n.right, i-n.left.count, v))
}

// nodeInsertAt inserts v so it becomes index i of n's in-order sequence
// (0 <= i <= n.count).
func nodeInsertAt(n *node, i int, v Element) *node {
	if n == nil {
		return leaf([]Element{cloneElem(v)})
	}
	if n.elems != nil {
		if len(n.elems) < maxLeaf {
			out := make([]Element, 0, len(n.elems)+1)
			out = append(out, n.elems[:i]...)
			out = append(out, cloneElem(v))
			out = append(out, n.elems[i:]...)
			return leaf(out)
		}
		mid := len(n.elems) / 2
		left := leaf(append([]Element(nil), n.elems[:mid]...))
		right := leaf(append([]Element(nil), n.elems[mid:]...))
		if i <= mid {
			left = nodeInsertAt(left, i, v)
		} else {
			right = nodeInsertAt(right, i-mid, v)
		}
		return fork(left, right)
	}
	if i <= n.left.count {
		return rebalance(fork(nodeInsertAt(n.left, i, v), n.right))
	}
	return rebalance(fork(n.left, nodeInsertAt(n.right, i-n.left.count, v)))
}

// nodeRemoveAt removes index i, returning nil if the whole subtree became
// empty.
func nodeRemoveAt(n *node, i int) *node {
	if n.elems != nil {
		if len(n.elems) == 1 {
			return nil
		}
		out := make([]Element, 0, len(n.elems)-1)
		out = append(out, n.elems[:i]...)
		out = append(out, n.elems[i+1:]...)
		return leaf(out)
	}
	if i < n.left.count {
		newLeft := nodeRemoveAt(n.left, i)
		if newLeft == nil {
			return n.right
		}
		return rebalance(fork(newLeft, n.right))
	}
	newRight := nodeRemoveAt(n.right, i-n.left.count)
	if newRight == nil {
		return n.left
	}
	return rebalance(fork(n.left, newRight))
}

func nodeForEach(n *node, f func(Element)) {
	if n == nil {
		return
	}
	if n.elems != nil {
		for _, e := range n.elems {
			f(e)
		}
		return
	}
	nodeForEach(n.left, f)
	nodeForEach(n.right, f)
}

func nodeForEachIdx(n *node, base int, f func(int, Element)) {
	if n == nil {
		return
	}
	if n.elems != nil {
		for i, e := range n.elems {
			f(base+i, e)
		}
		return
	}
	nodeForEachIdx(n.left, base, f)
	nodeForEachIdx(n.right, base+n.left.count, f)
}

// List is an immutable persistent sequence (spec §4.5 "List
// representation"). The zero List is the empty list.
type List struct {
	root *node
}

// Empty returns the empty list.
func Empty() List { return List{} }

// FromSlice builds a list containing vs in order, balancing the initial
// tree by recursive bisection rather than repeated single-element
// inserts (spec §4.5 "k(v0..v7) constructors").
func FromSlice(vs []Element) List {
	return List{root: buildBalanced(vs)}
}

func buildBalanced(vs []Element) *node {
	if len(vs) == 0 {
		return nil
	}
	if len(vs) <= maxLeaf {
		out := make([]Element, len(vs))
		for i, v := range vs {
			out[i] = cloneElem(v)
		}
		return leaf(out)
	}
	mid := len(vs) / 2
	return fork(buildBalanced(vs[:mid]), buildBalanced(vs[mid:]))
}

// Size returns the number of elements (spec §4.5 "size()").
func (l List) Size() int { return nodeCount(l.root) }

// Get returns element i, panicking (an internal invariant violation at
// the opcode layer, per spec §7) if i is out of range.
func (l List) Get(i int) Element {
	if i < 0 || i >= l.Size() {
		panic("collections: List.Get index out of range")
	}
	return nodeGet(l.root, i)
}

// Front and Back return the first/last element; callers must check
// Size() > 0 first, matching the spec's "assumed non-empty" contracts
// for these accessors.
func (l List) Front() Element { return l.Get(0) }
func (l List) Back() Element  { return l.Get(l.Size() - 1) }

// Set returns a new list with index i replaced by v.
func (l List) Set(i int, v Element) List {
	if i < 0 || i >= l.Size() {
		panic("collections: List.Set index out of range")
	}
	return List{root: nodeSet(l.root, i, v)}
}

// Insert returns a new list with v inserted before index i (0 <= i <=
// Size()).
func (l List) Insert(i int, v Element) List {
	if i < 0 || i > l.Size() {
		panic("collections: List.Insert index out of range")
	}
	return List{root: nodeInsertAt(l.root, i, v)}
}

// PushBack, PushFront, Remove, PopBack, PopFront are the remaining
// single-element mutators of spec §4.5.
func (l List) PushBack(v Element) List  { return l.Insert(l.Size(), v) }
func (l List) PushFront(v Element) List { return l.Insert(0, v) }

func (l List) Remove(i int) List {
	if i < 0 || i >= l.Size() {
		panic("collections: List.Remove index out of range")
	}
	return List{root: nodeRemoveAt(l.root, i)}
}

func (l List) PopBack() List  { return l.Remove(l.Size() - 1) }
func (l List) PopFront() List { return l.Remove(0) }

// Reverse returns the list with elements in reverse order.
func (l List) Reverse() List {
	n := l.Size()
	out := make([]Element, n)
	l.ForEachIdx(func(i int, e Element) { out[n-1-i] = e })
	return FromSlice(out)
}

// Append returns the concatenation of l followed by other.
func (l List) Append(other List) List {
	out := make([]Element, 0, l.Size()+other.Size())
	l.ForEach(func(e Element) { out = append(out, e) })
	other.ForEach(func(e Element) { out = append(out, e) })
	return FromSlice(out)
}

// SliceStart returns the trailing Size()-n elements (drop the first n).
func (l List) SliceStart(n int) List { return l.Slice(n, l.Size()) }

// SliceEnd returns the leading n elements (drop everything from n on).
func (l List) SliceEnd(n int) List { return l.Slice(0, n) }

// Slice returns elements [a, b).
func (l List) Slice(a, b int) List {
	if a < 0 {
		a = 0
	}
	if b > l.Size() {
		b = l.Size()
	}
	if a >= b {
		return Empty()
	}
	out := make([]Element, 0, b-a)
	for i := a; i < b; i++ {
		out = append(out, l.Get(i))
	}
	return FromSlice(out)
}

// ForEach visits every element in order.
func (l List) ForEach(f func(Element)) { nodeForEach(l.root, f) }

// ForEachIdx visits every (index, element) pair in order.
func (l List) ForEachIdx(f func(int, Element)) { nodeForEachIdx(l.root, 0, f) }

// ToSlice materializes the list into a plain Go slice, in order.
func (l List) ToSlice() []Element {
	out := make([]Element, 0, l.Size())
	l.ForEach(func(e Element) { out = append(out, e) })
	return out
}

// Map applies f to every element, producing a new list of the same size
// (spec §4.5 "map(f)").
func (l List) Map(f func(Element) Element) List {
	out := make([]Element, l.Size())
	l.ForEachIdx(func(i int, e Element) { out[i] = f(e) })
	return FromSlice(out)
}

// MapIdx is Map with the element's index also passed to f.
func (l List) MapIdx(f func(int, Element) Element) List {
	out := make([]Element, l.Size())
	l.ForEachIdx(func(i int, e Element) { out[i] = f(i, e) })
	return FromSlice(out)
}

// MapSync applies f pairwise to l and other, truncating to the shorter
// of the two sizes (spec §4.5 "map_sync(f, other)").
func (l List) MapSync(other List, f func(a, b Element) Element) List {
	n := l.Size()
	if other.Size() < n {
		n = other.Size()
	}
	out := make([]Element, n)
	for i := 0; i < n; i++ {
		out[i] = f(l.Get(i), other.Get(i))
	}
	return FromSlice(out)
}

// FilterPred keeps elements for which p returns true.
func (l List) FilterPred(p func(Element) bool) List {
	var out []Element
	l.ForEach(func(e Element) {
		if p(e) {
			out = append(out, e)
		}
	})
	return FromSlice(out)
}

// FilterPredIdx is FilterPred with the index also passed to p.
func (l List) FilterPredIdx(p func(int, Element) bool) List {
	var out []Element
	l.ForEachIdx(func(i int, e Element) {
		if p(i, e) {
			out = append(out, e)
		}
	})
	return FromSlice(out)
}

// FilterMap applies f to elements selected by p, dropping the rest (spec
// §4.5 "filter_map(f,p)").
func (l List) FilterMap(f func(Element) Element, p func(Element) bool) List {
	var out []Element
	l.ForEach(func(e Element) {
		if p(e) {
			out = append(out, f(e))
		}
	})
	return FromSlice(out)
}

// Reduce left-folds f over the list starting from seed.
func (l List) Reduce(seed Element, f func(acc, e Element) Element) Element {
	acc := seed
	l.ForEach(func(e Element) { acc = f(acc, e) })
	return acc
}

// ReduceIdx is Reduce with the element's index also passed to f.
func (l List) ReduceIdx(seed Element, f func(acc Element, i int, e Element) Element) Element {
	acc := seed
	l.ForEachIdx(func(i int, e Element) { acc = f(acc, i, e) })
	return acc
}

// TransduceStep is one step of a transduce: given the running environment
// and the next input element, produce the updated environment and,
// optionally, one emitted output element.
type TransduceStep func(env Element, e Element) (newEnv Element, emitted Element, ok bool)

// Transduce runs op over every element of l threading env, collecting
// every emitted output (spec §4.5 "transduce(op, env)").
func (l List) Transduce(env Element, op TransduceStep) (List, Element) {
	var out []Element
	l.ForEach(func(e Element) {
		var emitted Element
		var ok bool
		env, emitted, ok = op(env, e)
		if ok {
			out = append(out, emitted)
		}
	})
	return FromSlice(out), env
}

// TransduceIdxStep is TransduceStep with the element's index threaded in.
type TransduceIdxStep func(env Element, i int, e Element) (newEnv Element, emitted Element, ok bool)

// TransduceIdx is Transduce with the index passed to op.
func (l List) TransduceIdx(env Element, op TransduceIdxStep) (List, Element) {
	var out []Element
	l.ForEachIdx(func(i int, e Element) {
		var emitted Element
		var ok bool
		env, emitted, ok = op(env, i, e)
		if ok {
			out = append(out, emitted)
		}
	})
	return FromSlice(out), env
}

// Range produces [lo, lo+step, lo+2*step, ...) up to (but excluding) hi,
// each wrapped via mk (spec §4.5 "range(lo, hi, step)"). step must be
// nonzero and signed consistently with the lo->hi direction.
func Range(lo, hi, step int64, mk func(int64) Element) List {
	var out []Element
	if step == 0 {
		return Empty()
	}
	if step > 0 {
		for v := lo; v < hi; v += step {
			out = append(out, mk(v))
		}
	} else {
		for v := lo; v > hi; v += step {
			out = append(out, mk(v))
		}
	}
	return FromSlice(out)
}

// Fill builds a list of n copies of v (spec §4.5 "fill(n, v)").
func Fill(n int, v Element) List {
	out := make([]Element, n)
	for i := range out {
		out[i] = cloneElem(v)
	}
	return FromSlice(out)
}

// HasPred reports whether any element satisfies p.
func (l List) HasPred(p func(Element) bool) bool {
	found := false
	l.ForEach(func(e Element) {
		if p(e) {
			found = true
		}
	})
	return found
}

// FindPred returns the first index satisfying p, or -1.
func (l List) FindPred(p func(Element) bool) int {
	n := l.Size()
	for i := 0; i < n; i++ {
		if p(l.Get(i)) {
			return i
		}
	}
	return -1
}

// FindPredLast returns the last index satisfying p, or -1.
func (l List) FindPredLast(p func(Element) bool) int {
	for i := l.Size() - 1; i >= 0; i-- {
		if p(l.Get(i)) {
			return i
		}
	}
	return -1
}

// Has, IndexOf, LastIndexOf, SingleIndexOf mirror the predicate-search
// family above but compare elements with an explicit eq function, since
// List carries no built-in equality for its opaque Element bytes (spec
// §4.5 "has(v), indexof(v), last_indexof(v), single_index_of(v)").
func (l List) Has(v Element, eq func(a, b Element) bool) bool {
	return l.FindPred(func(e Element) bool { return eq(e, v) }) >= 0
}

func (l List) IndexOf(v Element, eq func(a, b Element) bool) int {
	return l.FindPred(func(e Element) bool { return eq(e, v) })
}

func (l List) LastIndexOf(v Element, eq func(a, b Element) bool) int {
	return l.FindPredLast(func(e Element) bool { return eq(e, v) })
}

// SingleIndexOf returns the unique index of v, or -1 if it occurs zero or
// more than one time (spec §4.5: "returns -1 unless there is exactly one").
func (l List) SingleIndexOf(v Element, eq func(a, b Element) bool) int {
	found := -1
	count := 0
	l.ForEachIdx(func(i int, e Element) {
		if eq(e, v) {
			count++
			found = i
		}
	})
	if count != 1 {
		return -1
	}
	return found
}
