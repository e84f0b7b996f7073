// Package hashmap implements a persistent hash array mapped trie with string
// keys.
package hashmap

import "src.dde.sh/pkg/persistent/hash"

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// Map is a persistent associative data structure mapping string keys to
// values. It is immutable, and supports near-O(1) operations to create a
// modified version of the map that shares the underlying data structure.
// Because it is immutable, all of its methods are safe for concurrent use.
type Map[V any] interface {
	// Len returns the length of the map.
	Len() int
	// Index returns the value associated with the given key and whether
	// there is such a value.
	Index(k string) (V, bool)
	// Assoc returns an almost identical map, with the given key associated
	// with the given value.
	Assoc(k string, v V) Map[V]
	// Iterator returns an iterator over the map. The iteration order is
	// unspecified but stable for a given map.
	Iterator() Iterator[V]
}

// Iterator is an iterator over map elements. It can be used like this:
//
//	for it := m.Iterator(); it.HasElem(); it.Next() {
//	    key, value := it.Elem()
//	    // do something with elem...
//	}
type Iterator[V any] interface {
	// Elem returns the current key-value pair.
	Elem() (string, V)
	// HasElem returns whether the iterator is pointing to an element.
	HasElem() bool
	// Next moves the iterator to the next position.
	Next()
}

// New returns an empty map.
func New[V any]() Map[V] {
	return &hashMap[V]{0, &bitmapNode[V]{}}
}

// HasKey reports whether a Map has the given key.
func HasKey[V any](m Map[V], k string) bool {
	_, ok := m.Index(k)
	return ok
}

type hashMap[V any] struct {
	count int
	root  node[V]
}

func (m *hashMap[V]) Len() int {
	return m.count
}

func (m *hashMap[V]) Index(k string) (V, bool) {
	return m.root.find(0, hash.String(k), k)
}

func (m *hashMap[V]) Assoc(k string, v V) Map[V] {
	newRoot, added := m.root.assoc(0, hash.String(k), k, v)
	newCount := m.count
	if added {
		newCount++
	}
	return &hashMap[V]{newCount, newRoot}
}

func (m *hashMap[V]) Iterator() Iterator[V] {
	return m.root.iterator()
}

// node is an interface for all nodes in the hash map tree.
type node[V any] interface {
	// assoc adds a new pair of key and value. It returns the new node, and
	// whether the key did not exist before (i.e. a new pair has been added,
	// instead of replaced).
	assoc(shift, hash uint32, k string, v V) (node[V], bool)
	// find finds the value for a key. It returns the found value (if any) and
	// whether such a pair exists.
	find(shift, hash uint32, k string) (V, bool)
	// iterator returns an iterator.
	iterator() Iterator[V]
}

// arrayNode stores all of its children in an array. It is created when a
// bitmapNode grows beyond half of its capacity.
type arrayNode[V any] struct {
	nChildren int
	children  [nodeCap]node[V]
}

func (n *arrayNode[V]) assoc(shift, hash uint32, k string, v V) (node[V], bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	added := true
	var newChild node[V]
	if child == nil {
		newChild, _ = (&bitmapNode[V]{}).assoc(shift+chunkBits, hash, k, v)
	} else {
		newChild, added = child.assoc(shift+chunkBits, hash, k, v)
	}
	newNode := *n
	newNode.children[idx] = newChild
	if child == nil {
		newNode.nChildren++
	}
	return &newNode, added
}

func (n *arrayNode[V]) find(shift, hash uint32, k string) (V, bool) {
	child := n.children[chunk(shift, hash)]
	if child == nil {
		var zero V
		return zero, false
	}
	return child.find(shift+chunkBits, hash, k)
}

func (n *arrayNode[V]) iterator() Iterator[V] {
	it := &arrayNodeIterator[V]{n, 0, nil}
	it.fixCurrent()
	return it
}

type arrayNodeIterator[V any] struct {
	n       *arrayNode[V]
	index   int
	current Iterator[V]
}

func (it *arrayNodeIterator[V]) fixCurrent() {
	for ; it.index < nodeCap; it.index++ {
		if child := it.n.children[it.index]; child != nil {
			if cur := child.iterator(); cur.HasElem() {
				it.current = cur
				return
			}
		}
	}
	it.current = nil
}

func (it *arrayNodeIterator[V]) Elem() (string, V) {
	return it.current.Elem()
}

func (it *arrayNodeIterator[V]) HasElem() bool {
	return it.current != nil
}

func (it *arrayNodeIterator[V]) Next() {
	it.current.Next()
	if !it.current.HasElem() {
		it.index++
		it.fixCurrent()
	}
}

// bitmapNode stores up to nodeCap/2 entries compactly, using a bitmap to
// record which of the nodeCap slots are occupied. An entry is either a leaf
// (a key-value pair) or a child node.
type bitmapNode[V any] struct {
	bitmap  uint32
	entries []entry[V]
}

type entry[V any] struct {
	key   string
	value V
	child node[V]
}

func chunk(shift, hash uint32) uint32 {
	return (hash >> shift) & chunkMask
}

func bitpos(shift, hash uint32) uint32 {
	return 1 << chunk(shift, hash)
}

func index(bitmap, bit uint32) int {
	return popCount(bitmap & (bit - 1))
}

func popCount(u uint32) int {
	n := 0
	for ; u != 0; u &= u - 1 {
		n++
	}
	return n
}

func (n *bitmapNode[V]) assoc(shift, hash uint32, k string, v V) (node[V], bool) {
	bit := bitpos(shift, hash)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		// Entry does not exist yet.
		if len(n.entries) >= nodeCap/2 {
			newChild, _ := (&bitmapNode[V]{}).assoc(shift+chunkBits, hash, k, v)
			return n.unpack(shift, chunk(shift, hash), newChild), true
		}
		newEntries := make([]entry[V], len(n.entries)+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = entry[V]{key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode[V]{n.bitmap | bit, newEntries}, true
	}
	e := n.entries[idx]
	if e.child != nil {
		newChild, added := e.child.assoc(shift+chunkBits, hash, k, v)
		return n.withEntry(idx, entry[V]{child: newChild}), added
	}
	if e.key == k {
		return n.withEntry(idx, entry[V]{key: k, value: v}), false
	}
	// Two different keys share this slot; push both one level down.
	newChild := createNode(shift+chunkBits, e.key, e.value, hash, k, v)
	return n.withEntry(idx, entry[V]{child: newChild}), true
}

func (n *bitmapNode[V]) withEntry(idx int, e entry[V]) *bitmapNode[V] {
	newEntries := append([]entry[V](nil), n.entries...)
	newEntries[idx] = e
	return &bitmapNode[V]{n.bitmap, newEntries}
}

func (n *bitmapNode[V]) unpack(shift, idx uint32, newChild node[V]) *arrayNode[V] {
	var newNode arrayNode[V]
	newNode.nChildren = len(n.entries) + 1
	newNode.children[idx] = newChild
	j := 0
	for i := uint32(0); i < nodeCap; i++ {
		if (n.bitmap>>i)&1 == 0 {
			continue
		}
		e := n.entries[j]
		j++
		if e.child != nil {
			newNode.children[i] = e.child
		} else {
			newNode.children[i], _ = (&bitmapNode[V]{}).assoc(
				shift+chunkBits, hash.String(e.key), e.key, e.value)
		}
	}
	return &newNode
}

func createNode[V any](shift uint32, k1 string, v1 V, h2 uint32, k2 string, v2 V) node[V] {
	h1 := hash.String(k1)
	if h1 == h2 {
		return &collisionNode[V]{h1, []entry[V]{{key: k1, value: v1}, {key: k2, value: v2}}}
	}
	n, _ := (&bitmapNode[V]{}).assoc(shift, h1, k1, v1)
	n, _ = n.assoc(shift, h2, k2, v2)
	return n
}

func (n *bitmapNode[V]) find(shift, hash uint32, k string) (V, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		var zero V
		return zero, false
	}
	e := n.entries[index(n.bitmap, bit)]
	if e.child != nil {
		return e.child.find(shift+chunkBits, hash, k)
	} else if e.key == k {
		return e.value, true
	}
	var zero V
	return zero, false
}

func (n *bitmapNode[V]) iterator() Iterator[V] {
	it := &bitmapNodeIterator[V]{n, 0, nil}
	it.fixCurrent()
	return it
}

type bitmapNodeIterator[V any] struct {
	n       *bitmapNode[V]
	index   int
	current Iterator[V]
}

// Moves to the next non-empty position starting at the current index, and
// sets current if that position holds a child node.
func (it *bitmapNodeIterator[V]) fixCurrent() {
	for ; it.index < len(it.n.entries); it.index++ {
		child := it.n.entries[it.index].child
		if child == nil {
			it.current = nil
			return
		}
		if cur := child.iterator(); cur.HasElem() {
			it.current = cur
			return
		}
	}
	it.current = nil
}

func (it *bitmapNodeIterator[V]) Elem() (string, V) {
	if it.current != nil {
		return it.current.Elem()
	}
	e := it.n.entries[it.index]
	return e.key, e.value
}

func (it *bitmapNodeIterator[V]) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *bitmapNodeIterator[V]) Next() {
	if it.current != nil {
		it.current.Next()
		if it.current.HasElem() {
			return
		}
	}
	it.index++
	it.fixCurrent()
}

// collisionNode stores entries whose keys have the same full hash.
type collisionNode[V any] struct {
	hash    uint32
	entries []entry[V]
}

func (n *collisionNode[V]) assoc(shift, hash uint32, k string, v V) (node[V], bool) {
	if hash == n.hash {
		for i, e := range n.entries {
			if e.key == k {
				newEntries := append([]entry[V](nil), n.entries...)
				newEntries[i] = entry[V]{key: k, value: v}
				return &collisionNode[V]{n.hash, newEntries}, false
			}
		}
		newEntries := make([]entry[V], len(n.entries)+1)
		copy(newEntries, n.entries)
		newEntries[len(n.entries)] = entry[V]{key: k, value: v}
		return &collisionNode[V]{n.hash, newEntries}, true
	}
	// Wrap in a bitmapNode and add the entry.
	wrap := bitmapNode[V]{bitpos(shift, n.hash), []entry[V]{{child: n}}}
	return wrap.assoc(shift, hash, k, v)
}

func (n *collisionNode[V]) find(shift, hash uint32, k string) (V, bool) {
	for _, e := range n.entries {
		if e.key == k {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

func (n *collisionNode[V]) iterator() Iterator[V] {
	return &collisionNodeIterator[V]{n, 0}
}

type collisionNodeIterator[V any] struct {
	n     *collisionNode[V]
	index int
}

func (it *collisionNodeIterator[V]) Elem() (string, V) {
	e := it.n.entries[it.index]
	return e.key, e.value
}

func (it *collisionNodeIterator[V]) HasElem() bool {
	return it.index < len(it.n.entries)
}

func (it *collisionNodeIterator[V]) Next() {
	it.index++
}
