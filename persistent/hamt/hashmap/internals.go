package hashmap

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	bitsPerLevel uint32 = 5                 // number of hash bits consumed per trie level
	degree       uint32 = 1 << bitsPerLevel // fan-out of inner nodes
	fragMask     uint32 = degree - 1
)

// Watermarks for switching between the sparse and the dense node shape.
// A sparse node holding more than maxIndexedChildren children is expanded
// into a dense node on insertion; a dense node dropping to minArrayChildren
// or fewer live slots is packed back into a sparse node on deletion. The two
// are independent knobs, see ExpandThreshold and PackThreshold.
const (
	defaultMaxIndexedChildren = int(degree) / 2
	defaultMinArrayChildren   = int(degree) / 4
)

type props struct {
	maxIndexed int // sparse node child-count limit
	minArray   int // dense node live-slot minimum
}

func (p props) init() props {
	if p.maxIndexed == 0 {
		p.maxIndexed = defaultMaxIndexedChildren
	}
	if p.minArray == 0 {
		p.minArray = defaultMinArrayChildren
	}
	return p
}

// --- Hash fragments --------------------------------------------------------

// fragment slices the 5 bits out of hash which select the child at a trie
// level reached by shift.
func fragment(shift, hash uint32) uint32 {
	return (hash >> shift) & fragMask
}

func bitFor(frag uint32) uint32 {
	return 1 << frag
}

// compactedIndex translates a fragment's bit into the position of the
// corresponding child within the compacted child list of a sparse node.
func compactedIndex(bitmap, bit uint32) int {
	return bits.OnesCount32(bitmap & (bit - 1))
}

// --- Node variants ---------------------------------------------------------

// hnode is the closed sum of trie node shapes. Exactly four variants
// implement it: emptyNode, leafNode, indexedNode and arrayNode.
type hnode[K, V any] interface {
	size() int
	String() string
}

// emptyNode is the sentinel for an unoccupied subtrie. Emptiness is tested
// by variant, never by comparing against a canonical instance.
type emptyNode[K, V any] struct{}

// leafNode holds all entries sharing one identical full hash code. With a
// reasonable hash function the entry list has length 1 nearly always.
type leafNode[K, V any] struct {
	hash    uint32
	entries []Entry[K, V]
}

// indexedNode is the sparse shape: bitmap marks the occupied fragment
// values at this level, children holds the occupied subtries compacted in
// ascending fragment order.
type indexedNode[K, V any] struct {
	bitmap   uint32
	children []hnode[K, V]
	total    int // number of entries in this subtrie, cached
}

// arrayNode is the dense shape: one slot per fragment value, empty slots
// filled with emptyNode. count tracks the non-empty slots.
type arrayNode[K, V any] struct {
	children [degree]hnode[K, V]
	count    int
	total    int // number of entries in this subtrie, cached
}

func (emptyNode[K, V]) size() int      { return 0 }
func (l *leafNode[K, V]) size() int    { return len(l.entries) }
func (n *indexedNode[K, V]) size() int { return n.total }
func (n *arrayNode[K, V]) size() int   { return n.total }

func singleEntryLeaf[K, V any](hash uint32, key K, value V) *leafNode[K, V] {
	return &leafNode[K, V]{hash: hash, entries: []Entry[K, V]{{Key: key, Value: value}}}
}

// newIndexed sums up the children's entry counts once; size() stays O(1).
func newIndexed[K, V any](bitmap uint32, children []hnode[K, V]) *indexedNode[K, V] {
	assertThat(len(children) == bits.OnesCount32(bitmap), "child count does not match bitmap")
	total := 0
	for _, ch := range children {
		total += ch.size()
	}
	return &indexedNode[K, V]{bitmap: bitmap, children: children, total: total}
}

func newArray[K, V any](children [degree]hnode[K, V], count int) *arrayNode[K, V] {
	total := 0
	for _, ch := range children {
		total += ch.size()
	}
	return &arrayNode[K, V]{children: children, count: count, total: total}
}

func isEmptyNode[K, V any](n hnode[K, V]) bool {
	_, ok := n.(emptyNode[K, V])
	return ok
}

func isLeafNode[K, V any](n hnode[K, V]) bool {
	_, ok := n.(*leafNode[K, V])
	return ok
}

// --- Lookup ----------------------------------------------------------------

func lookup[K, V any](n hnode[K, V], shift, hash uint32, key K, hasher Hasher[K]) (V, bool) {
	var none V
	switch nd := n.(type) {
	case emptyNode[K, V]:
		return none, false
	case *leafNode[K, V]:
		if nd.hash != hash {
			return none, false
		}
		for _, e := range nd.entries {
			if hasher.Equal(e.Key, key) {
				return e.Value, true
			}
		}
		return none, false
	case *indexedNode[K, V]:
		bit := bitFor(fragment(shift, hash))
		if nd.bitmap&bit == 0 {
			return none, false
		}
		child := nd.children[compactedIndex(nd.bitmap, bit)]
		return lookup(child, shift+bitsPerLevel, hash, key, hasher)
	case *arrayNode[K, V]:
		child := nd.children[fragment(shift, hash)]
		return lookup(child, shift+bitsPerLevel, hash, key, hasher)
	}
	assertThat(false, "unknown node variant %T", n)
	return none, false
}

// --- Modification ----------------------------------------------------------

// edit is one insert-or-delete pass through the trie. Bundling the constant
// parts keeps the recursion signatures short.
type edit[K, V any] struct {
	props
	hasher Hasher[K]
	hash   uint32
	key    K
	value  V
	del    bool
}

// modify returns the node resulting from applying the edit to the subtrie n
// at trie level shift. n itself is never changed; untouched children are
// shared between n and the result.
func (op edit[K, V]) modify(n hnode[K, V], shift uint32) hnode[K, V] {
	switch nd := n.(type) {
	case emptyNode[K, V]:
		if op.del { // key not present, nothing to delete
			return nd
		}
		return singleEntryLeaf[K, V](op.hash, op.key, op.value)
	case *leafNode[K, V]:
		if nd.hash == op.hash {
			return op.updateLeaf(nd)
		}
		if op.del { // key cannot live in a leaf with a different hash
			return nd
		}
		return mergeLeaves(shift, nd, singleEntryLeaf[K, V](op.hash, op.key, op.value))
	case *indexedNode[K, V]:
		return op.modifyIndexed(nd, shift)
	case *arrayNode[K, V]:
		return op.modifyArray(nd, shift)
	}
	assertThat(false, "unknown node variant %T", n)
	return n
}

// updateLeaf rebuilds the collision list of a leaf whose hash matches the
// edit: dropping the key's entry for deletions, appending resp. replacing it
// for insertions.
func (op edit[K, V]) updateLeaf(nd *leafNode[K, V]) hnode[K, V] {
	entries := make([]Entry[K, V], 0, len(nd.entries)+1)
	for _, e := range nd.entries {
		if !op.hasher.Equal(e.Key, op.key) {
			entries = append(entries, e)
		}
	}
	if op.del {
		if len(entries) == len(nd.entries) { // key was not in the collision list
			return nd
		}
	} else {
		entries = append(entries, Entry[K, V]{Key: op.key, Value: op.value})
	}
	if len(entries) == 0 {
		return emptyNode[K, V]{}
	}
	return &leafNode[K, V]{hash: nd.hash, entries: entries}
}

func (op edit[K, V]) modifyIndexed(nd *indexedNode[K, V], shift uint32) hnode[K, V] {
	frag := fragment(shift, op.hash)
	bit := bitFor(frag)
	idx := compactedIndex(nd.bitmap, bit)
	exists := nd.bitmap&bit != 0
	var oldChild hnode[K, V] = emptyNode[K, V]{}
	if exists {
		oldChild = nd.children[idx]
	}
	child := op.modify(oldChild, shift+bitsPerLevel)
	if op.del && child == oldChild { // nothing was deleted down there
		return nd
	}
	removed := exists && isEmptyNode(child)
	added := !exists && !isEmptyNode(child)
	bitmap := nd.bitmap
	switch {
	case removed:
		bitmap &^= bit
	case added:
		bitmap |= bit
	}
	switch {
	case bitmap == 0:
		return emptyNode[K, V]{}
	case removed && len(nd.children) == 2 && isLeafNode(nd.children[idx^1]):
		// a lone leaf sibling needs no level of its own
		tracer().Debugf("collapsing one-leaf node at shift %d", shift)
		return nd.children[idx^1]
	case removed:
		return newIndexed(bitmap, removedAt(nd.children, idx))
	case added && len(nd.children) >= op.maxIndexed:
		tracer().Debugf("expanding node with %d children at shift %d", len(nd.children), shift)
		return expand(frag, child, nd.bitmap, nd.children)
	case added:
		return newIndexed(bitmap, insertedAt(nd.children, idx, child))
	}
	return newIndexed(bitmap, replacedAt(nd.children, idx, child))
}

func (op edit[K, V]) modifyArray(nd *arrayNode[K, V], shift uint32) hnode[K, V] {
	frag := fragment(shift, op.hash)
	oldChild := nd.children[frag]
	child := op.modify(oldChild, shift+bitsPerLevel)
	if op.del && child == oldChild { // nothing was deleted down there
		return nd
	}
	removed := !isEmptyNode(oldChild) && isEmptyNode(child)
	added := isEmptyNode(oldChild) && !isEmptyNode(child)
	switch {
	case removed && nd.count-1 <= op.minArray:
		tracer().Debugf("packing node with %d live slots at shift %d", nd.count-1, shift)
		return pack(frag, nd.children)
	case removed:
		cow := nd.children
		cow[frag] = emptyNode[K, V]{}
		return newArray(cow, nd.count-1)
	case added:
		cow := nd.children
		cow[frag] = child
		return newArray(cow, nd.count+1)
	}
	cow := nd.children
	cow[frag] = child
	return newArray(cow, nd.count)
}

// mergeLeaves combines two leaves whose full hashes differ (almost always;
// equal hashes are handled defensively by concatenating the collision
// lists). If the hash fragments at this level coincide, the leaves still
// collide here and an intermediate one-child level is built; otherwise both
// leaves become siblings, ordered by ascending fragment so the compaction
// invariant holds by construction.
func mergeLeaves[K, V any](shift uint32, a, b *leafNode[K, V]) hnode[K, V] {
	if a.hash == b.hash {
		entries := make([]Entry[K, V], 0, len(a.entries)+len(b.entries))
		entries = append(entries, a.entries...)
		entries = append(entries, b.entries...)
		return &leafNode[K, V]{hash: a.hash, entries: entries}
	}
	fragA := fragment(shift, a.hash)
	fragB := fragment(shift, b.hash)
	if fragA == fragB {
		sub := mergeLeaves(shift+bitsPerLevel, a, b)
		return newIndexed(bitFor(fragA), []hnode[K, V]{sub})
	}
	children := []hnode[K, V]{a, b}
	if fragB < fragA {
		children[0], children[1] = b, a
	}
	return newIndexed(bitFor(fragA)|bitFor(fragB), children)
}

// expand blows a sparse level up into a dense node, placing newChild at its
// fragment slot. The compacted children are consumed in bitmap order.
func expand[K, V any](frag uint32, newChild hnode[K, V], bitmap uint32, compacted []hnode[K, V]) *arrayNode[K, V] {
	var children [degree]hnode[K, V]
	count := 0
	next := 0
	for i := uint32(0); i < degree; i++ {
		switch {
		case bitmap&bitFor(i) != 0:
			children[i] = compacted[next]
			next++
			count++
		case i == frag:
			children[i] = newChild
			count++
		default:
			children[i] = emptyNode[K, V]{}
		}
	}
	return newArray(children, count)
}

// pack compresses a dense node back into a sparse one, leaving out the slot
// at exclude (the slot just vacated by a deletion).
func pack[K, V any](exclude uint32, dense [degree]hnode[K, V]) *indexedNode[K, V] {
	var bitmap uint32
	children := make([]hnode[K, V], 0, int(degree))
	for i := uint32(0); i < degree; i++ {
		if i == exclude {
			continue
		}
		if ch := dense[i]; !isEmptyNode(ch) {
			children = append(children, ch)
			bitmap |= bitFor(i)
		}
	}
	return newIndexed(bitmap, children)
}

// --- Compacted child lists -------------------------------------------------

func insertedAt[K, V any](children []hnode[K, V], at int, ch hnode[K, V]) []hnode[K, V] {
	cow := make([]hnode[K, V], len(children)+1)
	copy(cow, children[:at])
	cow[at] = ch
	copy(cow[at+1:], children[at:])
	return cow
}

func removedAt[K, V any](children []hnode[K, V], at int) []hnode[K, V] {
	cow := make([]hnode[K, V], len(children)-1)
	copy(cow, children[:at])
	copy(cow[at:], children[at+1:])
	return cow
}

func replacedAt[K, V any](children []hnode[K, V], at int, ch hnode[K, V]) []hnode[K, V] {
	cow := make([]hnode[K, V], len(children))
	copy(cow, children)
	cow[at] = ch
	return cow
}

// --- Stringers -------------------------------------------------------------

func (emptyNode[K, V]) String() string {
	return "_"
}

func (l *leafNode[K, V]) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("⟨%08x:", l.hash))
	for i, e := range l.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%v=%v", e.Key, e.Value))
	}
	b.WriteRune('⟩')
	return b.String()
}

func (n *indexedNode[K, V]) String() string {
	return fmt.Sprintf("[bitmap=%08x #%d |%d|]", n.bitmap, len(n.children), n.total)
}

func (n *arrayNode[K, V]) String() string {
	return fmt.Sprintf("[dense #%d |%d|]", n.count, n.total)
}

// --- Helpers ---------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("hashmap: "+msg, msgargs...)
		panic(msg)
	}
}
