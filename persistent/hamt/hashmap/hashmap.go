package hashmap

import (
	"fmt"

	"github.com/npillmayer/gofp/maybe"
)

// Entry is an immutable key/value pair.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Map is a persistent hash map. Maps are immutable: With and WithDeleted
// return new incarnations and leave the receiver untouched, sharing all
// unmodified parts of the trie.
//
// A Map needs a Hasher for its key type; create instances with Immutable,
// Of or OfAll.
type Map[K, V any] struct {
	props
	hasher Hasher[K]
	root   hnode[K, V]
}

// Immutable constructs an empty hash map for keys handled by hasher, with
// options, if you need any.
//
// Use it like this:
//
//	m := hashmap.Immutable[string, int](hashmap.Strings())
//	m = m.With("Galaxy", 42)
//	value, found := m.Get("Galaxy") // returns 42
//
func Immutable[K, V any](hasher Hasher[K], opts ...Option) Map[K, V] {
	assertThat(hasher != nil, "attempt to create a map without a hasher")
	m := Map[K, V]{hasher: hasher}
	for _, option := range opts {
		m.props = option.config(m.props)
	}
	return m
}

// Of creates a hash map of the given entries, inserted in order; a later
// entry with a duplicate key overrides the earlier one.
func Of[K, V any](hasher Hasher[K], entries ...Entry[K, V]) Map[K, V] {
	m := Immutable[K, V](hasher)
	for _, e := range entries {
		m = m.With(e.Key, e.Value)
	}
	return m
}

// OfAll creates a hash map of the given entries, like Of.
func OfAll[K, V any](hasher Hasher[K], entries []Entry[K, V]) Map[K, V] {
	return Of(hasher, entries...)
}

// Option is a type to help initializing hash maps at creation time.
type Option struct {
	config func(props) props
}

// ExpandThreshold is an option to set the number of children at which a
// sparse (bitmapped) trie node is expanded into a dense 32-slot node during
// insertion. The default is 16. Accepted values are [1…31].
func ExpandThreshold(n int) Option {
	conf := func(p props) props {
		if n < 1 {
			n = 1
		} else if n >= int(degree) {
			n = int(degree) - 1
		}
		p.maxIndexed = n
		return p
	}
	return Option{config: conf}
}

// PackThreshold is an option to set the number of live slots at or below
// which a dense trie node is packed back into a sparse node during
// deletion. The default is 8. Accepted values are [1…31]; choose it well
// below the expand threshold to avoid shape thrashing.
func PackThreshold(n int) Option {
	conf := func(p props) props {
		if n < 1 {
			n = 1
		} else if n >= int(degree) {
			n = int(degree) - 1
		}
		p.minArray = n
		return p
	}
	return Option{config: conf}
}

// --- API -------------------------------------------------------------------

// Size returns the number of entries in the map. It is O(1): subtrie sizes
// are cached in the nodes.
func (m Map[K, V]) Size() int {
	if m.root == nil {
		return 0
	}
	return m.root.size()
}

// IsEmpty is a shorthand for Size() == 0.
func (m Map[K, V]) IsEmpty() bool {
	return m.Size() == 0
}

// Get locates a key in the map, if present, and returns the value
// associated with the key. If key is not found, the zero value for type V
// will be returned, together with found=false.
func (m Map[K, V]) Get(key K) (V, bool) {
	if m.root == nil {
		var none V
		return none, false
	}
	return lookup(m.root, 0, m.hashFor(key), key, m.hasher)
}

// GetOrDefault returns the value associated with key, or def if key is not
// present.
func (m Map[K, V]) GetOrDefault(key K, def V) V {
	if value, found := m.Get(key); found {
		return value
	}
	return def
}

// Lookup is Get with a maybe.Maybe result.
func (m Map[K, V]) Lookup(key K) maybe.Maybe[V] {
	if value, found := m.Get(key); found {
		return maybe.Just(value)
	}
	return maybe.Nothing[V]()
}

// ContainsKey reports whether key is present in the map. An entry whose
// value is the zero value of V counts as present.
func (m Map[K, V]) ContainsKey(key K) bool {
	_, found := m.Get(key)
	return found
}

// With returns a copy of the map with key inserted, associated with value.
// If an entry for key is already present, the associated value will be
// replaced (in a new incarnation of the map, nevertheless).
func (m Map[K, V]) With(key K, value V) Map[K, V] {
	m.props = m.props.init()
	op := edit[K, V]{props: m.props, hasher: m.hasher, hash: m.hashFor(key), key: key, value: value}
	tracer().Debugf("with: key=%v, hash=%08x", key, op.hash)
	return Map[K, V]{props: m.props, hasher: m.hasher, root: op.modify(m.rootNode(), 0)}
}

// WithDeleted returns a copy of the map with key deleted, if present. If
// key is not found, the result equals the receiver.
func (m Map[K, V]) WithDeleted(key K) Map[K, V] {
	m.props = m.props.init()
	op := edit[K, V]{props: m.props, hasher: m.hasher, hash: m.hashFor(key), key: key, del: true}
	tracer().Debugf("without: key=%v, hash=%08x", key, op.hash)
	return Map[K, V]{props: m.props, hasher: m.hasher, root: op.modify(m.rootNode(), 0)}
}

// Entries returns the map's entries. The order is the trie walk order,
// which carries no meaning for clients.
func (m Map[K, V]) Entries() []Entry[K, V] {
	if m.root == nil {
		return nil
	}
	return appendEntries(m.root, make([]Entry[K, V], 0, m.root.size()))
}

func (m Map[K, V]) String() string {
	return fmt.Sprintf("HashMap(size=%d)", m.Size())
}

// ---------------------------------------------------------------------------

func (m Map[K, V]) hashFor(key K) uint32 {
	assertThat(m.hasher != nil, "map has no hasher; create maps with Immutable, Of or OfAll")
	return m.hasher.Hash(key)
}

func (m Map[K, V]) rootNode() hnode[K, V] {
	if m.root == nil {
		return emptyNode[K, V]{}
	}
	return m.root
}

func appendEntries[K, V any](n hnode[K, V], out []Entry[K, V]) []Entry[K, V] {
	switch nd := n.(type) {
	case emptyNode[K, V]:
	case *leafNode[K, V]:
		out = append(out, nd.entries...)
	case *indexedNode[K, V]:
		for _, ch := range nd.children {
			out = appendEntries(ch, out)
		}
	case *arrayNode[K, V]:
		for _, ch := range nd.children {
			out = appendEntries(ch, out)
		}
	}
	return out
}
