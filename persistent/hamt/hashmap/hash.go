package hashmap

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hasher provides the hash code and the equality relation for map keys.
//
// Implementations must be deterministic and consistent: Hash and Equal may
// not depend on anything but the key's value, and Equal(a, b) implies
// Hash(a) == Hash(b). The map treats the hash purely as 32 bits to be
// sliced into 5-bit fragments; it detects no contract violation — an
// inconsistent hasher silently corrupts lookups.
type Hasher[K any] interface {
	Hash(key K) uint32
	Equal(a, b K) bool
}

// HasherOf builds a Hasher from a pair of plain functions.
func HasherOf[K any](hash func(key K) uint32, equal func(a, b K) bool) Hasher[K] {
	return hasherFuncs[K]{hash: hash, equal: equal}
}

type hasherFuncs[K any] struct {
	hash  func(key K) uint32
	equal func(a, b K) bool
}

func (h hasherFuncs[K]) Hash(key K) uint32 { return h.hash(key) }
func (h hasherFuncs[K]) Equal(a, b K) bool { return h.equal(a, b) }

// Strings returns a Hasher for string keys.
func Strings() Hasher[string] {
	return HasherOf(
		func(key string) uint32 { return fold64(xxhash.Sum64String(key)) },
		func(a, b string) bool { return a == b },
	)
}

// Bytes returns a Hasher for byte-slice keys.
func Bytes() Hasher[[]byte] {
	return HasherOf(
		func(key []byte) uint32 { return fold64(xxhash.Sum64(key)) },
		bytes.Equal,
	)
}

// Integer enumerates the key types Ints accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Ints returns a Hasher for integer keys.
func Ints[I Integer]() Hasher[I] {
	return HasherOf(
		func(key I) uint32 {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(key))
			return fold64(xxhash.Sum64(buf[:]))
		},
		func(a, b I) bool { return a == b },
	)
}

// fold64 folds a 64-bit hash down to the 32 bits the trie consumes.
func fold64(h uint64) uint32 {
	return uint32(h>>32) ^ uint32(h)
}
