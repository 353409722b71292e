/*
Package hashmap implements a persistent (immutable) hash map, based on a
hash array mapped trie (HAMT).

Maps are persistent in the sense that a modification produces a new map
incarnation, while the previous incarnation stays intact. Unmodified parts
of the trie are shared between incarnations, making updates cheap: an
insertion or deletion reallocates just the nodes on the path from the root
to the affected key, i.e. O(log32 n) nodes. Since every node is immutable
once constructed, arbitrarily many goroutines may read any number of map
incarnations concurrently without synchronization.

The trie consumes the hash code of a key in slices of 5 bits, giving inner
nodes a fan-out of up to 32. Sparsely occupied levels are held in bitmapped
nodes with a popcount-compressed child list; densely occupied levels switch
to a flat 32-slot node. Keys with identical full hash codes end up in a
collision list which is scanned linearly.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package hashmap

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'persistent.hashmap'.
func tracer() tracing.Trace {
	return tracing.Select("persistent.hashmap")
}
