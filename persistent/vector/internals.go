package vector

import (
	"fmt"
	"strings"
)

const defaultBits uint32 = 3 // will produce nodes with degree 2 ^ 3 = 8

type props struct {
	bits   uint32 // number of bits to use per level
	degree uint32 // degree is always 2 ^ bits
	mask   uint32 // mask is degree - 1, i.e. a bit pattern with trailing 1s of length 'bits'
	shift  uint32 // bits * (height of the trie - 1)
}

// init fills in the default degree for vectors created without options,
// including the zero value Vector{}.
func (p props) init() props {
	if p.bits == 0 {
		p.bits = defaultBits
		p.degree = 1 << p.bits
		p.mask = p.degree - 1
	}
	return p
}

func (p props) withShift(shift uint32) props {
	p.shift = shift
	return p
}

// vnode represents a node in the tree a vector is made of. Inner nodes hold
// children, leaf nodes hold a bucket of values.
type vnode[T any] struct {
	children []*vnode[T]
	leafs    []T
}

func emptyNode[T any](k uint32) *vnode[T] {
	return &vnode[T]{
		children: make([]*vnode[T], int(k)),
	}
}

func newLeaf[T any](tail []T) *vnode[T] {
	l := make([]T, len(tail))
	if tail != nil {
		copy(l, tail)
	}
	return &vnode[T]{leafs: l}
}

func (node vnode[T]) clone(extend bool) *vnode[T] {
	ext := 0
	if extend {
		ext = 1
	}
	n := &vnode[T]{}
	if node.leafs != nil {
		n.leafs = make([]T, len(node.leafs), len(node.leafs)+ext)
		copy(n.leafs, node.leafs)
	}
	if node.children != nil {
		n.children = make([]*vnode[T], len(node.children), len(node.children)+ext)
		copy(n.children, node.children)
	}
	return n
}

func cloneTail[T any](tail []T, l int) []T {
	newTail := make([]T, l)
	if tail != nil {
		copy(newTail, tail[:min(l, len(tail))])
	}
	return newTail
}

// newPath wraps the tail into a leaf and stacks levels/bits inner nodes on
// top of it, i.e. builds the leftmost path of a subtree rooted at `levels`.
func newPath[T any](levels, bits, k uint32, tail []T) *vnode[T] {
	topNode := newLeaf(tail)
	for level := levels; level > 0; level -= bits {
		newTop := emptyNode[T](k)
		newTop.children[0] = topNode
		topNode = newTop
	}
	return topNode
}

func (node vnode[T]) String() string {
	b := strings.Builder{}
	b.WriteByte('[')
	if node.leafs != nil {
		for i, l := range node.leafs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(fmt.Sprintf("%v", l))
		}
	} else {
		for i, c := range node.children {
			if i > 0 {
				b.WriteByte(',')
			}
			if c == nil {
				b.WriteByte('_')
			} else {
				b.WriteString("▪︎")
			}
		}
	}
	b.WriteByte(']')
	return b.String()
}

// --- Helpers ---------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("persistent.vector: "+msg, msgargs...)
		panic(msg)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
