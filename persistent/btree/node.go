package btree

import (
	"fmt"
	"strings"
)

// Key and value types of trees. Type-parameterized trees will replace these
// aliases once the API of the persistent containers has settled.
type K = int
type T = interface{}

// xitem is a key/value entry of a tree node.
type xitem struct {
	key   K
	value T
}

func (item xitem) String() string {
	return fmt.Sprintf("%v", item.key)
}

// xnode is a node of a B-tree. Leaf nodes carry no children; inner nodes
// maintain len(items)+1 child links.
type xnode struct {
	items    []xitem
	children []*xnode
}

func (node *xnode) isLeaf() bool {
	return node == nil || len(node.children) == 0
}

func (node *xnode) overfull(highWaterMark uint) bool {
	return node != nil && uint(len(node.items)) > highWaterMark
}

func (node *xnode) underfull(lowWaterMark uint) bool {
	if node == nil {
		return true
	}
	return uint(len(node.items)) < lowWaterMark
}

func (node xnode) clone() xnode {
	return node.cloneWithCapacity(len(node.items))
}

// cloneWithCapacity makes a copy of a node, reserving space for cap items
// plus a stopper item.
func (node xnode) cloneWithCapacity(cap int) xnode {
	if cap < len(node.items) {
		cap = len(node.items)
	}
	cow := xnode{}
	cow.items = make([]xitem, len(node.items), cap+1)
	copy(cow.items, node.items)
	if len(node.children) > 0 {
		cow.children = make([]*xnode, len(node.children), cap+2)
		copy(cow.children, node.children)
	}
	return cow
}

// slice copies the items [from…to) of a node into a fresh node, together
// with the child links surrounding them. to = -1 means up to the last item.
func (node xnode) slice(from, to int) xnode {
	if to < 0 {
		to = len(node.items)
	}
	cow := xnode{items: make([]xitem, to-from, ceiling(to-from)+1)}
	copy(cow.items, node.items[from:to])
	if !node.isLeaf() {
		cow.children = make([]*xnode, to-from+1, ceiling(to-from)+2)
		copy(cow.children, node.children[from:to+1])
	}
	return cow
}

// asNonLeaf makes sure a node carries a child slice matching its items,
// e.g. for a fresh root created during a split.
func (node xnode) asNonLeaf() xnode {
	if !node.isLeaf() {
		return node
	}
	cow := node
	cow.children = make([]*xnode, len(node.items)+1)
	return cow
}

func (node *xnode) String() string {
	if node == nil {
		return "[]"
	}
	b := strings.Builder{}
	b.WriteByte('[')
	for i, item := range node.items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(item.String())
	}
	b.WriteByte(']')
	return b.String()
}

// --- Tree plumbing ---------------------------------------------------------

// init fills in the default water marks for trees created as zero values
// instead of with Immutable.
func (tree Tree) init() Tree {
	if tree.highWaterMark == 0 {
		tree.lowWaterMark = defaultLowWaterMark
		tree.highWaterMark = defaultHighWaterMark
	}
	return tree
}

func (tree Tree) shallowCloneWithRoot(root xnode) Tree {
	return Tree{
		root:          &root,
		depth:         tree.depth,
		lowWaterMark:  tree.lowWaterMark,
		highWaterMark: tree.highWaterMark,
	}
}

func (tree Tree) withDepth(d uint) Tree {
	tree.depth = d
	return tree
}

// stealPredOrSucc locates the leaf item replacing an item deleted from an
// inner node: the rightmost item of the left subtree or, if its leaf could
// not afford the loss, the leftmost item of the right subtree. The path is
// extended down to the donating leaf.
func (del slot) stealPredOrSucc(path slotPath, lowWaterMark uint) (xitem, slotPath) {
	assertThat(!del.node.isLeaf(), "attempt to steal a replacement item from a leaf")
	predPath := descend(path, del.node.children[del.index], true)
	if !predPath.last().underfull(lowWaterMark + 1) {
		return predPath.last().item(), predPath
	}
	// successor lives one child link to the right; record that in the path
	path[len(path)-1].index = del.index + 1
	succPath := descend(path, del.node.children[del.index+1], false)
	return succPath.last().item(), succPath
}

// descend walks from node down to a leaf, always taking the rightmost
// (toRight) or leftmost child link, and appends the visited slots to path.
func descend(path slotPath, node *xnode, toRight bool) slotPath {
	for node != nil {
		if node.isLeaf() {
			inx := 0
			if toRight {
				inx = len(node.items) - 1
			}
			path = append(path, slot{node: node, index: inx})
			return path
		}
		chinx := 0
		if toRight {
			chinx = len(node.children) - 1
		}
		path = append(path, slot{node: node, index: chinx})
		node = node.children[chinx]
	}
	return path
}
