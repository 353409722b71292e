package vector

import (
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	tp "github.com/xlab/treeprint"
)

func TestVectorConstructor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fp.vector")
	defer teardown()
	//
	v := Immutable[int](DegreeExponent(2))
	if v.mask != 0x03 {
		t.Errorf("expected mask to be 0011, is %x", v.mask)
	}
	v = Immutable[int]().Push(1)
	if v.degree != 1<<defaultBits {
		t.Errorf("expected default degree to be %d, is %d", 1<<defaultBits, v.degree)
	}
}

func TestVectorPushIntoTail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fp.vector")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	v := Immutable[int](DegreeExponent(1))
	v = v.Push(77)
	if len(v.tail) != 1 {
		t.Logf(printVec(v))
		t.Errorf("expected v.tail to be of length 1, is '%v'", v.tail)
	}
	v = v.Push(78)
	if len(v.tail) != 2 {
		t.Logf(printVec(v))
		t.Errorf("expected v.tail to be of length 2, is '%v'", v.tail)
	}
	v = v.Push(80) // tail overflows into the trie
	if len(v.tail) != 1 {
		t.Logf(printVec(v))
		t.Errorf("expected v.tail to be of length 1, is '%v'", v.tail)
	}
	if v.root == nil || len(v.root.leafs) != 2 {
		t.Logf(printVec(v))
		t.Errorf("expected old tail to become the root leaf, hasn't")
	}
}

func TestVectorGetSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fp.vector")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	v := Immutable[int](DegreeExponent(2))
	for i := 0; i < 40; i++ {
		v = v.Push(i)
	}
	if v.Len() != 40 {
		t.Fatalf("expected vector of length 40, has %d", v.Len())
	}
	for i := 0; i < 40; i++ {
		if v.Get(i) != i {
			t.Logf(printVec(v))
			t.Fatalf("expected v.Get(%d) = %d, is %d", i, i, v.Get(i))
		}
	}
	w := v.Set(17, -17)
	if w.Get(17) != -17 {
		t.Logf(printVec(w))
		t.Errorf("expected w.Get(17) = -17, is %d", w.Get(17))
	}
	if v.Get(17) != 17 {
		t.Logf(printVec(v))
		t.Errorf("expected original v to be unaffected by Set, isn't")
	}
}

func TestVectorLast(t *testing.T) {
	v := Immutable[int]()
	if v.Last().WithDefault(-1) != -1 {
		t.Error("expected Last of empty vector to be Nothing")
	}
	v = v.Push(7).Push(8)
	if v.Last().WithDefault(-1) != 8 {
		t.Errorf("expected Last to be 8, is %v", v.Last().WithDefault(-1))
	}
}

func TestVectorPop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fp.vector")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	v := Immutable[int](DegreeExponent(1))
	for i := 0; i < 10; i++ {
		v = v.Push(i)
	}
	for i := 9; i >= 0; i-- {
		if v.Get(i) != i {
			t.Logf(printVec(v))
			t.Fatalf("expected v.Get(%d) = %d before popping, is %d", i, i, v.Get(i))
		}
		v = v.Pop()
		if v.Len() != i {
			t.Logf(printVec(v))
			t.Fatalf("expected vector of length %d after pop, has %d", i, v.Len())
		}
	}
}

func TestVectorStructuralSharing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fp.vector")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	v := Immutable[int](DegreeExponent(2))
	for i := 0; i < 20; i++ {
		v = v.Push(i)
	}
	w := v.Push(20)
	if v.Len() != 20 || w.Len() != 21 {
		t.Fatalf("expected lengths 20|21, have %d|%d", v.Len(), w.Len())
	}
	for i := 0; i < 20; i++ {
		if w.Get(i) != i {
			t.Logf(printVec(w))
			t.Fatalf("expected w.Get(%d) = %d, is %d", i, i, w.Get(i))
		}
	}
}

// --- Print vector tree -----------------------------------------------------

func printVec[T any](v Vector[T]) string {
	header := fmt.Sprintf("\nVector(length=%d, shift=%x, degree=%d)\n", v.length, v.shift, v.degree)
	tail := fmt.Sprintf("       tail=%v\n", v.tail)
	printer := tp.New()
	printNode(printer, v.root, v.shift/v.props.init().bits+1, 0, v.degree)
	return header + tail + printer.String() + "\n"
}

func printNode[T any](printer tp.Tree, node *vnode[T], h, j, k uint32) {
	if node == nil {
		return
	}
	if node.leafs != nil {
		pp := capacity(k, h)
		printer.AddNode(node.String() + fmt.Sprintf("%d  %d…%d", pp, j, j+pp-1))
		return
	}
	pp := capacity(k, h)
	branch := printer.AddBranch(node.String() + fmt.Sprintf("%d  %d…%d", pp, j, j+pp-1))
	pp = capacity(k, h-1)
	for i, ch := range node.children {
		printNode(branch, ch, h-1, (uint32(i)*pp)+j, k)
	}
}

func capacity(k, height uint32) uint32 {
	if height == 0 {
		return 0
	}
	c := k
	for height > 1 {
		c *= k
		height--
	}
	return c
}
