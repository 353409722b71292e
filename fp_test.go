package gofp_test

import (
	"fmt"
	"testing"

	"github.com/npillmayer/gofp"
)

func TestComposition(t *testing.T) {
	g := func(n int) float32 {
		return float32(n) + 0.5
	}
	f := func(x float32) string {
		return fmt.Sprintf("%.3f", x)
	}
	// h := Compose[int, float32, string](f, g) // works, but type-inference helps
	h := gofp.Compose(g, f)
	h7 := h(7)
	if h7 != "7.500" {
		t.Logf("composition h(7) = %q", h(7))
		t.Error("expected h(7) to return string 7.500")
	}
}

func TestConst(t *testing.T) {
	seven := gofp.Const(7)
	if seven() != 7 {
		t.Logf("const = %v", seven())
		t.Error("expected const to be integer 7")
	}
}

func TestUnit(t *testing.T) {
	nothing := gofp.Unit(7)
	if nothing != 0 {
		t.Logf("Unit(7) = %v", nothing)
		t.Error("expected Unit(7) to be nothing = 0")
	}
}

func TestMatchPair(t *testing.T) {
	p := gofp.P(1, 2)
	clauses := gofp.PatternList[string, int, int]{
		{Guard: func(a, b int) bool { return a == b }, Then: func(a, b int) string { return "equal" }},
		{Guard: func(a, b int) bool { return a < b }, Then: func(a, b int) string { return "ascending" }},
		{Guard: nil, Then: func(a, b int) string { return "descending" }},
	}
	m := gofp.Match[string, gofp.Pair[int, int], int, int](p, clauses)
	if r := m.WithDefault("?"); r != "ascending" {
		t.Errorf("expected P(1,2) to match 'ascending', matched %q", r)
	}
}

func TestMatchNoClause(t *testing.T) {
	p := gofp.P(2, 1)
	clauses := gofp.PatternList[string, int, int]{
		{Guard: func(a, b int) bool { return a < b }, Then: func(a, b int) string { return "ascending" }},
	}
	m := gofp.Match[string, gofp.Pair[int, int], int, int](p, clauses)
	if r := m.WithDefault("nothing"); r != "nothing" {
		t.Errorf("expected no clause to match P(2,1), matched %q", r)
	}
}
