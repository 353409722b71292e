package gofp

import (
	"github.com/npillmayer/gofp/maybe"
)

// --- Matchable -------------------------------------------------------------

// Matchable is an interface for types which can be pattern-matched and
// decomposed into their constituent parts.
type Matchable[T, A, B comparable] interface {
	Matches(other T) bool
	Decompose() (A, B)
}

// --- Pair ------------------------------------------------------------------

// Pair is a 2-tuple, the simplest matchable composite.
type Pair[A, B comparable] struct {
	Left  A
	Right B
}

// P constructs a pair from x and y.
func P[A, B comparable](x A, y B) Pair[A, B] {
	return Pair[A, B]{x, y}
}

func (p Pair[A, B]) Matches(other Pair[A, B]) bool {
	return p.Left == other.Left && p.Right == other.Right
}

func (p Pair[A, B]) Decompose() (A, B) {
	return p.Left, p.Right
}

var _ Matchable[Pair[int, int], int, int] = Pair[int, int]{1, 2}
var _ Matchable[Pair[int, int], int, int] = P(1, 2)

// --- Match -----------------------------------------------------------------

// Pattern is a single clause of a match expression: a guard deciding whether
// the clause applies to the decomposed subject, and a function producing the
// clause's result. A nil guard matches unconditionally, taking the role of
// the '_' pattern.
type Pattern[T any, A, B comparable] struct {
	Guard func(A, B) bool
	Then  func(A, B) T
}

// PatternList is an ordered list of match clauses.
type PatternList[T any, A, B comparable] []Pattern[T, A, B]

// Match decomposes a subject and applies the first clause with an accepting
// guard. If no clause matches, Nothing is returned.
func Match[T any, M, A, B comparable](subject Matchable[M, A, B], clauses PatternList[T, A, B]) maybe.Maybe[T] {
	a, b := subject.Decompose()
	for _, p := range clauses {
		if p.Guard == nil || p.Guard(a, b) {
			return maybe.Just(p.Then(a, b))
		}
	}
	return maybe.Nothing[T]()
}
