package either_test

import (
	"strconv"
	"testing"

	"github.com/npillmayer/gofp/either"
)

func TestEitherMatchType(t *testing.T) {
	one := either.MakeLeft(1)
	t.Logf("one = %v", one)
	var count int
	// Matching on type of one
	switch x := one.(type) {
	case either.LeftType:
		count = int(x)
	case either.RightType:
		count = Atoi(string(x))
	}
	t.Logf("count = %d", count)
}

func TestEitherMatchConstructor1(t *testing.T) {
	one := either.ELeft(1)
	t.Logf("one = %#v", one)
	// Matching on constructor
	count := either.Match(one, either.Patterns{
		{either.ELeft, one},
		{either.ERight, Atoi},
	})
	t.Logf("count = %d", count)
}

func TestEitherMatchConstructor2(t *testing.T) {
	two := either.ERight("2")
	t.Logf("two = %#v", two)
	// Matching on constructor
	count := either.Match(two, either.Patterns{
		{either.ELeft, two},
		{either.ERight, Atoi},
	})
	t.Logf("count = %d", count)
}

func TestGenericEither(t *testing.T) {
	one := either.Left(1)
	t.Logf("one = %#v", one)
	var count int
	// Matching on the concrete sum instance
	switch x := one.(type) {
	case either.EitherSum[int, string]:
		count = x.LeftField
	}
	if count != 1 {
		t.Errorf("expected Left(1) to carry 1, carries %d", count)
	}
}

// ---------------------------------------------------------------------------

func Atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
