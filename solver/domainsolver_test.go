package solver

import (
	"testing"

	"github.com/dgpv/bsst-go/symval"
	"github.com/stretchr/testify/require"
)

func numLeaf(name string) *symval.SymValue {
	return symval.NewLeaf(name, name, 0)
}

func eqCond(a, b *symval.SymValue, pc int) *symval.SymValue {
	return symval.NewCompound("eq@"+a.UniqueName+b.UniqueName, "EQUAL", "EQUAL", pc, []*symval.SymValue{a, b}, nil)
}

func notCond(inner *symval.SymValue, pc int) *symval.SymValue {
	return symval.NewCompound("not@"+inner.UniqueName, "NOT", "NOT", pc, []*symval.SymValue{inner}, nil)
}

func addCond(a, b *symval.SymValue, pc int) *symval.SymValue {
	return symval.NewCompound("add@"+a.UniqueName+b.UniqueName, "ADD", "ADD", pc, []*symval.SymValue{a, b}, nil)
}

func constNum(n int64) *symval.SymValue {
	v := symval.NewLeaf("c", "c", 0)
	b, _ := scriptNumBytesForTest(n)
	_ = v.SetStatic(b)
	return v
}

func TestDomainSolverEqualityPropagatesConcreteValue(t *testing.T) {
	a := numLeaf("a")
	require.NoError(t, a.SetStatic([]byte{0x02}))
	bLeaf := numLeaf("b")

	assertions := []Assertion{
		{Cond: eqCond(a, bLeaf, 1), Code: symval.FailEqualverify, PC: 1},
		// b must equal a literal different from a's concrete value -> unsat
		{Cond: eqCond(bLeaf, func() *symval.SymValue { l := numLeaf("lit3"); _ = l.SetStatic([]byte{0x03}); return l }(), 2), Code: symval.FailEqualverify, PC: 2},
	}

	result := NewDomainSolver().Check(assertions, CheckOptions{})
	require.Equal(t, Unsat, result.Status)
}

func TestDomainSolverEqualityConsistentIsSat(t *testing.T) {
	a := numLeaf("a")
	require.NoError(t, a.SetStatic([]byte{0x02}))
	bLeaf := numLeaf("b")
	lit2 := numLeaf("lit2")
	require.NoError(t, lit2.SetStatic([]byte{0x02}))

	assertions := []Assertion{
		{Cond: eqCond(a, bLeaf, 1), Code: symval.FailEqualverify, PC: 1},
		{Cond: eqCond(bLeaf, lit2, 2), Code: symval.FailEqualverify, PC: 2},
	}
	result := NewDomainSolver().Check(assertions, CheckOptions{})
	require.Equal(t, Sat, result.Status)
}

func TestDomainSolverNotEqualContradictsEquality(t *testing.T) {
	a := numLeaf("a")
	b := numLeaf("b")
	assertions := []Assertion{
		{Cond: eqCond(a, b, 1), Code: symval.FailEqualverify, PC: 1},
		{Cond: notCond(eqCond(a, b, 2), 2), Code: symval.FailNumequalverify, PC: 2},
	}
	result := NewDomainSolver().Check(assertions, CheckOptions{})
	require.Equal(t, Unsat, result.Status)
}

func TestDomainSolverHashInjectivityPropagatesPreimageEquality(t *testing.T) {
	a := numLeaf("a")
	b := numLeaf("b")
	hashA := symval.NewCompound("h_a", "HASH256", "HASH256", 1, []*symval.SymValue{a}, nil)
	hashB := symval.NewCompound("h_b", "HASH256", "HASH256", 1, []*symval.SymValue{b}, nil)

	assertions := []Assertion{
		{Cond: eqCond(hashA, hashB, 1), Code: symval.FailEqualverify, PC: 1},
		{Cond: notCond(eqCond(a, b, 2), 2), Code: symval.FailNumequalverify, PC: 2},
	}

	withInjectivity := NewDomainSolver().Check(assertions, CheckOptions{InjectiveHash256: true})
	require.Equal(t, Unsat, withInjectivity.Status)

	// 256-bit hashes are injective whatever the options say, so leaving
	// InjectiveHash256 unset reaches the same contradiction.
	withoutInjectivity := NewDomainSolver().Check(assertions, CheckOptions{})
	require.Equal(t, Unsat, withoutInjectivity.Status)
}

func TestDomainSolverAffineTautologyNeverAddsConflict(t *testing.T) {
	// ADD($a,1) == ADD($a,1): trivially true by affine equality, whatever
	// $a is, so this alone must never produce an Unsat verdict.
	a := numLeaf("a")
	left := addCond(a, constNum(1), 1)
	right := addCond(a, constNum(1), 1)
	assertions := []Assertion{
		{Cond: eqCond(left, right, 1), Code: symval.FailEqualverify, PC: 1},
	}
	result := NewDomainSolver().Check(assertions, CheckOptions{})
	require.Equal(t, Sat, result.Status)
}

func scriptNumBytesForTest(n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	neg := n < 0
	abs := n
	if neg {
		abs = -n
	}
	var b []byte
	for abs > 0 {
		b = append(b, byte(abs&0xff))
		abs >>= 8
	}
	if b[len(b)-1]&0x80 != 0 {
		if neg {
			b = append(b, 0x80)
		} else {
			b = append(b, 0x00)
		}
	} else if neg {
		b[len(b)-1] |= 0x80
	}
	return b, nil
}
