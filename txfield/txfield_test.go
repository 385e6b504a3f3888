package txfield

import (
	"testing"

	"github.com/dgpv/bsst-go/solver"
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
	"github.com/stretchr/testify/require"
)

func TestAssetPrefixConstrainedToThreeValues(t *testing.T) {
	frames := solver.NewFrameStack(true)
	store := NewStore(symval.NewNameSeq())

	idx := symval.NewLeaf("idx0", "idx0", 0)
	require.NoError(t, idx.SetStatic([]byte{0x00}))

	prefix := store.Get(frames, InputAssetPrefix, idx, 1)
	require.Error(t, prefix.SetStatic([]byte{0x02}))
	require.NoError(t, prefix.SetStatic([]byte{0x0a}))
}

func TestFieldLookupIsMemoizedPerIndex(t *testing.T) {
	frames := solver.NewFrameStack(true)
	store := NewStore(symval.NewNameSeq())

	idx0a := symval.NewLeaf("idx0", "idx0", 0)
	require.NoError(t, idx0a.SetStatic([]byte{0x00}))
	idx0b := symval.NewLeaf("idx0b", "idx0b", 0)
	require.NoError(t, idx0b.SetStatic([]byte{0x00}))

	a := store.Get(frames, Sequence, idx0a, 1)
	b := store.Get(frames, Sequence, idx0b, 1)
	require.Same(t, a, b)

	idx1 := symval.NewLeaf("idx1", "idx1", 0)
	require.NoError(t, idx1.SetStatic([]byte{0x01}))
	c := store.Get(frames, Sequence, idx1, 1)
	require.NotSame(t, a, c)
}

func TestWeightBoundFeedsSolverContradiction(t *testing.T) {
	frames := solver.NewFrameStack(true)
	store := NewStore(symval.NewNameSeq())

	weight := store.Get(frames, Weight, nil, 1)
	// TXWEIGHT 4000001 EQUAL — beyond max_tx_size*4, matching SC-5.
	require.NoError(t, weight.RequestView(symval.ScriptNum, 5))
	tooHigh := symval.NewLeaf("lit", "lit", 1)
	require.NoError(t, tooHigh.SetStatic(static.ScriptNumEncode(MaxTxSize*4 + 1)))
	eq := symval.NewCompound("", "EQUAL", "EQUAL", 2, []*symval.SymValue{weight, tooHigh}, nil)
	frames.Assert(eq, symval.FailEqualverify, 2)

	result := solver.NewDomainSolver().Check(frames.All(), solver.CheckOptions{})
	require.Equal(t, solver.Unsat, result.Status)
}
