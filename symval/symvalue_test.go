package symval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLeafSetStaticIntersection(t *testing.T) {
	leaf := NewLeaf("wit0@0:0#0:0.0/0", "wit0", 0)
	require.False(t, leaf.IsStatic())

	require.NoError(t, leaf.SetStatic([]byte{0x05}))
	b, ok := leaf.StaticBytes()
	require.True(t, ok)
	require.Equal(t, []byte{0x05}, b)

	// Narrowing to a disjoint value must fail (never widen).
	err := leaf.SetStatic([]byte{0x06})
	require.Error(t, err)
}

func TestCompoundFoldsWhenArgsStatic(t *testing.T) {
	a := NewLeaf("a", "a", 0)
	require.NoError(t, a.SetStatic([]byte{0x02}))
	b := NewLeaf("b", "b", 0)

	sum := NewCompound("sum", "ADD", "ADD", 1, []*SymValue{a, b}, func(args [][]byte) ([]byte, error) {
		return []byte{args[0][0] + args[1][0]}, nil
	})

	require.False(t, sum.IsStatic())
	require.NoError(t, b.SetStatic([]byte{0x03}))
	// Requesting the value after both args are known folds it.
	v, ok := sum.StaticBytes()
	require.True(t, ok)
	require.Equal(t, []byte{0x05}, v)
}

func TestScriptBoolRule(t *testing.T) {
	require.False(t, ScriptBool(nil))
	require.False(t, ScriptBool([]byte{0x00}))
	require.False(t, ScriptBool([]byte{0x00, 0x80})) // negative zero
	require.True(t, ScriptBool([]byte{0x01}))
	require.True(t, ScriptBool([]byte{0x00, 0x01}))
}

func TestRequestViewRejectsScriptNumAndInt64Mix(t *testing.T) {
	v := NewLeaf("x", "x", 0)
	require.NoError(t, v.RequestView(ScriptNum, 4))
	err := v.RequestView(Int64, 0)
	require.Error(t, err)
}

func TestCanonicalReprStaticLeaf(t *testing.T) {
	v := NewLeaf("x", "x", 0)
	require.NoError(t, v.SetStatic([]byte{0x01}))
	require.Equal(t, "0x01", v.CanonicalRepr(false))
}

func TestCanonicalReprCompoundUsesNameAndArgs(t *testing.T) {
	a := NewLeaf("wit0", "wit0", 0)
	b := NewLeaf("wit1", "wit1", 0)
	eq := NewCompound("eq0", "EQUAL", "EQUAL", 3, []*SymValue{a, b}, nil)
	require.Equal(t, "EQUAL(wit0,wit1)", eq.CanonicalRepr(false))
}
