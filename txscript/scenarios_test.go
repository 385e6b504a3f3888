package txscript_test

import (
	"testing"

	"github.com/dgpv/bsst-go/internal/asmtoken"
	"github.com/dgpv/bsst-go/logging"
	"github.com/dgpv/bsst-go/txscript"
	"github.com/stretchr/testify/require"
)

// runScript tokenizes src and executes it against a fresh environment,
// returning the root Branchpoint and the number of feasible (unfailed)
// leaves.
func runScript(t *testing.T, src string, configure func(*txscript.SymOptions)) (*txscript.Environment, *txscript.Branchpoint, int) {
	t.Helper()
	res, err := asmtoken.Parse(src, true)
	require.NoError(t, err)

	opts := txscript.NewSymOptions()
	if configure != nil {
		configure(opts)
	}
	env := txscript.NewEnvironment(opts, logging.NewNop())
	for name, d := range res.Assumes {
		env.Assumes[name] = d
	}

	root := txscript.Run(env, &res.Stream)

	feasible := 0
	for _, leaf := range root.Leaves() {
		if leaf.Ctx.Failure == nil {
			feasible++
		}
	}
	return env, root, feasible
}

// SC-1: a tautological BOOLOR(wit,0) forced equal to the witness itself
// contradicts via EQUAL(wit,0); solver-off cannot see the contradiction.
func TestSC1BoolOrContradiction(t *testing.T) {
	src := "DUP 0 BOOLOR SWAP 0 EQUALVERIFY"

	_, _, feasibleOn := runScript(t, src, nil)
	require.Equal(t, 0, feasibleOn)

	_, _, feasibleOff := runScript(t, src, func(o *txscript.SymOptions) { o.SolverEnabled = false })
	require.Equal(t, 1, feasibleOff)
}

// SC-2: equal HASH256 outputs force equal inputs (256-bit hashes are
// injective unconditionally), so NOT EQUAL on the preimages contradicts.
func TestSC2Hash256Injective(t *testing.T) {
	src := "2DUP HASH256 SWAP HASH256 EQUALVERIFY EQUAL NOT"

	_, _, feasibleOn := runScript(t, src, nil)
	require.Equal(t, 0, feasibleOn)

	_, _, feasibleOff := runScript(t, src, func(o *txscript.SymOptions) { o.SolverEnabled = false })
	require.Equal(t, 1, feasibleOff)
}

// SC-3: RIPEMD160 (160-bit) is injective only when explicitly assumed
// collision-free.
func TestSC3Ripemd160CollisionOption(t *testing.T) {
	src := "2DUP RIPEMD160 SWAP RIPEMD160 EQUALVERIFY EQUAL NOT"

	_, _, feasibleDefault := runScript(t, src, nil)
	require.Equal(t, 1, feasibleDefault)

	_, _, feasibleNoCollisions := runScript(t, src, func(o *txscript.SymOptions) { o.NoHash160Collisions = true })
	require.Equal(t, 0, feasibleNoCollisions)
}

// SC-4: both IF/ELSE arms feasible; the True arm's EQUAL(wit1,wit2) is
// globally always-true across the tree.
func TestSC4AlwaysTrueAcrossBranches(t *testing.T) {
	src := "IF 2DUP EQUALVERIFY 1 EQUALVERIFY 1 EQUALVERIFY ELSE EQUALVERIFY ENDIF"

	env, root, feasible := runScript(t, src, nil)
	require.Equal(t, 2, feasible)

	snap := txscript.BuildSnapshot(env, root)
	found := false
	for _, e := range snap.GlobalAlwaysTrue {
		if e.IsAlwaysTrueGlobal {
			found = true
		}
	}
	require.True(t, found, "expected at least one globally always-true enforcement")
}

// SC-5: TXWEIGHT is bounded by max_tx_size*4; the boundary script is
// feasible, one past it is not.
func TestSC5WeightBound(t *testing.T) {
	elements := func(o *txscript.SymOptions) {
		o.Elements = true
		o.SigVersion = txscript.SigVersionTapscript
	}

	_, _, feasibleAt := runScript(t, "TXWEIGHT 4000000 EQUAL", elements)
	require.Equal(t, 1, feasibleAt)

	_, _, feasibleOver := runScript(t, "TXWEIGHT 4000001 EQUAL", elements)
	require.Equal(t, 0, feasibleOver)
}

// SC-6: an always-true tautology over a placeholder, despite neither side
// ever folding to a static value.
func TestSC6PlaceholderTautology(t *testing.T) {
	src := "$a 1 ADD $a 2 ADD 1 SUB EQUAL"

	env, root, feasible := runScript(t, src, nil)
	require.Equal(t, 1, feasible)

	snap := txscript.BuildSnapshot(env, root)
	require.NotEmpty(t, snap.GlobalAlwaysTrue)
}

// SC-7: ADD64 overflow (adding 1 to the maximum representable LE64 value)
// is infeasible.
func TestSC7Add64Overflow(t *testing.T) {
	src := "le64(1) x('FFFFFFFFFFFFFF7F') ADD64 VERIFY"

	_, root, feasible := runScript(t, src, func(o *txscript.SymOptions) {
		o.Elements = true
		o.SigVersion = txscript.SigVersionTapscript
	})
	require.Equal(t, 0, feasible)

	var codes []string
	for _, leaf := range root.Leaves() {
		if leaf.Ctx.Failure != nil {
			for _, fc := range leaf.Ctx.Failure.Codes {
				codes = append(codes, fc.Code)
			}
			if leaf.Ctx.Failure.Reason != "" {
				codes = append(codes, leaf.Ctx.Failure.Reason)
			}
		}
	}
	require.Contains(t, codes, "invalid_arguments")
}

// TestMinimalIfRejectsNonMinimalCondition: IF/NOTIF's popped condition must
// be exactly the minimal boolean encoding (empty or {1}); a two-byte
// truthy value is rejected under the minimalif policy even though it would
// otherwise take the true branch.
func TestMinimalIfRejectsNonMinimalCondition(t *testing.T) {
	src := "x('0002') IF 1 ENDIF"

	_, _, feasibleOn := runScript(t, src, nil)
	require.Equal(t, 0, feasibleOn)

	_, _, feasibleOff := runScript(t, src, func(o *txscript.SymOptions) { o.MinimalIf = false })
	require.Equal(t, 1, feasibleOff)
}

// TestSubstrOutOfRangeFails: OP_SUBSTR's strict form fails the script on a
// statically out-of-range position (spec.md 4.B), unlike OP_SUBSTR_LAZY
// which clamps instead.
func TestSubstrOutOfRangeFails(t *testing.T) {
	elements := func(o *txscript.SymOptions) { o.Elements = true }

	_, root, feasible := runScript(t, "x('AABBCC') 4 SUBSTR DROP DROP 1", elements)
	require.Equal(t, 0, feasible)

	var codes []string
	for _, leaf := range root.Leaves() {
		if leaf.Ctx.Failure != nil {
			for _, fc := range leaf.Ctx.Failure.Codes {
				codes = append(codes, fc.Code)
			}
			if leaf.Ctx.Failure.Reason != "" {
				codes = append(codes, leaf.Ctx.Failure.Reason)
			}
		}
	}
	require.Contains(t, codes, "argument_above_bounds")

	_, _, feasibleLazy := runScript(t, "x('AABBCC') 4 SUBSTR_LAZY DROP DROP 1", elements)
	require.Equal(t, 1, feasibleLazy)
}

// TestMinimalDataRejectsNonMinimalPush: the value 5 has a dedicated
// single-byte opcode (OP_5); under minimaldata_flag_strict, pushing it as
// raw data (x('05')) fails the script outright.
func TestMinimalDataRejectsNonMinimalPush(t *testing.T) {
	res, err := asmtoken.Parse("x('05') DROP 1", true)
	require.NoError(t, err)
	require.True(t, res.Stream.Tokens[0].NonMinimal)

	env := txscript.NewEnvironment(txscript.NewSymOptions(), logging.NewNop())
	root := txscript.Run(env, &res.Stream)
	feasible := 0
	var codes []string
	for _, leaf := range root.Leaves() {
		if leaf.Ctx.Failure == nil {
			feasible++
			continue
		}
		if leaf.Ctx.Failure.Reason != "" {
			codes = append(codes, leaf.Ctx.Failure.Reason)
		}
	}
	require.Equal(t, 0, feasible)
	require.Contains(t, codes, "non_minimal_push")

	opts := txscript.NewSymOptions()
	opts.MinimalData = false
	env2 := txscript.NewEnvironment(opts, logging.NewNop())
	root2 := txscript.Run(env2, &res.Stream)
	feasibleOff := 0
	for _, leaf := range root2.Leaves() {
		if leaf.Ctx.Failure == nil {
			feasibleOff++
		}
	}
	require.Equal(t, 1, feasibleOff)
}
