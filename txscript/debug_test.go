package txscript_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/dgpv/bsst-go/internal/asmtoken"
	"github.com/dgpv/bsst-go/logging"
	"github.com/dgpv/bsst-go/txscript"
	"github.com/stretchr/testify/require"
)

// TestDebugDumpOnFailure isn't itself an assertion about engine behavior;
// it exercises spew.Sdump on a populated ExecContext/SymValue tree so a
// future failing scenario test's t.Log output is a readable dump rather
// than a wall of pointer addresses.
func TestDebugDumpOnFailure(t *testing.T) {
	res, err := asmtoken.Parse("DUP 0 BOOLOR SWAP 0 EQUALVERIFY", true)
	require.NoError(t, err)

	env := txscript.NewEnvironment(txscript.NewSymOptions(), logging.NewNop())
	root := txscript.Run(env, &res.Stream)

	leaves := root.Leaves()
	require.NotEmpty(t, leaves)

	dump := spew.Sdump(leaves[0].Ctx.Enforcements)
	require.NotEmpty(t, dump)
	t.Logf("first leaf enforcements:\n%s", dump)

	if leaves[0].Ctx.Failure != nil {
		t.Logf("failure detail:\n%s", spew.Sdump(leaves[0].Ctx.Failure))
	}
}
