package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// hashOp builds a single-hash opcode handler. Kind matches the vocabulary
// solver/domainsolver.go's hash160Kinds/hash256Kinds maps key off of, so
// the injective-hash options (spec.md §8 SC-3) apply automatically once an
// opcode handler tags its compound this way.
func hashOp(kind string, fn func([]byte) []byte) func(*ExecContext) error {
	return func(c *ExecContext) error {
		v, err := c.PopStack()
		if err != nil {
			return err
		}
		out := c.newCompound(kind, kind, []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
			return fn(args[0]), nil
		})
		return c.Push(out)
	}
}

func ripemd160Sum(b []byte) []byte { h := static.Ripemd160Sum(b); return h[:] }
func sha1Sum(b []byte) []byte      { h := static.Sha1Sum(b); return h[:] }
func sha256Sum(b []byte) []byte    { h := static.Sha256Sum(b); return h[:] }
func hash160Sum(b []byte) []byte   { h := static.Hash160Sum(b); return h[:] }
func hash256Sum(b []byte) []byte   { h := static.Hash256Sum(b); return h[:] }

var (
	opRipemd160 = hashOp("RIPEMD160", ripemd160Sum)
	opSha1      = hashOp("SHA1", sha1Sum)
	opSha256    = hashOp("SHA256", sha256Sum)
	opHash160   = hashOp("HASH160", hash160Sum)
	opHash256   = hashOp("HASH256", hash256Sum)
)
