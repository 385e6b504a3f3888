package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// SHA-256 streaming opcodes (spec.md 4.B "SHA-256 streaming"): thin
// wrappers over static.Sha256Context, which owns the wire encoding and the
// concrete fold semantics.

// assertValidSha256Context constrains v's length to [40,103] and asserts
// its internal shape invariants, for contexts that may arrive as opaque
// placeholders rather than ones this engine itself produced.
func (c *ExecContext) assertValidSha256Context(v *symval.SymValue) {
	sizes := make([]int, 0, 64)
	for n := 40; n <= 103; n++ {
		sizes = append(sizes, n)
	}
	_ = v.SetPossibleSizes(sizes)

	shape := c.newCompound("SHA256CTX_SHAPE", "SHA256CTX_SHAPE", []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
		if _, err := static.DecodeSha256Context(args[0]); err == nil {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(shape, symval.FailInvalidSha256Context)
}

func opSha256Initialize(c *ExecContext) error {
	data, err := c.PopStack()
	if err != nil {
		return err
	}
	out := c.newCompound("SHA256INITIALIZE", "SHA256CTX", []*symval.SymValue{data}, func(args [][]byte) ([]byte, error) {
		ctx := static.NewSha256Context().Update(args[0])
		return ctx.EncodeBytes(), nil
	})
	return c.Push(out)
}

func opSha256Update(c *ExecContext) error {
	data, err := c.PopStack()
	if err != nil {
		return err
	}
	ctx, err := c.PopStack()
	if err != nil {
		return err
	}
	c.assertValidSha256Context(ctx)
	out := c.newCompound("SHA256UPDATE", "SHA256CTX", []*symval.SymValue{ctx, data}, func(args [][]byte) ([]byte, error) {
		decoded, derr := static.DecodeSha256Context(args[0])
		if derr != nil {
			return nil, derr
		}
		return decoded.Update(args[1]).EncodeBytes(), nil
	})
	return c.Push(out)
}

func opSha256Finalize(c *ExecContext) error {
	ctx, err := c.PopStack()
	if err != nil {
		return err
	}
	c.assertValidSha256Context(ctx)
	out := c.newCompound("SHA256FINALIZE", "SHA256FINALIZE", []*symval.SymValue{ctx}, func(args [][]byte) ([]byte, error) {
		decoded, derr := static.DecodeSha256Context(args[0])
		if derr != nil {
			return nil, derr
		}
		digest := decoded.Finalize()
		return digest[:], nil
	})
	return c.Push(out)
}
