package txscript

import "github.com/dgpv/bsst-go/symval"

// Elements' bytewise opcode family (spec.md 4.B Elements superset): all
// operate on the raw byte-sequence view and fold concretely once every
// argument is static; none constrain shape beyond equal-length checks
// where the Elements consensus rules require it.

func opCat(c *ExecContext) error {
	b, err := c.PopStack()
	if err != nil {
		return err
	}
	a, err := c.PopStack()
	if err != nil {
		return err
	}
	out := c.newCompound("CAT", "CAT", []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
		return append(append([]byte{}, args[0]...), args[1]...), nil
	})
	return c.Push(out)
}

// opSplit implements OP_SUBSTR (Elements' split-at-position primitive):
// pops position n and the value, pushes the two halves split at n.
func opSplit(c *ExecContext) error {
	posV, err := c.PopStack()
	if err != nil {
		return err
	}
	val, err := c.PopStack()
	if err != nil {
		return err
	}
	if err := posV.RequestView(symval.ScriptNum, 4); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	if err := c.assertSplitPositionInRange(val, posV); err != nil {
		return err
	}
	left := c.newCompound("SPLIT_LEFT", "SPLIT_LEFT", []*symval.SymValue{val, posV}, func(args [][]byte) ([]byte, error) {
		n, derr := scriptNumDecodeArg(args[1])
		if derr != nil || n < 0 || int(n) > len(args[0]) {
			return nil, errOutOfRange
		}
		return append([]byte{}, args[0][:n]...), nil
	})
	right := c.newCompound("SPLIT_RIGHT", "SPLIT_RIGHT", []*symval.SymValue{val, posV}, func(args [][]byte) ([]byte, error) {
		n, derr := scriptNumDecodeArg(args[1])
		if derr != nil || n < 0 || int(n) > len(args[0]) {
			return nil, errOutOfRange
		}
		return append([]byte{}, args[0][n:]...), nil
	})
	c.MarkRefcountNeighbors(left, right)
	if err := c.Push(left); err != nil {
		return err
	}
	return c.Push(right)
}

var errOutOfRange = &rangeError{}

type rangeError struct{}

func (*rangeError) Error() string { return "split position out of range" }

// nonNegativeNumCompound folds to {1} when n's scriptnum value is >= 0.
func (c *ExecContext) nonNegativeNumCompound(n *symval.SymValue) *symval.SymValue {
	return c.newCompound("NONNEGATIVE", "NONNEGATIVE", []*symval.SymValue{n}, func(args [][]byte) ([]byte, error) {
		v, derr := scriptNumDecodeArg(args[0])
		if derr != nil {
			return nil, derr
		}
		if v >= 0 {
			return []byte{1}, nil
		}
		return nil, nil
	})
}

// withinLengthCompound folds to {1} when n's scriptnum value is <= len(val).
func (c *ExecContext) withinLengthCompound(val, n *symval.SymValue) *symval.SymValue {
	return c.newCompound("WITHIN_LENGTH", "WITHIN_LENGTH", []*symval.SymValue{val, n}, func(args [][]byte) ([]byte, error) {
		v, derr := scriptNumDecodeArg(args[1])
		if derr != nil {
			return nil, derr
		}
		if int(v) <= len(args[0]) {
			return []byte{1}, nil
		}
		return nil, nil
	})
}

// assertSplitPositionInRange enforces OP_SUBSTR/OP_LEFT/OP_RIGHT's strict
// bounds (spec.md 4.B "SUBSTR strict form fails on out-of-range"): fails
// immediately when both operands are already static (mirroring
// bitwiseBinary's StaticBytes fast path), and always leaves the
// solver-visible assertions behind for the non-static case.
func (c *ExecContext) assertSplitPositionInRange(val, posV *symval.SymValue) error {
	if sp, ok := posV.StaticBytes(); ok {
		if n, derr := scriptNumDecodeArg(sp); derr == nil {
			if n < 0 {
				return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailNegativeArgument)))
			}
			if sv, ok2 := val.StaticBytes(); ok2 && int(n) > len(sv) {
				return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailArgumentAboveBounds)))
			}
		}
	}
	c.Assert(c.nonNegativeNumCompound(posV), symval.FailNegativeArgument)
	c.Assert(c.withinLengthCompound(val, posV), symval.FailArgumentAboveBounds)
	return nil
}

// opLeft/opRight implement OP_LEFT/OP_RIGHT (Elements' one-sided split
// primitives, spec.md 4.B Bytewise list), each taking only the half of
// opSplit's result the opcode name promises.
func opLeft(c *ExecContext) error {
	posV, err := c.PopStack()
	if err != nil {
		return err
	}
	val, err := c.PopStack()
	if err != nil {
		return err
	}
	if err := posV.RequestView(symval.ScriptNum, 4); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	if err := c.assertSplitPositionInRange(val, posV); err != nil {
		return err
	}
	out := c.newCompound("LEFT", "LEFT", []*symval.SymValue{val, posV}, func(args [][]byte) ([]byte, error) {
		n, derr := scriptNumDecodeArg(args[1])
		if derr != nil || n < 0 || int(n) > len(args[0]) {
			return nil, errOutOfRange
		}
		return append([]byte{}, args[0][:n]...), nil
	})
	return c.Push(out)
}

func opRight(c *ExecContext) error {
	posV, err := c.PopStack()
	if err != nil {
		return err
	}
	val, err := c.PopStack()
	if err != nil {
		return err
	}
	if err := posV.RequestView(symval.ScriptNum, 4); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	if err := c.assertSplitPositionInRange(val, posV); err != nil {
		return err
	}
	out := c.newCompound("RIGHT", "RIGHT", []*symval.SymValue{val, posV}, func(args [][]byte) ([]byte, error) {
		n, derr := scriptNumDecodeArg(args[1])
		if derr != nil || n < 0 || int(n) > len(args[0]) {
			return nil, errOutOfRange
		}
		return append([]byte{}, args[0][n:]...), nil
	})
	return c.Push(out)
}

// opSubstrLazy implements OP_SUBSTR_LAZY: like OP_SUBSTR, but clamps an
// out-of-range position into [0, len(value)] instead of failing the
// script, matching Elements' "lazy" variant (spec.md 4.B: "SUBSTR strict
// form fails on out-of-range; SUBSTR_LAZY clamps"). Deliberately does not
// get opSplit/opLeft/opRight's assertSplitPositionInRange check: an
// out-of-range position here is not a failure at all.
func opSubstrLazy(c *ExecContext) error {
	posV, err := c.PopStack()
	if err != nil {
		return err
	}
	val, err := c.PopStack()
	if err != nil {
		return err
	}
	if err := posV.RequestView(symval.ScriptNum, 4); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	clamp := func(n int64, length int) int {
		if n < 0 {
			return 0
		}
		if int(n) > length {
			return length
		}
		return int(n)
	}
	left := c.newCompound("SUBSTR_LAZY_LEFT", "SPLIT_LEFT", []*symval.SymValue{val, posV}, func(args [][]byte) ([]byte, error) {
		n, derr := scriptNumDecodeArg(args[1])
		if derr != nil {
			return nil, derr
		}
		return append([]byte{}, args[0][:clamp(n, len(args[0]))]...), nil
	})
	right := c.newCompound("SUBSTR_LAZY_RIGHT", "SPLIT_RIGHT", []*symval.SymValue{val, posV}, func(args [][]byte) ([]byte, error) {
		n, derr := scriptNumDecodeArg(args[1])
		if derr != nil {
			return nil, derr
		}
		return append([]byte{}, args[0][clamp(n, len(args[0])):]...), nil
	})
	c.MarkRefcountNeighbors(left, right)
	if err := c.Push(left); err != nil {
		return err
	}
	return c.Push(right)
}

func bitwiseBinary(kind string, fold func(a, b byte) byte) func(*ExecContext) error {
	return func(c *ExecContext) error {
		b, err := c.PopStack()
		if err != nil {
			return err
		}
		a, err := c.PopStack()
		if err != nil {
			return err
		}
		out := c.newCompound(kind, kind, []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
			if len(args[0]) != len(args[1]) {
				return nil, errLengthMismatch
			}
			res := make([]byte, len(args[0]))
			for i := range res {
				res[i] = fold(args[0][i], args[1][i])
			}
			return res, nil
		})
		if sa, ok := a.StaticBytes(); ok {
			if sb, ok2 := b.StaticBytes(); ok2 && len(sa) != len(sb) {
				return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailLengthMismatch)))
			}
		}
		c.Assert(c.lengthMatchCompound(a, b), symval.FailLengthMismatch)
		return c.Push(out)
	}
}

var errLengthMismatch = &lengthError{}

type lengthError struct{}

func (*lengthError) Error() string { return "length mismatch" }

// lengthMatchCompound asserts two byte-sequence values share a length.
func (c *ExecContext) lengthMatchCompound(a, b *symval.SymValue) *symval.SymValue {
	return c.newCompound("LENGTH_MATCH", "LENGTH_MATCH", []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
		if len(args[0]) == len(args[1]) {
			return []byte{1}, nil
		}
		return nil, nil
	})
}

var (
	opAnd    = bitwiseBinary("AND", func(a, b byte) byte { return a & b })
	opOr     = bitwiseBinary("OR", func(a, b byte) byte { return a | b })
	opXor    = bitwiseBinary("XOR", func(a, b byte) byte { return a ^ b })
)

func opInvert(c *ExecContext) error {
	v, err := c.PopStack()
	if err != nil {
		return err
	}
	out := c.newCompound("INVERT", "INVERT", []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
		res := make([]byte, len(args[0]))
		for i, by := range args[0] {
			res[i] = ^by
		}
		return res, nil
	})
	return c.Push(out)
}

func shiftOp(kind string, left bool) func(*ExecContext) error {
	return func(c *ExecContext) error {
		n, err := c.scriptNumArg(4)
		if err != nil {
			return err
		}
		v, err := c.PopStack()
		if err != nil {
			return err
		}
		out := c.newCompound(kind, kind, []*symval.SymValue{v, n}, func(args [][]byte) ([]byte, error) {
			shift, derr := scriptNumDecodeArg(args[1])
			if derr != nil || shift < 0 {
				return nil, errOutOfRange
			}
			return shiftBytes(args[0], int(shift), left), nil
		})
		return c.Push(out)
	}
}

func shiftBytes(data []byte, n int, left bool) []byte {
	bits := len(data) * 8
	if n >= bits {
		return make([]byte, len(data))
	}
	out := make([]byte, len(data))
	for i := 0; i < bits; i++ {
		var srcBit int
		if left {
			srcBit = i + n
		} else {
			srcBit = i - n
		}
		if srcBit < 0 || srcBit >= bits {
			continue
		}
		if getBit(data, srcBit) {
			setBit(out, i)
		}
	}
	return out
}

func getBit(data []byte, i int) bool {
	byteIdx := i / 8
	bitIdx := 7 - i%8
	return data[byteIdx]&(1<<uint(bitIdx)) != 0
}

func setBit(data []byte, i int) {
	byteIdx := i / 8
	bitIdx := 7 - i%8
	data[byteIdx] |= 1 << uint(bitIdx)
}

var (
	opLshift = shiftOp("LSHIFT", true)
	opRshift = shiftOp("RSHIFT", false)
)
