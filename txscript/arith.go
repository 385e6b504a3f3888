package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// scriptNumArg pops the top of the stack and requests the ScriptNum view
// on it (spec.md 4.A): every arithmetic opcode operates on this view, never
// on raw bytes.
func (c *ExecContext) scriptNumArg(maxSize int) (*symval.SymValue, error) {
	v, err := c.PopStack()
	if err != nil {
		return nil, err
	}
	if err := v.RequestView(symval.ScriptNum, maxSize); err != nil {
		return nil, c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	return v, nil
}

func unaryArith(kind string, maxSize int, fold func(int64) int64) func(*ExecContext) error {
	return func(c *ExecContext) error {
		a, err := c.scriptNumArg(maxSize)
		if err != nil {
			return err
		}
		out := c.newCompound(kind, kind, []*symval.SymValue{a}, func(args [][]byte) ([]byte, error) {
			n, decErr := scriptNumDecodeArg(args[0])
			if decErr != nil {
				return nil, decErr
			}
			return static.ScriptNumEncode(fold(n)), nil
		})
		return c.Push(out)
	}
}

func binaryArith(kind string, maxSize int, fold func(a, b int64) int64) func(*ExecContext) error {
	return func(c *ExecContext) error {
		b, err := c.scriptNumArg(maxSize)
		if err != nil {
			return err
		}
		a, err := c.scriptNumArg(maxSize)
		if err != nil {
			return err
		}
		out := c.newCompound(kind, kind, []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
			na, err1 := scriptNumDecodeArg(args[0])
			nb, err2 := scriptNumDecodeArg(args[1])
			if err1 != nil {
				return nil, err1
			}
			if err2 != nil {
				return nil, err2
			}
			return static.ScriptNumEncode(fold(na, nb)), nil
		})
		c.MarkRefcountNeighbors(a, b)
		return c.Push(out)
	}
}

func boolToNum(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// scriptNumDecodeArg decodes an already-folded operand's concrete bytes.
// Non-minimal and loosely bounded: width was already checked when the
// value's ScriptNum view was requested: this just re-reads the result of a
// prior fold, which may be wider than 4 bytes after a chain of ADDs.
func scriptNumDecodeArg(b []byte) (int64, error) {
	return static.ScriptNumDecode(b, false, 9)
}

var (
	op1Add    = unaryArith("1ADD", 5, func(n int64) int64 { return n + 1 })
	op1Sub    = unaryArith("1SUB", 5, func(n int64) int64 { return n - 1 })
	opNegate  = unaryArith("NEGATE", 4, func(n int64) int64 { return -n })
	opAbs     = unaryArith("ABS", 4, func(n int64) int64 {
		if n < 0 {
			return -n
		}
		return n
	})
	opNot0        = unaryArith("NOT", 4, func(n int64) int64 { return boolToNum(n == 0) })
	op0NotEqual   = unaryArith("0NOTEQUAL", 4, func(n int64) int64 { return boolToNum(n != 0) })
	opAdd         = binaryArith("ADD", 5, func(a, b int64) int64 { return a + b })
	opSub         = binaryArith("SUB", 5, func(a, b int64) int64 { return a - b })
	opBoolAnd     = binaryArith("BOOLAND", 4, func(a, b int64) int64 { return boolToNum(a != 0 && b != 0) })
	opBoolOr      = binaryArith("BOOLOR", 4, func(a, b int64) int64 { return boolToNum(a != 0 || b != 0) })
	opNumEqual    = binaryArith("NUMEQUAL", 4, func(a, b int64) int64 { return boolToNum(a == b) })
	opNumNotEqual = binaryArith("NUMNOTEQUAL", 4, func(a, b int64) int64 { return boolToNum(a != b) })
	opLessThan    = binaryArith("LESSTHAN", 4, func(a, b int64) int64 { return boolToNum(a < b) })
	opLessThanOrEqual    = binaryArith("LESSTHANOREQUAL", 4, func(a, b int64) int64 { return boolToNum(a <= b) })
	opGreaterThan         = binaryArith("GREATERTHAN", 4, func(a, b int64) int64 { return boolToNum(a > b) })
	opGreaterThanOrEqual = binaryArith("GREATERTHANOREQUAL", 4, func(a, b int64) int64 { return boolToNum(a >= b) })
	opMin = binaryArith("MIN", 4, func(a, b int64) int64 {
		if a < b {
			return a
		}
		return b
	})
	opMax = binaryArith("MAX", 4, func(a, b int64) int64 {
		if a > b {
			return a
		}
		return b
	})
)

func opWithin(c *ExecContext) error {
	max, err := c.scriptNumArg(4)
	if err != nil {
		return err
	}
	min, err := c.scriptNumArg(4)
	if err != nil {
		return err
	}
	x, err := c.scriptNumArg(4)
	if err != nil {
		return err
	}
	out := c.newCompound("WITHIN", "WITHIN", []*symval.SymValue{x, min, max}, func(args [][]byte) ([]byte, error) {
		xv, _ := scriptNumDecodeArg(args[0])
		mn, _ := scriptNumDecodeArg(args[1])
		mx, _ := scriptNumDecodeArg(args[2])
		return static.ScriptNumEncode(boolToNum(xv >= mn && xv < mx)), nil
	})
	return c.Push(out)
}

func opNumEqualverify(c *ExecContext) error {
	if err := opNumEqual(c); err != nil {
		return err
	}
	return verifyTop(c, symval.FailNumequalverify)
}

func opVerify(c *ExecContext) error {
	return verifyTop(c, symval.FailVerify)
}

// verifyTop pops the top of stack, asserts it is script-true, and records
// an enforcement — the common path for *VERIFY opcodes (spec.md 4.B).
func verifyTop(c *ExecContext, code symval.FailCode) error {
	v, err := c.PopStack()
	if err != nil {
		return err
	}
	b := c.asBoolCompound(v)
	c.Assert(b, code)
	c.AddEnforcement(b, string(code), true)
	if known, ok := v.AsBool(); ok && !known {
		return c.Fail(NewOpaqueFailure(c.PC, string(code)))
	}
	return nil
}

func opEqual(c *ExecContext) error {
	b, err := c.PopStack()
	if err != nil {
		return err
	}
	a, err := c.PopStack()
	if err != nil {
		return err
	}
	return c.Push(c.equalCompound(a, b))
}

func opEqualverify(c *ExecContext) error {
	if err := opEqual(c); err != nil {
		return err
	}
	return verifyTop(c, symval.FailEqualverify)
}
