package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// Elements' 64-bit arithmetic family (spec.md 4.B / SPEC_FULL.md): each
// opcode operates on the LE64 view (8-byte signed little-endian) rather
// than the 4-byte scriptnum. The add/sub/mul/div family pushes a success
// flag on top; an overflow that is already statically known fails the
// script with invalid_arguments instead.

func (c *ExecContext) le64Arg() (*symval.SymValue, error) {
	v, err := c.PopStack()
	if err != nil {
		return nil, err
	}
	if b, ok := v.StaticBytes(); ok && len(b) != 8 {
		return nil, c.Fail(NewOpaqueFailure(c.PC, string(symval.FailLE64WrongSize)))
	}
	_ = v.SetPossibleSizes([]int{8})
	return v, nil
}

// le64CheckedBinary builds an opcode that pops two LE64 values, computes
// fold with an overflow predicate, and pushes (result, success_flag): the
// result is only meaningful when success_flag folds to true.
func le64CheckedBinary(kind string, fold func(a, b int64) (int64, bool)) func(*ExecContext) error {
	return func(c *ExecContext) error {
		b, err := c.le64Arg()
		if err != nil {
			return err
		}
		a, err := c.le64Arg()
		if err != nil {
			return err
		}
		result := c.newCompound(kind, kind, []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
			na, e1 := static.LE64DecodeSigned(args[0])
			nb, e2 := static.LE64DecodeSigned(args[1])
			if e1 != nil {
				return nil, e1
			}
			if e2 != nil {
				return nil, e2
			}
			r, ok := fold(na, nb)
			if !ok {
				return nil, errInt64Overflow
			}
			return static.LE64EncodeSigned(r), nil
		})
		flag := c.newCompound(kind+"_OK", kind+"_OK", []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
			na, e1 := static.LE64DecodeSigned(args[0])
			nb, e2 := static.LE64DecodeSigned(args[1])
			if e1 != nil || e2 != nil {
				return nil, nil
			}
			if _, ok := fold(na, nb); !ok {
				return nil, nil
			}
			return []byte{1}, nil
		})
		if sa, ok := a.StaticBytes(); ok {
			if sb, ok2 := b.StaticBytes(); ok2 {
				na, e1 := static.LE64DecodeSigned(sa)
				nb, e2 := static.LE64DecodeSigned(sb)
				if e1 == nil && e2 == nil {
					if _, ok := fold(na, nb); !ok {
						return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailInvalidArguments)))
					}
				}
			}
		}
		c.MarkRefcountNeighbors(result, flag)
		if err := c.Push(result); err != nil {
			return err
		}
		return c.Push(flag)
	}
}

var errInt64Overflow = &int64OverflowError{}

type int64OverflowError struct{}

func (*int64OverflowError) Error() string { return string(symval.FailInt64OutOfBounds) }

const int64Max = int64(1)<<63 - 1
const int64Min = -int64Max - 1

var (
	opAdd64 = le64CheckedBinary("ADD64", func(a, b int64) (int64, bool) {
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return 0, false
		}
		return r, true
	})
	opSub64 = le64CheckedBinary("SUB64", func(a, b int64) (int64, bool) {
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return 0, false
		}
		return r, true
	})
	opMul64 = le64CheckedBinary("MUL64", func(a, b int64) (int64, bool) {
		if a == 0 || b == 0 {
			return 0, true
		}
		r := a * b
		if r/b != a {
			return 0, false
		}
		return r, true
	})
	opDiv64 = le64CheckedBinary("DIV64", func(a, b int64) (int64, bool) {
		if b == 0 || (a == int64Min && b == -1) {
			return 0, false
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return q, true
	})
)

func opNeg64(c *ExecContext) error {
	a, err := c.le64Arg()
	if err != nil {
		return err
	}
	result := c.newCompound("NEG64", "NEG64", []*symval.SymValue{a}, func(args [][]byte) ([]byte, error) {
		na, e := static.LE64DecodeSigned(args[0])
		if e != nil {
			return nil, e
		}
		if na == int64Min {
			return nil, errInt64Overflow
		}
		return static.LE64EncodeSigned(-na), nil
	})
	flag := c.newCompound("NEG64_OK", "NEG64_OK", []*symval.SymValue{a}, func(args [][]byte) ([]byte, error) {
		na, e := static.LE64DecodeSigned(args[0])
		if e != nil || na == int64Min {
			return nil, nil
		}
		return []byte{1}, nil
	})
	if sa, ok := a.StaticBytes(); ok {
		if na, e := static.LE64DecodeSigned(sa); e == nil && na == int64Min {
			return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailInvalidArguments)))
		}
	}
	c.MarkRefcountNeighbors(result, flag)
	if err := c.Push(result); err != nil {
		return err
	}
	return c.Push(flag)
}

func le64Compare(kind string, fold func(a, b int64) bool) func(*ExecContext) error {
	return func(c *ExecContext) error {
		b, err := c.le64Arg()
		if err != nil {
			return err
		}
		a, err := c.le64Arg()
		if err != nil {
			return err
		}
		out := c.newCompound(kind, kind, []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
			na, e1 := static.LE64DecodeSigned(args[0])
			nb, e2 := static.LE64DecodeSigned(args[1])
			if e1 != nil || e2 != nil {
				return nil, errInt64Overflow
			}
			if fold(na, nb) {
				return []byte{1}, nil
			}
			return nil, nil
		})
		return c.Push(out)
	}
}

var (
	opLessThan64           = le64Compare("LESSTHAN64", func(a, b int64) bool { return a < b })
	opLessThanOrEqual64    = le64Compare("LESSTHANOREQUAL64", func(a, b int64) bool { return a <= b })
	opGreaterThan64        = le64Compare("GREATERTHAN64", func(a, b int64) bool { return a > b })
	opGreaterThanOrEqual64 = le64Compare("GREATERTHANOREQUAL64", func(a, b int64) bool { return a >= b })
)

// opScriptNumToLE64 / opLE64ToScriptNum bridge the two numeric views.
func opScriptNumToLE64(c *ExecContext) error {
	n, err := c.scriptNumArg(4)
	if err != nil {
		return err
	}
	out := c.newCompound("SCRIPTNUMTOLE64", "SCRIPTNUMTOLE64", []*symval.SymValue{n}, func(args [][]byte) ([]byte, error) {
		v, derr := scriptNumDecodeArg(args[0])
		if derr != nil {
			return nil, derr
		}
		return static.ScriptNumToLE64(v), nil
	})
	return c.Push(out)
}

func opLE64ToScriptNum(c *ExecContext) error {
	v, err := c.le64Arg()
	if err != nil {
		return err
	}
	out := c.newCompound("LE64TOSCRIPTNUM", "LE64TOSCRIPTNUM", []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
		n, derr := static.LE64ToScriptNum(args[0], 4)
		if derr != nil {
			return nil, derr
		}
		return static.ScriptNumEncode(n), nil
	})
	return c.Push(out)
}

func le32ToLE64(signed bool) func(*ExecContext) error {
	return func(c *ExecContext) error {
		v, err := c.PopStack()
		if err != nil {
			return err
		}
		if b, ok := v.StaticBytes(); ok && len(b) != 4 {
			return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailLE32WrongSize)))
		}
		_ = v.SetPossibleSizes([]int{4})
		out := c.newCompound("LE32TOLE64", "LE32TOLE64", []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
			return static.LE32ToLE64(args[0], signed)
		})
		return c.Push(out)
	}
}

var (
	opLE32ToLE64Signed   = le32ToLE64(true)
	opLE32ToLE64Unsigned = le32ToLE64(false)
)
