package txscript

import (
	"fmt"

	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// newCompound synthesizes a unique name from the context's current pc and
// name-sequence counter, then builds the compound SymValue — the common
// path every opcode handler uses to produce its result value.
func (c *ExecContext) newCompound(name, kind string, args []*symval.SymValue, eval symval.Evaluator) *symval.SymValue {
	seq := c.Env.NameSeq.Next(c.PC)
	un := symval.MakeUniqueName(symval.UniqueNameParams{OpName: name, PC: c.PC, IntraPCSeqNum: seq})
	return symval.NewCompound(un, name, kind, c.PC, args, eval)
}

func (c *ExecContext) newLeaf(name string) *symval.SymValue {
	seq := c.Env.NameSeq.Next(c.PC)
	un := symval.MakeUniqueName(symval.UniqueNameParams{OpName: name, PC: c.PC, IntraPCSeqNum: seq})
	return symval.NewLeaf(un, name, c.PC)
}

// litNum builds a static leaf carrying n as a scriptnum.
func (c *ExecContext) litNum(n int64) *symval.SymValue {
	v := c.newLeaf(fmt.Sprintf("%d", n))
	_ = v.SetStatic(static.ScriptNumEncode(n))
	return v
}

// equalCompound builds an EQUAL node that folds to {1} when a and b are
// byte-for-byte equal and to the empty (false) value otherwise.
func (c *ExecContext) equalCompound(a, b *symval.SymValue) *symval.SymValue {
	return c.newCompound("EQUAL", "EQUAL", []*symval.SymValue{a, b}, func(args [][]byte) ([]byte, error) {
		if bytesEqual(args[0], args[1]) {
			return []byte{1}, nil
		}
		return nil, nil
	})
}

func (c *ExecContext) notCompound(a *symval.SymValue) *symval.SymValue {
	return c.newCompound("NOT", "NOT", []*symval.SymValue{a}, func(args [][]byte) ([]byte, error) {
		if symval.ScriptBool(args[0]) {
			return nil, nil
		}
		return []byte{1}, nil
	})
}

// asBoolCompound wraps v in an ASBOOL node: folds to {1} or nil (script
// false) once v is static, via symval.ScriptBool's "not all-zero except
// negative-zero" rule.
func (c *ExecContext) asBoolCompound(v *symval.SymValue) *symval.SymValue {
	return c.newCompound("ASBOOL", "ASBOOL", []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
		if symval.ScriptBool(args[0]) {
			return []byte{1}, nil
		}
		return nil, nil
	})
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
