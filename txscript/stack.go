package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// Generic stack-reorder opcodes (spec.md 4.B): these never touch the
// solver, they only rearrange pointers and adjust refcounts via
// Push/PopStack.

func opToaltstack(c *ExecContext) error {
	v, err := c.PopStack()
	if err != nil {
		return err
	}
	c.AltStack = append(c.AltStack, v)
	return nil
}

func opFromaltstack(c *ExecContext) error {
	if len(c.AltStack) == 0 {
		return c.Fail(NewOpaqueFailure(c.PC, "alt stack is empty"))
	}
	v := c.AltStack[len(c.AltStack)-1]
	c.AltStack = c.AltStack[:len(c.AltStack)-1]
	return c.Push(v)
}

func opDrop(c *ExecContext) error {
	_, err := c.PopStack()
	return err
}

func opDup(c *ExecContext) error {
	v, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	return c.Push(v)
}

func op2Drop(c *ExecContext) error {
	if _, err := c.PopStack(); err != nil {
		return err
	}
	_, err := c.PopStack()
	return err
}

func op2Dup(c *ExecContext) error {
	a, err := c.StackTop(-2)
	if err != nil {
		return err
	}
	b, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	if err := c.Push(a); err != nil {
		return err
	}
	return c.Push(b)
}

func op3Dup(c *ExecContext) error {
	a, err := c.StackTop(-3)
	if err != nil {
		return err
	}
	b, err := c.StackTop(-2)
	if err != nil {
		return err
	}
	d, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	for _, v := range []*symval.SymValue{a, b, d} {
		if err := c.Push(v); err != nil {
			return err
		}
	}
	return nil
}

func opIfdup(c *ExecContext) error {
	v, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	b, known := v.AsBool()
	if known && !b {
		return nil
	}
	return c.Push(v)
}

// opDepth implements OP_DEPTH (spec.md 4.B "DEPTH"): the true stack depth
// isn't knowable until finalization, since later opcodes may still pop
// deeper than anything currently visible, synthesizing witnesses that
// existed all along underneath this snapshot. It pushes a SymDepth leaf
// pinned to its final observed value at finalize time, rather than the
// literal count visible right now.
func opDepth(c *ExecContext) error {
	v := c.newLeaf("SymDepth")
	c.pendingDepths = append(c.pendingDepths, depthPin{
		value:            v,
		baseDepth:        len(c.Stack),
		baseWitnessCount: c.witnessCount,
	})
	return c.Push(v)
}

func opNip(c *ExecContext) error {
	top, err := c.PopStack()
	if err != nil {
		return err
	}
	if _, err := c.PopStack(); err != nil {
		return err
	}
	return c.Push(top)
}

func opOver(c *ExecContext) error {
	v, err := c.StackTop(-2)
	if err != nil {
		return err
	}
	return c.Push(v)
}

// opPick/opRoll require a statically known index (spec.md 4.B): ROLL/PICK
// reach arbitrarily deep into a symbolic stack, which only makes sense once
// the depth itself is a concrete number.
func opPick(c *ExecContext) error { return pickOrRoll(c, false) }
func opRoll(c *ExecContext) error { return pickOrRoll(c, true) }

func pickOrRoll(c *ExecContext, roll bool) error {
	n, err := c.PopStack()
	if err != nil {
		return err
	}
	if err := n.RequestView(symval.ScriptNum, 4); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	idx, known, err := n.AsScriptNumInt(c.Env.Options.MinimalData)
	if err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	if !known {
		return c.Fail(NewOpaqueFailure(c.PC, ErrNonStaticIndex.Error()))
	}
	if idx < 0 || int(idx) >= len(c.Stack) {
		return c.Fail(NewOpaqueFailure(c.PC, "pick/roll index out of range"))
	}
	pos := len(c.Stack) - 1 - int(idx)
	v := c.Stack[pos]
	if roll {
		c.Stack = append(c.Stack[:pos], c.Stack[pos+1:]...)
	}
	return c.Push(v)
}

func opRot(c *ExecContext) error {
	if len(c.Stack) < 3 {
		_, err := c.StackTop(-3)
		if err != nil {
			return err
		}
	}
	n := len(c.Stack)
	c.Stack[n-3], c.Stack[n-2], c.Stack[n-1] = c.Stack[n-2], c.Stack[n-1], c.Stack[n-3]
	return nil
}

func opSwap(c *ExecContext) error {
	if _, err := c.StackTop(-2); err != nil {
		return err
	}
	n := len(c.Stack)
	c.Stack[n-2], c.Stack[n-1] = c.Stack[n-1], c.Stack[n-2]
	return nil
}

func opTuck(c *ExecContext) error {
	top, err := c.PopStack()
	if err != nil {
		return err
	}
	second, err := c.PopStack()
	if err != nil {
		return err
	}
	for _, v := range []*symval.SymValue{top, second, top} {
		if err := c.Push(v); err != nil {
			return err
		}
	}
	return nil
}

func op2Over(c *ExecContext) error {
	a, err := c.StackTop(-4)
	if err != nil {
		return err
	}
	b, err := c.StackTop(-3)
	if err != nil {
		return err
	}
	if err := c.Push(a); err != nil {
		return err
	}
	return c.Push(b)
}

func op2Rot(c *ExecContext) error {
	if _, err := c.StackTop(-6); err != nil {
		return err
	}
	n := len(c.Stack)
	a, b := c.Stack[n-6], c.Stack[n-5]
	copy(c.Stack[n-6:], c.Stack[n-4:])
	c.Stack[n-2], c.Stack[n-1] = a, b
	return nil
}

func op2Swap(c *ExecContext) error {
	if _, err := c.StackTop(-4); err != nil {
		return err
	}
	n := len(c.Stack)
	c.Stack[n-4], c.Stack[n-3], c.Stack[n-2], c.Stack[n-1] =
		c.Stack[n-2], c.Stack[n-1], c.Stack[n-4], c.Stack[n-3]
	return nil
}

func opSize(c *ExecContext) error {
	v, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	size := c.newCompound("SIZE", "SIZE", []*symval.SymValue{v}, func(args [][]byte) ([]byte, error) {
		return static.ScriptNumEncode(int64(len(args[0]))), nil
	})
	return c.Push(size)
}
