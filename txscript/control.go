package txscript

import "github.com/dgpv/bsst-go/symval"

// isExecuting reports whether every currently-open conditional is on its
// taken branch (spec.md 4.B: a handler runs its real effect only "when all
// entries of the mask are true").
func (c *ExecContext) isExecuting() bool {
	for _, b := range c.CondMask {
		if !b {
			return false
		}
	}
	return true
}

// handleIf implements OP_IF/OP_NOTIF (spec.md 4.B). When every enclosing
// conditional is currently taken, it forks: one context asserts the popped
// condition is script-true and continues into the "if" arm, its twin
// asserts script-false and continues into the "else" arm (swapped for
// NOTIF, which takes the body on a false condition). When an enclosing
// conditional has already gone the other way, this IF/NOTIF cannot itself
// change what executes; only the mask bookkeeping happens, with no fork.
func handleIf(c *ExecContext, notif bool) (*Branchpoint, error) {
	if !c.isExecuting() {
		c.CondMask = append(c.CondMask, false)
		return nil, nil
	}

	cond, err := c.PopStack()
	if err != nil {
		return nil, err
	}

	if c.Env.Options.MinimalIf {
		c.Assert(c.notCompound(c.minimalBoolCompound(cond)), symval.FailMinimalIf)
	}

	trueDes, falseDes := "True", "False"
	if notif {
		trueDes, falseDes = "False", "True"
	}

	trueCtx, falseCtx, bp := c.Branch(c.PC, trueDes, falseDes)

	// trueCtx is the branch where the *body* runs (IF: cond truthy; NOTIF:
	// cond falsy); falseCtx is its twin.
	bodyCtx, skipCtx := trueCtx, falseCtx
	wantBodyZero := notif

	bodyCond := bodyCtx.asBoolCompound(cond)
	skipCond := skipCtx.asBoolCompound(cond)
	if wantBodyZero {
		bodyCtx.Assert(bodyCtx.notCompound(bodyCond), symval.FailBranchConditionInvalid)
		skipCtx.Assert(skipCond, symval.FailBranchConditionInvalid)
	} else {
		bodyCtx.Assert(bodyCond, symval.FailBranchConditionInvalid)
		skipCtx.Assert(skipCtx.notCompound(skipCond), symval.FailBranchConditionInvalid)
	}

	trueCtx.CondMask = append(trueCtx.CondMask, true)
	falseCtx.CondMask = append(falseCtx.CondMask, true)

	return bp, nil
}

// minimalBoolCompound folds to {1} when cond's bytes are anything other
// than the two minimal-encodings of script-false/true, nil/{1}.
func (c *ExecContext) minimalBoolCompound(cond *symval.SymValue) *symval.SymValue {
	return c.newCompound("MINIMALIF_SHAPE", "NOT_MINIMAL_BOOL", []*symval.SymValue{cond}, func(args [][]byte) ([]byte, error) {
		b := args[0]
		if len(b) == 0 || (len(b) == 1 && b[0] == 1) {
			return nil, nil
		}
		return []byte{1}, nil
	})
}

// handleElse implements OP_ELSE: flips the innermost mask entry.
func handleElse(c *ExecContext) error {
	if len(c.CondMask) == 0 {
		return c.Fail(NewOpaqueFailure(c.PC, ErrUnbalancedConditional.Error()))
	}
	top := len(c.CondMask) - 1
	c.CondMask[top] = !c.CondMask[top]
	return nil
}

// handleEndif implements OP_ENDIF: pops the innermost mask entry.
func handleEndif(c *ExecContext) error {
	if len(c.CondMask) == 0 {
		return c.Fail(NewOpaqueFailure(c.PC, ErrUnbalancedConditional.Error()))
	}
	c.CondMask = c.CondMask[:len(c.CondMask)-1]
	return nil
}
