package txscript

import "github.com/dgpv/bsst-go/symval"

// CHECKMULTISIG family (spec.md 4.B "CHECKMULTISIG[VERIFY]"): K and N must
// both be statically known (0 <= N <= K <= 20), the segwit opcode budget
// is bumped by K regardless of how many signatures are actually checked,
// and the legacy NULLDUMMY bug-byte is asserted empty when the policy is
// on. Pubkey/signature pairing itself is left to the uninterpreted
// checksig relation, same as single-key CHECKSIG.

const maxMultisigKeys = 20

func opCheckmultisig(c *ExecContext) error {
	return checkmultisig(c, false)
}

func opCheckmultisigverify(c *ExecContext) error {
	if err := checkmultisig(c, false); err != nil {
		return err
	}
	return verifyTop(c, symval.FailCheckmultisigverify)
}

func checkmultisig(c *ExecContext, _ bool) error {
	kVal, err := c.scriptNumArg(4)
	if err != nil {
		return err
	}
	k, known, derr := kVal.AsScriptNumInt(c.Env.Options.MinimalData)
	if derr != nil {
		return c.Fail(NewOpaqueFailure(c.PC, derr.Error()))
	}
	if !known {
		return c.Fail(NewOpaqueFailure(c.PC, ErrNonStaticIndex.Error()))
	}
	if k < 0 || k > maxMultisigKeys {
		return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailArgumentAboveBounds)))
	}

	pubs := make([]*symval.SymValue, k)
	for i := int64(k) - 1; i >= 0; i-- {
		p, err := c.PopStack()
		if err != nil {
			return err
		}
		pubs[i] = p
	}

	nVal, err := c.scriptNumArg(4)
	if err != nil {
		return err
	}
	n, known, derr := nVal.AsScriptNumInt(c.Env.Options.MinimalData)
	if derr != nil {
		return c.Fail(NewOpaqueFailure(c.PC, derr.Error()))
	}
	if !known {
		return c.Fail(NewOpaqueFailure(c.PC, ErrNonStaticIndex.Error()))
	}
	if n < 0 || n > k {
		return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailArgumentAboveBounds)))
	}

	sigs := make([]*symval.SymValue, n)
	for i := int64(n) - 1; i >= 0; i-- {
		s, err := c.PopStack()
		if err != nil {
			return err
		}
		sigs[i] = s
	}

	bugByte, err := c.PopStack()
	if err != nil {
		return err
	}
	if c.Env.Options.NullDummy {
		empty := c.newCompound("BUGBYTE_EMPTY", "BUGBYTE_EMPTY", []*symval.SymValue{bugByte}, func(args [][]byte) ([]byte, error) {
			if len(args[0]) == 0 {
				return []byte{1}, nil
			}
			return nil, nil
		})
		c.Assert(empty, symval.FailCheckmultisigBugbyteZero)
	}

	// The opcode-budget counter is bumped by K regardless of the number of
	// signatures actually presented (consensus rule predating any notion
	// of symbolic execution); the 201-op limit itself doesn't apply under
	// tapscript (BIP 342), same gating as the base opcode dispatch loop.
	c.NumOps += int(k)
	if c.NumOps > MaxOpsPerScript && c.Env.Options.SigVersion != SigVersionTapscript {
		return c.Fail(NewOpaqueFailure(c.PC, ErrTooManyOperations.Error()))
	}

	// Every signature is checked against every key it could plausibly
	// match in order, but the per-pair result is still the same
	// uninterpreted checksig() relation CHECKSIG itself uses: this engine
	// doesn't attempt the greedy-matching order semantics, only whether
	// some assignment of signatures to an ordered, non-repeating subset of
	// the keys makes every signature valid. That existential is itself
	// uninterpreted, named MULTICHECKSIG; NULLFAIL reduces it to "no
	// signature may be non-empty unless the whole check succeeds".
	verdict := c.newCompound("MULTICHECKSIG", "MULTICHECKSIG", append(append([]*symval.SymValue{}, pubs...), sigs...), nil)

	if c.Env.Options.NullFail {
		for _, sig := range sigs {
			sigEmpty := c.newCompound("SIG_EMPTY", "SIG_EMPTY", []*symval.SymValue{sig}, func(args [][]byte) ([]byte, error) {
				if len(args[0]) == 0 {
					return []byte{1}, nil
				}
				return nil, nil
			})
			nullfail := c.equalCompound(sigEmpty, c.notCompound(verdict))
			c.Assert(nullfail, symval.FailSignatureNullfail)
		}
	}

	return c.Push(verdict)
}
