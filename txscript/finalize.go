package txscript

import (
	"fmt"

	"github.com/dgpv/bsst-go/solver"
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// Finalize implements spec.md 4.F: the nine end-of-script steps run once
// per leaf, after the last opcode (or an early script-ending opcode such
// as a CHECKSIG in tail position) has executed.
func Finalize(c *ExecContext) error {
	if c.Finalized {
		return c.Failure
	}
	c.Finalized = true

	// Step 1: a non-empty altstack at script end isn't a consensus
	// failure, only something worth flagging to the report.
	if len(c.AltStack) > 0 {
		c.Warnings = append(c.Warnings, Warning{PC: c.PC, Message: "altstack not empty at script end"})
	}

	// Step 2: every IF/NOTIF must be closed by its ENDIF.
	if len(c.CondMask) > 0 {
		return c.Fail(NewOpaqueFailure(c.PC, ErrUnbalancedConditional.Error()))
	}

	// Step 3: pin every OP_DEPTH result observed on this leaf to its final
	// depth, now that no further witness synthesis can happen underneath
	// it (spec.md 4.B "DEPTH").
	for _, pin := range c.pendingDepths {
		final := pin.baseDepth + (c.witnessCount - pin.baseWitnessCount)
		if err := pin.value.SetStatic(static.ScriptNumEncode(int64(final))); err != nil {
			return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
		}
	}

	if !c.Env.Options.IncompleteScript {
		top, err := c.PopStack()
		if err != nil {
			return err
		}
		final := c.asBoolCompound(top)
		c.Assert(final, symval.FailFinalVerify)
		c.AddEnforcement(final, string(symval.FailFinalVerify), true)
		if known, ok := top.AsBool(); ok && !known {
			return c.Fail(NewOpaqueFailure(c.PC, string(symval.FailFinalVerify)))
		}

		// Step 7 (clean-stack rule): nothing may remain beneath the final
		// result.
		if len(c.Stack) > 0 {
			return c.Fail(NewOpaqueFailure(c.PC, "clean stack rule violated"))
		}
	}

	// Step 5: build the model request (witnesses, transaction fields,
	// placeholders, then remaining stack entries) before the forced
	// solver check, so a Sat result can extract concrete values in the
	// same call.
	modelRequest := buildModelRequest(c)

	// Step 6: the forced solver check. A script that never reaches here
	// with SolverEnabled still got every earlier Assert call; this is the
	// one point a leaf that looked executable top-to-bottom is confirmed
	// (or refuted) against the accumulated constraint set.
	if c.Env.Options.SolverEnabled {
		opts := c.Env.CheckOptions(modelRequest)
		result := c.Env.Backend.Check(c.Frames.All(), opts)
		switch result.Status {
		case solver.Unsat:
			return c.Fail(failureFromHits(c.PC, result.FailCodes))
		case solver.Unknown:
			if c.Env.Options.ExitOnSolverUnknown {
				return c.Fail(NewOpaqueFailure(c.PC, "solver returned unknown"))
			}
		}
	}

	// Step 8/9: per-warning and per-enforcement solver probes. Each checks
	// whether the probed condition could still be 1 (warnings) or could
	// ever be 0 (enforcements, to confirm always-true-in-path) against
	// the assertions live at that point, independent of the cross-leaf
	// syntactic always-true pass in postanalysis.go.
	if c.Env.Options.SolverEnabled {
		for i := range c.Warnings {
			w := &c.Warnings[i]
			if w.Probe == nil {
				continue
			}
			if !isCondPossible(c, w.Probe, true) {
				w.Message += " (never observed true)"
			}
		}
		for i := range c.Enforcements {
			e := &c.Enforcements[i]
			if !e.IsScriptBool {
				continue
			}
			if !isCondPossible(c, e.Cond, false) {
				e.IsAlwaysTrueInPath = true
			}
		}
	}

	return nil
}

// isCondPossible reports whether cond could independently be wantTrue
// against the assertions already recorded on c, by handing the solver a
// one-off Check with a negated/affirmed probe appended (spec.md 4.E
// is_cond_possible).
func isCondPossible(c *ExecContext, cond *symval.SymValue, wantTrue bool) bool {
	probe := cond
	if !wantTrue {
		probe = c.notCompound(cond)
	}
	assertions := append(append([]solver.Assertion{}, c.Frames.All()...), solver.Assertion{
		Cond: c.asBoolCompound(probe), Code: symval.FailInvalidArguments, PC: c.PC,
	})
	result := c.Env.Backend.Check(assertions, c.Env.CheckOptions(nil))
	return result.Status != solver.Unsat
}

// buildModelRequest names every value the engine should try to extract a
// concrete model for on a Sat result, in the order spec.md 4.F step 5
// lists: witnesses, transaction fields, placeholders, then whatever
// remains on the stack (only non-empty when IncompleteScript skipped the
// final pop).
func buildModelRequest(c *ExecContext) []solver.ModelRequest {
	var out []solver.ModelRequest
	for name := range c.usedWitnesses {
		if v, ok := c.witnessValues[name]; ok {
			out = append(out, solver.ModelRequest{Name: name, Value: v})
		}
	}
	for key, v := range c.Env.TxFields.All() {
		out = append(out, solver.ModelRequest{Name: "txfield:" + key, Value: v})
	}
	for name, v := range c.Env.Placeholders {
		out = append(out, solver.ModelRequest{Name: "$" + name, Value: v})
	}
	for i, v := range c.Stack {
		out = append(out, solver.ModelRequest{Name: fmt.Sprintf("stack[%d]", i), Value: v})
	}
	return out
}

func failureFromHits(pc int, hits []solver.FailCodeHit) *ScriptFailure {
	f := &ScriptFailure{PC: pc}
	for _, h := range hits {
		f.Codes = append(f.Codes, FailCodeAtPC{Code: string(h.Code), PC: h.PC})
	}
	return f
}
