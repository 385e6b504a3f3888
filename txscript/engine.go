package txscript

import (
	"github.com/dgpv/bsst-go/logging"
	"github.com/dgpv/bsst-go/plugin"
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
	"github.com/dgpv/bsst-go/token"
)

// Run executes stream against a fresh root context, forking the branch
// tree at every conditional (spec.md 4.B/4.D) and calling Finalize on each
// leaf once its tokens run out. It returns the root Branchpoint; the
// report builder walks it to produce a Snapshot.
func Run(env *Environment, stream *token.Stream) *Branchpoint {
	root := &Branchpoint{}
	ctx := NewExecContext(env)
	ctx.branchpoint = root
	root.Ctx = ctx
	env.root = root

	runFrom(env, ctx, stream, 0)

	// Cross-leaf passes (spec.md 4.E) only make sense once every leaf has
	// finalized, so they run once here rather than per-leaf in runFrom.
	ProcessAlwaysTrueEnforcements(root)

	return root
}

// runFrom executes stream starting at token index pc against ctx, until
// the tokens are exhausted (calling Finalize) or a conditional forks the
// branch (recursing into both children, since handleIf already placed
// them as ctx's replacements).
func runFrom(env *Environment, ctx *ExecContext, stream *token.Stream, pc int) {
	for pc < len(stream.Tokens) {
		ctx.PC = pc
		tok := stream.Tokens[pc]

		switch tok.Op {
		case "IF", "NOTIF":
			if !ctx.isExecuting() {
				ctx.CondMask = append(ctx.CondMask, false)
				pc++
				continue
			}
			bp, err := handleIf(ctx, tok.Op == "NOTIF")
			if err != nil {
				env.Logger.CPrint(logging.DEBUG, "branch condition failed", logging.LogFormat{"pc": pc})
				return
			}
			for _, child := range bp.Children {
				runFrom(env, child.Ctx, stream, pc+1)
			}
			return
		case "ELSE":
			if err := handleElse(ctx); err != nil {
				return
			}
			pc++
			continue
		case "ENDIF":
			if err := handleEndif(ctx); err != nil {
				return
			}
			pc++
			continue
		}

		if !ctx.isExecuting() {
			pc++
			continue
		}

		if err := execToken(env, ctx, stream, tok); err != nil {
			env.Logger.CPrint(logging.DEBUG, "opcode failed", logging.LogFormat{"pc": pc, "op": tok.Op})
			return
		}
		if ctx.Failure != nil {
			return
		}
		pc++
	}

	helpers := newExecHelpers(ctx)
	env.Plugins.Each(func(h plugin.Hooks) { h.PreFinalize(helpers) })
	err := Finalize(ctx)
	env.Plugins.Each(func(h plugin.Hooks) { h.PostFinalize(helpers) })
	if err != nil {
		env.Logger.CPrint(logging.DEBUG, "finalize failed", logging.LogFormat{"pc": ctx.PC})
		env.Plugins.Each(func(h plugin.Hooks) { h.ScriptFailure(helpers) })
	}
}

// execToken dispatches one non-conditional token: a data push, a
// recognized opcode, or (failing both) a plugin-claimed unknown opcode.
func execToken(env *Environment, c *ExecContext, stream *token.Stream, tok token.Token) error {
	helpers := newExecHelpers(c)

	if tok.Kind == token.ScriptData {
		v, err := pushDataValue(env, c, stream, tok)
		if err != nil {
			return err
		}
		env.Plugins.Each(func(h plugin.Hooks) { h.PushData(v, helpers) })
		return c.Push(v)
	}

	fn, ok := lookupOp(env, tok.Op)
	if !ok {
		claimed, err := env.Plugins.DispatchUnknownOpcode(tok.Op, helpers)
		if err != nil {
			return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
		}
		if !claimed {
			return c.Fail(NewOpaqueFailure(c.PC, ErrUnknownOpcode.Error()))
		}
		return nil
	}

	var claimed bool
	env.Plugins.Each(func(h plugin.Hooks) {
		if claimed {
			return
		}
		if ok, err := h.PreOpcode(tok.Op, helpers); ok && err == nil {
			claimed = true
		}
	})
	if claimed {
		return nil
	}

	bumpOps(c)
	if c.NumOps > MaxOpsPerScript && c.Env.Options.SigVersion != SigVersionTapscript {
		return c.Fail(NewOpaqueFailure(c.PC, ErrTooManyOperations.Error()))
	}

	if err := fn(c); err != nil {
		return err
	}
	if len(c.Stack) > MaxStackSize || len(c.AltStack) > MaxStackSize {
		return c.Fail(NewOpaqueFailure(c.PC, ErrStackOverflow.Error()))
	}
	env.Plugins.Each(func(h plugin.Hooks) { h.PostOpcode(tok.Op, helpers) })
	return nil
}

// bumpOps counts every non-push opcode against the legacy 201-op budget
// (spec.md 4.B); the limit is consensus-enforced for base and segwit v0
// but lifted under tapscript (BIP 342), so the counter itself is kept for
// every sigversion since CHECKMULTISIG's own K-sized bump (multisig.go)
// always needs it.
func bumpOps(c *ExecContext) {
	c.NumOps++
}

// pushDataValue turns a ScriptData token into the SymValue it represents:
// a shared placeholder leaf, or a static literal for every other data
// kind (spec.md §6 "Script text grammar").
func pushDataValue(env *Environment, c *ExecContext, stream *token.Stream, tok token.Token) (*symval.SymValue, error) {
	if tok.Data == token.Placeholder {
		if v, ok := env.Placeholders[tok.Placeholder]; ok {
			return v, nil
		}
		un := symval.MakeUniqueName(symval.UniqueNameParams{OpName: "_", PC: c.PC, IntraPCSeqNum: env.NameSeq.Next(c.PC)})
		v := symval.NewLeaf(un, "$"+tok.Placeholder, c.PC)
		env.Placeholders[tok.Placeholder] = v
		if d, ok := env.Assumes[tok.Placeholder]; ok {
			if err := symval.ApplyAssumeDirective(c.Frames, v, d, symval.FailInvalidArguments, c.PC); err != nil {
				return nil, c.Fail(NewOpaqueFailure(c.PC, err.Error()))
			}
		}
		return v, nil
	}

	name := stream.DataReferences[c.PC]

	var bytes []byte
	switch tok.Data {
	case token.ByteString, token.RawHex:
		bytes = tok.Bytes
	case token.Integer:
		bytes = static.ScriptNumEncode(tok.IntValue)
	case token.LE64Literal:
		bytes = static.ScriptNumToLE64(tok.IntValue)
	}

	if len(bytes) > MaxScriptElementSize {
		return nil, c.Fail(NewOpaqueFailure(c.PC, "data_too_long"))
	}

	if c.Env.Options.MinimalData && tok.NonMinimal {
		return nil, c.Fail(NewOpaqueFailure(c.PC, string(symval.FailNonMinimalPush)))
	}

	if name == "" {
		name = "data"
	}
	v := c.newLeaf(name)
	if err := v.SetStatic(bytes); err != nil {
		return nil, c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	return v, nil
}
