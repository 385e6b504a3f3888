package txscript

import (
	"math/big"

	"github.com/dgpv/bsst-go/report"
	"github.com/shopspring/decimal"
)

// BuildSnapshot walks a completed branch tree into the report package's
// data contract (spec.md §1), running the remaining cross-leaf passes
// (unique/unused-value enforcement grouping) that only make sense with
// the full tree in hand.
func BuildSnapshot(env *Environment, root *Branchpoint) report.Snapshot {
	_, globalOr := ProcessUniqueEnforcements(root)

	var snap report.Snapshot
	for _, leaf := range root.Leaves() {
		snap.Leaves = append(snap.Leaves, leafSnapshot(env, leaf))
	}
	for _, e := range globalOr {
		if e.IsAlwaysTrueGlobal {
			snap.GlobalAlwaysTrue = append(snap.GlobalAlwaysTrue, enforcementView(e, true))
		}
	}
	return snap
}

func leafSnapshot(env *Environment, bp *Branchpoint) report.LeafSnapshot {
	c := bp.Ctx
	ls := report.LeafSnapshot{BranchPath: branchPath(bp)}

	for _, e := range c.Enforcements {
		ls.Enforcements = append(ls.Enforcements, enforcementView(e, false))
	}
	for _, w := range c.Warnings {
		ls.Warnings = append(ls.Warnings, report.WarningView{PC: w.PC, Message: w.Message})
	}
	for repr := range ProcessUnusedValues(bp) {
		ls.UnusedValues = append(ls.UnusedValues, repr)
	}

	if c.Failure != nil {
		ls.Failed = true
		ls.FailureReason = c.Failure.Reason
		for _, fc := range c.Failure.Codes {
			ls.FailureCodes = append(ls.FailureCodes, fc.Code)
			ls.FailurePCs = append(ls.FailurePCs, fc.PC)
		}
	}

	ls.ModelValues = modelValues(env, c)
	return ls
}

func enforcementView(e Enforcement, global bool) report.EnforcementView {
	return report.EnforcementView{
		PC:                 e.PC,
		Name:               e.Name,
		CanonicalRepr:      e.Cond.CanonicalRepr(false),
		ReadableRepr:       e.Cond.ReadableRepr(),
		IsScriptBool:       e.IsScriptBool,
		IsAlwaysTrueLocal:  e.IsAlwaysTrueInPath,
		IsAlwaysTrueGlobal: global || e.IsAlwaysTrueGlobal,
	}
}

func branchPath(bp *Branchpoint) []string {
	var out []string
	for n := bp; n.Parent != nil; n = n.Parent {
		out = append([]string{n.Designation}, out...)
	}
	return out
}

// modelValues extracts a concrete value for every name buildModelRequest
// would have asked the solver for, rendering numeric-capable values as
// exact decimals rather than float-rounded approximations.
func modelValues(env *Environment, c *ExecContext) []report.ModelValue {
	var out []report.ModelValue
	for _, req := range buildModelRequest(c) {
		b, ok := req.Value.StaticBytes()
		if !ok {
			continue
		}
		mv := report.ModelValue{Name: req.Name, Bytes: b}
		if n, ok2, err := req.Value.AsScriptNumInt(env.Options.MinimalData); err2ok(ok2, err) {
			mv.Numeric = true
			mv.Decimal = decimal.NewFromBigInt(big.NewInt(n), 0)
		}
		out = append(out, mv)
	}
	return out
}

func err2ok(ok bool, err error) bool {
	return ok && err == nil
}
