// Package report defines the shape post-analysis hands to the (external)
// report formatter, per spec.md §1 "the report formatter (it consumes the
// post-analysis outputs via a well-defined shape)". Nothing here renders
// text; it is purely the data contract.
package report

import "github.com/shopspring/decimal"

// EnforcementView is one rendered enforcement on a leaf's timeline.
type EnforcementView struct {
	PC                int
	Name              string
	CanonicalRepr     string
	ReadableRepr      string
	IsScriptBool      bool
	IsAlwaysTrueLocal bool
	IsAlwaysTrueGlobal bool
}

// WarningView is a rendered warning (e.g. an upgradeable-pubkey schnorr
// flag that could be 1).
type WarningView struct {
	PC      int
	Message string
}

// ModelValue pairs a declared variable name with its solver-extracted
// concrete value, rendered as exact decimal text (via
// github.com/shopspring/decimal) so large scriptnums/LE64s and
// MAX_MONEY-range amounts never pick up float rounding on the way to the
// formatter.
type ModelValue struct {
	Name  string
	Bytes []byte
	// Numeric is set when the underlying value has a script-number or
	// LE64 interpretation; Decimal renders it exactly.
	Numeric bool
	Decimal decimal.Decimal
}

// LeafSnapshot is one feasible (or failed) execution path.
type LeafSnapshot struct {
	BranchPath    []string // designations from root to this leaf, e.g. ["True","False"]
	Enforcements  []EnforcementView
	Warnings      []WarningView
	ModelValues   []ModelValue
	UnusedValues  []string // canonical_repr of values never consumed
	Failed        bool
	FailureReason string
	FailureCodes  []string // "check_<code>" names, in unsat-core order
	FailurePCs    []int
}

// Snapshot is the complete post-analysis output for one script run.
type Snapshot struct {
	Leaves              []LeafSnapshot
	GlobalAlwaysTrue    []EnforcementView
	SolverUnknownCount  int
	SolverUnknownReason string
}
