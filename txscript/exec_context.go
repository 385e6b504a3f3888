package txscript

import (
	"fmt"

	"github.com/dgpv/bsst-go/solver"
	"github.com/dgpv/bsst-go/symval"
)

// Resource limits named throughout spec.md 4.B.
const (
	MaxStackSize        = 1000
	MaxScriptElementSize = 520
	MaxOpsPerScript      = 201
)

// Enforcement is a condition the script demands be non-false at a given
// pc (spec.md 3 "Enforcement").
type Enforcement struct {
	Cond               *symval.SymValue
	PC                 int
	Name               string
	IsScriptBool       bool
	IsAlwaysTrueInPath bool
	IsAlwaysTrueGlobal bool
}

// Warning is a non-fatal observation recorded during execution (e.g. an
// upgradeable schnorr pubkey flag).
type Warning struct {
	PC      int
	Message string
	Probe   *symval.SymValue // when non-nil, finalize probes whether Probe can equal 1
}

// ExecContext is one branch leaf's mutable state (spec.md 3 "ExecContext").
type ExecContext struct {
	Env *Environment

	Stack    []*symval.SymValue
	AltStack []*symval.SymValue
	CondMask []bool

	PC     int
	NumOps int

	Finalized bool
	Failure   *ScriptFailure

	Frames *solver.FrameStack

	Enforcements []Enforcement
	Warnings     []Warning

	refcounts         map[string]int
	refcountNeighbors map[string]map[string]bool
	unusedValues      map[string]bool

	witnessCount  int
	usedWitnesses map[string]bool
	witnessValues map[string]*symval.SymValue

	// skipEnforcements makes AddEnforcement a no-op while true. Nothing in
	// this package sets it.
	skipEnforcements bool

	// pendingDepths records every OP_DEPTH result still waiting to be
	// pinned (spec.md 4.B "DEPTH"): the stack length visible at the call,
	// plus the witness count at that moment, so finalize can add however
	// many further witnesses got synthesized underneath it afterwards.
	pendingDepths []depthPin

	branchpoint *Branchpoint
}

// depthPin is one OP_DEPTH call awaiting finalization.
type depthPin struct {
	value            *symval.SymValue
	baseDepth        int
	baseWitnessCount int
}

// NewExecContext returns the root context for a fresh run.
func NewExecContext(env *Environment) *ExecContext {
	return &ExecContext{
		Env:               env,
		Frames:            solver.NewFrameStack(true),
		refcounts:         make(map[string]int),
		refcountNeighbors: make(map[string]map[string]bool),
		unusedValues:      make(map[string]bool),
		usedWitnesses:     make(map[string]bool),
		witnessValues:     make(map[string]*symval.SymValue),
	}
}

// Clone deep-copies stacks and per-value maps (spec.md 4.D clone()). The
// underlying SymValues are immutable identity references and are copied
// by pointer, matching §9's "clone cheaply by copying the pointer/handle".
func (c *ExecContext) Clone() *ExecContext {
	clone := &ExecContext{
		Env:               c.Env,
		Stack:             append([]*symval.SymValue{}, c.Stack...),
		AltStack:          append([]*symval.SymValue{}, c.AltStack...),
		CondMask:          append([]bool{}, c.CondMask...),
		PC:                c.PC,
		NumOps:            c.NumOps,
		Finalized:         c.Finalized,
		Frames:            c.Frames.Clone(),
		Enforcements:      append([]Enforcement{}, c.Enforcements...),
		Warnings:          append([]Warning{}, c.Warnings...),
		refcounts:         make(map[string]int, len(c.refcounts)),
		refcountNeighbors: make(map[string]map[string]bool, len(c.refcountNeighbors)),
		unusedValues:      make(map[string]bool, len(c.unusedValues)),
		usedWitnesses:     make(map[string]bool, len(c.usedWitnesses)),
		witnessValues:     make(map[string]*symval.SymValue, len(c.witnessValues)),
		witnessCount:      c.witnessCount,
		skipEnforcements:  c.skipEnforcements,
		pendingDepths:     append([]depthPin{}, c.pendingDepths...),
	}
	for k, v := range c.refcounts {
		clone.refcounts[k] = v
	}
	for k, set := range c.refcountNeighbors {
		ns := make(map[string]bool, len(set))
		for n := range set {
			ns[n] = true
		}
		clone.refcountNeighbors[k] = ns
	}
	for k := range c.unusedValues {
		clone.unusedValues[k] = true
	}
	for k := range c.usedWitnesses {
		clone.usedWitnesses[k] = true
	}
	for k, v := range c.witnessValues {
		clone.witnessValues[k] = v
	}
	return clone
}

// Branch forks the context on a conditional opcode (spec.md 4.D branch()):
// it creates the clone for the opposite outcome, places both contexts as
// children of a new Branchpoint at the current pc, and pushes a solver
// frame on both. Returns (thisBranch, otherBranch) in (true,false) order
// matching designation naming; callers decide which keeps the current
// context's identity.
func (c *ExecContext) Branch(pc int, trueDesignation, falseDesignation string) (trueCtx, falseCtx *ExecContext, bp *Branchpoint) {
	other := c.Clone()
	c.Frames.Push()
	other.Frames.Push()

	// bp is the Branchpoint that currently owns c as a leaf; it converts
	// in place into the interior node for this fork; the (pc-addressed)
	// Parent link above it is unchanged, only this node's own Ctx/Children
	// flip, so existing ancestors keep seeing the same child pointer.
	bp = c.branchpoint
	bp.PC = pc
	trueBP := &Branchpoint{PC: pc, Designation: trueDesignation, Index: 0, Parent: bp, Ctx: c}
	falseBP := &Branchpoint{PC: pc, Designation: falseDesignation, Index: 1, Parent: bp, Ctx: other}
	bp.Ctx = nil
	bp.Children = []*Branchpoint{trueBP, falseBP}
	c.branchpoint = trueBP
	other.branchpoint = falseBP

	return c, other, bp
}

// StackTop returns the value at depth i from the top (i=-1 is the top
// element, matching spec.md's -i convention), synthesizing fresh
// witnesses wit<k> as needed when the stack is shallower than required
// (spec.md 4.D stacktop(-i)).
func (c *ExecContext) StackTop(i int) (*symval.SymValue, error) {
	depth := -i
	for len(c.Stack) < depth {
		if c.witnessCount >= MaxStackSize {
			return nil, NewOpaqueFailure(c.PC, "stack overflow synthesizing witnesses")
		}
		name := fmt.Sprintf("wit%d", c.witnessCount)
		un := symval.MakeUniqueName(symval.UniqueNameParams{OpName: "_", PC: c.PC, IntraPCSeqNum: c.witnessCount})
		wit := symval.NewLeaf(un, name, c.PC)
		c.witnessCount++
		c.usedWitnesses[name] = true
		c.witnessValues[name] = wit
		// Witnesses are inserted at the bottom: they represent stack
		// elements the script assumed were already present.
		c.Stack = append([]*symval.SymValue{wit}, c.Stack...)
	}
	return c.Stack[len(c.Stack)-depth], nil
}

// Push appends v to the top of the stack, bumping its refcount, and fails
// with data_too_long if its static size would exceed MaxScriptElementSize.
func (c *ExecContext) Push(v *symval.SymValue) error {
	if b, ok := v.StaticBytes(); ok && len(b) > MaxScriptElementSize {
		return c.Fail(NewOpaqueFailure(c.PC, "data_too_long"))
	}
	c.Stack = append(c.Stack, v)
	c.bumpRefcount(v)
	return nil
}

// PopStack removes and returns the top stack value, decrementing its
// refcount and recording it as unused if it drops to zero with no live
// refcount neighbor (spec.md 4.D push/popstack).
func (c *ExecContext) PopStack() (*symval.SymValue, error) {
	v, err := c.StackTop(-1)
	if err != nil {
		return nil, err
	}
	c.Stack = c.Stack[:len(c.Stack)-1]
	c.dropRefcount(v)
	return v, nil
}

func (c *ExecContext) bumpRefcount(v *symval.SymValue) {
	c.refcounts[v.UniqueName]++
}

func (c *ExecContext) dropRefcount(v *symval.SymValue) {
	c.refcounts[v.UniqueName]--
	if c.refcounts[v.UniqueName] > 0 {
		return
	}
	for n := range c.refcountNeighbors[v.UniqueName] {
		if c.refcounts[n] > 0 {
			return
		}
	}
	c.unusedValues[v.CanonicalRepr(c.Env.Options.TagWithPosition)] = true
}

// MarkRefcountNeighbors records that a and b were produced together by one
// opcode: using only one of them still keeps the other from being
// reported unused (spec.md GLOSSARY "Refcount neighbors").
func (c *ExecContext) MarkRefcountNeighbors(a, b *symval.SymValue) {
	if c.refcountNeighbors[a.UniqueName] == nil {
		c.refcountNeighbors[a.UniqueName] = map[string]bool{}
	}
	if c.refcountNeighbors[b.UniqueName] == nil {
		c.refcountNeighbors[b.UniqueName] = map[string]bool{}
	}
	c.refcountNeighbors[a.UniqueName][b.UniqueName] = true
	c.refcountNeighbors[b.UniqueName][a.UniqueName] = true
}

// AddEnforcement appends an enforcement, unless currently inside a
// skip-region (spec.md 4.D add_enforcement).
func (c *ExecContext) AddEnforcement(cond *symval.SymValue, name string, isScriptBool bool) {
	if c.skipEnforcements {
		return
	}
	c.Enforcements = append(c.Enforcements, Enforcement{Cond: cond, PC: c.PC, Name: name, IsScriptBool: isScriptBool})
}

// Assert records cond (tagged with code) in the current solver frame.
func (c *ExecContext) Assert(cond *symval.SymValue, code symval.FailCode) {
	c.Frames.Assert(cond, code, c.PC)
}

// Fail records a failure and stops execution of this context (spec.md 4.D
// register_failure). Sibling branches are unaffected.
func (c *ExecContext) Fail(reason *ScriptFailure) error {
	c.Failure = reason
	return reason
}

// UnusedValues returns the canonical reprs of values never consumed on
// this leaf.
func (c *ExecContext) UnusedValues() map[string]bool {
	return c.unusedValues
}
