package txscript

// SigVersion selects the rule set active for the current script, matching
// spec.md GLOSSARY "Sigversion".
type SigVersion int

const (
	SigVersionBase SigVersion = iota
	SigVersionWitnessV0
	SigVersionTapscript
)

// SymOptions is the single configuration struct threaded through the
// engine, in the teacher's config.Params style (a plain data struct
// registered once, consumed everywhere) rather than ambient globals.
// Constructed with defaults by NewSymOptions and mutated by the (external)
// CLI layer before being handed to NewEnvironment.
type SymOptions struct {
	SigVersion SigVersion
	Elements   bool // Elements-style superset (64-bit arithmetic, asset/value fields)

	MinimalData bool // minimaldata_flag_strict (spec.md §6)
	MinimalIf   bool // minimalif policy (spec.md 4.B)
	NullFail    bool // NULLFAIL signature-check policy
	NullDummy   bool // NULLDUMMY multisig bug-byte policy
	LowS        bool // require low-S signatures
	StrictEnc   bool // strict pubkey/signature encoding

	TagWithPosition    bool // append "@pc" to canonical_repr (spec.md 4.A)
	SortCommutativeOps bool // deterministic operand order for commutative ops
	DisableRandomization bool

	InjectiveHash256Collisions bool // always on in practice; kept for symmetry
	NoHash160Collisions        bool // spec.md §8 SC-3's "no-160-bit-collision" option

	SolverEnabled  bool
	ParallelSolving bool
	ParallelWorkers int

	SolverTimeoutMS       int
	MaxSolverTries        int
	SolverTimeoutMultiplier float64
	SolverTimeoutCap      int
	ExitOnSolverUnknown   bool

	IncompleteScript bool // skip the final as_script_bool/clean-stack checks
}

// NewSymOptions returns the documented defaults.
func NewSymOptions() *SymOptions {
	return &SymOptions{
		SigVersion:              SigVersionBase,
		MinimalData:             true,
		MinimalIf:                true,
		NullFail:                 true,
		NullDummy:                true,
		LowS:                     true,
		StrictEnc:                true,
		SortCommutativeOps:       true,
		InjectiveHash256Collisions: true,
		SolverEnabled:            true,
		ParallelSolving:          false,
		ParallelWorkers:          4,
		SolverTimeoutMS:          5000,
		MaxSolverTries:           3,
		SolverTimeoutMultiplier:  2.0,
		SolverTimeoutCap:         60000,
	}
}
