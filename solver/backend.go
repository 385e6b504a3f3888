package solver

import "github.com/dgpv/bsst-go/symval"

// Status is the three-way verdict a Backend returns for a Check, per
// spec.md 4.C: sat, unsat, or unknown (solver gave up / timed out).
type Status int

const (
	Sat Status = iota
	Unsat
	Unknown
)

// FailCodeHit is one entry of an unsat core: a failure-code name and the
// program counter of the opcode that raised it, derived from the
// "check_<code>~<N>@L<pc>" tracking name (spec.md §7).
type FailCodeHit struct {
	Code symval.FailCode
	PC   int
}

// ModelRequest names the SymValues a Check call should extract concrete
// values for on a Sat result (spec.md 4.F step 5: witnesses, tx fields,
// placeholders, then remaining stack entries).
type ModelRequest struct {
	Name  string
	Value *symval.SymValue
}

// CheckOptions parameterizes one Check call (spec.md §5 "Cancellation &
// timeouts").
type CheckOptions struct {
	TimeoutMS      int
	MaxTries       int
	Multiplier     float64
	Cap            int
	Randomize      bool
	Seed           int64
	ModelRequest   []ModelRequest
	InjectiveHash256 bool // 256-bit hashes always use the equivalence (injective) rule
	InjectiveHash160 bool // RIPEMD160/SHA1/HASH160 use equivalence too when set (the "no 160-bit collision" option)
}

// Result is a Backend's verdict.
type Result struct {
	Status    Status
	FailCodes []FailCodeHit
	Model     map[string][]byte
}

// Backend is the pluggable SMT-style decision procedure of spec.md §9
// "Solver backend abstraction": either a stateful incremental backend or a
// stateless assert-all-check-once one. Check receives every assertion
// live across the frame stack (root through current frame) plus the model
// request for this call.
type Backend interface {
	Check(assertions []Assertion, opts CheckOptions) Result
}
