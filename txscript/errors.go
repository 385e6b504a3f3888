package txscript

import "github.com/pkg/errors"

// Sentinel VM-fatal errors, in the teacher's style (package-level `var`s
// wrapped with github.com/pkg/errors rather than a typed error hierarchy).
var (
	ErrUnbalancedConditional = errors.New("unbalanced conditional at script end")
	ErrStackOverflow         = errors.New("stack size exceeds MAX_STACK_SIZE")
	ErrTooManyOperations     = errors.New("script exceeds MAX_OPS_PER_SCRIPT")
	ErrElementTooBig         = errors.New("pushed element exceeds MAX_SCRIPT_ELEMENT_SIZE")
	ErrNonStaticIndex        = errors.New("PICK/ROLL requires a statically known index")
	ErrUnknownOpcode         = errors.New("unknown opcode, unclaimed by any plugin")
	ErrMixedViews            = errors.New("mixing SCRIPT_NUM and INT64 views is a fatal error")
	ErrDisabledOpcode        = errors.New("disabled opcode")
)

// ScriptFailure is the non-local escape from an opcode handler or
// finalization (spec.md §7): either an opaque reason, or a list of
// solver-attributed failure codes with the opcode position each was
// raised at.
type ScriptFailure struct {
	PC     int
	Reason string
	Codes  []FailCodeAtPC
}

// FailCodeAtPC pairs a failure-code name with the pc its tracking name
// carried, parsed from the unsat core.
type FailCodeAtPC struct {
	Code string
	PC   int
}

func (f *ScriptFailure) Error() string {
	if f.Reason != "" {
		return f.Reason
	}
	if len(f.Codes) == 1 {
		return f.Codes[0].Code
	}
	return "script failure"
}

// NewOpaqueFailure builds a ScriptFailure carrying only a reason string
// (no solver attribution), e.g. "unbalanced conditional", "stack overflow".
func NewOpaqueFailure(pc int, reason string) *ScriptFailure {
	return &ScriptFailure{PC: pc, Reason: reason}
}
