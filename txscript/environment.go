package txscript

import (
	"github.com/dgpv/bsst-go/logging"
	"github.com/dgpv/bsst-go/plugin"
	"github.com/dgpv/bsst-go/solver"
	"github.com/dgpv/bsst-go/symval"
	"github.com/dgpv/bsst-go/txfield"
)

// Environment is the run-wide state threaded explicitly through every
// engine call (spec.md §9: "re-implement [CurrentEnvironment] as explicit
// context parameters passed to handlers"), the same way the teacher's
// Engine carries its state on a receiver rather than a package global.
type Environment struct {
	Options *SymOptions
	Logger  *logging.Logger
	Plugins *plugin.Registry
	Backend solver.Backend

	NameSeq  *symval.NameSeq
	TxFields *txfield.Store

	// Placeholders maps a `$ident` name to the single SymValue shared by
	// every occurrence of that identifier (spec.md §6 "$ident"). Append-only,
	// per spec.md §5 "the transaction-field map and placeholder registry are
	// append-only".
	Placeholders map[string]*symval.SymValue

	// Assumes holds a `bsst-assume($ident): ...` directive per placeholder
	// identifier (parsed by the asmtoken collaborator), applied the first
	// time that placeholder's SymValue is created.
	Assumes map[string]*symval.AssumeDirective

	// root is the top of the branch tree, populated by Run.
	root *Branchpoint
}

// NewEnvironment wires a fresh Environment from options, using
// solver.NewDomainSolver as the backend (this module's one concrete
// Backend implementation) unless a different backend is supplied via
// WithBackend.
func NewEnvironment(opts *SymOptions, logger *logging.Logger) *Environment {
	if logger == nil {
		logger = logging.NewNop()
	}
	env := &Environment{
		Options: opts,
		Logger:  logger,
		Plugins: plugin.NewRegistry(),
		Backend: solver.NewDomainSolver(),
		NameSeq:      symval.NewNameSeq(),
		Placeholders: make(map[string]*symval.SymValue),
		Assumes:      make(map[string]*symval.AssumeDirective),
	}
	env.TxFields = txfield.NewStore(env.NameSeq)
	return env
}

// WithBackend overrides the solver backend (e.g. for tests that want a
// stub Backend).
func (e *Environment) WithBackend(b solver.Backend) *Environment {
	e.Backend = b
	return e
}

// CheckOptions derives a solver.CheckOptions from the environment's
// configuration, for the current attempt.
func (e *Environment) CheckOptions(modelRequest []solver.ModelRequest) solver.CheckOptions {
	return solver.CheckOptions{
		TimeoutMS:        e.Options.SolverTimeoutMS,
		MaxTries:         e.Options.MaxSolverTries,
		Multiplier:       e.Options.SolverTimeoutMultiplier,
		Cap:              e.Options.SolverTimeoutCap,
		Randomize:        !e.Options.DisableRandomization,
		ModelRequest:     modelRequest,
		InjectiveHash256: e.Options.InjectiveHash256Collisions,
		InjectiveHash160: e.Options.NoHash160Collisions,
	}
}
