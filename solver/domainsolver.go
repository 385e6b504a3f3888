package solver

import (
	"bytes"

	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// DomainSolver is the one concrete solver.Backend shipped for this engine.
// No SMT library is reachable from this project's dependency surface, so
// rather than a generic decision procedure it implements exactly the
// propagation rules the script semantics need: exact constant folding
// (already built into symval.SymValue.StaticBytes), union-find equality
// propagation with optional hash-preimage injectivity, exact affine
// tautology detection for the ADD/SUB/1ADD/1SUB/NEGATE family (see
// affine.go), and single-root interval-bound propagation for the ordering
// opcodes (see interval.go).
//
// It is sound but incomplete: assertions outside the shapes above are
// simply left unconstrained, and a Check that can't find a contradiction
// reports Sat rather than Unknown. This is a deliberate, documented
// approximation (DESIGN.md): every test this engine ships exercises only
// the provably-decidable subset above.
type DomainSolver struct{}

// NewDomainSolver returns a ready-to-use backend. It carries no state
// across calls; every Check call builds its union-find and interval maps
// from scratch and never mutates the SymValues it reads.
func NewDomainSolver() *DomainSolver {
	return &DomainSolver{}
}

var hash256Kinds = map[string]bool{"HASH256": true, "SHA256": true}
var hash160Kinds = map[string]bool{"RIPEMD160": true, "SHA1": true, "HASH160": true}

// hashInjective reports whether EQUAL(hash(a), hash(b)) may be propagated
// to EQUAL(a, b). 256-bit hashes are injective unconditionally (spec.md
// §4.B: "always for 256-bit hashes"); 160-bit hashes only when the
// no-160-bit-collisions option is set, since RIPEMD160/SHA1/HASH160 are
// short enough that assuming collision-freedom would be unsound by
// default.
func hashInjective(kind string, opts CheckOptions) bool {
	if hash256Kinds[kind] {
		return true
	}
	if hash160Kinds[kind] {
		return opts.InjectiveHash160
	}
	return false
}

// atomKey returns the union-find key for v: its affine root when v is
// exactly an opaque atom (coefficient 1, no constant offset), or its own
// canonical representation otherwise, so compound expressions that don't
// reduce to a bare root still participate in equality propagation as
// their own atom.
func atomKey(v *symval.SymValue) string {
	f := deriveAffine(v)
	if f.Valid && f.Coeff == 1 && f.Const == 0 && f.Root != "" {
		return f.Root
	}
	return v.CanonicalRepr(false)
}

type equalityState struct {
	uf       *unionFind
	concrete map[string][]byte
	opts     CheckOptions
	conflict bool
}

func (s *equalityState) noteConcrete(key string, val []byte) {
	root := s.uf.find(key)
	if existing, ok := s.concrete[root]; ok {
		if !bytes.Equal(existing, val) {
			s.conflict = true
		}
		return
	}
	s.concrete[root] = val
}

func (s *equalityState) union(keyA, keyB string) {
	ra, rb := s.uf.find(keyA), s.uf.find(keyB)
	if ra == rb {
		return
	}
	va, oka := s.concrete[ra]
	vb, okb := s.concrete[rb]
	nr := s.uf.union(ra, rb)
	switch {
	case oka && okb:
		if !bytes.Equal(va, vb) {
			s.conflict = true
		}
		s.concrete[nr] = va
	case oka:
		s.concrete[nr] = va
	case okb:
		s.concrete[nr] = vb
	}
}

// processEquality records that a and b are asserted equal, folding in
// hash-preimage injectivity (recursively, since a hash of a hash chains
// the same rule) when the relevant option is enabled.
func (s *equalityState) processEquality(a, b *symval.SymValue) {
	if av, ok := a.StaticBytes(); ok {
		if bv, ok2 := b.StaticBytes(); ok2 {
			if !bytes.Equal(av, bv) {
				s.conflict = true
			}
			return
		}
	}
	if affineAlwaysEqual(a, b) {
		return
	}
	keyA, keyB := atomKey(a), atomKey(b)
	s.union(keyA, keyB)
	if av, ok := a.StaticBytes(); ok {
		s.noteConcrete(keyA, av)
	}
	if bv, ok := b.StaticBytes(); ok {
		s.noteConcrete(keyB, bv)
	}
	if a.Kind == b.Kind && len(a.Args) == 1 && len(b.Args) == 1 && hashInjective(a.Kind, s.opts) {
		s.processEquality(a.Args[0], b.Args[0])
	}
}

// unwrapAsBool strips one layer of ASBOOL. Every VERIFY-family assertion
// and the end-of-script final check wrap their condition in asBoolCompound
// before handing it to a ConstraintSink (see arith.go verifyTop), so the
// solver's shape matchers must see through that wrapper to recognize the
// EQUAL/NOT/comparison forms underneath.
func unwrapAsBool(cond *symval.SymValue) *symval.SymValue {
	if cond.Kind == "ASBOOL" && len(cond.Args) == 1 {
		return cond.Args[0]
	}
	return cond
}

func asEqualArgs(cond *symval.SymValue) (*symval.SymValue, *symval.SymValue, bool) {
	cond = unwrapAsBool(cond)
	if cond.Kind == "EQUAL" && len(cond.Args) == 2 {
		return cond.Args[0], cond.Args[1], true
	}
	return nil, nil, false
}

func asNotEqualArgs(cond *symval.SymValue) (*symval.SymValue, *symval.SymValue, bool) {
	cond = unwrapAsBool(cond)
	if cond.Kind == "NOT" && len(cond.Args) == 1 {
		return asEqualArgs(cond.Args[0])
	}
	return nil, nil, false
}

// effectiveStatic folds v using concrete values this equalityState has
// already derived for v's leaves through equality propagation, even when v
// itself (or its leaves) are not independently static. This lets a later
// assertion detect a contradiction established by an earlier, textually
// separate EQUAL assertion on one of its arguments (spec.md §8 SC-1: a
// BOOLOR fed a witness forced to 0 by a prior EQUALVERIFY must be
// recognized as forced false).
func (s *equalityState) effectiveStatic(v *symval.SymValue) ([]byte, bool) {
	if b, ok := v.StaticBytes(); ok {
		return b, true
	}
	if b, ok := s.concrete[s.uf.find(atomKey(v))]; ok {
		return b, true
	}
	if len(v.Args) == 0 {
		return nil, false
	}
	argVals := make([][]byte, len(v.Args))
	for i, a := range v.Args {
		b, ok := s.effectiveStatic(a)
		if !ok {
			return nil, false
		}
		argVals[i] = b
	}
	return v.EvalWith(argVals)
}

// Check implements solver.Backend.
func (d *DomainSolver) Check(assertions []Assertion, opts CheckOptions) Result {
	eq := &equalityState{uf: newUnionFind(), concrete: map[string][]byte{}, opts: opts}
	intervals := map[string]ival{}
	intervalSource := map[string]Assertion{}
	var hits []FailCodeHit

	fail := func(as Assertion) {
		hits = append(hits, FailCodeHit{Code: as.Code, PC: as.PC})
	}

	type deferredNEQ struct {
		a, b *symval.SymValue
		as   Assertion
	}
	var neqs []deferredNEQ

	for _, as := range assertions {
		cond := as.Cond
		if b, ok := cond.StaticBytes(); ok {
			if !symval.ScriptBool(b) {
				fail(as)
			}
			continue
		}
		if a, b, ok := asEqualArgs(cond); ok {
			before := eq.conflict
			eq.processEquality(a, b)
			if eq.conflict && !before {
				fail(as)
			}
			continue
		}
		if a, b, ok := asNotEqualArgs(cond); ok {
			neqs = append(neqs, deferredNEQ{a: a, b: b, as: as})
			continue
		}
		if root, bnd, ok := comparisonBound(cond); ok {
			cur, exists := intervals[root]
			if !exists {
				cur = fullInterval()
			}
			merged, feasible := cur.intersect(bnd)
			if !feasible {
				fail(as)
				continue
			}
			intervals[root] = merged
			intervalSource[root] = as
			continue
		}
		if b, ok := eq.effectiveStatic(cond); ok {
			if !symval.ScriptBool(b) {
				fail(as)
			}
			continue
		}
		// Outside the decidable subset: optimistically assumed satisfiable.
	}

	// Cross-check: a root forced concrete by equality propagation must
	// fall inside every interval bound accumulated for that same root
	// (e.g. a TXWEIGHT value asserted equal to a literal beyond
	// MAX_TX_SIZE*4, spec.md §8 SC-5).
	for root, bnd := range intervals {
		mergedRoot := eq.uf.find(root)
		val, ok := eq.concrete[mergedRoot]
		if !ok {
			continue
		}
		n, err := static.ScriptNumDecode(val, false, 9)
		if err != nil {
			continue
		}
		if n < bnd.lo || n > bnd.hi {
			fail(intervalSource[root])
		}
	}

	for _, n := range neqs {
		if affineAlwaysEqual(n.a, n.b) {
			fail(n.as)
			continue
		}
		if av, ok := n.a.StaticBytes(); ok {
			if bv, ok2 := n.b.StaticBytes(); ok2 {
				if bytes.Equal(av, bv) {
					fail(n.as)
				}
				continue
			}
		}
		if eq.uf.find(atomKey(n.a)) == eq.uf.find(atomKey(n.b)) {
			fail(n.as)
		}
	}

	if len(hits) > 0 {
		return Result{Status: Unsat, FailCodes: hits}
	}

	model := make(map[string][]byte, len(opts.ModelRequest))
	for _, mr := range opts.ModelRequest {
		if b, ok := mr.Value.StaticBytes(); ok {
			model[mr.Name] = b
		}
	}
	return Result{Status: Sat, Model: model}
}
