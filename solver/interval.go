package solver

import (
	"math"

	"github.com/dgpv/bsst-go/symval"
)

// ival is an inclusive [lo, hi] integer bound on a single affine root atom,
// used by the interval-bound propagation that backs SC-5 and SC-7 in
// spec.md §8 (weight-bound and ADD64-overflow contradictions). Bounds only
// ever narrow, matching the "never widen a constraint" rule applied
// throughout symval.ConstrainedValue.
type ival struct {
	lo, hi int64
}

func fullInterval() ival { return ival{lo: math.MinInt64, hi: math.MaxInt64} }

func (a ival) intersect(b ival) (ival, bool) {
	lo := a.lo
	if b.lo > lo {
		lo = b.lo
	}
	hi := a.hi
	if b.hi < hi {
		hi = b.hi
	}
	return ival{lo: lo, hi: hi}, lo <= hi
}

// comparisonKinds are the opcode Kind tags a numeric-comparison assertion
// can carry, matching OP_LESSTHAN/OP_LESSTHANOREQUAL/OP_GREATERTHAN/
// OP_GREATERTHANOREQUAL/OP_WITHIN. The Elements 64-bit comparisons carry
// their own kinds (LESSTHAN64 and so on) and are not matched here.
const (
	kindLessThan           = "LESSTHAN"
	kindLessThanOrEqual    = "LESSTHANOREQUAL"
	kindGreaterThan        = "GREATERTHAN"
	kindGreaterThanOrEqual = "GREATERTHANOREQUAL"
	kindWithin             = "WITHIN"
)

// comparisonBound derives the (root, restricted-interval) pair implied by a
// numeric comparison assertion, when exactly one side resolves to a single
// affine root and the rest are pure constants. ok is false when the
// assertion isn't in a shape interval propagation applies to (e.g. two
// distinct free roots on either side), in which case it is simply left to
// the other propagation rules.
func comparisonBound(cond *symval.SymValue) (root string, bound ival, ok bool) {
	cond = unwrapAsBool(cond)
	kind := cond.Kind
	negated := false
	if kind == "NOT" && len(cond.Args) == 1 {
		kind = cond.Args[0].Kind
		cond = cond.Args[0]
		negated = true
	}

	switch kind {
	case kindLessThan, kindLessThanOrEqual, kindGreaterThan, kindGreaterThanOrEqual:
		if len(cond.Args) != 2 {
			return "", ival{}, false
		}
		return boundFromOrdering(kind, negated, deriveAffine(cond.Args[0]), deriveAffine(cond.Args[1]))
	case kindWithin:
		if len(cond.Args) != 3 {
			return "", ival{}, false
		}
		x := deriveAffine(cond.Args[0])
		lo := deriveAffine(cond.Args[1])
		hi := deriveAffine(cond.Args[2])
		if !x.Valid || x.Coeff == 0 || !lo.Valid || lo.Coeff != 0 || !hi.Valid || hi.Coeff != 0 {
			return "", ival{}, false
		}
		b := ival{lo: ceilDiv(lo.Const-x.Const, x.Coeff), hi: floorDiv(hi.Const-1-x.Const, x.Coeff)}
		if negated {
			// WITHIN false: x outside [lo,hi) — not a single contiguous
			// interval in general, so propagation doesn't apply.
			return "", ival{}, false
		}
		return x.Root, b, true
	}
	return "", ival{}, false
}

// boundFromOrdering handles the four strict/non-strict ordering kinds where
// one side is a single affine root and the other a pure constant.
func boundFromOrdering(kind string, negated bool, a, b affineForm) (string, ival, bool) {
	if !a.Valid || !b.Valid {
		return "", ival{}, false
	}
	// Normalize to "coeff*root OP k" form, moving the affine side's constant
	// into k; if the root is on the right, flip.
	var root string
	var coeff, boundConst int64
	var op string
	switch {
	case a.Coeff != 0 && b.Coeff == 0:
		root, coeff, boundConst, op = a.Root, a.Coeff, b.Const-a.Const, kind
	case a.Coeff == 0 && b.Coeff != 0:
		root, coeff, boundConst, op = b.Root, b.Coeff, a.Const-b.Const, flipOrdering(kind)
	default:
		return "", ival{}, false
	}
	if negated {
		op = negateOrdering(op)
	}
	if coeff < 0 {
		// root*coeff OP k  <=>  root*|coeff| OP' -k with ordering flipped.
		op = flipOrdering(op)
		boundConst = -boundConst
	}
	return root, boundFromLinearOrdering(op, coeff, boundConst), true
}

func boundFromLinearOrdering(op string, coeff, k int64) ival {
	// We are bounding root given coeff*root OP k, coeff != 0. Divide
	// through by |coeff|, tracking direction flips from a negative coeff
	// (already folded into op by the caller) and rounding conservatively
	// (never making the bound tighter than truth, i.e. only as tight as
	// integer division guarantees).
	c := abs64(coeff)
	switch op {
	case kindLessThan:
		return ival{lo: math.MinInt64, hi: ceilDiv(k, c) - 1}
	case kindLessThanOrEqual:
		return ival{lo: math.MinInt64, hi: floorDiv(k, c)}
	case kindGreaterThan:
		return ival{lo: floorDiv(k, c) + 1, hi: math.MaxInt64}
	case kindGreaterThanOrEqual:
		return ival{lo: ceilDiv(k, c), hi: math.MaxInt64}
	}
	return fullInterval()
}

func flipOrdering(k string) string {
	switch k {
	case kindLessThan:
		return kindGreaterThan
	case kindLessThanOrEqual:
		return kindGreaterThanOrEqual
	case kindGreaterThan:
		return kindLessThan
	case kindGreaterThanOrEqual:
		return kindLessThanOrEqual
	}
	return k
}

func negateOrdering(k string) string {
	switch k {
	case kindLessThan:
		return kindGreaterThanOrEqual
	case kindLessThanOrEqual:
		return kindGreaterThan
	case kindGreaterThan:
		return kindLessThanOrEqual
	case kindGreaterThanOrEqual:
		return kindLessThan
	}
	return k
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}
