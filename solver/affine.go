package solver

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// affineForm represents a SymValue's scriptnum-view value as
// coeff*root + const, where root is the canonical key of a single shared
// free atom. It is the mechanism that proves e.g. ADD($a,1) and
// SUB(ADD($a,2),1) are identically equal for every value of $a (SC-6 in
// spec.md §8), without any numeric case-splitting: two affine forms over
// the same root are equal for all assignments iff their coefficients and
// constants match exactly.
//
// This only tracks a single root atom; expressions combining two distinct
// free atoms (e.g. $a + $b) are reported invalid rather than approximated,
// which is a documented capability cliff (see DESIGN.md) rather than a
// silent unsoundness.
type affineForm struct {
	Root  string
	Coeff int64
	Const int64
	Valid bool
}

func normalize(f affineForm) affineForm {
	if f.Valid && f.Coeff == 0 {
		f.Root = ""
	}
	return f
}

func deriveAffine(v *symval.SymValue) affineForm {
	if b, ok := v.StaticBytes(); ok {
		if n, err := static.ScriptNumDecode(b, false, 9); err == nil {
			return affineForm{Const: n, Valid: true}
		}
		return affineForm{Valid: false}
	}

	switch v.Kind {
	case "ADD":
		if len(v.Args) == 2 {
			return normalize(combineLinear(deriveAffine(v.Args[0]), deriveAffine(v.Args[1]), 1))
		}
	case "SUB":
		if len(v.Args) == 2 {
			return normalize(combineLinear(deriveAffine(v.Args[0]), deriveAffine(v.Args[1]), -1))
		}
	case "1ADD":
		if len(v.Args) == 1 {
			a := deriveAffine(v.Args[0])
			return normalize(affineForm{Root: a.Root, Coeff: a.Coeff, Const: a.Const + 1, Valid: a.Valid})
		}
	case "1SUB":
		if len(v.Args) == 1 {
			a := deriveAffine(v.Args[0])
			return normalize(affineForm{Root: a.Root, Coeff: a.Coeff, Const: a.Const - 1, Valid: a.Valid})
		}
	case "NEGATE":
		if len(v.Args) == 1 {
			a := deriveAffine(v.Args[0])
			return normalize(affineForm{Root: a.Root, Coeff: -a.Coeff, Const: -a.Const, Valid: a.Valid})
		}
	}

	// Opaque atom: its own root, identity coefficient.
	return affineForm{Root: v.CanonicalRepr(false), Coeff: 1, Const: 0, Valid: true}
}

// combineLinear combines two affine forms as a + sign*b.
func combineLinear(a, b affineForm, sign int64) affineForm {
	if !a.Valid || !b.Valid {
		return affineForm{Valid: false}
	}
	if a.Root == "" {
		return affineForm{Root: b.Root, Coeff: sign * b.Coeff, Const: a.Const + sign*b.Const, Valid: true}
	}
	if b.Root == "" {
		return affineForm{Root: a.Root, Coeff: a.Coeff, Const: a.Const + sign*b.Const, Valid: true}
	}
	if a.Root == b.Root {
		return affineForm{Root: a.Root, Coeff: a.Coeff + sign*b.Coeff, Const: a.Const + sign*b.Const, Valid: true}
	}
	return affineForm{Valid: false}
}

// affineAlwaysEqual reports whether two SymValues' affine forms are
// provably identical for every assignment of their shared root atom.
func affineAlwaysEqual(a, b *symval.SymValue) bool {
	fa, fb := deriveAffine(a), deriveAffine(b)
	if !fa.Valid || !fb.Valid {
		return false
	}
	if fa.Coeff == 0 && fb.Coeff == 0 {
		return fa.Const == fb.Const
	}
	return fa.Root == fb.Root && fa.Coeff == fb.Coeff && fa.Const == fb.Const
}

// affineAlwaysDiffer reports whether two affine forms' value ranges are
// provably disjoint given the supplied interval for their shared root (or
// independently bounded, when no root is shared, via the generic
// unconstrained scriptnum bound).
func affineAlwaysDiffer(a, b *symval.SymValue, rootInterval func(root string) (lo, hi int64, ok bool)) bool {
	fa, fb := deriveAffine(a), deriveAffine(b)
	if !fa.Valid || !fb.Valid {
		return false
	}
	// Only directly comparable when both depend on the same root (or are
	// pure constants); otherwise we don't attempt a joint range argument.
	if fa.Root != fb.Root {
		if fa.Coeff == 0 && fb.Coeff == 0 {
			return fa.Const != fb.Const
		}
		return false
	}
	lo, hi, ok := int64(0), int64(0), false
	if fa.Root != "" {
		lo, hi, ok = rootInterval(fa.Root)
		if !ok {
			return false
		}
	}
	diffCoeff := fa.Coeff - fb.Coeff
	diffConst := fa.Const - fb.Const
	var dlo, dhi int64
	if diffCoeff >= 0 {
		dlo, dhi = diffCoeff*lo+diffConst, diffCoeff*hi+diffConst
	} else {
		dlo, dhi = diffCoeff*hi+diffConst, diffCoeff*lo+diffConst
	}
	return dlo > 0 || dhi < 0
}
