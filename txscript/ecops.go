package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// EC operations (spec.md 4.B "EC operations"): ECMULSCALARVERIFY and
// TWEAKVERIFY declare uninterpreted functions over byte-sequences, fold
// concretely via the static.Probe* helpers when every argument is known,
// and add a verify-style enforcement (spec.md §4.2's "known args/result"
// uniqueness quantifiers are a documented solver-completeness gap, see
// DESIGN.md).

func opEcmulscalarverify(c *ExecContext) error {
	result, err := c.PopStack()
	if err != nil {
		return err
	}
	point, err := c.PopStack()
	if err != nil {
		return err
	}
	scalar, err := c.PopStack()
	if err != nil {
		return err
	}
	_ = result.SetPossibleSizes([]int{33})
	_ = point.SetPossibleSizes([]int{33})
	_ = scalar.SetPossibleSizes([]int{32})

	verdict := c.newCompound("ECMULSCALARVERIFY", "ECMULSCALARVERIFY", []*symval.SymValue{point, scalar, result}, func(args [][]byte) ([]byte, error) {
		ok, perr := static.ProbeECMulScalarVerify(args[0], args[1], args[2])
		if perr != nil {
			return nil, perr
		}
		if ok {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(verdict, symval.FailEcmultverify)
	c.AddEnforcement(verdict, string(symval.FailEcmultverify), true)
	return nil
}

func opTweakverify(c *ExecContext) error {
	outputKey, err := c.PopStack()
	if err != nil {
		return err
	}
	tweak, err := c.PopStack()
	if err != nil {
		return err
	}
	internalKey, err := c.PopStack()
	if err != nil {
		return err
	}
	_ = internalKey.SetPossibleSizes([]int{32})
	_ = tweak.SetPossibleSizes([]int{32})
	_ = outputKey.SetPossibleSizes([]int{32})

	verdict := c.newCompound("TWEAKVERIFY", "TWEAKVERIFY", []*symval.SymValue{internalKey, tweak, outputKey}, func(args [][]byte) ([]byte, error) {
		ok, perr := static.ProbeTweakAdd(args[0], args[1], args[2])
		if perr != nil {
			return nil, perr
		}
		if ok {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(verdict, symval.FailTweakverify)
	c.AddEnforcement(verdict, string(symval.FailTweakverify), true)
	return nil
}
