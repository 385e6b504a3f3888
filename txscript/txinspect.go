package txscript

import (
	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
	"github.com/dgpv/bsst-go/txfield"
)

// Per-transaction inspection opcodes (spec.md 4.B "per-tx inspection
// opcodes"): each is a thin wrapper fetching its field from the shared,
// memoized txfield.Store, optionally indexed by a popped index (a
// non-static index reads the field's shared symbolic entry).

func txFieldOp(field txfield.Field, indexed bool) func(*ExecContext) error {
	return func(c *ExecContext) error {
		var idx *symval.SymValue
		if indexed {
			v, err := c.PopStack()
			if err != nil {
				return err
			}
			idx = v
		}
		return c.Push(c.Env.TxFields.Get(c.Frames, field, idx, c.PC))
	}
}

var (
	opInspectInputOutpointHash = txFieldOp(txfield.PrevoutHash, true)
	opInspectInputOutpointN    = txFieldOp(txfield.PrevoutN, true)
	opInspectInputSequence     = txFieldOp(txfield.Sequence, true)
	opInspectInputScriptPubkey = txFieldOp(txfield.InputScriptPubKey, true)
	opInspectInputValue        = txFieldOp(txfield.InputValue, true)
	opInspectInputAsset        = txFieldOp(txfield.InputAsset, true)
	opInspectInputAssetPrefix  = txFieldOp(txfield.InputAssetPrefix, true)

	opInspectOutputScriptPubkey = txFieldOp(txfield.OutputScriptPubKey, true)
	opInspectOutputValue        = txFieldOp(txfield.OutputValue, true)
	opInspectOutputAsset        = txFieldOp(txfield.OutputAsset, true)
	opInspectOutputAssetPrefix  = txFieldOp(txfield.OutputAssetPrefix, true)

	opTxLocktime = txFieldOp(txfield.Locktime, false)
	opTxVersion  = txFieldOp(txfield.Version, false)
	opTxWeight   = txFieldOp(txfield.Weight, false)
	opInputCount = txFieldOp(txfield.InputCount, false)
	opOutputCount = txFieldOp(txfield.OutputCount, false)
)

// Legacy locktime opcodes (spec.md 4.B): both pop nothing, requesting the
// ScriptNum view on the top of stack (left in place — these are VERIFY
// opcodes that don't consume their argument) and asserting it's
// type-compatible with, and doesn't exceed, the transaction's own
// locktime/sequence field.

func opChecklocktimeverify(c *ExecContext) error {
	lock, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	if err := lock.RequestView(symval.ScriptNum, 5); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	txLock := c.Env.TxFields.Get(c.Frames, txfield.Locktime, nil, c.PC)

	const locktimeThreshold = 500000000
	sameType := c.newCompound("CLTV_TYPE_MATCH", "CLTV_TYPE_MATCH", []*symval.SymValue{lock, txLock}, func(args [][]byte) ([]byte, error) {
		a, err := static.ScriptNumDecode(args[0], false, 5)
		if err != nil {
			return nil, err
		}
		b, err := static.ScriptNumDecode(args[1], false, 5)
		if err != nil {
			return nil, err
		}
		if (a < locktimeThreshold) == (b < locktimeThreshold) {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(sameType, symval.FailLocktimeTypeMismatch)

	inEffect := c.newCompound("CLTV_SATISFIED", "CLTV_SATISFIED", []*symval.SymValue{lock, txLock}, func(args [][]byte) ([]byte, error) {
		a, err := static.ScriptNumDecode(args[0], false, 5)
		if err != nil {
			return nil, err
		}
		b, err := static.ScriptNumDecode(args[1], false, 5)
		if err != nil {
			return nil, err
		}
		if a <= b {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(inEffect, symval.FailLocktimeTimelockInEffect)
	c.AddEnforcement(inEffect, string(symval.FailLocktimeTimelockInEffect), true)

	nFinal := c.Env.TxFields.Get(c.Frames, txfield.Sequence, nil, c.PC)
	notFinal := c.newCompound("SEQUENCE_NOT_FINAL", "SEQUENCE_NOT_FINAL", []*symval.SymValue{nFinal}, func(args [][]byte) ([]byte, error) {
		n, err := static.LE32DecodeUnsigned(args[0])
		if err != nil {
			return nil, err
		}
		if n != 0xffffffff {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(notFinal, symval.FailCltvNsequenceFinal)
	return nil
}

const (
	sequenceLocktimeDisableFlag = uint64(1) << 31
	sequenceLocktimeTypeFlag    = uint64(1) << 22
	sequenceLocktimeMask        = uint64(0x0000ffff)
)

func opChecksequenceverify(c *ExecContext) error {
	seq, err := c.StackTop(-1)
	if err != nil {
		return err
	}
	if err := seq.RequestView(symval.ScriptNum, 5); err != nil {
		return c.Fail(NewOpaqueFailure(c.PC, err.Error()))
	}
	txVersion := c.Env.TxFields.Get(c.Frames, txfield.Version, nil, c.PC)
	txSequence := c.Env.TxFields.Get(c.Frames, txfield.Sequence, nil, c.PC)

	versionOK := c.newCompound("CSV_VERSION_OK", "CSV_VERSION_OK", []*symval.SymValue{txVersion}, func(args [][]byte) ([]byte, error) {
		v, err := static.ScriptNumDecode(args[0], false, 4)
		if err != nil {
			return nil, err
		}
		if v >= 2 {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(versionOK, symval.FailBadTxVersion)

	disabled := c.newCompound("CSV_DISABLED", "CSV_DISABLED", []*symval.SymValue{seq}, func(args [][]byte) ([]byte, error) {
		n, err := static.ScriptNumDecode(args[0], false, 5)
		if err != nil {
			return nil, err
		}
		if uint64(n)&sequenceLocktimeDisableFlag != 0 {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(c.notCompound(disabled), symval.FailNsequenceTypeMismatch)

	sameType := c.newCompound("CSV_TYPE_MATCH", "CSV_TYPE_MATCH", []*symval.SymValue{seq, txSequence}, func(args [][]byte) ([]byte, error) {
		a, err := static.ScriptNumDecode(args[0], false, 5)
		if err != nil {
			return nil, err
		}
		b, err := static.LE32DecodeUnsigned(args[1])
		if err != nil {
			return nil, err
		}
		aType := uint64(a) & sequenceLocktimeTypeFlag
		bType := uint64(b) & sequenceLocktimeTypeFlag
		if aType == bType {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(sameType, symval.FailNsequenceTypeMismatch)

	// The comparison is over the masked low 16 bits only. Each masked value
	// is a single opaque compound (CSV_MASK_ARG / CSV_MASK_TX) whose concrete
	// fold computes the mask via AdditiveDecomposition; no ADD-family
	// compounds are built for the solver.
	maskedArg := c.newCompound("CSV_MASK_ARG", "CSV_MASK_ARG", []*symval.SymValue{seq}, func(args [][]byte) ([]byte, error) {
		n, err := static.ScriptNumDecode(args[0], false, 5)
		if err != nil {
			return nil, err
		}
		return static.ScriptNumEncode(static.AdditiveDecomposition(n, sequenceLocktimeMask)), nil
	})
	maskedTx := c.newCompound("CSV_MASK_TX", "CSV_MASK_TX", []*symval.SymValue{txSequence}, func(args [][]byte) ([]byte, error) {
		n, err := static.LE32DecodeUnsigned(args[0])
		if err != nil {
			return nil, err
		}
		return static.ScriptNumEncode(static.AdditiveDecomposition(int64(n), sequenceLocktimeMask)), nil
	})

	inEffect := c.newCompound("CSV_SATISFIED", "LESSTHANOREQUAL", []*symval.SymValue{maskedArg, maskedTx}, func(args [][]byte) ([]byte, error) {
		a, err := static.ScriptNumDecode(args[0], false, 9)
		if err != nil {
			return nil, err
		}
		b, err := static.ScriptNumDecode(args[1], false, 9)
		if err != nil {
			return nil, err
		}
		if a <= b {
			return []byte{1}, nil
		}
		return nil, nil
	})
	c.Assert(inEffect, symval.FailNsequenceTimelockInEffect)
	c.AddEnforcement(inEffect, string(symval.FailNsequenceTimelockInEffect), true)
	return nil
}
