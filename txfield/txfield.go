// Package txfield implements the lazy, memoized Transaction Field Model of
// spec.md §6 "TransactionField map" / SPEC_FULL.md component G: a
// per-field mapping from index to SymValue, created and constrained on
// first access, reused afterwards. A symbolic (non-static) index collapses
// to a single shared entry per field — the "uninterpreted-function
// application over the byte-sequence sort" spec.md describes, modeled
// here as one memoized symbolic leaf per field rather than one per
// concrete index.
package txfield

import (
	"fmt"

	"github.com/dgpv/bsst-go/static"
	"github.com/dgpv/bsst-go/symval"
)

// Field names a queryable transaction-introspection value.
type Field int

const (
	PrevoutHash Field = iota
	PrevoutN
	Sequence
	InputScriptPubKey
	InputValue
	InputAsset
	InputAssetPrefix
	OutputScriptPubKey
	OutputValue
	OutputAsset
	OutputAssetPrefix
	Locktime
	Version
	Weight
	InputCount
	OutputCount
)

func (f Field) String() string {
	switch f {
	case PrevoutHash:
		return "prevout_hash"
	case PrevoutN:
		return "prevout_n"
	case Sequence:
		return "sequence"
	case InputScriptPubKey:
		return "input_scriptpubkey"
	case InputValue:
		return "input_value"
	case InputAsset:
		return "input_asset"
	case InputAssetPrefix:
		return "input_asset_prefix"
	case OutputScriptPubKey:
		return "output_scriptpubkey"
	case OutputValue:
		return "output_value"
	case OutputAsset:
		return "output_asset"
	case OutputAssetPrefix:
		return "output_asset_prefix"
	case Locktime:
		return "locktime"
	case Version:
		return "version"
	case Weight:
		return "weight"
	case InputCount:
		return "input_count"
	case OutputCount:
		return "output_count"
	default:
		return "field"
	}
}

// MaxMoney bounds explicit value fields (spec.md 3 "explicit value ∈ [0,
// MAX_MONEY]"), matching Bitcoin consensus's 21e6 BTC cap expressed in
// satoshis.
const MaxMoney int64 = 21000000 * 100000000

// MaxTxSize bounds TXWEIGHT (spec.md §8 SC-5: "weight upper bound is
// max_tx_size*4", with SC-5's own boundary script fixing the product at
// 4000000) — the standard max-block-weight figure (4,000,000 weight
// units) expressed as a vsize, matching what SC-5's fixture requires.
// Recorded as an Open Question decision in DESIGN.md.
const MaxTxSize int64 = 1000000

// MaxScriptElementSize bounds generic byte-sequence fields the same way
// opcode pushes are bounded (spec.md 4.B "data_too_long").
const MaxScriptElementSize = 10000

// Comparison-kind tags a Store attaches to the range assertions it adds to
// the sink, matching the solver package's Kind vocabulary.
const (
	kindLessThanOrEqual    = "LESSTHANOREQUAL"
	kindGreaterThanOrEqual = "GREATERTHANOREQUAL"
)

// Store is the per-run field memo table. One Store exists per Environment
// (spec.md: "append-only; cloning is by structural copy"); ExecContext
// clones share the same Store pointer, since the field values themselves
// are immutable symbolic identities just like any other SymValue. The
// constraint sink is supplied per call rather than bound at construction,
// since each ExecContext branch owns its own solver frame and a value
// memoized by one branch must still have its bounds asserted into whatever
// branch asks for it next (FrameStack.Add dedups by canonical repr, so
// re-asserting on a cache hit is harmless).
type Store struct {
	nameSeq *symval.NameSeq
	memo    map[string]*symval.SymValue
}

// NewStore returns an empty field store bound to nameSeq (the Environment's
// unique-name counter).
func NewStore(nameSeq *symval.NameSeq) *Store {
	return &Store{nameSeq: nameSeq, memo: make(map[string]*symval.SymValue)}
}

func indexKey(index *symval.SymValue) string {
	if index == nil {
		return "-"
	}
	if b, ok := index.StaticBytes(); ok {
		return fmt.Sprintf("0x%x", b)
	}
	// Non-static index: every symbolic lookup of this field collapses to
	// the same shared entry, per spec.md 3's uninterpreted-function note.
	return "sym"
}

// Get returns the memoized SymValue for field at index, creating it on
// first access and (re-)applying its constraints into sink every call, so
// whichever branch is asking gets the bound in its own solver frame.
func (s *Store) Get(sink symval.ConstraintSink, field Field, index *symval.SymValue, pc int) *symval.SymValue {
	key := fmt.Sprintf("%d:%s", field, indexKey(index))
	v, ok := s.memo[key]
	if !ok {
		seq := s.nameSeq.Next(pc)
		name := field.String()
		un := symval.MakeUniqueName(symval.UniqueNameParams{OpName: name, PC: pc, IntraPCSeqNum: seq})
		v = symval.NewLeaf(un, name, pc)
		s.memo[key] = v
	}
	s.constrain(sink, field, v, pc)
	return v
}

// All returns every field value created so far, keyed by its memo key, for
// finalize's model-request construction (spec.md 4.F step 5: transaction
// fields participate in the solver model alongside witnesses and
// placeholders).
func (s *Store) All() map[string]*symval.SymValue {
	out := make(map[string]*symval.SymValue, len(s.memo))
	for k, v := range s.memo {
		out[k] = v
	}
	return out
}

func (s *Store) constrain(sink symval.ConstraintSink, field Field, v *symval.SymValue, pc int) {
	switch field {
	case PrevoutHash:
		_ = v.SetPossibleSizes([]int{32})
	case PrevoutN, Sequence, Locktime, Version:
		_ = v.SetPossibleSizes([]int{4})
	case InputAssetPrefix, OutputAssetPrefix:
		_ = v.SetPossibleValues([][]byte{{1}, {10}, {11}})
	case InputValue, OutputValue:
		s.assertScriptNumBounds(sink, v, 0, MaxMoney, pc)
	case Weight:
		s.assertScriptNumBounds(sink, v, 0, MaxTxSize*4, pc)
	case InputScriptPubKey, OutputScriptPubKey:
		// Bounded the same way any byte-sequence push is (data_too_long),
		// not by a separate Sizes constraint here.
	case InputAsset, OutputAsset:
		_ = v.SetPossibleSizes([]int{32, 33})
	case InputCount, OutputCount:
		s.assertScriptNumBounds(sink, v, 0, int64(MaxScriptElementSize), pc)
	}
}

// assertScriptNumBounds requests the SCRIPT_NUM view on v and adds
// lo<=v<=hi as tracked assertions in sink, the same comparison-kind
// vocabulary solver.comparisonBound recognizes.
func (s *Store) assertScriptNumBounds(sink symval.ConstraintSink, v *symval.SymValue, lo, hi int64, pc int) {
	_ = v.RequestView(symval.ScriptNum, 5)
	loLit := symval.NewLeaf("", "", pc)
	_ = loLit.SetStatic(static.ScriptNumEncode(lo))
	hiLit := symval.NewLeaf("", "", pc)
	_ = hiLit.SetStatic(static.ScriptNumEncode(hi))

	geLo := symval.NewCompound("", kindGreaterThanOrEqual, kindGreaterThanOrEqual, pc, []*symval.SymValue{v, loLit}, nil)
	leHi := symval.NewCompound("", kindLessThanOrEqual, kindLessThanOrEqual, pc, []*symval.SymValue{v, hiLit}, nil)
	sink.Assert(geLo, symval.FailArgumentAboveBounds, pc)
	sink.Assert(leHi, symval.FailArgumentAboveBounds, pc)
}
