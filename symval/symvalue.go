package symval

import (
	"fmt"

	"github.com/dgpv/bsst-go/static"
)

// NameSeq synthesizes unique_name values deterministically in script
// traversal order (spec.md 3 "unique_name" / §5 "Ordering guarantees": the
// unique-name counters are monotone and must be produced in a deterministic,
// append-only traversal order). It is owned by the Environment and threaded
// explicitly rather than kept as package state, per spec.md §9's note on
// replacing ambient globals with explicit parameters.
type NameSeq struct {
	perPC map[int]int
}

// NewNameSeq returns an empty sequence counter.
func NewNameSeq() *NameSeq {
	return &NameSeq{perPC: make(map[int]int)}
}

// Next returns the next intra-pc sequence number for pc, starting at 0.
func (s *NameSeq) Next(pc int) int {
	n := s.perPC[pc]
	s.perPC[pc]++
	return n
}

// Clone deep-copies the counters (used when ExecContext clones on branch;
// each branch continues numbering independently from the fork point).
func (s *NameSeq) Clone() *NameSeq {
	n := &NameSeq{perPC: make(map[int]int, len(s.perPC))}
	for k, v := range s.perPC {
		n.perPC[k] = v
	}
	return n
}

// UniqueNameParams is the tuple spec.md 3 derives unique_name from: the
// producing opcode name (or "_" for a non-opcode leaf), the program
// counter, the source line, the branch that created the value (its pc/line
// and branch index), and an intra-pc sequence number disambiguating
// multiple values produced at the same pc.
type UniqueNameParams struct {
	OpName         string
	PC             int
	Line           int
	BranchPC       int
	BranchLine     int
	BranchIndex    int
	IntraPCSeqNum  int
}

// MakeUniqueName synthesizes the stable identifier used as a map key
// throughout the engine.
func MakeUniqueName(p UniqueNameParams) string {
	op := p.OpName
	if op == "" {
		op = "_"
	}
	return fmt.Sprintf("%s@%d:%d#%d:%d.%d/%d", op, p.PC, p.Line, p.BranchPC, p.BranchLine, p.BranchIndex, p.IntraPCSeqNum)
}

// ConstraintSink receives constraints an opcode handler or RequestView
// wants recorded against the current solver frame. It is satisfied by
// solver.FrameStack without symval importing the solver package (solver imports
// symval instead, to use *SymValue as its assertion payload).
type ConstraintSink interface {
	Assert(cond *SymValue, code FailCode, pc int)
}

// Evaluator is the pure concrete semantics of the opcode that produced a
// compound SymValue, applied to its arguments' concrete byte
// representations in order. Leaves (witnesses, placeholders, transaction
// field atoms) have a nil Evaluator.
type Evaluator func(args [][]byte) ([]byte, error)

// SymValue is the polymorphic symbolic value of spec.md 3. Once created it
// is treated as an immutable identity reference: Args, Name, SrcPC never
// change, but Constrained may be tightened (never widened) over its
// lifetime, and Views records which solver-facing views have been
// materialized.
type SymValue struct {
	UniqueName string
	Name       string
	// Kind tags the producing opcode family for the solver's propagation
	// rules (e.g. "ADD", "HASH256", "ASBOOL"); empty for opaque/leaf values.
	Kind string
	Args []*SymValue
	SrcPC int

	views map[View]bool
	// ScriptNumMaxSize is the byte-size bound active for the ScriptNum
	// view, when requested (4, or 5 for the ADD/SUB/1ADD/1SUB/CLTV/CSV
	// family).
	ScriptNumMaxSize int

	Constrained *ConstrainedValue

	DataReference        string
	DataReferenceAliases []string

	SrcWitnessNo *int

	eval Evaluator

	// staticCache memoizes StaticBytes's result once all Args fold.
	staticCache    []byte
	staticCacheSet bool
}

// NewLeaf constructs a leaf SymValue (a witness, a placeholder, or any
// other value with no symbolic parents).
func NewLeaf(uniqueName, name string, srcPC int) *SymValue {
	return &SymValue{UniqueName: uniqueName, Name: name, SrcPC: srcPC, views: map[View]bool{}}
}

// NewCompound constructs a value produced by an opcode from parent
// SymValues, carrying the pure function that folds it to a concrete value
// once every argument is static.
func NewCompound(uniqueName, name, kind string, srcPC int, args []*SymValue, eval Evaluator) *SymValue {
	return &SymValue{
		UniqueName: uniqueName,
		Name:       name,
		Kind:       kind,
		Args:       args,
		SrcPC:      srcPC,
		views:      map[View]bool{},
		eval:       eval,
	}
}

// IsStatic reports whether a single concrete value is currently known,
// either because it was directly constrained to one value or because every
// argument is itself static and folding succeeds.
func (v *SymValue) IsStatic() bool {
	_, ok := v.StaticBytes()
	return ok
}

// StaticBytes returns the concrete byte representation if known.
func (v *SymValue) StaticBytes() ([]byte, bool) {
	if v.Constrained.IsStatic() {
		return v.Constrained.StaticValue(), true
	}
	if v.staticCacheSet {
		return v.staticCache, true
	}
	if v.eval == nil || len(v.Args) == 0 {
		return nil, false
	}
	argVals := make([][]byte, len(v.Args))
	for i, a := range v.Args {
		b, ok := a.StaticBytes()
		if !ok {
			return nil, false
		}
		argVals[i] = b
	}
	result, err := v.eval(argVals)
	if err != nil {
		return nil, false
	}
	v.staticCache = result
	v.staticCacheSet = true
	return result, true
}

// RequestView materializes view on v. Idempotent. Requesting both
// ScriptNum and Int64 on the same value is a fatal error per spec.md 4.A.
func (v *SymValue) RequestView(view View, scriptNumMaxSize int) error {
	if v.views == nil {
		v.views = map[View]bool{}
	}
	if view == ScriptNum && v.views[Int64] {
		return fmt.Errorf("mixing SCRIPT_NUM and INT64 views on the same value is a fatal error")
	}
	if view == Int64 && v.views[ScriptNum] {
		return fmt.Errorf("mixing SCRIPT_NUM and INT64 views on the same value is a fatal error")
	}
	if v.views[view] {
		if view == ScriptNum && scriptNumMaxSize > v.ScriptNumMaxSize {
			v.ScriptNumMaxSize = scriptNumMaxSize
		}
		return nil
	}
	v.views[view] = true
	if view == ScriptNum {
		if scriptNumMaxSize == 0 {
			scriptNumMaxSize = 4
		}
		v.ScriptNumMaxSize = scriptNumMaxSize
	}
	return nil
}

// HasView reports whether view was previously requested.
func (v *SymValue) HasView(view View) bool {
	return v.views != nil && v.views[view]
}

// SetStatic intersects the constrained set with {val}, failing if the
// result would be empty.
func (v *SymValue) SetStatic(val []byte) error {
	return v.SetPossibleValues([][]byte{val})
}

// SetPossibleValues intersects the constrained set with vals.
func (v *SymValue) SetPossibleValues(vals [][]byte) error {
	next, err := v.Constrained.IntersectValues(vals)
	if err != nil {
		return err
	}
	v.Constrained = next
	return nil
}

// SetPossibleSizes intersects the permitted-size set with sizes.
func (v *SymValue) SetPossibleSizes(sizes []int) error {
	next, err := v.Constrained.IntersectSizes(sizes)
	if err != nil {
		return err
	}
	v.Constrained = next
	return nil
}

// AsBool implements the script boolean rule: not (all-zero byte-sequence,
// except negative-zero is also false). Valid only when static.
func (v *SymValue) AsBool() (bool, bool) {
	b, ok := v.StaticBytes()
	if !ok {
		return false, false
	}
	return ScriptBool(b), true
}

// ScriptBool applies the "not all-zero except negative zero" rule to a raw
// byte-string, independent of any SymValue.
func ScriptBool(b []byte) bool {
	for i, by := range b {
		if by != 0 {
			if i == len(b)-1 && by == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// AsScriptNumInt decodes the static bytes as a script number bounded by
// ScriptNumMaxSize (4 when the ScriptNum view was never requested). Valid
// only when static.
func (v *SymValue) AsScriptNumInt(minimal bool) (int64, bool, error) {
	b, ok := v.StaticBytes()
	if !ok {
		return 0, false, nil
	}
	maxSize := v.ScriptNumMaxSize
	if maxSize == 0 {
		maxSize = 4
	}
	n, err := static.ScriptNumDecode(b, minimal, maxSize)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// AsLE64 decodes the static bytes as a signed 8-byte little-endian integer.
func (v *SymValue) AsLE64() (int64, bool, error) {
	b, ok := v.StaticBytes()
	if !ok {
		return 0, false, nil
	}
	n, err := static.LE64DecodeSigned(b)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// AsBytes returns the static byte representation.
func (v *SymValue) AsBytes() ([]byte, bool) {
	return v.StaticBytes()
}

// EvalWith applies v's producing evaluator directly to argVals, bypassing
// the requirement that v.Args themselves already be static. A solver
// backend uses this to fold a compound once it has derived concrete values
// for the compound's arguments through its own reasoning (e.g. union-find
// equality propagation), without mutating v itself.
func (v *SymValue) EvalWith(argVals [][]byte) ([]byte, bool) {
	if v.eval == nil {
		return nil, false
	}
	result, err := v.eval(argVals)
	if err != nil {
		return nil, false
	}
	return result, true
}

// CanonicalRepr builds the deterministic string used to compare two
// symbolic values across branches (spec.md 3 "canonical_repr"): built from
// name(args...) when Name is set, or the literal value for static leaves.
// When tagWithPC is true (the "tag-with-position" option), "@pc" is
// appended.
func (v *SymValue) CanonicalRepr(tagWithPC bool) string {
	var s string
	if b, ok := v.Constrained.staticOnly(); ok {
		s = fmt.Sprintf("0x%x", b)
	} else if v.Name != "" && len(v.Args) == 0 {
		s = v.Name
	} else if v.Name != "" {
		s = v.Name + "(" + argsRepr(v.Args, tagWithPC) + ")"
	} else {
		s = v.UniqueName
	}
	if tagWithPC {
		s += fmt.Sprintf("@%d", v.SrcPC)
	}
	return s
}

func argsRepr(args []*SymValue, tagWithPC bool) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ","
		}
		out += a.CanonicalRepr(tagWithPC)
	}
	return out
}

// ReadableRepr is like CanonicalRepr but honors data_references (rendered
// "&name") and the special CAT ("a.b") and "_%_" placeholder display rules
// from spec.md 4.A.
func (v *SymValue) ReadableRepr() string {
	if v.DataReference != "" {
		return "&" + v.DataReference
	}
	if v.Name == "_%_" && len(v.Args) > 0 {
		if n, ok, err := v.Args[0].AsScriptNumInt(true); ok && err == nil {
			return fmt.Sprintf("%d", n)
		}
	}
	if v.Kind == "CAT" && len(v.Args) == 2 {
		return v.Args[0].ReadableRepr() + "." + v.Args[1].ReadableRepr()
	}
	if b, ok := v.StaticBytes(); ok {
		return fmt.Sprintf("0x%x", b)
	}
	if v.Name != "" && len(v.Args) == 0 {
		return v.Name
	}
	if v.Name != "" {
		out := v.Name + "("
		for i, a := range v.Args {
			if i > 0 {
				out += ","
			}
			out += a.ReadableRepr()
		}
		return out + ")"
	}
	return v.UniqueName
}

func (c *ConstrainedValue) staticOnly() ([]byte, bool) {
	if c.IsStatic() {
		return c.StaticValue(), true
	}
	return nil, false
}
