// Package symval implements SymValue, the polymorphic symbolic value that
// sits on stacks, altstacks, transaction fields, or as an intermediate
// expression (spec.md 3 "SymValue").
package symval

// View is one of the four representations a SymValue can be asked to expose.
// Requesting a view (via RequestView) is idempotent. It records that the
// view is in use (and, for ScriptNum, the max byte size); it adds no
// cross-view consistency or size constraints to any solver frame.
type View int

const (
	// ByteSeq is the raw byte-string view every value implicitly has.
	ByteSeq View = iota
	// ScriptNum is the signed little-endian variable-length script integer
	// view, bounded to a caller-chosen max byte size (4, or 5 for the
	// ADD/SUB/1ADD/1SUB/CLTV/CSV family).
	ScriptNum
	// Int64 is the fixed 8-byte little-endian view used by the Elements
	// 64-bit arithmetic opcodes.
	Int64
	// Length is the byte-length-as-integer view.
	Length
)

func (v View) String() string {
	switch v {
	case ByteSeq:
		return "byte_seq"
	case ScriptNum:
		return "script_num"
	case Int64:
		return "int64"
	case Length:
		return "length"
	default:
		return "unknown_view"
	}
}
