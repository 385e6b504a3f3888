// Package solver implements the constraint/solver frame stack of spec.md
// 4.C: push/pop discipline mirroring the branch tree, failure-code
// tracking, and the pluggable Backend that decides feasibility and
// extracts model values.
package solver

import (
	"fmt"

	"github.com/dgpv/bsst-go/symval"
)

// Assertion is one recorded entry of a frame: a boolean-valued SymValue,
// its tracking name (for unsat-core attribution when tracked), and the
// enforcement it originated from, if any.
type Assertion struct {
	Cond             *symval.SymValue
	Code             symval.FailCode
	PC               int
	Tracked          bool
	EnforcementOrigin bool
}

// TrackingName returns the "check_<code>~<N>@L<pc>" form spec.md §4.C and
// §7 describe for unsat-core tracking names.
func (a Assertion) TrackingName(n int) string {
	return a.Code.TrackingName() + fmt.Sprintf("~%d@L%d", n, a.PC)
}

// Frame is a single layer of assertions, mutated by opcode handlers.
type Frame struct {
	assertions []Assertion
	seen       map[string]bool // de-dup by expression identity (canonical repr)
}

func newFrame() *Frame {
	return &Frame{seen: make(map[string]bool)}
}

// FrameStack is the push/pop stack of spec.md 4.C, mirroring the branch
// tree. The current (top) frame is what Add mutates.
type FrameStack struct {
	frames []*Frame
	// TrackAssertions is copied into the Tracked field of every added
	// Assertion. Untracked assertions are stored as they are: FrameStack
	// does not re-encode them in terms of a FailCodeID.
	TrackAssertions bool
	nextFailCodeID  map[symval.FailCode]int
}

// NewFrameStack returns a stack with a single empty root frame.
func NewFrameStack(trackAssertions bool) *FrameStack {
	return &FrameStack{
		frames:          []*Frame{newFrame()},
		TrackAssertions: trackAssertions,
		nextFailCodeID:  make(map[symval.FailCode]int),
	}
}

// Push saves the current frame and starts a new empty one, mirroring the
// branch tree (spec.md 4.C "push").
func (s *FrameStack) Push() {
	s.frames = append(s.frames, newFrame())
}

// Pop discards the current frame (spec.md 4.C "pop").
func (s *FrameStack) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth reports the number of live frames.
func (s *FrameStack) Depth() int {
	return len(s.frames)
}

// Add records cond (tagged with a failure code and pc) into the current
// frame, de-duplicating by expression identity across the whole stack.
func (s *FrameStack) Add(cond *symval.SymValue, code symval.FailCode, pc int) {
	key := cond.CanonicalRepr(false)
	for _, f := range s.frames {
		if f.seen[key] {
			return
		}
	}
	top := s.frames[len(s.frames)-1]
	top.seen[key] = true
	top.assertions = append(top.assertions, Assertion{
		Cond: cond, Code: code, PC: pc, Tracked: s.TrackAssertions,
	})
}

// Assert implements symval.ConstraintSink so SymValue.RequestView and
// opcode handlers can add constraints without importing this package.
func (s *FrameStack) Assert(cond *symval.SymValue, code symval.FailCode, pc int) {
	s.Add(cond, code, pc)
}

// All returns every assertion live across the full stack (root through
// current frame), in frame order then insertion order.
func (s *FrameStack) All() []Assertion {
	var out []Assertion
	for _, f := range s.frames {
		out = append(out, f.assertions...)
	}
	return out
}

// Clone deep-copies the stack, used when ExecContext clones on branch
// fork.
func (s *FrameStack) Clone() *FrameStack {
	clone := &FrameStack{
		TrackAssertions: s.TrackAssertions,
		nextFailCodeID:  make(map[symval.FailCode]int, len(s.nextFailCodeID)),
	}
	for k, v := range s.nextFailCodeID {
		clone.nextFailCodeID[k] = v
	}
	for _, f := range s.frames {
		nf := newFrame()
		nf.assertions = append([]Assertion{}, f.assertions...)
		for k, v := range f.seen {
			nf.seen[k] = v
		}
		clone.frames = append(clone.frames, nf)
	}
	return clone
}

// FailCodeID assigns a dense integer id the first time code is seen, used
// only when assertions are not tracked (spec.md 4.C).
func (s *FrameStack) FailCodeID(code symval.FailCode) int {
	if id, ok := s.nextFailCodeID[code]; ok {
		return id
	}
	id := len(s.nextFailCodeID)
	s.nextFailCodeID[code] = id
	return id
}
