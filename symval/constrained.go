package symval

import (
	"bytes"
	"fmt"
)

// ConstrainedValue is the optional "enumerated possible concrete values
// and/or sizes" set from spec.md 3 ("SymValue" / constrained_value).
// A nil *ConstrainedValue means unconstrained. Mutations are always
// intersections, never widening; an intersection that would empty the set
// is reported as a script failure by the caller.
type ConstrainedValue struct {
	// Values, when non-nil, is the finite set of concrete byte-string
	// values this SymValue may take. An empty (non-nil) slice means the
	// value is infeasible.
	Values [][]byte
	// Sizes, when non-nil, is the finite set of permitted byte lengths.
	Sizes map[int]bool
}

// IsStatic reports whether exactly one concrete value remains possible.
func (c *ConstrainedValue) IsStatic() bool {
	return c != nil && len(c.Values) == 1
}

// StaticValue returns the single remaining concrete value. Callers must
// check IsStatic first.
func (c *ConstrainedValue) StaticValue() []byte {
	return c.Values[0]
}

func cloneValues(vals [][]byte) [][]byte {
	if vals == nil {
		return nil
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = append([]byte{}, v...)
	}
	return out
}

func cloneSizes(sizes map[int]bool) map[int]bool {
	if sizes == nil {
		return nil
	}
	out := make(map[int]bool, len(sizes))
	for k, v := range sizes {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy, safe to mutate independently (used when
// ExecContext clones on branch fork, spec.md 4.D clone()).
func (c *ConstrainedValue) Clone() *ConstrainedValue {
	if c == nil {
		return nil
	}
	return &ConstrainedValue{Values: cloneValues(c.Values), Sizes: cloneSizes(c.Sizes)}
}

func containsBytes(set [][]byte, v []byte) bool {
	for _, e := range set {
		if bytes.Equal(e, v) {
			return true
		}
	}
	return false
}

// IntersectValues narrows the value set to the intersection with vals,
// returning an error if the result would be empty.
func (c *ConstrainedValue) IntersectValues(vals [][]byte) (*ConstrainedValue, error) {
	next := c.Clone()
	if next == nil {
		next = &ConstrainedValue{}
	}
	if next.Values == nil {
		next.Values = cloneValues(vals)
	} else {
		var narrowed [][]byte
		for _, v := range next.Values {
			if containsBytes(vals, v) {
				narrowed = append(narrowed, v)
			}
		}
		next.Values = narrowed
	}
	if next.Sizes != nil {
		var filtered [][]byte
		for _, v := range next.Values {
			if next.Sizes[len(v)] {
				filtered = append(filtered, v)
			}
		}
		next.Values = filtered
	}
	if len(next.Values) == 0 {
		return nil, fmt.Errorf("constrained value set emptied by value intersection")
	}
	return next, nil
}

// IntersectSizes narrows the size set to the intersection with sizes.
func (c *ConstrainedValue) IntersectSizes(sizes []int) (*ConstrainedValue, error) {
	next := c.Clone()
	if next == nil {
		next = &ConstrainedValue{}
	}
	wanted := make(map[int]bool, len(sizes))
	for _, s := range sizes {
		wanted[s] = true
	}
	if next.Sizes == nil {
		next.Sizes = wanted
	} else {
		merged := make(map[int]bool)
		for s := range next.Sizes {
			if wanted[s] {
				merged[s] = true
			}
		}
		next.Sizes = merged
	}
	if next.Values != nil {
		var filtered [][]byte
		for _, v := range next.Values {
			if next.Sizes[len(v)] {
				filtered = append(filtered, v)
			}
		}
		next.Values = filtered
		if len(next.Values) == 0 {
			return nil, fmt.Errorf("constrained value set emptied by size intersection")
		}
	}
	if len(next.Sizes) == 0 {
		return nil, fmt.Errorf("constrained size set emptied by size intersection")
	}
	return next, nil
}
