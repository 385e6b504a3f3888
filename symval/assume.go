package symval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgpv/bsst-go/static"
)

// AssumeClause is one comma-separated term of a `bsst-assume($ident): ...`
// source comment (spec.md §6's directive mini-language): either an exact
// value the placeholder may take, or an inequality against a constant.
type AssumeClause struct {
	// Op is "", "!=", "<", "<=", ">", or ">=". "" means Value is one member
	// of an exact-value enumeration.
	Op    string
	Value int64
}

// AssumeDirective is a fully parsed assume-comment body.
type AssumeDirective struct {
	Clauses []AssumeClause
}

// ParseAssumeDirective parses the text following `bsst-assume($ident): `,
// a comma-separated list of bare integers (an exact-value enumeration) and/
// or `<op>N` inequality terms, e.g. "1, 2, 5" or "!=0, >10".
func ParseAssumeDirective(text string) (*AssumeDirective, error) {
	parts := strings.Split(text, ",")
	d := &AssumeDirective{}
	for _, raw := range parts {
		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}
		op, numStr := splitOp(term)
		n, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bsst-assume: invalid term %q: %w", term, err)
		}
		d.Clauses = append(d.Clauses, AssumeClause{Op: op, Value: n})
	}
	if len(d.Clauses) == 0 {
		return nil, fmt.Errorf("bsst-assume: empty directive")
	}
	return d, nil
}

func splitOp(term string) (op, rest string) {
	for _, candidate := range []string{"!=", "<=", ">=", "<", ">"} {
		if strings.HasPrefix(term, candidate) {
			return candidate, term[len(candidate):]
		}
	}
	return "", term
}

// Comparison-kind tags matching the solver package's vocabulary
// (solver/interval.go comparisonKinds): assume.go is in the symval package
// and cannot import solver (solver imports symval), so the tag strings are
// duplicated here rather than shared, the same layering split txfield.go
// already uses for its own bound assertions.
const (
	kindLessThan           = "LESSTHAN"
	kindLessThanOrEqual    = "LESSTHANOREQUAL"
	kindGreaterThan        = "GREATERTHAN"
	kindGreaterThanOrEqual = "GREATERTHANOREQUAL"
)

// ApplyAssumeDirective narrows target according to d: bare-value clauses
// intersect target's possible-value set (SetPossibleValues, OR semantics
// across bare values listed together); inequality and not-equal clauses
// are recorded as tracked assertions in sink, using the same comparison
// Kind vocabulary the solver's interval propagation recognizes, so an
// assume directive that contradicts the script's own logic is caught the
// same way any other infeasible branch is.
func ApplyAssumeDirective(sink ConstraintSink, target *SymValue, d *AssumeDirective, code FailCode, pc int) error {
	var exact [][]byte
	for _, cl := range d.Clauses {
		if cl.Op == "" {
			exact = append(exact, static.ScriptNumEncode(cl.Value))
		}
	}
	if len(exact) > 0 {
		if err := target.SetPossibleValues(exact); err != nil {
			return err
		}
	}
	if err := target.RequestView(ScriptNum, 5); err != nil {
		return err
	}
	for _, cl := range d.Clauses {
		if cl.Op == "" {
			continue
		}
		lit := NewLeaf("", "", pc)
		if err := lit.SetStatic(static.ScriptNumEncode(cl.Value)); err != nil {
			return err
		}
		if cl.Op == "!=" {
			eq := NewCompound("", "EQUAL", "EQUAL", pc, []*SymValue{target, lit}, func(args [][]byte) ([]byte, error) {
				if len(args[0]) == len(args[1]) {
					eq := true
					for i := range args[0] {
						if args[0][i] != args[1][i] {
							eq = false
							break
						}
					}
					if eq {
						return []byte{1}, nil
					}
				}
				return nil, nil
			})
			neq := NewCompound("", "NOT", "NOT", pc, []*SymValue{eq}, func(args [][]byte) ([]byte, error) {
				if ScriptBool(args[0]) {
					return nil, nil
				}
				return []byte{1}, nil
			})
			sink.Assert(neq, code, pc)
			continue
		}
		kind := map[string]string{
			"<":  kindLessThan,
			"<=": kindLessThanOrEqual,
			">":  kindGreaterThan,
			">=": kindGreaterThanOrEqual,
		}[cl.Op]
		cmp := NewCompound("", kind, kind, pc, []*SymValue{target, lit}, func(args [][]byte) ([]byte, error) {
			na, err := static.ScriptNumDecode(args[0], false, 9)
			if err != nil {
				return nil, err
			}
			nb, err := static.ScriptNumDecode(args[1], false, 9)
			if err != nil {
				return nil, err
			}
			ok := false
			switch cl.Op {
			case "<":
				ok = na < nb
			case "<=":
				ok = na <= nb
			case ">":
				ok = na > nb
			case ">=":
				ok = na >= nb
			}
			if ok {
				return []byte{1}, nil
			}
			return nil, nil
		})
		sink.Assert(cmp, code, pc)
	}
	return nil
}
