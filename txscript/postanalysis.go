package txscript

// ProcessAlwaysTrueEnforcements implements spec.md 4.E
// process_always_true_enforcements: groups enforcements by pc across every
// feasible leaf. When every feasible leaf reaching a pc carries an
// enforcement with a matching canonical_repr, those instances are flagged
// globally always-true (rendered `<*>` by the formatter); a repr shared by
// a proper subset of leaves is flagged path-local (`{*}`).
func ProcessAlwaysTrueEnforcements(root *Branchpoint) {
	var feasible []*Branchpoint
	for _, l := range root.Leaves() {
		if l.Ctx.Failure == nil {
			feasible = append(feasible, l)
		}
	}
	if len(feasible) == 0 {
		return
	}

	perLeafByPC := make([]map[int]map[string]bool, len(feasible))
	pcSet := map[int]bool{}
	for i, l := range feasible {
		m := map[int]map[string]bool{}
		for _, e := range l.Ctx.Enforcements {
			if m[e.PC] == nil {
				m[e.PC] = map[string]bool{}
			}
			m[e.PC][e.Cond.CanonicalRepr(false)] = true
			pcSet[e.PC] = true
		}
		perLeafByPC[i] = m
	}

	for pc := range pcSet {
		present := 0
		var common map[string]bool
		for _, m := range perLeafByPC {
			s, ok := m[pc]
			if !ok {
				continue
			}
			present++
			if common == nil {
				common = map[string]bool{}
				for k := range s {
					common[k] = true
				}
			} else {
				for k := range common {
					if !s[k] {
						delete(common, k)
					}
				}
			}
		}
		if len(common) == 0 {
			continue
		}
		global := present == len(feasible)
		for _, l := range feasible {
			for i := range l.Ctx.Enforcements {
				e := &l.Ctx.Enforcements[i]
				if e.PC != pc || !common[e.Cond.CanonicalRepr(false)] {
					continue
				}
				if global {
					e.IsAlwaysTrueGlobal = true
				} else {
					e.IsAlwaysTrueInPath = true
				}
			}
		}
	}
}

func cloneEnf(m map[string]Enforcement) map[string]Enforcement {
	out := make(map[string]Enforcement, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func intersectEnf(a, b map[string]Enforcement) map[string]Enforcement {
	out := map[string]Enforcement{}
	for k, v := range a {
		if _, ok := b[k]; ok {
			out[k] = v
		}
	}
	return out
}

func toBoolSet(m map[string]Enforcement) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// ProcessUniqueEnforcements implements spec.md 4.E process_unique_enforcements:
// recursively computes, at every branchpoint, the AND (intersection) and OR
// (union) of enforcement sets across children by canonical_repr. Each
// child's locally unique enforcements are those in its own AND set minus
// the OR set of every sibling. Returns this node's own (and, or) sets so
// the parent call can use them.
func ProcessUniqueEnforcements(bp *Branchpoint) (and, or map[string]Enforcement) {
	if bp.IsLeaf() {
		m := map[string]Enforcement{}
		for _, e := range bp.Ctx.Enforcements {
			m[e.Cond.CanonicalRepr(false)] = e
		}
		bp.SeenEnforcements = toBoolSet(m)
		return m, m
	}

	childAnd := make([]map[string]Enforcement, len(bp.Children))
	childOr := make([]map[string]Enforcement, len(bp.Children))
	for i, child := range bp.Children {
		ca, co := ProcessUniqueEnforcements(child)
		childAnd[i], childOr[i] = ca, co
	}

	orSet := map[string]Enforcement{}
	for _, co := range childOr {
		for k, v := range co {
			orSet[k] = v
		}
	}
	var andSet map[string]Enforcement
	for i, ca := range childAnd {
		if i == 0 {
			andSet = cloneEnf(ca)
		} else {
			andSet = intersectEnf(andSet, ca)
		}
	}
	if andSet == nil {
		andSet = map[string]Enforcement{}
	}
	bp.SeenEnforcements = toBoolSet(orSet)

	for i, child := range bp.Children {
		otherOR := map[string]bool{}
		for j, co := range childOr {
			if j == i {
				continue
			}
			for k := range co {
				otherOR[k] = true
			}
		}
		var unique []Enforcement
		for k, v := range childAnd[i] {
			if !otherOR[k] {
				unique = append(unique, v)
			}
		}
		child.UniqueEnforcements = unique
	}

	return andSet, orSet
}

// ProcessUnusedValues implements spec.md 4.E process_unused_values: per
// leaf, the leaf's own unused-value set; per interior node, the
// intersection over children by canonical_repr (a value is only globally
// unused if every path left it unused).
func ProcessUnusedValues(bp *Branchpoint) map[string]bool {
	if bp.IsLeaf() {
		return bp.Ctx.UnusedValues()
	}
	var result map[string]bool
	for i, child := range bp.Children {
		cu := ProcessUnusedValues(child)
		if i == 0 {
			result = map[string]bool{}
			for k := range cu {
				result[k] = true
			}
		} else {
			for k := range result {
				if !cu[k] {
					delete(result, k)
				}
			}
		}
	}
	if result == nil {
		result = map[string]bool{}
	}
	return result
}
