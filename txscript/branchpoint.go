package txscript

// Branchpoint is a node in the branch tree (spec.md 3 "Branchpoint"):
// either a leaf owning a live ExecContext, or an interior node with
// children. Post-analysis results (UniqueEnforcements, SeenEnforcements)
// live here rather than on the context, since they are properties of a
// subtree, not of one leaf.
type Branchpoint struct {
	PC          int
	Designation string
	Index       int
	Parent      *Branchpoint
	Children    []*Branchpoint
	Ctx         *ExecContext

	// Populated by process_unique_enforcements.
	UniqueEnforcements []Enforcement
	SeenEnforcements   map[string]bool
}

// IsLeaf reports whether bp owns a context directly.
func (bp *Branchpoint) IsLeaf() bool {
	return bp.Ctx != nil
}

// WalkBranches performs a depth-first traversal: on interior nodes,
// descend into children first, then call cb (spec.md 4.E walk_branches).
// If popFrames is true, each leaf child's context has its solver frame
// popped after that child is walked, mirroring the "executing" traversal
// mode that drives the engine forward branch by branch.
func (bp *Branchpoint) WalkBranches(cb func(*Branchpoint), popFrames bool) {
	for _, child := range bp.Children {
		child.WalkBranches(cb, popFrames)
		if popFrames && child.IsLeaf() && child.Ctx.Frames != nil {
			child.Ctx.Frames.Pop()
		}
	}
	cb(bp)
}

// Leaves collects every leaf in this subtree, in traversal order.
func (bp *Branchpoint) Leaves() []*Branchpoint {
	if bp.IsLeaf() {
		return []*Branchpoint{bp}
	}
	var out []*Branchpoint
	for _, child := range bp.Children {
		out = append(out, child.Leaves()...)
	}
	return out
}

// GetValidBranches returns the children that (transitively) contain a
// non-failed leaf (spec.md 4.E get_valid_branches).
func (bp *Branchpoint) GetValidBranches() []*Branchpoint {
	var out []*Branchpoint
	for _, child := range bp.Children {
		if child.hasFeasibleLeaf() {
			out = append(out, child)
		}
	}
	return out
}

func (bp *Branchpoint) hasFeasibleLeaf() bool {
	if bp.IsLeaf() {
		return bp.Ctx.Failure == nil
	}
	for _, child := range bp.Children {
		if child.hasFeasibleLeaf() {
			return true
		}
	}
	return false
}
