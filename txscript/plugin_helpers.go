package txscript

import "github.com/dgpv/bsst-go/symval"

// execHelpers adapts *ExecContext to plugin.Helpers (spec.md §6 "Helpers"),
// the narrow view a plugin hook gets back into the running context. Values
// cross the interface{} boundary as *symval.SymValue; a plugin that only
// forwards them back through Push/PopStack never needs to know that.
type execHelpers struct {
	c *ExecContext
}

func newExecHelpers(c *ExecContext) execHelpers { return execHelpers{c: c} }

func (h execHelpers) StackTop(i int) (interface{}, error) {
	v, err := h.c.StackTop(i)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h execHelpers) StackTop64(i int) (int64, error) {
	v, err := h.c.StackTop(i)
	if err != nil {
		return 0, err
	}
	if err := v.RequestView(symval.Int64, 0); err != nil {
		return 0, err
	}
	n, _, err := v.AsLE64()
	return n, err
}

func (h execHelpers) Push(v interface{}) {
	sv, ok := v.(*symval.SymValue)
	if !ok {
		return
	}
	_ = h.c.Push(sv)
}

func (h execHelpers) PopStack() (interface{}, error) {
	v, err := h.c.PopStack()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h execHelpers) Erase(i int) {
	depth := -i
	if depth < 1 || depth > len(h.c.Stack) {
		return
	}
	pos := len(h.c.Stack) - depth
	h.c.Stack = append(h.c.Stack[:pos], h.c.Stack[pos+1:]...)
}
