// Package plugin defines the hook interface the (external) plugin loader
// binds to, per spec.md §6 "Plugin interface". The engine never loads
// plugin code itself; it only calls whichever Hooks implementation the
// host program registers, the same way the original's example plugins
// (example_op_plugin.py, op_example_bsst_plugin.py) claim unknown opcodes
// or observe script comments.
package plugin

// Helpers is the narrow surface a hook implementation is given back into
// the running context, matching spec.md §6's helper list.
type Helpers interface {
	StackTop(i int) (interface{}, error)
	StackTop64(i int) (int64, error)
	Push(v interface{})
	PopStack() (interface{}, error)
	Erase(i int)
}

// Hooks is the full set of lifecycle callbacks a plugin may implement.
// Embedding NoopHooks gives every callback a default no-op/non-claiming
// implementation, so a plugin only overrides the hooks it cares about —
// mirroring raw_input_bsst_plugin.py, which implements only
// ParseInputFile and leaves every other hook at its default.
type Hooks interface {
	// ParseInputFile lets a plugin supply an alternative script source
	// (e.g. raw hex) instead of the default text grammar. ok is false when
	// this plugin does not handle the given path/format.
	ParseInputFile(path string) (data []byte, ok bool)

	// PluginSettings receives a `--plugin-name=value` CLI argument.
	PluginSettings(valueStr string) error

	// PluginComment observes a source comment that isn't a recognized
	// directive (e.g. not `=>name`).
	PluginComment(text string, pc, lineNo int)

	// PushData observes every value pushed to the stack.
	PushData(sd interface{}, helpers Helpers)

	// PreOpcode is called before dispatching a recognized opcode, and is
	// the sole hook consulted for an *unrecognized* one (spec.md 4.B
	// "Unknown opcode"). claim == true means this hook fully handled the
	// opcode and the engine's own dispatch is skipped.
	PreOpcode(op string, helpers Helpers) (claim bool, err error)

	// PostOpcode is called after a recognized opcode's own handler ran.
	PostOpcode(op string, helpers Helpers)

	// PreFinalize/PostFinalize bracket context finalization (spec.md 4.F).
	PreFinalize(helpers Helpers)
	PostFinalize(helpers Helpers)

	// ScriptFailure observes a context's recorded failure.
	ScriptFailure(helpers Helpers)

	// ReportStart/ReportEnd bracket the (external) report formatter's run.
	ReportStart()
	ReportEnd()
}

// NoopHooks implements Hooks with every callback a no-op and every claim
// declined, so a plugin struct can embed it and override only what it
// needs.
type NoopHooks struct{}

func (NoopHooks) ParseInputFile(string) ([]byte, bool)       { return nil, false }
func (NoopHooks) PluginSettings(string) error                { return nil }
func (NoopHooks) PluginComment(string, int, int)             {}
func (NoopHooks) PushData(interface{}, Helpers)              {}
func (NoopHooks) PreOpcode(string, Helpers) (bool, error)     { return false, nil }
func (NoopHooks) PostOpcode(string, Helpers)                  {}
func (NoopHooks) PreFinalize(Helpers)                         {}
func (NoopHooks) PostFinalize(Helpers)                        {}
func (NoopHooks) ScriptFailure(Helpers)                       {}
func (NoopHooks) ReportStart()                                {}
func (NoopHooks) ReportEnd()                                  {}

// Registry holds the set of active plugins, dispatched in registration
// order. The first plugin whose PreOpcode claims an opcode wins; the rest
// are not consulted for that opcode.
type Registry struct {
	plugins []Hooks
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a plugin, to be consulted in registration order.
func (r *Registry) Register(h Hooks) {
	r.plugins = append(r.plugins, h)
}

// DispatchUnknownOpcode consults each registered plugin in order; the
// first to claim the opcode stops the search.
func (r *Registry) DispatchUnknownOpcode(op string, helpers Helpers) (claimed bool, err error) {
	for _, p := range r.plugins {
		ok, e := p.PreOpcode(op, helpers)
		if e != nil {
			return false, e
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Each calls fn for every registered plugin, in registration order.
func (r *Registry) Each(fn func(Hooks)) {
	for _, p := range r.plugins {
		fn(p)
	}
}
