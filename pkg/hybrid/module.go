package hybrid

import (
	"context"
	"os"

	"github.com/leapstack-labs/hybrid/internal/registry"
	"github.com/leapstack-labs/hybrid/pkg/ir"
	"github.com/leapstack-labs/hybrid/pkg/script"
)

// Module is a bound hybrid kernel. It is immutable and safe for concurrent
// calls once constructed.
type Module struct {
	source string
	name   string
	path   string

	def  *script.FuncDef
	fn   callable
	unit *registry.Unit
	env  ir.Environment

	builder    ir.OpBuilder
	classifier ir.Classifier
}

// Name returns the module's resolved name.
func (m *Module) Name() string { return m.name }

// Source returns the wrapped source text.
func (m *Module) Source() string { return m.source }

// Path returns the file the module was loaded from, or "" for modules
// built from inline source.
func (m *Module) Path() string { return m.path }

// Definition returns the entry-point definition.
func (m *Module) Definition() *script.FuncDef { return m.def }

// Signature returns the entry point as written, e.g. "addone(x)".
func (m *Module) Signature() string { return m.def.Signature() }

// Params returns the entry point's parameter names.
func (m *Module) Params() []string { return m.def.ParamNames() }

// Unit returns the registry unit the module is bound to.
func (m *Module) Unit() *registry.Unit { return m.unit }

// Environment returns the module globals handed to the op-builder.
func (m *Module) Environment() ir.Environment { return m.env }

// State returns Bound; only fully bound modules are observable.
func (m *Module) State() State { return Bound }

// Save writes the source verbatim to path, appending the .star extension
// when path lacks it, and returns the path written.
func (m *Module) Save(path string) (string, error) {
	path = script.WithExtension(path)
	if err := os.WriteFile(path, []byte(m.source), 0o644); err != nil { //nolint:gosec // G306: source files are not secret
		return "", &IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// Call invokes the module with positional args. When every argument is
// symbolic the op-builder builds the IR artifact and the native function is
// not run. Otherwise the native function runs with args unchanged. Results
// and errors are returned as produced.
func (m *Module) Call(ctx context.Context, args ...any) (any, error) {
	if m.classifier.AllSymbolic(args) {
		return m.builder.Build(m.def, m.env, args)
	}
	return m.fn.Call(ctx, args)
}
