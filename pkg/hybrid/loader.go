// Package hybrid turns hybrid script source into kernel modules. A Module
// holds one entry-point definition and dispatches each call either to an
// op-builder (symbolic arguments) or to the bound Starlark function
// (concrete arguments).
package hybrid

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/hybrid/internal/registry"
	hstarlark "github.com/leapstack-labs/hybrid/internal/starlark"
	"github.com/leapstack-labs/hybrid/internal/tempdir"
	"github.com/leapstack-labs/hybrid/pkg/ir"
	"github.com/leapstack-labs/hybrid/pkg/script"
	"go.starlark.net/starlark"
)

// unitFile is the file name New writes wrapped source to.
const unitFile = "script" + script.Extension

// Loader constructs modules and owns the registry they are bound into.
// A Loader is safe for concurrent use.
type Loader struct {
	logger     *slog.Logger
	units      *registry.Units
	builder    ir.OpBuilder
	classifier ir.Classifier
	tempBase   string
	maxSteps   uint64
}

// NewLoader creates a Loader. Defaults: discard logger, private registry,
// ir.Builder and ir.DefaultClassifier.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		logger:     slog.New(slog.DiscardHandler),
		units:      registry.NewUnits(),
		builder:    ir.Builder{},
		classifier: ir.DefaultClassifier,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Units returns the registry modules are bound into.
func (l *Loader) Units() *registry.Units { return l.units }

// New wraps src with the enabling marker and builds a module from it.
func New(ctx context.Context, src string, opts ...ModuleOption) (*Module, error) {
	return NewLoader().New(ctx, src, opts...)
}

// Load builds a module from an already wrapped file.
func Load(ctx context.Context, path string, opts ...ModuleOption) (*Module, error) {
	return NewLoader().Load(ctx, path, opts...)
}

// New wraps src with the enabling marker, stages it in a scoped temporary
// directory and binds it. The directory is removed before New returns.
func (l *Loader) New(ctx context.Context, src string, opts ...ModuleOption) (*Module, error) {
	wrapped := script.Wrap(src)

	dir, err := tempdir.New(l.tempBase)
	if err != nil {
		return nil, &LoadError{State: Uninitialized, Err: &IOError{Op: "tempdir", Path: l.tempBase, Err: err}}
	}
	defer func() {
		if err := dir.Remove(); err != nil {
			l.logger.Warn("failed to remove temp dir", "error", err)
		}
	}()
	l.logger.Debug("staging source", "dir", dir.Path())

	path, err := dir.WriteFile(unitFile, []byte(wrapped))
	if err != nil {
		return nil, &LoadError{State: Uninitialized, Err: &IOError{Op: "write", Path: dir.RelPath(unitFile), Err: err}}
	}

	m, err := l.load(ctx, path, unitFile, opts)
	if err != nil {
		return nil, err
	}
	// The staged file is gone once New returns.
	m.path = ""
	return m, nil
}

// Load reads a wrapped file and binds it.
func (l *Loader) Load(ctx context.Context, path string, opts ...ModuleOption) (*Module, error) {
	return l.load(ctx, path, path, opts)
}

// load runs the read, find and bind sequence. display names the unit in
// parse and execution errors.
func (l *Loader) load(ctx context.Context, path, display string, opts []ModuleOption) (*Module, error) {
	var o moduleOptions
	for _, opt := range opts {
		opt(&o)
	}

	state := Uninitialized
	fail := func(err error) (*Module, error) {
		l.logger.Debug("load failed", "path", path, "state", state.String(), "error", err)
		return nil, &LoadError{State: state, Err: err}
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the caller or staged by New
	if err != nil {
		return fail(&IOError{Op: "read", Path: path, Err: err})
	}
	source := string(data)
	state = SourceAcquired

	discovered, def, err := script.Find(display, data)
	if err != nil {
		return fail(err)
	}
	state = DefinitionResolved

	name := discovered
	if o.name != "" {
		name = o.name
		if name != discovered {
			l.logger.Debug("module name differs from definition", "name", name, "definition", discovered)
		}
	}
	l.logger.Debug("found definition", "name", discovered, "signature", def.Signature())

	unit, fn, err := l.bind(ctx, name, discovered, display, data)
	if err != nil {
		return fail(err)
	}
	l.logger.Debug("bound unit", "name", name, "unit", unit.ID.String())

	return &Module{
		source:     source,
		name:       name,
		path:       path,
		def:        def,
		fn:         fn,
		unit:       unit,
		env:        ir.Environment{Unit: name, Globals: hstarlark.GlobalsToGo(unit.Globals)},
		builder:    l.builder,
		classifier: l.classifier,
	}, nil
}

// bind executes the unit, registers its globals under name and returns the
// callable bound to attr.
func (l *Loader) bind(ctx context.Context, name, attr, display string, src []byte) (*registry.Unit, callable, error) {
	globals, err := hstarlark.Exec(ctx, display, src, hstarlark.ExecOptions{
		Logger:   l.logger.With("unit", name),
		MaxSteps: l.maxSteps,
	})
	if err != nil {
		return nil, nil, &BindError{Name: name, File: display, Err: err}
	}

	v, ok := globals[attr]
	if !ok {
		return nil, nil, &BindError{Name: name, File: display, Message: fmt.Sprintf("unit has no attribute %q", attr)}
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, nil, &BindError{Name: name, File: display, Message: fmt.Sprintf("%s is a %s, not callable", attr, v.Type())}
	}

	unit := l.units.Register(name, display, globals)
	return unit, &starlarkCallable{
		name:     attr,
		fn:       fn,
		logger:   l.logger.With("unit", name),
		maxSteps: l.maxSteps,
	}, nil
}
