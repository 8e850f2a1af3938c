package hybrid

import (
	"log/slog"

	"github.com/leapstack-labs/hybrid/internal/registry"
	"github.com/leapstack-labs/hybrid/pkg/ir"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for construction and dialect print() output.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithOpBuilder sets the op-builder used by symbolic calls.
func WithOpBuilder(b ir.OpBuilder) LoaderOption {
	return func(l *Loader) {
		if b != nil {
			l.builder = b
		}
	}
}

// WithClassifier sets the predicate that decides whether a call is symbolic.
func WithClassifier(c ir.Classifier) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.classifier = c
		}
	}
}

// WithRegistry binds units into r instead of a registry private to the Loader.
func WithRegistry(r *registry.Units) LoaderOption {
	return func(l *Loader) {
		if r != nil {
			l.units = r
		}
	}
}

// WithTempDir sets the base directory for scoped temporary units.
// Empty means the OS default.
func WithTempDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.tempBase = dir
	}
}

// WithMaxSteps bounds Starlark execution steps for binding and for every
// native call. Zero means unbounded.
func WithMaxSteps(n uint64) LoaderOption {
	return func(l *Loader) {
		l.maxSteps = n
	}
}

// ModuleOption configures a single New or Load.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	name string
}

// WithName labels the module explicitly instead of using the name of its
// definition.
func WithName(name string) ModuleOption {
	return func(o *moduleOptions) {
		o.name = name
	}
}
