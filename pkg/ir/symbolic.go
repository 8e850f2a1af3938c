// Package ir defines the symbolic side of a hybrid module: placeholder
// values, the classifier that decides whether a call is symbolic, and the
// op-builder that turns an entry-point definition into an IR artifact.
package ir

import (
	"fmt"
	"strings"
)

// DefaultDType is used for placeholders created without an element type.
const DefaultDType = "float32"

// Symbolic is implemented by values that stand for tensors during IR
// construction rather than holding concrete data.
type Symbolic interface {
	// SymbolName returns the name the value carries in the IR.
	SymbolName() string
}

// Placeholder is a named, shaped tensor input with no data.
type Placeholder struct {
	Name  string
	Shape []int64
	DType string
}

// NewPlaceholder creates a placeholder, defaulting DType to DefaultDType.
func NewPlaceholder(name string, shape []int64, dtype string) *Placeholder {
	if dtype == "" {
		dtype = DefaultDType
	}
	return &Placeholder{Name: name, Shape: shape, DType: dtype}
}

// SymbolName implements Symbolic.
func (p *Placeholder) SymbolName() string { return p.Name }

// String renders the placeholder as name: dtype[d0, d1].
func (p *Placeholder) String() string {
	dims := make([]string, len(p.Shape))
	for i, d := range p.Shape {
		dims[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s: %s[%s]", p.Name, p.DType, strings.Join(dims, ", "))
}

// Classifier decides whether an argument list is entirely symbolic.
// Implementations must be pure.
type Classifier interface {
	AllSymbolic(args []any) bool
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(args []any) bool

// AllSymbolic calls f(args).
func (f ClassifierFunc) AllSymbolic(args []any) bool { return f(args) }

// AllSymbolic reports whether args is non-empty and every element
// implements Symbolic. A nil element is concrete.
func AllSymbolic(args []any) bool {
	if len(args) == 0 {
		return false
	}
	for _, arg := range args {
		if _, ok := arg.(Symbolic); !ok {
			return false
		}
	}
	return true
}

// DefaultClassifier classifies by the Symbolic capability.
var DefaultClassifier Classifier = ClassifierFunc(AllSymbolic)
